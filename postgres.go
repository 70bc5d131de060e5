package feeledger

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	pgSelectAcctSQL = `
		SELECT email, acct_type, balance
		FROM accounts
		WHERE pub_id = $1;
	`

	pgSelectForUpdateAcctSQL = `
		SELECT balance
		FROM accounts
		WHERE pub_id = $1
		FOR UPDATE;
	`

	pgUpdateBalanceSQL = `
		UPDATE accounts
		SET balance = $1
		WHERE pub_id = $2;
	`

	pgInsertChargeSQL = `
		INSERT INTO charges (id, acct_id, typ, amount, fee, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`

	pgSelectChargesSQL = `
		SELECT id, typ, amount, fee, created_at
		FROM charges
		WHERE acct_id = $1 AND ($2::text = '' OR typ = $2)
		ORDER BY id;
	`

	pgSumChargesSQL = `
		SELECT COALESCE(SUM(amount), 0)
		FROM charges
		WHERE acct_id = $1 AND typ = $2
			AND ($3::timestamptz IS NULL OR created_at >= $3)
			AND ($4::timestamptz IS NULL OR created_at < $4);
	`
)

type PostgresEndpoint struct {
	pool *pgxpool.Pool
	log  *zerolog.Logger
}

var (
	_ Repository = (*PostgresEndpoint)(nil)
)

func NewPostgresEndpoint(connStr string, log *zerolog.Logger) (*PostgresEndpoint, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	if err = pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	endpt := &PostgresEndpoint{
		pool: pool,
		log:  log,
	}
	return endpt, err
}

func (pg *PostgresEndpoint) GetAccount(id snowflake.ID) (*Account, error) {
	ctx := context.Background()
	conn, err := pg.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, pgSelectAcctSQL, id)
	var (
		remail string
		rtyp   string
		rbal   decimal.Decimal
	)
	if err = row.Scan(&remail, &rtyp, &rbal); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound{ID: id.Int64()}
		}
		return nil, err
	}

	acct := &Account{
		AcctID:  id,
		Email:   remail,
		Type:    AccountType(rtyp),
		Balance: rbal,
	}
	return acct, err
}

func (pg *PostgresEndpoint) CreditAccount(chg Charge) (*decimal.Decimal, error) {
	return pg.applyCharge(chg, chg.Amount)
}

func (pg *PostgresEndpoint) DebitAccount(chg Charge) (*decimal.Decimal, error) {
	return pg.applyCharge(chg, chg.Amount.Sub(chg.Fee).Neg())
}

// applyCharge updates the account balance and appends the charge in a single
// transaction. The row lock taken on the account makes the balance check and
// the update one atomic step even against writers outside this process.
func (pg *PostgresEndpoint) applyCharge(chg Charge, delta decimal.Decimal) (*decimal.Decimal, error) {
	ctx := context.Background()
	conn, err := pg.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			pg.log.Err(err).Msgf("charge `%v` rollback fail", chg.ChargeID)
		}
	}()

	row := tx.QueryRow(ctx, pgSelectForUpdateAcctSQL, chg.AcctID)
	var bal decimal.Decimal
	if err = row.Scan(&bal); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound{ID: chg.AcctID.Int64()}
		}
		return nil, err
	}

	bal = bal.Add(delta)
	if bal.IsNegative() {
		return nil, ErrInsufficientFunds{AcctID: chg.AcctID}
	}

	if _, err = tx.Exec(ctx, pgUpdateBalanceSQL, bal, chg.AcctID); err != nil {
		return nil, err
	}
	if _, err = tx.Exec(ctx, pgInsertChargeSQL,
		chg.ChargeID, chg.AcctID, string(chg.Type), chg.Amount, chg.Fee, chg.At,
	); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &bal, nil
}

func (pg *PostgresEndpoint) AccountCharges(id snowflake.ID, typ ChargeType) ([]Charge, error) {
	ctx := context.Background()
	conn, err := pg.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, pgSelectChargesSQL, id, string(typ))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var charges []Charge
	for rows.Next() {
		var (
			cid  int64
			ctyp string
			chg  Charge
		)
		if err = rows.Scan(&cid, &ctyp, &chg.Amount, &chg.Fee, &chg.At); err != nil {
			return nil, err
		}
		chg.ChargeID = snowflake.ParseInt64(cid)
		chg.AcctID = id
		chg.Type = ChargeType(ctyp)
		charges = append(charges, chg)
	}
	return charges, rows.Err()
}

func (pg *PostgresEndpoint) SumCharges(id snowflake.ID, typ ChargeType, from, until time.Time) (decimal.Decimal, error) {
	ctx := context.Background()
	conn, err := pg.pool.Acquire(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer conn.Release()

	var fromArg, untilArg *time.Time
	if !from.IsZero() {
		fromArg = &from
	}
	if !until.IsZero() {
		untilArg = &until
	}
	row := conn.QueryRow(ctx, pgSumChargesSQL, id, string(typ), fromArg, untilArg)
	var sum decimal.Decimal
	if err = row.Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}
