package feeledger

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	Individual AccountType = "Individual"
	Business   AccountType = "Business"
)

type ChargeType string

const (
	Deposit    ChargeType = "deposit"
	Withdrawal ChargeType = "withdrawal"
)

// Account is the current state of a user account. Balance is mutated only
// through Repository.CreditAccount / Repository.DebitAccount and never goes
// negative.
type Account struct {
	AcctID  snowflake.ID    `json:"acct_id"`
	Email   string          `json:"email"`
	Type    AccountType     `json:"acct_type"`
	Balance decimal.Decimal `json:"balance"`
}

// Charge is an immutable ledger record of a deposit or withdrawal. Amount is
// the requested amount; Fee is zero for deposits and at most Amount for
// withdrawals. The balance delta represented is Amount for deposits and
// -(Amount - Fee) for withdrawals.
type Charge struct {
	ChargeID snowflake.ID    `json:"charge_id"`
	AcctID   snowflake.ID    `json:"acct_id"`
	Type     ChargeType      `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Fee      decimal.Decimal `json:"fee"`
	At       time.Time       `json:"at"`
}

// LedgerQuery is the read-only slice of the ledger the fee policy consults.
// A zero `from`/`until` leaves that side of the range unbounded.
type LedgerQuery interface {
	SumCharges(id snowflake.ID, typ ChargeType, from, until time.Time) (decimal.Decimal, error)
}

// Repository persists accounts and their charge ledger. CreditAccount and
// DebitAccount apply the balance delta and append the charge as a single
// atomic unit; neither leaves a partial state visible to concurrent readers.
// DebitAccount fails with ErrInsufficientFunds, writing nothing, when the
// net amount exceeds the balance.
type Repository interface {
	LedgerQuery
	GetAccount(id snowflake.ID) (*Account, error)
	CreditAccount(chg Charge) (*decimal.Decimal, error)
	DebitAccount(chg Charge) (*decimal.Decimal, error)
	// AccountCharges lists the account's charges in insertion order,
	// filtered by type; an empty typ lists all.
	AccountCharges(id snowflake.ID, typ ChargeType) ([]Charge, error)
}
