package feeledger

import (
	"io"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Clock abstracts the time source so fee decisions stay deterministic under
// test. The system clock is only ever consulted through this interface.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

type ChargeReq struct {
	Amount decimal.Decimal `json:"amount"`
	AcctID snowflake.ID
	Email  string
}

type HistoryReq struct {
	AcctID snowflake.ID
	Email  string
}

type StatementReq struct {
	AcctID snowflake.ID
	Email  string
}

// AccountHistory is the balance of an account together with its full charge
// history in insertion order.
type AccountHistory struct {
	Balance decimal.Decimal `json:"balance"`
	Charges []Charge        `json:"transactions"`
}

type Service interface {
	Deposit(ChargeReq) (*Charge, error)
	Withdraw(ChargeReq) (*Charge, error)
	BalanceAndHistory(HistoryReq) (*AccountHistory, error)
	Deposits(HistoryReq) ([]Charge, error)
	Withdrawals(HistoryReq) ([]Charge, error)
	Statement(io.Writer, StatementReq) error
}

func NewService(repo Repository, fees *FeePolicy, clock Clock, log *zerolog.Logger) (*serviceImpl, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}
	return &serviceImpl{
		repo:  repo,
		fees:  fees,
		clock: clock,
		node:  node,
		log:   log,
	}, nil
}

type serviceImpl struct {
	repo  Repository
	fees  *FeePolicy
	clock Clock
	node  *snowflake.Node
	log   *zerolog.Logger

	// acctLocks serializes balance-affecting work per account so that the
	// fee-aggregate reads, the balance check, and the ledger append form
	// one unit. Operations on distinct accounts never contend.
	acctLocks sync.Map
}

func (s *serviceImpl) lockAccount(id snowflake.ID) func() {
	m, _ := s.acctLocks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *serviceImpl) Deposit(req ChargeReq) (*Charge, error) {
	unlock := s.lockAccount(req.AcctID)
	defer unlock()

	if _, err := s.repo.GetAccount(req.AcctID); err != nil {
		return nil, err
	}

	chg := Charge{
		ChargeID: s.node.Generate(),
		AcctID:   req.AcctID,
		Type:     Deposit,
		Amount:   req.Amount,
		Fee:      decimal.Zero,
		At:       s.clock.Now(),
	}
	bal, err := s.repo.CreditAccount(chg)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Stringer("acct_id", req.AcctID).
		Stringer("amount", req.Amount).
		Stringer("balance", *bal).
		Msg("deposit")
	return &chg, nil
}

func (s *serviceImpl) Withdraw(req ChargeReq) (*Charge, error) {
	unlock := s.lockAccount(req.AcctID)
	defer unlock()

	acct, err := s.repo.GetAccount(req.AcctID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	// Aggregates are read before the charge is appended; the per-account
	// lock keeps them consistent with the balance check below.
	fee, err := s.fees.ComputeFee(FeeReq{
		AcctID: req.AcctID,
		Type:   acct.Type,
		Amount: req.Amount,
		Now:    now,
	})
	if err != nil {
		return nil, err
	}

	chg := Charge{
		ChargeID: s.node.Generate(),
		AcctID:   req.AcctID,
		Type:     Withdrawal,
		Amount:   req.Amount,
		Fee:      fee,
		At:       now,
	}
	bal, err := s.repo.DebitAccount(chg)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Stringer("acct_id", req.AcctID).
		Stringer("amount", req.Amount).
		Stringer("fee", fee).
		Stringer("balance", *bal).
		Msg("withdrawal")
	return &chg, nil
}

func (s *serviceImpl) BalanceAndHistory(req HistoryReq) (*AccountHistory, error) {
	unlock := s.lockAccount(req.AcctID)
	defer unlock()

	acct, err := s.repo.GetAccount(req.AcctID)
	if err != nil {
		return nil, err
	}
	charges, err := s.repo.AccountCharges(req.AcctID, "")
	if err != nil {
		return nil, err
	}
	return &AccountHistory{
		Balance: acct.Balance,
		Charges: charges,
	}, nil
}

func (s *serviceImpl) Deposits(req HistoryReq) ([]Charge, error) {
	if _, err := s.repo.GetAccount(req.AcctID); err != nil {
		return nil, err
	}
	return s.repo.AccountCharges(req.AcctID, Deposit)
}

func (s *serviceImpl) Withdrawals(req HistoryReq) ([]Charge, error) {
	if _, err := s.repo.GetAccount(req.AcctID); err != nil {
		return nil, err
	}
	return s.repo.AccountCharges(req.AcctID, Withdrawal)
}

func (s *serviceImpl) Statement(w io.Writer, req StatementReq) error {
	acct, err := s.repo.GetAccount(req.AcctID)
	if err != nil {
		return err
	}
	charges, err := s.repo.AccountCharges(req.AcctID, "")
	if err != nil {
		return err
	}
	return writeStatementPDF(w, acct, charges, s.clock.Now())
}
