package feeledger

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var (
	_ Repository = (*MemoryEndpoint)(nil)
)

type memAccount struct {
	mu      sync.Mutex
	acct    Account
	charges []Charge
}

// MemoryEndpoint is an in-process Repository keeping accounts and charges in
// maps. Each account has its own lock so the balance mutation and the charge
// append commit together without blocking other accounts. It backs tests and
// database-less local runs.
type MemoryEndpoint struct {
	mu    sync.RWMutex
	accts map[snowflake.ID]*memAccount
}

func NewMemoryEndpoint(accts ...Account) *MemoryEndpoint {
	m := &MemoryEndpoint{
		accts: make(map[snowflake.ID]*memAccount, len(accts)),
	}
	for _, a := range accts {
		m.accts[a.AcctID] = &memAccount{acct: a}
	}
	return m
}

func (m *MemoryEndpoint) get(id snowflake.ID) (*memAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ma, ok := m.accts[id]
	if !ok {
		return nil, ErrNotFound{ID: id.Int64()}
	}
	return ma, nil
}

func (m *MemoryEndpoint) GetAccount(id snowflake.ID) (*Account, error) {
	ma, err := m.get(id)
	if err != nil {
		return nil, err
	}
	ma.mu.Lock()
	defer ma.mu.Unlock()
	cp := ma.acct
	return &cp, nil
}

func (m *MemoryEndpoint) CreditAccount(chg Charge) (*decimal.Decimal, error) {
	ma, err := m.get(chg.AcctID)
	if err != nil {
		return nil, err
	}
	ma.mu.Lock()
	defer ma.mu.Unlock()
	ma.acct.Balance = ma.acct.Balance.Add(chg.Amount)
	ma.charges = append(ma.charges, chg)
	bal := ma.acct.Balance
	return &bal, nil
}

func (m *MemoryEndpoint) DebitAccount(chg Charge) (*decimal.Decimal, error) {
	ma, err := m.get(chg.AcctID)
	if err != nil {
		return nil, err
	}
	ma.mu.Lock()
	defer ma.mu.Unlock()
	net := chg.Amount.Sub(chg.Fee)
	if ma.acct.Balance.LessThan(net) {
		return nil, ErrInsufficientFunds{AcctID: chg.AcctID}
	}
	ma.acct.Balance = ma.acct.Balance.Sub(net)
	ma.charges = append(ma.charges, chg)
	bal := ma.acct.Balance
	return &bal, nil
}

func (m *MemoryEndpoint) AccountCharges(id snowflake.ID, typ ChargeType) ([]Charge, error) {
	ma, err := m.get(id)
	if err != nil {
		return nil, err
	}
	ma.mu.Lock()
	defer ma.mu.Unlock()
	out := make([]Charge, 0, len(ma.charges))
	for _, c := range ma.charges {
		if typ != "" && c.Type != typ {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *MemoryEndpoint) SumCharges(id snowflake.ID, typ ChargeType, from, until time.Time) (decimal.Decimal, error) {
	ma, err := m.get(id)
	if err != nil {
		return decimal.Zero, err
	}
	ma.mu.Lock()
	defer ma.mu.Unlock()
	sum := decimal.Zero
	for _, c := range ma.charges {
		if c.Type != typ {
			continue
		}
		if !from.IsZero() && c.At.Before(from) {
			continue
		}
		if !until.IsZero() && !c.At.Before(until) {
			continue
		}
		sum = sum.Add(c.Amount)
	}
	return sum, nil
}
