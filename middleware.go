package feeledger

import (
	"context"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"
)

var (
	_ Service = (*validationMiddleware)(nil)
)

type Middleware func(Service) Service

// validationMiddleware rejects malformed requests before they reach the
// service: amount sign, account existence, and caller ownership of the
// account. All checks are pure reads; nothing past this layer re-validates.
type validationMiddleware struct {
	next Service
	repo Repository
}

func NewValidationMiddleware(repo Repository) Middleware {
	return func(svc Service) Service {
		return &validationMiddleware{
			next: svc,
			repo: repo,
		}
	}
}

// checkOwner verifies the account exists and that the caller-supplied email
// matches the account on record.
func (v *validationMiddleware) checkOwner(id snowflake.ID, email string) error {
	if email == "" {
		return ErrBadRequest{Fields: map[string]string{"email": "missing"}}
	}
	acct, err := v.repo.GetAccount(id)
	if err != nil {
		return err
	}
	if acct.Email != email {
		return ErrBadRequest{Fields: map[string]string{"email": "does not match account"}}
	}
	return nil
}

func (v *validationMiddleware) Deposit(req ChargeReq) (*Charge, error) {
	if req.Amount.IsNegative() {
		return nil, ErrBadRequest{Fields: map[string]string{"amount": "must not be negative"}}
	}
	if err := v.checkOwner(req.AcctID, req.Email); err != nil {
		return nil, err
	}
	return v.next.Deposit(req)
}

func (v *validationMiddleware) Withdraw(req ChargeReq) (*Charge, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrBadRequest{Fields: map[string]string{"amount": "must be positive"}}
	}
	if err := v.checkOwner(req.AcctID, req.Email); err != nil {
		return nil, err
	}
	return v.next.Withdraw(req)
}

func (v *validationMiddleware) BalanceAndHistory(req HistoryReq) (*AccountHistory, error) {
	if err := v.checkOwner(req.AcctID, req.Email); err != nil {
		return nil, err
	}
	return v.next.BalanceAndHistory(req)
}

func (v *validationMiddleware) Deposits(req HistoryReq) ([]Charge, error) {
	if err := v.checkOwner(req.AcctID, req.Email); err != nil {
		return nil, err
	}
	return v.next.Deposits(req)
}

func (v *validationMiddleware) Withdrawals(req HistoryReq) ([]Charge, error) {
	if err := v.checkOwner(req.AcctID, req.Email); err != nil {
		return nil, err
	}
	return v.next.Withdrawals(req)
}

func (v *validationMiddleware) Statement(w io.Writer, req StatementReq) error {
	if err := v.checkOwner(req.AcctID, req.Email); err != nil {
		return err
	}
	return v.next.Statement(w, req)
}

//
// Rate limiting middlewares
//

// limitMiddleware caps the number of in-flight requests per operation with a
// weighted semaphore, i.e., x/sync/semaphore.Weighted with an acquisition
// timeout. As limits are static and servers may be deployed to a
// heterogeneous set of machines, this is best treated as simple load
// shedding, not admission control.
type limitMiddleware struct {
	next   Service
	limits *ServiceLimits
}

var (
	_ Service = (*limitMiddleware)(nil)
)

type ServiceLimits struct {
	AcquireTimeout time.Duration
	Deposit        *semaphore.Weighted
	Withdraw       *semaphore.Weighted
	History        *semaphore.Weighted
	Statement      *semaphore.Weighted
}

func NewLimitMiddleware(limits *ServiceLimits) Middleware {
	return func(next Service) Service {
		return &limitMiddleware{
			next:   next,
			limits: limits,
		}
	}
}

func (l *limitMiddleware) acquire(sem *semaphore.Weighted) (func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), l.limits.AcquireTimeout)
	defer cancel()
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, ErrOverloaded
	}
	return func() { sem.Release(1) }, nil
}

func (l *limitMiddleware) Deposit(req ChargeReq) (*Charge, error) {
	release, err := l.acquire(l.limits.Deposit)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Deposit(req)
}

func (l *limitMiddleware) Withdraw(req ChargeReq) (*Charge, error) {
	release, err := l.acquire(l.limits.Withdraw)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Withdraw(req)
}

func (l *limitMiddleware) BalanceAndHistory(req HistoryReq) (*AccountHistory, error) {
	release, err := l.acquire(l.limits.History)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.BalanceAndHistory(req)
}

func (l *limitMiddleware) Deposits(req HistoryReq) ([]Charge, error) {
	release, err := l.acquire(l.limits.History)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Deposits(req)
}

func (l *limitMiddleware) Withdrawals(req HistoryReq) ([]Charge, error) {
	release, err := l.acquire(l.limits.History)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Withdrawals(req)
}

func (l *limitMiddleware) Statement(w io.Writer, req StatementReq) error {
	release, err := l.acquire(l.limits.Statement)
	if err != nil {
		return err
	}
	defer release()
	return l.next.Statement(w, req)
}

type ServiceBreaker struct {
	Deposit   *gobreaker.TwoStepCircuitBreaker[*Charge]
	Withdraw  *gobreaker.TwoStepCircuitBreaker[*Charge]
	History   *gobreaker.TwoStepCircuitBreaker[*AccountHistory]
	Charges   *gobreaker.TwoStepCircuitBreaker[[]Charge]
	Statement *gobreaker.TwoStepCircuitBreaker[interface{}]
}

// circuitBreakMiddleware implements the circuit breaker pattern. It works in
// conjunction with limitMiddleware to shed load when the service is
// struggling to release tokens from the limit semaphores within request
// deadline. Client-typed failures (validation, missing account, insufficient
// funds) count as successes; only storage-level failures trip the breaker.
type circuitBreakMiddleware struct {
	next  Service
	brkrs *ServiceBreaker
}

var (
	_ Service = (*circuitBreakMiddleware)(nil)
)

func NewCircuitBreakMiddleware(brkrs *ServiceBreaker) Middleware {
	return func(next Service) Service {
		return &circuitBreakMiddleware{
			next:  next,
			brkrs: brkrs,
		}
	}
}

func clientFault(err error) bool {
	switch err.(type) {
	case ErrBadRequest, ErrNotFound, ErrInsufficientFunds:
		return true
	}
	return false
}

func (c *circuitBreakMiddleware) Deposit(req ChargeReq) (*Charge, error) {
	done, err := c.brkrs.Deposit.Allow()
	if err != nil {
		return nil, err
	}
	chg, err := c.next.Deposit(req)
	done(err == nil || clientFault(err))
	return chg, err
}

func (c *circuitBreakMiddleware) Withdraw(req ChargeReq) (*Charge, error) {
	done, err := c.brkrs.Withdraw.Allow()
	if err != nil {
		return nil, err
	}
	chg, err := c.next.Withdraw(req)
	done(err == nil || clientFault(err))
	return chg, err
}

func (c *circuitBreakMiddleware) BalanceAndHistory(req HistoryReq) (*AccountHistory, error) {
	done, err := c.brkrs.History.Allow()
	if err != nil {
		return nil, err
	}
	hist, err := c.next.BalanceAndHistory(req)
	done(err == nil || clientFault(err))
	return hist, err
}

func (c *circuitBreakMiddleware) Deposits(req HistoryReq) ([]Charge, error) {
	done, err := c.brkrs.Charges.Allow()
	if err != nil {
		return nil, err
	}
	charges, err := c.next.Deposits(req)
	done(err == nil || clientFault(err))
	return charges, err
}

func (c *circuitBreakMiddleware) Withdrawals(req HistoryReq) ([]Charge, error) {
	done, err := c.brkrs.Charges.Allow()
	if err != nil {
		return nil, err
	}
	charges, err := c.next.Withdrawals(req)
	done(err == nil || clientFault(err))
	return charges, err
}

func (c *circuitBreakMiddleware) Statement(w io.Writer, req StatementReq) error {
	done, err := c.brkrs.Statement.Allow()
	if err != nil {
		return err
	}
	err = c.next.Statement(w, req)
	done(err == nil || clientFault(err))
	return err
}
