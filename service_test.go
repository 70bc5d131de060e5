package feeledger_test

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"

	"github.com/jcabrera/feeledger"
	"github.com/jcabrera/feeledger/mocks"
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

func newTestService(t *testing.T, repo feeledger.Repository, now time.Time) feeledger.Service {
	t.Helper()
	log := zerolog.Nop()
	svc, err := feeledger.NewService(repo, feeledger.NewFeePolicy(repo, time.UTC), fixedClock{t: now}, &log)
	require.NoError(t, err)
	return svc
}

func TestDeposit(t *testing.T) {
	acctID := snowflake.ParseInt64(7241407009730334720)
	acct := feeledger.Account{
		AcctID:  acctID,
		Email:   "ind@example.com",
		Type:    feeledger.Individual,
		Balance: dec("10000"),
	}

	t.Run("increases balance by amount with zero fee and one record", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		repo := feeledger.NewMemoryEndpoint(acct)
		svc := newTestService(tt, repo, wednesday)

		chg, err := svc.Deposit(feeledger.ChargeReq{
			Amount: dec("2500"),
			AcctID: acctID,
			Email:  acct.Email,
		})
		reqrd.Nil(err)
		as.Equal(feeledger.Deposit, chg.Type)
		as.True(chg.Fee.IsZero())
		as.True(dec("2500").Equal(chg.Amount))
		as.Equal(wednesday, chg.At)

		after, err := repo.GetAccount(acctID)
		reqrd.Nil(err)
		as.True(dec("12500").Equal(after.Balance), "got %s", after.Balance)

		deposits, err := repo.AccountCharges(acctID, feeledger.Deposit)
		reqrd.Nil(err)
		reqrd.Len(deposits, 1)
		as.Equal(chg.ChargeID, deposits[0].ChargeID)
	})

	t.Run("fails with not found on unknown account", func(tt *testing.T) {
		as := assert.New(tt)
		repo := feeledger.NewMemoryEndpoint()
		svc := newTestService(tt, repo, wednesday)

		_, err := svc.Deposit(feeledger.ChargeReq{
			Amount: dec("100"),
			AcctID: acctID,
		})
		as.ErrorAs(err, &feeledger.ErrNotFound{})
	})
}

func TestWithdrawBalances(t *testing.T) {
	acctID := snowflake.ParseInt64(7241407009730334720)
	acct := feeledger.Account{
		AcctID:  acctID,
		Email:   "ind@example.com",
		Type:    feeledger.Individual,
		Balance: dec("10000"),
	}

	t.Run("decreases balance by amount minus fee", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		repo := feeledger.NewMemoryEndpoint(acct)
		svc := newTestService(tt, repo, wednesday)

		// First withdrawal: monthly total is 0, waived.
		first, err := svc.Withdraw(feeledger.ChargeReq{
			Amount: dec("6000"),
			AcctID: acctID,
			Email:  acct.Email,
		})
		reqrd.Nil(err)
		as.True(first.Fee.IsZero())

		// Second withdrawal: monthly total 6000 exceeds the waiver, not a
		// Friday, over 1000 — base fee 1.5% of 2000 applies.
		second, err := svc.Withdraw(feeledger.ChargeReq{
			Amount: dec("2000"),
			AcctID: acctID,
			Email:  acct.Email,
		})
		reqrd.Nil(err)
		as.True(dec("30").Equal(second.Fee), "got %s", second.Fee)

		after, err := repo.GetAccount(acctID)
		reqrd.Nil(err)
		// 10000 - 6000 - (2000 - 30)
		as.True(dec("2030").Equal(after.Balance), "got %s", after.Balance)
	})

	t.Run("insufficient funds leaves no trace", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		repo := feeledger.NewMemoryEndpoint(acct)
		svc := newTestService(tt, repo, wednesday)

		_, err := svc.Withdraw(feeledger.ChargeReq{
			Amount: dec("10001"),
			AcctID: acctID,
			Email:  acct.Email,
		})
		as.ErrorAs(err, &feeledger.ErrInsufficientFunds{})

		after, err := repo.GetAccount(acctID)
		reqrd.Nil(err)
		as.True(dec("10000").Equal(after.Balance))
		charges, err := repo.AccountCharges(acctID, "")
		reqrd.Nil(err)
		as.Empty(charges)
	})

	t.Run("fee net of waiver fits into an otherwise short balance", func(tt *testing.T) {
		// Balance 10000, withdrawal of exactly 10000 with every waiver
		// active: net is 10000 and succeeds.
		as := assert.New(tt)
		reqrd := require.New(tt)
		repo := feeledger.NewMemoryEndpoint(acct)
		svc := newTestService(tt, repo, wednesday)

		chg, err := svc.Withdraw(feeledger.ChargeReq{
			Amount: dec("10000"),
			AcctID: acctID,
			Email:  acct.Email,
		})
		reqrd.Nil(err)
		as.True(chg.Fee.IsZero())

		after, err := repo.GetAccount(acctID)
		reqrd.Nil(err)
		as.True(after.Balance.IsZero())
	})
}

func TestWithdrawChargePassedToRepository(t *testing.T) {
	t.Run("debit carries the computed fee", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		acctID := snowflake.ParseInt64(7241407009730334721)
		repo.EXPECT().
			GetAccount(acctID).
			Return(&feeledger.Account{
				AcctID:  acctID,
				Email:   "biz@example.com",
				Type:    feeledger.Business,
				Balance: dec("100000"),
			}, nil)
		// monthly window then all-time
		repo.EXPECT().
			SumCharges(acctID, feeledger.Withdrawal, gomock.Any(), gomock.Any()).
			Return(dec("8000"), nil)
		repo.EXPECT().
			SumCharges(acctID, feeledger.Withdrawal, time.Time{}, time.Time{}).
			Return(dec("8000"), nil)
		bal := dec("98050")
		repo.EXPECT().
			DebitAccount(gomock.AssignableToTypeOf(feeledger.Charge{})).
			DoAndReturn(func(chg feeledger.Charge) (*decimal.Decimal, error) {
				as.Equal(feeledger.Withdrawal, chg.Type)
				as.True(dec("2000").Equal(chg.Amount))
				as.True(dec("50").Equal(chg.Fee), "got %s", chg.Fee)
				as.Equal(wednesday, chg.At)
				return &bal, nil
			})

		svc := newTestService(tt, repo, wednesday)
		chg, err := svc.Withdraw(feeledger.ChargeReq{
			Amount: dec("2000"),
			AcctID: acctID,
			Email:  "biz@example.com",
		})
		reqrd.Nil(err)
		as.True(dec("50").Equal(chg.Fee))
	})

	t.Run("invalid amount is rejected before any storage call", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		svc := mocks.NewMockService(ctrl)
		v := feeledger.NewValidationMiddleware(repo)(svc)

		_, err := v.Withdraw(feeledger.ChargeReq{
			Amount: dec("-5"),
			AcctID: snowflake.ParseInt64(7241407009730334721),
			Email:  "biz@example.com",
		})
		as.ErrorAs(err, &feeledger.ErrBadRequest{})
	})
}

func TestHistoryListing(t *testing.T) {
	acctID := snowflake.ParseInt64(7241407009730334720)
	acct := feeledger.Account{
		AcctID:  acctID,
		Email:   "ind@example.com",
		Type:    feeledger.Individual,
		Balance: dec("10000"),
	}

	t.Run("lists in insertion order, filtered by type, idempotently", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		repo := feeledger.NewMemoryEndpoint(acct)
		svc := newTestService(tt, repo, wednesday)

		_, err := svc.Deposit(feeledger.ChargeReq{Amount: dec("100"), AcctID: acctID, Email: acct.Email})
		reqrd.Nil(err)
		_, err = svc.Withdraw(feeledger.ChargeReq{Amount: dec("200"), AcctID: acctID, Email: acct.Email})
		reqrd.Nil(err)
		_, err = svc.Deposit(feeledger.ChargeReq{Amount: dec("300"), AcctID: acctID, Email: acct.Email})
		reqrd.Nil(err)

		hist, err := svc.BalanceAndHistory(feeledger.HistoryReq{AcctID: acctID, Email: acct.Email})
		reqrd.Nil(err)
		reqrd.Len(hist.Charges, 3)
		as.True(dec("10200").Equal(hist.Balance), "got %s", hist.Balance)
		as.Equal(feeledger.Deposit, hist.Charges[0].Type)
		as.Equal(feeledger.Withdrawal, hist.Charges[1].Type)
		as.Equal(feeledger.Deposit, hist.Charges[2].Type)

		deposits, err := svc.Deposits(feeledger.HistoryReq{AcctID: acctID, Email: acct.Email})
		reqrd.Nil(err)
		reqrd.Len(deposits, 2)
		as.True(dec("100").Equal(deposits[0].Amount))
		as.True(dec("300").Equal(deposits[1].Amount))

		withdrawals, err := svc.Withdrawals(feeledger.HistoryReq{AcctID: acctID, Email: acct.Email})
		reqrd.Nil(err)
		reqrd.Len(withdrawals, 1)

		again, err := svc.Withdrawals(feeledger.HistoryReq{AcctID: acctID, Email: acct.Email})
		reqrd.Nil(err)
		as.Equal(withdrawals, again)
	})
}

func TestConcurrentWithdrawals(t *testing.T) {
	acctID := snowflake.ParseInt64(7241407009730334720)
	acct := feeledger.Account{
		AcctID:  acctID,
		Email:   "ind@example.com",
		Type:    feeledger.Individual,
		Balance: dec("5000"),
	}

	t.Run("exactly the subset fitting the balance succeeds", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		repo := feeledger.NewMemoryEndpoint(acct)
		svc := newTestService(tt, repo, wednesday)

		// 10 withdrawals of 1000 each against a balance of 5000. All are
		// fee-waived (amount <= 1000), so exactly 5 can fit.
		const n = 10
		errs := make(chan error, n)
		g := new(errgroup.Group)
		for i := 0; i < n; i++ {
			g.Go(func() error {
				_, err := svc.Withdraw(feeledger.ChargeReq{
					Amount: dec("1000"),
					AcctID: acctID,
					Email:  acct.Email,
				})
				errs <- err
				return nil
			})
		}
		reqrd.Nil(g.Wait())
		close(errs)

		var ok, insufficient int
		for err := range errs {
			if err == nil {
				ok++
				continue
			}
			as.ErrorAs(err, &feeledger.ErrInsufficientFunds{})
			insufficient++
		}
		as.Equal(5, ok)
		as.Equal(5, insufficient)

		after, err := repo.GetAccount(acctID)
		reqrd.Nil(err)
		as.True(after.Balance.IsZero(), "got %s", after.Balance)
		charges, err := repo.AccountCharges(acctID, feeledger.Withdrawal)
		reqrd.Nil(err)
		as.Len(charges, 5)
	})
}
