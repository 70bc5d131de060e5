package feeledger

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var (
	individualRate = decimal.NewFromFloat(0.015)
	businessRate   = decimal.NewFromFloat(0.025)

	// Waiver and override thresholds, in account currency units.
	smallWithdrawalMax  = decimal.NewFromInt(1000)
	monthlyWaiverMax    = decimal.NewFromInt(5000)
	businessVolumeFloor = decimal.NewFromInt(50000)
)

// FeeReq carries everything a fee rule may look at. Now is supplied by the
// caller, never read from the wall clock.
type FeeReq struct {
	AcctID snowflake.ID
	Type   AccountType
	Amount decimal.Decimal
	Now    time.Time
}

// FeeRule is a single named step of the withdrawal fee cascade. Evaluate
// returns the fee it forces and true, or false when the rule does not apply.
// Rules only read the ledger; they never mutate anything.
type FeeRule interface {
	Name() string
	Evaluate(q LedgerQuery, req FeeReq) (decimal.Decimal, bool, error)
}

// FeePolicy computes the fee for a withdrawal. It starts from the base rate
// for the account classification and then applies its rules in order, each
// applicable rule overriding the result of everything before it. The order
// is a documented business rule: the waiver rules run first, and the
// business volume override runs last so that it re-imposes a fee even on a
// withdrawal the waivers just zeroed.
type FeePolicy struct {
	ledger LedgerQuery
	rules  []FeeRule
}

// NewFeePolicy builds the standard cascade. loc is the zone in which
// calendar rules (Friday, month boundaries) are evaluated.
func NewFeePolicy(ledger LedgerQuery, loc *time.Location) *FeePolicy {
	return &FeePolicy{
		ledger: ledger,
		rules: []FeeRule{
			fridayWaiver{loc: loc},
			smallAmountWaiver{},
			monthlyVolumeWaiver{loc: loc},
			businessVolumeOverride{},
		},
	}
}

func (p *FeePolicy) ComputeFee(req FeeReq) (decimal.Decimal, error) {
	fee := baseFee(req.Amount, req.Type)
	for _, r := range p.rules {
		f, ok, err := r.Evaluate(p.ledger, req)
		if err != nil {
			return decimal.Zero, err
		}
		if ok {
			fee = f
		}
	}
	return fee, nil
}

func baseFee(amount decimal.Decimal, typ AccountType) decimal.Decimal {
	if typ == Business {
		return businessRate.Mul(amount)
	}
	return individualRate.Mul(amount)
}

// fridayWaiver waives the fee on withdrawals made on a Friday, by calendar
// day in the configured zone.
type fridayWaiver struct {
	loc *time.Location
}

func (fridayWaiver) Name() string { return "friday_waiver" }

func (r fridayWaiver) Evaluate(_ LedgerQuery, req FeeReq) (decimal.Decimal, bool, error) {
	if req.Now.In(r.loc).Weekday() == time.Friday {
		return decimal.Zero, true, nil
	}
	return decimal.Zero, false, nil
}

// smallAmountWaiver waives the fee on withdrawals up to 1000.
type smallAmountWaiver struct{}

func (smallAmountWaiver) Name() string { return "small_amount_waiver" }

func (smallAmountWaiver) Evaluate(_ LedgerQuery, req FeeReq) (decimal.Decimal, bool, error) {
	if req.Amount.LessThanOrEqual(smallWithdrawalMax) {
		return decimal.Zero, true, nil
	}
	return decimal.Zero, false, nil
}

// monthlyVolumeWaiver waives the fee while the account's withdrawal total
// for the current calendar month, not counting the withdrawal being priced,
// is at most 5000.
type monthlyVolumeWaiver struct {
	loc *time.Location
}

func (monthlyVolumeWaiver) Name() string { return "monthly_volume_waiver" }

func (r monthlyVolumeWaiver) Evaluate(q LedgerQuery, req FeeReq) (decimal.Decimal, bool, error) {
	from, until := monthRange(req.Now, r.loc)
	total, err := q.SumCharges(req.AcctID, Withdrawal, from, until)
	if err != nil {
		return decimal.Zero, false, err
	}
	if total.LessThanOrEqual(monthlyWaiverMax) {
		return decimal.Zero, true, nil
	}
	return decimal.Zero, false, nil
}

// businessVolumeOverride forces the fee back to 1.5% of the amount for
// Business accounts whose all-time withdrawal total exceeds 50000. It runs
// after the waivers and overrides them unconditionally.
type businessVolumeOverride struct{}

func (businessVolumeOverride) Name() string { return "business_volume_override" }

func (businessVolumeOverride) Evaluate(q LedgerQuery, req FeeReq) (decimal.Decimal, bool, error) {
	if req.Type != Business {
		return decimal.Zero, false, nil
	}
	total, err := q.SumCharges(req.AcctID, Withdrawal, time.Time{}, time.Time{})
	if err != nil {
		return decimal.Zero, false, err
	}
	if total.GreaterThan(businessVolumeFloor) {
		return individualRate.Mul(req.Amount), true, nil
	}
	return decimal.Zero, false, nil
}

// monthRange returns the half-open calendar month window containing now,
// in the given zone.
func monthRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	t := now.In(loc)
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}
