package payment

import (
	"gymdesk/internal/plan"

	"github.com/shopspring/decimal"
)

// SharePrecision is the number of decimal places shares are rounded to.
// Rounding is half away from zero.
const SharePrecision = 2

var hundred = decimal.NewFromInt(100)

type Shares struct {
	GymShareAmount      decimal.Decimal `json:"gym_share_amount"`
	CrossfitShareAmount decimal.Decimal `json:"crossfit_share_amount"`
}

// ComputeShares splits amount between the gym and CrossFit. It returns nil
// when neither percentage is set. A missing percentage counts as zero. When
// the percentages add up to 100 the CrossFit share is the remainder of the
// rounded gym share, so the two always sum to the amount.
func ComputeShares(amount decimal.Decimal, gymPct, crossfitPct *decimal.Decimal) *Shares {
	if gymPct == nil && crossfitPct == nil {
		return nil
	}

	gp := valueOrZero(gymPct)
	cp := valueOrZero(crossfitPct)

	gym := percentOf(amount, gp)
	var crossfit decimal.Decimal
	if gp.Add(cp).Equal(hundred) {
		crossfit = amount.Round(SharePrecision).Sub(gym)
	} else {
		crossfit = percentOf(amount, cp)
	}

	return &Shares{GymShareAmount: gym, CrossfitShareAmount: crossfit}
}

// SharesForPlan returns nil when the payment has no plan.
func SharesForPlan(amount decimal.Decimal, p *plan.Plan) *Shares {
	if p == nil {
		return nil
	}
	return ComputeShares(amount, p.GymSharePercentage, p.CrossfitSharePercentage)
}

func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred).Round(SharePrecision)
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
