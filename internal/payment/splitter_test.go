package payment

import (
	"testing"

	"gymdesk/internal/plan"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestComputeShares(t *testing.T) {
	tests := []struct {
		name         string
		amount       string
		gymPct       *decimal.Decimal
		crossfitPct  *decimal.Decimal
		wantGym      string
		wantCrossfit string
	}{
		{"even split", "1000", decPtr("20"), decPtr("80"), "200.00", "800.00"},
		{"gym only", "350", decPtr("100"), decPtr("0"), "350.00", "0.00"},
		{"rounds half up", "0.05", decPtr("50"), decPtr("50"), "0.03", "0.02"},
		{"remainder keeps the cent", "100", decPtr("33.33"), decPtr("66.67"), "33.33", "66.67"},
		{"thirds", "10", decPtr("33.33"), decPtr("66.67"), "3.33", "6.67"},
		{"odd amount", "199.99", decPtr("35"), decPtr("65"), "70.00", "129.99"},
		{"missing crossfit pct counts as zero", "500", decPtr("40"), nil, "200.00", "0.00"},
		{"not summing to 100 rounds independently", "100.01", decPtr("50"), decPtr("40"), "50.01", "40.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares := ComputeShares(dec(tt.amount), tt.gymPct, tt.crossfitPct)
			require.NotNil(t, shares)
			assert.True(t, shares.GymShareAmount.Equal(dec(tt.wantGym)), "gym share %s", shares.GymShareAmount)
			assert.True(t, shares.CrossfitShareAmount.Equal(dec(tt.wantCrossfit)), "crossfit share %s", shares.CrossfitShareAmount)
		})
	}
}

func TestComputeShares_SumsToAmountWhenPercentagesSumTo100(t *testing.T) {
	amounts := []string{"0.01", "0.99", "1", "9.99", "12.34", "333.33", "1000", "1234.56", "99999.99"}
	splits := [][2]string{{"0", "100"}, {"12.5", "87.5"}, {"20", "80"}, {"33.33", "66.67"}, {"49.99", "50.01"}, {"70", "30"}}

	for _, a := range amounts {
		for _, s := range splits {
			shares := ComputeShares(dec(a), decPtr(s[0]), decPtr(s[1]))
			sum := shares.GymShareAmount.Add(shares.CrossfitShareAmount)
			assert.True(t, sum.Equal(dec(a)), "amount %s split %v summed to %s", a, s, sum)
		}
	}
}

func TestComputeShares_NoPercentages(t *testing.T) {
	assert.Nil(t, ComputeShares(dec("1000"), nil, nil))
}

func TestSharesForPlan(t *testing.T) {
	assert.Nil(t, SharesForPlan(dec("1000"), nil))
	assert.Nil(t, SharesForPlan(dec("1000"), &plan.Plan{PlanType: "gym_dropin"}))

	p := &plan.Plan{GymSharePercentage: decPtr("20"), CrossfitSharePercentage: decPtr("80")}
	shares := SharesForPlan(dec("1000"), p)
	require.NotNil(t, shares)
	assert.Equal(t, "200", shares.GymShareAmount.String())
	assert.Equal(t, "800", shares.CrossfitShareAmount.String())
}

func TestComputeShares_Deterministic(t *testing.T) {
	a := ComputeShares(dec("777.77"), decPtr("45"), decPtr("55"))
	b := ComputeShares(dec("777.77"), decPtr("45"), decPtr("55"))
	assert.Equal(t, a.GymShareAmount.String(), b.GymShareAmount.String())
	assert.Equal(t, a.CrossfitShareAmount.String(), b.CrossfitShareAmount.String())
}
