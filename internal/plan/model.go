package plan

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a catalog entry. PlanType is the tag members carry, e.g.
// "gym_crossfit_3month" or "gym_10pass".
type Plan struct {
	ID                      int              `db:"id" json:"id"`
	PlanType                string           `db:"plan_type" json:"plan_type"`
	Name                    string           `db:"name" json:"name"`
	Price                   decimal.Decimal  `db:"price" json:"price"`
	DurationMonths          *int             `db:"duration_months" json:"duration_months,omitempty"`
	GymSharePercentage      *decimal.Decimal `db:"gym_share_percentage" json:"gym_share_percentage,omitempty"`
	CrossfitSharePercentage *decimal.Decimal `db:"crossfit_share_percentage" json:"crossfit_share_percentage,omitempty"`
	IsDropIn                bool             `db:"is_drop_in" json:"is_drop_in"`
	VisitLimit              *int             `db:"visit_limit" json:"visit_limit,omitempty"`
	IsActive                bool             `db:"is_active" json:"is_active"`
	CreatedAt               time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time        `db:"updated_at" json:"updated_at"`
}

type SavePlanRequest struct {
	PlanType                string           `json:"plan_type" binding:"required"`
	Name                    string           `json:"name" binding:"required"`
	Price                   decimal.Decimal  `json:"price"`
	DurationMonths          *int             `json:"duration_months" binding:"omitempty,min=1"`
	GymSharePercentage      *decimal.Decimal `json:"gym_share_percentage"`
	CrossfitSharePercentage *decimal.Decimal `json:"crossfit_share_percentage"`
	IsDropIn                bool             `json:"is_drop_in"`
	VisitLimit              *int             `json:"visit_limit" binding:"omitempty,min=1"`
	IsActive                *bool            `json:"is_active"`
}

// ToPlan applies the request onto a plan value.
func (r SavePlanRequest) ToPlan() *Plan {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &Plan{
		PlanType:                r.PlanType,
		Name:                    r.Name,
		Price:                   r.Price,
		DurationMonths:          r.DurationMonths,
		GymSharePercentage:      r.GymSharePercentage,
		CrossfitSharePercentage: r.CrossfitSharePercentage,
		IsDropIn:                r.IsDropIn,
		VisitLimit:              r.VisitLimit,
		IsActive:                active,
	}
}

var hundred = decimal.NewFromInt(100)

// ValidShares reports whether the share percentages are within 0..100.
func (p *Plan) ValidShares() bool {
	for _, pct := range []*decimal.Decimal{p.GymSharePercentage, p.CrossfitSharePercentage} {
		if pct != nil && (pct.IsNegative() || pct.GreaterThan(hundred)) {
			return false
		}
	}
	return true
}
