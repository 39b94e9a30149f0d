package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
	MethodOnline   Method = "online"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer, MethodOnline:
		return true
	}
	return false
}

// Payment share amounts are computed once at insert and never recomputed.
type Payment struct {
	ID                  int              `db:"id" json:"id"`
	MemberID            int              `db:"member_id" json:"member_id"`
	PlanID              *int             `db:"plan_id" json:"plan_id,omitempty"`
	Amount              decimal.Decimal  `db:"amount" json:"amount"`
	PaymentDate         time.Time        `db:"payment_date" json:"payment_date"`
	PaymentMethod       Method           `db:"payment_method" json:"payment_method"`
	GymShareAmount      *decimal.Decimal `db:"gym_share_amount" json:"gym_share_amount"`
	CrossfitShareAmount *decimal.Decimal `db:"crossfit_share_amount" json:"crossfit_share_amount"`
	CreatedAt           time.Time        `db:"created_at" json:"created_at"`
	DeletedAt           *time.Time       `db:"deleted_at" json:"deleted_at,omitempty"`
}

type RevenueSummary struct {
	Payments      int             `db:"payments" json:"payments"`
	Total         decimal.Decimal `db:"total" json:"total"`
	GymShare      decimal.Decimal `db:"gym_share" json:"gym_share"`
	CrossfitShare decimal.Decimal `db:"crossfit_share" json:"crossfit_share"`
}
