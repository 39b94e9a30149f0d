package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const paymentColumns = `id, member_id, plan_id, amount, payment_date, payment_method,
		gym_share_amount, crossfit_share_amount, created_at, deleted_at`

type repository struct {
	db sqlx.ExtContext
}

func NewRepository(q sqlx.ExtContext) Repository {
	return &repository{db: q}
}

func (r *repository) Insert(ctx context.Context, p *Payment) (*Payment, error) {
	var created Payment
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO payments (member_id, plan_id, amount, payment_date, payment_method,
		                      gym_share_amount, crossfit_share_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+paymentColumns,
		p.MemberID, p.PlanID, p.Amount, p.PaymentDate, p.PaymentMethod,
		p.GymShareAmount, p.CrossfitShareAmount,
	).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("insert payment for member %d: %w", p.MemberID, err)
	}
	return &created, nil
}

func (r *repository) ListByMember(ctx context.Context, memberID int) ([]Payment, error) {
	payments := []Payment{}
	err := sqlx.SelectContext(ctx, r.db, &payments, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE member_id = $1 AND deleted_at IS NULL
		ORDER BY payment_date DESC
	`, memberID)
	if err != nil {
		return nil, fmt.Errorf("list payments for member %d: %w", memberID, err)
	}
	return payments, nil
}

func (r *repository) RevenueSummary(ctx context.Context, from, to time.Time) (*RevenueSummary, error) {
	var s RevenueSummary
	err := sqlx.GetContext(ctx, r.db, &s, `
		SELECT COUNT(*) AS payments,
		       COALESCE(SUM(amount), 0) AS total,
		       COALESCE(SUM(gym_share_amount), 0) AS gym_share,
		       COALESCE(SUM(crossfit_share_amount), 0) AS crossfit_share
		FROM payments
		WHERE deleted_at IS NULL AND payment_date >= $1 AND payment_date < $2
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("revenue summary: %w", err)
	}
	return &s, nil
}
