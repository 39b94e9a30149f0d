package plan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gymdesk/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound      = errors.New("plan not found")
	ErrDuplicateType = errors.New("plan type already exists")
)

const planColumns = `id, plan_type, name, price, duration_months, gym_share_percentage,
		crossfit_share_percentage, is_drop_in, visit_limit, is_active, created_at, updated_at`

type repository struct {
	db sqlx.ExtContext
}

// NewRepository binds the repository to a pool or an open transaction.
func NewRepository(q sqlx.ExtContext) Repository {
	return &repository{db: q}
}

func (r *repository) FindByID(ctx context.Context, id int) (*Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`

	var p Plan
	if err := sqlx.GetContext(ctx, r.db, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find plan %d: %w", id, err)
	}
	return &p, nil
}

func (r *repository) FindByType(ctx context.Context, planType string) (*Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE plan_type = $1`

	var p Plan
	if err := sqlx.GetContext(ctx, r.db, &p, query, planType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find plan %q: %w", planType, err)
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, onlyActive bool) ([]Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans`
	if onlyActive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY plan_type`

	plans := []Plan{}
	if err := sqlx.SelectContext(ctx, r.db, &plans, query); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

func (r *repository) Create(ctx context.Context, p *Plan) (*Plan, error) {
	query := `
		INSERT INTO plans (plan_type, name, price, duration_months, gym_share_percentage,
		                   crossfit_share_percentage, is_drop_in, visit_limit, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + planColumns

	var created Plan
	err := r.db.QueryRowxContext(ctx, query,
		p.PlanType, p.Name, p.Price, p.DurationMonths, p.GymSharePercentage,
		p.CrossfitSharePercentage, p.IsDropIn, p.VisitLimit, p.IsActive,
	).StructScan(&created)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateType
		}
		return nil, fmt.Errorf("create plan: %w", err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id int, p *Plan) (*Plan, error) {
	query := `
		UPDATE plans
		SET plan_type = $2, name = $3, price = $4, duration_months = $5, gym_share_percentage = $6,
		    crossfit_share_percentage = $7, is_drop_in = $8, visit_limit = $9, is_active = $10,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + planColumns

	var updated Plan
	err := r.db.QueryRowxContext(ctx, query,
		id, p.PlanType, p.Name, p.Price, p.DurationMonths, p.GymSharePercentage,
		p.CrossfitSharePercentage, p.IsDropIn, p.VisitLimit, p.IsActive,
	).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateType
		}
		return nil, fmt.Errorf("update plan %d: %w", id, err)
	}
	return &updated, nil
}
