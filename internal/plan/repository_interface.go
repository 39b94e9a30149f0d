package plan

import "context"

type Repository interface {
	FindByID(ctx context.Context, id int) (*Plan, error)
	FindByType(ctx context.Context, planType string) (*Plan, error)
	List(ctx context.Context, onlyActive bool) ([]Plan, error)
	Create(ctx context.Context, p *Plan) (*Plan, error)
	Update(ctx context.Context, id int, p *Plan) (*Plan, error)
}
