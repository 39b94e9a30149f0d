package payment

import (
	"context"
	"time"
)

type Repository interface {
	Insert(ctx context.Context, p *Payment) (*Payment, error)
	ListByMember(ctx context.Context, memberID int) ([]Payment, error)
	RevenueSummary(ctx context.Context, from, to time.Time) (*RevenueSummary, error)
}
