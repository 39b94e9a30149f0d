package pause

import (
	"context"
	"time"
)

type Repository interface {
	Insert(ctx context.Context, memberID int, start time.Time, reason *string) (*Pause, error)
	FindOpen(ctx context.Context, memberID int) (*Pause, error)
	CloseOpen(ctx context.Context, memberID int, end time.Time) (*Pause, error)
	ListByMember(ctx context.Context, memberID int) ([]Pause, error)
}
