package member

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, m *Member) (*Member, error)
	FindByID(ctx context.Context, id int) (*Member, error)
	FindByIDForUpdate(ctx context.Context, id int) (*Member, error)
	FindByIdentifier(ctx context.Context, identifier string) (*Member, error)
	FindByIdentifierForUpdate(ctx context.Context, identifier string) (*Member, error)
	List(ctx context.Context, f ListFilter) ([]Member, error)
	UpdateProfile(ctx context.Context, id int, u ProfileUpdate) (*Member, error)
	SetPauseState(ctx context.Context, id int, paused bool, pauseCount int) (*Member, error)
	ExtendEndDate(ctx context.Context, id int, currentEnd time.Time) error
	ConsumeVisit(ctx context.Context, id int, limit int) (int, error)
	SoftDelete(ctx context.Context, id int, at time.Time) error
	Restore(ctx context.Context, id int) error
}
