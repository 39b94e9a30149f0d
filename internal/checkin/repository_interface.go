package checkin

import (
	"context"
	"time"
)

type Repository interface {
	Insert(ctx context.Context, memberID int, facility FacilityType, at time.Time) (*CheckIn, error)
	ListByMember(ctx context.Context, memberID int, limit, offset int) ([]CheckIn, error)
	CountByFacility(ctx context.Context, from, to time.Time) ([]FacilityCount, error)
}
