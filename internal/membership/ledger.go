package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymdesk/internal/checkin"
	"gymdesk/internal/member"
	"gymdesk/internal/store"
)

// RecordVisit appends the check-in for an authorized member. For pass plans
// (limit > 0) it first consumes one visit with a conditional decrement; the
// returned balance is nil for unlimited plans. r must be bound to the
// request's transaction so both writes commit together.
func RecordVisit(ctx context.Context, r store.Repos, m *member.Member, limit int, facility checkin.FacilityType, now time.Time) (*int, error) {
	var remaining *int
	if limit > 0 {
		left, err := r.Members().ConsumeVisit(ctx, m.ID, limit)
		if errors.Is(err, member.ErrNoVisitConsumed) {
			return nil, ErrVisitConflict
		}
		if err != nil {
			return nil, fmt.Errorf("consume visit: %w", err)
		}
		remaining = &left
	}

	if _, err := r.CheckIns().Insert(ctx, m.ID, facility, now); err != nil {
		return nil, fmt.Errorf("insert check-in: %w", err)
	}
	return remaining, nil
}
