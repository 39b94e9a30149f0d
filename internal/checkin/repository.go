package checkin

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db sqlx.ExtContext
}

func NewRepository(q sqlx.ExtContext) Repository {
	return &repository{db: q}
}

func (r *repository) Insert(ctx context.Context, memberID int, facility FacilityType, at time.Time) (*CheckIn, error) {
	var ci CheckIn
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO check_ins (member_id, facility_type, check_in_time)
		VALUES ($1, $2, $3)
		RETURNING id, member_id, facility_type, check_in_time, deleted_at
	`, memberID, facility, at).StructScan(&ci)
	if err != nil {
		return nil, fmt.Errorf("insert check-in for member %d: %w", memberID, err)
	}
	return &ci, nil
}

func (r *repository) ListByMember(ctx context.Context, memberID int, limit, offset int) ([]CheckIn, error) {
	if limit <= 0 {
		limit = 50
	}

	checkIns := []CheckIn{}
	err := sqlx.SelectContext(ctx, r.db, &checkIns, `
		SELECT id, member_id, facility_type, check_in_time, deleted_at
		FROM check_ins
		WHERE member_id = $1 AND deleted_at IS NULL
		ORDER BY check_in_time DESC
		LIMIT $2 OFFSET $3
	`, memberID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list check-ins for member %d: %w", memberID, err)
	}
	return checkIns, nil
}

func (r *repository) CountByFacility(ctx context.Context, from, to time.Time) ([]FacilityCount, error) {
	counts := []FacilityCount{}
	err := sqlx.SelectContext(ctx, r.db, &counts, `
		SELECT facility_type, date_trunc('day', check_in_time) AS day, COUNT(*) AS total
		FROM check_ins
		WHERE deleted_at IS NULL AND check_in_time >= $1 AND check_in_time < $2
		GROUP BY facility_type, day
		ORDER BY day, facility_type
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("count check-ins: %w", err)
	}
	return counts, nil
}
