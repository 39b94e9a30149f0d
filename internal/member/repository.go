package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gymdesk/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound          = errors.New("member not found")
	ErrDuplicateIdentity = errors.New("email, phone, passport or nationality id already registered")
	// ErrNoVisitConsumed means the conditional decrement matched no row:
	// the pass is empty or another check-in got there first.
	ErrNoVisitConsumed = errors.New("no visit consumed")
)

const memberColumns = `id, name, email, phone, passport_id, nationality_id, plan_type, plan_duration,
		start_date, original_end_date, current_end_date, is_active, is_paused, pause_count,
		remaining_visits, used_visits, created_at, updated_at, deleted_at`

type repository struct {
	db sqlx.ExtContext
}

// NewRepository binds the repository to a pool or an open transaction.
func NewRepository(q sqlx.ExtContext) Repository {
	return &repository{db: q}
}

func (r *repository) Create(ctx context.Context, m *Member) (*Member, error) {
	query := `
		INSERT INTO members (name, email, phone, passport_id, nationality_id, plan_type, plan_duration,
		                     start_date, original_end_date, current_end_date, is_active, remaining_visits)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + memberColumns

	var created Member
	err := r.db.QueryRowxContext(ctx, query,
		m.Name, m.Email, m.Phone, m.PassportID, m.NationalityID, m.PlanType, m.PlanDuration,
		m.StartDate, m.OriginalEndDate, m.CurrentEndDate, m.IsActive, m.RemainingVisits,
	).StructScan(&created)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("create member: %w", err)
	}
	return &created, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*Member, error) {
	return r.findOne(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1 AND deleted_at IS NULL`, id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id int) (*Member, error) {
	return r.findOne(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id)
}

// identifierQuery matches a numeric id, email (case-insensitive), passport,
// nationality id or phone.
const identifierQuery = `SELECT ` + memberColumns + `
		FROM members
		WHERE deleted_at IS NULL
		  AND (id = $1 OR lower(email) = lower($2) OR passport_id = $2 OR nationality_id = $2 OR phone = $2)
		ORDER BY id
		LIMIT 1`

func (r *repository) FindByIdentifier(ctx context.Context, identifier string) (*Member, error) {
	return r.findOne(ctx, identifierQuery, identifierID(identifier), identifier)
}

func (r *repository) FindByIdentifierForUpdate(ctx context.Context, identifier string) (*Member, error) {
	return r.findOne(ctx, identifierQuery+` FOR UPDATE`, identifierID(identifier), identifier)
}

func identifierID(identifier string) int {
	id, err := strconv.Atoi(strings.TrimSpace(identifier))
	if err != nil || id <= 0 {
		return -1
	}
	return id
}

func (r *repository) findOne(ctx context.Context, query string, args ...interface{}) (*Member, error) {
	var m Member
	if err := sqlx.GetContext(ctx, r.db, &m, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	return &m, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Member, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}

	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE deleted_at IS NULL
		  AND ($1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%' OR phone = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	members := []Member{}
	if err := sqlx.SelectContext(ctx, r.db, &members, query, f.Search, f.Limit, f.Offset); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func (r *repository) UpdateProfile(ctx context.Context, id int, u ProfileUpdate) (*Member, error) {
	query := `
		UPDATE members
		SET name = COALESCE($2, name),
		    email = COALESCE($3, email),
		    phone = COALESCE($4, phone),
		    passport_id = COALESCE($5, passport_id),
		    nationality_id = COALESCE($6, nationality_id),
		    is_active = COALESCE($7, is_active),
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + memberColumns

	var m Member
	err := r.db.QueryRowxContext(ctx, query,
		id, u.Name, u.Email, u.Phone, u.PassportID, u.NationalityID, u.IsActive,
	).StructScan(&m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("update member %d: %w", id, err)
	}
	return &m, nil
}

func (r *repository) SetPauseState(ctx context.Context, id int, paused bool, pauseCount int) (*Member, error) {
	query := `
		UPDATE members
		SET is_paused = $2, pause_count = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + memberColumns

	var m Member
	if err := r.db.QueryRowxContext(ctx, query, id, paused, pauseCount).StructScan(&m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set pause state for member %d: %w", id, err)
	}
	return &m, nil
}

func (r *repository) ExtendEndDate(ctx context.Context, id int, currentEnd time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE members
		SET current_end_date = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id, currentEnd)
	if err != nil {
		return fmt.Errorf("extend end date for member %d: %w", id, err)
	}
	return requireRow(res)
}

// ConsumeVisit takes one visit off the pass and returns what is left. A
// member whose counter was never seeded starts from limit - used_visits.
func (r *repository) ConsumeVisit(ctx context.Context, id int, limit int) (int, error) {
	query := `
		UPDATE members
		SET remaining_visits = COALESCE(remaining_visits, GREATEST($2 - used_visits, 0)) - 1,
		    used_visits = used_visits + 1,
		    updated_at = NOW()
		WHERE id = $1
		  AND deleted_at IS NULL
		  AND COALESCE(remaining_visits, GREATEST($2 - used_visits, 0)) > 0
		RETURNING remaining_visits`

	var remaining int
	err := sqlx.GetContext(ctx, r.db, &remaining, query, id, limit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNoVisitConsumed
		}
		return 0, fmt.Errorf("consume visit for member %d: %w", id, err)
	}
	return remaining, nil
}

func (r *repository) SoftDelete(ctx context.Context, id int, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE members
		SET deleted_at = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id, at)
	if err != nil {
		return fmt.Errorf("delete member %d: %w", id, err)
	}
	return requireRow(res)
}

func (r *repository) Restore(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE members
		SET deleted_at = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NOT NULL
	`, id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("restore member %d: %w", id, err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
