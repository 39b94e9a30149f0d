package pause

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gymdesk/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNoOpenPause      = errors.New("no open pause for member")
	ErrPauseAlreadyOpen = errors.New("member already has an open pause")
)

const pauseColumns = `id, member_id, pause_start_date, pause_end_date, pause_reason, created_at`

type repository struct {
	db sqlx.ExtContext
}

func NewRepository(q sqlx.ExtContext) Repository {
	return &repository{db: q}
}

func (r *repository) Insert(ctx context.Context, memberID int, start time.Time, reason *string) (*Pause, error) {
	var p Pause
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO membership_pauses (member_id, pause_start_date, pause_reason)
		VALUES ($1, $2, $3)
		RETURNING `+pauseColumns,
		memberID, start, reason,
	).StructScan(&p)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrPauseAlreadyOpen
		}
		return nil, fmt.Errorf("insert pause for member %d: %w", memberID, err)
	}
	return &p, nil
}

func (r *repository) FindOpen(ctx context.Context, memberID int) (*Pause, error) {
	var p Pause
	err := sqlx.GetContext(ctx, r.db, &p, `
		SELECT `+pauseColumns+`
		FROM membership_pauses
		WHERE member_id = $1 AND pause_end_date IS NULL
	`, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoOpenPause
		}
		return nil, fmt.Errorf("find open pause for member %d: %w", memberID, err)
	}
	return &p, nil
}

func (r *repository) CloseOpen(ctx context.Context, memberID int, end time.Time) (*Pause, error) {
	var p Pause
	err := r.db.QueryRowxContext(ctx, `
		UPDATE membership_pauses
		SET pause_end_date = $2
		WHERE member_id = $1 AND pause_end_date IS NULL
		RETURNING `+pauseColumns,
		memberID, end,
	).StructScan(&p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoOpenPause
		}
		return nil, fmt.Errorf("close pause for member %d: %w", memberID, err)
	}
	return &p, nil
}

func (r *repository) ListByMember(ctx context.Context, memberID int) ([]Pause, error) {
	pauses := []Pause{}
	err := sqlx.SelectContext(ctx, r.db, &pauses, `
		SELECT `+pauseColumns+`
		FROM membership_pauses
		WHERE member_id = $1
		ORDER BY pause_start_date DESC
	`, memberID)
	if err != nil {
		return nil, fmt.Errorf("list pauses for member %d: %w", memberID, err)
	}
	return pauses, nil
}
