package staff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gymdesk/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound    = errors.New("staff user not found")
	ErrEmailExists = errors.New("email already exists")
)

type repository struct {
	db sqlx.ExtContext
}

func NewRepository(q sqlx.ExtContext) Repository {
	return &repository{db: q}
}

func (r *repository) Create(ctx context.Context, name, email, passwordHash, role string) (*Staff, error) {
	query := `
		INSERT INTO staff_users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, password_hash, role, created_at
	`

	var s Staff
	if err := sqlx.GetContext(ctx, r.db, &s, query, name, email, passwordHash, role); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create staff user: %w", err)
	}
	return &s, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Staff, error) {
	return r.findOne(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM staff_users
		WHERE lower(email) = lower($1)
	`, email)
}

func (r *repository) FindByID(ctx context.Context, id int) (*Staff, error) {
	return r.findOne(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM staff_users
		WHERE id = $1
	`, id)
}

func (r *repository) findOne(ctx context.Context, query string, args ...interface{}) (*Staff, error) {
	var s Staff
	if err := sqlx.GetContext(ctx, r.db, &s, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find staff user: %w", err)
	}
	return &s, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM staff_users WHERE lower(email) = lower($1))`, email)
}
