package store

import (
	"context"
	"fmt"

	"gymdesk/internal/checkin"
	"gymdesk/internal/member"
	"gymdesk/internal/pause"
	"gymdesk/internal/payment"
	"gymdesk/internal/plan"

	"github.com/jmoiron/sqlx"
)

// Repos groups the repositories bound to one connection or transaction.
type Repos interface {
	Members() member.Repository
	Plans() plan.Repository
	Pauses() pause.Repository
	CheckIns() checkin.Repository
	Payments() payment.Repository
}

// Store runs fn inside a single transaction. fn's error rolls everything back.
type Store interface {
	Repos
	InTx(ctx context.Context, fn func(Repos) error) error
}

type repos struct {
	q sqlx.ExtContext
}

func (r repos) Members() member.Repository { return member.NewRepository(r.q) }
func (r repos) Plans() plan.Repository { return plan.NewRepository(r.q) }
func (r repos) Pauses() pause.Repository { return pause.NewRepository(r.q) }
func (r repos) CheckIns() checkin.Repository { return checkin.NewRepository(r.q) }
func (r repos) Payments() payment.Repository { return payment.NewRepository(r.q) }

type SQLStore struct {
	repos
	db *sqlx.DB
}

func New(db *sqlx.DB) *SQLStore {
	return &SQLStore{repos: repos{q: db}, db: db}
}

func (s *SQLStore) InTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(repos{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
