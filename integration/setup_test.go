package integration_test

import (
	"os"
	"testing"

	"gymdesk/internal/db"
	"gymdesk/internal/logger"
	"gymdesk/internal/membership"
	"gymdesk/internal/policy"
	"gymdesk/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init()
}

// setupTestDB connects to TEST_DATABASE_URL, migrates it and empties the
// domain tables. Plans seeded by the migrations are kept.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	database, err := db.Connect(dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: cannot connect to test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database, "../migrations"))

	_, err = database.Exec(`TRUNCATE check_ins, payments, membership_pauses, members, staff_users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return database
}

func newService(t *testing.T, database *sqlx.DB) *membership.Service {
	t.Helper()
	pol, err := policy.Parse("3:1,6:2,12:3")
	require.NoError(t, err)
	return membership.NewService(store.New(database), pol, nil)
}
