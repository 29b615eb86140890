package repository

import (
	"fmt"
	"os"
	"testing"

	"github.com/comitanigiacomo/sober-engine/internal/db"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "sober_user"),
		getEnv("DB_PASSWORD", "secret"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "sober_db"))

	conn, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}

	require.NoError(t, db.RunMigrations(conn.DB, "pgx"), "Failed to migrate test database")
	return conn
}

func cleanup(t *testing.T, conn *sqlx.DB) {
	t.Helper()
	_, err := conn.Exec(`TRUNCATE TABLE user_milestones, journals, copings, pod_messages, pod_members, pods,
		notifications, device_tokens, subscription_payments, subscriptions, users CASCADE`)
	require.NoError(t, err, "Failed to clean up database")

	// Drop synthesized milestones so every run starts from the seeds.
	_, err = conn.Exec(`UPDATE milestones SET next_milestone_id = NULL`)
	require.NoError(t, err)
	_, err = conn.Exec(`DELETE FROM milestones WHERE day_count > 1`)
	require.NoError(t, err)
}
