package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fitstudio/pkg/config"
	"fitstudio/pkg/logger"

	"github.com/lib/pq"
)

// Statements are idempotent and run in order inside one transaction. The
// status constraints take their lists from policy.
func Statements(policy config.StudioPolicy) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS classes (
			id              UUID PRIMARY KEY,
			name            VARCHAR(100) NOT NULL CHECK (name <> ''),
			class_type      VARCHAR(50)  NOT NULL CHECK (class_type <> ''),
			instructor      VARCHAR(100) NOT NULL CHECK (instructor <> ''),
			start_time      TIMESTAMPTZ  NOT NULL,
			end_time        TIMESTAMPTZ  NOT NULL,
			capacity        INTEGER      NOT NULL CHECK (capacity >= 1),
			available_spots INTEGER      NOT NULL,
			timezone        VARCHAR(64)  NOT NULL,
			created_by      VARCHAR(100) NOT NULL DEFAULT '',
			status          VARCHAR(32)  NOT NULL,
			created_at      TIMESTAMPTZ  NOT NULL,
			updated_at      TIMESTAMPTZ  NOT NULL,
			CONSTRAINT classes_time_range CHECK (end_time > start_time),
			CONSTRAINT classes_available_spots CHECK (available_spots BETWEEN 0 AND capacity)
		)`,
		`CREATE INDEX IF NOT EXISTS classes_start_time_idx ON classes (start_time, id)`,
		`CREATE INDEX IF NOT EXISTS classes_name_start_idx ON classes (name, start_time)`,
		`CREATE INDEX IF NOT EXISTS classes_status_end_idx ON classes (status, end_time)`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id           UUID PRIMARY KEY,
			class_id     UUID         NOT NULL REFERENCES classes (id),
			client_name  VARCHAR(100) NOT NULL CHECK (client_name <> ''),
			client_email VARCHAR(254) NOT NULL CHECK (client_email <> ''),
			booking_time TIMESTAMPTZ  NOT NULL,
			status       VARCHAR(32)  NOT NULL,
			created_at   TIMESTAMPTZ  NOT NULL,
			updated_at   TIMESTAMPTZ  NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS bookings_active_client_uidx
			ON bookings (class_id, client_email) WHERE status <> 'cancelled'`,
		`CREATE INDEX IF NOT EXISTS bookings_client_time_idx
			ON bookings (client_email, booking_time DESC, id DESC)`,

		// Replaced on every run so a changed policy reaches existing tables.
		`ALTER TABLE classes DROP CONSTRAINT IF EXISTS classes_status_allowed`,
		`ALTER TABLE classes ADD CONSTRAINT classes_status_allowed
			CHECK (status IN (` + inList(policy.ClassAllowedStatuses) + `))`,
		`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_allowed`,
		`ALTER TABLE bookings ADD CONSTRAINT bookings_status_allowed
			CHECK (status IN (` + inList(policy.BookingAllowedStatuses) + `))`,
	}
}

func inList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = pq.QuoteLiteral(v)
	}
	return strings.Join(quoted, ", ")
}

func RunMigration(ctx context.Context, db *sql.DB, policy config.StudioPolicy, log *logger.Logger) error {
	statements := Statements(policy)
	log.Info("Running Postgres migrations", "statements", len(statements))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	log.Info("All Postgres migrations applied successfully")
	return nil
}
