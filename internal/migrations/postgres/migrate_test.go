package postgres

import (
	"strings"
	"testing"

	"fitstudio/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestStatements_CarryStorageConstraints(t *testing.T) {
	statements := Statements(config.DefaultStudioPolicy())
	all := strings.Join(statements, "\n")

	assert.Contains(t, all, "CHECK (available_spots BETWEEN 0 AND capacity)")
	assert.Contains(t, all, "ON bookings (class_id, client_email) WHERE status <> 'cancelled'")
	for i, stmt := range statements {
		if strings.Contains(stmt, "ADD CONSTRAINT") {
			assert.Contains(t, statements[i-1], "DROP CONSTRAINT IF EXISTS", "statements must be re-runnable")
			continue
		}
		assert.Regexp(t, `IF (NOT )?EXISTS`, stmt, "statements must be re-runnable")
	}
}

func TestStatements_StatusChecksFollowPolicy(t *testing.T) {
	policy := config.DefaultStudioPolicy()
	policy.ClassAllowedStatuses = []string{"scheduled", "active", "completed", "cancelled", "postponed"}
	policy.BookingAllowedStatuses = []string{"confirmed", "cancelled", "completed", "o'brien"}

	all := strings.Join(Statements(policy), "\n")

	assert.Contains(t, all, "CHECK (status IN ('scheduled', 'active', 'completed', 'cancelled', 'postponed'))")
	assert.Contains(t, all, "CHECK (status IN ('confirmed', 'cancelled', 'completed', 'o''brien'))")
	assert.NotContains(t, all, "'pending'")
}
