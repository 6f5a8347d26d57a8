package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// StudioPolicy holds the booking rules resolved once at start-up. It is passed
// by value to every component that validates classes or bookings.
type StudioPolicy struct {
	DefaultTimezone         string   `envconfig:"DEFAULT_TIMEZONE" default:"UTC"`
	ClassMaxDurationHours   int      `envconfig:"CLASS_MAX_DURATION_HOURS" default:"4"`
	ClassMinDurationMinutes int      `envconfig:"CLASS_MIN_DURATION_MINUTES" default:"30"`
	ClassMinCapacity        int      `envconfig:"CLASS_MIN_CAPACITY" default:"1"`
	ClassMaxCapacity        int      `envconfig:"CLASS_MAX_CAPACITY" default:"50"`
	ClassAllowedStatuses    []string `envconfig:"CLASS_ALLOWED_STATUSES" default:"scheduled,active,completed,cancelled"`
	ClassDefaultStatus      string   `envconfig:"CLASS_DEFAULT_STATUS" default:"scheduled"`
	BookingAllowedStatuses  []string `envconfig:"BOOKING_ALLOWED_STATUSES" default:"pending,confirmed,cancelled,completed"`
}

func LoadStudioPolicy() (StudioPolicy, error) {
	var p StudioPolicy
	if err := envconfig.Process("", &p); err != nil {
		return StudioPolicy{}, fmt.Errorf("failed to load studio policy: %w", err)
	}
	p.ClassAllowedStatuses = normalizeList(p.ClassAllowedStatuses)
	p.BookingAllowedStatuses = normalizeList(p.BookingAllowedStatuses)
	p.ClassDefaultStatus = strings.ToLower(strings.TrimSpace(p.ClassDefaultStatus))
	return p, nil
}

// DefaultStudioPolicy mirrors the envconfig defaults.
func DefaultStudioPolicy() StudioPolicy {
	return StudioPolicy{
		DefaultTimezone:         "UTC",
		ClassMaxDurationHours:   4,
		ClassMinDurationMinutes: 30,
		ClassMinCapacity:        1,
		ClassMaxCapacity:        50,
		ClassAllowedStatuses:    []string{ClassScheduled, ClassActive, ClassCompleted, ClassCancelled},
		ClassDefaultStatus:      ClassScheduled,
		BookingAllowedStatuses:  []string{Pending, Confirmed, Cancelled, Completed},
	}
}

func (p StudioPolicy) MaxDuration() time.Duration {
	return time.Duration(p.ClassMaxDurationHours) * time.Hour
}

func (p StudioPolicy) MinDuration() time.Duration {
	return time.Duration(p.ClassMinDurationMinutes) * time.Minute
}

func (p StudioPolicy) ClassStatusAllowed(status string) bool {
	return slices.Contains(p.ClassAllowedStatuses, status)
}

func (p StudioPolicy) BookingStatusAllowed(status string) bool {
	return slices.Contains(p.BookingAllowedStatuses, status)
}

func (p StudioPolicy) Validate() []string {
	var problems []string

	if _, err := time.LoadLocation(p.DefaultTimezone); err != nil {
		problems = append(problems, fmt.Sprintf("DefaultTimezone must be an IANA zone name, got: %s", p.DefaultTimezone))
	}
	if p.ClassMaxDurationHours <= 0 {
		problems = append(problems, fmt.Sprintf("ClassMaxDurationHours must be positive, got: %d", p.ClassMaxDurationHours))
	}
	if p.ClassMinDurationMinutes < 0 {
		problems = append(problems, fmt.Sprintf("ClassMinDurationMinutes cannot be negative, got: %d", p.ClassMinDurationMinutes))
	}
	if p.MinDuration() > p.MaxDuration() {
		problems = append(problems, fmt.Sprintf("ClassMinDurationMinutes (%d) exceeds ClassMaxDurationHours (%d)", p.ClassMinDurationMinutes, p.ClassMaxDurationHours))
	}
	if p.ClassMinCapacity < 1 {
		problems = append(problems, fmt.Sprintf("ClassMinCapacity must be at least 1, got: %d", p.ClassMinCapacity))
	}
	if p.ClassMaxCapacity < p.ClassMinCapacity {
		problems = append(problems, fmt.Sprintf("ClassMaxCapacity (%d) must be >= ClassMinCapacity (%d)", p.ClassMaxCapacity, p.ClassMinCapacity))
	}
	if !p.ClassStatusAllowed(p.ClassDefaultStatus) {
		problems = append(problems, fmt.Sprintf("ClassDefaultStatus %q is not in ClassAllowedStatuses %v", p.ClassDefaultStatus, p.ClassAllowedStatuses))
	}
	// The status refresh writes active and completed on its own.
	for _, required := range []string{ClassActive, ClassCompleted, ClassCancelled} {
		if !p.ClassStatusAllowed(required) {
			problems = append(problems, fmt.Sprintf("ClassAllowedStatuses must contain %q, got: %v", required, p.ClassAllowedStatuses))
		}
	}
	for _, required := range []string{Confirmed, Cancelled, Completed} {
		if !p.BookingStatusAllowed(required) {
			problems = append(problems, fmt.Sprintf("BookingAllowedStatuses must contain %q, got: %v", required, p.BookingAllowedStatuses))
		}
	}

	return problems
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
