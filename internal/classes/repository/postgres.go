package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	classeserrors "fitstudio/internal/classes/errors"
	"fitstudio/pkg/config"
	"fitstudio/pkg/db/postgres"
	"fitstudio/pkg/model"

	"github.com/google/uuid"
)

const classColumns = `id, name, class_type, instructor, start_time, end_time, capacity,
	available_spots, timezone, created_by, status, created_at, updated_at`

type postgresClassRepository struct {
	db *sql.DB
}

func NewPostgresClassRepository(cfg *config.Config) ClassRepository {
	return &postgresClassRepository{db: cfg.Client.Postgres}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClass(row rowScanner) (*model.FitnessClass, error) {
	var c model.FitnessClass
	err := row.Scan(
		&c.ID, &c.Name, &c.ClassType, &c.Instructor, &c.StartTime, &c.EndTime, &c.Capacity,
		&c.AvailableSpots, &c.Timezone, &c.CreatedBy, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.StartTime = c.StartTime.UTC()
	c.EndTime = c.EndTime.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func parseClassID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %s", classeserrors.ErrInvalidID, id)
	}
	return parsed.String(), nil
}

func (r *postgresClassRepository) Create(ctx context.Context, class *model.FitnessClass) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	class.ID = uuid.New().String()
	class.CreatedAt = now
	class.UpdatedAt = now

	_, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO classes (`+classColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		class.ID, class.Name, class.ClassType, class.Instructor, class.StartTime, class.EndTime, class.Capacity,
		class.AvailableSpots, class.Timezone, class.CreatedBy, class.Status, class.CreatedAt, class.UpdatedAt,
	)
	if err != nil {
		class.ID = ""
		return fmt.Errorf("failed to create class: %w", err)
	}
	return nil
}

func (r *postgresClassRepository) FindByID(ctx context.Context, id string) (*model.FitnessClass, error) {
	classID, err := parseClassID(id)
	if err != nil {
		return nil, err
	}

	row := postgres.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = $1`, classID)

	class, err := scanClass(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, classeserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find class: %w", err)
	}
	return class, nil
}

func (r *postgresClassRepository) FindUpcoming(ctx context.Context, filter model.ClassFilter, now time.Time) ([]*model.FitnessClass, error) {
	from := now
	if filter.From != nil && filter.From.After(now) {
		from = *filter.From
	}

	conds := []string{"start_time >= $1", "status <> $2"}
	args := []any{from, config.ClassCancelled}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.To != nil {
		add("start_time <= $%d", *filter.To)
	}
	if filter.ClassType != "" {
		add("class_type = $%d", filter.ClassType)
	}
	if filter.Instructor != "" {
		add("instructor = $%d", filter.Instructor)
	}

	query := `SELECT ` + classColumns + ` FROM classes WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY start_time ASC, id ASC`

	rows, err := postgres.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find upcoming classes: %w", err)
	}
	defer rows.Close()

	classes := make([]*model.FitnessClass, 0)
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to decode class: %w", err)
		}
		classes = append(classes, class)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate classes: %w", err)
	}
	return classes, nil
}

func (r *postgresClassRepository) AdjustAvailability(ctx context.Context, id string, delta int) (*model.FitnessClass, error) {
	classID, err := parseClassID(id)
	if err != nil {
		return nil, err
	}

	conn := postgres.Conn(ctx, r.db)
	row := conn.QueryRowContext(ctx,
		`UPDATE classes
		    SET available_spots = available_spots + $2, updated_at = now()
		  WHERE id = $1 AND available_spots + $2 BETWEEN 0 AND capacity
		 RETURNING `+classColumns,
		classID, delta,
	)

	class, err := scanClass(row)
	if err == nil {
		return class, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to adjust availability: %w", err)
	}

	var exists bool
	if err := conn.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM classes WHERE id = $1)`, classID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check class existence: %w", err)
	}
	if !exists {
		return nil, classeserrors.ErrNotFound
	}
	return nil, classeserrors.ErrCapacityExceeded
}

func (r *postgresClassRepository) ExistsOverlappingByName(ctx context.Context, name string, start, end time.Time) (bool, error) {
	var exists bool
	err := postgres.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM classes
		    WHERE name = $1 AND start_time < $3 AND end_time > $2 AND status <> $4
		 )`,
		name, start, end, config.ClassCancelled,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping classes: %w", err)
	}
	return exists, nil
}

func (r *postgresClassRepository) RefreshStatuses(ctx context.Context, now time.Time) (int64, error) {
	conn := postgres.Conn(ctx, r.db)

	completed, err := conn.ExecContext(ctx,
		`UPDATE classes SET status = $1, updated_at = now()
		  WHERE status IN ($2, $3) AND end_time <= $4`,
		config.ClassCompleted, config.ClassScheduled, config.ClassActive, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to complete ended classes: %w", err)
	}
	completedCount, _ := completed.RowsAffected()

	started, err := conn.ExecContext(ctx,
		`UPDATE classes SET status = $1, updated_at = now()
		  WHERE status = $2 AND start_time <= $3 AND end_time > $3`,
		config.ClassActive, config.ClassScheduled, now,
	)
	if err != nil {
		return completedCount, fmt.Errorf("failed to activate started classes: %w", err)
	}
	startedCount, _ := started.RowsAffected()

	return completedCount + startedCount, nil
}
