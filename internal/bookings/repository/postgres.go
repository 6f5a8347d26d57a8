package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	bookingserrors "fitstudio/internal/bookings/errors"
	"fitstudio/pkg/config"
	"fitstudio/pkg/db/postgres"
	"fitstudio/pkg/model"

	"github.com/google/uuid"
)

const bookingColumns = `id, class_id, client_name, client_email, booking_time, status, created_at, updated_at`

type postgresBookingRepository struct {
	db *sql.DB
}

func NewPostgresBookingRepository(cfg *config.Config) BookingRepository {
	return &postgresBookingRepository{db: cfg.Client.Postgres}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner, extra ...any) (*model.Booking, error) {
	var b model.Booking
	dest := append([]any{
		&b.ID, &b.ClassID, &b.ClientName, &b.ClientEmail, &b.BookingTime, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	b.Active = b.Status != config.Cancelled
	b.BookingTime = b.BookingTime.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}

func parseBookingID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return parsed.String(), nil
}

func (r *postgresBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	booking.ID = uuid.New().String()
	booking.Active = booking.Status != config.Cancelled
	booking.BookingTime = booking.BookingTime.UTC().Truncate(time.Microsecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	_, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO bookings (`+bookingColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		booking.ID, booking.ClassID, booking.ClientName, booking.ClientEmail,
		booking.BookingTime, booking.Status, booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		booking.ID = ""
		if postgres.IsUniqueViolation(err) {
			return bookingserrors.ErrDuplicateActive
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *postgresBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	bookingID, err := parseBookingID(id)
	if err != nil {
		return nil, err
	}

	row := postgres.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, bookingID)

	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return booking, nil
}

func (r *postgresBookingRepository) FindActive(ctx context.Context, classID, email string) (*model.Booking, error) {
	if _, err := uuid.Parse(classID); err != nil {
		return nil, bookingserrors.ErrNotFound
	}

	row := postgres.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE class_id = $1 AND client_email = $2 AND status <> $3`,
		classID, email, config.Cancelled)

	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active booking: %w", err)
	}
	return booking, nil
}

func (r *postgresBookingRepository) FindByClient(ctx context.Context, email, status string) ([]*model.BookingView, error) {
	query := `SELECT b.id, b.class_id, b.client_name, b.client_email, b.booking_time, b.status,
			b.created_at, b.updated_at,
			c.name, c.class_type, c.instructor, c.start_time, c.end_time, c.timezone
		FROM bookings b
		JOIN classes c ON c.id = b.class_id
		WHERE b.client_email = $1 AND ($2::text = '' OR b.status = $2)
		ORDER BY b.booking_time DESC, b.id DESC`

	rows, err := postgres.Conn(ctx, r.db).QueryContext(ctx, query, email, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list client bookings: %w", err)
	}
	defer rows.Close()

	views := make([]*model.BookingView, 0)
	for rows.Next() {
		var v model.BookingView
		booking, err := scanBooking(rows,
			&v.ClassName, &v.ClassType, &v.Instructor, &v.StartTime, &v.EndTime, &v.Timezone)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client booking: %w", err)
		}
		v.Booking = *booking
		v.StartTime = v.StartTime.UTC()
		v.EndTime = v.EndTime.UTC()
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate client bookings: %w", err)
	}
	return views, nil
}

func (r *postgresBookingRepository) UpdateStatus(ctx context.Context, id, from, to string) (*model.Booking, error) {
	bookingID, err := parseBookingID(id)
	if err != nil {
		return nil, err
	}

	conn := postgres.Conn(ctx, r.db)
	row := conn.QueryRowContext(ctx,
		`UPDATE bookings SET status = $3, updated_at = $4
		 WHERE id = $1 AND status = $2
		 RETURNING `+bookingColumns,
		bookingID, from, to, time.Now().UTC())

	booking, err := scanBooking(row)
	if err == nil {
		return booking, nil
	}
	if postgres.IsUniqueViolation(err) {
		return nil, bookingserrors.ErrDuplicateActive
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	var exists bool
	if err := conn.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, bookingID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check booking existence: %w", err)
	}
	if !exists {
		return nil, bookingserrors.ErrNotFound
	}
	return nil, bookingserrors.ErrStatusChanged
}

func (r *postgresBookingRepository) CountActiveByClass(ctx context.Context, classID string) (int64, error) {
	var count int64
	err := postgres.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE class_id = $1 AND status <> $2`,
		classID, config.Cancelled).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active bookings: %w", err)
	}
	return count, nil
}
