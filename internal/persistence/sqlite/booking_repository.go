package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/tutoring-scheduler/internal/application"
	"github.com/example/tutoring-scheduler/internal/persistence"
)

// BookingRepository stores confirmed sessions. Instants are persisted as
// RFC 3339 UTC strings, which keeps the overlap comparisons in SQL
// lexicographic and correct. Attending students live in a join table so a
// session can carry any number of them.
type BookingRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewBookingRepository creates a SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateBooking inserts a booking and its student rows in one transaction.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	if booking.ID == "" || len(booking.StudentIDs) == 0 {
		return application.Booking{}, persistence.ErrConstraintViolation
	}

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bookings (id, tutor_id, course_id, start_time, end_time, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			booking.ID,
			booking.TutorID,
			nullString(booking.CourseID),
			formatInstant(booking.Start),
			formatInstant(booking.End),
			formatInstant(booking.CreatedAt),
			formatInstant(booking.UpdatedAt),
		)
		if err != nil {
			return err
		}
		for _, studentID := range booking.StudentIDs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO booking_students (booking_id, student_id) VALUES (?, ?)
			`, booking.ID, studentID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return application.Booking{}, r.mapper.MapError(err)
	}
	return booking, nil
}

// GetBooking retrieves a booking by id, including its students.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, tutor_id, course_id, start_time, end_time, created_at, updated_at
		FROM bookings
		WHERE id = ?
	`, id)
	booking, err := scanBooking(row)
	if err != nil {
		return application.Booking{}, r.mapper.MapError(err)
	}
	if booking.StudentIDs, err = r.loadStudents(ctx, booking.ID); err != nil {
		return application.Booking{}, r.mapper.MapError(err)
	}
	return booking, nil
}

// DeleteBooking removes a booking by id. Student rows cascade.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListBookingsOverlapping returns bookings involving the tutor or any of the
// students whose half-open interval intersects [start, end).
func (r *BookingRepository) ListBookingsOverlapping(ctx context.Context, tutorID string, studentIDs []string, start, end time.Time) ([]application.Booking, error) {
	query := `
		SELECT DISTINCT b.id, b.tutor_id, b.course_id, b.start_time, b.end_time, b.created_at, b.updated_at
		FROM bookings b
		LEFT JOIN booking_students bs ON bs.booking_id = b.id
		WHERE (b.tutor_id = ?`
	args := []any{tutorID}
	if len(studentIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(studentIDs)), ", ")
		query += ` OR bs.student_id IN (` + placeholders + `)`
		for _, studentID := range studentIDs {
			args = append(args, studentID)
		}
	}
	query += `)
		  AND b.start_time < ?
		  AND b.end_time > ?
		ORDER BY b.start_time, b.id
	`
	args = append(args, formatInstant(end), formatInstant(start))

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var bookings []application.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	for i := range bookings {
		if bookings[i].StudentIDs, err = r.loadStudents(ctx, bookings[i].ID); err != nil {
			return nil, r.mapper.MapError(err)
		}
	}
	return bookings, nil
}

// loadStudents returns the booking's students in insertion order.
func (r *BookingRepository) loadStudents(ctx context.Context, bookingID string) ([]string, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT student_id FROM booking_students WHERE booking_id = ? ORDER BY rowid
	`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []string
	for rows.Next() {
		var studentID string
		if err := rows.Scan(&studentID); err != nil {
			return nil, err
		}
		students = append(students, studentID)
	}
	return students, rows.Err()
}

func scanBooking(row rowScanner) (application.Booking, error) {
	var (
		booking                      application.Booking
		courseID                     sql.NullString
		start, end, created, updated string
	)
	err := row.Scan(
		&booking.ID,
		&booking.TutorID,
		&courseID,
		&start,
		&end,
		&created,
		&updated,
	)
	if err != nil {
		return application.Booking{}, err
	}

	booking.CourseID = stringPtr(courseID)
	if booking.Start, err = parseInstant(start); err != nil {
		return application.Booking{}, err
	}
	if booking.End, err = parseInstant(end); err != nil {
		return application.Booking{}, err
	}
	if booking.CreatedAt, err = parseInstant(created); err != nil {
		return application.Booking{}, err
	}
	if booking.UpdatedAt, err = parseInstant(updated); err != nil {
		return application.Booking{}, err
	}
	return booking, nil
}

// formatInstant renders a fixed-width UTC timestamp so the string
// comparisons in SQL order the same way the instants do.
func formatInstant(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func parseInstant(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}
