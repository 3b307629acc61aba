package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/tutoring-scheduler/internal/availability"
	"github.com/example/tutoring-scheduler/internal/persistence"
	"github.com/example/tutoring-scheduler/internal/timezone"
)

// SpecificDateRepository stores single-date availability records.
type SpecificDateRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSpecificDateRepository creates a SQLite specific-date repository.
func NewSpecificDateRepository(pool *ConnectionPool) *SpecificDateRepository {
	return &SpecificDateRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateSpecificDate inserts a single-date record.
func (r *SpecificDateRepository) CreateSpecificDate(ctx context.Context, specific availability.SpecificDate) (availability.SpecificDate, error) {
	if specific.ID == "" {
		return availability.SpecificDate{}, persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO specific_dates
			(id, tutor_id, course_id, date, start_time, end_time, time_zone, storage_format, available)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		specific.ID,
		specific.TutorID,
		nullString(specific.CourseID),
		specific.Date.Format(civilDateLayout),
		specific.StartTime,
		specific.EndTime,
		specific.TimeZone,
		string(specific.Format),
		boolToInt(specific.Available),
	)
	if err != nil {
		return availability.SpecificDate{}, r.mapper.MapError(err)
	}
	return specific, nil
}

// ListSpecificDatesByTutor returns the tutor's single-date records inside
// the inclusive date range, ordered by date.
func (r *SpecificDateRepository) ListSpecificDatesByTutor(ctx context.Context, tutorID string, start, end time.Time) ([]availability.SpecificDate, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, tutor_id, course_id, date, start_time, end_time, time_zone, storage_format, available
		FROM specific_dates
		WHERE tutor_id = ? AND date >= ? AND date <= ?
		ORDER BY date, start_time, id
	`, tutorID, start.Format(civilDateLayout), end.Format(civilDateLayout))
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var specifics []availability.SpecificDate
	for rows.Next() {
		specific, err := scanSpecificDate(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		specifics = append(specifics, specific)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return specifics, nil
}

// DeleteSpecificDate removes a record by id.
func (r *SpecificDateRepository) DeleteSpecificDate(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM specific_dates WHERE id = ?`, id)
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

func scanSpecificDate(row rowScanner) (availability.SpecificDate, error) {
	var (
		specific  availability.SpecificDate
		courseID  sql.NullString
		date      string
		format    string
		available int
	)
	err := row.Scan(
		&specific.ID,
		&specific.TutorID,
		&courseID,
		&date,
		&specific.StartTime,
		&specific.EndTime,
		&specific.TimeZone,
		&format,
		&available,
	)
	if err != nil {
		return availability.SpecificDate{}, err
	}

	parsed, err := time.Parse(civilDateLayout, date)
	if err != nil {
		return availability.SpecificDate{}, err
	}
	specific.Date = parsed
	specific.CourseID = stringPtr(courseID)
	specific.Format = timezone.StorageFormat(format)
	specific.Available = available != 0
	return specific, nil
}
