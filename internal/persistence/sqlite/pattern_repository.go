package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/tutoring-scheduler/internal/availability"
	"github.com/example/tutoring-scheduler/internal/persistence"
	"github.com/example/tutoring-scheduler/internal/timezone"
)

const civilDateLayout = "2006-01-02"

// PatternRepository stores recurring availability records.
type PatternRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewPatternRepository creates a SQLite pattern repository.
func NewPatternRepository(pool *ConnectionPool) *PatternRepository {
	return &PatternRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreatePattern inserts a recurring availability record.
func (r *PatternRepository) CreatePattern(ctx context.Context, pattern availability.RecurrencePattern) (availability.RecurrencePattern, error) {
	if pattern.ID == "" {
		return availability.RecurrencePattern{}, persistence.ErrConstraintViolation
	}

	recurrenceDays, err := encodeIntList(pattern.RecurrenceDays)
	if err != nil {
		return availability.RecurrencePattern{}, err
	}
	exceptionDates, err := encodeStringList(pattern.ExceptionDates)
	if err != nil {
		return availability.RecurrencePattern{}, err
	}

	query := `
		INSERT INTO availability_patterns
			(id, tutor_id, course_id, day_of_week, recurrence_days, start_time, end_time,
			 time_zone, storage_format, start_date, end_date, exception_dates, available)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.helper.Exec(ctx, query,
		pattern.ID,
		pattern.TutorID,
		nullString(pattern.CourseID),
		pattern.DayOfWeek,
		recurrenceDays,
		pattern.StartTime,
		pattern.EndTime,
		pattern.TimeZone,
		string(pattern.Format),
		nullDate(pattern.StartDate),
		nullDate(pattern.EndDate),
		exceptionDates,
		boolToInt(pattern.Available),
	)
	if err != nil {
		return availability.RecurrencePattern{}, r.mapper.MapError(err)
	}
	return pattern, nil
}

// GetPattern retrieves one record by id.
func (r *PatternRepository) GetPattern(ctx context.Context, id string) (availability.RecurrencePattern, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, tutor_id, course_id, day_of_week, recurrence_days, start_time, end_time,
		       time_zone, storage_format, start_date, end_date, exception_dates, available
		FROM availability_patterns
		WHERE id = ?
	`, id)
	pattern, err := scanPattern(row)
	if err != nil {
		return availability.RecurrencePattern{}, r.mapper.MapError(err)
	}
	return pattern, nil
}

// ListPatternsByTutor returns the tutor's recurring records ordered by
// weekday then start time. A non-nil courseID narrows the result to that
// course plus records without a course scope, which apply to every course.
func (r *PatternRepository) ListPatternsByTutor(ctx context.Context, tutorID string, courseID *string) ([]availability.RecurrencePattern, error) {
	query := `
		SELECT id, tutor_id, course_id, day_of_week, recurrence_days, start_time, end_time,
		       time_zone, storage_format, start_date, end_date, exception_dates, available
		FROM availability_patterns
		WHERE tutor_id = ?
	`
	args := []any{tutorID}
	if courseID != nil {
		query += ` AND (course_id IS NULL OR course_id = ?)`
		args = append(args, *courseID)
	}
	query += ` ORDER BY day_of_week, start_time, id`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var patterns []availability.RecurrencePattern
	for rows.Next() {
		pattern, err := scanPattern(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		patterns = append(patterns, pattern)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return patterns, nil
}

// DeletePattern removes a record by id.
func (r *PatternRepository) DeletePattern(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM availability_patterns WHERE id = ?`, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPattern(row rowScanner) (availability.RecurrencePattern, error) {
	var (
		pattern        availability.RecurrencePattern
		courseID       sql.NullString
		recurrenceDays sql.NullString
		format         string
		startDate      sql.NullString
		endDate        sql.NullString
		exceptionDates sql.NullString
		available      int
	)
	err := row.Scan(
		&pattern.ID,
		&pattern.TutorID,
		&courseID,
		&pattern.DayOfWeek,
		&recurrenceDays,
		&pattern.StartTime,
		&pattern.EndTime,
		&pattern.TimeZone,
		&format,
		&startDate,
		&endDate,
		&exceptionDates,
		&available,
	)
	if err != nil {
		return availability.RecurrencePattern{}, err
	}

	pattern.CourseID = stringPtr(courseID)
	pattern.Format = timezone.StorageFormat(format)
	pattern.Available = available != 0
	if pattern.RecurrenceDays, err = decodeIntList(recurrenceDays); err != nil {
		return availability.RecurrencePattern{}, err
	}
	if pattern.ExceptionDates, err = decodeStringList(exceptionDates); err != nil {
		return availability.RecurrencePattern{}, err
	}
	if pattern.StartDate, err = datePtr(startDate); err != nil {
		return availability.RecurrencePattern{}, err
	}
	if pattern.EndDate, err = datePtr(endDate); err != nil {
		return availability.RecurrencePattern{}, err
	}
	return pattern, nil
}

func encodeIntList(values []int) (sql.NullString, error) {
	if len(values) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode list: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeIntList(value sql.NullString) ([]int, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	var out []int
	if err := json.Unmarshal([]byte(value.String), &out); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	return out, nil
}

func encodeStringList(values []string) (sql.NullString, error) {
	if len(values) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode list: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeStringList(value sql.NullString) ([]string, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(value.String), &out); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	return out, nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	out := value.String
	return &out
}

func nullDate(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: value.Format(civilDateLayout), Valid: true}
}

func datePtr(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	parsed, err := time.Parse(civilDateLayout, value.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored date %q: %w", value.String, err)
	}
	return &parsed, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
