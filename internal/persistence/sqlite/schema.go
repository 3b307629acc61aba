package sqlite

import (
	"context"
	"fmt"
)

// schema is the full DDL, applied idempotently at startup. Times of day are
// stored as "HH:MM" strings and civil dates as "YYYY-MM-DD" strings; the
// storage format column records whether legacy rows hold local or UTC
// times, empty when unknown.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('tutor', 'student')),
		time_zone TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		tutor_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS availability_patterns (
		id TEXT PRIMARY KEY,
		tutor_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		course_id TEXT REFERENCES courses(id) ON DELETE SET NULL,
		day_of_week INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
		recurrence_days TEXT,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		time_zone TEXT NOT NULL,
		storage_format TEXT NOT NULL DEFAULT '',
		start_date TEXT,
		end_date TEXT,
		exception_dates TEXT,
		available INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS idx_patterns_tutor ON availability_patterns(tutor_id)`,
	`CREATE TABLE IF NOT EXISTS specific_dates (
		id TEXT PRIMARY KEY,
		tutor_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		course_id TEXT REFERENCES courses(id) ON DELETE SET NULL,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		time_zone TEXT NOT NULL,
		storage_format TEXT NOT NULL DEFAULT '',
		available INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS idx_specific_dates_tutor_date ON specific_dates(tutor_id, date)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		tutor_id TEXT NOT NULL REFERENCES users(id),
		course_id TEXT REFERENCES courses(id) ON DELETE SET NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (start_time < end_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_tutor_start ON bookings(tutor_id, start_time)`,
	`CREATE TABLE IF NOT EXISTS booking_students (
		booking_id TEXT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
		student_id TEXT NOT NULL REFERENCES users(id),
		PRIMARY KEY (booking_id, student_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_booking_students_student ON booking_students(student_id)`,
}

// Migrate applies the schema. Every statement is idempotent, so running it
// on an existing database is safe.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	for _, statement := range schema {
		if _, err := pool.DB().ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
