// Package availability expands stored weekly recurrence patterns into
// concrete dated instances for a bounded query window, rendered in the
// viewer's timezone. Instances are derived values: they are produced fresh
// on every query and never written back to storage.
package availability

import (
	"time"

	"github.com/example/tutoring-scheduler/internal/timezone"
)

// RecurrencePattern is the stored availability record when recurring.
// Weekday integers use the canonical Python convention (Monday=0).
type RecurrencePattern struct {
	ID             string
	TutorID        string
	CourseID       *string
	DayOfWeek      int
	RecurrenceDays []int
	StartTime      string // "HH:MM", open interval [StartTime, EndTime)
	EndTime        string
	TimeZone       string
	Format         timezone.StorageFormat // empty on legacy rows lacking the tag
	StartDate      *time.Time             // first active civil date, inclusive; nil on legacy rows
	EndDate        *time.Time             // last active civil date, inclusive; nil = open-ended
	ExceptionDates []string               // "2006-01-02" dates the pattern skips
	Available      bool
}

// Weekdays returns the pattern's active weekday set. RecurrenceDays, when
// present, is authoritative; otherwise the single DayOfWeek applies.
func (p RecurrencePattern) Weekdays() []int {
	if len(p.RecurrenceDays) == 0 {
		return []int{p.DayOfWeek}
	}
	seen := make(map[int]struct{}, len(p.RecurrenceDays))
	out := make([]int, 0, len(p.RecurrenceDays))
	for _, day := range p.RecurrenceDays {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	return out
}

// SpecificDate is a non-recurring availability record scoped to exactly one
// civil date. It takes precedence over any recurring pattern covering the
// same tutor and date.
type SpecificDate struct {
	ID        string
	TutorID   string
	CourseID  *string
	Date      time.Time
	StartTime string
	EndTime   string
	TimeZone  string
	Format    timezone.StorageFormat
	Available bool
}

// VirtualInstance is one concrete occurrence computed from a pattern or
// specific-date record. StartTime and EndTime are rendered in the viewer's
// zone; ViewerDate carries the civil date the rendered start falls on there,
// which can differ from Date by a day for conversions near midnight.
type VirtualInstance struct {
	PatternID  string
	TutorID    string
	CourseID   *string
	Date       time.Time
	ViewerDate time.Time
	StartTime  string
	EndTime    string
	TimeZone   string
	Available  bool
	Specific   bool
}

// Window is an inclusive civil date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// WarningCode classifies data-quality findings surfaced alongside results.
type WarningCode string

const (
	// WarningInvalidTimeZone marks a record whose zone does not resolve in
	// the IANA database; the record is excluded from results.
	WarningInvalidTimeZone WarningCode = "invalid_timezone"
	// WarningInvalidTime marks a record whose stored time-of-day strings do
	// not parse; the record is excluded from results.
	WarningInvalidTime WarningCode = "invalid_time"
	// WarningInvalidWeekday marks a pattern carrying a weekday outside 0..6.
	WarningInvalidWeekday WarningCode = "invalid_weekday"
	// WarningMissingStartDate marks a legacy pattern without a lower
	// boundary; expansion proceeds from the query start, never earlier.
	WarningMissingStartDate WarningCode = "missing_start_date"
	// WarningAmbiguousStorageFormat marks a record whose local-vs-UTC
	// storage convention could not be established; stored times are read as
	// local, the safest default.
	WarningAmbiguousStorageFormat WarningCode = "ambiguous_storage_format"
	// WarningUnknownCourse marks a record referencing a course id that no
	// longer exists; the record is excluded from results.
	WarningUnknownCourse WarningCode = "unknown_course"
)

// Warning reports a data-quality issue for one record. Warnings accompany
// results; they never fail the query.
type Warning struct {
	Code     WarningCode
	RecordID string
	TutorID  string
	Message  string
}

// Expansion is the result of expanding patterns over a window.
type Expansion struct {
	Instances []VirtualInstance
	Warnings  []Warning
}
