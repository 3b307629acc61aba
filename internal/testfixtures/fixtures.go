// Package testfixtures provides deterministic clocks, identifier generators
// and prebuilt domain records for tests.
package testfixtures

import (
	"time"

	"github.com/example/tutoring-scheduler/internal/application"
	"github.com/example/tutoring-scheduler/internal/availability"
)

var referenceTime = time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC)

// ReferenceTime is the shared anchor instant used across fixtures. It falls on
// a Monday so weekday arithmetic in tests is easy to follow.
func ReferenceTime() time.Time {
	return referenceTime
}

// UserOption mutates a user fixture before it is returned.
type UserOption func(*application.User)

// WithUserZone overrides the fixture's IANA time zone.
func WithUserZone(zone string) UserOption {
	return func(u *application.User) { u.TimeZone = zone }
}

// WithUserEmail overrides the fixture's email address.
func WithUserEmail(email string) UserOption {
	return func(u *application.User) { u.Email = email }
}

// TutorFixture returns a tutor account with sensible defaults.
func TutorFixture(id string, opts ...UserOption) application.User {
	user := application.User{
		ID:          id,
		Email:       id + "@example.com",
		DisplayName: "Tutor " + id,
		Role:        application.RoleTutor,
		TimeZone:    "America/Chicago",
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// StudentFixture returns a student account with sensible defaults.
func StudentFixture(id string, opts ...UserOption) application.User {
	user := application.User{
		ID:          id,
		Email:       id + "@example.com",
		DisplayName: "Student " + id,
		Role:        application.RoleStudent,
		TimeZone:    "America/Chicago",
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// PatternOption mutates a recurrence pattern fixture.
type PatternOption func(*availability.RecurrencePattern)

// WithPatternDays sets the recurrence weekday list (Monday-based).
func WithPatternDays(days ...int) PatternOption {
	return func(p *availability.RecurrencePattern) { p.RecurrenceDays = days }
}

// WithPatternTimes overrides the start and end times ("HH:MM").
func WithPatternTimes(start, end string) PatternOption {
	return func(p *availability.RecurrencePattern) {
		p.StartTime = start
		p.EndTime = end
	}
}

// WithPatternZone overrides the pattern's IANA time zone.
func WithPatternZone(zone string) PatternOption {
	return func(p *availability.RecurrencePattern) { p.TimeZone = zone }
}

// WithPatternBounds sets the recurrence start and end dates. A zero time
// leaves the corresponding bound unset.
func WithPatternBounds(start, end time.Time) PatternOption {
	return func(p *availability.RecurrencePattern) {
		if !start.IsZero() {
			s := start
			p.StartDate = &s
		}
		if !end.IsZero() {
			e := end
			p.EndDate = &e
		}
	}
}

// WithPatternExceptions sets the skipped dates ("YYYY-MM-DD").
func WithPatternExceptions(dates ...string) PatternOption {
	return func(p *availability.RecurrencePattern) { p.ExceptionDates = dates }
}

// PatternFixture returns an available Friday 17:00-18:00 recurrence pattern
// anchored to ReferenceTime's week.
func PatternFixture(id, tutorID string, opts ...PatternOption) availability.RecurrencePattern {
	start := time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC)
	pattern := availability.RecurrencePattern{
		ID:        id,
		TutorID:   tutorID,
		DayOfWeek: 4,
		StartTime: "17:00",
		EndTime:   "18:00",
		TimeZone:  "America/Chicago",
		StartDate: &start,
		Available: true,
	}
	for _, opt := range opts {
		opt(&pattern)
	}
	return pattern
}

// SpecificDateFixture returns a one-off availability record for the given
// date ("YYYY-MM-DD"). Available defaults to true.
func SpecificDateFixture(id, tutorID, date string) availability.SpecificDate {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic("testfixtures: bad date " + date)
	}
	return availability.SpecificDate{
		ID:        id,
		TutorID:   tutorID,
		Date:      parsed,
		StartTime: "17:00",
		EndTime:   "18:00",
		TimeZone:  "America/Chicago",
		Available: true,
	}
}

// BookingFixture returns a one-hour booking starting at the given offset from
// ReferenceTime.
func BookingFixture(id, tutorID string, studentIDs []string, startOffset time.Duration) application.Booking {
	start := referenceTime.Add(startOffset)
	return application.Booking{
		ID:         id,
		TutorID:    tutorID,
		StudentIDs: studentIDs,
		Start:      start,
		End:        start.Add(time.Hour),
		CreatedAt:  referenceTime,
		UpdatedAt:  referenceTime,
	}
}
