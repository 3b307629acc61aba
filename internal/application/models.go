package application

import (
	"time"

	"github.com/example/tutoring-scheduler/internal/availability"
	"github.com/example/tutoring-scheduler/internal/scheduler"
	"github.com/example/tutoring-scheduler/internal/weekday"
)

// User represents a platform account, tutor or student.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Role        UserRole
	TimeZone    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserRole distinguishes tutors from students.
type UserRole string

const (
	// RoleTutor marks accounts that publish availability.
	RoleTutor UserRole = "tutor"
	// RoleStudent marks accounts that book sessions.
	RoleStudent UserRole = "student"
)

// UserInput captures caller provided user attributes.
type UserInput struct {
	Email       string
	DisplayName string
	Role        UserRole
	TimeZone    string
}

// Course represents a subject a tutor teaches.
type Course struct {
	ID        string
	TutorID   string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CourseInput captures caller provided course attributes.
type CourseInput struct {
	TutorID string
	Name    string
}

// ExpandAvailabilityParams wraps a tutor availability query. ViewerZone is
// the IANA zone instances are rendered in; Convention states which weekday
// numbering the response integers should lead with. CourseID, when set,
// narrows the result to records for that course plus records with no course
// scope, which apply to every course.
type ExpandAvailabilityParams struct {
	TutorID    string
	CourseID   *string
	Start      time.Time
	End        time.Time
	ViewerZone string
	Convention weekday.Convention
}

// AvailabilityInstance is one rendered occurrence in a query response, with
// the weekday exposed in both conventions.
type AvailabilityInstance struct {
	PatternID       string
	TutorID         string
	CourseID        *string
	Date            string
	ViewerDate      string
	DayOfWeekPython int
	DayOfWeekJS     int
	StartTime       string
	EndTime         string
	TimeZone        string
	Available       bool
	Specific        bool
}

// AvailabilityResult carries the instances plus any data-quality warnings
// encountered while expanding.
type AvailabilityResult struct {
	Instances []AvailabilityInstance
	Warnings  []availability.Warning
}

// CreatePatternParams wraps a raw recurring availability payload. The
// payload stays a loose map until normalization so malformed fields can be
// reported individually instead of failing the decode.
type CreatePatternParams struct {
	TutorID    string
	Raw        map[string]any
	Convention weekday.Convention
}

// CreateSpecificDateParams wraps a raw single-date availability payload.
type CreateSpecificDateParams struct {
	TutorID    string
	Raw        map[string]any
	Convention weekday.Convention
}

// Booking represents a confirmed tutoring session with one or more
// students.
type Booking struct {
	ID         string
	TutorID    string
	StudentIDs []string
	CourseID   *string
	Start      time.Time
	End        time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BookingInput captures caller provided booking fields.
type BookingInput struct {
	TutorID    string
	StudentIDs []string
	CourseID   *string
	Start      time.Time
	End        time.Time
}

// CheckConflictParams wraps a single conflict probe. ExcludeBookingID, when
// set, ignores that booking so saved bookings do not conflict with themselves.
type CheckConflictParams struct {
	Input            BookingInput
	ExcludeBookingID string
}

// ConflictResult pairs a probe with its findings.
type ConflictResult struct {
	Conflicts []scheduler.Conflict
	Blocking  bool
}
