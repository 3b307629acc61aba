package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/tutoring-scheduler/internal/application"
	"github.com/example/tutoring-scheduler/internal/availability"
	"github.com/example/tutoring-scheduler/internal/persistence"
	"github.com/example/tutoring-scheduler/internal/testfixtures"
)

func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	pool, err := NewConnectionPool(DefaultConfig(":memory:"))
	if err != nil {
		t.Fatalf("NewConnectionPool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return pool
}

func seedUser(t *testing.T, pool *ConnectionPool, id string, role application.UserRole) {
	t.Helper()
	repo := NewUserRepository(pool)
	user := testfixtures.TutorFixture(id)
	if role == application.RoleStudent {
		user = testfixtures.StudentFixture(id)
	}
	if _, err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func TestPatternRepositoryRoundTrip(t *testing.T) {
	pool := newTestPool(t)
	seedUser(t, pool, "tutor-1", application.RoleTutor)
	repo := NewPatternRepository(pool)
	ctx := context.Background()

	start := time.Date(2025, 9, 19, 0, 0, 0, 0, time.UTC)
	pattern := availability.RecurrencePattern{
		ID:             "pat-1",
		TutorID:        "tutor-1",
		DayOfWeek:      4,
		RecurrenceDays: []int{0, 2, 4},
		StartTime:      "17:00",
		EndTime:        "18:00",
		TimeZone:       "America/Chicago",
		StartDate:      &start,
		ExceptionDates: []string{"2025-09-26"},
		Available:      true,
	}

	if _, err := repo.CreatePattern(ctx, pattern); err != nil {
		t.Fatalf("CreatePattern: %v", err)
	}

	got, err := repo.GetPattern(ctx, "pat-1")
	if err != nil {
		t.Fatalf("GetPattern: %v", err)
	}
	if got.DayOfWeek != 4 || got.StartTime != "17:00" || got.TimeZone != "America/Chicago" {
		t.Errorf("pattern mangled: %+v", got)
	}
	if len(got.RecurrenceDays) != 3 || got.RecurrenceDays[1] != 2 {
		t.Errorf("recurrence days = %v", got.RecurrenceDays)
	}
	if len(got.ExceptionDates) != 1 || got.ExceptionDates[0] != "2025-09-26" {
		t.Errorf("exception dates = %v", got.ExceptionDates)
	}
	if got.StartDate == nil || !got.StartDate.Equal(start) {
		t.Errorf("start date = %v", got.StartDate)
	}
	if got.EndDate != nil {
		t.Errorf("end date should stay nil, got %v", got.EndDate)
	}

	listed, err := repo.ListPatternsByTutor(ctx, "tutor-1", nil)
	if err != nil {
		t.Fatalf("ListPatternsByTutor: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d patterns, want 1", len(listed))
	}

	if err := repo.DeletePattern(ctx, "pat-1"); err != nil {
		t.Fatalf("DeletePattern: %v", err)
	}
	if err := repo.DeletePattern(ctx, "pat-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestPatternRepositoryConstraints(t *testing.T) {
	pool := newTestPool(t)
	seedUser(t, pool, "tutor-1", application.RoleTutor)
	repo := NewPatternRepository(pool)
	ctx := context.Background()

	pattern := availability.RecurrencePattern{
		ID:        "pat-1",
		TutorID:   "tutor-1",
		DayOfWeek: 4,
		StartTime: "17:00",
		EndTime:   "18:00",
		TimeZone:  "America/Chicago",
		Available: true,
	}
	if _, err := repo.CreatePattern(ctx, pattern); err != nil {
		t.Fatalf("CreatePattern: %v", err)
	}

	if _, err := repo.CreatePattern(ctx, pattern); !errors.Is(err, persistence.ErrDuplicate) {
		t.Errorf("duplicate insert err = %v, want ErrDuplicate", err)
	}

	orphan := pattern
	orphan.ID = "pat-orphan"
	orphan.TutorID = "tutor-missing"
	if _, err := repo.CreatePattern(ctx, orphan); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Errorf("orphan insert err = %v, want ErrForeignKeyViolation", err)
	}
}

func TestSpecificDateRepositoryRangeFilter(t *testing.T) {
	pool := newTestPool(t)
	seedUser(t, pool, "tutor-1", application.RoleTutor)
	repo := NewSpecificDateRepository(pool)
	ctx := context.Background()

	for i, date := range []string{"2025-09-12", "2025-09-19", "2025-10-03"} {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			t.Fatal(err)
		}
		_, err = repo.CreateSpecificDate(ctx, availability.SpecificDate{
			ID:        "spec-" + string(rune('a'+i)),
			TutorID:   "tutor-1",
			Date:      parsed,
			StartTime: "17:00",
			EndTime:   "18:00",
			TimeZone:  "America/Chicago",
			Available: i != 1,
		})
		if err != nil {
			t.Fatalf("CreateSpecificDate %s: %v", date, err)
		}
	}

	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
	listed, err := repo.ListSpecificDatesByTutor(ctx, "tutor-1", start, end)
	if err != nil {
		t.Fatalf("ListSpecificDatesByTutor: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("listed %d records, want 2 inside September", len(listed))
	}
	if listed[1].Available {
		t.Errorf("blocked record lost its flag: %+v", listed[1])
	}
}

func TestBookingRepositoryOverlapQuery(t *testing.T) {
	pool := newTestPool(t)
	seedUser(t, pool, "tutor-1", application.RoleTutor)
	seedUser(t, pool, "tutor-2", application.RoleTutor)
	seedUser(t, pool, "student-1", application.RoleStudent)
	seedUser(t, pool, "student-2", application.RoleStudent)
	repo := NewBookingRepository(pool)
	ctx := context.Background()

	ids := testfixtures.NewIDGenerator("bk")
	clock := testfixtures.NewClock(time.Time{})
	mk := func(tutorID string, studentIDs []string, startHour, endHour int) string {
		t.Helper()
		id := ids.Next()
		_, err := repo.CreateBooking(ctx, application.Booking{
			ID:         id,
			TutorID:    tutorID,
			StudentIDs: studentIDs,
			Start:      time.Date(2025, 9, 19, startHour, 0, 0, 0, time.UTC),
			End:        time.Date(2025, 9, 19, endHour, 0, 0, 0, time.UTC),
			CreatedAt:  clock.Now(),
			UpdatedAt:  clock.Advance(time.Second),
		})
		if err != nil {
			t.Fatalf("CreateBooking %s: %v", id, err)
		}
		return id
	}

	first := mk("tutor-1", []string{"student-1"}, 17, 18)
	mk("tutor-1", []string{"student-2"}, 19, 20)
	mk("tutor-2", []string{"student-2"}, 17, 18)

	overlapping, err := repo.ListBookingsOverlapping(ctx, "tutor-1", []string{"student-1"},
		time.Date(2025, 9, 19, 17, 30, 0, 0, time.UTC),
		time.Date(2025, 9, 19, 18, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListBookingsOverlapping: %v", err)
	}
	if len(overlapping) != 1 || overlapping[0].ID != first {
		t.Errorf("overlapping = %+v, want only %s", overlapping, first)
	}

	// Back-to-back slots share a boundary and must not match.
	adjacent, err := repo.ListBookingsOverlapping(ctx, "tutor-1", []string{"student-1"},
		time.Date(2025, 9, 19, 18, 0, 0, 0, time.UTC),
		time.Date(2025, 9, 19, 19, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListBookingsOverlapping: %v", err)
	}
	if len(adjacent) != 0 {
		t.Errorf("adjacent slot matched: %+v", adjacent)
	}
}

func TestBookingRepositoryGroupSessions(t *testing.T) {
	pool := newTestPool(t)
	seedUser(t, pool, "tutor-1", application.RoleTutor)
	seedUser(t, pool, "tutor-2", application.RoleTutor)
	seedUser(t, pool, "student-1", application.RoleStudent)
	seedUser(t, pool, "student-2", application.RoleStudent)
	repo := NewBookingRepository(pool)
	ctx := context.Background()

	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	booking := application.Booking{
		ID:         "bk-group",
		TutorID:    "tutor-1",
		StudentIDs: []string{"student-1", "student-2"},
		Start:      time.Date(2025, 9, 19, 17, 0, 0, 0, time.UTC),
		End:        time.Date(2025, 9, 19, 18, 0, 0, 0, time.UTC),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := repo.CreateBooking(ctx, booking); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	got, err := repo.GetBooking(ctx, "bk-group")
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if len(got.StudentIDs) != 2 || got.StudentIDs[0] != "student-1" || got.StudentIDs[1] != "student-2" {
		t.Errorf("students = %v", got.StudentIDs)
	}

	// A probe for any attending student finds the shared session once.
	overlapping, err := repo.ListBookingsOverlapping(ctx, "tutor-2", []string{"student-2", "student-1"},
		time.Date(2025, 9, 19, 17, 30, 0, 0, time.UTC),
		time.Date(2025, 9, 19, 18, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListBookingsOverlapping: %v", err)
	}
	if len(overlapping) != 1 || overlapping[0].ID != "bk-group" {
		t.Errorf("overlapping = %+v, want the group session once", overlapping)
	}

	if err := repo.DeleteBooking(ctx, "bk-group"); err != nil {
		t.Fatalf("DeleteBooking: %v", err)
	}
	var count int
	row := pool.DB().QueryRowContext(ctx, `SELECT COUNT(1) FROM booking_students`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count student rows: %v", err)
	}
	if count != 0 {
		t.Errorf("student rows survived the delete: %d", count)
	}
}

func TestPatternRepositoryCourseFilter(t *testing.T) {
	pool := newTestPool(t)
	seedUser(t, pool, "tutor-1", application.RoleTutor)
	courses := NewCourseRepository(pool)
	repo := NewPatternRepository(pool)
	ctx := context.Background()

	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	for _, name := range []string{"course-math", "course-physics"} {
		if _, err := courses.CreateCourse(ctx, application.Course{
			ID: name, TutorID: "tutor-1", Name: name, CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			t.Fatalf("CreateCourse %s: %v", name, err)
		}
	}

	mathCourse := "course-math"
	physicsCourse := "course-physics"
	base := availability.RecurrencePattern{
		TutorID:   "tutor-1",
		DayOfWeek: 4,
		StartTime: "17:00",
		EndTime:   "18:00",
		TimeZone:  "America/Chicago",
		Available: true,
	}
	for _, tc := range []struct {
		id     string
		course *string
	}{
		{"pat-math", &mathCourse},
		{"pat-physics", &physicsCourse},
		{"pat-any", nil},
	} {
		pattern := base
		pattern.ID = tc.id
		pattern.CourseID = tc.course
		if _, err := repo.CreatePattern(ctx, pattern); err != nil {
			t.Fatalf("CreatePattern %s: %v", tc.id, err)
		}
	}

	filtered, err := repo.ListPatternsByTutor(ctx, "tutor-1", &mathCourse)
	if err != nil {
		t.Fatalf("ListPatternsByTutor: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("filtered = %d patterns, want the course's plus the course-less one", len(filtered))
	}
	for _, pattern := range filtered {
		if pattern.ID == "pat-physics" {
			t.Errorf("other course's pattern leaked: %+v", pattern)
		}
	}

	all, err := repo.ListPatternsByTutor(ctx, "tutor-1", nil)
	if err != nil {
		t.Fatalf("ListPatternsByTutor: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unfiltered = %d patterns, want 3", len(all))
	}
}

func TestUserRepositoryRoles(t *testing.T) {
	pool := newTestPool(t)
	seedUser(t, pool, "tutor-1", application.RoleTutor)
	seedUser(t, pool, "student-1", application.RoleStudent)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	tutors, err := repo.ListUsers(ctx, application.RoleTutor)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(tutors) != 1 || tutors[0].ID != "tutor-1" {
		t.Errorf("tutors = %+v", tutors)
	}

	if _, err := repo.GetUser(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("missing user err = %v, want ErrNotFound", err)
	}
}

func TestCourseRepositoryRoundTrip(t *testing.T) {
	pool := newTestPool(t)
	seedUser(t, pool, "tutor-1", application.RoleTutor)
	repo := NewCourseRepository(pool)
	ctx := context.Background()

	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	if _, err := repo.CreateCourse(ctx, application.Course{
		ID: "course-1", TutorID: "tutor-1", Name: "Algebra", CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	courses, err := repo.ListCoursesByTutor(ctx, "tutor-1")
	if err != nil {
		t.Fatalf("ListCoursesByTutor: %v", err)
	}
	if len(courses) != 1 || courses[0].Name != "Algebra" {
		t.Errorf("courses = %+v", courses)
	}

	exists, err := repo.CourseExists(ctx, "course-1")
	if err != nil || !exists {
		t.Errorf("CourseExists(course-1) = %v, %v", exists, err)
	}
	exists, err = repo.CourseExists(ctx, "course-missing")
	if err != nil || exists {
		t.Errorf("CourseExists(course-missing) = %v, %v", exists, err)
	}

	if err := repo.DeleteCourse(ctx, "course-1"); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}
	if err := repo.DeleteCourse(ctx, "course-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
