package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/tutoring-scheduler/internal/availability"
	"github.com/example/tutoring-scheduler/internal/weekday"
)

type stubPatternStore struct {
	created []availability.RecurrencePattern
	deleted []string
}

func (s *stubPatternStore) CreatePattern(ctx context.Context, pattern availability.RecurrencePattern) (availability.RecurrencePattern, error) {
	s.created = append(s.created, pattern)
	return pattern, nil
}

func (s *stubPatternStore) DeletePattern(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubPatternStore) ListPatternsByTutor(ctx context.Context, tutorID string, courseID *string) ([]availability.RecurrencePattern, error) {
	return s.created, nil
}

type stubSpecificStore struct {
	created []availability.SpecificDate
}

func (s *stubSpecificStore) CreateSpecificDate(ctx context.Context, specific availability.SpecificDate) (availability.SpecificDate, error) {
	s.created = append(s.created, specific)
	return specific, nil
}

func (s *stubSpecificStore) DeleteSpecificDate(ctx context.Context, id string) error {
	return nil
}

type stubInvalidator struct {
	tutors []string
}

func (s *stubInvalidator) InvalidateTutor(tutorID string) {
	s.tutors = append(s.tutors, tutorID)
}

func newPatternFixture(store *stubPatternStore, specifics *stubSpecificStore, invalidator *stubInvalidator) *PatternService {
	return NewPatternService(
		store,
		specifics,
		&stubTutorDirectory{known: map[string]bool{"tutor-1": true}},
		invalidator,
		func() string { return "generated-id" },
		nil,
	)
}

func TestCreatePatternNormalizesAndInvalidates(t *testing.T) {
	t.Parallel()

	store := &stubPatternStore{}
	invalidator := &stubInvalidator{}
	service := newPatternFixture(store, &stubSpecificStore{}, invalidator)

	pattern, err := service.CreatePattern(context.Background(), CreatePatternParams{
		TutorID: "tutor-1",
		Raw: map[string]any{
			"dayOfWeek": 5, // Friday in the Sunday=0 numbering
			"startTime": "17:00",
			"endTime":   "18:00",
			"timeZone":  "America/Chicago",
		},
		Convention: weekday.ConventionJS,
	})
	if err != nil {
		t.Fatalf("CreatePattern: %v", err)
	}

	if pattern.ID != "generated-id" || pattern.TutorID != "tutor-1" {
		t.Errorf("identity not assigned: %+v", pattern)
	}
	if pattern.DayOfWeek != 4 {
		t.Errorf("weekday = %d, want 4 (Friday, Monday=0)", pattern.DayOfWeek)
	}
	if len(store.created) != 1 {
		t.Errorf("persisted %d patterns, want 1", len(store.created))
	}
	if len(invalidator.tutors) != 1 || invalidator.tutors[0] != "tutor-1" {
		t.Errorf("cache not invalidated: %+v", invalidator.tutors)
	}
}

func TestCreatePatternRejectsMalformedPayload(t *testing.T) {
	t.Parallel()

	store := &stubPatternStore{}
	service := newPatternFixture(store, &stubSpecificStore{}, &stubInvalidator{})

	_, err := service.CreatePattern(context.Background(), CreatePatternParams{
		TutorID: "tutor-1",
		Raw: map[string]any{
			"day_of_week": 9,
			"start_time":  "17:00",
			"end_time":    "18:00",
			"time_zone":   "America/Chicago",
		},
		Convention: weekday.ConventionPython,
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if _, ok := vErr.FieldErrors["day_of_week"]; !ok {
		t.Errorf("no error on day_of_week: %+v", vErr.FieldErrors)
	}
	if len(store.created) != 0 {
		t.Error("malformed payload must not be persisted")
	}
}

func TestCreatePatternUnknownTutor(t *testing.T) {
	t.Parallel()

	service := newPatternFixture(&stubPatternStore{}, &stubSpecificStore{}, &stubInvalidator{})

	_, err := service.CreatePattern(context.Background(), CreatePatternParams{
		TutorID:    "tutor-unknown",
		Raw:        map[string]any{"day_of_week": 4},
		Convention: weekday.ConventionPython,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateSpecificDate(t *testing.T) {
	t.Parallel()

	specifics := &stubSpecificStore{}
	invalidator := &stubInvalidator{}
	service := newPatternFixture(&stubPatternStore{}, specifics, invalidator)

	specific, err := service.CreateSpecificDate(context.Background(), CreateSpecificDateParams{
		TutorID: "tutor-1",
		Raw: map[string]any{
			"specific_date": "2025-09-19",
			"start_time":    "17:00",
			"end_time":      "18:00",
			"time_zone":     "America/Chicago",
			"available":     false,
		},
		Convention: weekday.ConventionPython,
	})
	if err != nil {
		t.Fatalf("CreateSpecificDate: %v", err)
	}

	if specific.Date.Format("2006-01-02") != "2025-09-19" || specific.Available {
		t.Errorf("specific = %+v", specific)
	}
	if len(specifics.created) != 1 {
		t.Errorf("persisted %d records, want 1", len(specifics.created))
	}
	if len(invalidator.tutors) != 1 {
		t.Errorf("cache not invalidated: %+v", invalidator.tutors)
	}
}

func TestCreateSpecificDateRequiresDate(t *testing.T) {
	t.Parallel()

	service := newPatternFixture(&stubPatternStore{}, &stubSpecificStore{}, &stubInvalidator{})

	_, err := service.CreateSpecificDate(context.Background(), CreateSpecificDateParams{
		TutorID: "tutor-1",
		Raw: map[string]any{
			"start_time": "17:00",
			"end_time":   "18:00",
			"time_zone":  "America/Chicago",
		},
		Convention: weekday.ConventionPython,
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestDeletePatternInvalidates(t *testing.T) {
	t.Parallel()

	store := &stubPatternStore{}
	invalidator := &stubInvalidator{}
	service := newPatternFixture(store, &stubSpecificStore{}, invalidator)

	if err := service.DeletePattern(context.Background(), "tutor-1", "pat-1"); err != nil {
		t.Fatalf("DeletePattern: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "pat-1" {
		t.Errorf("deleted = %+v", store.deleted)
	}
	if len(invalidator.tutors) != 1 {
		t.Errorf("cache not invalidated: %+v", invalidator.tutors)
	}
}
