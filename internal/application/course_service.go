package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// CourseRepository captures the persistence interactions for courses.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course Course) (Course, error)
	ListCoursesByTutor(ctx context.Context, tutorID string) ([]Course, error)
	DeleteCourse(ctx context.Context, id string) error
}

// CourseService manages the subjects a tutor teaches.
type CourseService struct {
	courses     CourseRepository
	tutors      TutorDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewCourseService wires dependencies for course operations.
func NewCourseService(courses CourseRepository, tutors TutorDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CourseService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CourseService{
		courses:     courses,
		tutors:      tutors,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateCourse validates and persists a course.
func (s *CourseService) CreateCourse(ctx context.Context, input CourseInput) (Course, error) {
	if s == nil {
		return Course{}, fmt.Errorf("CourseService is nil")
	}
	if s.courses == nil {
		return Course{}, fmt.Errorf("course repository not configured")
	}

	vErr := &ValidationError{}
	if input.TutorID == "" {
		vErr.add("tutor_id", "tutor id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if vErr.HasErrors() {
		return Course{}, vErr
	}

	if s.tutors != nil {
		exists, err := s.tutors.TutorExists(ctx, input.TutorID)
		if err != nil {
			return Course{}, err
		}
		if !exists {
			return Course{}, ErrNotFound
		}
	}

	createdAt := s.now()
	course := Course{
		ID:        s.idGenerator(),
		TutorID:   input.TutorID,
		Name:      strings.TrimSpace(input.Name),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	persisted, err := s.courses.CreateCourse(ctx, course)
	if err != nil {
		return Course{}, mapRepoError(err)
	}
	return persisted, nil
}

// ListCourses returns the tutor's courses.
func (s *CourseService) ListCourses(ctx context.Context, tutorID string) ([]Course, error) {
	if s == nil {
		return nil, fmt.Errorf("CourseService is nil")
	}
	if s.courses == nil {
		return nil, fmt.Errorf("course repository not configured")
	}
	courses, err := s.courses.ListCoursesByTutor(ctx, tutorID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return courses, nil
}

// DeleteCourse removes a course.
func (s *CourseService) DeleteCourse(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("CourseService is nil")
	}
	if s.courses == nil {
		return fmt.Errorf("course repository not configured")
	}
	if err := s.courses.DeleteCourse(ctx, id); err != nil {
		return mapRepoError(err)
	}
	return nil
}
