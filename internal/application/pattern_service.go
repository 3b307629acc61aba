package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/tutoring-scheduler/internal/availability"
	"github.com/example/tutoring-scheduler/internal/persistence"
	"github.com/example/tutoring-scheduler/internal/weekday"
)

// PatternStore captures the write-side persistence interactions for
// availability records.
type PatternStore interface {
	CreatePattern(ctx context.Context, pattern availability.RecurrencePattern) (availability.RecurrencePattern, error)
	DeletePattern(ctx context.Context, id string) error
	ListPatternsByTutor(ctx context.Context, tutorID string, courseID *string) ([]availability.RecurrencePattern, error)
}

// SpecificDateStore captures the write-side persistence interactions for
// single-date records.
type SpecificDateStore interface {
	CreateSpecificDate(ctx context.Context, specific availability.SpecificDate) (availability.SpecificDate, error)
	DeleteSpecificDate(ctx context.Context, id string) error
}

// CacheInvalidator drops cached expansions after availability writes.
type CacheInvalidator interface {
	InvalidateTutor(tutorID string)
}

// PatternService manages the write side of tutor availability. Raw payloads
// go through normalization at this boundary, so weekday conventions and
// field namings are settled before anything reaches storage.
type PatternService struct {
	patterns    PatternStore
	specifics   SpecificDateStore
	tutors      TutorDirectory
	cache       CacheInvalidator
	idGenerator func() string
	logger      *slog.Logger
}

// NewPatternService wires dependencies for availability writes.
func NewPatternService(patterns PatternStore, specifics SpecificDateStore, tutors TutorDirectory, cache CacheInvalidator, idGenerator func() string, logger *slog.Logger) *PatternService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &PatternService{
		patterns:    patterns,
		specifics:   specifics,
		tutors:      tutors,
		cache:       cache,
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

// CreatePattern normalizes and persists a recurring availability record.
func (s *PatternService) CreatePattern(ctx context.Context, params CreatePatternParams) (availability.RecurrencePattern, error) {
	if s == nil {
		return availability.RecurrencePattern{}, fmt.Errorf("PatternService is nil")
	}
	if s.patterns == nil {
		return availability.RecurrencePattern{}, fmt.Errorf("pattern store not configured")
	}
	logger := serviceLogger(ctx, s.logger, "pattern", "create", "tutor_id", params.TutorID)

	normalized, err := s.normalize(ctx, params.TutorID, params.Raw, params.Convention)
	if err != nil {
		return availability.RecurrencePattern{}, err
	}

	pattern, ok := normalized.Pattern()
	if !ok {
		vErr := &ValidationError{}
		vErr.add("day_of_week", "recurring record needs a resolvable weekday")
		return availability.RecurrencePattern{}, vErr
	}
	pattern.ID = s.idGenerator()
	pattern.TutorID = params.TutorID

	persisted, err := s.patterns.CreatePattern(ctx, pattern)
	if err != nil {
		return availability.RecurrencePattern{}, mapRepoError(err)
	}

	s.invalidate(params.TutorID)
	logger.InfoContext(ctx, "availability pattern created", "pattern_id", persisted.ID)
	return persisted, nil
}

// CreateSpecificDate normalizes and persists a single-date record.
func (s *PatternService) CreateSpecificDate(ctx context.Context, params CreateSpecificDateParams) (availability.SpecificDate, error) {
	if s == nil {
		return availability.SpecificDate{}, fmt.Errorf("PatternService is nil")
	}
	if s.specifics == nil {
		return availability.SpecificDate{}, fmt.Errorf("specific date store not configured")
	}
	logger := serviceLogger(ctx, s.logger, "pattern", "create_specific", "tutor_id", params.TutorID)

	normalized, err := s.normalize(ctx, params.TutorID, params.Raw, params.Convention)
	if err != nil {
		return availability.SpecificDate{}, err
	}

	specific, ok := normalized.Specific()
	if !ok {
		vErr := &ValidationError{}
		vErr.add("specific_date", "single-date record needs a specific date")
		return availability.SpecificDate{}, vErr
	}
	specific.ID = s.idGenerator()
	specific.TutorID = params.TutorID

	persisted, err := s.specifics.CreateSpecificDate(ctx, specific)
	if err != nil {
		return availability.SpecificDate{}, mapRepoError(err)
	}

	s.invalidate(params.TutorID)
	logger.InfoContext(ctx, "specific date created", "record_id", persisted.ID)
	return persisted, nil
}

// ListPatterns returns the tutor's stored recurring records.
func (s *PatternService) ListPatterns(ctx context.Context, tutorID string) ([]availability.RecurrencePattern, error) {
	if s == nil {
		return nil, fmt.Errorf("PatternService is nil")
	}
	if s.patterns == nil {
		return nil, fmt.Errorf("pattern store not configured")
	}
	if tutorID == "" {
		vErr := &ValidationError{}
		vErr.add("tutor_id", "tutor id is required")
		return nil, vErr
	}
	patterns, err := s.patterns.ListPatternsByTutor(ctx, tutorID, nil)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return patterns, nil
}

// DeletePattern removes a recurring record and drops the tutor's cached
// expansions.
func (s *PatternService) DeletePattern(ctx context.Context, tutorID, patternID string) error {
	if s == nil {
		return fmt.Errorf("PatternService is nil")
	}
	if s.patterns == nil {
		return fmt.Errorf("pattern store not configured")
	}
	if err := s.patterns.DeletePattern(ctx, patternID); err != nil {
		return mapRepoError(err)
	}
	s.invalidate(tutorID)
	return nil
}

// DeleteSpecificDate removes a single-date record and drops the tutor's
// cached expansions.
func (s *PatternService) DeleteSpecificDate(ctx context.Context, tutorID, recordID string) error {
	if s == nil {
		return fmt.Errorf("PatternService is nil")
	}
	if s.specifics == nil {
		return fmt.Errorf("specific date store not configured")
	}
	if err := s.specifics.DeleteSpecificDate(ctx, recordID); err != nil {
		return mapRepoError(err)
	}
	s.invalidate(tutorID)
	return nil
}

func (s *PatternService) normalize(ctx context.Context, tutorID string, raw map[string]any, convention weekday.Convention) (availability.Normalized, error) {
	if tutorID == "" {
		vErr := &ValidationError{}
		vErr.add("tutor_id", "tutor id is required")
		return availability.Normalized{}, vErr
	}
	if s.tutors != nil {
		exists, err := s.tutors.TutorExists(ctx, tutorID)
		if err != nil {
			return availability.Normalized{}, err
		}
		if !exists {
			return availability.Normalized{}, ErrNotFound
		}
	}

	if raw == nil {
		raw = map[string]any{}
	}
	if _, ok := raw["tutor_id"]; !ok {
		if _, ok := raw["tutorId"]; !ok {
			raw["tutor_id"] = tutorID
		}
	}

	normalized := availability.Normalize(raw, normalizedConvention(convention))
	if !normalized.Valid() {
		vErr := &ValidationError{}
		for _, issue := range normalized.Issues {
			vErr.add(issue.Field, issue.Message)
		}
		return availability.Normalized{}, vErr
	}
	return normalized, nil
}

func (s *PatternService) invalidate(tutorID string) {
	if s.cache != nil {
		s.cache.InvalidateTutor(tutorID)
	}
}
