package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/tutoring-scheduler/internal/availability"
	"github.com/example/tutoring-scheduler/internal/persistence"
	"github.com/example/tutoring-scheduler/internal/scheduler"
	"github.com/example/tutoring-scheduler/internal/timezone"
	"github.com/example/tutoring-scheduler/internal/weekday"
)

// PatternRepository captures the persistence interactions the availability
// service needs for recurring records. A nil courseID lists every record;
// otherwise records scoped to that course plus course-less records are
// returned.
type PatternRepository interface {
	ListPatternsByTutor(ctx context.Context, tutorID string, courseID *string) ([]availability.RecurrencePattern, error)
}

// SpecificDateRepository captures the persistence interactions for
// single-date records.
type SpecificDateRepository interface {
	ListSpecificDatesByTutor(ctx context.Context, tutorID string, start, end time.Time) ([]availability.SpecificDate, error)
}

// TutorDirectory exposes tutor lookups.
type TutorDirectory interface {
	TutorExists(ctx context.Context, id string) (bool, error)
}

// CourseDirectory exposes course lookups, used to exclude records whose
// course reference is stale.
type CourseDirectory interface {
	CourseExists(ctx context.Context, id string) (bool, error)
}

// AvailabilityService answers tutor availability queries by expanding stored
// patterns through the availability engine, with a short-lived cache in
// front of the expansion.
type AvailabilityService struct {
	patterns  PatternRepository
	specifics SpecificDateRepository
	tutors    TutorDirectory
	courses   CourseDirectory
	expander  *availability.Expander
	cache     *expansionCache
	logger    *slog.Logger
}

// AvailabilityServiceOptions configures optional service behavior. A nil
// Courses directory skips the stale-course-reference check.
type AvailabilityServiceOptions struct {
	Courses         CourseDirectory
	CacheTTL        time.Duration
	CacheMaxEntries int
	Now             func() time.Time
	Logger          *slog.Logger
}

// NewAvailabilityService wires dependencies for availability queries. A nil
// expander defaults to the DST-correct configuration.
func NewAvailabilityService(patterns PatternRepository, specifics SpecificDateRepository, tutors TutorDirectory, expander *availability.Expander, opts AvailabilityServiceOptions) *AvailabilityService {
	if expander == nil {
		expander = availability.NewExpander(nil, timezone.NewDetector(timezone.WorkingHours{}, nil))
	}
	return &AvailabilityService{
		patterns:  patterns,
		specifics: specifics,
		tutors:    tutors,
		courses:   opts.Courses,
		expander:  expander,
		cache:     newExpansionCache(opts.CacheTTL, opts.CacheMaxEntries, opts.Now),
		logger:    defaultLogger(opts.Logger),
	}
}

// ExpandAvailability returns the tutor's concrete availability inside the
// window, rendered in the viewer's zone. Data-quality warnings accompany the
// instances; they never fail the query.
func (s *AvailabilityService) ExpandAvailability(ctx context.Context, params ExpandAvailabilityParams) (AvailabilityResult, error) {
	if s == nil {
		return AvailabilityResult{}, fmt.Errorf("AvailabilityService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "availability", "expand", "tutor_id", params.TutorID)

	if err := validateExpandParams(params); err != nil {
		return AvailabilityResult{}, err
	}
	params.Convention = normalizedConvention(params.Convention)

	if s.tutors != nil {
		exists, err := s.tutors.TutorExists(ctx, params.TutorID)
		if err != nil {
			return AvailabilityResult{}, err
		}
		if !exists {
			return AvailabilityResult{}, ErrNotFound
		}
	}

	key := buildExpansionCacheKey(params)
	if cached, ok := s.cache.Get(key); ok {
		logger.DebugContext(ctx, "expansion served from cache")
		return cached, nil
	}

	patterns, err := s.listPatterns(ctx, params.TutorID, params.CourseID)
	if err != nil {
		return AvailabilityResult{}, err
	}
	specifics, err := s.listSpecifics(ctx, params.TutorID, params.Start, params.End)
	if err != nil {
		return AvailabilityResult{}, err
	}
	specifics = filterSpecificsByCourse(specifics, params.CourseID)

	patterns, specifics, courseWarnings, err := s.excludeStaleCourseRefs(ctx, patterns, specifics)
	if err != nil {
		return AvailabilityResult{}, err
	}

	window := availability.Window{Start: params.Start, End: params.End}
	expansion, err := s.expander.Expand(patterns, specifics, window, params.ViewerZone)
	if err != nil {
		return AvailabilityResult{}, err
	}

	result := AvailabilityResult{
		Instances: renderInstances(expansion.Instances),
		Warnings:  append(courseWarnings, expansion.Warnings...),
	}
	s.cache.Store(key, result)

	if len(expansion.Warnings) > 0 {
		logger.WarnContext(ctx, "expansion produced data-quality warnings",
			"warning_count", len(expansion.Warnings))
	}

	return result, nil
}

// WindowsForTutor renders the tutor's availability across the civil dates
// the interval touches as absolute UTC intervals, for booking coverage
// checks. Blocked instances do not contribute windows.
func (s *AvailabilityService) WindowsForTutor(ctx context.Context, tutorID string, start, end time.Time) ([]scheduler.AvailabilityWindow, error) {
	if s == nil {
		return nil, fmt.Errorf("AvailabilityService is nil")
	}

	startDay := start.UTC().Truncate(24 * time.Hour)
	endDay := end.UTC().Truncate(24 * time.Hour)
	result, err := s.ExpandAvailability(ctx, ExpandAvailabilityParams{
		TutorID:    tutorID,
		Start:      startDay.AddDate(0, 0, -1),
		End:        endDay.AddDate(0, 0, 1),
		ViewerZone: "UTC",
		Convention: weekday.ConventionPython,
	})
	if err != nil {
		return nil, err
	}

	windows := make([]scheduler.AvailabilityWindow, 0, len(result.Instances))
	for _, instance := range result.Instances {
		if !instance.Available {
			continue
		}
		day, err := time.Parse("2006-01-02", instance.ViewerDate)
		if err != nil {
			continue
		}
		startMinute, err := timezone.ParseTimeOfDay(instance.StartTime)
		if err != nil {
			continue
		}
		endMinute, err := timezone.ParseTimeOfDay(instance.EndTime)
		if err != nil {
			continue
		}
		windowStart := day.Add(time.Duration(startMinute) * time.Minute)
		windowEnd := day.Add(time.Duration(endMinute) * time.Minute)
		if !windowEnd.After(windowStart) {
			windowEnd = windowEnd.AddDate(0, 0, 1)
		}
		windows = append(windows, scheduler.AvailabilityWindow{Start: windowStart, End: windowEnd})
	}
	return windows, nil
}

// InvalidateTutor drops cached expansions for the tutor. Write paths call
// this after changing the tutor's availability records.
func (s *AvailabilityService) InvalidateTutor(tutorID string) {
	if s == nil {
		return
	}
	s.cache.InvalidateTutor(tutorID)
}

func (s *AvailabilityService) listPatterns(ctx context.Context, tutorID string, courseID *string) ([]availability.RecurrencePattern, error) {
	if s.patterns == nil {
		return nil, nil
	}
	patterns, err := s.patterns.ListPatternsByTutor(ctx, tutorID, courseID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return patterns, nil
}

func (s *AvailabilityService) listSpecifics(ctx context.Context, tutorID string, start, end time.Time) ([]availability.SpecificDate, error) {
	if s.specifics == nil {
		return nil, nil
	}
	specifics, err := s.specifics.ListSpecificDatesByTutor(ctx, tutorID, start, end)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return specifics, nil
}

// filterSpecificsByCourse keeps single-date records matching the requested
// course. Records without a course scope apply to every course.
func filterSpecificsByCourse(specifics []availability.SpecificDate, courseID *string) []availability.SpecificDate {
	if courseID == nil {
		return specifics
	}
	out := specifics[:0]
	for _, specific := range specifics {
		if specific.CourseID == nil || *specific.CourseID == *courseID {
			out = append(out, specific)
		}
	}
	return out
}

// excludeStaleCourseRefs drops records whose course id no longer resolves,
// reporting each exclusion as a warning instead of failing the query.
func (s *AvailabilityService) excludeStaleCourseRefs(ctx context.Context, patterns []availability.RecurrencePattern, specifics []availability.SpecificDate) ([]availability.RecurrencePattern, []availability.SpecificDate, []availability.Warning, error) {
	if s.courses == nil {
		return patterns, specifics, nil, nil
	}

	known := make(map[string]bool)
	exists := func(id string) (bool, error) {
		if ok, seen := known[id]; seen {
			return ok, nil
		}
		ok, err := s.courses.CourseExists(ctx, id)
		if err != nil {
			return false, err
		}
		known[id] = ok
		return ok, nil
	}

	var warnings []availability.Warning
	keptPatterns := patterns[:0]
	for _, pattern := range patterns {
		if pattern.CourseID != nil {
			ok, err := exists(*pattern.CourseID)
			if err != nil {
				return nil, nil, nil, err
			}
			if !ok {
				warnings = append(warnings, availability.Warning{
					Code:     availability.WarningUnknownCourse,
					RecordID: pattern.ID,
					TutorID:  pattern.TutorID,
					Message:  fmt.Sprintf("pattern references unknown course %q", *pattern.CourseID),
				})
				continue
			}
		}
		keptPatterns = append(keptPatterns, pattern)
	}

	keptSpecifics := specifics[:0]
	for _, specific := range specifics {
		if specific.CourseID != nil {
			ok, err := exists(*specific.CourseID)
			if err != nil {
				return nil, nil, nil, err
			}
			if !ok {
				warnings = append(warnings, availability.Warning{
					Code:     availability.WarningUnknownCourse,
					RecordID: specific.ID,
					TutorID:  specific.TutorID,
					Message:  fmt.Sprintf("record references unknown course %q", *specific.CourseID),
				})
				continue
			}
		}
		keptSpecifics = append(keptSpecifics, specific)
	}

	return keptPatterns, keptSpecifics, warnings, nil
}

func validateExpandParams(params ExpandAvailabilityParams) error {
	vErr := &ValidationError{}
	if params.TutorID == "" {
		vErr.add("tutor_id", "tutor id is required")
	}
	if params.Start.IsZero() {
		vErr.add("start", "start date is required")
	}
	if params.End.IsZero() {
		vErr.add("end", "end date is required")
	}
	if !params.Start.IsZero() && !params.End.IsZero() && params.Start.After(params.End) {
		vErr.add("window", "start date must be on or before end date")
	}
	if params.ViewerZone == "" {
		vErr.add("viewer_zone", "viewer timezone is required")
	} else if !timezone.ValidZone(params.ViewerZone) {
		vErr.add("viewer_zone", fmt.Sprintf("unknown IANA zone %q", params.ViewerZone))
	}
	if params.Convention != "" && !params.Convention.Valid() {
		vErr.add("convention", fmt.Sprintf("unknown weekday convention %q", params.Convention))
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func renderInstances(instances []availability.VirtualInstance) []AvailabilityInstance {
	if len(instances) == 0 {
		return nil
	}
	out := make([]AvailabilityInstance, 0, len(instances))
	for _, instance := range instances {
		python := weekday.FromDate(instance.Date)
		out = append(out, AvailabilityInstance{
			PatternID:       instance.PatternID,
			TutorID:         instance.TutorID,
			CourseID:        instance.CourseID,
			Date:            instance.Date.Format("2006-01-02"),
			ViewerDate:      instance.ViewerDate.Format("2006-01-02"),
			DayOfWeekPython: python,
			DayOfWeekJS:     weekday.PythonToJS(python),
			StartTime:       instance.StartTime,
			EndTime:         instance.EndTime,
			TimeZone:        instance.TimeZone,
			Available:       instance.Available,
			Specific:        instance.Specific,
		})
	}
	return out
}
