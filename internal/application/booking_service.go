package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/tutoring-scheduler/internal/persistence"
	"github.com/example/tutoring-scheduler/internal/scheduler"
)

// BookingRepository captures the persistence interactions for bookings.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	ListBookingsOverlapping(ctx context.Context, tutorID string, studentIDs []string, start, end time.Time) ([]Booking, error)
}

// AvailabilityProvider supplies a tutor's availability as absolute intervals
// for coverage checks. A nil provider skips the coverage check.
type AvailabilityProvider interface {
	WindowsForTutor(ctx context.Context, tutorID string, start, end time.Time) ([]scheduler.AvailabilityWindow, error)
}

// BookingService validates booking requests and runs conflict detection
// before anything is persisted.
type BookingService struct {
	bookings     BookingRepository
	users        TutorDirectory
	availability AvailabilityProvider
	detector     *scheduler.Detector
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewBookingService wires dependencies for booking operations. A nil
// detector falls back to the default policy.
func NewBookingService(bookings BookingRepository, users TutorDirectory, availability AvailabilityProvider, detector *scheduler.Detector, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if detector == nil {
		detector = scheduler.NewDetector(scheduler.Policy{}, now)
	}
	return &BookingService{
		bookings:     bookings,
		users:        users,
		availability: availability,
		detector:     detector,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

// DetectConflicts evaluates one proposed booking against the stored
// bookings without persisting anything.
func (s *BookingService) DetectConflicts(ctx context.Context, params CheckConflictParams) (ConflictResult, error) {
	if s == nil {
		return ConflictResult{}, fmt.Errorf("BookingService is nil")
	}
	if err := validateBookingInput(params.Input); err != nil {
		return ConflictResult{}, err
	}

	existing, err := s.overlappingBookings(ctx, params.Input)
	if err != nil {
		return ConflictResult{}, err
	}
	windows, err := s.availabilityWindows(ctx, params.Input)
	if err != nil {
		return ConflictResult{}, err
	}

	conflicts := s.detector.Detect(toProposed(params), toSchedulerBookings(existing), windows)
	return ConflictResult{Conflicts: conflicts, Blocking: scheduler.Blocking(conflicts)}, nil
}

// DetectBatchConflicts evaluates a set of proposed bookings together. Each
// request is checked against the store and against its siblings, so two
// requests colliding only with each other are still reported.
func (s *BookingService) DetectBatchConflicts(ctx context.Context, batch []CheckConflictParams) ([]ConflictResult, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	vErr := &ValidationError{}
	for i, params := range batch {
		if err := validateBookingInput(params.Input); err != nil {
			var inner *ValidationError
			if errors.As(err, &inner) {
				for field, msg := range inner.FieldErrors {
					vErr.add(fmt.Sprintf("requests[%d].%s", i, field), msg)
				}
				continue
			}
			return nil, err
		}
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	var existing []Booking
	availability := make(map[string][]scheduler.AvailabilityWindow)
	for _, params := range batch {
		overlapping, err := s.overlappingBookings(ctx, params.Input)
		if err != nil {
			return nil, err
		}
		existing = mergeBookings(existing, overlapping)

		if _, ok := availability[params.Input.TutorID]; !ok {
			windows, err := s.availabilityWindows(ctx, params.Input)
			if err != nil {
				return nil, err
			}
			availability[params.Input.TutorID] = windows
		}
	}
	if s.availability == nil {
		availability = nil
	}

	proposals := make([]scheduler.Proposed, 0, len(batch))
	for i, params := range batch {
		proposed := toProposed(params)
		if proposed.ID == "" {
			proposed.ID = fmt.Sprintf("request-%d", i)
		}
		proposals = append(proposals, proposed)
	}

	results := s.detector.DetectBatch(proposals, toSchedulerBookings(existing), availability)
	out := make([]ConflictResult, len(results))
	for i, conflicts := range results {
		out[i] = ConflictResult{Conflicts: conflicts, Blocking: scheduler.Blocking(conflicts)}
	}
	return out, nil
}

// CreateBooking persists a booking after conflict detection. Blocking
// conflicts reject the booking with ErrBookingConflict; advisory conflicts
// are returned alongside the created booking.
func (s *BookingService) CreateBooking(ctx context.Context, input BookingInput) (Booking, []scheduler.Conflict, error) {
	if s == nil {
		return Booking{}, nil, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return Booking{}, nil, fmt.Errorf("booking repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "booking", "create", "tutor_id", input.TutorID)

	if err := validateBookingInput(input); err != nil {
		return Booking{}, nil, err
	}
	if err := s.ensureUsersExist(ctx, input); err != nil {
		return Booking{}, nil, err
	}

	result, err := s.DetectConflicts(ctx, CheckConflictParams{Input: input})
	if err != nil {
		return Booking{}, nil, err
	}
	if result.Blocking {
		logger.InfoContext(ctx, "booking rejected by conflict detection",
			"conflict_count", len(result.Conflicts))
		return Booking{}, result.Conflicts, ErrBookingConflict
	}

	createdAt := s.now()
	booking := Booking{
		ID:         s.idGenerator(),
		TutorID:    input.TutorID,
		StudentIDs: input.StudentIDs,
		CourseID:   input.CourseID,
		Start:      input.Start,
		End:        input.End,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}

	persisted, err := s.bookings.CreateBooking(ctx, booking)
	if err != nil {
		return Booking{}, nil, mapRepoError(err)
	}
	return persisted, result.Conflicts, nil
}

// DeleteBooking removes a booking.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}
	if err := s.bookings.DeleteBooking(ctx, id); err != nil {
		return mapRepoError(err)
	}
	return nil
}

func (s *BookingService) overlappingBookings(ctx context.Context, input BookingInput) ([]Booking, error) {
	if s.bookings == nil {
		return nil, nil
	}
	bookings, err := s.bookings.ListBookingsOverlapping(ctx, input.TutorID, input.StudentIDs, input.Start, input.End)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return bookings, nil
}

// availabilityWindows returns nil when no provider is configured, which
// skips the coverage check entirely rather than flagging every probe.
func (s *BookingService) availabilityWindows(ctx context.Context, input BookingInput) ([]scheduler.AvailabilityWindow, error) {
	if s.availability == nil {
		return nil, nil
	}
	windows, err := s.availability.WindowsForTutor(ctx, input.TutorID, input.Start, input.End)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if windows == nil {
		windows = []scheduler.AvailabilityWindow{}
	}
	return windows, nil
}

func (s *BookingService) ensureUsersExist(ctx context.Context, input BookingInput) error {
	if s.users == nil {
		return nil
	}
	exists, err := s.users.TutorExists(ctx, input.TutorID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func validateBookingInput(input BookingInput) error {
	vErr := &ValidationError{}
	if input.TutorID == "" {
		vErr.add("tutor_id", "tutor id is required")
	}
	if len(input.StudentIDs) == 0 {
		vErr.add("student_ids", "at least one student id is required")
	}
	seen := make(map[string]struct{}, len(input.StudentIDs))
	for _, studentID := range input.StudentIDs {
		if studentID == "" {
			vErr.add("student_ids", "student ids must not be blank")
			break
		}
		if _, dup := seen[studentID]; dup {
			vErr.add("student_ids", "student ids must be unique")
			break
		}
		seen[studentID] = struct{}{}
	}
	if input.Start.IsZero() {
		vErr.add("start", "start is required")
	}
	if input.End.IsZero() {
		vErr.add("end", "end is required")
	}
	if !input.Start.IsZero() && !input.End.IsZero() && !input.Start.Before(input.End) {
		vErr.add("time", "start must be before end")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func toProposed(params CheckConflictParams) scheduler.Proposed {
	return scheduler.Proposed{
		TutorID:    params.Input.TutorID,
		StudentIDs: params.Input.StudentIDs,
		CourseID:   params.Input.CourseID,
		Start:      params.Input.Start,
		End:        params.Input.End,
		ExcludeID:  params.ExcludeBookingID,
	}
}

func toSchedulerBookings(bookings []Booking) []scheduler.Booking {
	if len(bookings) == 0 {
		return nil
	}
	out := make([]scheduler.Booking, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, scheduler.Booking{
			ID:         booking.ID,
			TutorID:    booking.TutorID,
			StudentIDs: booking.StudentIDs,
			CourseID:   booking.CourseID,
			Start:      booking.Start,
			End:        booking.End,
		})
	}
	return out
}

func mergeBookings(existing, more []Booking) []Booking {
	seen := make(map[string]struct{}, len(existing))
	for _, booking := range existing {
		seen[booking.ID] = struct{}{}
	}
	for _, booking := range more {
		if _, ok := seen[booking.ID]; ok {
			continue
		}
		seen[booking.ID] = struct{}{}
		existing = append(existing, booking)
	}
	return existing
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("time", "start must be before end")
		return vErr
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("references", "related records are missing")
		return vErr
	}
	return err
}
