// Package scheduler detects booking conflicts. It operates on absolute
// instants: callers resolve civil times and zones before asking for
// conflicts, so the detection math itself is zone-free.
package scheduler

import "time"

// Booking is a confirmed session between a tutor and one or more students.
type Booking struct {
	ID         string
	TutorID    string
	StudentIDs []string
	CourseID   *string
	Start      time.Time
	End        time.Time
}

// Proposed is a booking request under evaluation. ExcludeID, when set,
// names an existing booking to ignore, so re-checking a saved booking
// against the store never reports it as conflicting with itself.
type Proposed struct {
	ID         string
	TutorID    string
	StudentIDs []string
	CourseID   *string
	Start      time.Time
	End        time.Time
	ExcludeID  string
}

// ConflictType classifies what a proposed booking collides with.
type ConflictType string

const (
	// ConflictTutorBusy means the tutor already has a booking in the slot.
	ConflictTutorBusy ConflictType = "tutor_busy"
	// ConflictStudentBusy means the student already has a booking in the slot.
	ConflictStudentBusy ConflictType = "student_busy"
	// ConflictOutsideAvailability means the slot falls outside the tutor's
	// published availability.
	ConflictOutsideAvailability ConflictType = "outside_availability"
	// ConflictDurationPolicy means the slot violates the duration limits.
	ConflictDurationPolicy ConflictType = "duration_policy"
	// ConflictOutsideBusinessHours means the slot starts or ends outside
	// the platform's business hours.
	ConflictOutsideBusinessHours ConflictType = "outside_business_hours"
	// ConflictInPast means the slot starts before the current time.
	ConflictInPast ConflictType = "in_past"
)

// Severity ranks how strongly a conflict should block the booking.
type Severity string

const (
	// SeverityHigh conflicts block the booking outright.
	SeverityHigh Severity = "high"
	// SeverityMedium conflicts need an explicit override to proceed.
	SeverityMedium Severity = "medium"
	// SeverityLow conflicts are advisory only.
	SeverityLow Severity = "low"
)

// Conflict describes one collision found for a proposed booking.
type Conflict struct {
	Type          ConflictType
	Severity      Severity
	WithBookingID string
	TutorID       string
	StudentID     string
	Message       string
}

// AvailabilityWindow is one open interval of tutor availability, as an
// absolute time range.
type AvailabilityWindow struct {
	Start time.Time
	End   time.Time
}

// Policy carries the platform's booking rules.
type Policy struct {
	MinDuration   time.Duration
	MaxDuration   time.Duration
	BusinessStart int // minutes since local midnight
	BusinessEnd   int
}

// DefaultPolicy returns the platform defaults: sessions of 15 minutes to
// 8 hours, bookable between 06:00 and 23:00.
func DefaultPolicy() Policy {
	return Policy{
		MinDuration:   15 * time.Minute,
		MaxDuration:   8 * time.Hour,
		BusinessStart: 6 * 60,
		BusinessEnd:   23 * 60,
	}
}

// Detector evaluates proposed bookings against existing ones, the tutor's
// availability, and the booking policy.
type Detector struct {
	policy Policy
	now    func() time.Time
}

// NewDetector builds a detector; a zero policy falls back to DefaultPolicy
// and a nil clock to time.Now.
func NewDetector(policy Policy, now func() time.Time) *Detector {
	if policy == (Policy{}) {
		policy = DefaultPolicy()
	}
	if now == nil {
		now = time.Now
	}
	return &Detector{policy: policy, now: now}
}

// Overlaps reports whether the two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back slots sharing a boundary instant
// do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Detect returns every conflict the proposed booking raises. existing is the
// set of confirmed bookings to check against; availability, when non-nil, is
// the tutor's expanded availability for the proposed date (a nil slice skips
// the availability check, an empty one means no availability at all).
func (d *Detector) Detect(proposed Proposed, existing []Booking, availability []AvailabilityWindow) []Conflict {
	var conflicts []Conflict

	conflicts = append(conflicts, d.checkPolicy(proposed)...)

	for _, booking := range existing {
		if booking.ID != "" && booking.ID == proposed.ExcludeID {
			continue
		}
		if !Overlaps(proposed.Start, proposed.End, booking.Start, booking.End) {
			continue
		}
		if booking.TutorID == proposed.TutorID {
			conflicts = append(conflicts, Conflict{
				Type:          ConflictTutorBusy,
				Severity:      SeverityHigh,
				WithBookingID: booking.ID,
				TutorID:       booking.TutorID,
				Message:       "tutor already has a booking in this slot",
			})
		}
		// Group sessions report one conflict per busy student.
		for _, studentID := range sharedStudents(proposed.StudentIDs, booking.StudentIDs) {
			conflicts = append(conflicts, Conflict{
				Type:          ConflictStudentBusy,
				Severity:      SeverityHigh,
				WithBookingID: booking.ID,
				StudentID:     studentID,
				Message:       "student already has a booking in this slot",
			})
		}
	}

	if availability != nil && !covered(proposed, availability) {
		// No availability at all blocks; partial coverage needs an override.
		severity := SeverityMedium
		message := "slot is not fully covered by the tutor's published availability"
		if len(availability) == 0 {
			severity = SeverityHigh
			message = "tutor has no published availability for this slot"
		}
		conflicts = append(conflicts, Conflict{
			Type:     ConflictOutsideAvailability,
			Severity: severity,
			TutorID:  proposed.TutorID,
			Message:  message,
		})
	}

	return conflicts
}

// DetectBatch checks each proposed booking against the existing set and
// against the other members of the batch, so two requests colliding only
// with each other are still caught. Results are indexed like the input.
func (d *Detector) DetectBatch(proposals []Proposed, existing []Booking, availability map[string][]AvailabilityWindow) [][]Conflict {
	out := make([][]Conflict, len(proposals))
	for i, proposed := range proposals {
		var windows []AvailabilityWindow
		if availability != nil {
			windows = availability[proposed.TutorID]
		}
		conflicts := d.Detect(proposed, existing, windows)

		for j, sibling := range proposals {
			if i == j {
				continue
			}
			if !Overlaps(proposed.Start, proposed.End, sibling.Start, sibling.End) {
				continue
			}
			if sibling.TutorID == proposed.TutorID {
				conflicts = append(conflicts, Conflict{
					Type:          ConflictTutorBusy,
					Severity:      SeverityHigh,
					WithBookingID: sibling.ID,
					TutorID:       sibling.TutorID,
					Message:       "another request in this batch books the tutor for an overlapping slot",
				})
			}
			for _, studentID := range sharedStudents(proposed.StudentIDs, sibling.StudentIDs) {
				conflicts = append(conflicts, Conflict{
					Type:          ConflictStudentBusy,
					Severity:      SeverityHigh,
					WithBookingID: sibling.ID,
					StudentID:     studentID,
					Message:       "another request in this batch books the student for an overlapping slot",
				})
			}
		}
		out[i] = conflicts
	}
	return out
}

// Blocking reports whether any conflict in the set is severe enough to
// reject the booking without an override.
func Blocking(conflicts []Conflict) bool {
	for _, conflict := range conflicts {
		if conflict.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

func (d *Detector) checkPolicy(proposed Proposed) []Conflict {
	var conflicts []Conflict

	if !proposed.Start.IsZero() && proposed.Start.Before(d.now()) {
		conflicts = append(conflicts, Conflict{
			Type:     ConflictInPast,
			Severity: SeverityHigh,
			Message:  "booking starts in the past",
		})
	}

	duration := proposed.End.Sub(proposed.Start)
	if duration < d.policy.MinDuration {
		conflicts = append(conflicts, Conflict{
			Type:     ConflictDurationPolicy,
			Severity: SeverityMedium,
			Message:  "booking is shorter than the minimum session duration",
		})
	} else if duration > d.policy.MaxDuration {
		conflicts = append(conflicts, Conflict{
			Type:     ConflictDurationPolicy,
			Severity: SeverityMedium,
			Message:  "booking is longer than the maximum session duration",
		})
	}

	startMinute := proposed.Start.Hour()*60 + proposed.Start.Minute()
	endMinute := proposed.End.Hour()*60 + proposed.End.Minute()
	if endMinute == 0 && proposed.End.After(proposed.Start) {
		endMinute = 24 * 60
	}
	if startMinute < d.policy.BusinessStart || endMinute > d.policy.BusinessEnd {
		conflicts = append(conflicts, Conflict{
			Type:     ConflictOutsideBusinessHours,
			Severity: SeverityLow,
			Message:  "booking falls outside business hours",
		})
	}

	return conflicts
}

// sharedStudents returns the ids appearing in both sets, in the order of
// the first. Blank ids never match.
func sharedStudents(proposed, existing []string) []string {
	if len(proposed) == 0 || len(existing) == 0 {
		return nil
	}
	busy := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		if id != "" {
			busy[id] = struct{}{}
		}
	}
	var shared []string
	for _, id := range proposed {
		if _, ok := busy[id]; ok {
			shared = append(shared, id)
			delete(busy, id)
		}
	}
	return shared
}

func covered(proposed Proposed, windows []AvailabilityWindow) bool {
	for _, window := range windows {
		if !proposed.Start.Before(window.Start) && !proposed.End.After(window.End) {
			return true
		}
	}
	return false
}
