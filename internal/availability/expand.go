package availability

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/tutoring-scheduler/internal/timezone"
	"github.com/example/tutoring-scheduler/internal/weekday"
)

// ErrInvalidWindow indicates the query window is missing a bound or the
// start date falls after the end date. This is a programmer error, unlike
// the data-quality findings reported as warnings.
var ErrInvalidWindow = errors.New("availability: window start must be on or before window end")

// ErrViewerZone indicates the viewer timezone is absent or unresolvable.
var ErrViewerZone = errors.New("availability: viewer timezone is invalid")

const civilDateLayout = "2006-01-02"

// Expander turns stored patterns into virtual instances. It holds no state
// beyond its converter strategy and storage-format detector; every Expand
// call is a pure function of its inputs.
type Expander struct {
	converter timezone.Converter
	detector  timezone.Detector
}

// NewExpander wires an expander. A nil converter defaults to the DST-correct
// LocationConverter.
func NewExpander(converter timezone.Converter, detector timezone.Detector) *Expander {
	if converter == nil {
		converter = timezone.LocationConverter{}
	}
	if detector.Converter == nil {
		detector = timezone.NewDetector(detector.Window, converter)
	}
	return &Expander{converter: converter, detector: detector}
}

// Expand generates every instance the patterns and specific-date records
// produce inside the inclusive window, rendered in viewerZone.
//
// Specific-date records always win: a recurring instance on a date covered
// by a specific record for the same tutor is replaced, not merged. Dates
// listed in a pattern's ExceptionDates are skipped. No instance is ever
// emitted before a pattern's StartDate regardless of the window.
//
// Records with unusable data (bad zone, bad times, bad weekday) are excluded
// and reported as warnings; one bad record never fails the query.
func (e *Expander) Expand(patterns []RecurrencePattern, specifics []SpecificDate, window Window, viewerZone string) (Expansion, error) {
	if window.Start.IsZero() || window.End.IsZero() || window.Start.After(window.End) {
		return Expansion{}, ErrInvalidWindow
	}
	if !timezone.ValidZone(viewerZone) {
		return Expansion{}, fmt.Errorf("%w: %q", ErrViewerZone, viewerZone)
	}

	var out Expansion
	taken := make(map[string]struct{})

	for _, specific := range specifics {
		e.expandSpecific(specific, window, viewerZone, taken, &out)
	}
	for _, pattern := range patterns {
		e.expandPattern(pattern, window, viewerZone, taken, &out)
	}

	sort.SliceStable(out.Instances, func(i, j int) bool {
		a, b := out.Instances[i], out.Instances[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.PatternID < b.PatternID
	})

	return out, nil
}

func (e *Expander) expandSpecific(specific SpecificDate, window Window, viewerZone string, taken map[string]struct{}, out *Expansion) {
	date := civilDate(specific.Date)
	if date.Before(civilDate(window.Start)) || date.After(civilDate(window.End)) {
		return
	}
	if !timezone.ValidZone(specific.TimeZone) {
		out.Warnings = append(out.Warnings, Warning{
			Code:     WarningInvalidTimeZone,
			RecordID: specific.ID,
			TutorID:  specific.TutorID,
			Message:  fmt.Sprintf("specific date record has unusable timezone %q", specific.TimeZone),
		})
		return
	}

	sourceZone := e.resolveSourceZone(specific.ID, specific.TutorID, timezone.Record{
		StartTime: specific.StartTime,
		TimeZone:  specific.TimeZone,
		Format:    specific.Format,
	}, date, out)

	instance, ok := e.render(specific.ID, specific.TutorID, specific.CourseID, date,
		specific.StartTime, specific.EndTime, sourceZone, viewerZone, specific.Available, true, out)
	if !ok {
		return
	}
	out.Instances = append(out.Instances, instance)
	taken[overlayKey(specific.TutorID, date)] = struct{}{}
}

func (e *Expander) expandPattern(pattern RecurrencePattern, window Window, viewerZone string, taken map[string]struct{}, out *Expansion) {
	if !timezone.ValidZone(pattern.TimeZone) {
		out.Warnings = append(out.Warnings, Warning{
			Code:     WarningInvalidTimeZone,
			RecordID: pattern.ID,
			TutorID:  pattern.TutorID,
			Message:  fmt.Sprintf("pattern has unusable timezone %q", pattern.TimeZone),
		})
		return
	}

	lower := civilDate(window.Start)
	if pattern.StartDate != nil {
		if start := civilDate(*pattern.StartDate); start.After(lower) {
			lower = start
		}
	} else {
		out.Warnings = append(out.Warnings, Warning{
			Code:     WarningMissingStartDate,
			RecordID: pattern.ID,
			TutorID:  pattern.TutorID,
			Message:  "pattern has no recurrence start date; expanding from the query start only",
		})
	}

	upper := civilDate(window.End)
	if pattern.EndDate != nil {
		if end := civilDate(*pattern.EndDate); end.Before(upper) {
			upper = end
		}
	}
	if lower.After(upper) {
		return
	}

	sourceZone := e.resolveSourceZone(pattern.ID, pattern.TutorID, timezone.Record{
		StartTime: pattern.StartTime,
		TimeZone:  pattern.TimeZone,
		Format:    pattern.Format,
	}, lower, out)

	exceptions := make(map[string]struct{}, len(pattern.ExceptionDates))
	for _, value := range pattern.ExceptionDates {
		exceptions[value] = struct{}{}
	}

	lowerWeekday := weekday.FromDate(lower)
	for _, day := range pattern.Weekdays() {
		if day < 0 || day > 6 {
			out.Warnings = append(out.Warnings, Warning{
				Code:     WarningInvalidWeekday,
				RecordID: pattern.ID,
				TutorID:  pattern.TutorID,
				Message:  fmt.Sprintf("pattern weekday %d is outside 0..6", day),
			})
			continue
		}
		offset := (day - lowerWeekday + 7) % 7
		for date := lower.AddDate(0, 0, offset); !date.After(upper); date = date.AddDate(0, 0, 7) {
			if _, skip := exceptions[date.Format(civilDateLayout)]; skip {
				continue
			}
			if _, replaced := taken[overlayKey(pattern.TutorID, date)]; replaced {
				continue
			}
			instance, ok := e.render(pattern.ID, pattern.TutorID, pattern.CourseID, date,
				pattern.StartTime, pattern.EndTime, sourceZone, viewerZone, pattern.Available, false, out)
			if !ok {
				return
			}
			out.Instances = append(out.Instances, instance)
		}
	}
}

// resolveSourceZone decides which zone the stored HH:MM strings are read in.
// Rows detected as UTC-stored convert from UTC; rows whose convention cannot
// be established are read as local and flagged rather than silently guessed.
func (e *Expander) resolveSourceZone(recordID, tutorID string, rec timezone.Record, referenceDate time.Time, out *Expansion) string {
	switch e.detector.Detect(rec, referenceDate) {
	case timezone.FormatUTC:
		return "UTC"
	case timezone.FormatLocal:
		return rec.TimeZone
	default:
		out.Warnings = append(out.Warnings, Warning{
			Code:     WarningAmbiguousStorageFormat,
			RecordID: recordID,
			TutorID:  tutorID,
			Message:  "storage format could not be determined; stored times read as local",
		})
		return rec.TimeZone
	}
}

func (e *Expander) render(recordID, tutorID string, courseID *string, date time.Time,
	startTime, endTime, sourceZone, viewerZone string, available, specific bool, out *Expansion) (VirtualInstance, bool) {

	start, err := e.converter.ConvertCivilTime(startTime, sourceZone, viewerZone, date)
	if err != nil {
		out.Warnings = append(out.Warnings, Warning{
			Code:     WarningInvalidTime,
			RecordID: recordID,
			TutorID:  tutorID,
			Message:  fmt.Sprintf("start time %q could not be converted: %v", startTime, err),
		})
		return VirtualInstance{}, false
	}
	end, err := e.converter.ConvertCivilTime(endTime, sourceZone, viewerZone, date)
	if err != nil {
		out.Warnings = append(out.Warnings, Warning{
			Code:     WarningInvalidTime,
			RecordID: recordID,
			TutorID:  tutorID,
			Message:  fmt.Sprintf("end time %q could not be converted: %v", endTime, err),
		})
		return VirtualInstance{}, false
	}

	return VirtualInstance{
		PatternID:  recordID,
		TutorID:    tutorID,
		CourseID:   courseID,
		Date:       date,
		ViewerDate: date.AddDate(0, 0, start.DayOffset),
		StartTime:  start.Time,
		EndTime:    end.Time,
		TimeZone:   viewerZone,
		Available:  available,
		Specific:   specific,
	}, true
}

func overlayKey(tutorID string, date time.Time) string {
	return tutorID + "|" + date.Format(civilDateLayout)
}

// civilDate strips any time-of-day and location from a timestamp, leaving
// the bare calendar date anchored in UTC for arithmetic.
func civilDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
