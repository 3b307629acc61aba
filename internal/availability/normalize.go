package availability

import (
	"fmt"
	"math"
	"time"

	"github.com/example/tutoring-scheduler/internal/timezone"
	"github.com/example/tutoring-scheduler/internal/weekday"
)

// FieldIssue flags one malformed field on a normalized record.
type FieldIssue struct {
	Field   string
	Message string
}

// Normalized is the canonical in-memory form of a raw availability payload.
// Weekdays are exposed in both conventions so nothing downstream ever has to
// guess, and Payload emits both historical field namings for transitional
// compatibility. Malformed inputs produce flagged fields, never a panic or
// error, so batch normalization always yields one record per input.
type Normalized struct {
	ID              string
	TutorID         string
	CourseID        *string
	DayOfWeekPython int // weekday.Invalid when absent or malformed
	DayOfWeekJS     int
	RecurrenceDays  []int // Python convention
	StartTime       string
	EndTime         string
	TimeZone        string
	Format          timezone.StorageFormat
	StartDate       *time.Time
	EndDate         *time.Time
	SpecificDate    *time.Time
	ExceptionDates  []string
	Available       bool
	Issues          []FieldIssue
}

// Valid reports whether the record normalized without any flagged field.
func (n Normalized) Valid() bool {
	return len(n.Issues) == 0
}

// Recurring reports whether the record describes a weekly pattern rather
// than a single-date override.
func (n Normalized) Recurring() bool {
	return n.SpecificDate == nil
}

// Pattern converts the record into a RecurrencePattern. The second return
// value is false for specific-date records and records whose weekday never
// resolved.
func (n Normalized) Pattern() (RecurrencePattern, bool) {
	if !n.Recurring() || n.DayOfWeekPython == weekday.Invalid {
		return RecurrencePattern{}, false
	}
	return RecurrencePattern{
		ID:             n.ID,
		TutorID:        n.TutorID,
		CourseID:       n.CourseID,
		DayOfWeek:      n.DayOfWeekPython,
		RecurrenceDays: append([]int(nil), n.RecurrenceDays...),
		StartTime:      n.StartTime,
		EndTime:        n.EndTime,
		TimeZone:       n.TimeZone,
		Format:         n.Format,
		StartDate:      n.StartDate,
		EndDate:        n.EndDate,
		ExceptionDates: append([]string(nil), n.ExceptionDates...),
		Available:      n.Available,
	}, true
}

// Specific converts the record into a SpecificDate. The second return value
// is false for recurring records.
func (n Normalized) Specific() (SpecificDate, bool) {
	if n.Recurring() {
		return SpecificDate{}, false
	}
	return SpecificDate{
		ID:        n.ID,
		TutorID:   n.TutorID,
		CourseID:  n.CourseID,
		Date:      *n.SpecificDate,
		StartTime: n.StartTime,
		EndTime:   n.EndTime,
		TimeZone:  n.TimeZone,
		Format:    n.Format,
		Available: n.Available,
	}, true
}

// Payload renders the record with both field-naming variants and both
// weekday conventions, for callers still consuming either historical shape.
func (n Normalized) Payload() map[string]any {
	out := map[string]any{
		"id":                 n.ID,
		"tutor_id":           n.TutorID,
		"tutorId":            n.TutorID,
		"day_of_week_python": n.DayOfWeekPython,
		"dayOfWeekPython":    n.DayOfWeekPython,
		"day_of_week_js":     n.DayOfWeekJS,
		"dayOfWeekJs":        n.DayOfWeekJS,
		"start_time":         n.StartTime,
		"startTime":          n.StartTime,
		"end_time":           n.EndTime,
		"endTime":            n.EndTime,
		"time_zone":          n.TimeZone,
		"timeZone":           n.TimeZone,
		"available":          n.Available,
	}
	if n.CourseID != nil {
		out["course_id"] = *n.CourseID
		out["courseId"] = *n.CourseID
	}
	if n.Format != "" {
		out["timezone_storage_format"] = string(n.Format)
		out["timezoneStorageFormat"] = string(n.Format)
	}
	if n.StartDate != nil {
		value := n.StartDate.Format(civilDateLayout)
		out["recurrence_start_date"] = value
		out["recurrenceStartDate"] = value
	}
	if n.EndDate != nil {
		value := n.EndDate.Format(civilDateLayout)
		out["recurrence_end_date"] = value
		out["recurrenceEndDate"] = value
	}
	if n.SpecificDate != nil {
		value := n.SpecificDate.Format(civilDateLayout)
		out["specific_date"] = value
		out["specificDate"] = value
	}
	if len(n.RecurrenceDays) > 0 {
		out["recurrence_days"] = append([]int(nil), n.RecurrenceDays...)
		out["recurrenceDays"] = append([]int(nil), n.RecurrenceDays...)
	}
	if len(n.ExceptionDates) > 0 {
		out["exception_dates"] = append([]string(nil), n.ExceptionDates...)
		out["exceptionDates"] = append([]string(nil), n.ExceptionDates...)
	}
	return out
}

// Normalize canonicalizes one raw payload. The declared convention states
// which weekday numbering the payload's integers use; raw integers are never
// trusted implicitly.
func Normalize(raw map[string]any, declared weekday.Convention) Normalized {
	n := Normalized{
		DayOfWeekPython: weekday.Invalid,
		DayOfWeekJS:     weekday.Invalid,
		Available:       true,
	}
	if raw == nil {
		n.flag("record", "record is null")
		return n
	}
	if !declared.Valid() {
		n.flag("convention", fmt.Sprintf("unknown weekday convention %q", declared))
		return n
	}

	n.ID, _ = stringField(raw, "id")
	n.TutorID, _ = stringField(raw, "tutor_id", "tutorId")
	if n.TutorID == "" {
		n.flag("tutor_id", "tutor id is required")
	}
	if course, ok := stringField(raw, "course_id", "courseId"); ok && course != "" {
		n.CourseID = &course
	}

	if value, present := lookup(raw, "day_of_week", "dayOfWeek"); present {
		if day, ok := intValue(value); ok {
			if days, valid := weekday.Convert(day, declared); valid {
				n.DayOfWeekPython = days.Python
				n.DayOfWeekJS = days.JS
			} else {
				n.flag("day_of_week", fmt.Sprintf("weekday %d is outside 0..6", day))
			}
		} else {
			n.flag("day_of_week", "weekday is not an integer")
		}
	}

	if value, present := lookup(raw, "recurrence_days", "recurrenceDays"); present {
		n.RecurrenceDays = normalizeDayList(value, declared, &n)
	}

	n.StartTime = timeField(raw, &n, "start_time", "startTime")
	n.EndTime = timeField(raw, &n, "end_time", "endTime")

	if zone, ok := stringField(raw, "time_zone", "timeZone", "timezone"); ok {
		n.TimeZone = zone
		if !timezone.ValidZone(zone) {
			n.flag("time_zone", fmt.Sprintf("unknown IANA zone %q", zone))
		}
	}

	if format, ok := stringField(raw, "timezone_storage_format", "timezoneStorageFormat"); ok && format != "" {
		switch timezone.StorageFormat(format) {
		case timezone.FormatLocal, timezone.FormatUTC:
			n.Format = timezone.StorageFormat(format)
		default:
			n.flag("timezone_storage_format", fmt.Sprintf("unknown storage format %q", format))
		}
	}

	n.StartDate = dateField(raw, &n, "recurrence_start_date", "recurrenceStartDate")
	n.EndDate = dateField(raw, &n, "recurrence_end_date", "recurrenceEndDate")
	n.SpecificDate = dateField(raw, &n, "specific_date", "specificDate")

	if value, present := lookup(raw, "exception_dates", "exceptionDates"); present {
		n.ExceptionDates = normalizeDateList(value, &n)
	}

	if value, present := lookup(raw, "available"); present {
		if available, ok := value.(bool); ok {
			n.Available = available
		} else {
			n.flag("available", "available is not a boolean")
		}
	}

	return n
}

// NormalizeBatch canonicalizes every payload independently; a malformed
// record is returned flagged in place, never aborting its siblings.
func NormalizeBatch(raws []map[string]any, declared weekday.Convention) []Normalized {
	out := make([]Normalized, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw, declared))
	}
	return out
}

func (n *Normalized) flag(field, message string) {
	n.Issues = append(n.Issues, FieldIssue{Field: field, Message: message})
}

func lookup(raw map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if value, ok := raw[key]; ok {
			return value, true
		}
	}
	return nil, false
}

func stringField(raw map[string]any, keys ...string) (string, bool) {
	value, present := lookup(raw, keys...)
	if !present {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// intValue accepts the numeric shapes JSON decoding produces. Floats with a
// fractional part are rejected rather than truncated.
func intValue(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

func timeField(raw map[string]any, n *Normalized, keys ...string) string {
	value, present := lookup(raw, keys...)
	if !present {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		n.flag(keys[0], "time is not a string")
		return ""
	}
	if _, err := timezone.ParseTimeOfDay(s); err != nil {
		n.flag(keys[0], err.Error())
		return ""
	}
	return s
}

func dateField(raw map[string]any, n *Normalized, keys ...string) *time.Time {
	value, present := lookup(raw, keys...)
	if !present {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		n.flag(keys[0], "date is not a string")
		return nil
	}
	parsed, err := time.Parse(civilDateLayout, s)
	if err != nil {
		n.flag(keys[0], fmt.Sprintf("date %q is not in YYYY-MM-DD form", s))
		return nil
	}
	return &parsed
}

func normalizeDayList(value any, declared weekday.Convention, n *Normalized) []int {
	list, ok := value.([]any)
	if !ok {
		n.flag("recurrence_days", "recurrence days is not a list")
		return nil
	}
	out := make([]int, 0, len(list))
	for _, entry := range list {
		day, ok := intValue(entry)
		if !ok {
			n.flag("recurrence_days", "recurrence day is not an integer")
			continue
		}
		days, valid := weekday.Convert(day, declared)
		if !valid {
			n.flag("recurrence_days", fmt.Sprintf("weekday %d is outside 0..6", day))
			continue
		}
		out = append(out, days.Python)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeDateList(value any, n *Normalized) []string {
	list, ok := value.([]any)
	if !ok {
		n.flag("exception_dates", "exception dates is not a list")
		return nil
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		s, ok := entry.(string)
		if !ok {
			n.flag("exception_dates", "exception date is not a string")
			continue
		}
		if _, err := time.Parse(civilDateLayout, s); err != nil {
			n.flag("exception_dates", fmt.Sprintf("exception date %q is not in YYYY-MM-DD form", s))
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
