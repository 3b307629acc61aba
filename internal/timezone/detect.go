package timezone

import "time"

// StorageFormat states whether a stored time-of-day string is the tutor's
// local civil time or an absolute UTC time-of-day. Historical rows do not
// reliably record which convention was used.
type StorageFormat string

const (
	// FormatLocal means the stored time is the tutor's local civil time.
	FormatLocal StorageFormat = "local"
	// FormatUTC means the stored time is a UTC time-of-day.
	FormatUTC StorageFormat = "utc"
	// FormatUnknown means neither interpretation could be established.
	// Callers must surface it instead of guessing.
	FormatUnknown StorageFormat = "unknown"
)

// WorkingHours is the plausible-working-hours window used by the storage
// format heuristic. Both bounds are inclusive, in minutes since midnight.
type WorkingHours struct {
	StartMinute int
	EndMinute   int
}

// DefaultWorkingHours returns the 08:00-22:00 window.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{StartMinute: 8 * 60, EndMinute: 22 * 60}
}

// Contains reports whether the minute falls inside the window, inclusive.
func (w WorkingHours) Contains(minute int) bool {
	return minute >= w.StartMinute && minute <= w.EndMinute
}

// Record is the slice of an availability row the detector needs.
type Record struct {
	StartTime string
	TimeZone  string
	Format    StorageFormat
}

// Detector infers the storage format of legacy rows that lack an explicit
// tag. This is a best-effort repair strategy for under-specified historical
// data, not a guarantee.
type Detector struct {
	Window    WorkingHours
	Converter Converter
}

// NewDetector builds a detector with the supplied window; a zero window
// falls back to DefaultWorkingHours and a nil converter to the DST-correct
// LocationConverter.
func NewDetector(window WorkingHours, converter Converter) Detector {
	if window == (WorkingHours{}) {
		window = DefaultWorkingHours()
	}
	if converter == nil {
		converter = LocationConverter{}
	}
	return Detector{Window: window, Converter: converter}
}

// Detect returns the record's storage format. An explicit tag wins. For
// untagged rows: a start time inside the working-hours window reads as
// local; otherwise the time is tried as UTC and accepted when its rendering
// in the record's zone on referenceDate lands inside the window; otherwise
// the format is unknown.
func (d Detector) Detect(rec Record, referenceDate time.Time) StorageFormat {
	switch rec.Format {
	case FormatLocal, FormatUTC:
		return rec.Format
	}

	minutes, err := ParseTimeOfDay(rec.StartTime)
	if err != nil {
		return FormatUnknown
	}
	if d.Window.Contains(minutes) {
		return FormatLocal
	}

	if rec.TimeZone == "" {
		return FormatUnknown
	}
	converter := d.Converter
	if converter == nil {
		converter = LocationConverter{}
	}
	rendered, err := converter.ConvertCivilTime(rec.StartTime, "UTC", rec.TimeZone, referenceDate)
	if err != nil {
		return FormatUnknown
	}
	localMinutes, err := ParseTimeOfDay(rendered.Time)
	if err != nil {
		return FormatUnknown
	}
	if d.Window.Contains(localMinutes) {
		return FormatUTC
	}
	return FormatUnknown
}
