// Package weekday converts between the two weekday numbering conventions
// present in stored availability data: the Python/ISO convention (Monday=0)
// used as the canonical storage form, and the JavaScript convention
// (Sunday=0) used by client payloads.
package weekday

import "time"

// Invalid is returned for any day outside the closed set 0..6.
const Invalid = -1

// Convention identifies the numbering convention a raw weekday integer uses.
type Convention string

const (
	// ConventionPython numbers weekdays Monday=0..Sunday=6.
	ConventionPython Convention = "python"
	// ConventionJS numbers weekdays Sunday=0..Saturday=6.
	ConventionJS Convention = "js"
)

// Valid reports whether the convention is one of the two known values.
func (c Convention) Valid() bool {
	return c == ConventionPython || c == ConventionJS
}

// Days carries the same weekday expressed in both conventions so callers
// downstream never need to guess which one they are holding.
type Days struct {
	Python int
	JS     int
}

// PythonToJS maps a Monday=0 weekday to its Sunday=0 equivalent.
// Out-of-range input returns Invalid.
func PythonToJS(day int) int {
	if day < 0 || day > 6 {
		return Invalid
	}
	return (day + 1) % 7
}

// JSToPython maps a Sunday=0 weekday to its Monday=0 equivalent.
// Out-of-range input returns Invalid.
func JSToPython(day int) int {
	if day < 0 || day > 6 {
		return Invalid
	}
	return (day + 6) % 7
}

// Convert resolves a raw weekday integer of a declared convention into both
// conventions at once. The second return value is false when the day is out
// of range or the convention is unknown.
func Convert(day int, from Convention) (Days, bool) {
	if day < 0 || day > 6 {
		return Days{Python: Invalid, JS: Invalid}, false
	}
	switch from {
	case ConventionPython:
		return Days{Python: day, JS: PythonToJS(day)}, true
	case ConventionJS:
		return Days{Python: JSToPython(day), JS: day}, true
	default:
		return Days{Python: Invalid, JS: Invalid}, false
	}
}

// FromDate derives the Python-convention weekday (Monday=0) for a calendar
// date. Go numbers Sunday as 0, so the result is shifted by one.
func FromDate(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
