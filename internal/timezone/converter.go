// Package timezone converts civil wall-clock times between IANA zones for a
// given calendar date. Two converter implementations coexist behind one
// interface: the DST-correct one and the legacy fixed-offset one, selected
// by configuration so the legacy path stays removable once migration of
// stored availability rows is verified.
package timezone

import (
	"fmt"
	"time"
)

// Converted is the result of a civil time conversion. Converting near
// midnight can land the result on the previous or next calendar day, so the
// rendered time carries an explicit day shift relative to the input date.
type Converted struct {
	Time      string
	DayOffset int
}

// Converter renders a civil wall-clock time read in sourceZone on civilDate
// as the wall-clock time of the same absolute instant in targetZone.
type Converter interface {
	ConvertCivilTime(timeOfDay, sourceZone, targetZone string, civilDate time.Time) (Converted, error)
}

// LocationConverter resolves offsets from the IANA tz database for the
// specific civil date being converted, so the same zone pair can yield
// different results on either side of a DST transition.
type LocationConverter struct{}

// ConvertCivilTime implements Converter.
func (LocationConverter) ConvertCivilTime(timeOfDay, sourceZone, targetZone string, civilDate time.Time) (Converted, error) {
	minutes, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return Converted{}, err
	}
	src, err := time.LoadLocation(sourceZone)
	if err != nil {
		return Converted{}, fmt.Errorf("load source zone %q: %w", sourceZone, err)
	}
	dst, err := time.LoadLocation(targetZone)
	if err != nil {
		return Converted{}, fmt.Errorf("load target zone %q: %w", targetZone, err)
	}

	year, month, day := civilDate.Date()
	instant := time.Date(year, month, day, minutes/60, minutes%60, 0, 0, src)
	rendered := instant.In(dst)

	return Converted{
		Time:      rendered.Format("15:04"),
		DayOffset: civilDayDelta(civilDate, rendered),
	}, nil
}

// FixedOffsetConverter reproduces the legacy conversion: zone offsets are
// sampled once at a reference instant instead of being resolved for the
// date under conversion. Around DST transitions this is off by an hour for
// part of the year. Kept only for A/B comparison against LocationConverter.
type FixedOffsetConverter struct {
	// Reference supplies the instant at which offsets are sampled.
	// Defaults to time.Now.
	Reference func() time.Time
}

// ConvertCivilTime implements Converter.
func (c FixedOffsetConverter) ConvertCivilTime(timeOfDay, sourceZone, targetZone string, civilDate time.Time) (Converted, error) {
	minutes, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return Converted{}, err
	}
	src, err := time.LoadLocation(sourceZone)
	if err != nil {
		return Converted{}, fmt.Errorf("load source zone %q: %w", sourceZone, err)
	}
	dst, err := time.LoadLocation(targetZone)
	if err != nil {
		return Converted{}, fmt.Errorf("load target zone %q: %w", targetZone, err)
	}

	reference := time.Now()
	if c.Reference != nil {
		reference = c.Reference()
	}
	_, srcOffset := reference.In(src).Zone()
	_, dstOffset := reference.In(dst).Zone()

	total := minutes + (dstOffset-srcOffset)/60
	dayOffset := 0
	for total < 0 {
		total += minutesPerDay
		dayOffset--
	}
	for total >= minutesPerDay {
		total -= minutesPerDay
		dayOffset++
	}

	return Converted{Time: FormatTimeOfDay(total), DayOffset: dayOffset}, nil
}

// ValidZone reports whether name resolves in the IANA tz database.
func ValidZone(name string) bool {
	if name == "" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}

// civilDayDelta counts whole calendar days between the civil date of the
// input and the civil date the rendered instant falls on.
func civilDayDelta(from, rendered time.Time) int {
	fy, fm, fd := from.Date()
	ry, rm, rd := rendered.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
