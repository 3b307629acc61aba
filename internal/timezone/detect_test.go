package timezone

import (
	"testing"
	"time"
)

func TestDetectorRespectsExplicitTag(t *testing.T) {
	t.Parallel()

	detector := NewDetector(WorkingHours{}, nil)
	date := time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)

	got := detector.Detect(Record{StartTime: "03:00", TimeZone: "America/Chicago", Format: FormatLocal}, date)
	if got != FormatLocal {
		t.Errorf("got %s, want local (explicit tag wins over heuristic)", got)
	}

	got = detector.Detect(Record{StartTime: "17:00", TimeZone: "America/Chicago", Format: FormatUTC}, date)
	if got != FormatUTC {
		t.Errorf("got %s, want utc (explicit tag wins over heuristic)", got)
	}
}

func TestDetectorHeuristic(t *testing.T) {
	t.Parallel()

	detector := NewDetector(WorkingHours{}, nil)
	date := time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rec  Record
		want StorageFormat
	}{
		{
			name: "working hours time reads as local",
			rec:  Record{StartTime: "17:00", TimeZone: "America/Chicago"},
			want: FormatLocal,
		},
		{
			name: "window boundaries are inclusive",
			rec:  Record{StartTime: "08:00", TimeZone: "America/Chicago"},
			want: FormatLocal,
		},
		{
			name: "early UTC time renders into working hours",
			// 02:00 UTC is 21:00 the previous day in Chicago (CDT).
			rec:  Record{StartTime: "02:00", TimeZone: "America/Chicago"},
			want: FormatUTC,
		},
		{
			name: "implausible under both interpretations",
			rec:  Record{StartTime: "05:00", TimeZone: "UTC"},
			want: FormatUnknown,
		},
		{
			name: "unparseable time",
			rec:  Record{StartTime: "half past nine", TimeZone: "America/Chicago"},
			want: FormatUnknown,
		},
		{
			name: "off-hours time without a zone",
			rec:  Record{StartTime: "02:00"},
			want: FormatUnknown,
		},
		{
			name: "off-hours time with a bad zone",
			rec:  Record{StartTime: "02:00", TimeZone: "Not/AZone"},
			want: FormatUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := detector.Detect(tt.rec, date); got != tt.want {
				t.Errorf("Detect(%+v) = %s, want %s", tt.rec, got, tt.want)
			}
		})
	}
}

func TestDetectorCustomWindow(t *testing.T) {
	t.Parallel()

	detector := NewDetector(WorkingHours{StartMinute: 9 * 60, EndMinute: 17 * 60}, nil)
	date := time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)

	if got := detector.Detect(Record{StartTime: "18:00", TimeZone: "UTC"}, date); got == FormatLocal {
		t.Errorf("18:00 should fall outside a 09:00-17:00 window, got %s", got)
	}
	if got := detector.Detect(Record{StartTime: "17:00", TimeZone: "UTC"}, date); got != FormatLocal {
		t.Errorf("17:00 should be inside a 09:00-17:00 window, got %s", got)
	}
}
