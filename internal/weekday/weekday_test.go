package weekday

import (
	"testing"
	"time"
)

func TestRoundTripAllDays(t *testing.T) {
	t.Parallel()

	for d := 0; d <= 6; d++ {
		if got := JSToPython(PythonToJS(d)); got != d {
			t.Errorf("JSToPython(PythonToJS(%d)) = %d, want %d", d, got, d)
		}
		if got := PythonToJS(JSToPython(d)); got != d {
			t.Errorf("PythonToJS(JSToPython(%d)) = %d, want %d", d, got, d)
		}
	}
}

func TestKnownMappings(t *testing.T) {
	t.Parallel()

	// Monday is 0 in Python convention and 1 in JS convention.
	if got := PythonToJS(0); got != 1 {
		t.Errorf("PythonToJS(0) = %d, want 1", got)
	}
	// Sunday is 6 in Python convention and 0 in JS convention.
	if got := PythonToJS(6); got != 0 {
		t.Errorf("PythonToJS(6) = %d, want 0", got)
	}
	if got := JSToPython(0); got != 6 {
		t.Errorf("JSToPython(0) = %d, want 6", got)
	}
	if got := JSToPython(1); got != 0 {
		t.Errorf("JSToPython(1) = %d, want 0", got)
	}
}

func TestOutOfRangeReturnsInvalid(t *testing.T) {
	t.Parallel()

	for _, day := range []int{-1, 7, 42, -100} {
		if got := PythonToJS(day); got != Invalid {
			t.Errorf("PythonToJS(%d) = %d, want Invalid", day, got)
		}
		if got := JSToPython(day); got != Invalid {
			t.Errorf("JSToPython(%d) = %d, want Invalid", day, got)
		}
	}
}

func TestConvert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		day    int
		from   Convention
		want   Days
		wantOK bool
	}{
		{name: "python friday", day: 4, from: ConventionPython, want: Days{Python: 4, JS: 5}, wantOK: true},
		{name: "js friday", day: 5, from: ConventionJS, want: Days{Python: 4, JS: 5}, wantOK: true},
		{name: "python sunday", day: 6, from: ConventionPython, want: Days{Python: 6, JS: 0}, wantOK: true},
		{name: "out of range", day: 7, from: ConventionPython, want: Days{Python: Invalid, JS: Invalid}, wantOK: false},
		{name: "unknown convention", day: 2, from: Convention("ruby"), want: Days{Python: Invalid, JS: Invalid}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Convert(tt.day, tt.from)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Convert(%d, %q) = %+v, %v; want %+v, %v", tt.day, tt.from, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFromDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		date string
		want int
	}{
		{date: "2025-09-19", want: 4}, // Friday
		{date: "2025-09-21", want: 6}, // Sunday
		{date: "2025-09-22", want: 0}, // Monday
		{date: "2024-02-29", want: 3}, // leap day, Thursday
		{date: "2024-12-31", want: 1}, // Tuesday, year boundary
		{date: "2025-01-01", want: 2}, // Wednesday
		{date: "2000-02-29", want: 1}, // century leap day, Tuesday
	}

	for _, tt := range tests {
		parsed, err := time.Parse("2006-01-02", tt.date)
		if err != nil {
			t.Fatalf("parse %s: %v", tt.date, err)
		}
		if got := FromDate(parsed); got != tt.want {
			t.Errorf("FromDate(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}
}
