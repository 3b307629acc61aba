package availability

import (
	"testing"

	"github.com/example/tutoring-scheduler/internal/weekday"
)

func validRaw(id string, day int) map[string]any {
	return map[string]any{
		"id":                    id,
		"tutor_id":              "tutor-1",
		"day_of_week":           day,
		"start_time":            "17:00",
		"end_time":              "18:00",
		"time_zone":             "America/Chicago",
		"recurrence_start_date": "2025-09-01",
	}
}

func TestNormalizeSnakeCasePython(t *testing.T) {
	t.Parallel()

	raw := validRaw("rec-1", 4)
	n := Normalize(raw, weekday.ConventionPython)
	if !n.Valid() {
		t.Fatalf("unexpected issues: %+v", n.Issues)
	}
	if n.DayOfWeekPython != 4 || n.DayOfWeekJS != 5 {
		t.Errorf("weekdays = python %d / js %d, want 4 / 5", n.DayOfWeekPython, n.DayOfWeekJS)
	}
	if n.StartTime != "17:00" || n.TimeZone != "America/Chicago" {
		t.Errorf("fields not carried: %+v", n)
	}
	if !n.Available {
		t.Error("available must default to true")
	}
	if n.StartDate == nil || n.StartDate.Format("2006-01-02") != "2025-09-01" {
		t.Errorf("start date = %v", n.StartDate)
	}
}

func TestNormalizeCamelCaseJS(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"id":        "rec-1",
		"tutorId":   "tutor-1",
		"dayOfWeek": 5, // Friday in the Sunday=0 numbering
		"startTime": "17:00",
		"endTime":   "18:00",
		"timeZone":  "America/Chicago",
	}
	n := Normalize(raw, weekday.ConventionJS)
	if !n.Valid() {
		t.Fatalf("unexpected issues: %+v", n.Issues)
	}
	if n.DayOfWeekPython != 4 || n.DayOfWeekJS != 5 {
		t.Errorf("weekdays = python %d / js %d, want 4 / 5", n.DayOfWeekPython, n.DayOfWeekJS)
	}
}

func TestNormalizeFlagsOutOfRangeWeekday(t *testing.T) {
	t.Parallel()

	raw := validRaw("rec-1", 7)
	n := Normalize(raw, weekday.ConventionPython)
	if n.Valid() {
		t.Fatal("expected a flagged record")
	}
	if n.DayOfWeekPython != weekday.Invalid || n.DayOfWeekJS != weekday.Invalid {
		t.Errorf("weekdays must stay Invalid, got python %d / js %d", n.DayOfWeekPython, n.DayOfWeekJS)
	}
}

func TestNormalizeFlagsWithoutAborting(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		raw   map[string]any
		field string
	}{
		{"nil record", nil, "record"},
		{"missing tutor", map[string]any{"day_of_week": 1}, "tutor_id"},
		{"bad time", func() map[string]any {
			raw := validRaw("rec-1", 1)
			raw["start_time"] = "25:00"
			return raw
		}(), "start_time"},
		{"bad zone", func() map[string]any {
			raw := validRaw("rec-1", 1)
			raw["time_zone"] = "Mars/Olympus"
			return raw
		}(), "time_zone"},
		{"bad date", func() map[string]any {
			raw := validRaw("rec-1", 1)
			raw["recurrence_start_date"] = "09/01/2025"
			return raw
		}(), "recurrence_start_date"},
		{"bad format tag", func() map[string]any {
			raw := validRaw("rec-1", 1)
			raw["timezone_storage_format"] = "zulu"
			return raw
		}(), "timezone_storage_format"},
		{"fractional weekday", func() map[string]any {
			raw := validRaw("rec-1", 1)
			raw["day_of_week"] = 1.5
			return raw
		}(), "day_of_week"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := Normalize(tc.raw, weekday.ConventionPython)
			if n.Valid() {
				t.Fatal("expected a flagged record")
			}
			found := false
			for _, issue := range n.Issues {
				if issue.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no issue on %s, got %+v", tc.field, n.Issues)
			}
		})
	}
}

func TestNormalizeUnknownConvention(t *testing.T) {
	t.Parallel()

	n := Normalize(validRaw("rec-1", 1), weekday.Convention("ruby"))
	if n.Valid() {
		t.Fatal("expected a flagged record")
	}
}

func TestNormalizeBatchIsolatesBadRecord(t *testing.T) {
	t.Parallel()

	raws := make([]map[string]any, 0, 10)
	for i := 0; i < 9; i++ {
		raws = append(raws, validRaw("rec-"+string(rune('a'+i)), i%7))
	}
	bad := validRaw("rec-bad", 9)
	raws = append(raws, bad)

	normalized := NormalizeBatch(raws, weekday.ConventionPython)
	if len(normalized) != 10 {
		t.Fatalf("batch size = %d, want one record per input", len(normalized))
	}

	clean, flagged := 0, 0
	for _, n := range normalized {
		if n.Valid() {
			clean++
		} else {
			flagged++
			if n.ID != "rec-bad" {
				t.Errorf("wrong record flagged: %s", n.ID)
			}
		}
	}
	if clean != 9 || flagged != 1 {
		t.Errorf("clean = %d, flagged = %d, want 9 and 1", clean, flagged)
	}
}

func TestNormalizeRecurrenceDaysConverted(t *testing.T) {
	t.Parallel()

	raw := validRaw("rec-1", 1)
	raw["recurrence_days"] = []any{1, 3, 5} // Mon, Wed, Fri in Sunday=0 numbering
	n := Normalize(raw, weekday.ConventionJS)
	if !n.Valid() {
		t.Fatalf("unexpected issues: %+v", n.Issues)
	}
	want := []int{0, 2, 4}
	if len(n.RecurrenceDays) != len(want) {
		t.Fatalf("recurrence days = %v, want %v", n.RecurrenceDays, want)
	}
	for i := range want {
		if n.RecurrenceDays[i] != want[i] {
			t.Errorf("day %d = %d, want %d", i, n.RecurrenceDays[i], want[i])
		}
	}
}

func TestNormalizedPayloadEmitsBothNamings(t *testing.T) {
	t.Parallel()

	n := Normalize(validRaw("rec-1", 4), weekday.ConventionPython)
	payload := n.Payload()

	pairs := [][2]string{
		{"tutor_id", "tutorId"},
		{"day_of_week_python", "dayOfWeekPython"},
		{"day_of_week_js", "dayOfWeekJs"},
		{"start_time", "startTime"},
		{"time_zone", "timeZone"},
		{"recurrence_start_date", "recurrenceStartDate"},
	}
	for _, pair := range pairs {
		snake, ok := payload[pair[0]]
		if !ok {
			t.Errorf("payload missing %s", pair[0])
			continue
		}
		camel, ok := payload[pair[1]]
		if !ok {
			t.Errorf("payload missing %s", pair[1])
			continue
		}
		if snake != camel && pair[0] != "recurrence_days" {
			t.Errorf("%s = %v but %s = %v", pair[0], snake, pair[1], camel)
		}
	}
	if payload["day_of_week_python"] != 4 || payload["day_of_week_js"] != 5 {
		t.Errorf("weekday payload = %v / %v", payload["day_of_week_python"], payload["day_of_week_js"])
	}
}

func TestNormalizedPatternAndSpecificSplit(t *testing.T) {
	t.Parallel()

	recurring := Normalize(validRaw("rec-1", 4), weekday.ConventionPython)
	if _, ok := recurring.Pattern(); !ok {
		t.Error("recurring record must convert to a pattern")
	}
	if _, ok := recurring.Specific(); ok {
		t.Error("recurring record must not convert to a specific date")
	}

	raw := validRaw("spec-1", 4)
	raw["specific_date"] = "2025-09-19"
	specific := Normalize(raw, weekday.ConventionPython)
	if _, ok := specific.Specific(); !ok {
		t.Error("dated record must convert to a specific date")
	}
	if _, ok := specific.Pattern(); ok {
		t.Error("dated record must not convert to a pattern")
	}
}
