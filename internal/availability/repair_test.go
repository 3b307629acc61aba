package availability

import (
	"testing"
	"time"

	"github.com/example/tutoring-scheduler/internal/weekday"
)

func TestRepairDayOfWeek(t *testing.T) {
	t.Parallel()

	friday, err := time.Parse("2006-01-02", "2025-09-19")
	if err != nil {
		t.Fatal(err)
	}

	records := []Normalized{
		{ID: "wrong", DayOfWeekPython: 5, SpecificDate: &friday},
		{ID: "right", DayOfWeekPython: 4, SpecificDate: &friday},
		{ID: "recurring", DayOfWeekPython: 4},
		{ID: "unset", DayOfWeekPython: weekday.Invalid, SpecificDate: &friday},
	}

	results := RepairDayOfWeek(records)
	if len(results) != len(records) {
		t.Fatalf("results = %d, want %d", len(results), len(records))
	}

	byID := make(map[string]RepairResult, len(results))
	for _, result := range results {
		byID[result.RecordID] = result
	}

	if got := byID["wrong"]; got.Action != RepairRecomputed || got.NewPython != 4 {
		t.Errorf("wrong row: %+v", got)
	}
	if got := byID["right"]; got.Action != RepairUnchanged || got.NewPython != 4 {
		t.Errorf("right row: %+v", got)
	}
	if got := byID["recurring"]; got.Action != RepairNeedsReview || got.NewPython != 4 {
		t.Errorf("recurring row must be left for review: %+v", got)
	}
	if got := byID["unset"]; got.Action != RepairRecomputed || got.NewPython != 4 {
		t.Errorf("unset row: %+v", got)
	}
}

func TestRepairEmptyInput(t *testing.T) {
	t.Parallel()

	if results := RepairDayOfWeek(nil); len(results) != 0 {
		t.Errorf("expected empty report, got %+v", results)
	}
}
