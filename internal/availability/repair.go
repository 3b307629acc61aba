package availability

import (
	"github.com/example/tutoring-scheduler/internal/weekday"
)

// RepairAction describes the outcome of the weekday repair pass for one row.
type RepairAction string

const (
	// RepairRecomputed means the canonical weekday was derived from the
	// row's date anchor and differs from the stored value.
	RepairRecomputed RepairAction = "recomputed"
	// RepairUnchanged means the stored weekday already matches the anchor.
	RepairUnchanged RepairAction = "unchanged"
	// RepairNeedsReview means the row has no date anchor, so the stored
	// weekday cannot be verified mechanically and requires manual
	// confirmation.
	RepairNeedsReview RepairAction = "needs_review"
)

// RepairResult is one row's entry in the repair report.
type RepairResult struct {
	RecordID  string
	Action    RepairAction
	OldPython int
	NewPython int
}

// RepairDayOfWeek is the one-time data-repair pass for rows whose weekday
// integers may have been written in the wrong convention. Rows carrying a
// specific date get their weekday recomputed from the calendar; recurring
// rows have no date anchor and are flagged for manual confirmation instead.
//
// The pass only reports; persisting the recomputed values is an explicit
// operator action, never automatic.
func RepairDayOfWeek(records []Normalized) []RepairResult {
	out := make([]RepairResult, 0, len(records))
	for _, record := range records {
		result := RepairResult{
			RecordID:  record.ID,
			OldPython: record.DayOfWeekPython,
			NewPython: record.DayOfWeekPython,
		}
		if record.SpecificDate == nil {
			result.Action = RepairNeedsReview
			out = append(out, result)
			continue
		}
		derived := weekday.FromDate(*record.SpecificDate)
		result.NewPython = derived
		if derived == record.DayOfWeekPython {
			result.Action = RepairUnchanged
		} else {
			result.Action = RepairRecomputed
		}
		out = append(out, result)
	}
	return out
}
