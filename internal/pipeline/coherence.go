package pipeline

import (
	"fmt"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/assign"
	"github.com/atelier-edu/reparto/internal/util"
)

// CoherenceThreshold is the score above which a result is presentable
// without a warning.
const CoherenceThreshold = 0.6

// Deductions taken per issue class.
const (
	deductNoItems         = 0.4
	deductNoAssignments   = 0.4
	deductNoProfiles      = 0.3
	deductUnassignedItem  = 0.1
	deductIdleParticipant = 0.05
)

// Coherence is the closing sanity check over an assembled result. The
// score starts at 1.0 and takes a fixed deduction for every issue found;
// issues are kept in the order discovered so callers can list them.
type Coherence struct {
	// Score is what remains after deductions, clamped to [0, 1].
	Score float64 `json:"score"`

	// Issues lists each deduction taken.
	Issues []string `json:"issues,omitempty"`
}

// Valid reports whether the result scored above CoherenceThreshold.
func (c Coherence) Valid() bool {
	return c.Score > CoherenceThreshold
}

// checkCoherence scores an assembled result against what a complete run
// should produce: a non-empty batch, a roster to assign across, and a
// record that covers every item. Idle participants only count against the
// result when there were enough items to cover everyone.
func checkCoherence(items []activity.WorkItem, record *assign.Record, profileCount int) Coherence {
	c := Coherence{Score: 1.0}
	flag := func(deduction float64, format string, args ...any) {
		c.Score -= deduction
		c.Issues = append(c.Issues, fmt.Sprintf(format, args...))
	}

	if len(items) == 0 {
		flag(deductNoItems, "batch has no work items")
	}
	if profileCount == 0 {
		flag(deductNoProfiles, "no participant profiles available")
	}

	if record == nil || record.TotalAssigned() == 0 {
		flag(deductNoAssignments, "no items were assigned")
	} else {
		for _, item := range items {
			if !record.Contains(item.ID) {
				flag(deductUnassignedItem, "item %s was never assigned", item.ID)
			}
		}
		if profileCount <= len(items) {
			for _, id := range record.ParticipantIDs() {
				if record.Load(id) == 0 {
					flag(deductIdleParticipant, "participant %s received no items", id)
				}
			}
		}
	}

	c.Score = util.Clamp01(c.Score)
	return c
}
