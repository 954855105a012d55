package render

import (
	"strings"
	"testing"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/assign"
	"github.com/atelier-edu/reparto/internal/consensus"
	"github.com/atelier-edu/reparto/internal/parse"
	"github.com/atelier-edu/reparto/internal/participant"
	"github.com/atelier-edu/reparto/internal/pipeline"
)

func sampleItems() []activity.WorkItem {
	return []activity.WorkItem{
		{
			ID:              "item-01",
			Description:     "Research harvest traditions",
			Competencies:    []string{"research"},
			Complexity:      5,
			Mode:            activity.ModeIndividual,
			DurationMinutes: 45,
			Stage:           activity.StagePreparation,
		},
		{
			ID:              "item-02",
			Description:     "Build the display stand",
			Competencies:    []string{"crafts"},
			Complexity:      3,
			Mode:            activity.ModePair,
			DurationMinutes: 30,
			DependsOn:       []string{"item-01"},
			Stage:           activity.StageExecution,
		},
	}
}

func sampleProfiles() []participant.Profile {
	return []participant.Profile{
		{ID: "p1", Name: "Ana", Neurotype: participant.NeurotypeTypical, Availability: 90, Strengths: []string{"research"}},
		{ID: "p2", Name: "Bo", Neurotype: participant.NeurotypeADHD, Availability: 60, SupportNeeds: []string{"frequent_breaks"}},
	}
}

func sampleRecord() *assign.Record {
	return &assign.Record{
		Assignments: map[string][]assign.Assignment{
			"p1": {
				{ItemID: "item-01", Score: 0.75, Rationale: "strength match on research"},
				{ItemID: "item-02", Score: 0.5, Rationale: "balanced load"},
			},
			"p2": {},
		},
		Path: assign.PathGreedy,
	}
}

func TestItemsTable(t *testing.T) {
	out := ItemsTable(sampleItems())

	for _, want := range []string{"item-01", "item-02", "Research harvest traditions", "individual", "preparation"} {
		if !strings.Contains(out, want) {
			t.Errorf("ItemsTable output missing %q:\n%s", want, out)
		}
	}
	// The dependency column names the prerequisite.
	if !strings.Contains(out, "item-01") {
		t.Errorf("ItemsTable output missing dependency reference:\n%s", out)
	}
}

func TestItemsTable_Empty(t *testing.T) {
	out := ItemsTable(nil)
	if !strings.Contains(out, "no work items") {
		t.Errorf("ItemsTable(nil) = %q, want placeholder", out)
	}
}

func TestRosterTable(t *testing.T) {
	out := RosterTable(sampleProfiles())

	for _, want := range []string{"p1", "Ana", "typical", "90%", "p2", "Bo", "adhd", "60%", "frequent_breaks"} {
		if !strings.Contains(out, want) {
			t.Errorf("RosterTable output missing %q:\n%s", want, out)
		}
	}
}

func TestRosterTable_Empty(t *testing.T) {
	out := RosterTable(nil)
	if !strings.Contains(out, "no participants") {
		t.Errorf("RosterTable(nil) = %q, want placeholder", out)
	}
}

func TestRecordTable(t *testing.T) {
	out := RecordTable(sampleRecord(), sampleProfiles())

	for _, want := range []string{"Ana (p1)", "item-01", "0.75", "strength match on research", "path: greedy"} {
		if !strings.Contains(out, want) {
			t.Errorf("RecordTable output missing %q:\n%s", want, out)
		}
	}
	// p2 is in the record with no items and still gets a row.
	if !strings.Contains(out, "no items this round") {
		t.Errorf("RecordTable output missing unassigned placeholder:\n%s", out)
	}
	if strings.Contains(out, "rebalanced") {
		t.Errorf("RecordTable mentions rebalancing without BackFilled:\n%s", out)
	}
}

func TestRecordTable_BackFilled(t *testing.T) {
	rec := sampleRecord()
	rec.BackFilled = true

	out := RecordTable(rec, sampleProfiles())
	if !strings.Contains(out, "rebalanced for capacity") {
		t.Errorf("RecordTable output missing rebalance note:\n%s", out)
	}
}

func TestRecordTable_UnknownParticipant(t *testing.T) {
	rec := &assign.Record{
		Assignments: map[string][]assign.Assignment{
			"p9": {{ItemID: "item-01", Score: 0.5, Rationale: "default"}},
		},
		Path: assign.PathOptimizer,
	}

	// A participant absent from the roster renders as a bare id.
	out := RecordTable(rec, sampleProfiles())
	if !strings.Contains(out, "p9") {
		t.Errorf("RecordTable output missing bare participant id:\n%s", out)
	}
	if !strings.Contains(out, "path: optimizer") {
		t.Errorf("RecordTable output missing path:\n%s", out)
	}
}

func TestRecordTable_Empty(t *testing.T) {
	if out := RecordTable(nil, nil); !strings.Contains(out, "no assignments") {
		t.Errorf("RecordTable(nil) = %q, want placeholder", out)
	}
	if out := RecordTable(assign.NewRecord(assign.PathGreedy), nil); !strings.Contains(out, "no assignments") {
		t.Errorf("RecordTable(empty) = %q, want placeholder", out)
	}
}

func TestDecisionSummary(t *testing.T) {
	d := &consensus.Decision{
		Type:                   consensus.DecisionConsensus,
		State:                  consensus.StateDecided,
		Structure:              "three stations in sequence",
		AdaptationRequirements: "add a visual schedule",
		Score:                  0.81,
		Rationale:              "all proposers approved",
	}

	out := DecisionSummary(d)
	for _, want := range []string{"CONSENSUS", "score 0.81", "three stations in sequence", "add a visual schedule", "all proposers approved"} {
		if !strings.Contains(out, want) {
			t.Errorf("DecisionSummary output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Feasibility") {
		t.Errorf("DecisionSummary renders an empty feasibility section:\n%s", out)
	}
}

func TestDecisionSummary_Fallback(t *testing.T) {
	d := &consensus.Decision{
		Type:            consensus.DecisionFallback,
		State:           consensus.StateFallback,
		Structure:       "keep the structural proposal",
		Score:           0.5,
		Rationale:       "kept best available proposal",
		FailedProposers: []string{"feasibility"},
	}

	out := DecisionSummary(d)
	for _, want := range []string{"FALLBACK", "failed proposers: feasibility"} {
		if !strings.Contains(out, want) {
			t.Errorf("DecisionSummary output missing %q:\n%s", want, out)
		}
	}
}

func TestDecisionSummary_Nil(t *testing.T) {
	if out := DecisionSummary(nil); !strings.Contains(out, "no deliberation") {
		t.Errorf("DecisionSummary(nil) = %q, want placeholder", out)
	}
}

func TestValidationReport(t *testing.T) {
	v := activity.ValidateBatch([]activity.WorkItem{
		{ID: "item-01", Description: "Paint", Complexity: 3, Mode: activity.ModeGroup, DurationMinutes: 30, DependsOn: []string{"item-01"}},
	})
	if !v.HasErrors() {
		t.Fatal("fixture should produce a self-dependency error")
	}

	out := ValidationReport(v)
	if !strings.Contains(out, "✗") {
		t.Errorf("ValidationReport output missing error icon:\n%s", out)
	}
	if !strings.Contains(out, "[item-01]") {
		t.Errorf("ValidationReport output missing item reference:\n%s", out)
	}
	if !strings.Contains(out, "error(s)") {
		t.Errorf("ValidationReport output missing count line:\n%s", out)
	}
}

func TestValidationReport_Clean(t *testing.T) {
	if out := ValidationReport(nil); !strings.Contains(out, "clean") {
		t.Errorf("ValidationReport(nil) = %q, want clean marker", out)
	}
}

func TestCoherenceLine(t *testing.T) {
	valid := pipeline.Coherence{Score: 1}
	if out := CoherenceLine(valid); !strings.Contains(out, "coherence 1.00") {
		t.Errorf("CoherenceLine(valid) = %q", out)
	}

	broken := pipeline.Coherence{Score: 0.2, Issues: []string{"batch has no work items"}}
	out := CoherenceLine(broken)
	if !strings.Contains(out, "coherence 0.20") {
		t.Errorf("CoherenceLine output missing score:\n%s", out)
	}
	if !strings.Contains(out, "batch has no work items") {
		t.Errorf("CoherenceLine output missing issue:\n%s", out)
	}
}

func TestResultSummary(t *testing.T) {
	res := &pipeline.Result{
		RequestID:       "req-1234",
		Items:           sampleItems(),
		Record:          sampleRecord(),
		ParseStrategy:   "strict",
		ParseConfidence: parse.ConfidenceHigh,
		AssignmentPath:  assign.PathGreedy,
		Coherence:       pipeline.Coherence{Score: 1},
	}

	out := ResultSummary(res, sampleProfiles())
	for _, want := range []string{
		"Assignment result",
		"request req-1234",
		"parsed via strict",
		"Work items",
		"item-01",
		"Assignments",
		"Ana (p1)",
		"coherence 1.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ResultSummary output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "degraded") {
		t.Errorf("ResultSummary flags a high-confidence parse as degraded:\n%s", out)
	}
	if strings.Contains(out, "Deliberation") {
		t.Errorf("ResultSummary renders a deliberation section without a decision:\n%s", out)
	}
}

func TestResultSummary_Degraded(t *testing.T) {
	res := &pipeline.Result{
		RequestID:       "req-5678",
		Items:           sampleItems(),
		Record:          sampleRecord(),
		ParseStrategy:   "fallback",
		ParseConfidence: parse.ConfidenceFallback,
		AssignmentPath:  assign.PathGreedy,
		Coherence:       pipeline.Coherence{Score: 1},
	}

	out := ResultSummary(res, sampleProfiles())
	if !strings.Contains(out, "parse degraded") {
		t.Errorf("ResultSummary output missing degraded warning:\n%s", out)
	}
}
