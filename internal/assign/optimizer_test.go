package assign

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/errors"
	"github.com/atelier-edu/reparto/internal/participant"
	"github.com/atelier-edu/reparto/internal/testutil"
	"github.com/atelier-edu/reparto/internal/textgen"
)

func optimizerItems() []activity.WorkItem {
	return []activity.WorkItem{
		testutil.Item("item-01", "Build the voting booth", 3, "creative"),
		testutil.Item("item-02", "Count the ballots", 4, "mathematics"),
		testutil.Item("item-03", "Announce the results", 2, "language"),
	}
}

func optimizerProfiles() []participant.Profile {
	return []participant.Profile{
		testutil.Profile("p-001", participant.NeurotypeTypical, 75, "creative"),
		testutil.Profile("p-002", participant.NeurotypeTypical, 75, "mathematics"),
	}
}

func TestDecodeProposal(t *testing.T) {
	want := map[string][]string{"p-001": {"item-01"}, "p-002": {"item-02"}}

	tests := []struct {
		name    string
		raw     string
		want    map[string][]string
		wantErr bool
	}{
		{
			name: "bare object",
			raw:  `{"assignments": {"p-001": ["item-01"], "p-002": ["item-02"]}}`,
			want: want,
		},
		{
			name: "wrapped in prose",
			raw:  "Here is my plan:\n{\"assignments\": {\"p-001\": [\"item-01\"], \"p-002\": [\"item-02\"]}}\nHope that helps!",
			want: want,
		},
		{
			name: "markdown fenced",
			raw:  "```json\n{\"assignments\": {\"p-001\": [\"item-01\"], \"p-002\": [\"item-02\"]}}\n```",
			want: want,
		},
		{
			name:    "no json at all",
			raw:     "I am unable to assign these items.",
			wantErr: true,
		},
		{
			name:    "malformed json",
			raw:     `{"assignments": {"p-001": [`,
			wantErr: true,
		},
		{
			name:    "empty assignments",
			raw:     `{"assignments": {}}`,
			wantErr: true,
		},
		{
			name:    "wrong key",
			raw:     `{"mapping": {"p-001": ["item-01"]}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeProposal(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("decodeProposal() = %v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeProposal() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decodeProposal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextOptimizer_Optimize(t *testing.T) {
	var prompt string
	calls := 0
	client := textgen.Func(func(_ context.Context, req textgen.Request) (string, error) {
		calls++
		prompt = req.Prompt
		return `{"assignments": {"p-001": ["item-01", "item-03"], "p-002": ["item-02"]}}`, nil
	})

	opt := NewTextOptimizer(client, 500, nil)
	got, err := opt.Optimize(context.Background(), optimizerItems(), optimizerProfiles())
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("client called %d times, want 1", calls)
	}
	if !strings.Contains(prompt, "Respond ONLY with this JSON object") {
		t.Errorf("prompt missing the JSON-only instruction:\n%s", prompt)
	}
	want := map[string][]string{"p-001": {"item-01", "item-03"}, "p-002": {"item-02"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Optimize() = %v, want %v", got, want)
	}
}

func TestTextOptimizer_NoClient(t *testing.T) {
	opt := NewTextOptimizer(nil, 0, nil)
	_, err := opt.Optimize(context.Background(), optimizerItems(), optimizerProfiles())
	if !errors.Is(err, errors.ErrOptimizerUnavailable) {
		t.Errorf("Optimize() error = %v, want ErrOptimizerUnavailable", err)
	}
}

func TestTextOptimizer_GenerationError(t *testing.T) {
	client := textgen.Func(func(_ context.Context, _ textgen.Request) (string, error) {
		return "", errors.New("service down")
	})

	opt := NewTextOptimizer(client, 0, nil)
	_, err := opt.Optimize(context.Background(), optimizerItems(), optimizerProfiles())
	if err == nil {
		t.Fatal("Optimize() error = nil, want generation failure")
	}
	var assignErr *errors.AssignmentError
	if !errors.As(err, &assignErr) {
		t.Errorf("Optimize() error = %T, want *AssignmentError", err)
	}
}

func TestEngine_Assign_OptimizerProposalAccepted(t *testing.T) {
	optimizer := OptimizerFunc(func(_ context.Context, _ []activity.WorkItem, _ []participant.Profile) (map[string][]string, error) {
		return map[string][]string{
			"p-001": {"item-01", "item-03"},
			"p-002": {"item-02"},
		}, nil
	})

	engine := NewEngine(Options{Optimizer: optimizer})
	record, err := engine.Assign(context.Background(), optimizerItems(), optimizerProfiles())
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	if record.Path != PathOptimizer {
		t.Errorf("Path = %q, want %q", record.Path, PathOptimizer)
	}
	first := record.Assignments["p-001"]
	if len(first) != 2 || first[0].ItemID != "item-01" || first[1].ItemID != "item-03" {
		t.Errorf("p-001 assignments = %v, want the proposed items in order", first)
	}
	if got := record.Load("p-002"); got != 1 {
		t.Errorf("p-002 load = %d, want 1", got)
	}
	for _, list := range record.Assignments {
		for _, a := range list {
			if a.Score <= 0 {
				t.Errorf("assignment %s carries score %v, want a computed score", a.ItemID, a.Score)
			}
		}
	}
}

func TestEngine_Assign_OptimizerForeignIDsRemapped(t *testing.T) {
	optimizer := OptimizerFunc(func(_ context.Context, _ []activity.WorkItem, _ []participant.Profile) (map[string][]string, error) {
		return map[string][]string{
			"p-001": {"task_1", "task_3"},
			"p-002": {"task_2"},
		}, nil
	})

	engine := NewEngine(Options{Optimizer: optimizer})
	record, err := engine.Assign(context.Background(), optimizerItems(), optimizerProfiles())
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	if record.Path != PathOptimizer {
		t.Errorf("Path = %q, want %q", record.Path, PathOptimizer)
	}
	first := record.Assignments["p-001"]
	if len(first) != 2 || first[0].ItemID != "item-01" || first[1].ItemID != "item-03" {
		t.Errorf("p-001 assignments = %v, want ordinal-remapped item-01 and item-03", first)
	}
	second := record.Assignments["p-002"]
	if len(second) != 1 || second[0].ItemID != "item-02" {
		t.Errorf("p-002 assignments = %v, want ordinal-remapped item-02", second)
	}
}

func TestEngine_Assign_OptimizerUnknownParticipantDropped(t *testing.T) {
	optimizer := OptimizerFunc(func(_ context.Context, _ []activity.WorkItem, _ []participant.Profile) (map[string][]string, error) {
		return map[string][]string{
			"p-001": {"item-01"},
			"p-999": {"item-02", "item-03"},
		}, nil
	})

	engine := NewEngine(Options{Optimizer: optimizer})
	record, err := engine.Assign(context.Background(), optimizerItems(), optimizerProfiles())
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	if _, ok := record.Assignments["p-999"]; ok {
		t.Error("record contains the unknown participant p-999")
	}
	if record.Path != PathOptimizer {
		t.Errorf("Path = %q, want %q (drop is not abandonment)", record.Path, PathOptimizer)
	}
	if got := record.TotalAssigned(); got != 3 {
		t.Errorf("TotalAssigned() = %d, want 3 (orphaned items redistributed)", got)
	}
}

func TestEngine_Assign_OptimizerCountMismatchFallsBack(t *testing.T) {
	optimizer := OptimizerFunc(func(_ context.Context, _ []activity.WorkItem, _ []participant.Profile) (map[string][]string, error) {
		return map[string][]string{
			"p-001": {"task_1"},
			"p-002": {"task_2"},
		}, nil
	})

	engine := NewEngine(Options{Optimizer: optimizer})
	record, err := engine.Assign(context.Background(), optimizerItems(), optimizerProfiles())
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	if record.Path != PathGreedy {
		t.Errorf("Path = %q, want %q (two foreign ids cannot map onto three items)", record.Path, PathGreedy)
	}
	if got := record.TotalAssigned(); got != 3 {
		t.Errorf("TotalAssigned() = %d, want 3", got)
	}
}

func TestEngine_Assign_OptimizerErrorFallsBack(t *testing.T) {
	optimizer := OptimizerFunc(func(_ context.Context, _ []activity.WorkItem, _ []participant.Profile) (map[string][]string, error) {
		return nil, errors.New("optimizer exploded")
	})

	engine := NewEngine(Options{Optimizer: optimizer})
	record, err := engine.Assign(context.Background(), optimizerItems(), optimizerProfiles())
	if err != nil {
		t.Fatalf("Assign() error = %v, want fallback instead", err)
	}
	if record.Path != PathGreedy {
		t.Errorf("Path = %q, want %q", record.Path, PathGreedy)
	}
	if got := record.TotalAssigned(); got != 3 {
		t.Errorf("TotalAssigned() = %d, want 3", got)
	}
}

func TestEngine_Assign_OptimizerDuplicateItemKeptOnce(t *testing.T) {
	optimizer := OptimizerFunc(func(_ context.Context, _ []activity.WorkItem, _ []participant.Profile) (map[string][]string, error) {
		return map[string][]string{
			"p-001": {"item-01"},
			"p-002": {"item-01", "item-02"},
		}, nil
	})

	engine := NewEngine(Options{Optimizer: optimizer})
	record, err := engine.Assign(context.Background(), optimizerItems(), optimizerProfiles())
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	counts := itemCounts(record)
	if counts["item-01"] != 1 {
		t.Errorf("item-01 assigned %d times, want 1", counts["item-01"])
	}
	if got := record.TotalAssigned(); got != 3 {
		t.Errorf("TotalAssigned() = %d, want 3 (the leftover item is placed too)", got)
	}
}

func TestEngine_Assign_OptimizerOmissionsCompleted(t *testing.T) {
	optimizer := OptimizerFunc(func(_ context.Context, _ []activity.WorkItem, _ []participant.Profile) (map[string][]string, error) {
		return map[string][]string{"p-001": {"item-02"}}, nil
	})

	engine := NewEngine(Options{Optimizer: optimizer})
	record, err := engine.Assign(context.Background(), optimizerItems(), optimizerProfiles())
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	if record.Path != PathOptimizer {
		t.Errorf("Path = %q, want %q", record.Path, PathOptimizer)
	}
	if got := record.TotalAssigned(); got != 3 {
		t.Errorf("TotalAssigned() = %d, want 3", got)
	}
	for id, n := range itemCounts(record) {
		if n != 1 {
			t.Errorf("item %s assigned %d times, want 1", id, n)
		}
	}
}
