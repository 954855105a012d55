package parse

import (
	"context"
	"reflect"
	"testing"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/errors"
)

const wellFormedResponse = `ITEM 1:
Description: Set up the measuring stations around the room
Competencies: organizational
Complexity: 2
Type: group
Duration: 20
Dependencies: none

ITEM 2:
Description: Measure each plant and record the heights
Competencies: [Mathematics, Science]
Complexity: 3
Type: pair
Duration: 1 hour
Dependencies: ITEM 1

ITEM 3:
Description: Compare the results and draw a class graph
Competencies: mathematics
Complexity: 4
Type: group
Duration: 30
Dependencies: ITEM 1, ITEM 2
`

func TestStrictStrategy_Attempt(t *testing.T) {
	s := NewStrictStrategy()

	items, err := s.Attempt(context.Background(), wellFormedResponse, Hints{})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Attempt() returned %d items, want 3", len(items))
	}

	first := items[0]
	if first.ID != "item-01" {
		t.Errorf("items[0].ID = %q, want item-01", first.ID)
	}
	if first.Description != "Set up the measuring stations around the room" {
		t.Errorf("items[0].Description = %q", first.Description)
	}
	if !reflect.DeepEqual(first.Competencies, []string{"organizational"}) {
		t.Errorf("items[0].Competencies = %v", first.Competencies)
	}
	if first.Complexity != 2 {
		t.Errorf("items[0].Complexity = %d, want 2", first.Complexity)
	}
	if first.Mode != activity.ModeGroup {
		t.Errorf("items[0].Mode = %q, want group", first.Mode)
	}
	if first.DurationMinutes != 20 {
		t.Errorf("items[0].DurationMinutes = %d, want 20", first.DurationMinutes)
	}
	if len(first.DependsOn) != 0 {
		t.Errorf("items[0].DependsOn = %v, want empty", first.DependsOn)
	}

	second := items[1]
	if !reflect.DeepEqual(second.Competencies, []string{"mathematics", "science"}) {
		t.Errorf("items[1].Competencies = %v", second.Competencies)
	}
	if second.DurationMinutes != 60 {
		t.Errorf("items[1].DurationMinutes = %d, want 60 (1 hour)", second.DurationMinutes)
	}
	if !reflect.DeepEqual(second.DependsOn, []string{"item-01"}) {
		t.Errorf("items[1].DependsOn = %v, want [item-01]", second.DependsOn)
	}

	third := items[2]
	if !reflect.DeepEqual(third.DependsOn, []string{"item-01", "item-02"}) {
		t.Errorf("items[2].DependsOn = %v, want [item-01 item-02]", third.DependsOn)
	}
}

func TestStrictStrategy_BoldMarkers(t *testing.T) {
	raw := "**ITEM 1:**\n**Description:** Paint the backdrop\n**Complexity:** 3\n"

	items, err := NewStrictStrategy().Attempt(context.Background(), raw, Hints{})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Attempt() returned %d items, want 1", len(items))
	}
	if items[0].Description != "Paint the backdrop" {
		t.Errorf("Description = %q, want %q", items[0].Description, "Paint the backdrop")
	}
	if items[0].Complexity != 3 {
		t.Errorf("Complexity = %d, want 3", items[0].Complexity)
	}
}

func TestStrictStrategy_InlineDescription(t *testing.T) {
	raw := "ITEM 1: Prepare the play money\nComplexity: 2\n\nITEM 2: Run the market stalls\nComplexity: 4\n"

	items, err := NewStrictStrategy().Attempt(context.Background(), raw, Hints{})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Attempt() returned %d items, want 2", len(items))
	}
	if items[0].Description != "Prepare the play money" {
		t.Errorf("items[0].Description = %q", items[0].Description)
	}
	if items[1].Description != "Run the market stalls" {
		t.Errorf("items[1].Description = %q", items[1].Description)
	}
}

func TestStrictStrategy_ForwardDependencies(t *testing.T) {
	raw := `ITEM 1:
Description: Rehearse the final presentation
Dependencies: ITEM 2

ITEM 2:
Description: Write the script
Dependencies: none
`
	items, err := NewStrictStrategy().Attempt(context.Background(), raw, Hints{})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if !reflect.DeepEqual(items[0].DependsOn, []string{"item-02"}) {
		t.Errorf("items[0].DependsOn = %v, want [item-02] (forward reference)", items[0].DependsOn)
	}
}

func TestStrictStrategy_SkipsUndescribedBlocks(t *testing.T) {
	raw := "ITEM 1:\nComplexity: 3\n\nITEM 2:\nDescription: The only real item\n"

	items, err := NewStrictStrategy().Attempt(context.Background(), raw, Hints{})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Attempt() returned %d items, want 1 (undescribed block dropped)", len(items))
	}
	if items[0].ID != "item-01" {
		t.Errorf("surviving item ID = %q, want item-01 (ids stay sequential)", items[0].ID)
	}
}

func TestStrictStrategy_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"prose", "The class could plant a garden and watch it grow over the term."},
		{"gibberish", "asdf qwer"},
		{"empty", ""},
		{"headers without descriptions", "ITEM 1:\nComplexity: 3\n"},
	}
	s := NewStrictStrategy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Attempt(context.Background(), tt.raw, Hints{}); err == nil {
				t.Error("Attempt() succeeded, want error")
			}
		})
	}
}

func TestStrictStrategy_Metadata(t *testing.T) {
	s := NewStrictStrategy()
	if s.Name() != "strict" {
		t.Errorf("Name() = %q, want strict", s.Name())
	}
	if s.Confidence() != ConfidenceHigh {
		t.Errorf("Confidence() = %q, want high", s.Confidence())
	}

	_, err := s.Attempt(context.Background(), "no structure here", Hints{})
	if !errors.Is(err, errors.ErrNoItems) {
		t.Errorf("Attempt() error = %v, want ErrNoItems", err)
	}
}
