package parse

import (
	"reflect"
	"testing"

	"github.com/atelier-edu/reparto/internal/activity"
)

func TestMatchField(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantField string
		wantValue string
		wantOK    bool
	}{
		{"plain", "Description: Build a poster", "description", "Build a poster", true},
		{"lowercase", "complexity: 4", "complexity", "4", true},
		{"bold label", "**Duration:** 30 minutes", "duration", "30 minutes", true},
		{"bulleted field", "- Type: group", "type", "group", true},
		{"alias time", "Time: 2 hours", "duration", "2 hours", true},
		{"alias mode", "Mode: pair work", "type", "pair work", true},
		{"alias skills", "Skills: counting, measuring", "competencies", "counting, measuring", true},
		{"unknown label", "Note: be careful", "", "", false},
		{"no colon", "just some prose", "", "", false},
		{"empty value", "Dependencies:", "dependencies", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, value, ok := matchField(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("matchField(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if field != tt.wantField || value != tt.wantValue {
				t.Errorf("matchField(%q) = %q, %q, want %q, %q", tt.line, field, value, tt.wantField, tt.wantValue)
			}
		})
	}
}

func TestParseCompetencies(t *testing.T) {
	tests := []struct {
		value string
		want  []string
	}{
		{"mathematics, language", []string{"mathematics", "language"}},
		{"[Mathematics, Creative]", []string{"mathematics", "creative"}},
		{"Science", []string{"science"}},
		{"", nil},
		{"none", nil},
		{" , ,", nil},
	}
	for _, tt := range tests {
		if got := parseCompetencies(tt.value); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseCompetencies(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestParseFirstNumber(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"3", 3},
		{"4 (challenging)", 4},
		{"[1-5]", 1},
		{"complexity five", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseFirstNumber(tt.value); got != tt.want {
			t.Errorf("parseFirstNumber(%q) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"30", 30},
		{"45 minutes", 45},
		{"1 hour", 60},
		{"2 hours", 120},
		{"about half", 0},
	}
	for _, tt := range tests {
		if got := parseDuration(tt.value); got != tt.want {
			t.Errorf("parseDuration(%q) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestParseModeValue(t *testing.T) {
	tests := []struct {
		value string
		want  activity.CollaborationMode
	}{
		{"individual", activity.ModeIndividual},
		{"work alone", activity.ModeIndividual},
		{"in pairs", activity.ModePair},
		{"with a partner", activity.ModePair},
		{"group", activity.ModeGroup},
		{"collaborative", activity.ModeGroup},
		{"whole team", activity.ModeGroup},
		{"creative", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parseModeValue(tt.value); got != tt.want {
			t.Errorf("parseModeValue(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestResolveDependencies(t *testing.T) {
	numToID := map[int]string{1: "item-01", 2: "item-02", 3: "item-03"}

	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"none", "none", nil},
		{"empty", "", nil},
		{"dash", "-", nil},
		{"single number", "1", []string{"item-01"}},
		{"item references", "ITEM 1, ITEM 3", []string{"item-01", "item-03"}},
		{"id style", "item-02", []string{"item-02"}},
		{"deduplicated", "1, ITEM 1", []string{"item-01"}},
		{"unknown number kept as id", "7", []string{"item-07"}},
		{"free text passes through", "the interview", []string{"the interview"}},
		{"bracketed", "[ITEM 2]", []string{"item-02"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveDependencies(tt.value, numToID); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("resolveDependencies(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestSplitBlocks(t *testing.T) {
	t.Run("item headers", func(t *testing.T) {
		raw := "ITEM 1:\nDescription: First\n\nITEM 2:\nDescription: Second\n"
		blocks := splitBlocks(raw)
		if len(blocks) != 2 {
			t.Fatalf("splitBlocks() returned %d blocks, want 2", len(blocks))
		}
		if blocks[0].declared != 1 || blocks[1].declared != 2 {
			t.Errorf("declared numbers = %d, %d, want 1, 2", blocks[0].declared, blocks[1].declared)
		}
	})

	t.Run("inline header text stays on the block", func(t *testing.T) {
		raw := "ITEM 1: Prepare the stations\nComplexity: 2\n"
		blocks := splitBlocks(raw)
		if len(blocks) != 1 {
			t.Fatalf("splitBlocks() returned %d blocks, want 1", len(blocks))
		}
		if blocks[0].first != "Prepare the stations" {
			t.Errorf("first = %q, want %q", blocks[0].first, "Prepare the stations")
		}
	})

	t.Run("numbered headers need a field line", func(t *testing.T) {
		withField := "1. First task\nComplexity: 2\n2. Second task\n"
		if blocks := splitBlocks(withField); len(blocks) != 2 {
			t.Errorf("splitBlocks() with fields returned %d blocks, want 2", len(blocks))
		}

		plainList := "1. First task\n2. Second task\n"
		if blocks := splitBlocks(plainList); blocks != nil {
			t.Errorf("splitBlocks() on a plain list = %v, want nil", blocks)
		}
	})

	t.Run("no structure", func(t *testing.T) {
		if blocks := splitBlocks("just prose with no markers"); blocks != nil {
			t.Errorf("splitBlocks() = %v, want nil", blocks)
		}
	})
}
