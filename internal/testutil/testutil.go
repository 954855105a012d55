// Package testutil provides shared fixtures for reparto package tests:
// work item and profile builders, canned generation clients, and roster
// file helpers.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/errors"
	"github.com/atelier-edu/reparto/internal/participant"
	"github.com/atelier-edu/reparto/internal/textgen"
)

// Item builds a complete work item with group mode and a 30 minute
// duration. Tests that exercise default filling build partial items by
// hand.
func Item(id, description string, complexity int, tags ...string) activity.WorkItem {
	return activity.WorkItem{
		ID:              id,
		Description:     description,
		Competencies:    tags,
		Complexity:      complexity,
		Mode:            activity.ModeGroup,
		DurationMinutes: 30,
	}
}

// Profile builds a participant profile named after its id.
func Profile(id string, neurotype participant.Neurotype, availability int, strengths ...string) participant.Profile {
	return participant.Profile{
		ID:           id,
		Name:         id,
		Neurotype:    neurotype,
		Availability: availability,
		Strengths:    strengths,
	}
}

// ScriptedClient replays canned responses in order and reports
// ErrEmptyResponse once they run out.
func ScriptedClient(responses ...string) textgen.Client {
	i := 0
	return textgen.Func(func(_ context.Context, _ textgen.Request) (string, error) {
		if i >= len(responses) {
			return "", errors.ErrEmptyResponse
		}
		r := responses[i]
		i++
		return r, nil
	})
}

// FailingClient always fails with the given error.
func FailingClient(err error) textgen.Client {
	return textgen.Func(func(_ context.Context, _ textgen.Request) (string, error) {
		return "", err
	})
}

// WriteRoster writes a roster YAML file into a fresh temp directory and
// returns its path.
func WriteRoster(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "roster.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write roster file: %v", err)
	}
	return path
}
