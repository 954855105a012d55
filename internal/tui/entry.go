package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/atelier-edu/reparto/internal/assign"
	"github.com/atelier-edu/reparto/internal/participant"
)

// participantEntry is one row of the participant list: a profile plus
// the assignments the record gave it. Implements list.DefaultItem.
type participantEntry struct {
	profile     participant.Profile
	assignments []assign.Assignment
}

// Title shows the display name and current load.
func (e participantEntry) Title() string {
	name := e.profile.Name
	if name == "" {
		name = e.profile.ID
	}
	return fmt.Sprintf("%s · %d item(s)", name, len(e.assignments))
}

// Description shows neurotype, availability, and the assigned item ids.
func (e participantEntry) Description() string {
	neurotype := e.profile.Neurotype
	if neurotype == "" {
		neurotype = participant.NeurotypeTypical
	}
	ids := make([]string, len(e.assignments))
	for i, a := range e.assignments {
		ids[i] = a.ItemID
	}
	detail := strings.Join(ids, ", ")
	if detail == "" {
		detail = "nothing this round"
	}
	return fmt.Sprintf("%s, %d%% available · %s", neurotype, e.profile.Availability, detail)
}

// FilterValue lets the list filter match on name and id.
func (e participantEntry) FilterValue() string {
	return e.profile.Name + " " + e.profile.ID
}

// buildEntries turns a record into list rows, ordered by participant id
// like every other record view. Profiles supply names and neurotypes;
// ids the roster no longer knows render with just the id.
func buildEntries(record *assign.Record, profiles []participant.Profile) []list.Item {
	byID := make(map[string]participant.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	var entries []list.Item
	for _, pid := range record.ParticipantIDs() {
		profile, ok := byID[pid]
		if !ok {
			profile = participant.Profile{ID: pid}
		}
		entries = append(entries, participantEntry{
			profile:     profile,
			assignments: record.Assignments[pid],
		})
	}
	return entries
}
