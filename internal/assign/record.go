package assign

import "sort"

// -----------------------------------------------------------------------------
// Path
// -----------------------------------------------------------------------------

// Path names which assignment path produced a record.
type Path string

const (
	// PathOptimizer marks a record seeded from an external optimizer proposal.
	PathOptimizer Path = "optimizer"

	// PathGreedy marks a record built entirely by the local greedy heuristic.
	PathGreedy Path = "greedy"
)

// String returns the string representation of the path.
func (p Path) String() string {
	return string(p)
}

// -----------------------------------------------------------------------------
// Record
// -----------------------------------------------------------------------------

// Assignment is one work item given to a participant, with the compatibility
// score that placed it there and a short human-readable explanation.
type Assignment struct {
	ItemID    string  `json:"item_id"`
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// Record maps participant ids to their assignments, in the order the engine
// placed them. Every roster participant has an entry, possibly empty, so
// callers can tell "considered but unassigned" apart from "not in the roster".
type Record struct {
	// Assignments holds the per-participant item lists.
	Assignments map[string][]Assignment `json:"assignments"`

	// Path records which path produced the assignments.
	Path Path `json:"path"`

	// BackFilled is set when the engine had to move items between
	// participants to give everyone at least one.
	BackFilled bool `json:"back_filled,omitempty"`
}

// NewRecord creates an empty record for the given path.
func NewRecord(path Path) *Record {
	return &Record{
		Assignments: make(map[string][]Assignment),
		Path:        path,
	}
}

// add appends an assignment to the participant's list.
func (r *Record) add(participantID string, a Assignment) {
	r.Assignments[participantID] = append(r.Assignments[participantID], a)
}

// Load returns how many items the participant currently holds.
func (r *Record) Load(participantID string) int {
	return len(r.Assignments[participantID])
}

// TotalAssigned returns the number of assignments across all participants.
func (r *Record) TotalAssigned() int {
	total := 0
	for _, list := range r.Assignments {
		total += len(list)
	}
	return total
}

// Contains reports whether the record assigns the item to any participant.
func (r *Record) Contains(itemID string) bool {
	for _, list := range r.Assignments {
		for _, a := range list {
			if a.ItemID == itemID {
				return true
			}
		}
	}
	return false
}

// ParticipantIDs returns the participant ids present in the record, sorted.
func (r *Record) ParticipantIDs() []string {
	ids := make([]string, 0, len(r.Assignments))
	for id := range r.Assignments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ItemIDs returns every assigned item id, sorted.
func (r *Record) ItemIDs() []string {
	var ids []string
	for _, list := range r.Assignments {
		for _, a := range list {
			ids = append(ids, a.ItemID)
		}
	}
	sort.Strings(ids)
	return ids
}
