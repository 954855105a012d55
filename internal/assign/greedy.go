package assign

import (
	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/participant"
)

// assignGreedy builds a record for the whole batch with the greedy heuristic.
func (e *Engine) assignGreedy(items []activity.WorkItem, roster []participant.Profile) *Record {
	record := NewRecord(PathGreedy)
	for _, p := range roster {
		record.Assignments[p.ID] = []Assignment{}
	}
	e.distribute(record, items, roster, make(map[string]bool, len(items)))
	if e.backFill(record, items, roster) {
		record.BackFilled = true
	}
	return record
}

// distribute places every unplaced item, hardest first. For each item the
// best-scoring participant under their load cap takes it; ties go to the
// lightest current load, then the lowest participant id. When everyone is at
// cap the item is placed anyway so the batch stays fully assigned.
func (e *Engine) distribute(record *Record, items []activity.WorkItem, roster []participant.Profile, placed map[string]bool) {
	caps := make(map[string]int, len(roster))
	for _, p := range roster {
		caps[p.ID] = e.loadCap(p)
	}

	for {
		item := nextItem(items, placed)
		if item == nil {
			return
		}
		pid, a := e.pick(*item, roster, record, caps)
		record.add(pid, a)
		placed[item.ID] = true
	}
}

// nextItem selects the unplaced item to assign next: highest complexity
// first, then items whose dependencies are already placed, then id order.
func nextItem(items []activity.WorkItem, placed map[string]bool) *activity.WorkItem {
	var best *activity.WorkItem
	for i := range items {
		it := &items[i]
		if placed[it.ID] {
			continue
		}
		if best == nil || itemBefore(*it, *best, placed) {
			best = it
		}
	}
	return best
}

func itemBefore(a, b activity.WorkItem, placed map[string]bool) bool {
	if a.Complexity != b.Complexity {
		return a.Complexity > b.Complexity
	}
	aReady := activity.DependenciesSatisfied(a, placed)
	bReady := activity.DependenciesSatisfied(b, placed)
	if aReady != bReady {
		return aReady
	}
	return a.ID < b.ID
}

// pick chooses the participant for one item.
func (e *Engine) pick(item activity.WorkItem, roster []participant.Profile, record *Record, caps map[string]int) (string, Assignment) {
	if pid, a, ok := e.pickScored(item, roster, record, caps, true); ok {
		return pid, a
	}

	// Everyone is at cap. Place the item anyway so the batch stays fully
	// assigned, and say so in the rationale.
	pid, a, _ := e.pickScored(item, roster, record, caps, false)
	a.Rationale = describeOverCap(a.Rationale)
	return pid, a
}

// pickScored returns the best candidate for the item. The roster is id
// sorted, so keeping the incumbent on a full tie yields the lowest id.
func (e *Engine) pickScored(item activity.WorkItem, roster []participant.Profile, record *Record, caps map[string]int, respectCaps bool) (string, Assignment, bool) {
	bestID := ""
	bestLoad := 0
	var best Assignment
	for _, p := range roster {
		load := record.Load(p.ID)
		if respectCaps && load >= caps[p.ID] {
			continue
		}
		s, rationale := e.score(item, p)
		if bestID == "" || s > best.Score || (s == best.Score && load < bestLoad) {
			bestID = p.ID
			bestLoad = load
			best = Assignment{ItemID: item.ID, Score: s, Rationale: rationale}
		}
	}
	if bestID == "" {
		return "", Assignment{}, false
	}
	return bestID, best, true
}

// backFill gives every empty-handed participant one item, provided some
// other participant holds at least two. Donors give up their weakest
// assignment, among equals the one placed last, and always keep one item.
// The moved item is rescored for its new owner.
func (e *Engine) backFill(record *Record, items []activity.WorkItem, roster []participant.Profile) bool {
	moved := false
	for {
		receiver := ""
		for _, p := range roster {
			if record.Load(p.ID) == 0 {
				receiver = p.ID
				break
			}
		}
		if receiver == "" {
			return moved
		}

		donor := ""
		for _, p := range roster {
			if record.Load(p.ID) < 2 {
				continue
			}
			if donor == "" || record.Load(p.ID) > record.Load(donor) {
				donor = p.ID
			}
		}
		if donor == "" {
			return moved
		}

		list := record.Assignments[donor]
		takeIdx := 0
		for i, a := range list {
			if a.Score <= list[takeIdx].Score {
				takeIdx = i
			}
		}
		taken := list[takeIdx]
		record.Assignments[donor] = append(list[:takeIdx], list[takeIdx+1:]...)

		item := activity.ItemByID(items, taken.ItemID)
		profile := participant.ByID(roster, receiver)
		s, rationale := e.score(*item, *profile)
		record.add(receiver, Assignment{
			ItemID:    taken.ItemID,
			Score:     s,
			Rationale: rationale + "; reassigned for coverage",
		})
		e.log.Debug("back-filled empty participant",
			"item", taken.ItemID, "from", donor, "to", receiver)
		moved = true
	}
}
