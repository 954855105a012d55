// Package assign scores normalized work items against participant profiles
// and distributes the whole batch across the roster.
//
// Two paths produce a record. When an Optimizer is configured its proposal is
// validated against the canonical batch first: unknown participants are
// dropped, foreign item ids are remapped by ordinal position, and anything
// the proposal left out is placed by the same greedy picker. When no
// optimizer is configured, or its proposal cannot be salvaged, the greedy
// heuristic assigns everything by itself. Either way every item ends up
// assigned exactly once and, when the roster is small enough, every
// participant receives at least one item.
package assign

import (
	"context"
	"sort"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/errors"
	"github.com/atelier-edu/reparto/internal/logging"
	"github.com/atelier-edu/reparto/internal/participant"
)

// Default scoring and load parameters. Config may override any of them.
const (
	DefaultBaseScore        = 0.5
	DefaultTagBonus         = 0.15
	DefaultNeurotypePenalty = 0.2
	DefaultBaseLoadCap      = 2
	DefaultAvailabilityHigh = 80
	DefaultAvailabilityLow  = 70
)

// Options configures an Engine. Zero values fall back to the defaults above.
type Options struct {
	// BaseScore is the starting compatibility before bonuses and penalties.
	BaseScore float64

	// TagBonus is added per matched strength or favorable neurotype tag.
	TagBonus float64

	// NeurotypePenalty is subtracted per conflicting neurotype constraint.
	NeurotypePenalty float64

	// BaseLoadCap is the per-participant item cap before the availability
	// adjustment.
	BaseLoadCap int

	// AvailabilityHigh is the availability above which the cap grows by one.
	AvailabilityHigh int

	// AvailabilityLow is the availability below which the cap shrinks by one.
	AvailabilityLow int

	// Optimizer, when set, is consulted before the greedy path.
	Optimizer Optimizer

	// Logger receives path decisions and validation drops.
	Logger *logging.Logger
}

// Engine distributes work items across a roster.
type Engine struct {
	opts Options
	log  *logging.Logger
}

// NewEngine creates an Engine with the given options.
func NewEngine(opts Options) *Engine {
	if opts.BaseScore == 0 {
		opts.BaseScore = DefaultBaseScore
	}
	if opts.TagBonus == 0 {
		opts.TagBonus = DefaultTagBonus
	}
	if opts.NeurotypePenalty == 0 {
		opts.NeurotypePenalty = DefaultNeurotypePenalty
	}
	if opts.BaseLoadCap == 0 {
		opts.BaseLoadCap = DefaultBaseLoadCap
	}
	if opts.AvailabilityHigh == 0 {
		opts.AvailabilityHigh = DefaultAvailabilityHigh
	}
	if opts.AvailabilityLow == 0 {
		opts.AvailabilityLow = DefaultAvailabilityLow
	}
	log := opts.Logger
	if log == nil {
		log = logging.NopLogger()
	}
	return &Engine{opts: opts, log: log.WithComponent("assign")}
}

// Assign distributes the batch across the roster and returns the record.
//
// An empty batch yields an empty record with no error. An empty roster is an
// error: there is nobody to assign to and the caller must abort.
func (e *Engine) Assign(ctx context.Context, items []activity.WorkItem, profiles []participant.Profile) (*Record, error) {
	if len(items) == 0 {
		return NewRecord(PathGreedy), nil
	}
	if len(profiles) == 0 {
		return nil, errors.NewAssignmentError("roster is empty", errors.ErrNoParticipants)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	roster := sortedRoster(profiles)

	if e.opts.Optimizer != nil {
		record, err := e.assignViaOptimizer(ctx, items, roster)
		if err == nil {
			e.log.Info("assignment complete",
				"path", PathOptimizer.String(),
				"items", len(items),
				"participants", len(roster))
			return record, nil
		}
		e.log.Warn("optimizer path abandoned, using greedy heuristic", "error", err)
	}

	record := e.assignGreedy(items, roster)
	e.log.Info("assignment complete",
		"path", PathGreedy.String(),
		"items", len(items),
		"participants", len(roster))
	return record, nil
}

// assignViaOptimizer builds a record from the optimizer's proposal. The
// proposal is validated first; leftover items are placed by the greedy
// picker with the proposal's loads already counted.
func (e *Engine) assignViaOptimizer(ctx context.Context, items []activity.WorkItem, roster []participant.Profile) (*Record, error) {
	proposal, err := e.opts.Optimizer.Optimize(ctx, items, roster)
	if err != nil {
		return nil, err
	}
	mapping, err := e.validateMapping(proposal, items, roster)
	if err != nil {
		return nil, err
	}

	record := NewRecord(PathOptimizer)
	for _, p := range roster {
		record.Assignments[p.ID] = []Assignment{}
	}

	placed := make(map[string]bool, len(items))
	for _, pid := range sortedKeys(mapping) {
		profile := participant.ByID(roster, pid)
		for _, itemID := range mapping[pid] {
			item := activity.ItemByID(items, itemID)
			s, rationale := e.score(*item, *profile)
			record.add(pid, Assignment{ItemID: itemID, Score: s, Rationale: rationale})
			placed[itemID] = true
		}
	}

	e.distribute(record, items, roster, placed)
	if e.backFill(record, items, roster) {
		record.BackFilled = true
	}
	return record, nil
}

// validateMapping checks an optimizer proposal against the canonical batch.
// Unknown participants are dropped with a log entry. If any item id falls
// outside the batch, the full local id list is remapped onto the canonical
// ids by ordinal position, which only works when the counts match.
func (e *Engine) validateMapping(proposal map[string][]string, items []activity.WorkItem, roster []participant.Profile) (map[string][]string, error) {
	if len(proposal) == 0 {
		return nil, errors.NewAssignmentError("optimizer returned no assignments", nil).
			WithPath(PathOptimizer.String())
	}

	known := make(map[string]bool, len(roster))
	for _, p := range roster {
		known[p.ID] = true
	}

	kept := make(map[string][]string)
	var localIDs []string
	seen := make(map[string]bool)
	for _, pid := range sortedKeys(proposal) {
		if !known[pid] {
			e.log.Warn("dropping unknown participant from optimizer proposal", "participant", pid)
			continue
		}
		for _, itemID := range proposal[pid] {
			if seen[itemID] {
				e.log.Warn("dropping duplicate item from optimizer proposal",
					"item", itemID, "participant", pid)
				continue
			}
			seen[itemID] = true
			kept[pid] = append(kept[pid], itemID)
			localIDs = append(localIDs, itemID)
		}
	}
	if len(localIDs) == 0 {
		return nil, errors.NewAssignmentError("no usable assignments in optimizer proposal", errors.ErrUnknownParticipant).
			WithPath(PathOptimizer.String())
	}

	canonical := make(map[string]bool, len(items))
	for _, id := range activity.IDs(items) {
		canonical[id] = true
	}
	foreign := false
	for _, id := range localIDs {
		if !canonical[id] {
			foreign = true
			break
		}
	}
	if !foreign {
		return kept, nil
	}

	// The optimizer invented its own item ids. Sort both id lists and map
	// position for position; a count mismatch makes the bridge unsound.
	if len(localIDs) != len(items) {
		return nil, errors.NewAssignmentError("cannot remap optimizer item ids", errors.ErrCountMismatch).
			WithPath(PathOptimizer.String())
	}
	sortedLocal := append([]string(nil), localIDs...)
	sort.Strings(sortedLocal)
	sortedCanonical := activity.IDs(items)
	sort.Strings(sortedCanonical)

	remap := make(map[string]string, len(sortedLocal))
	for i, local := range sortedLocal {
		remap[local] = sortedCanonical[i]
	}
	out := make(map[string][]string, len(kept))
	for pid, ids := range kept {
		for _, id := range ids {
			out[pid] = append(out[pid], remap[id])
		}
	}
	e.log.Info("remapped optimizer item ids by ordinal position", "count", len(remap))
	return out, nil
}

// sortedRoster returns a copy of the profiles ordered by id, so tie-breaks
// and map iteration stay deterministic.
func sortedRoster(profiles []participant.Profile) []participant.Profile {
	roster := make([]participant.Profile, len(profiles))
	copy(roster, profiles)
	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })
	return roster
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
