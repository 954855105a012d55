// Package consensus implements the multi-perspective deliberation that
// reviews a work item batch before assignment.
//
// Three proposers examine the activity in sequence: structural (the shape
// of the activity), pedagogical (fit against every participant profile),
// and feasibility (time and materials). Each later proposer sees the text
// the earlier ones produced, so the pedagogical review critiques the
// actual structural proposal and the feasibility check sees both.
//
// # Deliberation Lifecycle
//
// A deliberation progresses through four states:
//
//   - Collecting: Proposals are being gathered from the proposers
//   - Evaluating: All proposals arrived and are being arbitrated
//   - Decided: Arbitration produced a CONSENSUS or MODIFICATION_PEDAGOGICAL decision
//   - Fallback: Proposer failures forced a degraded decision (or none at all)
//
// # Arbitration
//
// When every proposer succeeds, a pedagogical requires_revision verdict
// scoring below the revision threshold dominates the decision; otherwise
// the proposals merge field by field with a weighted score. When some
// proposers fail, the coordinator keeps the best available proposal and
// records who failed.
//
// # Usage
//
//	proposers := consensus.NewTextProposers(client, 600)
//	coord := consensus.NewCoordinator(proposers, consensus.Options{
//	    RequestID: requestID,
//	    Bus:       bus,
//	    Logger:    logger,
//	})
//
//	decision, err := coord.Decide(ctx, consensus.Input{
//	    Intent:   "plan a school garden",
//	    Items:    batch.Items,
//	    Profiles: roster,
//	})
//
// A Coordinator is single use: create a fresh one per request.
package consensus
