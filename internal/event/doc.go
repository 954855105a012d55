// Package event carries notifications between the pipeline and whoever
// is watching it run.
//
// The pipeline publishes to a [Bus]; the CLI, the TUI, and the debug
// logger subscribe. None of them import each other, and a run with no
// subscribers costs nothing but the Publish calls.
//
// Event types are strings of the form "category.action". The full set:
//
//   - request.started, request.completed: one pair per pipeline run
//     ([RequestStartedEvent], [RequestCompletedEvent])
//   - phase.changed: every transition of the run's phase
//     ([PhaseChangeEvent])
//   - parse.degraded: a batch was accepted below full confidence
//     ([ParseDegradedEvent])
//   - assignment.completed: the engine produced a record
//     ([AssignmentCompletedEvent])
//   - consensus.decided, consensus.fallback: deliberation outcomes
//     ([ConsensusDecidedEvent], [ConsensusFallbackEvent])
//   - roster.reloaded: the participant repository re-read its file
//     ([RosterReloadedEvent])
//
// Delivery is synchronous and in registration order, type-specific
// handlers before catch-all ones. A handler that panics is logged and
// skipped rather than taking the publisher down. The Bus is safe for
// concurrent use from any number of goroutines.
//
//	bus := event.NewBus()
//	bus.Subscribe("phase.changed", func(e event.Event) {
//	    pc := e.(event.PhaseChangeEvent)
//	    fmt.Println(pc.RequestID, pc.CurrentPhase)
//	})
//	bus.Publish(event.NewPhaseChangeEvent("req-1", event.PhaseParsing, event.PhaseNormalizing))
package event
