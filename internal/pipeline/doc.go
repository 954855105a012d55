// Package pipeline runs distribution requests end to end: one request
// turns a free-text activity intent into a normalized work item batch and
// an assignment record over the current roster.
//
// # Request Flow
//
// [Pipeline.Run] drives the full flow: generating → parsing → normalizing →
// deliberating (when configured) → assigning → done. Phase changes and
// outcomes are published on the event bus when one is attached, so
// observers can follow a request without polling. [Pipeline.RunRaw] enters
// the same flow after the generating phase, for callers that already hold
// response text.
//
// # Request Scope
//
// A Pipeline holds no mutable state of its own. Every run carries its
// phase and request id in a request-scoped value, so one Pipeline serves
// concurrent requests; components are injected once at construction and
// only read afterwards.
//
// # Usage
//
//	p, _ := pipeline.NewPipeline(pipeline.Config{
//	    Chain:      parse.NewChain(parse.Options{Client: client, MaxReplays: 1}, logger),
//	    Normalizer: normalize.NewNormalizer(logger),
//	    Engine:     assign.NewEngine(assign.Options{Logger: logger}),
//	    Repository: repo,
//	}, pipeline.WithClient(client), pipeline.WithBus(bus))
//	result, err := p.Run(ctx, pipeline.Request{Intent: intent})
package pipeline
