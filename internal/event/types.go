package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "request.started", "parse.degraded")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Request Lifecycle Events
// -----------------------------------------------------------------------------

// RequestStartedEvent is emitted when a decomposition request begins.
type RequestStartedEvent struct {
	baseEvent
	RequestID string // Unique identifier for the request
	Intent    string // Activity intent being decomposed
}

// NewRequestStartedEvent creates a RequestStartedEvent.
func NewRequestStartedEvent(requestID, intent string) RequestStartedEvent {
	return RequestStartedEvent{
		baseEvent: newBaseEvent("request.started"),
		RequestID: requestID,
		Intent:    intent,
	}
}

// RequestCompletedEvent is emitted when a request finishes, successfully or not.
type RequestCompletedEvent struct {
	baseEvent
	RequestID string // Unique identifier for the request
	Success   bool   // Whether the request produced a usable result
	Reason    string // Additional context (error message if failed)
}

// NewRequestCompletedEvent creates a RequestCompletedEvent.
func NewRequestCompletedEvent(requestID string, success bool, reason string) RequestCompletedEvent {
	return RequestCompletedEvent{
		baseEvent: newBaseEvent("request.completed"),
		RequestID: requestID,
		Success:   success,
		Reason:    reason,
	}
}

// -----------------------------------------------------------------------------
// Phase Events
// -----------------------------------------------------------------------------

// Phase represents the current phase of a request.
// Mirrors pipeline.Phase for decoupling.
type Phase string

const (
	PhaseGenerating   Phase = "generating"
	PhaseParsing      Phase = "parsing"
	PhaseNormalizing  Phase = "normalizing"
	PhaseDeliberating Phase = "deliberating"
	PhaseAssigning    Phase = "assigning"
	PhaseDone         Phase = "done"
	PhaseFailed       Phase = "failed"
)

// PhaseChangeEvent is emitted when a request moves to a new phase.
type PhaseChangeEvent struct {
	baseEvent
	RequestID     string // Request the phase belongs to
	PreviousPhase Phase  // Previous phase (empty if first transition)
	CurrentPhase  Phase  // New current phase
}

// NewPhaseChangeEvent creates a PhaseChangeEvent.
func NewPhaseChangeEvent(requestID string, previousPhase, currentPhase Phase) PhaseChangeEvent {
	return PhaseChangeEvent{
		baseEvent:     newBaseEvent("phase.changed"),
		RequestID:     requestID,
		PreviousPhase: previousPhase,
		CurrentPhase:  currentPhase,
	}
}

// -----------------------------------------------------------------------------
// Parse Events
// -----------------------------------------------------------------------------

// ParseDegradedEvent is emitted when the parser chain accepts a batch below
// full confidence. Strategy and confidence are plain strings mirroring the
// parse package values for decoupling.
type ParseDegradedEvent struct {
	baseEvent
	RequestID  string // Request the parse belongs to
	Strategy   string // Strategy that produced the accepted batch
	Confidence string // Confidence level of the accepted batch
	ItemCount  int    // Number of items in the accepted batch
}

// NewParseDegradedEvent creates a ParseDegradedEvent.
func NewParseDegradedEvent(requestID, strategy, confidence string, itemCount int) ParseDegradedEvent {
	return ParseDegradedEvent{
		baseEvent:  newBaseEvent("parse.degraded"),
		RequestID:  requestID,
		Strategy:   strategy,
		Confidence: confidence,
		ItemCount:  itemCount,
	}
}

// -----------------------------------------------------------------------------
// Assignment Events
// -----------------------------------------------------------------------------

// AssignmentCompletedEvent is emitted when the engine produces a record.
type AssignmentCompletedEvent struct {
	baseEvent
	RequestID        string // Request the assignment belongs to
	Path             string // Path that produced the record ("optimizer" or "greedy")
	ItemCount        int    // Number of items assigned
	ParticipantCount int    // Number of participants in the roster
	BackFilled       bool   // Whether items were moved to cover empty participants
}

// NewAssignmentCompletedEvent creates an AssignmentCompletedEvent.
func NewAssignmentCompletedEvent(requestID, path string, itemCount, participantCount int, backFilled bool) AssignmentCompletedEvent {
	return AssignmentCompletedEvent{
		baseEvent:        newBaseEvent("assignment.completed"),
		RequestID:        requestID,
		Path:             path,
		ItemCount:        itemCount,
		ParticipantCount: participantCount,
		BackFilled:       backFilled,
	}
}

// -----------------------------------------------------------------------------
// Consensus Events
// -----------------------------------------------------------------------------

// ConsensusDecidedEvent is emitted when the coordinator reaches a decision.
type ConsensusDecidedEvent struct {
	baseEvent
	RequestID    string  // Request the deliberation belongs to
	DecisionType string  // Decision type (e.g., "CONSENSUS", "MODIFICATION_PEDAGOGICAL")
	Score        float64 // Weighted score of the decision
}

// NewConsensusDecidedEvent creates a ConsensusDecidedEvent.
func NewConsensusDecidedEvent(requestID, decisionType string, score float64) ConsensusDecidedEvent {
	return ConsensusDecidedEvent{
		baseEvent:    newBaseEvent("consensus.decided"),
		RequestID:    requestID,
		DecisionType: decisionType,
		Score:        score,
	}
}

// ConsensusFallbackEvent is emitted when proposer failures force the
// coordinator to fall back to the best available proposal.
type ConsensusFallbackEvent struct {
	baseEvent
	RequestID  string // Request the deliberation belongs to
	ProposerID string // Proposer whose proposal was kept (empty if none)
	Reason     string // Why the coordinator fell back
}

// NewConsensusFallbackEvent creates a ConsensusFallbackEvent.
func NewConsensusFallbackEvent(requestID, proposerID, reason string) ConsensusFallbackEvent {
	return ConsensusFallbackEvent{
		baseEvent:  newBaseEvent("consensus.fallback"),
		RequestID:  requestID,
		ProposerID: proposerID,
		Reason:     reason,
	}
}

// -----------------------------------------------------------------------------
// Roster Events
// -----------------------------------------------------------------------------

// RosterReloadedEvent is emitted when the participant repository reloads
// its roster file, either on demand or through the file watcher.
type RosterReloadedEvent struct {
	baseEvent
	Path             string // Roster file path
	ParticipantCount int    // Number of profiles after the reload
}

// NewRosterReloadedEvent creates a RosterReloadedEvent.
func NewRosterReloadedEvent(path string, participantCount int) RosterReloadedEvent {
	return RosterReloadedEvent{
		baseEvent:        newBaseEvent("roster.reloaded"),
		Path:             path,
		ParticipantCount: participantCount,
	}
}
