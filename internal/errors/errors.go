// Package errors is the error vocabulary of reparto. It collects the
// sentinel errors every subsystem matches against, a typed error per
// pipeline stage that carries stage context (strategy, proposer,
// participant), and helpers that classify any error by retryability,
// audience, and severity.
//
// The standard helpers Is, As, Unwrap, New, and Join are re-exported so
// callers only ever import this package:
//
//	if errors.Is(err, errors.ErrNoParticipants) { ... }
//
//	var perr *errors.ParseError
//	if errors.As(err, &perr) { ... }
//
// Stage errors are built with constructors and fluent context:
//
//	errors.NewParseError("no field markers found", errors.ErrNoItems).
//	    WithStrategy("strict").
//	    WithLine(12)
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-exported standard library helpers.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity grades how loudly an error should be reported.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityCritical
)

var severityNames = [...]string{"debug", "info", "warning", "error", "critical"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Generation-related sentinel errors
var (
	// ErrEmptyIntent indicates that the caller supplied no activity intent.
	ErrEmptyIntent = New("activity intent is empty")
	// ErrEmptyResponse indicates that the text service returned no usable text.
	ErrEmptyResponse = New("text service returned empty response")
	// ErrGenerationTimeout indicates that the text service call timed out.
	ErrGenerationTimeout = New("text generation timed out")
	// ErrGeneratorUnavailable indicates that no text generation client is configured.
	ErrGeneratorUnavailable = New("text generation client unavailable")
)

// Parse-related sentinel errors
var (
	// ErrNoItems indicates that a strategy produced no work items.
	ErrNoItems = New("no work items produced")
	// ErrBlankDescription indicates an item with an empty description.
	ErrBlankDescription = New("work item has blank description")
	// ErrReplayExhausted indicates the schema-replay budget was spent.
	ErrReplayExhausted = New("schema replay already attempted")
	// ErrStrategyUnavailable indicates a strategy cannot run in this configuration.
	ErrStrategyUnavailable = New("parse strategy unavailable")
)

// Assignment-related sentinel errors
var (
	// ErrNoParticipants indicates that assignment was requested with an empty roster.
	ErrNoParticipants = New("no participants available")
	// ErrUnknownParticipant indicates a mapping referenced a participant outside the roster.
	ErrUnknownParticipant = New("unknown participant id")
	// ErrUnknownItem indicates a mapping referenced an item outside the batch.
	ErrUnknownItem = New("unknown work item id")
	// ErrCountMismatch indicates ordinal remapping was rejected because list lengths differ.
	ErrCountMismatch = New("item count mismatch")
	// ErrOptimizerUnavailable indicates no external optimizer is configured.
	ErrOptimizerUnavailable = New("optimizer unavailable")
)

// Consensus-related sentinel errors
var (
	// ErrProposerFailed indicates a proposal collaborator returned an error.
	ErrProposerFailed = New("proposer failed")
	// ErrProposerTimeout indicates a proposal collaborator exceeded its deadline.
	ErrProposerTimeout = New("proposer timed out")
	// ErrNoProposals indicates every proposal collaborator failed.
	ErrNoProposals = New("no proposals available")
	// ErrAlreadyDecided indicates a coordinator was run past a terminal state.
	ErrAlreadyDecided = New("consensus already reached a terminal state")
)

// Roster-related sentinel errors
var (
	// ErrRosterEmpty indicates a roster file contained no participants.
	ErrRosterEmpty = New("roster is empty")
	// ErrDuplicateParticipant indicates a roster declared the same id twice.
	ErrDuplicateParticipant = New("duplicate participant id")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Classified Errors
// -----------------------------------------------------------------------------

// RepartoError is implemented by every classified error in this
// package. It adds classification on top of the error and unwrapping
// contracts.
type RepartoError interface {
	error
	Unwrap() error
	Is(target error) bool
	Severity() Severity
	IsRetryable() bool
	IsUserFacing() bool
}

// core carries the shared state of every classified error: a message,
// an optional cause, and the classification flags.
type core struct {
	msg       string
	cause     error
	sev       Severity
	transient bool
	user      bool
}

func (c *core) Error() string {
	if c.cause != nil {
		return c.msg + ": " + c.cause.Error()
	}
	return c.msg
}

func (c *core) Unwrap() error { return c.cause }

// Is matches through the cause chain. Concrete types layer their own
// type match on top.
func (c *core) Is(target error) bool {
	return c.cause != nil && errors.Is(c.cause, target)
}

func (c *core) Severity() Severity { return c.sev }
func (c *core) IsRetryable() bool  { return c.transient }
func (c *core) IsUserFacing() bool { return c.user }

// describe renders "kind [tag, tag]: msg: cause", omitting the empty
// parts. Every stage error formats itself through it.
func describe(kind string, tags []string, msg string, cause error) string {
	var b strings.Builder
	b.WriteString(kind)
	if len(tags) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(tags, ", "))
		b.WriteString("]")
	}
	b.WriteString(": ")
	b.WriteString(msg)
	if cause != nil {
		b.WriteString(": ")
		b.WriteString(cause.Error())
	}
	return b.String()
}

// tag formats one key=value context pair.
func tag(key string, value any) string {
	return fmt.Sprintf("%s=%v", key, value)
}

// -----------------------------------------------------------------------------
// Stage Errors
// -----------------------------------------------------------------------------

// GenerationError reports a failure of the upstream text generation
// service. Retryable: the parser chain is built to advance past it.
type GenerationError struct {
	core
	Command string
	Attempt int
}

// NewGenerationError creates a GenerationError wrapping cause.
func NewGenerationError(message string, cause error) *GenerationError {
	return &GenerationError{
		core:    core{msg: message, cause: cause, sev: SeverityWarning, transient: true},
		Attempt: -1,
	}
}

// WithCommand records the generation command line.
func (e *GenerationError) WithCommand(command string) *GenerationError {
	e.Command = command
	return e
}

// WithAttempt records which attempt failed.
func (e *GenerationError) WithAttempt(n int) *GenerationError {
	e.Attempt = n
	return e
}

// WithSeverity overrides the default severity.
func (e *GenerationError) WithSeverity(s Severity) *GenerationError {
	e.sev = s
	return e
}

func (e *GenerationError) Error() string {
	var tags []string
	if e.Command != "" {
		tags = append(tags, tag("command", e.Command))
	}
	if e.Attempt >= 0 {
		tags = append(tags, tag("attempt", e.Attempt))
	}
	return describe("generation error", tags, e.msg, e.cause)
}

func (e *GenerationError) Is(target error) bool {
	if _, ok := target.(*GenerationError); ok {
		return true
	}
	return e.core.Is(target)
}

// ParseError reports a failure inside the response-parsing strategy
// chain.
type ParseError struct {
	core
	Strategy string
	Line     int
}

// NewParseError creates a ParseError wrapping cause.
func NewParseError(message string, cause error) *ParseError {
	return &ParseError{
		core: core{msg: message, cause: cause, sev: SeverityInfo},
		Line: -1,
	}
}

// WithStrategy records the strategy that failed.
func (e *ParseError) WithStrategy(name string) *ParseError {
	e.Strategy = name
	return e
}

// WithLine records the offending input line.
func (e *ParseError) WithLine(line int) *ParseError {
	e.Line = line
	return e
}

// WithSeverity overrides the default severity.
func (e *ParseError) WithSeverity(s Severity) *ParseError {
	e.sev = s
	return e
}

func (e *ParseError) Error() string {
	var tags []string
	if e.Strategy != "" {
		tags = append(tags, tag("strategy", e.Strategy))
	}
	if e.Line >= 0 {
		tags = append(tags, tag("line", e.Line))
	}
	return describe("parse error", tags, e.msg, e.cause)
}

func (e *ParseError) Is(target error) bool {
	if _, ok := target.(*ParseError); ok {
		return true
	}
	return e.core.Is(target)
}

// AssignmentError reports a failure of the assignment engine. It is
// user-facing: assignment failures are the ones the teacher has to act
// on.
type AssignmentError struct {
	core
	Path          string
	ParticipantID string
	ItemID        string
}

// NewAssignmentError creates an AssignmentError wrapping cause.
func NewAssignmentError(message string, cause error) *AssignmentError {
	return &AssignmentError{
		core: core{msg: message, cause: cause, sev: SeverityError, user: true},
	}
}

// WithPath records which assignment path produced the error.
func (e *AssignmentError) WithPath(path string) *AssignmentError {
	e.Path = path
	return e
}

// WithParticipantID records the participant involved.
func (e *AssignmentError) WithParticipantID(id string) *AssignmentError {
	e.ParticipantID = id
	return e
}

// WithItemID records the work item involved.
func (e *AssignmentError) WithItemID(id string) *AssignmentError {
	e.ItemID = id
	return e
}

// WithSeverity overrides the default severity.
func (e *AssignmentError) WithSeverity(s Severity) *AssignmentError {
	e.sev = s
	return e
}

func (e *AssignmentError) Error() string {
	var tags []string
	if e.Path != "" {
		tags = append(tags, tag("path", e.Path))
	}
	if e.ParticipantID != "" {
		tags = append(tags, tag("participant", e.ParticipantID))
	}
	if e.ItemID != "" {
		tags = append(tags, tag("item", e.ItemID))
	}
	return describe("assignment error", tags, e.msg, e.cause)
}

func (e *AssignmentError) Is(target error) bool {
	if _, ok := target.(*AssignmentError); ok {
		return true
	}
	return e.core.Is(target)
}

// ConsensusError reports a failure inside the consensus coordinator.
type ConsensusError struct {
	core
	ProposerID string
	State      string
}

// NewConsensusError creates a ConsensusError wrapping cause.
func NewConsensusError(message string, cause error) *ConsensusError {
	return &ConsensusError{
		core: core{msg: message, cause: cause, sev: SeverityWarning},
	}
}

// WithProposerID records the proposer involved.
func (e *ConsensusError) WithProposerID(id string) *ConsensusError {
	e.ProposerID = id
	return e
}

// WithState records the coordinator state at failure time.
func (e *ConsensusError) WithState(state string) *ConsensusError {
	e.State = state
	return e
}

// WithSeverity overrides the default severity.
func (e *ConsensusError) WithSeverity(s Severity) *ConsensusError {
	e.sev = s
	return e
}

func (e *ConsensusError) Error() string {
	var tags []string
	if e.ProposerID != "" {
		tags = append(tags, tag("proposer", e.ProposerID))
	}
	if e.State != "" {
		tags = append(tags, tag("state", e.State))
	}
	return describe("consensus error", tags, e.msg, e.cause)
}

func (e *ConsensusError) Is(target error) bool {
	if _, ok := target.(*ConsensusError); ok {
		return true
	}
	return e.core.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError reports a missing resource by type and id:
//
//	errors.NewNotFoundError("participant", "p-003").Error()
//	// participant 'p-003' not found
type NotFoundError struct {
	core
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a NotFoundError for the given resource.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		core: core{
			msg:  fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			sev:  SeverityWarning,
			user: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause attaches the underlying error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.core.Is(target)
}

// ValidationError reports invalid input or state.
type ValidationError struct {
	core
	Field string
	Value any
}

// NewValidationError creates a ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		core: core{msg: message, sev: SeverityWarning, user: true},
	}
}

// WithField records the offending field.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue records the rejected value.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause attaches the underlying error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

func (e *ValidationError) Error() string {
	var tags []string
	if e.Field != "" {
		tags = append(tags, tag("field", e.Field))
	}
	if e.Value != nil {
		tags = append(tags, tag("value", e.Value))
	}
	return describe("validation error", tags, e.msg, e.cause)
}

// Is additionally matches ErrInvalidInput, so validation failures can
// be caught without naming the concrete type.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.core.Is(target)
}

// TimeoutError reports an operation that exceeded its deadline.
// Retryable by nature.
type TimeoutError struct {
	core
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a TimeoutError for the given operation.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		core:      core{msg: operation, sev: SeverityWarning, transient: true, user: true},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause attaches the underlying error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return base + ": " + e.cause.Error()
	}
	return base
}

// Is additionally matches ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.core.Is(target)
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

// hasType reports whether err has a *T anywhere in its chain.
func hasType[T any, PT interface {
	*T
	error
}](err error) bool {
	var target PT
	return errors.As(err, &target)
}

// IsRetryable reports whether err is transient enough to try again:
// either a classified error that says so, or anything wrapping a
// timeout sentinel.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var rerr RepartoError
	if As(err, &rerr) {
		return rerr.IsRetryable()
	}
	return Is(err, ErrTimeout) || Is(err, ErrGenerationTimeout)
}

// IsUserFacing reports whether the error text is fit for end users.
// Stage errors carry prompt and strategy internals and mostly are not;
// the semantic errors always are.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var rerr RepartoError
	if As(err, &rerr) {
		return rerr.IsUserFacing()
	}
	return IsSemanticError(err)
}

// GetSeverity grades err, defaulting to SeverityError for plain errors.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var rerr RepartoError
	if As(err, &rerr) {
		return rerr.Severity()
	}
	return SeverityError
}

// IsDomainError reports whether err is one of the stage errors.
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	return hasType[GenerationError](err) || hasType[ParseError](err) ||
		hasType[AssignmentError](err) || hasType[ConsensusError](err)
}

// IsSemanticError reports whether err is one of the semantic errors.
func IsSemanticError(err error) bool {
	if err == nil {
		return false
	}
	return hasType[NotFoundError](err) || hasType[ValidationError](err) ||
		hasType[TimeoutError](err)
}

// -----------------------------------------------------------------------------
// Wrapping
// -----------------------------------------------------------------------------

// Wrap prefixes err with a context message, returning nil for nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
