package activity

import (
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------
// Validation Types
// -----------------------------------------------------------------------------

// ValidationSeverity represents the severity level of a validation message.
//
// Errors mark a batch unusable for assignment while warnings and info are
// advisory; the normalizer repairs most warning-level findings.
type ValidationSeverity string

const (
	// SeverityError indicates a blocking issue that must be fixed.
	// Batches with errors cannot proceed to assignment.
	// Examples: duplicate ids, dependency cycles, blank descriptions.
	SeverityError ValidationSeverity = "error"

	// SeverityWarning indicates a potential issue that should be reviewed.
	// Batches with warnings can proceed; the normalizer usually repairs them.
	// Examples: out-of-range complexity, missing duration, unknown mode.
	SeverityWarning ValidationSeverity = "warning"

	// SeverityInfo indicates informational feedback.
	// Not a problem, just helpful context.
	SeverityInfo ValidationSeverity = "info"
)

// String returns the string representation of the severity.
func (s ValidationSeverity) String() string {
	return string(s)
}

// ValidationMessage represents a single validation issue with structured information.
type ValidationMessage struct {
	// Severity indicates how critical this issue is.
	Severity ValidationSeverity `json:"severity"`

	// Message is a human-readable description of the issue.
	Message string `json:"message"`

	// ItemID identifies the work item this message relates to.
	// Empty for batch-level issues that don't relate to a specific item.
	ItemID string `json:"item_id,omitempty"`

	// Field identifies the specific field causing the issue.
	// Examples: "dependencies", "description", "complexity".
	Field string `json:"field,omitempty"`

	// Suggestion provides guidance on how to fix the issue.
	Suggestion string `json:"suggestion,omitempty"`

	// RelatedIDs lists other item ids related to this issue.
	// Used for cycles, duplicates, and cross-item issues.
	RelatedIDs []string `json:"related_ids,omitempty"`
}

// IsError returns true if this message is an error.
func (m *ValidationMessage) IsError() bool {
	return m.Severity == SeverityError
}

// IsWarning returns true if this message is a warning.
func (m *ValidationMessage) IsWarning() bool {
	return m.Severity == SeverityWarning
}

// ValidationResult contains the complete validation results for a batch.
type ValidationResult struct {
	// IsValid is true if there are no errors (warnings allowed).
	// A valid batch can proceed to assignment.
	IsValid bool `json:"is_valid"`

	// Messages contains all validation messages found.
	Messages []ValidationMessage `json:"messages"`

	// ErrorCount is the number of error-level messages.
	ErrorCount int `json:"error_count"`

	// WarningCount is the number of warning-level messages.
	WarningCount int `json:"warning_count"`

	// InfoCount is the number of info-level messages.
	InfoCount int `json:"info_count"`
}

// HasErrors returns true if there are any error-level messages.
func (v *ValidationResult) HasErrors() bool {
	return v.ErrorCount > 0
}

// HasWarnings returns true if there are any warning-level messages.
func (v *ValidationResult) HasWarnings() bool {
	return v.WarningCount > 0
}

// MessagesForItem returns all validation messages for a specific item.
func (v *ValidationResult) MessagesForItem(itemID string) []ValidationMessage {
	var messages []ValidationMessage
	for _, msg := range v.Messages {
		if msg.ItemID == itemID {
			messages = append(messages, msg)
		}
	}
	return messages
}

// MessagesBySeverity returns all messages of a specific severity.
func (v *ValidationResult) MessagesBySeverity(severity ValidationSeverity) []ValidationMessage {
	var messages []ValidationMessage
	for _, msg := range v.Messages {
		if msg.Severity == severity {
			messages = append(messages, msg)
		}
	}
	return messages
}

// add appends a message and updates the counters.
func (v *ValidationResult) add(msg ValidationMessage) {
	v.Messages = append(v.Messages, msg)
	switch msg.Severity {
	case SeverityError:
		v.IsValid = false
		v.ErrorCount++
	case SeverityWarning:
		v.WarningCount++
	case SeverityInfo:
		v.InfoCount++
	}
}

// -----------------------------------------------------------------------------
// Batch Validation
// -----------------------------------------------------------------------------

// ValidateBatch performs comprehensive validation of a batch of work items.
// It checks for structural issues and dependency problems and returns a
// ValidationResult containing all issues found.
func ValidateBatch(items []WorkItem) *ValidationResult {
	result := &ValidationResult{
		IsValid:  true,
		Messages: make([]ValidationMessage, 0),
	}

	if len(items) == 0 {
		result.add(ValidationMessage{
			Severity:   SeverityError,
			Message:    "Batch has no work items",
			Suggestion: "Parse or add at least one work item",
		})
		return result
	}

	for _, msg := range validateItems(items) {
		result.add(msg)
	}

	// Check for dependency cycles
	if cycle := DetectDependencyCycle(items); cycle != nil {
		result.add(ValidationMessage{
			Severity:   SeverityError,
			Message:    fmt.Sprintf("Dependency cycle detected: %s", strings.Join(cycle, " -> ")),
			RelatedIDs: cycle,
			Field:      "dependencies",
			Suggestion: "Remove one of the dependencies to break the cycle",
		})
	}

	return result
}

// validateItems validates each item of a batch individually.
// It checks for:
//   - Duplicate ids (errors)
//   - Blank descriptions (errors)
//   - Self-dependencies and references to unknown items (errors)
//   - Out-of-range complexity, non-positive duration, unknown mode (warnings)
//   - Missing competency tags (info; the normalizer fills them)
func validateItems(items []WorkItem) []ValidationMessage {
	var messages []ValidationMessage

	// Build item id set for reference checks, flagging duplicates as we go.
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if seen[item.ID] {
			messages = append(messages, ValidationMessage{
				Severity:   SeverityError,
				Message:    fmt.Sprintf("Duplicate item id '%s'", item.ID),
				ItemID:     item.ID,
				Field:      "id",
				Suggestion: "Renormalize the batch to regenerate unique ids",
			})
		}
		seen[item.ID] = true
	}

	for _, item := range items {
		// Check for blank description (error)
		if strings.TrimSpace(item.Description) == "" {
			messages = append(messages, ValidationMessage{
				Severity:   SeverityError,
				Message:    "Work item has no description",
				ItemID:     item.ID,
				Field:      "description",
				Suggestion: "Every item needs a statement of the work to do",
			})
		}

		// Check for self-dependency (error)
		for _, depID := range item.DependsOn {
			if depID == item.ID {
				messages = append(messages, ValidationMessage{
					Severity:   SeverityError,
					Message:    "Work item depends on itself",
					ItemID:     item.ID,
					Field:      "dependencies",
					RelatedIDs: []string{item.ID},
					Suggestion: "Remove the self-dependency",
				})
			}
		}

		// Check for invalid dependency references (error)
		for _, depID := range item.DependsOn {
			if depID != item.ID && !seen[depID] {
				messages = append(messages, ValidationMessage{
					Severity:   SeverityError,
					Message:    fmt.Sprintf("Depends on unknown item '%s'", depID),
					ItemID:     item.ID,
					Field:      "dependencies",
					RelatedIDs: []string{depID},
					Suggestion: fmt.Sprintf("Remove '%s' from dependencies or keep the referenced item in the batch", depID),
				})
			}
		}

		// Check complexity range (warning - the normalizer clamps)
		if item.Complexity < MinComplexity || item.Complexity > MaxComplexity {
			messages = append(messages, ValidationMessage{
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("Complexity %d outside range %d-%d", item.Complexity, MinComplexity, MaxComplexity),
				ItemID:     item.ID,
				Field:      "complexity",
				Suggestion: "Renormalize the batch to clamp complexity",
			})
		}

		// Check duration (warning - the normalizer derives one)
		if item.DurationMinutes <= 0 {
			messages = append(messages, ValidationMessage{
				Severity:   SeverityWarning,
				Message:    "Work item has no estimated duration",
				ItemID:     item.ID,
				Field:      "estimated_duration_minutes",
				Suggestion: "Renormalize the batch to derive a duration from complexity",
			})
		}

		// Check collaboration mode (warning - the normalizer defaults)
		if item.Mode != "" && !item.Mode.IsValid() {
			messages = append(messages, ValidationMessage{
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("Unknown collaboration mode '%s'", item.Mode),
				ItemID:     item.ID,
				Field:      "collaboration_mode",
				Suggestion: "Use one of: individual, pair, group",
			})
		}

		// Missing competencies (info - the normalizer fills a default tag)
		if !item.HasCompetencies() {
			messages = append(messages, ValidationMessage{
				Severity:   SeverityInfo,
				Message:    "Work item carries no competency tags",
				ItemID:     item.ID,
				Field:      "required_competencies",
				Suggestion: "The normalizer will tag it 'transversal'",
			})
		}
	}

	return messages
}

// DetectDependencyCycle detects if there is a dependency cycle in the batch.
// Returns the item ids forming the cycle if found, nil otherwise.
func DetectDependencyCycle(items []WorkItem) []string {
	if len(items) == 0 {
		return nil
	}

	// Track visited and recursion stack
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	parent := make(map[string]string)

	var dfs func(itemID string) []string
	dfs = func(itemID string) []string {
		visited[itemID] = true
		recStack[itemID] = true

		item := ItemByID(items, itemID)
		if item == nil {
			recStack[itemID] = false
			return nil
		}

		for _, depID := range item.DependsOn {
			if !visited[depID] {
				parent[depID] = itemID
				if cycle := dfs(depID); cycle != nil {
					return cycle
				}
			} else if recStack[depID] {
				// Found a cycle - reconstruct it
				cycle := []string{depID}
				current := itemID
				for current != depID {
					cycle = append([]string{current}, cycle...)
					current = parent[current]
				}
				cycle = append([]string{depID}, cycle...)
				return cycle
			}
		}

		recStack[itemID] = false
		return nil
	}

	for _, item := range items {
		if !visited[item.ID] {
			if cycle := dfs(item.ID); cycle != nil {
				return cycle
			}
		}
	}

	return nil
}

// DependenciesSatisfied reports whether every dependency of the item appears
// in the done set. Items without dependencies are always satisfied.
func DependenciesSatisfied(item WorkItem, done map[string]bool) bool {
	for _, depID := range item.DependsOn {
		if !done[depID] {
			return false
		}
	}
	return true
}
