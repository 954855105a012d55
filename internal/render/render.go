// Package render produces the human-readable views the CLI prints:
// work item and roster tables, per-participant assignment records, and
// deliberation summaries. Every renderer returns a string so callers
// decide where it goes; color degrades automatically on dumb terminals.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/assign"
	"github.com/atelier-edu/reparto/internal/consensus"
	"github.com/atelier-edu/reparto/internal/parse"
	"github.com/atelier-edu/reparto/internal/participant"
	"github.com/atelier-edu/reparto/internal/pipeline"
)

// descriptionWidth caps the widest free-text column so tables survive
// narrow terminals.
const descriptionWidth = 48

// ItemsTable renders a work item batch as a table.
func ItemsTable(items []activity.WorkItem) string {
	if len(items) == 0 {
		return Muted.Render("no work items")
	}
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"ID", "Description", "Stage", "Cx", "Mode", "Min", "Depends on"})
	for _, it := range items {
		tw.AppendRow(table.Row{
			it.ID,
			it.Description,
			string(it.Stage),
			it.Complexity,
			fmt.Sprintf("%s %s", ModeIcon(it.Mode), it.Mode),
			it.DurationMinutes,
			strings.Join(it.DependsOn, ", "),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: descriptionWidth}})
	return tw.Render()
}

// RosterTable renders participant profiles as a table.
func RosterTable(profiles []participant.Profile) string {
	if len(profiles) == 0 {
		return Muted.Render("no participants")
	}
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"ID", "Name", "Neurotype", "Avail", "Strengths", "Support needs"})
	for _, p := range profiles {
		tw.AppendRow(table.Row{
			p.ID,
			p.Name,
			string(p.Neurotype),
			fmt.Sprintf("%d%%", p.Availability),
			strings.Join(p.Strengths, ", "),
			strings.Join(p.SupportNeeds, ", "),
		})
	}
	return tw.Render()
}

// RecordTable renders an assignment record grouped by participant, with
// a metadata line naming the path that produced it. Profiles supply
// display names; ids missing from the roster render bare. Participants
// the record holds with no items get a placeholder row, since the record
// keeps them to distinguish "unassigned" from "not in the roster".
func RecordTable(record *assign.Record, profiles []participant.Profile) string {
	if record == nil || record.TotalAssigned() == 0 {
		return Muted.Render("no assignments")
	}

	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.Name
	}

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Participant", "Item", "Score", "Rationale"})
	for gi, pid := range record.ParticipantIDs() {
		if gi > 0 {
			tw.AppendSeparator()
		}
		label := pid
		if name := names[pid]; name != "" && name != pid {
			label = fmt.Sprintf("%s (%s)", name, pid)
		}
		list := record.Assignments[pid]
		if len(list) == 0 {
			tw.AppendRow(table.Row{label, "-", "", "no items this round"})
			continue
		}
		for i, a := range list {
			cell := label
			if i > 0 {
				cell = ""
			}
			tw.AppendRow(table.Row{cell, a.ItemID, fmt.Sprintf("%.2f", a.Score), a.Rationale})
		}
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 4, WidthMax: descriptionWidth}})

	meta := fmt.Sprintf("path: %s", record.Path)
	if record.BackFilled {
		meta += ", rebalanced for capacity"
	}
	return tw.Render() + "\n" + Muted.Render(meta)
}

// DecisionSummary renders a deliberation decision: a type badge, the
// agreed structure, and whatever adaptations and adjustments the
// proposers contributed.
func DecisionSummary(d *consensus.Decision) string {
	if d == nil {
		return Muted.Render("no deliberation")
	}

	var b strings.Builder
	badge := Badge.Background(DecisionColor(d.Type)).Render(string(d.Type))
	b.WriteString(fmt.Sprintf("%s score %.2f\n", badge, d.Score))

	b.WriteString(Section.Render("Structure") + "\n")
	b.WriteString(indent(d.Structure) + "\n")
	if d.AdaptationRequirements != "" {
		b.WriteString(Section.Render("Adaptations") + "\n")
		b.WriteString(indent(d.AdaptationRequirements) + "\n")
	}
	if d.FeasibilityAdjustments != "" {
		b.WriteString(Section.Render("Feasibility") + "\n")
		b.WriteString(indent(d.FeasibilityAdjustments) + "\n")
	}
	if len(d.FailedProposers) > 0 {
		b.WriteString(Warn.Render("failed proposers: "+strings.Join(d.FailedProposers, ", ")) + "\n")
	}
	b.WriteString(Muted.Render(d.Rationale))
	return b.String()
}

// ValidationReport renders validation findings one line per message,
// with suggestions indented under their finding.
func ValidationReport(v *activity.ValidationResult) string {
	if v == nil || len(v.Messages) == 0 {
		return Good.Render("validation: clean")
	}

	var b strings.Builder
	for _, msg := range v.Messages {
		line := fmt.Sprintf("%s %s", SeverityIcon(msg.Severity), msg.Message)
		if msg.ItemID != "" {
			line += fmt.Sprintf(" [%s]", msg.ItemID)
		}
		b.WriteString(lipgloss.NewStyle().Foreground(SeverityColor(msg.Severity)).Render(line) + "\n")
		if msg.Suggestion != "" {
			b.WriteString(Muted.Render("  "+msg.Suggestion) + "\n")
		}
	}
	b.WriteString(fmt.Sprintf("%d error(s), %d warning(s), %d info", v.ErrorCount, v.WarningCount, v.InfoCount))
	return b.String()
}

// ConfidenceBadge renders a parse confidence grade in its color.
func ConfidenceBadge(c parse.Confidence) string {
	return lipgloss.NewStyle().Foreground(ConfidenceColor(c)).Render(string(c))
}

// CoherenceLine renders the closing coherence check: a single green
// line when the result holds together, the score plus its issues when
// it does not.
func CoherenceLine(c pipeline.Coherence) string {
	if c.Valid() {
		return Good.Render(fmt.Sprintf("coherence %.2f", c.Score))
	}
	var b strings.Builder
	b.WriteString(Bad.Render(fmt.Sprintf("coherence %.2f, below %.1f", c.Score, pipeline.CoherenceThreshold)))
	for _, issue := range c.Issues {
		b.WriteString("\n" + Muted.Render("  "+issue))
	}
	return b.String()
}

// ResultSummary renders a full pipeline result: provenance, the item
// batch, validation findings when present, the deliberation outcome
// when one ran, the assignment record, and the coherence check.
func ResultSummary(res *pipeline.Result, profiles []participant.Profile) string {
	var b strings.Builder
	b.WriteString(Title.Render("Assignment result") + "\n")
	b.WriteString(Muted.Render("request "+res.RequestID) + "\n")

	conf := ConfidenceBadge(res.ParseConfidence)
	b.WriteString(fmt.Sprintf("parsed via %s (%s), assigned via %s\n", res.ParseStrategy, conf, res.AssignmentPath))
	if res.Degraded() {
		b.WriteString(Warn.Render("parse degraded: review the batch before relying on it") + "\n")
	}

	b.WriteString("\n" + Section.Render("Work items") + "\n")
	b.WriteString(ItemsTable(res.Items) + "\n")

	if res.Validation != nil && len(res.Validation.Messages) > 0 {
		b.WriteString("\n" + Section.Render("Validation") + "\n")
		b.WriteString(ValidationReport(res.Validation) + "\n")
	}

	if res.Decision != nil {
		b.WriteString("\n" + Section.Render("Deliberation") + "\n")
		b.WriteString(DecisionSummary(res.Decision) + "\n")
	}

	b.WriteString("\n" + Section.Render("Assignments") + "\n")
	b.WriteString(RecordTable(res.Record, profiles) + "\n")

	b.WriteString("\n" + CoherenceLine(res.Coherence))
	return b.String()
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
