package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/assign"
	"github.com/atelier-edu/reparto/internal/participant"
	"github.com/atelier-edu/reparto/internal/render"
	"github.com/atelier-edu/reparto/internal/util"
)

// view selects which panel the browser shows.
type view int

const (
	// viewList shows the participant list.
	viewList view = iota
	// viewDetail shows one participant's items, one at a time.
	viewDetail
)

// chromeLines is the vertical space the title and help bar take away
// from the list.
const chromeLines = 4

var detailBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(render.MutedColor).
	Padding(1, 2)

// Model is the browser state. All fields are value types or rebuilt on
// navigation, so Update can stay a value method.
type Model struct {
	record *assign.Record
	items  map[string]activity.WorkItem

	list list.Model
	help help.Model
	keys keyMap

	view     view
	selected participantEntry
	itemIdx  int

	width    int
	height   int
	ready    bool
	quitting bool
}

// NewModel builds the browser over a computed record. Items provide the
// detail card content; profiles provide names and support needs.
func NewModel(record *assign.Record, items []activity.WorkItem, profiles []participant.Profile) Model {
	byID := make(map[string]activity.WorkItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	l := list.New(buildEntries(record, profiles), list.NewDefaultDelegate(), 0, 0)
	l.Title = "Participants"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	return Model{
		record: record,
		items:  byID,
		list:   l,
		help:   help.New(),
		keys:   defaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.list.SetSize(msg.Width, msg.Height-chromeLines)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeypress(msg)
	}

	return m, nil
}

// handleKeypress processes keyboard input for the active view.
func (m Model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the user is typing a filter the list owns every key.
	if m.view == viewList && m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.view == viewDetail {
		return m.handleDetailKeypress(msg)
	}

	if key.Matches(msg, m.keys.Select) {
		if entry, ok := m.list.SelectedItem().(participantEntry); ok {
			m.selected = entry
			m.itemIdx = 0
			m.view = viewDetail
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.view = viewList

	case key.Matches(msg, m.keys.NextItem):
		if n := len(m.selected.assignments); n > 0 {
			m.itemIdx = (m.itemIdx + 1) % n
		}

	case key.Matches(msg, m.keys.PrevItem):
		if n := len(m.selected.assignments); n > 0 {
			m.itemIdx = (m.itemIdx - 1 + n) % n
		}
	}
	return m, nil
}

// View renders the browser.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(render.Title.Render("Assignment browser"))
	b.WriteString("\n\n")

	if m.view == viewDetail {
		b.WriteString(m.detailView())
	} else {
		b.WriteString(m.list.View())
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// detailView renders one participant with one of their items at a time.
func (m Model) detailView() string {
	var b strings.Builder

	// Descriptions and rationales are model-generated free text and can
	// run long; clamp them to the card's inner width.
	inner := m.width - detailBox.GetHorizontalFrameSize()
	if inner < 24 {
		inner = 24
	}

	p := m.selected.profile
	name := p.Name
	if name == "" {
		name = p.ID
	}
	neurotype := p.Neurotype
	if neurotype == "" {
		neurotype = participant.NeurotypeTypical
	}
	b.WriteString(render.Section.Render(name))
	b.WriteString(" " + render.Muted.Render(fmt.Sprintf("(%s, %s, %d%% available)", p.ID, neurotype, p.Availability)))
	if len(p.SupportNeeds) > 0 {
		b.WriteString("\n" + render.Muted.Render("support: "+strings.Join(p.SupportNeeds, ", ")))
	}
	b.WriteString("\n\n")

	n := len(m.selected.assignments)
	if n == 0 {
		b.WriteString(render.Muted.Render("No items this round."))
		return b.String()
	}

	a := m.selected.assignments[m.itemIdx]
	var card strings.Builder
	if item, ok := m.items[a.ItemID]; ok {
		card.WriteString(util.TruncateANSI(render.Section.Render(item.ID)+" "+item.Description, inner) + "\n")
		card.WriteString(fmt.Sprintf("%s, complexity %d, %s %s, %d min\n",
			item.Stage, item.Complexity, render.ModeIcon(item.Mode), item.Mode, item.DurationMinutes))
		if len(item.DependsOn) > 0 {
			card.WriteString(render.Muted.Render("depends on "+strings.Join(item.DependsOn, ", ")) + "\n")
		}
	} else {
		card.WriteString(render.Section.Render(a.ItemID) + "\n")
	}
	card.WriteString(fmt.Sprintf("score %.2f\n", a.Score))
	card.WriteString(util.TruncateANSI(render.Muted.Render(a.Rationale), inner))

	b.WriteString(detailBox.Render(card.String()))
	b.WriteString("\n" + render.Muted.Render(fmt.Sprintf("item %d of %d", m.itemIdx+1, n)))
	return b.String()
}
