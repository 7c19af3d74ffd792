package boardui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/board"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

const (
	minColumnWidth = 18
	columnGap      = 1
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
	focusedColumnStyle = columnStyle.BorderForeground(lipgloss.Color("12"))
	hoverColumnStyle   = columnStyle.BorderForeground(lipgloss.Color("10"))
	titleStyle         = lipgloss.NewStyle().Bold(true)
	cursorStyle        = lipgloss.NewStyle().Reverse(true)
	draggedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Italic(true)
	dimStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noticeStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func (model Model) View() string {
	var b strings.Builder

	header := fmt.Sprintf("Application Tracker  ·  %d jobs  ·  sort: %s", model.store.Len(), model.sortKey)
	if model.search != "" || model.filtering {
		header += fmt.Sprintf("  ·  filter: %s", model.search)
		if model.filtering {
			header += "▏"
		}
	}
	if model.loading {
		header += "  ·  loading…"
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	cols := model.columns()
	width := model.columnWidth()
	rendered := make([]string, 0, len(cols))
	for i, st := range models.Statuses() {
		rendered = append(rendered, model.renderColumn(i, st, cols[st], width))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n")

	if model.notice != "" {
		b.WriteString(noticeStyle.Render(model.notice))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(model.helpLine()))
	return b.String()
}

func (model Model) columnWidth() int {
	n := len(models.Statuses())
	if model.width <= 0 {
		return minColumnWidth + 8
	}
	// border (2) + padding (2) + gap per column
	w := model.width/n - 4 - columnGap
	if w < minColumnWidth {
		return minColumnWidth
	}
	return w
}

func (model Model) renderColumn(index int, status models.ApplicationStatus, cards []board.Record, width int) string {
	style := columnStyle
	if index == model.column {
		style = focusedColumnStyle
	}
	if hover, ok := model.controller.HoverStatus(); ok && hover == status {
		style = hoverColumnStyle
	}

	active, dragging := model.controller.Active()
	lines := []string{titleStyle.Render(fmt.Sprintf("%s (%d)", status.Label(), len(cards)))}
	if len(cards) == 0 {
		lines = append(lines, dimStyle.Render("—"))
	}
	for row, rec := range cards {
		line := truncate(cardLabel(rec, model.engine.InFlight(rec.ID)), width)
		switch {
		case dragging && rec.ID == active:
			line = draggedStyle.Render(line)
		case index == model.column && row == model.row:
			line = cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return style.Width(width).MarginRight(columnGap).Render(strings.Join(lines, "\n"))
}

func cardLabel(rec board.Record, inFlight bool) string {
	title := rec.PositionTitle
	if title == "" {
		title = "(untitled)"
	}
	label := title
	if rec.Company != "" {
		label += " · " + rec.Company
	}
	if inFlight {
		label = "⟳ " + label
	}
	return label
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

func (model Model) helpLine() string {
	if model.filtering {
		return "type to filter · Enter apply · Esc clear"
	}
	k := model.keys
	bindings := []string{
		k.Left.Help().Key + "/" + k.Right.Help().Key + " columns",
		k.Up.Help().Key + "/" + k.Down.Help().Key + " cards",
	}
	if model.controller.State() == board.Idle {
		bindings = append(bindings, k.Grab.Help().Key+" grab")
	} else {
		bindings = append(bindings, k.Grab.Help().Key+" drop", k.Cancel.Help().Key+" cancel")
	}
	bindings = append(bindings,
		k.FilterActivate.Help().Key+" filter",
		k.CycleSort.Help().Key+" sort",
		k.Refresh.Help().Key+" reload",
		k.Quit.Help().Key+" quit",
	)
	return strings.Join(bindings, " · ")
}
