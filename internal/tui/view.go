package tui

import (
	"fmt"
	"strings"

	"github.com/brk3/habitcal/internal/syncer"
	"github.com/brk3/habitcal/pkg/habit"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateAddHabit, StateAddSeries:
		content = panelStyle.Render(m.form.View())
	default:
		content = lipgloss.JoinHorizontal(
			lipgloss.Top,
			panelStyle.Render(m.viewCalendar()),
			panelStyle.Render(m.viewTasks()),
		)
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		m.viewStatus(),
		m.help.View(m.keys),
	))
}

func (m Model) viewCalendar() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.month.Time().Format("January 2006")))
	b.WriteString("\n\n")
	b.WriteString(weekdayStyle.Render("Su  Mo  Tu  We  Th  Fr  Sa"))
	b.WriteString("\n")

	today := m.today()
	for _, week := range MonthGrid(m.month.Year(), m.month.Month()) {
		cells := make([]string, 0, len(week))
		for _, d := range week {
			cells = append(cells, m.viewDay(d, today))
		}
		b.WriteString(strings.Join(cells, ""))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewDay(d, today habit.Date) string {
	if d.IsZero() {
		return "    "
	}
	style := dayStyle
	switch {
	case d == m.selected:
		style = selectedStyle
	case d == today:
		style = todayStyle
	}
	dot := " "
	if m.store.HasScheduled(d) {
		dot = dotStyle.Render("•")
	}
	return style.Render(fmt.Sprintf("%2d", d.Day())) + dot + " "
}

func (m Model) viewTasks() string {
	view := m.store.Day(m.selected)

	var b strings.Builder
	b.WriteString(titleStyle.Render(TaskTitle(m.selected, m.today())))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d Tasks · %d%% done", view.Total, view.Percent)))
	b.WriteString("\n\n")

	if len(view.Tasks) == 0 {
		b.WriteString(mutedStyle.Render("No tasks for this day."))
		return b.String()
	}

	for i, task := range view.Tasks {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		check := "[ ]"
		name := task.Habit.Name
		if task.Done {
			check = "[x]"
			name = doneStyle.Render(name)
		}
		meta := "Daily"
		if task.Habit.Freq == habit.Specific {
			meta = "Scheduled"
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", cursor, check, name, mutedStyle.Render(meta))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewStatus() string {
	counts := m.engine.WriteCounts()
	var parts []string
	if n := counts[syncer.StatusPending]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", n))
	}
	if n := counts[syncer.StatusFailed]; n > 0 {
		parts = append(parts, failedStyle.Render(fmt.Sprintf("%d failed", n)))
	}
	status := "synced"
	if len(parts) > 0 {
		status = strings.Join(parts, ", ")
	}
	line := mutedStyle.Render(string(m.engine.Mode())+" · ") + status
	if m.alert != "" {
		line += "  " + alertStyle.Render(m.alert)
	}
	return line
}
