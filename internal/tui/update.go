package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brk3/habitcal/internal/dateinput"
	"github.com/brk3/habitcal/internal/syncer"
	"github.com/brk3/habitcal/pkg/habit"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case renderMsg:
		m.clampCursor()
		return m, nil
	}

	switch m.state {
	case StateAddHabit, StateAddSeries:
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key dismisses the last alert.
	m.alert = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.PrevDay):
		m.selectDate(m.selected.AddDays(-1))
	case key.Matches(msg, m.keys.NextDay):
		m.selectDate(m.selected.AddDays(1))
	case key.Matches(msg, m.keys.PrevMonth):
		m.month = habit.NewDate(m.month.Year(), m.month.Month()-1, 1)
	case key.Matches(msg, m.keys.NextMonth):
		m.month = habit.NewDate(m.month.Year(), m.month.Month()+1, 1)
	case key.Matches(msg, m.keys.Today):
		m.selectDate(m.today())
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tasks())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.Refresh):
		m.engine.Refresh()
		m.alert = "Refreshing..."
	case key.Matches(msg, m.keys.Clear):
		if n := m.engine.ClearFailedWrites(); n > 0 {
			m.alert = fmt.Sprintf("Cleared %d failed writes", n)
		}
	case key.Matches(msg, m.keys.Add):
		m.habitForm = &HabitFormModel{}
		m.form = NewHabitForm(m.habitForm)
		m.state = StateAddHabit
		return m, m.form.Init()
	case key.Matches(msg, m.keys.Series):
		m.seriesForm = &SeriesFormModel{Start: m.today().String()}
		m.form = NewSeriesForm(m.seriesForm)
		m.state = StateAddSeries
		return m, m.form.Init()
	}
	return m, nil
}

// toggle marks the task under the cursor done. Completed tasks stay
// completed.
func (m *Model) toggle() {
	tasks := m.tasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return
	}
	task := tasks[m.cursor]
	if err := m.engine.ToggleCompletion(task.Habit.ID, m.selected, task.Done); err != nil {
		m.alert = err.Error()
	}
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateBrowse
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.state == StateAddHabit {
			m = m.submitHabit()
		} else {
			m = m.submitSeries()
		}
		m.state = StateBrowse
		m.form = nil
		return m, nil
	case huh.StateAborted:
		m.state = StateBrowse
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m Model) submitHabit() Model {
	fm := m.habitForm
	target, err := dateinput.Parse(fm.Date, time.Now())
	if err != nil {
		m.alert = err.Error()
		return m
	}
	freq := habit.Daily
	if !target.IsZero() {
		freq = habit.Specific
	}
	h, err := m.engine.CreateHabit(fm.Name, freq, target)
	if err != nil {
		m.alert = err.Error()
		return m
	}
	if m.engine.Mode() == syncer.ModeNetworkOnly {
		m.alert = fmt.Sprintf("Submitted %q", h.Name)
	}
	return m
}

func (m Model) submitSeries() Model {
	fm := m.seriesForm
	start, err := dateinput.Parse(fm.Start, time.Now())
	if err != nil {
		m.alert = err.Error()
		return m
	}
	count, err := strconv.Atoi(strings.TrimSpace(fm.Count))
	if err != nil {
		m.alert = "count must be a number"
		return m
	}
	habits, err := m.engine.CreateSeries(fm.Prefix, start, count)
	if err != nil {
		m.alert = err.Error()
		return m
	}
	m.alert = fmt.Sprintf("Successfully created %d tasks!", len(habits))
	return m
}
