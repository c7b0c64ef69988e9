// Package tui is the terminal renderer: a month calendar beside the task
// list for the selected day, with modal forms for adding habits.
package tui

import (
	"github.com/brk3/habitcal/internal/state"
	"github.com/brk3/habitcal/internal/syncer"
	"github.com/brk3/habitcal/pkg/habit"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

type SessionState int

const (
	StateBrowse SessionState = iota
	StateAddHabit
	StateAddSeries
)

// renderMsg is sent by the sync engine whenever local state changes.
type renderMsg struct{}

type Model struct {
	engine *syncer.Engine
	store  *state.Store

	state      SessionState
	keys       KeyMap
	help       help.Model
	form       *huh.Form
	habitForm  *HabitFormModel
	seriesForm *SeriesFormModel

	// month is the first day of the month shown in the calendar.
	month    habit.Date
	selected habit.Date
	cursor   int

	alert    string
	quitting bool
	width    int
	height   int

	today func() habit.Date
}

func NewModel(engine *syncer.Engine) Model {
	today := habit.Today()
	return Model{
		engine:   engine,
		store:    engine.Store(),
		state:    StateBrowse,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		month:    habit.NewDate(today.Year(), today.Month(), 1),
		selected: today,
		today:    habit.Today,
	}
}

// Init starts the engine from a command so that its first render reaches a
// running program.
func (m Model) Init() tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		engine.Start()
		return nil
	}
}

func (m Model) tasks() []state.Task {
	return m.store.Day(m.selected).Tasks
}

func (m *Model) selectDate(d habit.Date) {
	m.selected = d
	m.month = habit.NewDate(d.Year(), d.Month(), 1)
	m.cursor = 0
}

func (m *Model) clampCursor() {
	n := len(m.tasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// NewProgram wraps a model for engine in a program and makes the program the
// engine's renderer.
func NewProgram(engine *syncer.Engine, opts ...tea.ProgramOption) *tea.Program {
	p := tea.NewProgram(NewModel(engine), opts...)
	// The engine renders synchronously from inside Update, and Send blocks
	// until the event loop that is running Update reads the message.
	engine.SetRenderer(syncer.RenderFunc(func() {
		go p.Send(renderMsg{})
	}))
	return p
}

// Run blocks until the user quits.
func Run(engine *syncer.Engine) error {
	_, err := NewProgram(engine, tea.WithAltScreen()).Run()
	return err
}
