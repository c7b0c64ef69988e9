package nudge

import "github.com/brk3/habitcal/pkg/habit"

type mockNotifier struct {
	called bool
	tasks  []string
	date   habit.Date
	err    error
}

func (m *mockNotifier) SendNudge(tasks []string, date habit.Date) error {
	m.called = true
	m.tasks = tasks
	m.date = date
	return m.err
}
