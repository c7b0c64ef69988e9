package nudge

import (
	"github.com/brk3/habitcal/internal/state"
	"github.com/brk3/habitcal/pkg/habit"
)

type mockQuerier struct {
	days map[habit.Date]state.DayView
}

func (m *mockQuerier) Day(d habit.Date) state.DayView {
	return m.days[d]
}
