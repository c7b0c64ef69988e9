package nudge

import (
	"github.com/brk3/habitcal/internal/state"
	"github.com/brk3/habitcal/pkg/habit"
)

// Querier is the read side of the state store that nudging needs.
type Querier interface {
	Day(d habit.Date) state.DayView
}

type Notifier interface {
	SendNudge(tasks []string, date habit.Date) error
}
