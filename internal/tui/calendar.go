package tui

import (
	"time"

	"github.com/brk3/habitcal/pkg/habit"
)

// MonthGrid lays out a month as Sunday-first weeks. Cells outside the month
// are zero Dates.
func MonthGrid(year int, month time.Month) [][]habit.Date {
	first := habit.NewDate(year, month, 1)
	lead := int(first.Weekday())
	days := habit.NewDate(year, month+1, 0).Day()

	var weeks [][]habit.Date
	week := make([]habit.Date, lead, 7)
	for day := 1; day <= days; day++ {
		week = append(week, habit.NewDate(year, month, day))
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = make([]habit.Date, 0, 7)
		}
	}
	if len(week) > 0 {
		weeks = append(weeks, append(week, make([]habit.Date, 7-len(week))...))
	}
	return weeks
}

// TaskTitle heads the task list: "Today's Tasks" for today, otherwise a
// long date such as "Wednesday, Jan 31".
func TaskTitle(selected, today habit.Date) string {
	if selected == today {
		return "Today's Tasks"
	}
	return selected.Time().Format("Monday, Jan 2")
}
