// Package nudge reminds the user about tasks still open for a day.
package nudge

import (
	"fmt"

	"github.com/brk3/habitcal/internal/logger"
	"github.com/brk3/habitcal/pkg/habit"
)

// Outstanding returns the names of the tasks due on d that have no log yet.
func Outstanding(q Querier, d habit.Date) []string {
	var out []string
	for _, task := range q.Day(d).Tasks {
		if !task.Done {
			out = append(out, task.Habit.Name)
		}
	}
	return out
}

// Nudge notifies n about the outstanding tasks on d and returns them. Nothing
// is sent when every task is done.
func Nudge(q Querier, n Notifier, d habit.Date) ([]string, error) {
	tasks := Outstanding(q, d)
	if len(tasks) == 0 {
		logger.Info("Nothing outstanding, skipping nudge", "date", d)
		return nil, nil
	}
	if err := n.SendNudge(tasks, d); err != nil {
		return nil, fmt.Errorf("send nudge: %w", err)
	}
	logger.Info("Sent nudge", "date", d, "tasks", len(tasks))
	return tasks, nil
}
