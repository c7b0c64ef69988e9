package habit

import "math"

type Frequency string

const (
	Daily    Frequency = "Daily"
	Specific Frequency = "Specific"
)

type Habit struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Freq       Frequency `json:"freq"`
	TargetDate Date      `json:"targetDate"`
}

// OccursOn reports whether h is due on d. A habit with a target date is due
// only on that date; otherwise it is due every day if it is Daily.
func (h Habit) OccursOn(d Date) bool {
	if !h.TargetDate.IsZero() {
		return h.TargetDate == d
	}
	return h.Freq == Daily
}

// Log records that a habit was completed on a date. HabitID is a weak
// reference: the habit may no longer exist.
type Log struct {
	HabitID string `json:"habitId"`
	Date    Date   `json:"date"`
}

// Snapshot is the full habit and log collection as held by one side.
type Snapshot struct {
	Habits []Habit `json:"habits"`
	Logs   []Log   `json:"logs"`
}

// Percent returns done/total as a whole percentage, rounded half up. It is 0
// when total is 0.
func Percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
