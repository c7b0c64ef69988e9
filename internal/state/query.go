package state

import "github.com/brk3/habitcal/pkg/habit"

type Task struct {
	Habit habit.Habit `json:"habit"`
	Done  bool        `json:"done"`
}

// DayView is everything a task-list renderer needs for one date.
type DayView struct {
	Date      habit.Date `json:"date"`
	Tasks     []Task     `json:"tasks"`
	Completed int        `json:"completed"`
	Total     int        `json:"total"`
	Percent   int        `json:"percent"`
}

// DailyHabits returns the habits due on d, in insertion order.
func (s *Store) DailyHabits(d habit.Date) []habit.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dailyHabitsLocked(d)
}

func (s *Store) dailyHabitsLocked(d habit.Date) []habit.Habit {
	out := []habit.Habit{}
	for _, h := range s.habits {
		if h.OccursOn(d) {
			out = append(out, h)
		}
	}
	return out
}

// IsDone reports whether a log exists for habitID on d.
func (s *Store) IsDone(habitID string, d habit.Date) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isDoneLocked(habitID, d)
}

func (s *Store) isDoneLocked(habitID string, d habit.Date) bool {
	for _, l := range s.logs {
		if l.HabitID == habitID && l.Date == d {
			return true
		}
	}
	return false
}

func (s *Store) Day(d habit.Date) DayView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	due := s.dailyHabitsLocked(d)
	view := DayView{Date: d, Tasks: make([]Task, 0, len(due)), Total: len(due)}
	for _, h := range due {
		done := s.isDoneLocked(h.ID, d)
		if done {
			view.Completed++
		}
		view.Tasks = append(view.Tasks, Task{Habit: h, Done: done})
	}
	view.Percent = habit.Percent(view.Completed, view.Total)
	return view
}

// HasScheduled reports whether any habit targets d specifically. Daily
// habits do not count.
func (s *Store) HasScheduled(d habit.Date) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.habits {
		if h.TargetDate == d {
			return true
		}
	}
	return false
}
