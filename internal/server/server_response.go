package server

import (
	"github.com/brk3/habitcal/internal/syncer"
	"github.com/brk3/habitcal/pkg/habit"
)

type HabitListResponse struct {
	Habits []habit.Habit `json:"habits"`
}

// CreateHabitRequest creates a daily habit when Date is empty and a
// specific one otherwise. Date accepts anything dateinput.Parse does.
type CreateHabitRequest struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

type CreateSeriesRequest struct {
	Prefix string `json:"prefix"`
	Start  string `json:"start"`
	Count  int    `json:"count"`
}

type SyncResponse struct {
	Habits int `json:"habits"`
	Logs   int `json:"logs"`
}

type WritesResponse struct {
	Writes []syncer.Write             `json:"writes"`
	Counts map[syncer.WriteStatus]int `json:"counts"`
}

type ClearWritesResponse struct {
	Cleared int `json:"cleared"`
}
