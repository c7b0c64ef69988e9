package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brk3/habitcal/internal/dateinput"
	"github.com/brk3/habitcal/internal/syncer"
	"github.com/charmbracelet/huh"
)

type HabitFormModel struct {
	Name string
	Date string
}

type SeriesFormModel struct {
	Prefix string
	Start  string
	Count  string
}

func notEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

func validCount(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("count must be a number")
	}
	if n < 1 {
		return fmt.Errorf("count must be at least 1")
	}
	if n > syncer.MaxSeriesCount {
		return syncer.ErrCountTooLarge
	}
	return nil
}

func NewHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(notEmpty("habit name")),
			huh.NewInput().
				Title("Date").
				Description("Leave empty for a daily habit; YYYY-MM-DD or e.g. \"next friday\"").
				Value(&fm.Date).
				Validate(dateinput.Validate),
		),
	).WithTheme(huh.ThemeDracula())
}

func NewSeriesForm(fm *SeriesFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Series Name").
				Description("Habits are named \"<name> 1\", \"<name> 2\", ...").
				Value(&fm.Prefix).
				Validate(notEmpty("series name")),
			huh.NewInput().
				Title("Start Date").
				Value(&fm.Start).
				Validate(func(s string) error {
					if err := notEmpty("start date")(s); err != nil {
						return err
					}
					return dateinput.Validate(s)
				}),
			huh.NewInput().
				Title("Count").
				Description("One habit per day").
				Value(&fm.Count).
				Validate(validCount),
		),
	).WithTheme(huh.ThemeDracula())
}
