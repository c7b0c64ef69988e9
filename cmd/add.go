package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/brk3/habitcal/internal/dateinput"
	"github.com/brk3/habitcal/pkg/habit"
	"github.com/spf13/cobra"
)

var addDate string

var addCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a habit",
	Long: `The "add" command creates a daily habit, or a one-off task when --date
is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := dateinput.Parse(addDate, time.Now())
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
		freq := habit.Daily
		if !target.IsZero() {
			freq = habit.Specific
		}

		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.Restore(); err != nil {
			return err
		}
		h, err := a.engine.CreateHabit(strings.Join(args, " "), freq, target)
		if err != nil {
			return err
		}
		a.engine.Wait()
		if err := a.failedWrites(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case h.ID == "":
			fmt.Fprintf(out, "Submitted %q\n", h.Name)
		case freq == habit.Specific:
			fmt.Fprintf(out, "Added %q for %s (%s)\n", h.Name, h.TargetDate, h.ID)
		default:
			fmt.Fprintf(out, "Added %q (%s)\n", h.Name, h.ID)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "schedule a one-off task on this day")
	rootCmd.AddCommand(addCmd)
}
