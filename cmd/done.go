package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	doneDate string
	doneSync bool
)

var doneCmd = &cobra.Command{
	Use:   "done HABIT_ID",
	Short: "Mark a habit done for a day",
	Long: `The "done" command logs a completion for HABIT_ID (see "habits list").
A habit that is already done for the day is left alone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dayFlag(doneDate)
		if err != nil {
			return err
		}

		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.load(cmd.Context(), doneSync); err != nil {
			return err
		}
		h, ok := a.store.Habit(args[0])
		if !ok {
			return fmt.Errorf("unknown habit %q", args[0])
		}
		if !h.OccursOn(day) {
			return fmt.Errorf("%q is not scheduled on %s", h.Name, day)
		}

		done := a.store.IsDone(h.ID, day)
		if err := a.engine.ToggleCompletion(h.ID, day, done); err != nil {
			return err
		}
		a.engine.Wait()
		if err := a.failedWrites(); err != nil {
			return err
		}

		if done {
			fmt.Fprintf(cmd.OutOrStdout(), "%q was already done on %s\n", h.Name, day)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Marked %q done on %s\n", h.Name, day)
		return nil
	},
}

func init() {
	doneCmd.Flags().StringVarP(&doneDate, "date", "d", "", "day to mark (default today)")
	doneCmd.Flags().BoolVar(&doneSync, "sync", false, "fetch from the remote store first")
	rootCmd.AddCommand(doneCmd)
}
