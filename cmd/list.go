package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/brk3/habitcal/internal/tui"
	"github.com/brk3/habitcal/pkg/habit"
	"github.com/spf13/cobra"
)

var (
	listDate string
	listSync bool
	listJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tasks for a day",
	Long: `The "list" command shows the habits that apply to a day, with their ids
and whether they are done. It reads the local cache unless --sync is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dayFlag(listDate)
		if err != nil {
			return err
		}
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.load(cmd.Context(), listSync); err != nil {
			return err
		}
		view := a.store.Day(day)

		out := cmd.OutOrStdout()
		if listJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		}

		fmt.Fprintf(out, "%s (%d Tasks, %d%% done)\n", tui.TaskTitle(day, habit.Today()), view.Total, view.Percent)
		if len(view.Tasks) == 0 {
			fmt.Fprintln(out, "No tasks for this day.")
			return nil
		}
		for _, task := range view.Tasks {
			check := "[ ]"
			if task.Done {
				check = "[x]"
			}
			kind := "Daily"
			if task.Habit.Freq == habit.Specific {
				kind = "Scheduled"
			}
			fmt.Fprintf(out, "%s %s  %s  %s\n", check, task.Habit.ID, task.Habit.Name, kind)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listDate, "date", "d", "", "day to list (default today)")
	listCmd.Flags().BoolVar(&listSync, "sync", false, "fetch from the remote store first")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print the day as JSON")
	rootCmd.AddCommand(listCmd)
}
