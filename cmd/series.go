package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	seriesStart string
	seriesCount int
)

var seriesCmd = &cobra.Command{
	Use:   "series PREFIX",
	Short: "Add numbered tasks on consecutive days",
	Long: `The "series" command schedules COUNT tasks named "PREFIX 1", "PREFIX 2", ...
one per day from --start.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := dayFlag(seriesStart)
		if err != nil {
			return err
		}

		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.Restore(); err != nil {
			return err
		}
		habits, err := a.engine.CreateSeries(strings.Join(args, " "), start, seriesCount)
		if err != nil {
			return err
		}
		a.engine.Wait()
		if err := a.failedWrites(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Successfully created %d tasks!\n", len(habits))
		for _, h := range habits {
			fmt.Fprintf(out, "  %s  %s\n", h.TargetDate, h.Name)
		}
		return nil
	},
}

func init() {
	seriesCmd.Flags().StringVarP(&seriesStart, "start", "s", "", "first day (default today)")
	seriesCmd.Flags().IntVarP(&seriesCount, "count", "n", 1, "number of tasks")
	rootCmd.AddCommand(seriesCmd)
}
