package cmd

import (
	"github.com/brk3/habitcal/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the calendar in the terminal (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func runTUI() error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()
	return tui.Run(a.engine)
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
