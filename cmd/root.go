package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "habits",
	Short: "Track daily habits and scheduled tasks",
	Long: `
	Habits keeps a calendar of daily habits and one-off scheduled tasks in a
	spreadsheet-backed store. Run without a command to open the terminal UI, or
	use the commands below to script it.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $HABITS_CONFIG or ./config.yaml)")
}
