package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace the local cache with the remote store's contents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.engine.FetchSnapshot(cmd.Context()); err != nil {
			return err
		}
		snap := a.store.Snapshot()
		fmt.Fprintf(cmd.OutOrStdout(), "Synced %d habits and %d logs\n", len(snap.Habits), len(snap.Logs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
