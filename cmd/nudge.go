package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/brk3/habitcal/internal/logger"
	"github.com/brk3/habitcal/internal/nudge"
	"github.com/brk3/habitcal/internal/nudge/resend"
	"github.com/brk3/habitcal/internal/syncer"

	"github.com/spf13/cobra"
)

var (
	notifyEmail  string
	resendApiKey string
	nudgeDate    string
	nudgeDryRun  bool
)

var nudgeCmd = &cobra.Command{
	Use:   "nudge",
	Short: "Email a reminder listing the tasks still open today",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if nudgeDryRun {
			return nil
		}
		if resendApiKey = os.Getenv("HABITS_RESEND_API_KEY"); resendApiKey == "" {
			return fmt.Errorf("HABITS_RESEND_API_KEY environment variable is not set")
		}

		if notifyEmail = os.Getenv("HABITS_NOTIFY_EMAIL"); notifyEmail == "" {
			return fmt.Errorf("HABITS_NOTIFY_EMAIL environment variable is not set")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dayFlag(nudgeDate)
		if err != nil {
			return err
		}

		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.load(cmd.Context(), true); err != nil {
			if a.engine.Mode() == syncer.ModeNetworkOnly {
				return err
			}
			logger.Warn("Falling back to cached state", "error", err)
		}

		out := cmd.OutOrStdout()
		if nudgeDryRun {
			tasks := nudge.Outstanding(a.store, day)
			if len(tasks) == 0 {
				fmt.Fprintln(out, "Nothing left to do.")
				return nil
			}
			fmt.Fprintf(out, "Would nudge about %d tasks: %s\n", len(tasks), strings.Join(tasks, ", "))
			return nil
		}

		n := resend.ResendNotifier{
			ApiKey: resendApiKey,
			Email:  notifyEmail,
			From:   a.cfg.Nudge.From,
		}
		tasks, err := nudge.Nudge(a.store, &n, day)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Fprintln(out, "Nothing left to do.")
			return nil
		}
		fmt.Fprintf(out, "Sent a nudge about %d tasks to %s\n", len(tasks), notifyEmail)
		return nil
	},
}

func init() {
	nudgeCmd.Flags().StringVarP(&nudgeDate, "date", "d", "", "day to check (default today)")
	nudgeCmd.Flags().BoolVar(&nudgeDryRun, "dry-run", false, "print the outstanding tasks instead of sending")
	rootCmd.AddCommand(nudgeCmd)
}
