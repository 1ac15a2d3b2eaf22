package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/anchorpop/internal/dbus"
)

var dismissOpts struct {
	wait bool
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss",
	Short: "Dismiss the popover on screen",
	Long: `Ask anchorpopd to dismiss the popover on screen. Does nothing when no
popover is shown. With --wait the command returns once the popover is gone.`,
	Args: cobra.NoArgs,
	RunE: runDismiss,
}

func init() {
	rootCmd.AddCommand(dismissCmd)

	dismissCmd.Flags().BoolVarP(&dismissOpts.wait, "wait", "w", false,
		"Wait until the popover is gone")
}

func runDismiss(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := dbus.NewClient(logger)
	if err != nil {
		return err
	}

	st, err := client.Status(ctx)
	if err != nil {
		return err
	}

	if err := client.Dismiss(ctx); err != nil {
		return err
	}
	if !dismissOpts.wait || !st.Showing {
		return nil
	}

	reason, err := client.WaitDismissed(ctx, st.ID)
	if err != nil {
		return err
	}
	logger.Debug("popover dismissed", "id", st.ID, "reason", reason)
	return nil
}
