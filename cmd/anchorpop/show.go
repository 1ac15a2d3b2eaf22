package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/anchorpop/internal/dbus"
	"github.com/jmylchreest/anchorpop/internal/output"
	"github.com/jmylchreest/anchorpop/internal/popover"
)

var showOpts struct {
	at      string
	wait    bool
	timeout time.Duration
	popover popoverFlags
}

var showCmd = &cobra.Command{
	Use:   "show [flags] TEXT...",
	Short: "Show a popover next to a screen rectangle",
	Long: `Ask anchorpopd to show TEXT in a popover anchored to a screen rectangle.
Use "-" as TEXT to read it from stdin.

The rectangle is given as x,y,width,height in logical pixels. The popover is
placed on the preferred side of the rectangle and flips to the opposite side
when it does not fit. Showing a popover replaces the one on screen.

Examples:
  # Show below a 50x50 button at 100,780, flipping above if needed
  anchorpop show --at 100,780,50,50 "Saved"

  # Only allow the left side and wait until the user dismisses it
  anchorpop show --at 900,400,40,40 -d left --wait "Press Esc to close"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVar(&showOpts.at, "at", "",
		"Anchor rectangle as x,y,width,height (required)")
	showCmd.Flags().BoolVarP(&showOpts.wait, "wait", "w", false,
		"Wait until the popover is dismissed and print the reason")
	showCmd.Flags().DurationVarP(&showOpts.timeout, "timeout", "t", 0,
		"With --wait, dismiss the popover after this long (0 = never)")
	showOpts.popover.register(showCmd)
	_ = showCmd.MarkFlagRequired("at")
}

func runShow(cmd *cobra.Command, args []string) error {
	text, err := popoverText(cmd, args)
	if err != nil {
		return err
	}

	anchor, err := parseRect(showOpts.at)
	if err != nil {
		return fmt.Errorf("invalid --at: %w", err)
	}

	opts, err := showOpts.popover.apply(cmd, getConfig().DefaultOptions())
	if err != nil {
		return err
	}

	client, err := dbus.NewClient(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !showOpts.wait {
		id, err := client.ShowAt(ctx, text, anchor, opts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
		return err
	}

	// Subscribe first so a fast dismissal cannot be missed
	sub, err := client.SubscribeDismissed()
	if err != nil {
		return err
	}
	defer func() {
		if err := sub.Close(); err != nil {
			logger.Debug("failed to close subscription", "error", err)
		}
	}()

	id, err := client.ShowAt(ctx, text, anchor, opts)
	if err != nil {
		return err
	}
	logger.Debug("popover shown", "id", id)

	reason, err := waitForDismissal(ctx, client, sub, id)
	if err != nil {
		return err
	}
	return writeReport(cmd, output.DismissReport{ID: id, Reason: reason.String()})
}

// waitForDismissal waits for id to go away. The timeout and interrupts
// dismiss the popover, after which the reported reason is still awaited.
func waitForDismissal(ctx context.Context, client *dbus.Client, sub *dbus.Subscription, id string) (popover.DismissReason, error) {
	waitCtx := ctx
	if showOpts.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, showOpts.timeout)
		defer cancel()
	}

	reason, err := sub.Wait(waitCtx, id)
	if err == nil {
		return reason, nil
	}

	logger.Debug("dismissing popover", "id", id, "cause", err)
	cleanupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Dismiss(cleanupCtx); err != nil {
		return popover.ReasonNone, err
	}
	return sub.Wait(cleanupCtx, id)
}

func popoverText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	}
	return strings.Join(args, " "), nil
}
