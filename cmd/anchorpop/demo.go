package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/popover"
	"github.com/jmylchreest/anchorpop/internal/tui"
)

var demoOpts struct {
	tour    time.Duration
	logFile string
	popover popoverFlags
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Show popovers inside the terminal",
	Long: `Open a full-screen terminal demo with five anchor buttons. Clicking a
button or pressing enter on it shows a popover next to it.

Key bindings:
  tab/shift+tab  Move focus
  enter/space    Show a popover at the focused button
  esc            Dismiss the popover
  ?              Show help
  q              Quit

Clicking outside the popover dismisses it unless --no-outside-tap is set.
--tour shows a popover at every button in turn.`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().DurationVar(&demoOpts.tour, "tour", 0,
		"Cycle popovers through the buttons, each shown this long (0 = off)")
	demoCmd.Flags().StringVar(&demoOpts.logFile, "log-file", "",
		"Write logs to this file (the demo owns the terminal)")
	demoOpts.popover.register(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	c := getConfig()
	opts, err := demoOpts.popover.apply(cmd, c.DefaultOptions())
	if err != nil {
		return err
	}

	// The alt screen owns the terminal, logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if demoOpts.logFile != "" {
		f, err := os.OpenFile(demoOpts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() { _ = f.Close() }()
		logOut = f
	}
	setupLogger(logOut)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := tui.NewPresenter(logger)
	ctrl := popover.NewController(p.Backend(),
		popover.WithLogger(logger),
		popover.WithParams(c.Terminal.Params()),
		popover.WithDismissTimeout(c.Behavior.DismissTimeout.Duration()),
		popover.WithHooks(popover.Hooks{
			Dismissed: func(s *popover.Session, reason popover.DismissReason) {
				p.SetStatus(fmt.Sprintf("popover %s: %s", shortID(s.ID()), reason))
			},
		}),
	)

	var count atomic.Int64
	show := func(r tui.Region) {
		text := fmt.Sprintf("%s\npopover #%d", r.Label, count.Add(1))
		if _, err := ctrl.ShowAtView(text, r.Name, &opts); err != nil {
			p.SetStatus("show failed: " + err.Error())
		}
	}

	m := tui.NewModel(p, tui.DemoLayout, show)
	program := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	p.Attach(program.Send)
	defer p.Detach()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)

	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	if demoOpts.tour > 0 {
		g.Go(func() error {
			return runTour(runCtx, ctrl, p, opts, demoOpts.tour)
		})
	}

	return g.Wait()
}

// runTour shows a popover at each region in turn until ctx ends.
func runTour(ctx context.Context, ctrl *popover.Controller, p *tui.Presenter, opts model.Options, each time.Duration) error {
	for i := 0; ; i++ {
		regions := p.Regions()
		if len(regions) == 0 {
			// Regions exist once the first window size arrives
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(50 * time.Millisecond):
				continue
			}
		}

		r := regions[i%len(regions)]
		stepCtx, cancel := context.WithTimeout(ctx, each)
		text := fmt.Sprintf("%s\ntour stop %d", r.Label, i+1)
		reason, err := ctrl.ShowAndWait(stepCtx, text, model.AnchorAtView(r.Name), &opts)
		cancel()

		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, context.DeadlineExceeded):
			// Shown for the full step
		case err != nil:
			return fmt.Errorf("tour failed at %s: %w", r.Name, err)
		default:
			logger.Debug("tour popover dismissed early", "region", r.Name, "reason", reason)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}
