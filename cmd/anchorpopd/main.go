// Package main is the entry point for the anchorpopd popover daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/anchorpop/internal/audio"
	"github.com/jmylchreest/anchorpop/internal/config"
	"github.com/jmylchreest/anchorpop/internal/daemon"
	"github.com/jmylchreest/anchorpop/internal/dbus"
	"github.com/jmylchreest/anchorpop/internal/display"
	"github.com/jmylchreest/anchorpop/internal/popover"
	"github.com/jmylchreest/anchorpop/internal/presenter"
	"github.com/jmylchreest/anchorpop/internal/theme"
)

const (
	appID   = "io.github.jmylchreest.anchorpopd"
	appName = "anchorpopd"

	// Dismissed sessions kept for Status queries
	sessionHistory = 32
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	verbose := flag.Bool("v", false, "Enable debug logging")
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/anchorpop/anchorpop.toml)")
	flag.Parse()

	if *showVersion {
		fmt.Println(appName, "version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	os.Exit(run(*configPath, logger))
}

func run(configPath string, logger *slog.Logger) int {
	logger.Info("starting anchorpopd", "version", version)

	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			logger.Error("failed to get config path", "error", err)
			return 1
		}
		configPath = p
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	app := adw.NewApplication(appID, 0)

	// Shared state between GTK main loop and signal handlers
	var (
		dbusServer    *dbus.Server
		gtkPresenter  *display.Presenter
		themeLoader   *theme.Loader
		chime         *audio.Chime
		configWatcher *daemon.ConfigWatcher
		running       atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
		case <-ctx.Done():
			return
		}
		cancel()
		glib.IdleAdd(func() {
			if running.Load() {
				app.Quit()
			}
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		themeLoader = theme.NewLoader(logger)
		themeLoader.LoadTheme(cfg.Appearance.Theme)
		themeLoader.Apply(nil)

		chime = audio.NewChime(cfg, logger)
		chime.Start()

		gtkPresenter = display.NewPresenter(&app.Application, themeLoader, logger)
		gtkPresenter.UpdateConfig(cfg)

		registry := presenter.NewRegistry(logger)
		registry.Register(presenter.NameGTK, func(*slog.Logger) (popover.Backend, error) {
			return gtkPresenter.Backend(), nil
		})
		registry.Register(presenter.NameHeadless, func(l *slog.Logger) (popover.Backend, error) {
			return presenter.NewHeadless(l).Backend(), nil
		})

		backend, err := registry.Select(daemonPresenter(cfg.Behavior.Presenter))
		if err != nil {
			logger.Error("failed to select presenter", "error", err)
			app.Quit()
			return
		}

		sessions := daemon.NewSessionRegistry(sessionHistory)

		// The handler needs the controller and the controller's hooks need
		// the server, so the server is created first and wired afterwards.
		h := &handler{sessions: sessions}
		dbusServer = dbus.NewServer(h, logger)
		dbusServer.SetBaseOptions(cfg.DefaultOptions())

		ctrl := popover.NewController(backend,
			popover.WithLogger(logger),
			popover.WithParams(cfg.Placement.Params()),
			popover.WithDismissTimeout(cfg.Behavior.DismissTimeout.Duration()),
			popover.WithHooks(popover.Hooks{
				Shown: func(s *popover.Session) {
					sessions.Register(s)
					if err := chime.Play(); err != nil {
						logger.Debug("failed to play chime", "error", err)
					}
				},
				Dismissed: func(s *popover.Session, reason popover.DismissReason) {
					if _, ok := sessions.Complete(s.ID(), reason); !ok {
						return
					}
					if err := dbusServer.EmitDismissed(s.ID(), reason); err != nil {
						logger.Warn("failed to emit Dismissed", "id", s.ID(), "error", err)
					}
				},
			}),
		)
		h.ctrl = ctrl

		if err := dbusServer.Start(); err != nil {
			logger.Error("failed to start D-Bus server", "error", err)
			app.Quit()
			return
		}

		configWatcher = daemon.NewConfigWatcher(configPath, logger)
		configWatcher.SetReloadCallback(func(newConfig *config.Config) {
			glib.IdleAdd(func() {
				ctrl.SetParams(newConfig.Placement.Params())
				ctrl.SetDismissTimeout(newConfig.Behavior.DismissTimeout.Duration())
				dbusServer.SetBaseOptions(newConfig.DefaultOptions())
				gtkPresenter.UpdateConfig(newConfig)
				chime.UpdateConfig(newConfig)

				if newConfig.Appearance.Theme != cfg.Appearance.Theme {
					themeLoader.LoadTheme(newConfig.Appearance.Theme)
					themeLoader.Apply(nil)
				}
				cfg = newConfig
			})
		})
		configWatcher.SetErrorCallback(func(err error) {
			logger.Warn("keeping previous configuration", "error", err)
		})
		if err := configWatcher.Start(ctx, cfg); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		}

		logger.Info("anchorpopd ready", "dbus_interface", dbus.Interface, "presenter", backend.Name)

		// Create a hidden window to keep the application running
		// (GTK apps quit when all windows are closed)
		keepAliveWindow := gtk.NewWindow()
		keepAliveWindow.SetApplication(&app.Application)
		keepAliveWindow.SetDefaultSize(1, 1)
		keepAliveWindow.SetDecorated(false)
		keepAliveWindow.SetVisible(false)
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		if configWatcher != nil {
			configWatcher.Stop()
		}
		if chime != nil {
			chime.Stop()
		}
		if dbusServer != nil {
			_ = dbusServer.Stop()
		}
		running.Store(false)
	})

	status := app.Run(os.Args[:1])
	cancel()

	if status != 0 {
		logger.Error("application exited with error", "status", status)
		return status
	}

	logger.Info("anchorpopd stopped")
	return 0
}

// daemonPresenter maps the configured presenter to one the daemon can run.
// The daemon owns a GTK application, so only headless replaces it.
func daemonPresenter(name string) string {
	if name == presenter.NameHeadless {
		return presenter.NameHeadless
	}
	return presenter.NameGTK
}

// handler serves D-Bus calls. GTK work is marshalled onto the main loop.
type handler struct {
	ctrl     *popover.Controller
	sessions *daemon.SessionRegistry
}

type showResult struct {
	id  string
	err error
}

func (h *handler) ShowAt(req dbus.ShowRequest) (string, error) {
	ch := make(chan showResult, 1)
	glib.IdleAdd(func() {
		opts := req.Options
		sess, err := h.ctrl.ShowAtRect(req.Text, req.Anchor, &opts)
		if err != nil {
			ch <- showResult{err: err}
			return
		}
		ch <- showResult{id: sess.ID()}
	})
	res := <-ch
	return res.id, res.err
}

func (h *handler) Dismiss() {
	glib.IdleAdd(h.ctrl.Dismiss)
}

func (h *handler) Status() dbus.Status {
	rec, ok := h.sessions.Active()
	if !ok {
		return dbus.Status{}
	}
	return dbus.Status{Showing: true, ID: rec.ID, ShownAt: rec.ShownAt}
}

var _ dbus.Handler = (*handler)(nil)
