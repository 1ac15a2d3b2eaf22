package display

import (
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/anchorpop/internal/config"
	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
	"github.com/jmylchreest/anchorpop/internal/popover"
	"github.com/jmylchreest/anchorpop/internal/theme"
)

// BackendName is the registry name of this presenter.
const BackendName = "gtk"

var errNoDisplay = errors.New("no display available")

// Presenter shows popovers as layer-shell surfaces and answers geometry
// questions from GDK monitors and widget measurement.
type Presenter struct {
	app    *gtk.Application
	loader *theme.Loader
	logger *slog.Logger

	mu         sync.RWMutex
	appearance config.AppearanceConfig
	arrowSize  float64

	seq int
}

// NewPresenter creates a GTK presenter. loader may be nil, in which case
// no per-popover CSS is installed.
func NewPresenter(app *gtk.Application, loader *theme.Loader, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Presenter{
		app:        app,
		loader:     loader,
		logger:     logger,
		appearance: config.DefaultConfig().Appearance,
		arrowSize:  placement.DefaultParams().ArrowSize,
	}
}

// Backend returns the presenter and resolver pair.
func (p *Presenter) Backend() popover.Backend {
	return popover.Backend{Name: BackendName, Presenter: p, Resolver: p}
}

// UpdateConfig applies appearance and arrow size from a reloaded config.
func (p *Presenter) UpdateConfig(cfg *config.Config) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.appearance = cfg.Appearance
	p.arrowSize = cfg.Placement.ArrowSize
	p.logger.Debug("gtk presenter config updated",
		"monitor", cfg.Appearance.Monitor,
		"color_scheme", cfg.Appearance.ColorScheme,
	)
}

// PresentAt implements popover.Presenter.
func (p *Presenter) PresentAt(content any, pl placement.Result, opts model.Options, onDismiss popover.ExternalDismissFunc) (popover.Handle, error) {
	widget, err := contentWidget(content)
	if err != nil {
		return nil, &popover.Error{Kind: popover.KindPresentationFailure, Op: "present", Message: "cannot render content", Cause: err}
	}

	display := gdk.DisplayGetDefault()
	if display == nil {
		return nil, &popover.Error{Kind: popover.KindPresentationFailure, Op: "present", Cause: errNoDisplay}
	}

	p.mu.Lock()
	appearance := p.appearance
	arrowSize := p.arrowSize
	p.seq++
	id := "p" + strconv.Itoa(p.seq)
	p.mu.Unlock()

	mon := selectMonitor(display, appearance.Monitor, p.logger)
	if mon == nil {
		return nil, &popover.Error{Kind: popover.KindPresentationFailure, Op: "present", Message: "no monitor"}
	}

	spec := windowSpec{
		id:          id,
		content:     widget,
		placement:   pl,
		options:     opts,
		arrowSize:   arrowSize,
		schemeClass: theme.SchemeClass(appearance.ColorScheme, systemDark()),
		monitor:     mon,
		bounds:      monitorBounds(mon),
	}

	w := newPopoverWindow(p.app, spec, func(reason popover.DismissReason) {
		p.removeOverride(id)
		if onDismiss != nil {
			onDismiss(reason)
		}
	}, p.logger)

	if p.loader != nil {
		p.loader.AddOverride(w.class, theme.OverrideCSS(w.class, opts, appearance.CornerRadius))
	}

	w.present()

	p.logger.Debug("presented popover",
		"id", id,
		"origin", pl.Origin,
		"size", pl.Size.String(),
		"direction", pl.Direction.String(),
		"backdrop", w.backdrop != nil,
	)
	return w, nil
}

// Dismiss implements popover.Presenter. done runs on the next main loop
// iteration, after the surfaces are unmapped.
func (p *Presenter) Dismiss(h popover.Handle, done func()) {
	w, ok := h.(*popoverWindow)
	if !ok || w == nil {
		if done != nil {
			done()
		}
		return
	}

	if w.close() {
		p.removeOverride(w.id)
		p.logger.Debug("dismissed popover", "id", w.id)
	}

	glib.IdleAdd(func() {
		if done != nil {
			done()
		}
	})
}

func (p *Presenter) removeOverride(id string) {
	if p.loader != nil {
		p.loader.RemoveOverride(theme.OverrideClass(id))
	}
}

// systemDark reports the libadwaita dark preference.
func systemDark() bool {
	return adw.StyleManagerGetDefault().Dark()
}
