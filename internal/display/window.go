package display

import (
	"fmt"
	"log/slog"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
	"github.com/jmylchreest/anchorpop/internal/popover"
	"github.com/jmylchreest/anchorpop/internal/theme"
)

// popoverWindow is one shown popover: the popover surface and, when
// outside taps matter, a backdrop surface underneath it.
type popoverWindow struct {
	id       string
	class    string
	window   *gtk.Window
	backdrop *gtk.Window
	monitor  *gdk.Monitor
	logger   *slog.Logger

	invalidate glib.SignalHandle

	onDismiss popover.ExternalDismissFunc
	closed    bool
}

type windowSpec struct {
	id          string
	content     gtk.Widgetter
	placement   placement.Result
	options     model.Options
	arrowSize   float64
	schemeClass string
	monitor     *gdk.Monitor
	bounds      model.Rect
}

func newPopoverWindow(app *gtk.Application, spec windowSpec, onDismiss popover.ExternalDismissFunc, logger *slog.Logger) *popoverWindow {
	w := &popoverWindow{
		id:        spec.id,
		class:     theme.OverrideClass(spec.id),
		monitor:   spec.monitor,
		logger:    logger,
		onDismiss: onDismiss,
	}

	if spec.options.DismissOnTapOutside || spec.options.IsModal {
		w.backdrop = w.buildBackdrop(app, spec)
	}
	w.window = w.buildWindow(app, spec)

	if spec.monitor != nil {
		w.invalidate = spec.monitor.ConnectInvalidate(func() {
			w.external(popover.ReasonAnchorGone)
		})
	}

	return w
}

func (w *popoverWindow) buildBackdrop(app *gtk.Application, spec windowSpec) *gtk.Window {
	b := gtk.NewWindow()
	b.SetApplication(app)
	b.SetDecorated(false)
	b.AddCSSClass(theme.ClassBackdrop)
	if spec.options.IsModal {
		b.AddCSSClass("modal")
	}

	layershell.InitForWindow(b)
	layershell.SetLayer(b, layershell.LayerShellLayerTop)
	layershell.SetExclusiveZone(b, -1)
	layershell.SetKeyboardMode(b, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(b, "anchorpop-backdrop")
	for _, edge := range []layershell.LayerShellEdge{
		layershell.LayerShellEdgeTop,
		layershell.LayerShellEdgeBottom,
		layershell.LayerShellEdgeLeft,
		layershell.LayerShellEdgeRight,
	} {
		layershell.SetAnchor(b, edge, true)
	}
	if spec.monitor != nil {
		layershell.SetMonitor(b, spec.monitor)
	}

	click := gtk.NewGestureClick()
	click.SetButton(0)
	click.ConnectReleased(func(nPress int, x, y float64) {
		// Modal without tap-to-dismiss swallows the tap
		if spec.options.DismissOnTapOutside {
			w.external(popover.ReasonOutsideTap)
		}
	})
	b.AddController(click)

	return b
}

func (w *popoverWindow) buildWindow(app *gtk.Application, spec windowSpec) *gtk.Window {
	f := computeFrame(spec.placement, spec.arrowSize)

	win := gtk.NewWindow()
	win.SetApplication(app)
	win.SetDecorated(false)
	win.SetResizable(false)
	win.AddCSSClass(theme.ClassWindow)
	win.SetDefaultSize(int(f.Window.Width), int(f.Window.Height))

	layershell.InitForWindow(win)
	layershell.SetLayer(win, layershell.LayerShellLayerOverlay)
	layershell.SetExclusiveZone(win, 0)
	if spec.options.IsModal {
		layershell.SetKeyboardMode(win, layershell.LayerShellKeyboardModeExclusive)
	} else {
		layershell.SetKeyboardMode(win, layershell.LayerShellKeyboardModeOnDemand)
	}
	layershell.SetNamespace(win, "anchorpop")
	if spec.monitor != nil {
		layershell.SetMonitor(win, spec.monitor)
	}

	top, left := margins(f.Window, spec.bounds)
	layershell.SetAnchor(win, layershell.LayerShellEdgeTop, true)
	layershell.SetAnchor(win, layershell.LayerShellEdgeLeft, true)
	layershell.SetMargin(win, layershell.LayerShellEdgeTop, top)
	layershell.SetMargin(win, layershell.LayerShellEdgeLeft, left)

	body := gtk.NewBox(gtk.OrientationVertical, 0)
	body.AddCSSClass(theme.ClassPopover)
	body.AddCSSClass(spec.schemeClass)
	body.AddCSSClass(w.class)
	body.SetSizeRequest(int(f.Body.Width), int(f.Body.Height))
	body.Append(spec.content)

	arrow := gtk.NewLabel(spec.placement.ArrowGlyph())
	arrow.AddCSSClass(theme.ClassArrow)
	arrow.AddCSSClass(w.class)
	arrow.SetSizeRequest(int(spec.arrowSize), int(spec.arrowSize))

	fixed := gtk.NewFixed()
	fixed.Put(body, f.Body.X, f.Body.Y)
	fixed.Put(arrow, f.Arrow.X, f.Arrow.Y)
	win.SetChild(fixed)

	keys := gtk.NewEventControllerKey()
	keys.ConnectKeyPressed(func(keyval, keycode uint, state gdk.ModifierType) bool {
		if keyval == gdk.KEY_Escape {
			w.external(popover.ReasonBackAction)
			return true
		}
		return false
	})
	win.AddController(keys)

	win.ConnectCloseRequest(func() bool {
		if !w.closed {
			w.external(popover.ReasonAnchorGone)
		}
		return false
	})

	return win
}

func (w *popoverWindow) present() {
	if w.backdrop != nil {
		w.backdrop.Present()
	}
	w.window.Present()
}

// close tears down both surfaces. It reports false if already closed.
func (w *popoverWindow) close() bool {
	if w.closed {
		return false
	}
	w.closed = true

	if w.monitor != nil && w.invalidate != 0 {
		w.monitor.HandlerDisconnect(w.invalidate)
	}
	w.window.Close()
	if w.backdrop != nil {
		w.backdrop.Close()
	}
	return true
}

// external handles a dismissal the controller did not ask for.
func (w *popoverWindow) external(reason popover.DismissReason) {
	if !w.close() {
		return
	}
	w.logger.Debug("popover dismissed externally", "id", w.id, "reason", reason.String())
	if w.onDismiss != nil {
		w.onDismiss(reason)
	}
}

// contentWidget turns popover content into a widget.
func contentWidget(content any) (gtk.Widgetter, error) {
	switch c := content.(type) {
	case gtk.Widgetter:
		return c, nil
	case string:
		return textLabel(c), nil
	case fmt.Stringer:
		return textLabel(c.String()), nil
	default:
		return nil, fmt.Errorf("unsupported content type %T", content)
	}
}

func textLabel(text string) *gtk.Label {
	l := gtk.NewLabel(text)
	l.AddCSSClass(theme.ClassContent)
	l.SetXAlign(0)
	l.SetWrap(true)
	l.SetWrapMode(2) // PANGO_WRAP_WORD_CHAR
	l.SetMaxWidthChars(50)
	return l
}
