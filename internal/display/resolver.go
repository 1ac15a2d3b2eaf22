package display

import (
	"errors"
	"fmt"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/theme"
)

var errNotMapped = errors.New("anchor widget is not mapped")

// MeasureNaturalSize implements popover.Resolver. The content is measured
// inside a popover body so theme padding is included.
func (p *Presenter) MeasureNaturalSize(content any) (model.Size, error) {
	widget, err := contentWidget(content)
	if err != nil {
		return model.Size{}, err
	}

	body := gtk.NewBox(gtk.OrientationVertical, 0)
	body.AddCSSClass(theme.ClassPopover)
	body.Append(widget)
	defer body.Remove(widget)

	_, width, _, _ := body.Measure(gtk.OrientationHorizontal, -1)
	_, height, _, _ := body.Measure(gtk.OrientationVertical, width)
	if width <= 0 || height <= 0 {
		return model.Size{}, fmt.Errorf("content has no natural size")
	}
	return model.Size{Width: float64(width), Height: float64(height)}, nil
}

// ResolveScreenBounds implements popover.Resolver. A widget resolves to
// its bounds within its toplevel, offset by the popover monitor origin;
// anchorpop toplevels are layer surfaces pinned to that origin.
func (p *Presenter) ResolveScreenBounds(view any) (model.Rect, error) {
	switch v := view.(type) {
	case model.Rect:
		return v, nil
	case gtk.Widgetter:
		return p.widgetBounds(gtk.BaseWidget(v))
	default:
		return model.Rect{}, fmt.Errorf("unsupported anchor view %T", view)
	}
}

func (p *Presenter) widgetBounds(w *gtk.Widget) (model.Rect, error) {
	if !w.Mapped() {
		return model.Rect{}, errNotMapped
	}

	top := w
	for parent := top.Parent(); parent != nil; parent = top.Parent() {
		top = gtk.BaseWidget(parent)
	}

	bounds, ok := w.ComputeBounds(top)
	if !ok {
		return model.Rect{}, errNotMapped
	}

	origin, err := p.CurrentDisplayBounds()
	if err != nil {
		return model.Rect{}, err
	}

	return model.Rect{
		X:      origin.X + float64(bounds.X()),
		Y:      origin.Y + float64(bounds.Y()),
		Width:  float64(bounds.Width()),
		Height: float64(bounds.Height()),
	}, nil
}

// CurrentDisplayBounds implements popover.Resolver.
func (p *Presenter) CurrentDisplayBounds() (model.Rect, error) {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return model.Rect{}, errNoDisplay
	}

	p.mu.RLock()
	index := p.appearance.Monitor
	p.mu.RUnlock()

	mon := selectMonitor(display, index, p.logger)
	if mon == nil {
		return model.Rect{}, errors.New("no monitor available")
	}
	return monitorBounds(mon), nil
}
