package display

import (
	"log/slog"
	"unsafe"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"

	"github.com/jmylchreest/anchorpop/internal/model"
)

// selectMonitor returns the configured monitor. index 0 means the first
// monitor, 1+ is a 1-indexed monitor number. Out of range falls back to
// the first monitor.
func selectMonitor(display *gdk.Display, index int, logger *slog.Logger) *gdk.Monitor {
	if display == nil {
		return nil
	}

	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		logger.Warn("no monitors available")
		return nil
	}

	pos := uint(0)
	if index > 0 {
		pos = uint(index - 1)
	}
	if pos >= monitors.NItems() {
		logger.Warn("configured monitor not available, using first",
			"configured", index,
			"available", monitors.NItems(),
		)
		pos = 0
	}

	return wrapMonitor(monitors.Item(pos))
}

// wrapMonitor wraps a coreglib.Object as a gdk.Monitor.
// gotk4 doesn't expose its own wrapMonitor.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	// gdk.Monitor embeds a *coreglib.Object; this matches gotk4's own layout.
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}

// monitorBounds returns the monitor geometry in screen coordinates.
func monitorBounds(m *gdk.Monitor) model.Rect {
	g := m.Geometry()
	return model.Rect{
		X:      float64(g.X()),
		Y:      float64(g.Y()),
		Width:  float64(g.Width()),
		Height: float64(g.Height()),
	}
}
