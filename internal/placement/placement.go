// Package placement computes where an anchored popover goes on screen.
// Everything here is pure: no native calls, no state.
package placement

import (
	"math"

	"github.com/jmylchreest/anchorpop/internal/model"
)

// Params are the tunables of the placement engine.
type Params struct {
	Gap         float64    `toml:"gap"`          // Space between anchor and popover
	Margin      float64    `toml:"margin"`       // Minimum distance from the display edge
	DefaultSize model.Size `toml:"default_size"` // Used when nothing else gives a size
	ArrowSize   float64    `toml:"arrow_size"`   // Width of the arrow base
}

// DefaultParams returns the defaults for pixel-based displays.
func DefaultParams() Params {
	return Params{
		Gap:         10,
		Margin:      10,
		DefaultSize: model.Size{Width: 320, Height: 480},
		ArrowSize:   10,
	}
}

// TerminalParams returns defaults for character-cell displays.
func TerminalParams() Params {
	return Params{
		Gap:         1,
		Margin:      1,
		DefaultSize: model.Size{Width: 30, Height: 8},
		ArrowSize:   1,
	}
}

// Request describes one placement problem.
type Request struct {
	Anchor    model.Rect           // Anchor bounds in screen coordinates
	Preferred model.Size           // Caller-requested size, 0 per axis = unset
	Measured  model.Size           // Natural content size, 0 per axis = unknown
	Direction model.ArrowDirection // Requested direction set
	Display   model.Rect           // Usable display area
}

// Result is a computed placement.
type Result struct {
	Origin    model.Point          `json:"origin" yaml:"origin"`
	Size      model.Size           `json:"size" yaml:"size"`
	ArrowTip  model.Point          `json:"arrow_tip" yaml:"arrow_tip"`
	Direction model.ArrowDirection `json:"direction" yaml:"direction"` // Effective side, exactly one bit
	Requested model.ArrowDirection `json:"requested" yaml:"requested"`
	Flipped   bool                 `json:"flipped" yaml:"flipped"`
}

// Rect returns the popover rectangle.
func (r Result) Rect() model.Rect {
	return model.NewRect(r.Origin, r.Size)
}

// ArrowGlyph returns the glyph drawn in the gap between the anchor and
// the popover. It points back at the anchor.
func (r Result) ArrowGlyph() string {
	switch r.Direction {
	case model.Up:
		return "▼"
	case model.Left:
		return "▶"
	case model.Right:
		return "◀"
	default:
		return "▲"
	}
}

// Compute places a popover for req.
//
// The side is chosen from the requested set in the order Down (also for
// Any), Up, Right, Left. If that side overflows the display it flips to
// the opposite side once. Up and Down always flip; Right and Left only flip
// when the opposite side fits or has more room. The origin is then clamped
// inside the display margin. Overlapping the anchor is allowed, leaving the display is not.
func Compute(req Request, p Params) Result {
	size := resolveSize(req, p)
	primary := PrimaryDirection(req.Direction)

	side := primary
	origin := originFor(side, req.Anchor, size, p.Gap)

	flipped := false
	if overflows(side, origin, size, req.Display) {
		alt := side.Opposite()
		altOrigin := originFor(alt, req.Anchor, size, p.Gap)
		if side.IsVertical() || !overflows(alt, altOrigin, size, req.Display) ||
			room(alt, req.Anchor, req.Display, p.Gap) > room(side, req.Anchor, req.Display, p.Gap) {
			side, origin, flipped = alt, altOrigin, true
		}
	}

	origin = clampOrigin(origin, size, req.Display, p.Margin)

	return Result{
		Origin:    origin,
		Size:      size,
		ArrowTip:  arrowTip(side, req.Anchor, origin, size, p.ArrowSize),
		Direction: side,
		Requested: req.Direction,
		Flipped:   flipped,
	}
}

// PrimaryDirection picks the side to try first from a requested set.
func PrimaryDirection(d model.ArrowDirection) model.ArrowDirection {
	switch {
	case d.IsAny(), d.Has(model.Down):
		return model.Down
	case d.Has(model.Up):
		return model.Up
	case d.Has(model.Right):
		return model.Right
	default:
		return model.Left
	}
}

// resolveSize picks preferred, then measured, then default per axis and
// shrinks the result to fit inside the display margin.
func resolveSize(req Request, p Params) model.Size {
	pick := func(preferred, measured, fallback float64) float64 {
		switch {
		case preferred > 0:
			return preferred
		case measured > 0:
			return measured
		default:
			return fallback
		}
	}

	size := model.Size{
		Width:  pick(req.Preferred.Width, req.Measured.Width, p.DefaultSize.Width),
		Height: pick(req.Preferred.Height, req.Measured.Height, p.DefaultSize.Height),
	}

	maxW := math.Max(0, req.Display.Width-2*p.Margin)
	maxH := math.Max(0, req.Display.Height-2*p.Margin)
	size.Width = math.Min(size.Width, maxW)
	size.Height = math.Min(size.Height, maxH)
	return size
}

func originFor(side model.ArrowDirection, anchor model.Rect, size model.Size, gap float64) model.Point {
	switch side {
	case model.Up:
		return model.Point{
			X: anchor.Center().X - size.Width/2,
			Y: anchor.Top() - size.Height - gap,
		}
	case model.Right:
		return model.Point{
			X: anchor.Right() + gap,
			Y: anchor.Top(),
		}
	case model.Left:
		return model.Point{
			X: anchor.Left() - size.Width - gap,
			Y: anchor.Top(),
		}
	default:
		return model.Point{
			X: anchor.Center().X - size.Width/2,
			Y: anchor.Bottom() + gap,
		}
	}
}

// overflows only looks at the edge the popover grows towards; the cross
// axis is handled by clamping.
func overflows(side model.ArrowDirection, origin model.Point, size model.Size, display model.Rect) bool {
	switch side {
	case model.Up:
		return origin.Y < display.Top()
	case model.Right:
		return origin.X+size.Width > display.Right()
	case model.Left:
		return origin.X < display.Left()
	default:
		return origin.Y+size.Height > display.Bottom()
	}
}

// room is the free space between the anchor and the display edge on side.
func room(side model.ArrowDirection, anchor model.Rect, display model.Rect, gap float64) float64 {
	switch side {
	case model.Up:
		return anchor.Top() - gap - display.Top()
	case model.Right:
		return display.Right() - anchor.Right() - gap
	case model.Left:
		return anchor.Left() - gap - display.Left()
	default:
		return display.Bottom() - anchor.Bottom() - gap
	}
}

func clampOrigin(origin model.Point, size model.Size, display model.Rect, margin float64) model.Point {
	return model.Point{
		X: clamp(origin.X, display.Left()+margin, display.Right()-margin-size.Width),
		Y: clamp(origin.Y, display.Top()+margin, display.Bottom()-margin-size.Height),
	}
}

// arrowTip puts the tip on the popover edge facing the anchor, aligned with
// the anchor center and kept within the popover edge.
func arrowTip(side model.ArrowDirection, anchor model.Rect, origin model.Point, size model.Size, arrowSize float64) model.Point {
	c := anchor.Center()

	if side.IsVertical() {
		inset := math.Min(arrowSize/2, size.Width/2)
		tip := model.Point{X: clamp(c.X, origin.X+inset, origin.X+size.Width-inset)}
		if side == model.Up {
			tip.Y = origin.Y + size.Height
		} else {
			tip.Y = origin.Y
		}
		return tip
	}

	inset := math.Min(arrowSize/2, size.Height/2)
	tip := model.Point{Y: clamp(c.Y, origin.Y+inset, origin.Y+size.Height-inset)}
	if side == model.Left {
		tip.X = origin.X + size.Width
	} else {
		tip.X = origin.X
	}
	return tip
}

// clamp bounds v to [lo, hi]. When the range is inverted lo wins, which
// keeps the popover's leading edge on screen.
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
