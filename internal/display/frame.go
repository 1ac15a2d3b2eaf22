package display

import (
	"math"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
)

// frame is the layout of one popover surface: the window covers the
// popover body plus the arrow strip on the side facing the anchor.
// Arrow and Body are relative to the window origin.
type frame struct {
	Window model.Rect
	Body   model.Rect
	Arrow  model.Point
}

func computeFrame(pl placement.Result, arrow float64) frame {
	w, h := pl.Size.Width, pl.Size.Height
	tipX := pl.ArrowTip.X - pl.Origin.X - arrow/2
	tipY := pl.ArrowTip.Y - pl.Origin.Y - arrow/2

	switch pl.Direction {
	case model.Up:
		return frame{
			Window: model.Rect{X: pl.Origin.X, Y: pl.Origin.Y, Width: w, Height: h + arrow},
			Body:   model.Rect{Width: w, Height: h},
			Arrow:  model.Point{X: clampOffset(tipX, w, arrow), Y: h},
		}
	case model.Right:
		return frame{
			Window: model.Rect{X: pl.Origin.X - arrow, Y: pl.Origin.Y, Width: w + arrow, Height: h},
			Body:   model.Rect{X: arrow, Width: w, Height: h},
			Arrow:  model.Point{X: 0, Y: clampOffset(tipY, h, arrow)},
		}
	case model.Left:
		return frame{
			Window: model.Rect{X: pl.Origin.X, Y: pl.Origin.Y, Width: w + arrow, Height: h},
			Body:   model.Rect{Width: w, Height: h},
			Arrow:  model.Point{X: w, Y: clampOffset(tipY, h, arrow)},
		}
	default:
		return frame{
			Window: model.Rect{X: pl.Origin.X, Y: pl.Origin.Y - arrow, Width: w, Height: h + arrow},
			Body:   model.Rect{Y: arrow, Width: w, Height: h},
			Arrow:  model.Point{X: clampOffset(tipX, w, arrow), Y: 0},
		}
	}
}

func clampOffset(v, length, arrow float64) float64 {
	return math.Max(0, math.Min(v, length-arrow))
}

// margins converts a window rect to layer-shell top and left margins on
// a monitor whose geometry is mon.
func margins(window, mon model.Rect) (top, left int) {
	return int(math.Round(window.Y - mon.Y)), int(math.Round(window.X - mon.X))
}
