package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
)

// canvas returns a blank width x height block.
func canvas(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	line := strings.Repeat(" ", width)
	lines := make([]string, height)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// composite draws top over base with its top-left cell at (x, y). Cells
// of top that fall outside base are dropped.
func composite(base, top string, x, y int) string {
	if top == "" {
		return base
	}
	baseLines := strings.Split(base, "\n")
	topLines := strings.Split(top, "\n")

	for i, tl := range topLines {
		row := y + i
		if row < 0 || row >= len(baseLines) {
			continue
		}
		baseLines[row] = spliceLine(baseLines[row], tl, x)
	}
	return strings.Join(baseLines, "\n")
}

func spliceLine(base, top string, x int) string {
	baseWidth := ansi.StringWidth(base)
	if x < 0 {
		top = ansi.TruncateLeft(top, -x, "")
		x = 0
	}
	if x >= baseWidth {
		return base
	}

	topWidth := ansi.StringWidth(top)
	if x+topWidth > baseWidth {
		top = ansi.Truncate(top, baseWidth-x, "")
		topWidth = baseWidth - x
	}

	left := ansi.Truncate(base, x, "")
	right := ansi.TruncateLeft(base, x+topWidth, "")
	return left + ansi.ResetStyle + top + ansi.ResetStyle + right
}

// boxStyle is the popover frame. A nil background uses an adaptive
// neutral color.
func boxStyle(bg *model.Color) lipgloss.Style {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	if bg == nil {
		return style.
			Background(lipgloss.AdaptiveColor{Light: "#f0f0f0", Dark: "#303030"}).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#a0a0a0", Dark: "#606060"})
	}

	fg := lipgloss.Color(bg.ContrastText().Hex())
	hex := lipgloss.Color(bg.Color.Hex())
	return style.Background(hex).Foreground(fg).BorderForeground(hex)
}

// measureText returns the size of text drawn in a popover frame.
func measureText(text string) model.Size {
	out := boxStyle(nil).Render(text)
	return model.Size{
		Width:  float64(lipgloss.Width(out)),
		Height: float64(lipgloss.Height(out)),
	}
}

// renderBox draws text in a frame exactly size cells large.
func renderBox(text string, size model.Size, bg *model.Color) string {
	w, h := cells(size.Width), cells(size.Height)
	if w < 2 || h < 2 {
		return ""
	}
	style := boxStyle(bg)
	frameW, frameH := style.GetHorizontalFrameSize(), style.GetVerticalFrameSize()
	inner := style.
		Width(w - style.GetHorizontalBorderSize()).
		Height(h - style.GetVerticalBorderSize()).
		MaxWidth(w).
		MaxHeight(h)

	// Trim content lines so the border is never pushed out
	lines := strings.Split(text, "\n")
	if limit := h - frameH; limit >= 0 && len(lines) > limit {
		lines = lines[:limit]
	}
	for i, l := range lines {
		if maxW := w - frameW; maxW >= 0 && ansi.StringWidth(l) > maxW {
			lines[i] = ansi.Truncate(l, maxW, "…")
		}
	}
	return inner.Render(strings.Join(lines, "\n"))
}

// arrowCell is where the arrow glyph goes: in the gap next to the tip,
// on the anchor side.
func arrowCell(pl placement.Result) (x, y int) {
	tipX, tipY := cells(pl.ArrowTip.X), cells(pl.ArrowTip.Y)
	switch pl.Direction {
	case model.Up:
		return tipX, cells(pl.Origin.Y + pl.Size.Height)
	case model.Right:
		return cells(pl.Origin.X) - 1, tipY
	case model.Left:
		return cells(pl.Origin.X + pl.Size.Width), tipY
	default:
		return tipX, cells(pl.Origin.Y) - 1
	}
}

// cells rounds a placement coordinate to a terminal cell.
func cells(v float64) int {
	return int(math.Floor(v + 0.5))
}

// cellRect converts a cell rectangle to integers.
func cellRect(r model.Rect) (x, y, w, h int) {
	return cells(r.X), cells(r.Y), cells(r.Width), cells(r.Height)
}

// cellContains reports whether cell (x, y) is inside r.
func cellContains(r model.Rect, x, y int) bool {
	rx, ry, rw, rh := cellRect(r)
	return x >= rx && x < rx+rw && y >= ry && y < ry+rh
}
