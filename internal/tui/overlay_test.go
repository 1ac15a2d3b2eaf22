package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
)

func TestComposite(t *testing.T) {
	base := "abcdef\nghijkl"

	tests := []struct {
		name string
		top  string
		x, y int
		want string
	}{
		{"inside", "XY", 2, 1, "abcdef\nghXYkl"},
		{"clipped right", "XY", 5, 0, "abcdeX\nghijkl"},
		{"clipped left", "XY", -1, 1, "abcdef\nYhijkl"},
		{"past the right edge", "XY", 6, 0, base},
		{"rows outside", "1\n2\n3", 0, 1, "abcdef\n1hijkl"},
		{"empty top", "", 0, 0, base},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ansi.Strip(composite(base, tt.top, tt.x, tt.y)))
		})
	}
}

func TestCanvas(t *testing.T) {
	c := canvas(3, 2)
	assert.Equal(t, "   \n   ", c)
	assert.Empty(t, canvas(0, 5))
}

func TestMeasureText(t *testing.T) {
	assert.Equal(t, model.Size{Width: 9, Height: 3}, measureText("hello"))
	assert.Equal(t, model.Size{Width: 9, Height: 4}, measureText("hello\nworld"))
}

func TestRenderBox(t *testing.T) {
	out := renderBox("a long line that does not fit\nline 2\nline 3", model.Size{Width: 12, Height: 4}, nil)
	assert.Equal(t, 12, lipgloss.Width(out))
	assert.Equal(t, 4, lipgloss.Height(out))

	plain := ansi.Strip(out)
	lines := strings.Split(plain, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "╭"))
	assert.True(t, strings.HasPrefix(lines[3], "╰"))
	assert.Contains(t, lines[1], "…")

	bg := model.MustParseColor("#102030")
	assert.Equal(t, 12, lipgloss.Width(renderBox("x", model.Size{Width: 12, Height: 3}, &bg)))

	assert.Empty(t, renderBox("x", model.Size{Width: 1, Height: 3}, nil))
}

func TestArrowCell(t *testing.T) {
	size := model.Size{Width: 20, Height: 4}
	tests := []struct {
		side  model.ArrowDirection
		tip   model.Point
		wantX int
		wantY int
	}{
		{model.Down, model.Point{X: 15, Y: 5}, 15, 4},
		{model.Up, model.Point{X: 15, Y: 9}, 15, 9},
		{model.Right, model.Point{X: 10, Y: 7}, 9, 7},
		{model.Left, model.Point{X: 30, Y: 7}, 30, 7},
	}

	for _, tt := range tests {
		t.Run(tt.side.String(), func(t *testing.T) {
			x, y := arrowCell(placement.Result{Origin: model.Point{X: 10, Y: 5}, Size: size, ArrowTip: tt.tip, Direction: tt.side})
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}

func TestCellContains(t *testing.T) {
	r := model.Rect{X: 2, Y: 1, Width: 3, Height: 2}
	assert.True(t, cellContains(r, 2, 1))
	assert.True(t, cellContains(r, 4, 2))
	assert.False(t, cellContains(r, 5, 1))
	assert.False(t, cellContains(r, 2, 3))
}
