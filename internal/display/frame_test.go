package display

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
)

func TestComputeFrame(t *testing.T) {
	size := model.Size{Width: 200, Height: 100}

	tests := []struct {
		name   string
		pl     placement.Result
		window model.Rect
		body   model.Rect
		arrow  model.Point
	}{
		{
			name:   "below anchor",
			pl:     placement.Result{Origin: model.Point{X: 25, Y: 160}, Size: size, ArrowTip: model.Point{X: 125, Y: 160}, Direction: model.Down},
			window: model.Rect{X: 25, Y: 150, Width: 200, Height: 110},
			body:   model.Rect{Y: 10, Width: 200, Height: 100},
			arrow:  model.Point{X: 95, Y: 0},
		},
		{
			name:   "above anchor",
			pl:     placement.Result{Origin: model.Point{X: 25, Y: 670}, Size: size, ArrowTip: model.Point{X: 125, Y: 770}, Direction: model.Up},
			window: model.Rect{X: 25, Y: 670, Width: 200, Height: 110},
			body:   model.Rect{Width: 200, Height: 100},
			arrow:  model.Point{X: 95, Y: 100},
		},
		{
			name:   "right of anchor",
			pl:     placement.Result{Origin: model.Point{X: 300, Y: 50}, Size: size, ArrowTip: model.Point{X: 300, Y: 75}, Direction: model.Right},
			window: model.Rect{X: 290, Y: 50, Width: 210, Height: 100},
			body:   model.Rect{X: 10, Width: 200, Height: 100},
			arrow:  model.Point{X: 0, Y: 20},
		},
		{
			name:   "left of anchor with tip clamped",
			pl:     placement.Result{Origin: model.Point{X: 40, Y: 50}, Size: size, ArrowTip: model.Point{X: 240, Y: 400}, Direction: model.Left},
			window: model.Rect{X: 40, Y: 50, Width: 210, Height: 100},
			body:   model.Rect{Width: 200, Height: 100},
			arrow:  model.Point{X: 200, Y: 90},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := computeFrame(tt.pl, 10)
			assert.Equal(t, tt.window, f.Window)
			assert.Equal(t, tt.body, f.Body)
			assert.Equal(t, tt.arrow, f.Arrow)
		})
	}
}

func TestMargins(t *testing.T) {
	top, left := margins(model.Rect{X: 1950.4, Y: 99.6, Width: 10, Height: 10}, model.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080})
	assert.Equal(t, 100, top)
	assert.Equal(t, 30, left)
}
