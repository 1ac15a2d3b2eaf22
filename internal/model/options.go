package model

import (
	"errors"
	"fmt"
	"math"
)

// Options configures a single popover display. A copy is taken when the
// popover is shown, so later edits never affect a visible popover.
type Options struct {
	ArrowDirection      ArrowDirection `json:"arrow_direction" yaml:"arrow_direction"`
	PreferredWidth      float64        `json:"preferred_width,omitempty" yaml:"preferred_width,omitempty"`   // 0 = measure content
	PreferredHeight     float64        `json:"preferred_height,omitempty" yaml:"preferred_height,omitempty"` // 0 = measure content
	DismissOnTapOutside bool           `json:"dismiss_on_tap_outside" yaml:"dismiss_on_tap_outside"`
	IsModal             bool           `json:"is_modal" yaml:"is_modal"`
	BackgroundColor     *Color         `json:"background_color,omitempty" yaml:"background_color,omitempty"`
}

// Option mutates Options. Used with NewOptions.
type Option func(*Options)

// Validation errors.
var (
	ErrNegativeSize = errors.New("preferred size must not be negative")
	ErrInvalidSize  = errors.New("preferred size must be a finite number")
)

// DefaultOptions returns options with default values: engine-chosen arrow,
// measured size, dismiss on outside tap, not modal, platform background.
func DefaultOptions() Options {
	return Options{
		ArrowDirection:      Any,
		DismissOnTapOutside: true,
	}
}

// NewOptions applies opts on top of DefaultOptions.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithArrow sets the requested arrow direction set.
func WithArrow(d ArrowDirection) Option {
	return func(o *Options) {
		o.ArrowDirection = d
	}
}

// WithSize sets the preferred content size. Zero leaves a dimension measured.
func WithSize(width, height float64) Option {
	return func(o *Options) {
		o.PreferredWidth = width
		o.PreferredHeight = height
	}
}

// WithBackground sets the background color.
func WithBackground(c Color) Option {
	return func(o *Options) {
		o.BackgroundColor = &c
	}
}

// WithModal makes the popover block interaction with the rest of the screen.
func WithModal(modal bool) Option {
	return func(o *Options) {
		o.IsModal = modal
	}
}

// WithDismissOnTapOutside toggles light dismissal.
func WithDismissOnTapOutside(dismiss bool) Option {
	return func(o *Options) {
		o.DismissOnTapOutside = dismiss
	}
}

// PreferredSize returns the preferred dimensions (zero when unset).
func (o Options) PreferredSize() Size {
	return Size{Width: o.PreferredWidth, Height: o.PreferredHeight}
}

// Clone returns a deep copy.
func (o Options) Clone() Options {
	c := o
	if o.BackgroundColor != nil {
		bg := *o.BackgroundColor
		c.BackgroundColor = &bg
	}
	return c
}

// Validate checks that sizes are usable.
func (o Options) Validate() error {
	dims := []struct {
		name string
		v    float64
	}{
		{"width", o.PreferredWidth},
		{"height", o.PreferredHeight},
	}
	for _, d := range dims {
		if math.IsNaN(d.v) || math.IsInf(d.v, 0) {
			return fmt.Errorf("preferred %s: %w", d.name, ErrInvalidSize)
		}
		if d.v < 0 {
			return fmt.Errorf("preferred %s %g: %w", d.name, d.v, ErrNegativeSize)
		}
	}
	return nil
}
