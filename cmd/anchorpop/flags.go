package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/anchorpop/internal/model"
)

// popoverFlags are the options shared by commands that show or place a popover.
type popoverFlags struct {
	direction    string
	size         string
	modal        bool
	noOutsideTap bool
	background   string
}

func (f *popoverFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.direction, "direction", "d", "",
		`Allowed popover sides, e.g. "down" or "up|down" (default from config)`)
	cmd.Flags().StringVarP(&f.size, "size", "s", "",
		"Preferred popover size as WIDTHxHEIGHT, 0 leaves an axis to the content")
	cmd.Flags().BoolVar(&f.modal, "modal", false,
		"Block interaction with everything but the popover")
	cmd.Flags().BoolVar(&f.noOutsideTap, "no-outside-tap", false,
		"Do not dismiss when clicking outside the popover")
	cmd.Flags().StringVar(&f.background, "background", "",
		"Background color as #rrggbb or #rrggbbaa")
}

// apply overlays the flags the user set on base.
func (f *popoverFlags) apply(cmd *cobra.Command, base model.Options) (model.Options, error) {
	o := base.Clone()
	flags := cmd.Flags()

	if flags.Changed("direction") {
		d, err := model.ParseArrowDirection(f.direction)
		if err != nil {
			return o, fmt.Errorf("invalid --direction: %w", err)
		}
		o.ArrowDirection = d
	}
	if flags.Changed("size") {
		s, err := parseSize(f.size)
		if err != nil {
			return o, fmt.Errorf("invalid --size: %w", err)
		}
		o.PreferredWidth = s.Width
		o.PreferredHeight = s.Height
	}
	if flags.Changed("modal") {
		o.IsModal = f.modal
	}
	if flags.Changed("no-outside-tap") {
		o.DismissOnTapOutside = !f.noOutsideTap
	}
	if flags.Changed("background") {
		c, err := model.ParseColor(f.background)
		if err != nil {
			return o, fmt.Errorf("invalid --background: %w", err)
		}
		o.BackgroundColor = &c
	}

	if err := o.Validate(); err != nil {
		return o, err
	}
	return o, nil
}

// parseRect parses "x,y,width,height".
func parseRect(s string) (model.Rect, error) {
	v, err := parseNumbers(s, ",", 4)
	if err != nil {
		return model.Rect{}, err
	}
	r := model.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	if !r.Valid() {
		return model.Rect{}, fmt.Errorf("rectangle %q must have non-negative size", s)
	}
	return r, nil
}

// parseSize parses "WIDTHxHEIGHT".
func parseSize(s string) (model.Size, error) {
	v, err := parseNumbers(strings.ToLower(s), "x", 2)
	if err != nil {
		return model.Size{}, err
	}
	if v[0] < 0 || v[1] < 0 {
		return model.Size{}, fmt.Errorf("size %q must not be negative", s)
	}
	return model.Size{Width: v[0], Height: v[1]}, nil
}

func parseNumbers(s, sep string, n int) ([]float64, error) {
	parts := strings.Split(s, sep)
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d values separated by %q, got %q", n, sep, s)
	}

	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		out[i] = v
	}
	return out, nil
}
