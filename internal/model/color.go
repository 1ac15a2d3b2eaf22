package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Text colors returned by ContrastText.
var (
	TextOnLight = MustParseColor("#1e1e1e")
	TextOnDark  = MustParseColor("#f6f6f6")
)

// Color is an RGBA background color.
type Color struct {
	colorful.Color
	Alpha float64
}

// RGBA builds a color from 0-1 channel values.
func RGBA(r, g, b, a float64) Color {
	return Color{Color: colorful.Color{R: r, G: g, B: b}, Alpha: a}
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	hex := strings.TrimPrefix(s, "#")

	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6, 8:
	default:
		return Color{}, fmt.Errorf("invalid color %q: expected #rgb, #rrggbb or #rrggbbaa", s)
	}

	alpha := 1.0
	if len(hex) == 8 {
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		alpha = float64(a) / 255
		hex = hex[:6]
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{Color: c, Alpha: alpha}, nil
}

// MustParseColor is ParseColor for constants; it panics on bad input.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex renders the color as #rrggbb, or #rrggbbaa when translucent.
func (c Color) Hex() string {
	if c.Alpha >= 1 {
		return c.Color.Hex()
	}
	return fmt.Sprintf("%s%02x", c.Color.Hex(), uint8(c.Alpha*255+0.5))
}

// CSS renders the color as a CSS rgba() value.
func (c Color) CSS() string {
	r, g, b := c.Clamped().RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %.3g)", r, g, b, c.Alpha)
}

// IsDark reports whether foreground text on this color should be light.
func (c Color) IsDark() bool {
	l, _, _ := c.Clamped().Lab()
	return l < 0.5
}

// ContrastText returns a readable text color for c used as a background.
func (c Color) ContrastText() Color {
	if c.IsDark() {
		return TextOnDark
	}
	return TextOnLight
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
