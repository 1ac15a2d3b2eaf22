package model

import (
	"fmt"
	"strings"
)

// ArrowDirection is a set of permitted arrow orientations.
// The zero value Any lets the placement engine choose. Any is never
// contained in a non-empty set.
type ArrowDirection uint8

const (
	Any   ArrowDirection = 0
	Up    ArrowDirection = 1 << 0
	Down  ArrowDirection = 1 << 1
	Left  ArrowDirection = 1 << 2
	Right ArrowDirection = 1 << 3

	allDirections = Up | Down | Left | Right
)

// DirectionNames maps single directions to their names.
var DirectionNames = map[ArrowDirection]string{
	Any:   "any",
	Up:    "up",
	Down:  "down",
	Left:  "left",
	Right: "right",
}

// IsAny reports whether the set is the Any wildcard.
func (d ArrowDirection) IsAny() bool {
	return d&allDirections == 0
}

// Has reports whether d contains o. Has(Any) is only true for Any itself.
func (d ArrowDirection) Has(o ArrowDirection) bool {
	o &= allDirections
	if o == Any {
		return d.IsAny()
	}
	return d&o == o
}

// Union returns the combination of both sets. Bits outside the four
// directions are dropped.
func (d ArrowDirection) Union(o ArrowDirection) ArrowDirection {
	return (d | o) & allDirections
}

// Opposite returns the opposite side of a single direction.
// Sets with more than one bit, and Any, map to Any.
func (d ArrowDirection) Opposite() ArrowDirection {
	switch d & allDirections {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		return Any
	}
}

// IsVertical reports whether d is exactly Up or Down.
func (d ArrowDirection) IsVertical() bool {
	return d == Up || d == Down
}

// Directions lists the single directions contained in d, in bit order.
func (d ArrowDirection) Directions() []ArrowDirection {
	var out []ArrowDirection
	for _, one := range []ArrowDirection{Up, Down, Left, Right} {
		if d&one != 0 {
			out = append(out, one)
		}
	}
	return out
}

func (d ArrowDirection) String() string {
	if d.IsAny() {
		return "any"
	}
	parts := make([]string, 0, 4)
	for _, one := range d.Directions() {
		parts = append(parts, DirectionNames[one])
	}
	return strings.Join(parts, "|")
}

// MarshalText implements encoding.TextMarshaler (TOML, JSON, YAML).
func (d ArrowDirection) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *ArrowDirection) UnmarshalText(text []byte) error {
	parsed, err := ParseArrowDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseArrowDirection parses names like "down", "up|left" or "any".
// Separators '|', ',', '+' and whitespace are accepted. An empty string is Any.
func ParseArrowDirection(s string) (ArrowDirection, error) {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '|' || r == ',' || r == '+' || r == ' ' || r == '\t'
	})

	var d ArrowDirection
	for _, f := range fields {
		switch f {
		case "any":
		case "up", "top":
			d = d.Union(Up)
		case "down", "bottom":
			d = d.Union(Down)
		case "left":
			d = d.Union(Left)
		case "right":
			d = d.Union(Right)
		default:
			return Any, fmt.Errorf("invalid arrow direction %q, must be any, up, down, left or right", f)
		}
	}
	return d, nil
}
