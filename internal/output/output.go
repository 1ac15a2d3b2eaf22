// Package output provides output formatters for CLI results.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
)

// Formatter formats a report for output.
type Formatter interface {
	// Format writes the report to the writer.
	Format(w io.Writer, report any) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatPlain FormatType = "text"
)

// ValidFormats returns all accepted format names.
func ValidFormats() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML}
}

// ParseFormat parses a format name. "plain" is accepted for text.
func ParseFormat(s string) (FormatType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "plain":
		return FormatPlain, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q, must be one of: %v", s, ValidFormats())
	}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template string           // Custom Go template for text format
	Now      func() time.Time // Clock for relative times, nil = time.Now
}

// PlacementReport is the result of a dry-run placement.
type PlacementReport struct {
	Anchor    model.Rect       `json:"anchor" yaml:"anchor"`
	Display   model.Rect       `json:"display" yaml:"display"`
	Placement placement.Result `json:"placement" yaml:"placement"`
}

// StatusReport describes the popover a daemon is showing.
type StatusReport struct {
	Showing bool       `json:"showing" yaml:"showing"`
	ID      string     `json:"id,omitempty" yaml:"id,omitempty"`
	ShownAt *time.Time `json:"shown_at,omitempty" yaml:"shown_at,omitempty"`
}

// DismissReport is printed when a waited-on popover goes away.
type DismissReport struct {
	ID     string `json:"id" yaml:"id"`
	Reason string `json:"reason" yaml:"reason"`
}
