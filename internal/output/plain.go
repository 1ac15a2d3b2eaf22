package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/anchorpop/internal/model"
)

// PlainFormatter formats reports as plain text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
	err      error
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}
	if f.opts.Now == nil {
		f.opts.Now = time.Now
	}

	if opts.Template != "" {
		f.template, f.err = template.New("text").Funcs(f.templateFuncs()).Parse(opts.Template)
	}

	return f
}

// Format writes the report as plain text.
func (f *PlainFormatter) Format(w io.Writer, report any) error {
	if f.err != nil {
		return fmt.Errorf("invalid template: %w", f.err)
	}
	if f.template != nil {
		if err := f.template.Execute(w, report); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder
	switch r := report.(type) {
	case PlacementReport:
		f.writePlacement(&sb, r)
	case *PlacementReport:
		f.writePlacement(&sb, *r)
	case StatusReport:
		f.writeStatus(&sb, r)
	case DismissReport:
		fmt.Fprintf(&sb, "%s %s\n", r.ID, r.Reason)
	default:
		fmt.Fprintf(&sb, "%v\n", report)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (f *PlainFormatter) writePlacement(sb *strings.Builder, r PlacementReport) {
	pl := r.Placement
	fmt.Fprintf(sb, "origin:    %s\n", formatPoint(pl.Origin))
	fmt.Fprintf(sb, "size:      %s x %s\n", formatNumber(pl.Size.Width), formatNumber(pl.Size.Height))
	fmt.Fprintf(sb, "direction: %s %s", pl.Direction, pl.ArrowGlyph())
	if pl.Flipped {
		fmt.Fprintf(sb, " (flipped, requested %s)", pl.Requested)
	} else if pl.Requested != pl.Direction {
		fmt.Fprintf(sb, " (requested %s)", pl.Requested)
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "arrow tip: %s\n", formatPoint(pl.ArrowTip))
}

func (f *PlainFormatter) writeStatus(sb *strings.Builder, r StatusReport) {
	if !r.Showing {
		sb.WriteString("idle\n")
		return
	}
	sb.WriteString("showing " + r.ID)
	if r.ShownAt != nil {
		sb.WriteString(" (shown " + humanize.RelTime(*r.ShownAt, f.opts.Now(), "ago", "from now") + ")")
	}
	sb.WriteString("\n")
}

// templateFuncs returns template helper functions.
func (f *PlainFormatter) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"ago": func(t *time.Time) string {
			if t == nil {
				return "never"
			}
			return humanize.RelTime(*t, f.opts.Now(), "ago", "from now")
		},
		"point": formatPoint,
		"num":   formatNumber,
		"rect": func(r model.Rect) string {
			return r.String()
		},
	}
}

func formatPoint(p model.Point) string {
	return formatNumber(p.X) + "," + formatNumber(p.Y)
}

// formatNumber drops trailing zeros so whole numbers print as integers.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
