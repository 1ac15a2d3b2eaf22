package theme

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/anchorpop/internal/model"
)

// CSS classes used by presenters.
const (
	ClassWindow   = "anchorpop-window"
	ClassBackdrop = "anchorpop-backdrop"
	ClassPopover  = "anchorpop-popover"
	ClassArrow    = "anchorpop-arrow"
	ClassContent  = "anchorpop-content"
)

// SchemeClass returns "light" or "dark". scheme is "light", "dark" or
// "system"; systemDark is the desktop preference used for "system".
func SchemeClass(scheme string, systemDark bool) string {
	switch scheme {
	case "light":
		return "light"
	case "dark":
		return "dark"
	}
	if systemDark {
		return "dark"
	}
	return "light"
}

// OverrideClass is the per-popover class that scopes OverrideCSS.
func OverrideClass(id string) string {
	return "anchorpop-" + strings.ToLower(id)
}

// OverrideCSS renders the rules applying a popover's options on top of
// the theme: background color, readable text and corner radius.
// It returns "" when nothing needs overriding.
func OverrideCSS(class string, opts model.Options, radius int) string {
	var b strings.Builder

	if radius >= 0 {
		fmt.Fprintf(&b, ".%s.%s { border-radius: %dpx; }\n", ClassPopover, class, radius)
	}

	if bg := opts.BackgroundColor; bg != nil {
		fmt.Fprintf(&b, ".%s.%s { background: %s; color: %s; }\n", ClassPopover, class, bg.CSS(), bg.ContrastText().Hex())
		fmt.Fprintf(&b, ".%s.%s { color: %s; }\n", ClassArrow, class, bg.CSS())
	}

	return b.String()
}
