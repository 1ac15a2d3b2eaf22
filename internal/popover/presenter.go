package popover

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
)

// DismissReason says why a popover went away.
type DismissReason int

const (
	ReasonNone DismissReason = iota
	// ReasonExplicit means Dismiss was called.
	ReasonExplicit
	// ReasonOutsideTap means the user clicked outside the popover.
	ReasonOutsideTap
	// ReasonBackAction means the user pressed Escape or a back button.
	ReasonBackAction
	// ReasonAnchorGone means the anchor disappeared while shown.
	ReasonAnchorGone
	// ReasonReplaced means a newer Show took over.
	ReasonReplaced
	// ReasonTimeout means the presenter never confirmed the dismissal.
	ReasonTimeout
)

var reasonNames = map[DismissReason]string{
	ReasonNone:       "none",
	ReasonExplicit:   "explicit",
	ReasonOutsideTap: "outside-tap",
	ReasonBackAction: "back",
	ReasonAnchorGone: "anchor-gone",
	ReasonReplaced:   "replaced",
	ReasonTimeout:    "timeout",
}

// String returns the string representation of DismissReason.
func (r DismissReason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseDismissReason is the inverse of String.
func ParseDismissReason(s string) (DismissReason, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, name := range reasonNames {
		if name == s {
			return r, nil
		}
	}
	return ReasonNone, fmt.Errorf("unknown dismiss reason %q", s)
}

// Handle is an opaque token a presenter returns for a shown popover.
type Handle any

// ExternalDismissFunc is how a presenter reports that the popover was closed
// by something other than the controller. The presenter has already torn
// the native overlay down when it calls this.
type ExternalDismissFunc func(reason DismissReason)

// Presenter shows and hides native overlays.
type Presenter interface {
	// PresentAt shows content at the computed placement. opts is a private
	// copy. onDismiss may be called from any goroutine, at most once.
	PresentAt(content any, pl placement.Result, opts model.Options, onDismiss ExternalDismissFunc) (Handle, error)

	// Dismiss hides the popover and calls done once it is fully gone.
	// done may be called synchronously.
	Dismiss(h Handle, done func())
}

// Resolver answers the geometry questions the placement engine needs.
type Resolver interface {
	MeasureNaturalSize(content any) (model.Size, error)
	ResolveScreenBounds(view any) (model.Rect, error)
	CurrentDisplayBounds() (model.Rect, error)
}

// Backend bundles a presenter with the resolver for the same platform.
type Backend struct {
	Name      string
	Presenter Presenter
	Resolver  Resolver
}

// Available reports whether the backend can show anything.
func (b Backend) Available() bool {
	return b.Presenter != nil && b.Resolver != nil
}
