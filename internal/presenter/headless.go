package presenter

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
	"github.com/jmylchreest/anchorpop/internal/popover"
)

// ErrViewNotFound is returned when a named view is not registered.
var ErrViewNotFound = errors.New("view not found")

// Presentation is one PresentAt call recorded by Headless.
type Presentation struct {
	ID        int
	Content   any
	Placement placement.Result
	Options   model.Options
	Dismissed bool

	onDismiss popover.ExternalDismissFunc
}

// Headless is a presenter and resolver that draws nothing. It backs dry
// runs and tests; views are identified by name.
type Headless struct {
	mu     sync.Mutex
	logger *slog.Logger

	display  model.Rect
	views    map[string]model.Rect
	natural  model.Size
	cellSize model.Size

	failPresent  error
	deferDismiss bool
	pending      []func()

	presentations []*Presentation
	nextID        int
}

// NewHeadless creates a Headless presenter with a 1920x1080 display.
func NewHeadless(logger *slog.Logger) *Headless {
	if logger == nil {
		logger = slog.Default()
	}
	return &Headless{
		logger:   logger,
		display:  model.Rect{Width: 1920, Height: 1080},
		views:    make(map[string]model.Rect),
		cellSize: model.Size{Width: 8, Height: 16},
	}
}

// Backend wraps h as a popover.Backend.
func (h *Headless) Backend() popover.Backend {
	return popover.Backend{Name: NameHeadless, Presenter: h, Resolver: h}
}

// SetDisplay sets the display bounds.
func (h *Headless) SetDisplay(r model.Rect) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.display = r
}

// SetView registers a named view at r.
func (h *Headless) SetView(name string, r model.Rect) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.views[name] = r
}

// RemoveView forgets a named view.
func (h *Headless) RemoveView(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.views, name)
}

// SetNaturalSize fixes the measured size of any content.
// Zero falls back to measuring strings by cell size.
func (h *Headless) SetNaturalSize(s model.Size) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.natural = s
}

// FailNextPresent makes the next PresentAt return err.
func (h *Headless) FailNextPresent(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failPresent = err
}

// SetDeferDismiss holds Dismiss completions until ReleaseDismissals is called.
func (h *Headless) SetDeferDismiss(deferred bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deferDismiss = deferred
}

// ReleaseDismissals runs the held completions and returns how many ran.
func (h *Headless) ReleaseDismissals() int {
	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()

	for _, done := range pending {
		done()
	}
	return len(pending)
}

// PresentAt implements popover.Presenter.
func (h *Headless) PresentAt(content any, pl placement.Result, opts model.Options, onDismiss popover.ExternalDismissFunc) (popover.Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.failPresent; err != nil {
		h.failPresent = nil
		return nil, err
	}

	h.nextID++
	p := &Presentation{
		ID:        h.nextID,
		Content:   content,
		Placement: pl,
		Options:   opts,
		onDismiss: onDismiss,
	}
	h.presentations = append(h.presentations, p)

	h.logger.Debug("headless present", "id", p.ID, "rect", pl.Rect(), "direction", pl.Direction)
	return p, nil
}

// Dismiss implements popover.Presenter.
func (h *Headless) Dismiss(handle popover.Handle, done func()) {
	h.mu.Lock()
	if p, ok := handle.(*Presentation); ok {
		p.Dismissed = true
	}
	if h.deferDismiss {
		h.pending = append(h.pending, done)
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	done()
}

// DismissExternally closes the active presentation as if the user did it.
// It reports false when nothing is active.
func (h *Headless) DismissExternally(reason popover.DismissReason) bool {
	h.mu.Lock()
	p := h.active()
	if p == nil {
		h.mu.Unlock()
		return false
	}
	p.Dismissed = true
	cb := p.onDismiss
	h.mu.Unlock()

	if cb != nil {
		cb(reason)
	}
	return true
}

// Presentations returns copies of every recorded presentation.
func (h *Headless) Presentations() []Presentation {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Presentation, 0, len(h.presentations))
	for _, p := range h.presentations {
		out = append(out, *p)
	}
	return out
}

// Active returns a copy of the presentation that is still up.
func (h *Headless) Active() (Presentation, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if p := h.active(); p != nil {
		return *p, true
	}
	return Presentation{}, false
}

// VisibleCount returns how many presentations have not been dismissed.
func (h *Headless) VisibleCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, p := range h.presentations {
		if !p.Dismissed {
			n++
		}
	}
	return n
}

func (h *Headless) active() *Presentation {
	for i := len(h.presentations) - 1; i >= 0; i-- {
		if !h.presentations[i].Dismissed {
			return h.presentations[i]
		}
	}
	return nil
}

// MeasureNaturalSize implements popover.Resolver.
func (h *Headless) MeasureNaturalSize(content any) (model.Size, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.natural.IsZero() {
		return h.natural, nil
	}
	switch c := content.(type) {
	case string:
		return model.Size{
			Width:  float64(utf8.RuneCountInString(c)) * h.cellSize.Width,
			Height: h.cellSize.Height,
		}, nil
	case model.Size:
		return c, nil
	default:
		return model.Size{}, fmt.Errorf("cannot measure %T", content)
	}
}

// ResolveScreenBounds implements popover.Resolver.
func (h *Headless) ResolveScreenBounds(view any) (model.Rect, error) {
	name, ok := view.(string)
	if !ok {
		return model.Rect{}, fmt.Errorf("headless views are names, got %T", view)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.views[name]
	if !ok {
		return model.Rect{}, fmt.Errorf("%w: %q", ErrViewNotFound, name)
	}
	return r, nil
}

// CurrentDisplayBounds implements popover.Resolver.
func (h *Headless) CurrentDisplayBounds() (model.Rect, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.display, nil
}
