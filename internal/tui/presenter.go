package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
	"github.com/jmylchreest/anchorpop/internal/popover"
)

// BackendName is the registry name of this presenter.
const BackendName = "terminal"

var (
	errNotAttached  = errors.New("terminal program not running")
	errUnknownSize  = errors.New("terminal size not known yet")
	errRegionAbsent = errors.New("no such region")
)

// Region is a named anchor on the terminal screen, in cells.
type Region struct {
	Name  string
	Label string
	Rect  model.Rect
}

// Presenter shows popovers inside a running bubbletea program. The
// program's Model keeps the screen geometry current.
type Presenter struct {
	logger *slog.Logger
	out    *outbox

	mu      sync.RWMutex
	width   int
	height  int
	regions map[string]Region
	order   []Region
	seq     int
}

// NewPresenter creates a terminal presenter. Call Attach once the
// program exists.
func NewPresenter(logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Presenter{
		logger:  logger,
		out:     newOutbox(),
		regions: make(map[string]Region),
	}
}

// Backend returns the presenter and resolver pair.
func (p *Presenter) Backend() popover.Backend {
	return popover.Backend{Name: BackendName, Presenter: p, Resolver: p}
}

// Attach starts delivering messages with send, usually tea.Program.Send.
func (p *Presenter) Attach(send func(tea.Msg)) {
	if p.out.start(send) {
		p.logger.Debug("terminal presenter attached")
	}
}

// Detach stops delivering messages.
func (p *Presenter) Detach() {
	p.out.stop()
}

// SetStatus shows text in the status line.
func (p *Presenter) SetStatus(text string) {
	p.out.push(statusMsg{text: text})
}

// PresentAt implements popover.Presenter.
func (p *Presenter) PresentAt(content any, pl placement.Result, opts model.Options, onDismiss popover.ExternalDismissFunc) (popover.Handle, error) {
	text, err := contentText(content)
	if err != nil {
		return nil, &popover.Error{Kind: popover.KindPresentationFailure, Op: "present", Message: "cannot render content", Cause: err}
	}
	if !p.out.isRunning() {
		return nil, &popover.Error{Kind: popover.KindPresentationFailure, Op: "present", Cause: errNotAttached}
	}

	p.mu.Lock()
	p.seq++
	id := "t" + strconv.Itoa(p.seq)
	p.mu.Unlock()

	p.out.push(showMsg{overlay: overlay{
		id:        id,
		text:      text,
		placement: pl,
		options:   opts,
		onDismiss: onDismiss,
	}})

	p.logger.Debug("presented popover", "id", id, "origin", pl.Origin, "direction", pl.Direction.String())
	return &handle{id: id}, nil
}

// Dismiss implements popover.Presenter. done runs once the program has
// removed the popover.
func (p *Presenter) Dismiss(h popover.Handle, done func()) {
	hd, ok := h.(*handle)
	if !ok || hd == nil || !p.out.isRunning() {
		if done != nil {
			done()
		}
		return
	}
	p.out.push(hideMsg{id: hd.id, done: done})
}

// MeasureNaturalSize implements popover.Resolver.
func (p *Presenter) MeasureNaturalSize(content any) (model.Size, error) {
	text, err := contentText(content)
	if err != nil {
		return model.Size{}, err
	}
	return measureText(text), nil
}

// ResolveScreenBounds implements popover.Resolver. Views are region
// names, Regions or rectangles in cells.
func (p *Presenter) ResolveScreenBounds(view any) (model.Rect, error) {
	switch v := view.(type) {
	case model.Rect:
		return v, nil
	case Region:
		return v.Rect, nil
	case string:
		p.mu.RLock()
		r, ok := p.regions[v]
		p.mu.RUnlock()
		if !ok {
			return model.Rect{}, fmt.Errorf("%w: %q", errRegionAbsent, v)
		}
		return r.Rect, nil
	default:
		return model.Rect{}, fmt.Errorf("unsupported anchor view %T", view)
	}
}

// CurrentDisplayBounds implements popover.Resolver.
func (p *Presenter) CurrentDisplayBounds() (model.Rect, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.width <= 0 || p.height <= 0 {
		return model.Rect{}, errUnknownSize
	}
	return model.Rect{Width: float64(p.width), Height: float64(p.height)}, nil
}

// Regions returns the current regions in layout order.
func (p *Presenter) Regions() []Region {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.order)
}

// setScreen records the terminal size and region layout.
func (p *Presenter) setScreen(width, height int, regions []Region) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width, p.height = width, height
	p.order = slices.Clone(regions)
	p.regions = make(map[string]Region, len(regions))
	for _, r := range regions {
		p.regions[r.Name] = r
	}
}

type handle struct {
	id string
}

func contentText(content any) (string, error) {
	switch c := content.(type) {
	case string:
		return c, nil
	case fmt.Stringer:
		return c.String(), nil
	default:
		return "", fmt.Errorf("unsupported content type %T", content)
	}
}
