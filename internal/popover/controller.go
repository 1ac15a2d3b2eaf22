// Package popover runs the show/dismiss lifecycle of a single anchored
// popover on top of a platform presenter.
package popover

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
)

// DefaultDismissTimeout bounds how long a presenter may take to confirm a dismissal.
const DefaultDismissTimeout = time.Second

// State is the lifecycle state of the controller.
type State int

const (
	// StateIdle means nothing is shown.
	StateIdle State = iota
	// StateShowing means a popover is visible.
	StateShowing
	// StateDismissing means a dismissal is waiting for the presenter.
	StateDismissing
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateShowing:
		return "showing"
	case StateDismissing:
		return "dismissing"
	default:
		return "unknown"
	}
}

// Hooks are called outside the controller lock. Dismissed also fires for a
// session replaced by Show, while that Show is still in progress, so it must
// not call Show synchronously.
type Hooks struct {
	Shown     func(s *Session)
	Dismissed func(s *Session, reason DismissReason)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger. nil keeps slog.Default().
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithParams sets the placement parameters.
func WithParams(p placement.Params) ControllerOption {
	return func(c *Controller) {
		c.params = p
	}
}

// WithDismissTimeout sets how long to wait for the presenter to confirm a dismissal.
func WithDismissTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.dismissTimeout = d
		}
	}
}

// WithHooks sets lifecycle hooks.
func WithHooks(h Hooks) ControllerOption {
	return func(c *Controller) {
		c.hooks = h
	}
}

// Controller shows at most one popover at a time.
type Controller struct {
	backend Backend
	logger  *slog.Logger
	hooks   Hooks

	// opMu serializes Show so a replacement completes before the next presentation.
	opMu sync.Mutex

	mu             sync.Mutex
	state          State
	current        *Session
	params         placement.Params
	dismissTimeout time.Duration
}

// NewController creates a Controller for backend.
func NewController(backend Backend, opts ...ControllerOption) *Controller {
	c := &Controller{
		backend:        backend,
		logger:         slog.Default(),
		params:         placement.DefaultParams(),
		dismissTimeout: DefaultDismissTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backend returns the backend the controller presents through.
func (c *Controller) Backend() Backend {
	return c.backend
}

// ShowAtView shows content anchored to a live view.
func (c *Controller) ShowAtView(content, view any, opts *model.Options) (*Session, error) {
	if view == nil {
		return nil, invalidArgument("show", "anchor view is nil", nil)
	}
	return c.Show(content, model.AnchorAtView(view), opts)
}

// ShowAtRect shows content anchored to a screen rectangle.
func (c *Controller) ShowAtRect(content any, rect model.Rect, opts *model.Options) (*Session, error) {
	return c.Show(content, model.AnchorAtRect(rect), opts)
}

// Show presents content next to anchor. A popover that is already visible
// is dismissed with ReasonReplaced first, and its session completes before
// the new one is presented. nil opts means model.DefaultOptions().
//
// Argument, platform and geometry errors are reported before the visible
// popover is touched. A presentation failure leaves the controller idle.
func (c *Controller) Show(content any, anchor model.Anchor, opts *model.Options) (*Session, error) {
	if isNil(content) {
		return nil, invalidArgument("show", "content is nil", nil)
	}
	if anchor == nil {
		return nil, invalidArgument("show", "anchor is nil", nil)
	}

	o := model.DefaultOptions()
	if opts != nil {
		o = opts.Clone()
	}
	if err := o.Validate(); err != nil {
		return nil, invalidArgument("show", "invalid options", err)
	}

	if !c.backend.Available() {
		return nil, &Error{Kind: KindUnsupportedPlatform, Op: "show", Message: "no presenter for this platform"}
	}

	anchorRect, err := c.resolveAnchor(anchor)
	if err != nil {
		return nil, err
	}

	display, err := c.backend.Resolver.CurrentDisplayBounds()
	if err != nil {
		return nil, presentationFailure("show", "failed to get display bounds", err)
	}

	var measured model.Size
	preferred := o.PreferredSize()
	if preferred.Width <= 0 || preferred.Height <= 0 {
		measured, err = c.backend.Resolver.MeasureNaturalSize(content)
		if err != nil {
			c.logger.Warn("failed to measure content, using default size", "error", err)
			measured = model.Size{}
		}
	}

	c.mu.Lock()
	params := c.params
	c.mu.Unlock()

	pl := placement.Compute(placement.Request{
		Anchor:    anchorRect,
		Preferred: preferred,
		Measured:  measured,
		Direction: o.ArrowDirection,
		Display:   display,
	}, params)

	c.opMu.Lock()
	c.replaceCurrent()

	sess := newSession(content, anchorRect, pl, o)

	c.mu.Lock()
	c.current = sess
	c.state = StateShowing
	c.mu.Unlock()

	h, err := c.backend.Presenter.PresentAt(content, pl, o.Clone(), func(reason DismissReason) {
		c.external(sess, reason)
	})
	if err != nil {
		sess.once.Do(func() {
			c.mu.Lock()
			if c.current == sess {
				c.current = nil
				c.state = StateIdle
			}
			sess.finish(ReasonNone)
			c.mu.Unlock()
		})
		c.opMu.Unlock()
		c.logger.Error("failed to present popover", "backend", c.backend.Name, "error", err)
		return nil, presentationFailure("show", "failed to present popover", err)
	}
	sess.setHandle(h)
	c.opMu.Unlock()

	c.logger.Debug("popover shown",
		"id", sess.id,
		"backend", c.backend.Name,
		"direction", pl.Direction,
		"flipped", pl.Flipped,
		"rect", pl.Rect(),
	)

	if c.hooks.Shown != nil {
		c.hooks.Shown(sess)
	}
	return sess, nil
}

// ShowAndWait shows content and blocks until it is dismissed. Cancelling
// ctx dismisses the popover and returns ctx.Err() once it is gone.
func (c *Controller) ShowAndWait(ctx context.Context, content any, anchor model.Anchor, opts *model.Options) (DismissReason, error) {
	sess, err := c.Show(content, anchor, opts)
	if err != nil {
		return ReasonNone, err
	}

	select {
	case <-sess.Done():
		return sess.Reason(), nil
	case <-ctx.Done():
		c.dismissSession(sess, ReasonExplicit)
		<-sess.Done()
		return sess.Reason(), ctx.Err()
	}
}

// Dismiss hides the current popover. It is a no-op when nothing is shown
// or a dismissal is already in flight, and never blocks on the presenter's
// completion. Safe to call from content callbacks.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	sess := c.current
	c.mu.Unlock()
	if sess != nil {
		c.dismissSession(sess, ReasonExplicit)
	}
}

// DismissAsync dismisses the current popover and waits for it to be gone.
func (c *Controller) DismissAsync(ctx context.Context) error {
	c.mu.Lock()
	sess := c.current
	c.mu.Unlock()
	if sess == nil {
		return nil
	}

	c.dismissSession(sess, ReasonExplicit)
	_, err := sess.Wait(ctx)
	return err
}

// IsShowing reports whether a popover is visible or being dismissed.
func (c *Controller) IsShowing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != StateIdle
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the live session, or nil when idle.
func (c *Controller) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Params returns the placement parameters.
func (c *Controller) Params() placement.Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// SetParams replaces the placement parameters for future shows.
func (c *Controller) SetParams(p placement.Params) {
	c.mu.Lock()
	c.params = p
	c.mu.Unlock()
}

// SetDismissTimeout changes the dismissal timeout for future dismissals.
func (c *Controller) SetDismissTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultDismissTimeout
	}
	c.mu.Lock()
	c.dismissTimeout = d
	c.mu.Unlock()
}

func (c *Controller) resolveAnchor(anchor model.Anchor) (model.Rect, error) {
	switch a := anchor.(type) {
	case model.RectAnchor:
		if !a.Rect.Valid() {
			return model.Rect{}, invalidArgument("show", "anchor rect is not valid: "+a.Rect.String(), nil)
		}
		return a.Rect, nil
	case model.ViewAnchor:
		if isNil(a.View) {
			return model.Rect{}, invalidArgument("show", "anchor view is nil", nil)
		}
		r, err := c.backend.Resolver.ResolveScreenBounds(a.View)
		if err != nil {
			return model.Rect{}, invalidArgument("show", "failed to resolve anchor view", err)
		}
		if !r.Valid() {
			return model.Rect{}, invalidArgument("show", "anchor view has invalid bounds: "+r.String(), nil)
		}
		return r, nil
	default:
		return model.Rect{}, invalidArgument("show", "unsupported anchor type", nil)
	}
}

// replaceCurrent force-completes whatever is on screen. Called with opMu held.
func (c *Controller) replaceCurrent() {
	c.mu.Lock()
	prev := c.current
	prevState := c.state
	if prev != nil && prevState == StateShowing {
		c.state = StateDismissing
	}
	c.mu.Unlock()

	if prev == nil {
		return
	}

	reason := ReasonReplaced
	if prevState == StateShowing {
		prev.beginDismiss(ReasonReplaced, nil)
		c.backend.Presenter.Dismiss(prev.getHandle(), func() {})
	} else if r := prev.pendingReason(); r != ReasonNone {
		reason = r
	}

	c.logger.Debug("replacing popover", "id", prev.id, "reason", reason)
	c.complete(prev, reason)
}

// dismissSession starts dismissing sess if it is still the live session.
func (c *Controller) dismissSession(sess *Session, reason DismissReason) {
	c.mu.Lock()
	if c.current != sess || c.state != StateShowing {
		c.mu.Unlock()
		return
	}
	c.state = StateDismissing
	timeout := c.dismissTimeout
	c.mu.Unlock()

	timer := time.AfterFunc(timeout, func() {
		c.logger.Warn("presenter did not confirm dismissal",
			"id", sess.id,
			"timeout", timeout,
			"error", ErrTimeout,
		)
		c.complete(sess, ReasonTimeout)
	})
	sess.beginDismiss(reason, timer)

	c.logger.Debug("dismissing popover", "id", sess.id, "reason", reason)
	c.backend.Presenter.Dismiss(sess.getHandle(), func() {
		c.complete(sess, reason)
	})
}

// external handles a dismissal reported by the presenter.
func (c *Controller) external(sess *Session, reason DismissReason) {
	c.mu.Lock()
	current := c.current == sess
	dismissing := c.state == StateDismissing
	c.mu.Unlock()

	if !current {
		c.logger.Debug("ignoring dismissal of stale popover", "id", sess.id, "reason", reason)
		return
	}
	if dismissing {
		if r := sess.pendingReason(); r != ReasonNone {
			reason = r
		}
	}
	c.complete(sess, reason)
}

// complete ends sess exactly once. Done closes in the same critical
// section that moves the controller to Idle.
func (c *Controller) complete(sess *Session, reason DismissReason) {
	completed := false
	sess.once.Do(func() {
		c.mu.Lock()
		if c.current == sess {
			c.current = nil
			c.state = StateIdle
		}
		sess.finish(reason)
		c.mu.Unlock()
		completed = true
	})
	if !completed {
		return
	}

	c.logger.Debug("popover dismissed", "id", sess.id, "reason", reason)
	if c.hooks.Dismissed != nil {
		c.hooks.Dismissed(sess, reason)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
