package popover

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
)

// Session is one show of a popover. It stays valid after dismissal so the
// caller can read why it ended.
type Session struct {
	id        string
	content   any
	anchor    model.Rect
	placement placement.Result
	options   model.Options
	shownAt   time.Time

	done chan struct{}
	once sync.Once

	mu      sync.Mutex
	handle  Handle
	pending DismissReason // reason of an in-flight dismissal
	reason  DismissReason
	timer   *time.Timer
	closed  bool
}

func newSession(content any, anchor model.Rect, pl placement.Result, opts model.Options) *Session {
	return &Session{
		id:        ulid.Make().String(),
		content:   content,
		anchor:    anchor,
		placement: pl,
		options:   opts,
		shownAt:   time.Now(),
		done:      make(chan struct{}),
	}
}

// ID returns the session ULID.
func (s *Session) ID() string { return s.id }

// Content returns the content that was shown.
func (s *Session) Content() any { return s.content }

// Anchor returns the resolved anchor rectangle in screen coordinates.
func (s *Session) Anchor() model.Rect { return s.anchor }

// Placement returns where the popover was put.
func (s *Session) Placement() placement.Result { return s.placement }

// Options returns a copy of the options the popover was shown with.
func (s *Session) Options() model.Options { return s.options.Clone() }

// ShownAt returns when the popover was shown.
func (s *Session) ShownAt() time.Time { return s.shownAt }

// Done is closed exactly once, after the popover is fully dismissed.
func (s *Session) Done() <-chan struct{} { return s.done }

// IsShowing reports whether the session has not completed yet.
func (s *Session) IsShowing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Reason returns why the session ended, or ReasonNone while it is live.
func (s *Session) Reason() DismissReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Wait blocks until the session completes or ctx is done.
func (s *Session) Wait(ctx context.Context) (DismissReason, error) {
	select {
	case <-s.done:
		return s.Reason(), nil
	case <-ctx.Done():
		return ReasonNone, ctx.Err()
	}
}

func (s *Session) getHandle() Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

func (s *Session) setHandle(h Handle) {
	s.mu.Lock()
	s.handle = h
	s.mu.Unlock()
}

func (s *Session) beginDismiss(reason DismissReason, timer *time.Timer) {
	s.mu.Lock()
	s.pending = reason
	s.timer = timer
	s.mu.Unlock()
}

func (s *Session) pendingReason() DismissReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// finish records the final reason and closes Done. Callers guard it with once.
func (s *Session) finish(reason DismissReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.reason = reason
	s.closed = true
	close(s.done)
}
