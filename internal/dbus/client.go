package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/popover"
)

// Client talks to a running anchorpopd.
type Client struct {
	conn   *dbus.Conn
	obj    dbus.BusObject
	logger *slog.Logger
}

// NewClient connects to the session bus.
func NewClient(logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	return &Client{
		conn:   conn,
		obj:    conn.Object(BusName, Path),
		logger: logger,
	}, nil
}

// ShowAt asks the daemon to show text anchored to rect and returns the session id.
func (c *Client) ShowAt(ctx context.Context, text string, rect model.Rect, opts model.Options) (string, error) {
	var id string
	call := c.obj.CallWithContext(ctx, Interface+".ShowAt", 0,
		text, rect.X, rect.Y, rect.Width, rect.Height, EncodeOptions(opts))
	if err := call.Store(&id); err != nil {
		return "", fromDBusError("show", err)
	}
	return id, nil
}

// Dismiss asks the daemon to hide the current popover.
func (c *Client) Dismiss(ctx context.Context) error {
	if err := c.obj.CallWithContext(ctx, Interface+".Dismiss", 0).Err; err != nil {
		return fromDBusError("dismiss", err)
	}
	return nil
}

// Status returns the daemon's current session.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var (
		st      Status
		shownAt int64
	)
	call := c.obj.CallWithContext(ctx, Interface+".Status", 0)
	if err := call.Store(&st.Showing, &st.ID, &shownAt); err != nil {
		return Status{}, fromDBusError("status", err)
	}
	if shownAt > 0 {
		st.ShownAt = time.UnixMilli(shownAt)
	}
	return st, nil
}

// Subscription receives Dismissed signals.
type Subscription struct {
	client *Client
	ch     chan *dbus.Signal
	match  []dbus.MatchOption
}

// SubscribeDismissed starts listening for Dismissed signals. Subscribe
// before ShowAt so a fast dismissal cannot be missed.
func (c *Client) SubscribeDismissed() (*Subscription, error) {
	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(Path),
		dbus.WithMatchInterface(Interface),
		dbus.WithMatchMember("Dismissed"),
	}
	if err := c.conn.AddMatchSignal(match...); err != nil {
		return nil, fmt.Errorf("failed to add signal match: %w", err)
	}

	ch := make(chan *dbus.Signal, 16)
	c.conn.Signal(ch)
	return &Subscription{client: c, ch: ch, match: match}, nil
}

// Wait blocks until the session id is dismissed. Signals for other
// sessions are ignored.
func (s *Subscription) Wait(ctx context.Context, id string) (popover.DismissReason, error) {
	return waitDismissed(ctx, s.ch, id)
}

// Close stops listening.
func (s *Subscription) Close() error {
	s.client.conn.RemoveSignal(s.ch)
	if err := s.client.conn.RemoveMatchSignal(s.match...); err != nil {
		return fmt.Errorf("failed to remove signal match: %w", err)
	}
	return nil
}

// WaitDismissed waits for session id to end. It returns immediately when
// the daemon no longer shows that session.
func (c *Client) WaitDismissed(ctx context.Context, id string) (popover.DismissReason, error) {
	sub, err := c.SubscribeDismissed()
	if err != nil {
		return popover.ReasonNone, err
	}
	defer func() {
		if err := sub.Close(); err != nil {
			c.logger.Debug("failed to close subscription", "error", err)
		}
	}()

	st, err := c.Status(ctx)
	if err != nil {
		return popover.ReasonNone, err
	}
	if !st.Showing || st.ID != id {
		return popover.ReasonNone, nil
	}

	return sub.Wait(ctx, id)
}

func waitDismissed(ctx context.Context, ch <-chan *dbus.Signal, id string) (popover.DismissReason, error) {
	for {
		select {
		case <-ctx.Done():
			return popover.ReasonNone, ctx.Err()
		case sig, ok := <-ch:
			if !ok {
				return popover.ReasonNone, fmt.Errorf("signal channel closed")
			}
			sigID, reason, ok := parseDismissed(sig)
			if !ok || sigID != id {
				continue
			}
			return reason, nil
		}
	}
}
