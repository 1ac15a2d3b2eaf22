package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/anchorpop/internal/model"
)

const (
	// Interface is the popover interface name.
	Interface = "io.github.jmylchreest.AnchorPop1"
	// Path is the popover object path.
	Path = "/io/github/jmylchreest/AnchorPop1"
	// BusName is the bus name to claim.
	BusName = "io.github.jmylchreest.AnchorPop1"
	// ErrorPrefix prefixes the D-Bus error names returned by the service.
	ErrorPrefix = Interface + ".Error."
)

// Handler does the actual work behind the D-Bus methods. Implementations
// marshal onto the UI thread as needed and block until done.
type Handler interface {
	ShowAt(req ShowRequest) (id string, err error)
	Dismiss()
	Status() Status
}

// Server implements the io.github.jmylchreest.AnchorPop1 D-Bus interface.
type Server struct {
	conn   *dbus.Conn
	logger *slog.Logger

	handler     Handler
	baseOptions model.Options

	mu      sync.RWMutex
	running bool
}

// NewServer creates a new Server.
func NewServer(handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:      logger,
		handler:     handler,
		baseOptions: model.DefaultOptions(),
	}
}

// SetBaseOptions sets the options ShowAt callers override.
func (s *Server) SetBaseOptions(o model.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseOptions = o.Clone()
}

// Start connects to the session bus and exports the popover service.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn

	// Export the popover server object
	if err := conn.Export(s, Path, Interface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	// Export introspection data
	node := &introspect.Node{
		Name: Path,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: popoverMethods(),
				Signals: popoverSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), Path,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	// Request the bus name
	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", BusName)
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus popover server started", "interface", Interface, "path", Path)
	return nil
}

// Stop releases the bus name.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(BusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// Don't close the connection as it's shared (SessionBus)
	}

	s.logger.Info("D-Bus popover server stopped")
	return nil
}

// ShowAt shows text anchored to a screen rectangle.
// D-Bus method: ShowAt(sdddda{sv}) -> s
func (s *Server) ShowAt(text string, x, y, width, height float64, options map[string]dbus.Variant) (string, *dbus.Error) {
	s.logger.Debug("ShowAt called", "x", x, "y", y, "width", width, "height", height)

	s.mu.RLock()
	base := s.baseOptions
	s.mu.RUnlock()

	opts, err := ParseOptions(base, options)
	if err != nil {
		return "", dbus.NewError(ErrorPrefix+"InvalidArgument", []any{err.Error()})
	}

	id, err := s.handler.ShowAt(ShowRequest{
		Text:    text,
		Anchor:  model.Rect{X: x, Y: y, Width: width, Height: height},
		Options: opts,
	})
	if err != nil {
		s.logger.Warn("ShowAt failed", "error", err)
		return "", toDBusError(err)
	}
	return id, nil
}

// Dismiss hides the current popover. No-op when nothing is shown.
// D-Bus method: Dismiss() -> nothing
func (s *Server) Dismiss() *dbus.Error {
	s.logger.Debug("Dismiss called")
	s.handler.Dismiss()
	return nil
}

// IsShowing reports whether a popover is on screen.
// D-Bus method: IsShowing() -> b
func (s *Server) IsShowing() (bool, *dbus.Error) {
	return s.handler.Status().Showing, nil
}

// Status returns the current session.
// D-Bus method: Status() -> (bsx), shown_at is unix milliseconds or 0.
func (s *Server) Status() (bool, string, int64, *dbus.Error) {
	st := s.handler.Status()
	var shownAt int64
	if !st.ShownAt.IsZero() {
		shownAt = st.ShownAt.UnixMilli()
	}
	return st.Showing, st.ID, shownAt, nil
}

// popoverMethods returns the D-Bus method introspection data.
func popoverMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "ShowAt",
			Args: []introspect.Arg{
				{Name: "text", Type: "s", Direction: "in"},
				{Name: "x", Type: "d", Direction: "in"},
				{Name: "y", Type: "d", Direction: "in"},
				{Name: "width", Type: "d", Direction: "in"},
				{Name: "height", Type: "d", Direction: "in"},
				{Name: "options", Type: "a{sv}", Direction: "in"},
				{Name: "id", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Dismiss",
		},
		{
			Name: "IsShowing",
			Args: []introspect.Arg{
				{Name: "showing", Type: "b", Direction: "out"},
			},
		},
		{
			Name: "Status",
			Args: []introspect.Arg{
				{Name: "showing", Type: "b", Direction: "out"},
				{Name: "id", Type: "s", Direction: "out"},
				{Name: "shown_at", Type: "x", Direction: "out"},
			},
		},
	}
}

// popoverSignals returns the D-Bus signal introspection data.
func popoverSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "Dismissed",
			Args: []introspect.Arg{
				{Name: "id", Type: "s"},
				{Name: "reason", Type: "s"},
			},
		},
	}
}
