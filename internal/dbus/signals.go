package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/anchorpop/internal/popover"
)

// EmitDismissed emits the Dismissed signal.
// This signal is emitted once per session, whatever ended it.
func (s *Server) EmitDismissed(id string, reason popover.DismissReason) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := s.conn.Emit(Path, Interface+".Dismissed", id, reason.String())
	if err != nil {
		return fmt.Errorf("failed to emit Dismissed signal: %w", err)
	}

	s.logger.Debug("emitted Dismissed signal", "id", id, "reason", reason.String())
	return nil
}

// Connection returns the underlying D-Bus connection.
func (s *Server) Connection() *dbus.Conn {
	return s.conn
}
