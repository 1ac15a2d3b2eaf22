package daemon

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/anchorpop/internal/config"
	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/popover"
	"github.com/jmylchreest/anchorpop/internal/presenter"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func showN(t *testing.T, c *popover.Controller, r *SessionRegistry, n int) []*popover.Session {
	t.Helper()
	var out []*popover.Session
	for i := 0; i < n; i++ {
		s, err := c.ShowAtRect("hello", model.Rect{X: 10, Y: 10, Width: 10, Height: 10}, nil)
		require.NoError(t, err)
		r.Register(s)
		out = append(out, s)
	}
	return out
}

func TestSessionRegistry_Lifecycle(t *testing.T) {
	c := popover.NewController(presenter.NewHeadless(quiet).Backend(), popover.WithLogger(quiet))
	r := NewSessionRegistry(10)

	s := showN(t, c, r, 1)[0]

	active, ok := r.Active()
	require.True(t, ok)
	assert.Equal(t, s.ID(), active.ID)
	assert.Equal(t, "hello", active.Text)
	assert.Equal(t, SessionStatusActive, active.Status)

	rec, ok := r.Complete(s.ID(), popover.ReasonOutsideTap)
	require.True(t, ok)
	assert.Equal(t, SessionStatusDismissed, rec.Status)
	assert.Equal(t, popover.ReasonOutsideTap, rec.Reason)
	assert.False(t, rec.DismissedAt.IsZero())

	// Second completion is a no-op
	_, ok = r.Complete(s.ID(), popover.ReasonExplicit)
	assert.False(t, ok)
	got, ok := r.Get(s.ID())
	require.True(t, ok)
	assert.Equal(t, popover.ReasonOutsideTap, got.Reason)

	_, ok = r.Active()
	assert.False(t, ok)

	_, ok = r.Complete("unknown", popover.ReasonExplicit)
	assert.False(t, ok)
}

func TestSessionRegistry_ReplacedKeepsNewActive(t *testing.T) {
	c := popover.NewController(presenter.NewHeadless(quiet).Backend(), popover.WithLogger(quiet))
	r := NewSessionRegistry(10)

	sessions := showN(t, c, r, 2)

	// The replaced session completes after the new one registered
	_, ok := r.Complete(sessions[0].ID(), popover.ReasonReplaced)
	require.True(t, ok)

	active, ok := r.Active()
	require.True(t, ok)
	assert.Equal(t, sessions[1].ID(), active.ID)
}

func TestSessionRegistry_PrunesDismissed(t *testing.T) {
	c := popover.NewController(presenter.NewHeadless(quiet).Backend(), popover.WithLogger(quiet))
	r := NewSessionRegistry(2)

	sessions := showN(t, c, r, 4)
	for _, s := range sessions[:3] {
		r.Complete(s.ID(), popover.ReasonReplaced)
	}

	assert.Equal(t, 3, r.Count())
	_, ok := r.Get(sessions[0].ID())
	assert.False(t, ok)

	recent := r.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, sessions[3].ID(), recent[0].ID)
	assert.Equal(t, SessionStatusActive, recent[0].Status)
}

func TestConfigWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anchorpop.toml")
	require.NoError(t, os.WriteFile(path, []byte("[placement]\ngap = 4\n"), 0644))

	initial, err := config.Load(path)
	require.NoError(t, err)

	w := NewConfigWatcher(path, quiet)
	w.SetDebounce(10 * time.Millisecond)

	reloaded := make(chan *config.Config, 4)
	failed := make(chan error, 4)
	w.SetReloadCallback(func(c *config.Config) { reloaded <- c })
	w.SetErrorCallback(func(err error) { failed <- err })

	require.NoError(t, w.Start(context.Background(), initial))
	defer w.Stop()
	assert.Same(t, initial, w.CurrentConfig())

	require.NoError(t, os.WriteFile(path, []byte("[placement]\ngap = 7\n"), 0644))
	select {
	case c := <-reloaded:
		assert.Equal(t, 7.0, c.Placement.Gap)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
	assert.Equal(t, 7.0, w.CurrentConfig().Placement.Gap)

	require.NoError(t, os.WriteFile(path, []byte("[behavior]\npresenter = \"nope\"\n"), 0644))
	select {
	case err := <-failed:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("invalid config was not reported")
	}
	// The last good config stays current
	assert.Equal(t, 7.0, w.CurrentConfig().Placement.Gap)
}

func TestConfigWatcher_StopIsIdempotent(t *testing.T) {
	w := NewConfigWatcher(filepath.Join(t.TempDir(), "anchorpop.toml"), quiet)
	require.NoError(t, w.Start(context.Background(), config.DefaultConfig()))
	w.Stop()
	w.Stop()
}
