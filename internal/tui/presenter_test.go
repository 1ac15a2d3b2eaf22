package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
	"github.com/jmylchreest/anchorpop/internal/popover"
)

func recv(t *testing.T, ch <-chan tea.Msg) tea.Msg {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

// feed applies msg to m and runs the resulting command, as the program would.
func feed(m Model, msg tea.Msg) Model {
	next, cmd := m.Update(msg)
	if cmd != nil {
		cmd()
	}
	return next.(Model)
}

func TestPresenter_NotAttached(t *testing.T) {
	p := NewPresenter(quietLogger())

	_, err := p.PresentAt("hello", placement.Result{}, model.DefaultOptions(), nil)
	assert.ErrorIs(t, err, popover.ErrPresentationFailure)

	_, err = p.CurrentDisplayBounds()
	assert.ErrorIs(t, err, errUnknownSize)

	called := false
	p.Dismiss(&handle{id: "t1"}, func() { called = true })
	assert.True(t, called)
}

func TestPresenter_Content(t *testing.T) {
	p := NewPresenter(quietLogger())

	size, err := p.MeasureNaturalSize("hi")
	require.NoError(t, err)
	assert.Equal(t, model.Size{Width: 6, Height: 3}, size)

	_, err = p.MeasureNaturalSize(42)
	assert.Error(t, err)

	p.Attach(func(tea.Msg) {})
	defer p.Detach()
	_, err = p.PresentAt(struct{}{}, placement.Result{}, model.DefaultOptions(), nil)
	assert.ErrorIs(t, err, popover.ErrPresentationFailure)
}

func TestPresenter_WithController(t *testing.T) {
	m, p := sizedModel(t, nil)

	msgs := make(chan tea.Msg, 16)
	p.Attach(func(msg tea.Msg) { msgs <- msg })
	defer p.Detach()

	c := popover.NewController(p.Backend(),
		popover.WithParams(placement.TerminalParams()),
		popover.WithLogger(quietLogger()),
	)

	sess, err := c.ShowAtView("hello", "center", nil)
	require.NoError(t, err)

	// center is (33,10 14x3); "hello" measures 9x3
	pl := sess.Placement()
	assert.Equal(t, model.Down, pl.Direction)
	assert.Equal(t, model.Point{X: 35.5, Y: 14}, pl.Origin)

	m = feed(m, recv(t, msgs))
	require.NotNil(t, m.overlay)

	m = feed(m, click(0, 20))
	assert.Nil(t, m.overlay)
	reason, err := sess.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, popover.ReasonOutsideTap, reason)
	assert.False(t, c.IsShowing())

	sess, err = c.ShowAtView("again", "top-left", nil)
	require.NoError(t, err)
	m = feed(m, recv(t, msgs))
	require.NotNil(t, m.overlay)

	c.Dismiss()
	m = feed(m, recv(t, msgs))
	assert.Nil(t, m.overlay)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reason, err = sess.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, popover.ReasonExplicit, reason)
}

func TestOutbox_Order(t *testing.T) {
	o := newOutbox()
	for i := range 50 {
		o.push(i)
	}

	got := make(chan tea.Msg, 100)
	require.True(t, o.start(func(msg tea.Msg) { got <- msg }))
	assert.False(t, o.start(func(tea.Msg) {}))

	for i := 50; i < 100; i++ {
		o.push(i)
	}

	for i := range 100 {
		assert.Equal(t, i, recv(t, got))
	}
	o.stop()
	o.stop()
	assert.False(t, o.isRunning())
}
