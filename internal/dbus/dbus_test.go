package dbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/popover"
)

func TestParseOptions(t *testing.T) {
	base := model.DefaultOptions()

	o, err := ParseOptions(base, map[string]dbus.Variant{
		OptionDirection:           dbus.MakeVariant("up|left"),
		OptionWidth:               dbus.MakeVariant(240.0),
		OptionHeight:              dbus.MakeVariant(int32(120)),
		OptionDismissOnTapOutside: dbus.MakeVariant(false),
		OptionModal:               dbus.MakeVariant(true),
		OptionBackground:          dbus.MakeVariant("#336699"),
		"x-unknown":               dbus.MakeVariant("ignored"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.Up|model.Left, o.ArrowDirection)
	assert.Equal(t, model.Size{Width: 240, Height: 120}, o.PreferredSize())
	assert.False(t, o.DismissOnTapOutside)
	assert.True(t, o.IsModal)
	require.NotNil(t, o.BackgroundColor)
	assert.Equal(t, "#336699", o.BackgroundColor.Hex())

	// base is untouched
	assert.True(t, base.DismissOnTapOutside)
}

func TestParseOptions_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts map[string]dbus.Variant
	}{
		{"direction type", map[string]dbus.Variant{OptionDirection: dbus.MakeVariant(int32(2))}},
		{"direction value", map[string]dbus.Variant{OptionDirection: dbus.MakeVariant("diagonal")}},
		{"width type", map[string]dbus.Variant{OptionWidth: dbus.MakeVariant("wide")}},
		{"modal type", map[string]dbus.Variant{OptionModal: dbus.MakeVariant("yes")}},
		{"background value", map[string]dbus.Variant{OptionBackground: dbus.MakeVariant("blue")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOptions(model.DefaultOptions(), tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestEncodeOptions(t *testing.T) {
	o := model.NewOptions(model.WithArrow(model.Right), model.WithSize(0, 90), model.WithBackground(model.MustParseColor("#00ff0080")))
	enc := EncodeOptions(o)

	assert.NotContains(t, enc, OptionWidth)
	decoded, err := ParseOptions(model.DefaultOptions(), enc)
	require.NoError(t, err)
	assert.Equal(t, o.ArrowDirection, decoded.ArrowDirection)
	assert.Equal(t, o.PreferredSize(), decoded.PreferredSize())
	assert.Equal(t, "#00ff0080", decoded.BackgroundColor.Hex())
}

func TestErrorMapping(t *testing.T) {
	err := &popover.Error{Kind: popover.KindPresentationFailure, Op: "show", Message: "no compositor"}
	dbusErr := toDBusError(err)
	require.NotNil(t, dbusErr)
	assert.Equal(t, ErrorPrefix+"PresentationFailure", dbusErr.Name)

	// Replies arrive as dbus.Error values
	back := fromDBusError("show", *dbusErr)
	assert.ErrorIs(t, back, popover.ErrPresentationFailure)

	assert.Equal(t, ErrorPrefix+"Failed", toDBusError(errors.New("plain")).Name)
	assert.Nil(t, toDBusError(nil))

	other := fromDBusError("show", dbus.Error{Name: "org.freedesktop.DBus.Error.ServiceUnknown"})
	assert.Error(t, other)
	assert.Equal(t, popover.ErrorKind(0), popover.KindOf(other))
}

func dismissedSignal(id, reason string) *dbus.Signal {
	return &dbus.Signal{Path: Path, Name: Interface + ".Dismissed", Body: []any{id, reason}}
}

func TestParseDismissed(t *testing.T) {
	id, reason, ok := parseDismissed(dismissedSignal("01ABC", "outside-tap"))
	require.True(t, ok)
	assert.Equal(t, "01ABC", id)
	assert.Equal(t, popover.ReasonOutsideTap, reason)

	_, _, ok = parseDismissed(&dbus.Signal{Name: Interface + ".Other", Body: []any{"a", "b"}})
	assert.False(t, ok)
	_, _, ok = parseDismissed(dismissedSignal("01ABC", "eaten"))
	assert.False(t, ok)
	_, _, ok = parseDismissed(nil)
	assert.False(t, ok)
}

func TestWaitDismissed_IgnoresOtherSessions(t *testing.T) {
	ch := make(chan *dbus.Signal, 3)
	ch <- dismissedSignal("other", "explicit")
	ch <- dismissedSignal("mine", "back")

	reason, err := waitDismissed(context.Background(), ch, "mine")
	require.NoError(t, err)
	assert.Equal(t, popover.ReasonBackAction, reason)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = waitDismissed(ctx, ch, "mine")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type fakeHandler struct {
	req       ShowRequest
	err       error
	dismissed int
	status    Status
}

func (f *fakeHandler) ShowAt(req ShowRequest) (string, error) {
	f.req = req
	if f.err != nil {
		return "", f.err
	}
	return "01SESSION", nil
}

func (f *fakeHandler) Dismiss()       { f.dismissed++ }
func (f *fakeHandler) Status() Status { return f.status }

func TestServerMethods(t *testing.T) {
	h := &fakeHandler{}
	s := NewServer(h, nil)
	s.SetBaseOptions(model.NewOptions(model.WithModal(true)))

	id, dErr := s.ShowAt("hello", 1, 2, 3, 4, map[string]dbus.Variant{OptionDirection: dbus.MakeVariant("down")})
	require.Nil(t, dErr)
	assert.Equal(t, "01SESSION", id)
	assert.Equal(t, "hello", h.req.Text)
	assert.Equal(t, model.Rect{X: 1, Y: 2, Width: 3, Height: 4}, h.req.Anchor)
	assert.Equal(t, model.Down, h.req.Options.ArrowDirection)
	assert.True(t, h.req.Options.IsModal)

	_, dErr = s.ShowAt("hello", 0, 0, 0, 0, map[string]dbus.Variant{OptionWidth: dbus.MakeVariant(true)})
	require.NotNil(t, dErr)
	assert.Equal(t, ErrorPrefix+"InvalidArgument", dErr.Name)

	h.err = &popover.Error{Kind: popover.KindUnsupportedPlatform, Message: "no display"}
	_, dErr = s.ShowAt("hello", 0, 0, 0, 0, nil)
	require.NotNil(t, dErr)
	assert.Equal(t, ErrorPrefix+"UnsupportedPlatform", dErr.Name)

	assert.Nil(t, s.Dismiss())
	assert.Equal(t, 1, h.dismissed)

	shown := time.UnixMilli(1700000000000)
	h.status = Status{Showing: true, ID: "01SESSION", ShownAt: shown}
	showing, sid, at, dErr := s.Status()
	require.Nil(t, dErr)
	assert.True(t, showing)
	assert.Equal(t, "01SESSION", sid)
	assert.Equal(t, shown.UnixMilli(), at)

	isShowing, dErr := s.IsShowing()
	require.Nil(t, dErr)
	assert.True(t, isShowing)

	assert.Error(t, s.EmitDismissed("x", popover.ReasonExplicit))
}
