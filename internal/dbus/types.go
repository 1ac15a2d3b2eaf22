package dbus

import (
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/popover"
)

// Option keys accepted in the ShowAt options dictionary.
const (
	OptionDirection           = "direction"
	OptionWidth               = "width"
	OptionHeight              = "height"
	OptionDismissOnTapOutside = "dismiss_on_tap_outside"
	OptionModal               = "modal"
	OptionBackground          = "background"
)

// ShowRequest is a decoded ShowAt call.
type ShowRequest struct {
	Text    string
	Anchor  model.Rect
	Options model.Options
}

// Status is the answer to a Status call.
type Status struct {
	Showing bool
	ID      string
	ShownAt time.Time
}

// ParseOptions overlays a D-Bus options dictionary on base.
// Unknown keys are ignored, known keys with the wrong type are an error.
func ParseOptions(base model.Options, opts map[string]dbus.Variant) (model.Options, error) {
	o := base.Clone()

	if v, ok := opts[OptionDirection]; ok {
		s, ok := v.Value().(string)
		if !ok {
			return o, fmt.Errorf("option %s: expected string, got %s", OptionDirection, v.Signature())
		}
		d, err := model.ParseArrowDirection(s)
		if err != nil {
			return o, fmt.Errorf("option %s: %w", OptionDirection, err)
		}
		o.ArrowDirection = d
	}

	for _, dim := range []struct {
		key string
		dst *float64
	}{
		{OptionWidth, &o.PreferredWidth},
		{OptionHeight, &o.PreferredHeight},
	} {
		if v, ok := opts[dim.key]; ok {
			f, err := toFloat(v)
			if err != nil {
				return o, fmt.Errorf("option %s: %w", dim.key, err)
			}
			*dim.dst = f
		}
	}

	for _, flag := range []struct {
		key string
		dst *bool
	}{
		{OptionDismissOnTapOutside, &o.DismissOnTapOutside},
		{OptionModal, &o.IsModal},
	} {
		if v, ok := opts[flag.key]; ok {
			b, ok := v.Value().(bool)
			if !ok {
				return o, fmt.Errorf("option %s: expected boolean, got %s", flag.key, v.Signature())
			}
			*flag.dst = b
		}
	}

	if v, ok := opts[OptionBackground]; ok {
		s, ok := v.Value().(string)
		if !ok {
			return o, fmt.Errorf("option %s: expected string, got %s", OptionBackground, v.Signature())
		}
		if s == "" {
			o.BackgroundColor = nil
		} else {
			c, err := model.ParseColor(s)
			if err != nil {
				return o, fmt.Errorf("option %s: %w", OptionBackground, err)
			}
			o.BackgroundColor = &c
		}
	}

	return o, nil
}

// EncodeOptions is the inverse of ParseOptions. Unset sizes and the
// default background are left out.
func EncodeOptions(o model.Options) map[string]dbus.Variant {
	out := map[string]dbus.Variant{
		OptionDirection:           dbus.MakeVariant(o.ArrowDirection.String()),
		OptionDismissOnTapOutside: dbus.MakeVariant(o.DismissOnTapOutside),
		OptionModal:               dbus.MakeVariant(o.IsModal),
	}
	if o.PreferredWidth > 0 {
		out[OptionWidth] = dbus.MakeVariant(o.PreferredWidth)
	}
	if o.PreferredHeight > 0 {
		out[OptionHeight] = dbus.MakeVariant(o.PreferredHeight)
	}
	if o.BackgroundColor != nil {
		out[OptionBackground] = dbus.MakeVariant(o.BackgroundColor.Hex())
	}
	return out
}

func toFloat(v dbus.Variant) (float64, error) {
	switch val := v.Value().(type) {
	case float64:
		return val, nil
	case int32:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case byte:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("expected number, got %s", v.Signature())
	}
}

// errorName returns the D-Bus error name for err.
func errorName(err error) string {
	if kind := popover.KindOf(err); kind != 0 {
		return ErrorPrefix + kind.String()
	}
	return ErrorPrefix + "Failed"
}

// toDBusError converts a Go error into a D-Bus error reply.
func toDBusError(err error) *dbus.Error {
	if err == nil {
		return nil
	}
	return dbus.NewError(errorName(err), []any{err.Error()})
}

// fromDBusError turns a D-Bus error reply back into a *popover.Error when
// the name is one of ours.
func fromDBusError(op string, err error) error {
	var dbusErr dbus.Error
	if !errors.As(err, &dbusErr) {
		var dbusErrPtr *dbus.Error
		if !errors.As(err, &dbusErrPtr) {
			return fmt.Errorf("%s: %w", op, err)
		}
		dbusErr = *dbusErrPtr
	}

	msg := dbusErr.Error()
	kinds := []popover.ErrorKind{
		popover.KindInvalidArgument,
		popover.KindUnsupportedPlatform,
		popover.KindPresentationFailure,
		popover.KindTimeout,
	}
	for _, kind := range kinds {
		if dbusErr.Name == ErrorPrefix+kind.String() {
			return &popover.Error{Kind: kind, Op: op, Message: msg}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// parseDismissed extracts the session id and reason from a Dismissed signal.
func parseDismissed(sig *dbus.Signal) (string, popover.DismissReason, bool) {
	if sig == nil || sig.Name != Interface+".Dismissed" || len(sig.Body) != 2 {
		return "", popover.ReasonNone, false
	}
	id, ok := sig.Body[0].(string)
	if !ok {
		return "", popover.ReasonNone, false
	}
	reasonStr, ok := sig.Body[1].(string)
	if !ok {
		return "", popover.ReasonNone, false
	}
	reason, err := popover.ParseDismissReason(reasonStr)
	if err != nil {
		return "", popover.ReasonNone, false
	}
	return id, reason, true
}
