package model

// Anchor is what a popover is positioned against: either a live view owned
// by the caller or an absolute screen rectangle.
type Anchor interface {
	anchor()
}

// ViewAnchor anchors to an on-screen element. The popover only reads the
// element's bounds when it is shown; it never owns or retains it.
type ViewAnchor struct {
	View any
}

// RectAnchor anchors to a rectangle in screen coordinates.
type RectAnchor struct {
	Rect Rect
}

func (ViewAnchor) anchor() {}
func (RectAnchor) anchor() {}

// AnchorAtView is shorthand for ViewAnchor{View: v}.
func AnchorAtView(v any) ViewAnchor {
	return ViewAnchor{View: v}
}

// AnchorAtRect is shorthand for RectAnchor{Rect: r}.
func AnchorAtRect(r Rect) RectAnchor {
	return RectAnchor{Rect: r}
}
