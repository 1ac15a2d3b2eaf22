package popover

import "errors"

// ErrorKind classifies popover failures.
type ErrorKind int

const (
	// KindInvalidArgument means the caller passed unusable content, anchor or options.
	KindInvalidArgument ErrorKind = iota + 1
	// KindUnsupportedPlatform means no presenter is available.
	KindUnsupportedPlatform
	// KindPresentationFailure means the native layer refused to show the popover.
	KindPresentationFailure
	// KindTimeout means the presenter never confirmed a dismissal.
	KindTimeout
)

// String returns the string representation of ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindUnsupportedPlatform:
		return "UnsupportedPlatform"
	case KindPresentationFailure:
		return "PresentationFailure"
	case KindTimeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrInvalidArgument     = &Error{Kind: KindInvalidArgument, Message: "invalid argument"}
	ErrUnsupportedPlatform = &Error{Kind: KindUnsupportedPlatform, Message: "unsupported platform"}
	ErrPresentationFailure = &Error{Kind: KindPresentationFailure, Message: "presentation failed"}
	ErrTimeout             = &Error{Kind: KindTimeout, Message: "dismissal timed out"}
)

// Error represents a popover-related error.
type Error struct {
	Kind    ErrorKind
	Op      string // Operation that failed, e.g. "show"
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

func invalidArgument(op, msg string, cause error) error {
	return &Error{Kind: KindInvalidArgument, Op: op, Message: msg, Cause: cause}
}

func presentationFailure(op, msg string, cause error) error {
	return &Error{Kind: KindPresentationFailure, Op: op, Message: msg, Cause: cause}
}
