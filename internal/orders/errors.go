package orders

import "errors"

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrIllegalState     = errors.New("illegal state")
	ErrInvalidOrderData = errors.New("invalid order data")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("concurrent modification")
)

// Error is a failure raised by the aggregate. Kind is one of the sentinels above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func invalidArgument(msg string) error { return &Error{Kind: ErrInvalidArgument, Msg: msg} }

func illegalState(msg string) error { return &Error{Kind: ErrIllegalState, Msg: msg} }

func invalidOrderData(msg string) error { return &Error{Kind: ErrInvalidOrderData, Msg: msg} }

// NotFoundf is used by lookups and stores to report a missing record.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: sprintf(format, args...)}
}

// Conflictf reports a write that collides with existing state.
func Conflictf(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: sprintf(format, args...)}
}
