package vtc

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for classifying construction failures with errors.Is.
var (
	ErrValue = errors.New("vtc: invalid value")
	ErrType  = errors.New("vtc: unsupported type")
)

// ErrDivisionByZero is returned by the division operators for a nil or zero
// divisor. It also matches ErrValue.
var ErrDivisionByZero = &ValueError{Msg: "division by zero"}

// ValueError reports a malformed framerate or timecode value.
type ValueError struct {
	Msg string
}

func (e *ValueError) Error() string { return e.Msg }

// Is reports whether target is ErrValue.
func (e *ValueError) Is(target error) bool { return target == ErrValue }

// TypeError reports a source value of a kind the constructor does not accept.
type TypeError struct {
	Msg string
}

func (e *TypeError) Error() string { return e.Msg }

// Is reports whether target is ErrType.
func (e *TypeError) Is(target error) bool { return target == ErrType }

func valueErrorf(format string, args ...interface{}) error {
	return errors.WithStack(&ValueError{Msg: fmt.Sprintf(format, args...)})
}

func typeErrorf(format string, args ...interface{}) error {
	return errors.WithStack(&TypeError{Msg: fmt.Sprintf(format, args...)})
}
