package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Root errors. Every error returned by a handler wraps one of them, so
// that clients receive a stable code. The codes never change once
// released.
var (
	ErrUnauthorized       = Register(2, "unauthorized")
	ErrNotFound           = Register(3, "not found")
	ErrMsg                = Register(4, "invalid message")
	ErrModel              = Register(5, "invalid model")
	ErrDuplicate          = Register(6, "duplicate")
	ErrHuman              = Register(7, "coding error")
	ErrEmpty              = Register(9, "value is empty")
	ErrState              = Register(10, "invalid state")
	ErrType               = Register(11, "invalid type")
	ErrInsufficientAmount = Register(12, "insufficient amount")
	ErrAmount             = Register(13, "invalid amount")
	ErrInput              = Register(14, "invalid input")
	ErrOverflow           = Register(16, "an operation cannot be completed due to value overflow")

	// ErrCapacity means a credit would raise an allocator above its
	// ceiling.
	ErrCapacity = Register(17, "capacity exceeded")

	// ErrDatabase means the store failed or holds data that cannot be
	// decoded.
	ErrDatabase = Register(18, "database")

	// ErrAsset means an asset ticker is malformed or not accepted.
	ErrAsset = Register(19, "invalid asset")

	// ErrPanic wraps a recovered panic. Its details are never shown to
	// clients outside of debug mode.
	ErrPanic = Register(111222, "panic")
)

// registered maps every code in use to its root error. Code 1 is kept for
// errors that do not wrap a root error.
var registered = map[uint32]*Error{
	1: {code: 1, desc: "internal"},
}

// Register declares a root error. It panics when code is already taken, so
// call it only from package level variable declarations.
func Register(code uint32, description string) *Error {
	if prev, ok := registered[code]; ok {
		panic(fmt.Sprintf("error code %d already registered as %q", code, prev.desc))
	}
	e := &Error{code: code, desc: description}
	registered[code] = e
	return e
}

// Error is a root error. Create instances with Wrap or Wrapf and test for
// them with Is.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// ABCICode returns the registered code.
func (e Error) ABCICode() uint32 {
	return e.code
}

// Is reports whether err is kind or wraps it. Grouped errors match when
// any member does. A nil kind matches only a nil error.
func (kind *Error) Is(err error) bool {
	if kind == nil {
		return isNilErr(err)
	}
	for {
		if err == kind {
			return true
		}
		if u, ok := err.(unpacker); ok {
			for _, member := range u.Unpack() {
				if kind.Is(member) {
					return true
				}
			}
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
}

// isNilErr also catches typed nil pointers stored in an error interface.
func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	switch v := reflect.ValueOf(err); v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Wrap adds description to err. The innermost wrap records a stack trace.
// A nil err gives nil, so the result of a call can be wrapped directly.
// Errors that do not wrap a root error report the internal code 1.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{parent: err, msg: description}
}

// Wrapf is Wrap with a formatted description.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.parent.Error()
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Format prints the message. %v appends the location where the error was
// created and %+v the whole stack trace.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s\n%+v", e.Error(), stackTrace(e))
		return
	}
	fmt.Fprint(s, e.Error())
	if verb != 'v' {
		return
	}
	if st := stackTrace(e); len(st) != 0 {
		writeSimpleFrame(s, st[0])
	}
}

// Recover turns a panic into an ErrPanic assigned to *err. Use it with
// defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// causer is implemented by errors that wrap another error.
type causer interface {
	Cause() error
}

// unpacker is implemented by errors that group many errors.
type unpacker interface {
	Unpack() []error
}

// stackTrace returns the first stack trace found in the cause chain of err.
func stackTrace(err error) errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}

	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}

		c, ok := err.(causer)
		if !ok {
			return nil
		}
		err = c.Cause()
	}
}
