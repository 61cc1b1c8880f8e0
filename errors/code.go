package errors

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// SuccessCode is reported for a nil error.
const SuccessCode = 0

const (
	internalCode uint32 = 1
	internalLog         = "internal error"
)

// Info returns the code and message of err as presented to a client.
// Outside of debug mode, errors without a registered code and recovered
// panics are reported as "internal error" with code 1. In debug mode the
// message carries the full stack trace.
func Info(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessCode, ""
	}
	code := Code(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalCode, ErrPanic.Is(err):
		return internalCode, internalLog
	}
	return code, err.Error()
}

type coder interface {
	ABCICode() uint32
}

// Code walks the cause chain of err and returns the first registered code.
func Code(err error) uint32 {
	if isNilErr(err) {
		return SuccessCode
	}
	for {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}
		c, ok := err.(causer)
		if !ok {
			return internalCode
		}
		err = c.Cause()
	}
}

// writeSimpleFrame prints " [file:line]" with the file path trimmed after
// "github.com/".
func writeSimpleFrame(s io.Writer, f pkgerrors.Frame) {
	pc := uintptr(f) - 1
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return
	}
	file, line := fn.FileLine(pc)
	if i := strings.Index(file, "github.com/"); i >= 0 {
		file = file[i+len("github.com/"):]
	}
	fmt.Fprintf(s, " [%s:%d]", file, line)
}
