package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If no errors are given, nil is returned. If a single error is given, it
// is returned unchanged.
func Append(errs ...error) error {
	var flat []error
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if m, ok := e.(*multiErr); ok {
			flat = append(flat, m.errs...)
			continue
		}
		flat = append(flat, e)
	}

	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return &multiErr{errs: flat}
}

// multiErr groups any number of errors. The code of the first error is
// used as the group code.
type multiErr struct {
	errs []error
}

func (e *multiErr) Error() string {
	points := make([]string, len(e.errs))
	for i, err := range e.errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(e.errs), strings.Join(points, "\n\t"))
}

// ABCICode returns the code of the first error.
func (e *multiErr) ABCICode() uint32 {
	return Code(e.errs[0])
}

// Unpack returns all grouped errors.
func (e *multiErr) Unpack() []error {
	return e.errs
}

var _ unpacker = (*multiErr)(nil)
