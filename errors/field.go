package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches the name of a model or message attribute to err. A nil
// err gives a nil result, so Field can wrap the result of a Validate call
// directly.
//
// Names follow the Go field name of the attribute. Nested attributes are
// joined with a dot and list elements use their index, for example
// "Streams.2.Weight".
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) != 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: fieldName, desc: description}
}

// AppendField adds the field error built from fieldErrOrNil to errorsOrNil.
// Both arguments may be nil.
func AppendField(errorsOrNil error, fieldName string, fieldErrOrNil error) error {
	return Append(errorsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (e *fieldError) Error() string {
	if e.desc == "" {
		return fmt.Sprintf("field %q: %s", e.field, e.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
}

func (e *fieldError) Cause() error { return e.parent }
func (e *fieldError) Field() string { return e.field }

type fielder interface {
	Field() string
}

// FieldErrors collects every error in the err tree that was created by
// Field for fieldName. Errors nested below a matching field error are not
// inspected.
func FieldErrors(err error, fieldName string) []error {
	for !isNilErr(err) {
		if f, ok := err.(fielder); ok && f.Field() == fieldName {
			return []error{err}
		}
		switch e := err.(type) {
		case unpacker:
			var found []error
			for _, child := range e.Unpack() {
				found = append(found, FieldErrors(child, fieldName)...)
			}
			return found
		case causer:
			err = e.Cause()
		default:
			return nil
		}
	}
	return nil
}
