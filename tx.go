package tsm

import (
	"reflect"

	"github.com/okatau/tsm/errors"
)

// ExtractMsgFromSum returns the message held by a message union.
//
// A union is a pointer to a struct whose fields are all message
// pointers. Exactly one of them may be set.
func ExtractMsgFromSum(sum interface{}) (Msg, error) {
	if sum == nil {
		return nil, errors.Wrap(errors.ErrInput, "message container is nil")
	}
	pval := reflect.ValueOf(sum)
	if pval.Kind() != reflect.Ptr || pval.IsNil() || pval.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrInput, "invalid message container type %T", sum)
	}
	val := pval.Elem()

	var found Msg
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		name := val.Type().Field(i).Name
		if field.Kind() != reflect.Ptr || !field.CanInterface() {
			return nil, errors.Wrapf(errors.ErrInput, "field %s is not a message pointer", name)
		}
		if field.IsNil() {
			continue
		}
		if found != nil {
			return nil, errors.Wrap(errors.ErrInput, "more than one message set")
		}
		msg, ok := field.Interface().(Msg)
		if !ok {
			return nil, errors.Wrapf(errors.ErrType, "field %s of type %s is not a message", name, field.Type())
		}
		found = msg
	}
	if found == nil {
		return nil, errors.Wrap(errors.ErrState, "message container is empty")
	}
	return found, nil
}
