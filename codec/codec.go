/*
Package codec holds the binary encoding shared by every stored model
and every result returned from a handler.

Models are plain Go structs encoded with go-amino. Only fixed shape
types are used (integers, strings, byte slices, nested structs and
slices of those), so no concrete type has to be registered. Types that
implement MarshalAmino, such as coin.Amount, are stored in their amino
representation.
*/
package codec

import (
	"github.com/okatau/tsm/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// Marshal serializes given value into its binary representation.
func Marshal(o interface{}) ([]byte, error) {
	bz, err := cdc.MarshalBinaryBare(o)
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return bz, nil
}

// Unmarshal loads the binary representation into dest, which must be
// a pointer.
func Unmarshal(bz []byte, dest interface{}) error {
	if err := cdc.UnmarshalBinaryBare(bz, dest); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	return nil
}
