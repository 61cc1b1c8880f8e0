package sigs

import "github.com/okatau/tsm/errors"

// ErrInvalidSequence is returned when a signature nonce does not match the
// signer's stored sequence.
var ErrInvalidSequence = errors.Register(120, "invalid sequence number")
