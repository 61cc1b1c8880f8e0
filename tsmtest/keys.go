package tsmtest

import (
	"encoding/binary"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/crypto"
)

// NewKey returns a random ed25519 private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the signer condition of a random key.
func NewCondition() tsm.Condition {
	return NewKey().PublicKey().Condition()
}

// SequenceID returns the key that an orm bucket id sequence assigns as
// its n-th value.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
