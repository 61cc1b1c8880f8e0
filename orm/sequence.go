package orm

import (
	"encoding/binary"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/errors"
)

// seqLen is the size of every sequence generated key.
const seqLen = 8

// Sequence is a persistent counter. Its values are encoded big endian, so
// later keys sort after earlier ones.
type Sequence struct {
	key []byte
}

// NewSequence returns the counter stored under "_s.<bucket>:<name>".
func NewSequence(bucket, name string) Sequence {
	return Sequence{key: []byte("_s." + bucket + ":" + name)}
}

// NextVal increments the counter and returns the encoded new value. The
// first value is 1.
func (s Sequence) NextVal(db tsm.KVStore) ([]byte, error) {
	n, err := s.Current(db)
	if err != nil {
		return nil, err
	}
	next := EncodeSequence(n + 1)
	if err := db.Set(s.key, next); err != nil {
		return nil, errors.Wrap(err, "cannot store sequence")
	}
	return next, nil
}

// Current returns the last value handed out, or 0 if there was none. The
// counter is not modified.
func (s Sequence) Current(db tsm.ReadOnlyKVStore) (int64, error) {
	raw, err := db.Get(s.key)
	if err != nil {
		return 0, err
	}
	return DecodeSequence(raw)
}

// EncodeSequence returns the key form of a sequence value.
func EncodeSequence(n int64) []byte {
	raw := make([]byte, seqLen)
	binary.BigEndian.PutUint64(raw, uint64(n))
	return raw
}

// DecodeSequence reverses EncodeSequence. Nil decodes to 0.
func DecodeSequence(raw []byte) (int64, error) {
	if raw == nil {
		return 0, nil
	}
	if err := ValidateSequence(raw); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(raw)), nil
}

// ValidateSequence checks that id is a sequence generated key.
func ValidateSequence(id []byte) error {
	switch len(id) {
	case 0:
		return errors.Wrap(errors.ErrEmpty, "sequence missing")
	case seqLen:
		return nil
	}
	return errors.Wrapf(errors.ErrInput, "sequence of %d bytes", len(id))
}
