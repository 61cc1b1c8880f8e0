package orm

import (
	"testing"

	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/store"
	"github.com/okatau/tsm/tsmtest/assert"
)

type counter struct {
	Count int64
}

func (c *counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrModel, "negative count")
	}
	return nil
}

type other struct {
	Name string
}

func (o *other) Validate() error { return nil }

func TestModelBucket(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	key, err := b.Put(db, []byte("c1"), &counter{Count: 1})
	assert.Nil(t, err)
	assert.Equal(t, []byte("c1"), key)

	var c1 counter
	assert.Nil(t, b.One(db, []byte("c1"), &c1))
	assert.Equal(t, int64(1), c1.Count)
	assert.Nil(t, b.Has(db, []byte("c1")))

	assert.Nil(t, b.Delete(db, []byte("c1")))
	assert.IsErr(t, errors.ErrNotFound, b.Delete(db, []byte("unknown")))
	assert.IsErr(t, errors.ErrNotFound, b.One(db, []byte("c1"), &c1))
	assert.IsErr(t, errors.ErrNotFound, b.Has(db, []byte("c1")))
}

func TestModelBucketPutSequence(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	k1, err := b.Put(db, nil, &counter{Count: 10})
	assert.Nil(t, err)
	k2, err := b.Put(db, nil, &counter{Count: 20})
	assert.Nil(t, err)
	assert.Equal(t, EncodeSequence(1), k1)
	assert.Equal(t, EncodeSequence(2), k2)

	var got []int64
	err = b.Iterate(db, func(key []byte, m Model) error {
		got = append(got, m.(*counter).Count)
		return nil
	})
	assert.Nil(t, err)
	assert.Equal(t, []int64{10, 20}, got)
}

func TestModelBucketValidation(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	cases := map[string]struct {
		model   Model
		wantErr *errors.Error
	}{
		"valid": {
			model:   &counter{Count: 5},
			wantErr: nil,
		},
		"invalid model": {
			model:   &counter{Count: -1},
			wantErr: errors.ErrModel,
		},
		"wrong type": {
			model:   &other{Name: "x"},
			wantErr: errors.ErrType,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := b.Put(db, []byte("k"), tc.model)
			if tc.wantErr == nil {
				assert.Nil(t, err)
			} else {
				assert.IsErr(t, tc.wantErr, err)
			}
		})
	}
}

func TestModelBucketIterateStaysInBucket(t *testing.T) {
	db := store.MemStore()
	counters := NewModelBucket("cnts", &counter{})
	others := NewModelBucket("others", &other{})

	_, err := counters.Put(db, []byte("a"), &counter{Count: 1})
	assert.Nil(t, err)
	_, err = others.Put(db, []byte("a"), &other{Name: "n"})
	assert.Nil(t, err)

	var n int
	err = counters.Iterate(db, func(key []byte, m Model) error {
		n++
		assert.Equal(t, []byte("a"), key)
		return nil
	})
	assert.Nil(t, err)
	assert.Equal(t, 1, n)

	var c counter
	assert.IsErr(t, errors.ErrType, others.One(db, []byte("a"), &c))
}
