package orm

import (
	"bytes"
	"testing"

	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	db := store.MemStore()

	// Steps share the store, so counters continue where they stopped.
	steps := []struct {
		name  string
		calls int
		want  int64
	}{
		{"splitter", 3, 3},
		{"valve", 2, 2},
		{"splitter", 4, 7},
		{"allocator", 1, 1},
		{"valve", 10, 12},
	}

	for _, step := range steps {
		s := NewSequence("seq", step.name)
		before, err := s.Current(db)
		require.NoError(t, err)

		var last []byte
		for i := 0; i < step.calls; i++ {
			key, err := s.NextVal(db)
			require.NoError(t, err)
			if last != nil {
				assert.Equal(t, 1, bytes.Compare(key, last), "keys must increase")
			}
			last = key
		}

		got, err := s.Current(db)
		require.NoError(t, err)
		assert.Equal(t, step.want, got, step.name)
		assert.Equal(t, before+int64(step.calls), got)
		assert.Equal(t, EncodeSequence(got), last)
	}
}

func TestValidateSequence(t *testing.T) {
	cases := map[string]struct {
		id      []byte
		wantErr *errors.Error
	}{
		"valid":    {id: EncodeSequence(5)},
		"empty":    {id: nil, wantErr: errors.ErrEmpty},
		"too long": {id: make([]byte, 9), wantErr: errors.ErrInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := ValidateSequence(tc.id); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}

	_, err := DecodeSequence([]byte{1, 2, 3})
	assert.True(t, errors.ErrInput.Is(err))
}

func TestPrefixRange(t *testing.T) {
	start, end := prefixRange([]byte{1, 0xff})
	assert.Equal(t, []byte{1, 0xff}, start)
	assert.Equal(t, []byte{2}, end)

	_, end = prefixRange([]byte{0xff, 0xff})
	assert.Nil(t, end)
}
