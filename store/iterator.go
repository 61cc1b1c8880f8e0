package store

import "bytes"

// mergeIter walks the pending entries of a cache together with the
// iterator of its parent store. When both hold a key the pending entry
// wins, deleted entries hide the key.
type mergeIter struct {
	pending   []entry
	pos       int
	parent    Iterator
	ascending bool
}

var _ Iterator = (*mergeIter)(nil)

func newMergeIter(pending []entry, parent Iterator, ascending bool) (*mergeIter, error) {
	it := &mergeIter{pending: pending, parent: parent, ascending: ascending}
	if err := it.skipDeleted(); err != nil {
		it.Close()
		return nil, err
	}
	return it, nil
}

// side tells which of the two sources holds the current key.
type side int

const (
	sideNone side = iota
	sideCache
	sideParent
	sideBoth
)

func (it *mergeIter) cacheValid() bool {
	return it.pos < len(it.pending)
}

func (it *mergeIter) parentValid() bool {
	return it.parent != nil && it.parent.Valid()
}

func (it *mergeIter) current() side {
	cache, parent := it.cacheValid(), it.parentValid()
	switch {
	case !cache && !parent:
		return sideNone
	case !parent:
		return sideCache
	case !cache:
		return sideParent
	}
	cmp := bytes.Compare(it.pending[it.pos].key, it.parent.Key())
	if !it.ascending {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return sideCache
	case cmp > 0:
		return sideParent
	default:
		return sideBoth
	}
}

func (it *mergeIter) Valid() bool {
	return it.current() != sideNone
}

// Next advances to the following key. It panics when the iterator is not
// valid.
func (it *mergeIter) Next() error {
	if err := it.advance(it.current()); err != nil {
		return err
	}
	return it.skipDeleted()
}

func (it *mergeIter) advance(s side) error {
	switch s {
	case sideCache:
		it.pos++
	case sideParent:
		return it.parent.Next()
	case sideBoth:
		it.pos++
		return it.parent.Next()
	default:
		panic("iterator is not valid")
	}
	return nil
}

// skipDeleted moves past every key hidden by a deleted cache entry.
func (it *mergeIter) skipDeleted() error {
	for {
		s := it.current()
		if s != sideCache && s != sideBoth {
			return nil
		}
		if !it.pending[it.pos].deleted {
			return nil
		}
		if err := it.advance(s); err != nil {
			return err
		}
	}
}

func (it *mergeIter) Key() []byte {
	switch it.current() {
	case sideCache, sideBoth:
		return it.pending[it.pos].key
	case sideParent:
		return it.parent.Key()
	}
	panic("iterator is not valid")
}

func (it *mergeIter) Value() []byte {
	switch it.current() {
	case sideCache, sideBoth:
		return it.pending[it.pos].value
	case sideParent:
		return it.parent.Value()
	}
	panic("iterator is not valid")
}

func (it *mergeIter) Close() {
	if it.parent != nil {
		it.parent.Close()
	}
	it.pending = nil
}
