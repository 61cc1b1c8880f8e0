package iavl

import "github.com/okatau/tsm/store"

// rangeIter reads all models in [start, end) into memory and
// serves them from a slice. The tree must not be modified while
// the result is consumed, which holds as all writes go through a
// cache layer.
func (a adapter) rangeIter(start, end []byte, ascending bool) store.Iterator {
	var data []store.Model
	a.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		data = append(data, store.Model{Key: key, Value: value})
		return false
	})
	return store.NewSliceIterator(data)
}
