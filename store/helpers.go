package store

// SliceIterator iterates over models already loaded into memory, in the
// order they are given.
type SliceIterator struct {
	models []Model
	pos    int
}

var _ Iterator = (*SliceIterator)(nil)

func NewSliceIterator(models []Model) *SliceIterator {
	return &SliceIterator{models: models}
}

func (s *SliceIterator) Valid() bool {
	return s.pos < len(s.models)
}

// Next advances the cursor. It panics when called on an exhausted
// iterator.
func (s *SliceIterator) Next() error {
	s.at()
	s.pos++
	return nil
}

func (s *SliceIterator) Key() []byte { return s.at().Key }
func (s *SliceIterator) Value() []byte { return s.at().Value }

func (s *SliceIterator) Close() {
	s.models = nil
}

func (s *SliceIterator) at() Model {
	if !s.Valid() {
		panic("iterator is exhausted")
	}
	return s.models[s.pos]
}

// EmptyKVStore holds nothing and ignores writes. It is the bottom layer of
// MemStore.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (EmptyKVStore) Get(key []byte) ([]byte, error) { return nil, nil }
func (EmptyKVStore) Has(key []byte) (bool, error) { return false, nil }
func (EmptyKVStore) Set(key, value []byte) error { return nil }
func (EmptyKVStore) Delete(key []byte) error { return nil }
func (e EmptyKVStore) NewBatch() Batch { return NewNonAtomicBatch(e) }

func (EmptyKVStore) Iterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

func (EmptyKVStore) ReverseIterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

// NonAtomicBatch records writes and replays them on Write one by one. A
// failing write leaves the earlier ones applied, so use it only on top of
// a cache or an in-memory tree.
type NonAtomicBatch struct {
	out SetDeleter
	ops []batchOp
}

type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

var _ Batch = (*NonAtomicBatch)(nil)

func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

func (b *NonAtomicBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, batchOp{key: key, value: value})
	return nil
}

func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, batchOp{key: key, delete: true})
	return nil
}

// Write replays all recorded writes in order and empties the batch.
func (b *NonAtomicBatch) Write() error {
	for _, op := range b.ops {
		var err error
		if op.delete {
			err = b.out.Delete(op.key)
		} else {
			err = b.out.Set(op.key, op.value)
		}
		if err != nil {
			return err
		}
	}
	b.ops = nil
	return nil
}

// Reset drops all recorded writes.
func (b *NonAtomicBatch) Reset() {
	b.ops = nil
}
