package orm

import (
	"reflect"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/codec"
	"github.com/okatau/tsm/errors"
)

// Model is implemented by any entity that can be stored using
// ModelBucket. It must be a pointer to a struct that go-amino can
// encode.
type Model interface {
	Validate() error
}

// ModelBucket stores models of a single type under a prefixed
// key space.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db tsm.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given key exists and
	// ErrNotFound otherwise.
	Has(db tsm.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database. Before inserting into
	// the database, the model is validated.
	// Key can be nil, in which case the next value of the bucket id
	// sequence is used. The key under which the model was saved is
	// returned.
	Put(db tsm.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db tsm.KVStore, key []byte) error

	// Iterate calls fn for every stored model in the key order. The
	// model passed to fn is a fresh instance of the bucket model type.
	// Returning an error from fn stops the iteration and returns it.
	Iterate(db tsm.ReadOnlyKVStore, fn func(key []byte, m Model) error) error
}

// NewModelBucket returns a ModelBucket instance. Given model is a
// prototype used to check the type of loaded models.
func NewModelBucket(name string, m Model) ModelBucket {
	tp := reflect.TypeOf(m)
	if tp.Kind() != reflect.Ptr || tp.Elem().Kind() != reflect.Struct {
		panic("model must be a pointer to a struct")
	}
	return &modelBucket{
		b:     newBucket(name),
		idSeq: NewSequence(name, SeqID),
		model: tp.Elem(),
	}
}

type modelBucket struct {
	b     bucket
	idSeq Sequence
	model reflect.Type
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) One(db tsm.ReadOnlyKVStore, key []byte, dest Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrNotFound, "empty key")
	}
	if reflect.TypeOf(dest) != reflect.PtrTo(mb.model) {
		return errors.Wrapf(errors.ErrType, "%s cannot be represented as %T", mb.model, dest)
	}
	raw, err := db.Get(mb.b.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot get")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s not in the store", mb.model.Name())
	}
	if err := codec.Unmarshal(raw, dest); err != nil {
		return errors.Wrap(err, "cannot load model")
	}
	return nil
}

func (mb *modelBucket) Has(db tsm.ReadOnlyKVStore, key []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrNotFound, "empty key")
	}
	ok, err := db.Has(mb.b.dbKey(key))
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s not in the store", mb.model.Name())
	}
	return nil
}

func (mb *modelBucket) Put(db tsm.KVStore, key []byte, m Model) ([]byte, error) {
	if reflect.TypeOf(m) != reflect.PtrTo(mb.model) {
		return nil, errors.Wrapf(errors.ErrType, "cannot store %T in %s bucket", m, mb.b.name)
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}

	if len(key) == 0 {
		var err error
		key, err = mb.idSeq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "ID sequence")
		}
	}

	raw, err := codec.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "cannot serialize model")
	}
	if err := db.Set(mb.b.dbKey(key), raw); err != nil {
		return nil, errors.Wrap(err, "cannot store in the database")
	}
	return key, nil
}

func (mb *modelBucket) Delete(db tsm.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	return db.Delete(mb.b.dbKey(key))
}

func (mb *modelBucket) Iterate(db tsm.ReadOnlyKVStore, fn func(key []byte, m Model) error) error {
	start, end := prefixRange(mb.b.prefix)
	it, err := db.Iterator(start, end)
	if err != nil {
		return errors.Wrap(err, "cannot iterate")
	}
	defer it.Close()

	for it.Valid() {
		m := reflect.New(mb.model).Interface().(Model)
		if err := codec.Unmarshal(it.Value(), m); err != nil {
			return errors.Wrap(err, "cannot load model")
		}
		key := it.Key()[len(mb.b.prefix):]
		if err := fn(key, m); err != nil {
			return err
		}
		if err := it.Next(); err != nil {
			return err
		}
	}
	return nil
}
