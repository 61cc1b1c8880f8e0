package utils

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/errors"
)

// Savepoint will isolate all data inside of the call,
// and commit/rollback to savepoint based on if error.
// A trigger that moves several assets is applied entirely or not at all.
type Savepoint struct {
	onCheck bool
}

var _ tsm.Decorator = Savepoint{}

// NewSavepoint creates a Savepoint decorator that wraps every
// delivery. Call OnCheck to wrap checks as well.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck returns a savepoint that also triggers on Check
func (s Savepoint) OnCheck() Savepoint {
	return Savepoint{onCheck: true}
}

// Check will optionally set a checkpoint
func (s Savepoint) Check(ctx tsm.Context, store tsm.KVStore, tx tsm.Tx, next tsm.Checker) (*tsm.CheckResult, error) {
	if !s.onCheck {
		return next.Check(ctx, store, tx)
	}
	cstore, ok := store.(tsm.CacheableKVStore)
	if !ok {
		return nil, errors.Wrapf(errors.ErrDatabase, "%T cannot create a savepoint", store)
	}

	cache := cstore.CacheWrap()
	res, err := next.Check(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "writing savepoint")
	}
	return res, nil
}

// Deliver always sets a checkpoint
func (s Savepoint) Deliver(ctx tsm.Context, store tsm.KVStore, tx tsm.Tx, next tsm.Deliverer) (*tsm.DeliverResult, error) {
	cstore, ok := store.(tsm.CacheableKVStore)
	if !ok {
		return nil, errors.Wrapf(errors.ErrDatabase, "%T cannot create a savepoint", store)
	}

	cache := cstore.CacheWrap()
	res, err := next.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "writing savepoint")
	}
	return res, nil
}
