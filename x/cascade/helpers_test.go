package cascade

import (
	"testing"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/tsmtest/assert"
)

func createFactory(t testing.TB, db tsm.KVStore, owner tsm.Address, assets ...coin.Asset) []byte {
	t.Helper()
	id, err := NewFactoryBucket().Put(db, nil, &Factory{Owner: owner, AcceptedAssets: assets})
	assert.Nil(t, err)
	return id
}

func createAllocator(t testing.TB, db tsm.KVStore, factoryID []byte, owner tsm.Address, ceiling coin.Amount) []byte {
	t.Helper()
	id, err := allocatorSeq.NextVal(db)
	assert.Nil(t, err)
	_, err = NewAllocatorBucket().Put(db, id, &Allocator{
		FactoryID: factoryID,
		Owner:     owner,
		Ceiling:   ceiling,
		Address:   AllocatorAddress(id),
	})
	assert.Nil(t, err)
	return id
}

func createValve(t testing.TB, db tsm.KVStore, factoryID []byte, admin, controller tsm.Address, assets []coin.Asset, allocators ...[]byte) ([]byte, *Valve) {
	t.Helper()
	id, err := valveSeq.NextVal(db)
	assert.Nil(t, err)
	v := Valve{
		FactoryID:  factoryID,
		Admin:      admin,
		Controller: controller,
		Allocators: allocators,
		Assets:     assets,
		Address:    ValveAddress(id),
	}
	_, err = NewValveBucket().Put(db, id, &v)
	assert.Nil(t, err)
	return id, &v
}

func loadAllocator(t testing.TB, db tsm.ReadOnlyKVStore, id []byte) *Allocator {
	t.Helper()
	var a Allocator
	assert.Nil(t, NewAllocatorBucket().One(db, id, &a))
	return &a
}

func loadValve(t testing.TB, db tsm.ReadOnlyKVStore, id []byte) *Valve {
	t.Helper()
	var v Valve
	assert.Nil(t, NewValveBucket().One(db, id, &v))
	return &v
}

// human returns the amount of "raw" units using 18 decimal places.
func human(t testing.TB, raw string) coin.Amount {
	t.Helper()
	a, err := coin.ParseAmount(raw, 18)
	assert.Nil(t, err)
	return a
}
