package cascade

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/orm"
)

const optKey = "cascade"

// Genesis is the "cascade" section of the genesis file. Instances are
// created in the listed order, so the n-th entry of each list receives
// sequence id n. References between instances use those numbers.
type Genesis struct {
	Factories []struct {
		Owner          tsm.Address  `json:"owner"`
		AcceptedAssets []coin.Asset `json:"accepted_assets"`
	} `json:"factories"`
	Allocators []struct {
		Factory uint64      `json:"factory"`
		Owner   tsm.Address `json:"owner"`
		Ceiling coin.Amount `json:"ceiling"`
	} `json:"allocators"`
	Valves []struct {
		Factory    uint64       `json:"factory"`
		Controller tsm.Address  `json:"controller"`
		Allocators []uint64     `json:"allocators"`
		Assets     []coin.Asset `json:"assets"`
	} `json:"valves"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ tsm.Initializer = Initializer{}

// FromGenesis will parse initial factories, allocators and valves from
// genesis and save them to the database.
func (Initializer) FromGenesis(opts tsm.Options, db tsm.KVStore) error {
	var gen Genesis
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return err
	}

	factories := NewFactoryBucket()
	for i, f := range gen.Factories {
		factory := Factory{Owner: f.Owner, AcceptedAssets: f.AcceptedAssets}
		if _, err := factories.Put(db, nil, &factory); err != nil {
			return errors.Wrapf(err, "factory #%d", i)
		}
	}

	allocators := NewAllocatorBucket()
	for i, a := range gen.Allocators {
		factoryID := orm.EncodeSequence(int64(a.Factory))
		var factory Factory
		if err := factories.One(db, factoryID, &factory); err != nil {
			return errors.Wrapf(err, "allocator #%d factory", i)
		}
		owner := a.Owner
		if len(owner) == 0 {
			owner = factory.Owner
		}
		id, err := allocatorSeq.NextVal(db)
		if err != nil {
			return errors.Wrap(err, "allocator sequence")
		}
		alloc := Allocator{
			FactoryID: factoryID,
			Owner:     owner,
			Ceiling:   a.Ceiling,
			Address:   AllocatorAddress(id),
		}
		if _, err := allocators.Put(db, id, &alloc); err != nil {
			return errors.Wrapf(err, "allocator #%d", i)
		}
	}

	valves := NewValveBucket()
	for i, v := range gen.Valves {
		factoryID := orm.EncodeSequence(int64(v.Factory))
		var factory Factory
		if err := factories.One(db, factoryID, &factory); err != nil {
			return errors.Wrapf(err, "valve #%d factory", i)
		}
		var ids [][]byte
		for _, n := range v.Allocators {
			aid := orm.EncodeSequence(int64(n))
			if err := allocators.Has(db, aid); err != nil {
				return errors.Wrapf(err, "valve #%d allocator %d", i, n)
			}
			ids = append(ids, aid)
		}
		id, err := valveSeq.NextVal(db)
		if err != nil {
			return errors.Wrap(err, "valve sequence")
		}
		valve := Valve{
			FactoryID:  factoryID,
			Admin:      factory.Owner,
			Controller: v.Controller,
			Allocators: ids,
			Assets:     v.Assets,
			Address:    ValveAddress(id),
		}
		if _, err := valves.Put(db, id, &valve); err != nil {
			return errors.Wrapf(err, "valve #%d", i)
		}
	}
	return nil
}
