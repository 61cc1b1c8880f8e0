package splitter

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/orm"
	"github.com/okatau/tsm/x/cascade"
)

const optKey = "splitter"

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ tsm.Initializer = Initializer{}

// FromGenesis will parse initial splitters from genesis and save them to
// the database. Allocator recipients are referenced by their sequence
// number, so the cascade genesis must be loaded first.
func (Initializer) FromGenesis(opts tsm.Options, db tsm.KVStore) error {
	type stream struct {
		Address   tsm.Address `json:"address"`
		Allocator uint64      `json:"allocator"`
		Weight    uint32      `json:"weight"`
	}
	var splitters []struct {
		Admin   tsm.Address  `json:"admin"`
		Assets  []coin.Asset `json:"assets"`
		Streams []stream     `json:"streams"`
	}
	if err := opts.ReadOptions(optKey, &splitters); err != nil {
		return errors.Wrap(err, "cannot load splitters")
	}

	bucket := NewBucket()
	allocators := cascade.NewAllocatorBucket()
	for i, s := range splitters {
		streams := make([]Stream, 0, len(s.Streams))
		for _, st := range s.Streams {
			r := AddressRecipient(st.Address)
			if st.Allocator != 0 {
				r = AllocatorRecipient(orm.EncodeSequence(int64(st.Allocator)))
			}
			streams = append(streams, Stream{Recipient: r, Weight: st.Weight})
		}
		if err := requireAllocators(db, allocators, streams); err != nil {
			return errors.Wrapf(err, "splitter #%d", i)
		}
		key, err := splitterSeq.NextVal(db)
		if err != nil {
			return errors.Wrap(err, "cannot acquire ID")
		}
		splitter := Splitter{
			Admin:   s.Admin,
			Assets:  s.Assets,
			Streams: streams,
			Address: SplitterAddress(key),
		}
		if _, err := bucket.Put(db, key, &splitter); err != nil {
			return errors.Wrapf(err, "cannot store #%d splitter", i)
		}
	}
	return nil
}
