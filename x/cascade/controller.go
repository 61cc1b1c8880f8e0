package cascade

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/errors"
)

// CashController allows to manage coins stored by the accounts without the
// need to directly access the bucket.
// Required functionality is implemented by the x/cash extension.
type CashController interface {
	Balance(db tsm.ReadOnlyKVStore, owner tsm.Address, asset coin.Asset) (coin.Amount, error)
	MoveCoins(db tsm.KVStore, src, dest tsm.Address, amount coin.Coin) error
}

// Credit offers amount of the asset held by source to the allocator. The
// allocator takes what fits below its ceiling, the accepted part is moved
// from source to the allocator address and the remainder is returned to
// the caller so that it can flow elsewhere.
//
// This is the only function that modifies allocator state. The allocator
// is always loaded from the store, so room consumed by any other caller is
// respected.
func Credit(
	db tsm.KVStore,
	ctrl CashController,
	source tsm.Address,
	allocatorID []byte,
	asset coin.Asset,
	amount coin.Amount,
) (accepted, remainder coin.Amount, err error) {
	bucket := NewAllocatorBucket()
	var alloc Allocator
	if err := bucket.One(db, allocatorID, &alloc); err != nil {
		return coin.Amount{}, coin.Amount{}, errors.Wrapf(err, "allocator %x", allocatorID)
	}
	accepted, remainder, err = alloc.Credit(asset, amount)
	if err != nil {
		return coin.Amount{}, coin.Amount{}, errors.Wrapf(err, "allocator %x", allocatorID)
	}
	if accepted.IsZero() {
		return coin.Amount{}, remainder, nil
	}
	if err := ctrl.MoveCoins(db, source, alloc.Address, coin.Coin{Ticker: asset, Amount: accepted}); err != nil {
		return coin.Amount{}, coin.Amount{}, errors.Wrap(err, "cannot move coins")
	}
	if _, err := bucket.Put(db, allocatorID, &alloc); err != nil {
		return coin.Amount{}, coin.Amount{}, errors.Wrap(err, "cannot save allocator")
	}
	return accepted, remainder, nil
}

// EffectiveAssets returns the assets a valve moves when filled. A valve
// with no assets of its own uses the accepted assets of its factory.
func EffectiveAssets(db tsm.ReadOnlyKVStore, valve *Valve) ([]coin.Asset, error) {
	if len(valve.Assets) != 0 {
		return valve.Assets, nil
	}
	var f Factory
	if err := NewFactoryBucket().One(db, valve.FactoryID, &f); err != nil {
		return nil, errors.Wrap(err, "cannot load factory")
	}
	return f.AcceptedAssets, nil
}

// ValveBalance returns the sum of what the valve holds of each of the
// given assets.
func ValveBalance(db tsm.ReadOnlyKVStore, ctrl CashController, valve *Valve, assets []coin.Asset) (coin.Amount, error) {
	balances := make([]coin.Amount, 0, len(assets))
	for _, a := range assets {
		b, err := ctrl.Balance(db, valve.Address, a)
		if err != nil {
			return coin.Amount{}, errors.Wrapf(err, "balance of %s", a)
		}
		balances = append(balances, b)
	}
	return coin.Sum(balances...)
}

// FillReport describes the result of a single valve fill.
type FillReport struct {
	ValveID []byte      `json:"valve_id"`
	Assets  []AssetFill `json:"assets"`
}

// AssetFill describes how the balance of one asset was distributed.
type AssetFill struct {
	Asset   coin.Asset  `json:"asset"`
	Balance coin.Amount `json:"balance"`
	// Credits lists allocators that accepted anything, in the order
	// they were credited.
	Credits  []AllocatorCredit `json:"credits"`
	Leftover coin.Amount       `json:"leftover"`
}

// AllocatorCredit is the amount accepted by a single allocator.
type AllocatorCredit struct {
	AllocatorID []byte      `json:"allocator_id"`
	Accepted    coin.Amount `json:"accepted"`
}

// Fill moves the whole balance of each effective asset of the valve into
// its allocators, in priority order. Every allocator takes what fits and
// passes the rest on. Whatever is not accepted by any allocator remains
// on the valve.
func Fill(db tsm.KVStore, ctrl CashController, valveID []byte, valve *Valve) (*FillReport, error) {
	assets, err := EffectiveAssets(db, valve)
	if err != nil {
		return nil, err
	}

	report := FillReport{ValveID: valveID}
	for _, asset := range assets {
		balance, err := ctrl.Balance(db, valve.Address, asset)
		if err != nil {
			return nil, errors.Wrapf(err, "balance of %s", asset)
		}
		fill := AssetFill{Asset: asset, Balance: balance}

		remaining := balance
		for _, id := range valve.Allocators {
			if remaining.IsZero() {
				break
			}
			accepted, remainder, err := Credit(db, ctrl, valve.Address, id, asset, remaining)
			if err != nil {
				return nil, errors.Wrapf(err, "fill %s", asset)
			}
			if !accepted.IsZero() {
				fill.Credits = append(fill.Credits, AllocatorCredit{AllocatorID: id, Accepted: accepted})
			}
			remaining = remainder
		}
		fill.Leftover = remaining
		report.Assets = append(report.Assets, fill)
	}
	return &report, nil
}

// Accepted returns the total amount of the asset accepted by all
// allocators. It never exceeds the filled balance.
func (f AssetFill) Accepted() coin.Amount {
	amounts := make([]coin.Amount, len(f.Credits))
	for i, c := range f.Credits {
		amounts[i] = c.Accepted
	}
	total, _ := coin.Sum(amounts...)
	return total
}
