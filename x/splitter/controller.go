package splitter

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/x/cascade"
)

// CashController allows to manage coins stored by the accounts without the
// need to directly access the bucket.
// Required functionality is implemented by the x/cash extension.
type CashController interface {
	Balance(db tsm.ReadOnlyKVStore, owner tsm.Address, asset coin.Asset) (coin.Amount, error)
	MoveCoins(db tsm.KVStore, src, dest tsm.Address, amount coin.Coin) error
}

var _ cascade.CashController = (CashController)(nil)

// SplitReport describes the result of a single split.
type SplitReport struct {
	SplitterID []byte `json:"splitter_id"`
	// Assets lists every tracked asset that was split. Assets with no
	// balance and splitters with no weight are not listed.
	Assets []AssetSplit `json:"assets"`
}

// AssetSplit describes how the balance of one asset was divided.
//
// Balance is always equal to the sum of Distributed, Unaccepted and Dust.
type AssetSplit struct {
	Asset   coin.Asset  `json:"asset"`
	Balance coin.Amount `json:"balance"`
	// Distributed is the amount that left the splitter.
	Distributed coin.Amount `json:"distributed"`
	// Unaccepted is the part of allocator shares refused because the
	// allocator was full.
	Unaccepted coin.Amount `json:"unaccepted"`
	// Dust is the rounding remainder. It is always less than the number
	// of streams.
	Dust coin.Amount `json:"dust"`
}

// Split divides the whole balance of each tracked asset between the
// splitter streams proportionally to their weights. Each share is rounded
// down. Whatever is not transferred remains on the splitter account.
func Split(db tsm.KVStore, ctrl CashController, splitterID []byte, s *Splitter) (*SplitReport, error) {
	report := SplitReport{SplitterID: splitterID}

	total := totalWeight(s.Streams)
	if total.IsZero() {
		// Zero total weight distributes nothing.
		return &report, nil
	}

	for _, asset := range s.Assets {
		balance, err := ctrl.Balance(db, s.Address, asset)
		if err != nil {
			return nil, errors.Wrapf(err, "balance of %s", asset)
		}
		if balance.IsZero() {
			continue
		}

		res := AssetSplit{Asset: asset, Balance: balance}
		var shares coin.Amount
		for i, stream := range s.Streams {
			if stream.Weight == 0 {
				continue
			}
			amount, err := coin.MulDiv(balance, coin.NewAmount(uint64(stream.Weight)), total)
			if err != nil {
				return nil, errors.Wrapf(err, "stream %d share", i)
			}
			// Chunk is too small to be distributed.
			if amount.IsZero() {
				continue
			}
			if shares, err = shares.Add(amount); err != nil {
				return nil, errors.Wrapf(err, "stream %d share", i)
			}

			switch stream.Recipient.Kind {
			case RecipientAddress:
				c := coin.Coin{Ticker: asset, Amount: amount}
				if err := ctrl.MoveCoins(db, s.Address, stream.Recipient.Address, c); err != nil {
					return nil, errors.Wrapf(err, "stream %d", i)
				}
				if res.Distributed, err = res.Distributed.Add(amount); err != nil {
					return nil, errors.Wrapf(err, "stream %d", i)
				}
			case RecipientAllocator:
				accepted, remainder, err := cascade.Credit(db, ctrl, s.Address, stream.Recipient.AllocatorID, asset, amount)
				if err != nil {
					return nil, errors.Wrapf(err, "stream %d", i)
				}
				if res.Distributed, err = res.Distributed.Add(accepted); err != nil {
					return nil, errors.Wrapf(err, "stream %d", i)
				}
				if res.Unaccepted, err = res.Unaccepted.Add(remainder); err != nil {
					return nil, errors.Wrapf(err, "stream %d", i)
				}
			default:
				return nil, errors.Wrapf(errors.ErrType, "stream %d recipient kind %q", i, stream.Recipient.Kind)
			}
		}
		if res.Dust, err = balance.Sub(shares); err != nil {
			return nil, errors.Wrapf(err, "dust of %s", asset)
		}
		report.Assets = append(report.Assets, res)
	}
	return &report, nil
}
