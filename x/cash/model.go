package cash

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Wallet holds all balances of one owner. The owner address is the key
// under which the wallet is stored.
type Wallet struct {
	Coins coin.Coins `json:"coins"`
}

var _ orm.Model = (*Wallet)(nil)

// Validate requires a normalized coin set.
func (w *Wallet) Validate() error {
	return errors.Wrap(w.Coins.Validate(), "coins")
}

// NewWalletBucket returns the bucket holding wallets by owner address.
func NewWalletBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Wallet{})
}

// loadWallet returns the wallet of given owner or an empty one.
func loadWallet(db tsm.ReadOnlyKVStore, b orm.ModelBucket, owner tsm.Address) (*Wallet, error) {
	var w Wallet
	switch err := b.One(db, owner, &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{}, nil
	default:
		return nil, errors.Wrap(err, "cannot load wallet")
	}
}

// saveWallet stores the wallet, removing it when empty.
func saveWallet(db tsm.KVStore, b orm.ModelBucket, owner tsm.Address, w *Wallet) error {
	if w.Coins.IsEmpty() {
		if err := b.Delete(db, owner); err != nil && !errors.ErrNotFound.Is(err) {
			return err
		}
		return nil
	}
	_, err := b.Put(db, owner, w)
	return err
}
