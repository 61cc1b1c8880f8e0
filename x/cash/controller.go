package cash

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/orm"
)

// Controller is the functionality needed by cash.Handler and
// other extensions that keep funds on the ledger.
type Controller interface {
	// Balance returns the amount of given asset held by the owner.
	// Unknown owners hold nothing.
	Balance(db tsm.ReadOnlyKVStore, owner tsm.Address, asset coin.Asset) (coin.Amount, error)
	// Balances returns all assets held by the owner.
	Balances(db tsm.ReadOnlyKVStore, owner tsm.Address) (coin.Coins, error)
	// MoveCoins transfers the amount from src to dest. It fails
	// without changing any state if src does not hold enough.
	MoveCoins(db tsm.KVStore, src, dest tsm.Address, amount coin.Coin) error
	// CoinMint adds new funds to the destination wallet.
	CoinMint(db tsm.KVStore, dest tsm.Address, amount coin.Coin) error
}

// BaseController is the wallet bucket backed Controller.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller using the default wallet bucket.
func NewController() BaseController {
	return BaseController{bucket: NewWalletBucket()}
}

// Balance returns the amount of a single asset.
func (c BaseController) Balance(db tsm.ReadOnlyKVStore, owner tsm.Address, asset coin.Asset) (coin.Amount, error) {
	w, err := loadWallet(db, c.bucket, owner)
	if err != nil {
		return coin.Amount{}, err
	}
	return w.Coins.Get(asset), nil
}

// Balances returns every asset held.
func (c BaseController) Balances(db tsm.ReadOnlyKVStore, owner tsm.Address) (coin.Coins, error) {
	w, err := loadWallet(db, c.bucket, owner)
	if err != nil {
		return nil, err
	}
	return w.Coins, nil
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db tsm.KVStore, src, dest tsm.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if amount.IsZero() {
		return errors.Wrap(errors.ErrAmount, "zero value")
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "src")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "dest")
	}

	sender, err := loadWallet(db, c.bucket, src)
	if err != nil {
		return err
	}
	left, err := sender.Coins.Subtract(amount)
	if err != nil {
		return errors.Wrapf(err, "cannot move %s", amount)
	}
	if src.Equals(dest) {
		return nil
	}

	recipient, err := loadWallet(db, c.bucket, dest)
	if err != nil {
		return err
	}
	got, err := recipient.Coins.Add(amount)
	if err != nil {
		return errors.Wrapf(err, "cannot receive %s", amount)
	}

	sender.Coins = left
	recipient.Coins = got
	if err := saveWallet(db, c.bucket, src, sender); err != nil {
		return errors.Wrap(err, "cannot save sender")
	}
	if err := saveWallet(db, c.bucket, dest, recipient); err != nil {
		return errors.Wrap(err, "cannot save recipient")
	}
	return nil
}

// CoinMint attempts to add the given amount of coins to the
// destination address. Fails if it overflows the wallet.
func (c BaseController) CoinMint(db tsm.KVStore, dest tsm.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "dest")
	}
	w, err := loadWallet(db, c.bucket, dest)
	if err != nil {
		return err
	}
	if w.Coins, err = w.Coins.Add(amount); err != nil {
		return errors.Wrapf(err, "cannot mint %s", amount)
	}
	return saveWallet(db, c.bucket, dest, w)
}
