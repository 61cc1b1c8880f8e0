package cash

import (
	"github.com/okatau/tsm"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file
// use tsm.Address, so address in hex, not base64
type GenesisAccount struct {
	Address tsm.Address `json:"address"`
	Coins   []coin.Coin `json:"coins"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ tsm.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database. Coins listed for the same address
// are combined.
func (Initializer) FromGenesis(opts tsm.Options, kv tsm.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	ctrl := NewController()
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		for _, c := range acct.Coins {
			if err := ctrl.CoinMint(kv, acct.Address, c); err != nil {
				return errors.Wrapf(err, "account %d", i)
			}
		}
	}
	return nil
}
