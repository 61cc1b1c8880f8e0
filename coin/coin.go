package coin

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/okatau/tsm/errors"
)

//-------------- Asset -----------------------

// IsAsset is the RegExp to ensure valid asset tickers
var IsAsset = regexp.MustCompile(`^[A-Z][A-Z0-9]{2,15}$`).MatchString

// Asset identifies a fungible token type by its ticker.
type Asset string

// Validate returns an error if the ticker is not well formed.
func (a Asset) Validate() error {
	if !IsAsset(string(a)) {
		return errors.Wrapf(errors.ErrAsset, "invalid asset: %q", string(a))
	}
	return nil
}

// ValidateAssets checks that every asset is valid and listed once.
func ValidateAssets(assets []Asset) error {
	seen := make(map[Asset]struct{}, len(assets))
	for i, a := range assets {
		if err := a.Validate(); err != nil {
			return errors.Wrapf(err, "asset %d", i)
		}
		if _, ok := seen[a]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "asset %s", a)
		}
		seen[a] = struct{}{}
	}
	return nil
}

//-------------- Coin -----------------------

// Coin is an amount of a single asset.
type Coin struct {
	Ticker Asset  `json:"ticker"`
	Amount Amount `json:"amount"`
}

// NewCoin creates a new coin object
func NewCoin(amount uint64, ticker string) Coin {
	return Coin{Ticker: Asset(ticker), Amount: NewAmount(amount)}
}

// Validate ensures that the coin has a valid ticker.
func (c Coin) Validate() error {
	return c.Ticker.Validate()
}

// IsZero returns true when no value is held.
func (c Coin) IsZero() bool {
	return c.Amount.IsZero()
}

// String provides a human readable representation of the coin in the
// smallest unit, in the format accepted by ParseCoin.
func (c Coin) String() string {
	return fmt.Sprintf("%s %s", c.Amount, c.Ticker)
}

// ParseCoin reads a coin from "<amount> <ticker>" where amount is
// an integer count of the smallest unit.
func ParseCoin(raw string) (Coin, error) {
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid coin format: %q", raw)
	}
	amount, err := ParseUnits(fields[0])
	if err != nil {
		return Coin{}, err
	}
	c := Coin{Ticker: Asset(fields[1]), Amount: amount}
	return c, c.Validate()
}

// UnmarshalJSON accepts both the "<amount> <ticker>" string and the
// object form.
func (c *Coin) UnmarshalJSON(raw []byte) error {
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		parsed, err := ParseCoin(human)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	// Because UnmarshalJSON method is provided, we can no longer use
	// Coin type for this.
	var coin struct {
		Ticker Asset  `json:"ticker"`
		Amount Amount `json:"amount"`
	}
	if err := json.Unmarshal(raw, &coin); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	c.Ticker = coin.Ticker
	c.Amount = coin.Amount
	return nil
}

// Set updates this coin value to what is provided. This method implements
// flag.Value interface.
func (c *Coin) Set(raw string) error {
	val, err := ParseCoin(raw)
	if err != nil {
		return err
	}
	*c = val
	return nil
}
