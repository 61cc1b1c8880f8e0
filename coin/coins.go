package coin

import (
	"sort"
	"strings"

	"github.com/okatau/tsm/errors"
)

// Coins represents a set of coins, sorted by ticker with at most one
// entry per asset and no zero entries.
type Coins []Coin

// Clone returns a copy that can be safely modified
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	res := make(Coins, len(cs))
	copy(res, cs)
	return res
}

// Get returns the amount held of given asset.
func (cs Coins) Get(a Asset) Amount {
	if i, ok := cs.find(a); ok {
		return cs[i].Amount
	}
	return Amount{}
}

// Add returns a new set with c added to the holdings.
func (cs Coins) Add(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs.Clone(), nil
	}
	res := cs.Clone()
	i, ok := res.find(c.Ticker)
	if ok {
		sum, err := res[i].Amount.Add(c.Amount)
		if err != nil {
			return nil, errors.Wrapf(err, "asset %s", c.Ticker)
		}
		res[i].Amount = sum
		return res, nil
	}
	res = append(res, Coin{})
	copy(res[i+1:], res[i:])
	res[i] = c
	return res, nil
}

// Subtract returns a new set with c removed from the holdings.
// Fails with ErrInsufficientAmount if not enough is held.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs.Clone(), nil
	}
	res := cs.Clone()
	i, ok := res.find(c.Ticker)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInsufficientAmount, "no %s held", c.Ticker)
	}
	diff, err := res[i].Amount.Sub(c.Amount)
	if err != nil {
		return nil, errors.Wrapf(err, "asset %s", c.Ticker)
	}
	if diff.IsZero() {
		return append(res[:i], res[i+1:]...), nil
	}
	res[i].Amount = diff
	return res, nil
}

// Total returns the sum of all amounts, regardless of the asset.
func (cs Coins) Total() (Amount, error) {
	amounts := make([]Amount, len(cs))
	for i, c := range cs {
		amounts[i] = c.Amount
	}
	return Sum(amounts...)
}

// IsEmpty returns true if nothing is held.
func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

// Validate requires a normalized set of valid coins.
func (cs Coins) Validate() error {
	for i, c := range cs {
		if err := c.Validate(); err != nil {
			return err
		}
		if c.IsZero() {
			return errors.Wrapf(errors.ErrAmount, "zero %s", c.Ticker)
		}
		if i > 0 && cs[i-1].Ticker >= c.Ticker {
			return errors.Wrap(errors.ErrState, "coins not normalized")
		}
	}
	return nil
}

func (cs Coins) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// find returns the index of given asset and true if present. If not
// present, the index is where it should be inserted.
func (cs Coins) find(a Asset) (int, bool) {
	i := sort.Search(len(cs), func(i int) bool { return cs[i].Ticker >= a })
	return i, i < len(cs) && cs[i].Ticker == a
}
