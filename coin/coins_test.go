package coin

import (
	"math"
	"testing"

	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/tsmtest/assert"
)

func TestCoinsAddSubtract(t *testing.T) {
	var cs Coins
	cs, err := cs.Add(NewCoin(10, "TTT"))
	assert.Nil(t, err)
	cs, err = cs.Add(NewCoin(5, "AAA"))
	assert.Nil(t, err)
	cs, err = cs.Add(NewCoin(1, "TTT"))
	assert.Nil(t, err)
	cs, err = cs.Add(NewCoin(0, "ZZZ"))
	assert.Nil(t, err)

	want := Coins{NewCoin(5, "AAA"), NewCoin(11, "TTT")}
	assert.Equal(t, want, cs)
	assert.Nil(t, cs.Validate())
	assert.Equal(t, NewAmount(11), cs.Get("TTT"))
	assert.Equal(t, Amount{}, cs.Get("BBB"))

	total, err := cs.Total()
	assert.Nil(t, err)
	assert.Equal(t, NewAmount(16), total)

	left, err := cs.Subtract(NewCoin(5, "AAA"))
	assert.Nil(t, err)
	assert.Equal(t, Coins{NewCoin(11, "TTT")}, left)
	// original set is not modified
	assert.Equal(t, want, cs)

	_, err = left.Subtract(NewCoin(12, "TTT"))
	assert.IsErr(t, errors.ErrInsufficientAmount, err)
	_, err = left.Subtract(NewCoin(1, "AAA"))
	assert.IsErr(t, errors.ErrInsufficientAmount, err)

	_, err = left.Add(Coin{Ticker: "TTT", Amount: MaxAmount})
	assert.IsErr(t, errors.ErrOverflow, err)

	// balances above 64 bits
	wide, err := left.Add(NewCoin(math.MaxUint64, "TTT"))
	assert.Nil(t, err)
	assert.Equal(t, "18446744073709551626", wide.Get("TTT").String())
	wide, err = wide.Subtract(NewCoin(math.MaxUint64, "TTT"))
	assert.Nil(t, err)
	assert.Equal(t, NewAmount(11), wide.Get("TTT"))
}

func TestCoinsValidate(t *testing.T) {
	cases := map[string]struct {
		coins   Coins
		wantErr *errors.Error
	}{
		"empty": {
			coins: nil,
		},
		"normalized": {
			coins: Coins{NewCoin(1, "AAA"), NewCoin(2, "BBB")},
		},
		"unsorted": {
			coins:   Coins{NewCoin(2, "BBB"), NewCoin(1, "AAA")},
			wantErr: errors.ErrState,
		},
		"zero entry": {
			coins:   Coins{NewCoin(0, "AAA")},
			wantErr: errors.ErrAmount,
		},
		"bad ticker": {
			coins:   Coins{NewCoin(1, "a")},
			wantErr: errors.ErrAsset,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.coins.Validate()
			if tc.wantErr == nil {
				assert.Nil(t, err)
			} else {
				assert.IsErr(t, tc.wantErr, err)
			}
		})
	}
}
