package coin

import (
	"github.com/okatau/tsm/errors"
	"github.com/shopspring/decimal"
)

// MaxDecimals is the highest precision an asset may declare.
const MaxDecimals = 18

// ParseAmount reads a human readable decimal value, for example
// "7.5", and converts it into the smallest unit of an asset with
// given number of decimals. Values that need more precision than the
// asset provides are rejected instead of rounded.
func ParseAmount(raw string, decimals int32) (Amount, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return Amount{}, errors.Wrapf(errors.ErrInput, "invalid decimals: %d", decimals)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "cannot parse %q", raw)
	}
	if d.Sign() < 0 {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "negative amount %q", raw)
	}
	units := d.Shift(decimals)
	if !units.Equal(units.Truncate(0)) {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "%q has more than %d decimals", raw, decimals)
	}
	a, err := amountFromBig(units.BigInt())
	if err != nil {
		return Amount{}, errors.Wrapf(err, "%q does not fit", raw)
	}
	return a, nil
}

// FormatAmount is the inverse of ParseAmount. Trailing zeros are
// dropped.
func FormatAmount(a Amount, decimals int32) string {
	return decimal.NewFromBigInt(a.bigInt(), -decimals).String()
}
