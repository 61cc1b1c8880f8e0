package coin

import (
	"encoding/json"
	"math/big"
	"math/bits"
	"strconv"

	"github.com/okatau/tsm/errors"
)

// Amount is a count of the smallest unit of an asset. It holds 128 bits,
// enough for balances of assets with 18 decimals. The zero value is 0.
type Amount struct {
	hi, lo uint64
}

// NewAmount returns n units.
func NewAmount(n uint64) Amount {
	return Amount{lo: n}
}

// MaxAmount is the largest value an Amount can hold.
var MaxAmount = Amount{hi: ^uint64(0), lo: ^uint64(0)}

func (a Amount) IsZero() bool {
	return a.hi == 0 && a.lo == 0
}

// Cmp returns -1, 0 or 1 when a is less than, equal to or greater than o.
func (a Amount) Cmp(o Amount) int {
	switch {
	case a.hi < o.hi:
		return -1
	case a.hi > o.hi:
		return 1
	case a.lo < o.lo:
		return -1
	case a.lo > o.lo:
		return 1
	}
	return 0
}

// Add returns the sum or ErrOverflow.
func (a Amount) Add(o Amount) (Amount, error) {
	lo, carry := bits.Add64(a.lo, o.lo, 0)
	hi, carry := bits.Add64(a.hi, o.hi, carry)
	if carry != 0 {
		return Amount{}, errors.Wrapf(errors.ErrOverflow, "%s + %s", a, o)
	}
	return Amount{hi: hi, lo: lo}, nil
}

// Sub returns the difference or ErrInsufficientAmount if o is greater
// than a.
func (a Amount) Sub(o Amount) (Amount, error) {
	lo, borrow := bits.Sub64(a.lo, o.lo, 0)
	hi, borrow := bits.Sub64(a.hi, o.hi, borrow)
	if borrow != 0 {
		return Amount{}, errors.Wrapf(errors.ErrInsufficientAmount, "%s - %s", a, o)
	}
	return Amount{hi: hi, lo: lo}, nil
}

// Min returns the smaller of two amounts.
func Min(a, b Amount) Amount {
	if a.Cmp(b) < 0 {
		return a
	}
	return b
}

// Sum adds all given amounts.
func Sum(amounts ...Amount) (Amount, error) {
	var total Amount
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}

// MulDiv returns floor(a * b / c). The product is computed without
// truncation, so the result is exact whenever it fits, which always
// holds when b <= c.
func MulDiv(a, b, c Amount) (Amount, error) {
	if c.IsZero() {
		return Amount{}, errors.Wrap(errors.ErrInput, "division by zero")
	}
	q := new(big.Int).Mul(a.bigInt(), b.bigInt())
	q.Quo(q, c.bigInt())
	res, err := amountFromBig(q)
	if err != nil {
		return Amount{}, errors.Wrapf(err, "%s * %s / %s", a, b, c)
	}
	return res, nil
}

// String returns the base 10 representation.
func (a Amount) String() string {
	if a.hi == 0 {
		return strconv.FormatUint(a.lo, 10)
	}
	return a.bigInt().String()
}

// ParseUnits reads a base 10 integer count of the smallest unit.
func ParseUnits(raw string) (Amount, error) {
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "not an integer: %q", raw)
	}
	if n.Sign() < 0 {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "negative amount %q", raw)
	}
	return amountFromBig(n)
}

func (a Amount) bigInt() *big.Int {
	n := new(big.Int).SetUint64(a.hi)
	n.Lsh(n, 64)
	return n.Or(n, new(big.Int).SetUint64(a.lo))
}

// amountFromBig expects a non negative n.
func amountFromBig(n *big.Int) (Amount, error) {
	if n.BitLen() > 128 {
		return Amount{}, errors.Wrapf(errors.ErrOverflow, "%s above 128 bits", n)
	}
	lo := new(big.Int).And(n, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(n, 64)
	return Amount{hi: hi.Uint64(), lo: lo.Uint64()}, nil
}

// MarshalJSON writes a quoted decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal string or a JSON integer. Null leaves
// the amount unchanged.
func (a *Amount) UnmarshalJSON(raw []byte) error {
	if string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return errors.Wrapf(errors.ErrAmount, "cannot decode %s", raw)
		}
		s = n.String()
	}
	parsed, err := ParseUnits(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalAmino stores the amount in its decimal form.
func (a Amount) MarshalAmino() (string, error) {
	return a.String(), nil
}

func (a *Amount) UnmarshalAmino(raw string) error {
	parsed, err := ParseUnits(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
