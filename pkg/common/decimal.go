package common

import (
	decimal2 "github.com/govalues/decimal"
)

type Decimal struct {
	decimal2.Decimal
}

func (dec *Decimal) Equal(o *Decimal) bool {
	return dec.Decimal.Cmp(o.Decimal) == 0
}

func (dec *Decimal) String() string {
	return dec.Decimal.String()
}

// PackDecimal turns a decimal into the 128-bit slot form used by the
// Int128 block family: whole units in the high word, fractional units in
// the low word, both at the decimal's own scale.
func PackDecimal(d Decimal) (Hugeint, error) {
	w, f, ok := d.Decimal.Int64(d.Decimal.Scale())
	if !ok {
		return Hugeint{}, ErrDecimalOverflow
	}
	return Hugeint{Upper: w, Lower: uint64(f)}, nil
}

// UnpackDecimal is the inverse of PackDecimal at the given scale.
func UnpackDecimal(h Hugeint, scale int) (Decimal, error) {
	d, err := decimal2.NewFromInt64(h.Upper, int64(h.Lower), scale)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{d}, nil
}
