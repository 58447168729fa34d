package common

import (
	"fmt"
	"math/big"
)

// Hugeint is the 128-bit value stored by the Int128 block family.
// Layout is two machine words: low 64 bits unsigned, high 64 bits signed.
type Hugeint struct {
	Lower uint64
	Upper int64
}

func (h Hugeint) String() string {
	b := big.NewInt(h.Upper)
	b.Lsh(b, 64)
	b.Add(b, new(big.Int).SetUint64(h.Lower))
	return b.String()
}

func (h *Hugeint) Equal(o *Hugeint) bool {
	return h.Lower == o.Lower && h.Upper == o.Upper
}

func HugeintFromInt64(v int64) Hugeint {
	h := Hugeint{Lower: uint64(v)}
	if v < 0 {
		h.Upper = -1
	}
	return h
}

// ToInt64 narrows to 64 bits. The second result is false on overflow.
func (h Hugeint) ToInt64() (int64, bool) {
	v := int64(h.Lower)
	if v >= 0 {
		return v, h.Upper == 0
	}
	return v, h.Upper == -1
}

func (h Hugeint) Format() string {
	return fmt.Sprintf("[%d %d]", h.Upper, h.Lower)
}
