package common

import "errors"

var ErrDecimalOverflow = errors.New("decimal does not fit in a 128-bit slot")
