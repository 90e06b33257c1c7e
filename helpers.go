package itch

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// trimField strips the ASCII space padding the protocol uses for fixed-
// width ticker and MPID fields and rejects a field that isn't valid
// UTF-8. Trailing spaces are wire padding, not data; the trimmed form
// is canonical everywhere downstream.
func trimField(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", invalidDataErrorf("field %q is not valid UTF-8", b)
	}
	return strings.TrimRight(string(b), " "), nil
}

// combineNanos applies the V41 timestamp combination rule: the context
// clock (seconds since midnight) times 1e9 plus the message's own
// 4-byte nanosecond offset. V50 messages already carry an absolute
// 48-bit nanosecond value and never call this.
func combineNanos(clockSeconds uint32, offsetNanos uint32) uint64 {
	return uint64(clockSeconds)*1_000_000_000 + uint64(offsetNanos)
}

// PriceToDecimal converts a wire price (u32, implicit scale 1e-4 USD)
// to an exact decimal, avoiding the rounding a float64 conversion would
// introduce.
func PriceToDecimal(price uint32) decimal.Decimal {
	return decimal.New(int64(price), -4)
}

// boolFromYN decodes the protocol's ASCII 'Y'/'N' boolean encoding.
func boolFromYN(b byte) (bool, error) {
	switch b {
	case 'Y':
		return true, nil
	case 'N':
		return false, nil
	default:
		return false, invalidDataErrorf("invalid Y/N boolean byte %q", b)
	}
}

// boolToYN is boolFromYN's inverse, used by Encode.
func boolToYN(v bool) byte {
	if v {
		return 'Y'
	}
	return 'N'
}
