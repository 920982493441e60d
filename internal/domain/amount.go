package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// BpsBase is the basis-point denominator: 10_000 bps = 1.0x.
const BpsBase = 10_000

// maxAmount is the upper bound of the signed 128-bit balance range (2^127 - 1).
var maxAmount = func() uint256.Int {
	var m uint256.Int
	m.Lsh(uint256.NewInt(1), 127)
	m.SubUint64(&m, 1)
	return m
}()

// Amount is a non-negative token quantity bounded by the signed 128-bit range.
// The zero value is zero. Arithmetic is checked; no operation wraps.
type Amount struct {
	v uint256.Int
}

// MaxAmount returns the largest representable balance.
func MaxAmount() Amount { return Amount{v: maxAmount} }

// AmountFromUint64 converts an unsigned value.
func AmountFromUint64(n uint64) Amount {
	return Amount{v: *uint256.NewInt(n)}
}

// AmountFromInt64 converts a signed value, rejecting negatives.
func AmountFromInt64(n int64) (Amount, error) {
	if n < 0 {
		return Amount{}, ErrInvalidAmount(fmt.Sprintf("amount must not be negative, got %d", n))
	}
	return AmountFromUint64(uint64(n)), nil
}

// MustAmount is AmountFromInt64 for constants and tests.
func MustAmount(n int64) Amount {
	a, err := AmountFromInt64(n)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseAmount parses a base-10 integer string.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalidAmount("amount is required")
	}
	if strings.HasPrefix(s, "-") {
		return Amount{}, ErrInvalidAmount(fmt.Sprintf("amount must not be negative, got %s", s))
	}
	v, err := uint256.FromDecimal(strings.TrimPrefix(s, "+"))
	if err != nil {
		return Amount{}, ErrInvalidAmount(fmt.Sprintf("invalid amount %q", s))
	}
	if v.Gt(&maxAmount) {
		return Amount{}, ErrOverflow(fmt.Sprintf("amount %s exceeds 128-bit range", s))
	}
	return Amount{v: *v}, nil
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a.v.IsZero() }

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int { return a.v.Cmp(&b.v) }

// Add returns a+b; ok is false if the sum leaves the 128-bit range.
func (a Amount) Add(b Amount) (sum Amount, ok bool) {
	var z uint256.Int
	if _, overflow := z.AddOverflow(&a.v, &b.v); overflow || z.Gt(&maxAmount) {
		return Amount{}, false
	}
	return Amount{v: z}, true
}

// Sub returns a-b; ok is false if b > a.
func (a Amount) Sub(b Amount) (diff Amount, ok bool) {
	var z uint256.Int
	if _, underflow := z.SubOverflow(&a.v, &b.v); underflow {
		return Amount{}, false
	}
	return Amount{v: z}, true
}

// MulBps returns a * bps / 10_000, truncating; ok is false on overflow.
func (a Amount) MulBps(bps uint32) (Amount, bool) {
	var z uint256.Int
	if _, overflow := z.MulOverflow(&a.v, uint256.NewInt(uint64(bps))); overflow {
		return Amount{}, false
	}
	z.Div(&z, uint256.NewInt(BpsBase))
	if z.Gt(&maxAmount) {
		return Amount{}, false
	}
	return Amount{v: z}, true
}

// String returns the base-10 representation.
func (a Amount) String() string { return a.v.Dec() }

// MarshalJSON encodes the amount as a decimal string so 128-bit values survive JSON clients.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.v.Dec())
}

// UnmarshalJSON accepts a decimal string or a JSON number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Float64 returns the nearest float64, for score-ranked sorted sets.
func (a Amount) Float64() float64 { return a.v.Float64() }
