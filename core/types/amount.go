package types

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

var (
	// ErrAmountOverflow is returned when a result does not fit the 256-bit
	// amount range.
	ErrAmountOverflow = errors.New("amount: overflow")
	// ErrAmountUnderflow is returned when a subtraction would go below zero.
	ErrAmountUnderflow = errors.New("amount: underflow")
	ErrAmountNegative  = errors.New("amount: negative value")
	ErrAmountInvalid   = errors.New("amount: invalid decimal")
	ErrDivisionByZero  = errors.New("amount: division by zero")
)

// Amount is a non-negative token quantity bounded to 256 bits, i.e. at most
// 2^256-1 base units. Results past that bound are reported as
// ErrAmountOverflow rather than wrapped. The zero value is 0. Amount is a
// comparable value type and is safe to copy.
type Amount struct {
	v uint256.Int
}

// NewAmount returns an Amount holding x.
func NewAmount(x uint64) Amount {
	var a Amount
	a.v.SetUint64(x)
	return a
}

// AmountFromBig converts a big integer. Negative values and values wider
// than 256 bits are rejected.
func AmountFromBig(b *big.Int) (Amount, error) {
	var a Amount
	if b == nil {
		return a, nil
	}
	if b.Sign() < 0 {
		return a, ErrAmountNegative
	}
	if overflow := a.v.SetFromBig(b); overflow {
		return Amount{}, ErrAmountOverflow
	}
	return a, nil
}

// ParseAmount parses a base-10 string. Empty input parses as zero.
func ParseAmount(s string) (Amount, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Amount{}, nil
	}
	if strings.HasPrefix(trimmed, "-") {
		return Amount{}, ErrAmountNegative
	}
	b, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %q", ErrAmountInvalid, s)
	}
	return AmountFromBig(b)
}

// MustParseAmount is like ParseAmount but panics on error. Intended for
// constants and tests.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a+b or ErrAmountOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	var out Amount
	if _, overflow := out.v.AddOverflow(&a.v, &b.v); overflow {
		return Amount{}, ErrAmountOverflow
	}
	return out, nil
}

// Sub returns a-b or ErrAmountUnderflow when b > a.
func (a Amount) Sub(b Amount) (Amount, error) {
	var out Amount
	if _, underflow := out.v.SubOverflow(&a.v, &b.v); underflow {
		return Amount{}, ErrAmountUnderflow
	}
	return out, nil
}

// Mul returns a*b or ErrAmountOverflow.
func (a Amount) Mul(b Amount) (Amount, error) {
	var out Amount
	if _, overflow := out.v.MulOverflow(&a.v, &b.v); overflow {
		return Amount{}, ErrAmountOverflow
	}
	return out, nil
}

// MulDiv returns floor(a*num/den). The intermediate product is computed at
// 512-bit precision so only the final quotient must fit.
func (a Amount) MulDiv(num, den uint64) (Amount, error) {
	if den == 0 {
		return Amount{}, ErrDivisionByZero
	}
	var out Amount
	n := uint256.NewInt(num)
	d := uint256.NewInt(den)
	if _, overflow := out.v.MulDivOverflow(&a.v, n, d); overflow {
		return Amount{}, ErrAmountOverflow
	}
	return out, nil
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Uint64 returns the value as a uint64 and whether it fit.
func (a Amount) Uint64() (uint64, bool) {
	if !a.v.IsUint64() {
		return 0, false
	}
	return a.v.Uint64(), true
}

// Big returns the value as a freshly allocated big.Int.
func (a Amount) Big() *big.Int {
	return a.v.ToBig()
}

// Float64 returns a lossy floating point rendition for metrics.
func (a Amount) Float64() float64 {
	f, _ := new(big.Float).SetInt(a.v.ToBig()).Float64()
	return f
}

func (a Amount) String() string {
	return a.v.Dec()
}

// MinAmount returns the smaller of a and b.
func MinAmount(a, b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// MaxAmount returns the larger of a and b.
func MaxAmount(a, b Amount) Amount {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// EncodeRLP implements rlp.Encoder.
func (a Amount) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, a.v.ToBig())
}

// DecodeRLP implements rlp.Decoder.
func (a *Amount) DecodeRLP(s *rlp.Stream) error {
	b, err := s.BigInt()
	if err != nil {
		return err
	}
	parsed, err := AmountFromBig(b)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
