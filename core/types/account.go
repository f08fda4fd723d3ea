package types

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
)

// AccountLength is the size in bytes of an account identity.
const AccountLength = 20

// AccountPrefix is the human-readable bech32 prefix used when rendering
// accounts as text.
const AccountPrefix = "tok"

var ErrInvalidAccount = errors.New("account: invalid identity")

// Account is an opaque, fixed-length holder identity. Accounts are totally
// ordered by their byte representation.
type Account [AccountLength]byte

// AccountFromBytes copies b into an Account. The input must be exactly
// AccountLength bytes long.
func AccountFromBytes(b []byte) (Account, error) {
	var acc Account
	if len(b) != AccountLength {
		return acc, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAccount, AccountLength, len(b))
	}
	copy(acc[:], b)
	return acc, nil
}

// ParseAccount decodes a bech32 encoded account. Only the AccountPrefix
// human-readable part is accepted.
func ParseAccount(s string) (Account, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Account{}, fmt.Errorf("%w: empty string", ErrInvalidAccount)
	}
	prefix, decoded, err := bech32.Decode(trimmed)
	if err != nil {
		return Account{}, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	if prefix != AccountPrefix {
		return Account{}, fmt.Errorf("%w: unexpected prefix %q", ErrInvalidAccount, prefix)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Account{}, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	return AccountFromBytes(conv)
}

// Bytes returns a copy of the raw identity.
func (a Account) Bytes() []byte {
	out := make([]byte, AccountLength)
	copy(out, a[:])
	return out
}

// IsZero reports whether the account is the all-zero identity.
func (a Account) IsZero() bool {
	return a == Account{}
}

// Compare orders accounts by their byte representation.
func (a Account) Compare(b Account) int {
	return bytes.Compare(a[:], b[:])
}

// Less reports whether a sorts before b.
func (a Account) Less(b Account) bool {
	return a.Compare(b) < 0
}

func (a Account) String() string {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return fmt.Sprintf("%x", a[:])
	}
	encoded, err := bech32.Encode(AccountPrefix, conv)
	if err != nil {
		return fmt.Sprintf("%x", a[:])
	}
	return encoded
}

// MarshalText renders the account in bech32 form.
func (a Account) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses a bech32 encoded account.
func (a *Account) UnmarshalText(text []byte) error {
	parsed, err := ParseAccount(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
