// Package chaintypes defines the wire-level data model shared by the
// ledger, the mining engine, the RPC surface and the gossip adapter:
// addresses, amounts, transactions and blocks, along with their
// canonical (deterministic) serializations.
package chaintypes

import (
	"encoding/hex"
	"errors"
	"strings"
)

const (
	addressPrefix = "EDU"
	addressHexLen = 40 // 20 bytes
)

// ErrInvalidAddress is returned when a string does not parse as a well
// formed address: the literal prefix "EDU" followed by 40 lowercase hex
// characters.
var ErrInvalidAddress = errors.New("chaintypes: invalid address")

// Address is an opaque, case-sensitive account identifier. The zero value
// is not a valid address.
type Address string

// NewAddress builds an Address from the 20-byte hash suffix produced by
// wallet derivation.
func NewAddress(suffix [20]byte) Address {
	return Address(addressPrefix + hex.EncodeToString(suffix[:]))
}

// ParseAddress validates s and returns it as an Address. Validation is
// byte-exact: uppercase hex or a wrong-length suffix is rejected.
func ParseAddress(s string) (Address, error) {
	if !strings.HasPrefix(s, addressPrefix) {
		return "", ErrInvalidAddress
	}
	rest := s[len(addressPrefix):]
	if len(rest) != addressHexLen {
		return "", ErrInvalidAddress
	}
	for _, r := range rest {
		if !isLowerHex(r) {
			return "", ErrInvalidAddress
		}
	}
	return Address(s), nil
}

func isLowerHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}

// Valid reports whether a already satisfies the address format.
func (a Address) Valid() bool {
	_, err := ParseAddress(string(a))
	return err == nil
}

func (a Address) String() string {
	return string(a)
}
