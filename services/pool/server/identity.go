package server

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/text/unicode/norm"

	"vusdpool/native/pool"
)

// AddressFormat restricts the account identifiers accepted by the service.
type AddressFormat string

const (
	AddressAny    AddressFormat = "any"
	AddressBech32 AddressFormat = "bech32"
	AddressHex    AddressFormat = "hex"
)

const maxIdentifierLength = 256

// IdentityPolicy canonicalises account identifiers before they reach the
// controller, so "Alice" typed with compatibility characters and the plain
// spelling map to one ledger entry.
type IdentityPolicy struct {
	Format AddressFormat
	// Bech32HRP pins the human readable prefix when Format is bech32.
	Bech32HRP string
}

// Normalize returns the canonical account id for raw.
func (p IdentityPolicy) Normalize(raw string) (pool.AccountID, error) {
	id, err := normalizeIdentifier(raw)
	if err != nil {
		return "", err
	}
	switch p.Format {
	case "", AddressAny:
		return pool.AccountID(id), nil
	case AddressBech32:
		lower := strings.ToLower(id)
		hrp, _, err := bech32.Decode(lower)
		if err != nil {
			return "", fmt.Errorf("%w: not a bech32 address: %v", pool.ErrInvalidActor, err)
		}
		if p.Bech32HRP != "" && hrp != strings.ToLower(p.Bech32HRP) {
			return "", fmt.Errorf("%w: unexpected address prefix %q", pool.ErrInvalidActor, hrp)
		}
		return pool.AccountID(lower), nil
	case AddressHex:
		if !common.IsHexAddress(id) {
			return "", fmt.Errorf("%w: not a hex address", pool.ErrInvalidActor)
		}
		return pool.AccountID(common.HexToAddress(id).Hex()), nil
	default:
		return "", fmt.Errorf("unknown address format %q", p.Format)
	}
}

// Validate checks the policy itself.
func (p IdentityPolicy) Validate() error {
	switch p.Format {
	case "", AddressAny, AddressHex:
		if p.Bech32HRP != "" {
			return fmt.Errorf("bech32 prefix requires address format %q", AddressBech32)
		}
		return nil
	case AddressBech32:
		return nil
	default:
		return fmt.Errorf("unknown address format %q", p.Format)
	}
}

// normalizeIdentifier applies NFKC and rejects empty, oversized or
// whitespace-bearing identifiers. It is also used for allow-list event names.
func normalizeIdentifier(raw string) (string, error) {
	id := norm.NFKC.String(strings.TrimSpace(raw))
	if id == "" {
		return "", pool.ErrInvalidActor
	}
	if len(id) > maxIdentifierLength {
		return "", fmt.Errorf("%w: identifier exceeds %d bytes", pool.ErrInvalidActor, maxIdentifierLength)
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", fmt.Errorf("%w: identifier contains whitespace or control characters", pool.ErrInvalidActor)
		}
	}
	return id, nil
}
