package server

import (
	"errors"
	"testing"

	"vusdpool/native/pool"
)

func TestIdentityPolicyNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		policy  IdentityPolicy
		raw     string
		want    pool.AccountID
		wantErr bool
	}{
		{name: "trim", raw: "  alice  ", want: "alice"},
		{name: "nfkc folds fullwidth", raw: "ａｌｉｃｅ", want: "alice"},
		{name: "empty", raw: "   ", wantErr: true},
		{name: "inner space", raw: "al ice", wantErr: true},
		{name: "control", raw: "al\u0007ice", wantErr: true},
		{
			name:   "bech32 lowercased",
			policy: IdentityPolicy{Format: AddressBech32, Bech32HRP: "bc"},
			raw:    "BC1QW508D6QEJXTDG4Y5R3ZARVARY0C5XW7KV8F3T4",
			want:   "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
		},
		{
			name:    "bech32 wrong prefix",
			policy:  IdentityPolicy{Format: AddressBech32, Bech32HRP: "tb"},
			raw:     "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
			wantErr: true,
		},
		{
			name:    "bech32 bad checksum",
			policy:  IdentityPolicy{Format: AddressBech32},
			raw:     "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t5",
			wantErr: true,
		},
		{
			name:   "hex checksummed",
			policy: IdentityPolicy{Format: AddressHex},
			raw:    "0x52908400098527886e0f7030069857d2e4169ee7",
			want:   "0x52908400098527886E0F7030069857D2E4169EE7",
		},
		{
			name:    "hex too short",
			policy:  IdentityPolicy{Format: AddressHex},
			raw:     "0x1234",
			wantErr: true,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := tc.policy.Normalize(tc.raw)
			if tc.wantErr {
				if !errors.Is(err, pool.ErrInvalidActor) {
					t.Fatalf("expected invalid actor, got %v (id %q)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIdentityPolicyValidate(t *testing.T) {
	if err := (IdentityPolicy{Format: AddressHex, Bech32HRP: "bc"}).Validate(); err == nil {
		t.Fatalf("expected prefix without bech32 to fail")
	}
	if err := (IdentityPolicy{Format: "base58"}).Validate(); err == nil {
		t.Fatalf("expected unknown format to fail")
	}
	if err := (IdentityPolicy{Format: AddressBech32, Bech32HRP: "bc"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
