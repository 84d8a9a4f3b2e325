package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// MaxTimestamp is the largest valid value for a transaction validity window.
// Transactions default to the widest possible window [0, MaxTimestamp].
const MaxTimestamp uint64 = 4294967295

// AccountID is the numeric account identifier assigned by the rollup once the
// account has an on-chain presence. Unknown accounts have no ID yet.
type AccountID uint32

// Nonce is the per-account transaction sequence number.
type Nonce uint32

// TokenID is the canonical numeric token identifier. IDs above the fungible
// token range denote NFTs.
type TokenID uint32

// TimeRange bounds the validity of a transaction in unix seconds.
type TimeRange struct {
	ValidFrom  uint64 `json:"validFrom"`
	ValidUntil uint64 `json:"validUntil"`
}

// DefaultTimeRange returns the widest validity window.
func DefaultTimeRange() TimeRange {
	return TimeRange{ValidFrom: 0, ValidUntil: MaxTimestamp}
}

// PubKeyHashPrefix prefixes the human-readable rendering of a PubKeyHash.
const PubKeyHashPrefix = "sync:"

// PubKeyHash is the 20-byte hash of an L2 public key, rendered as
// "sync:<40 lowercase hex chars>".
type PubKeyHash [20]byte

// ParsePubKeyHash parses the "sync:..." rendering.
func ParsePubKeyHash(s string) (PubKeyHash, error) {
	var pkh PubKeyHash
	if !strings.HasPrefix(s, PubKeyHashPrefix) {
		return pkh, fmt.Errorf("pubkey hash must start with %q, got %q", PubKeyHashPrefix, s)
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(s, PubKeyHashPrefix))
	if err != nil {
		return pkh, fmt.Errorf("invalid pubkey hash hex: %w", err)
	}
	if len(raw) != len(pkh) {
		return pkh, fmt.Errorf("pubkey hash must be %d bytes, got %d", len(pkh), len(raw))
	}
	copy(pkh[:], raw)
	return pkh, nil
}

func (p PubKeyHash) String() string {
	return PubKeyHashPrefix + hex.EncodeToString(p[:])
}

// HexString renders the hash without the sync: prefix, as used inside
// Ethereum authorization messages.
func (p PubKeyHash) HexString() string {
	return hex.EncodeToString(p[:])
}

// IsZero reports whether the hash is all zeroes (no key registered).
func (p PubKeyHash) IsZero() bool {
	return p == PubKeyHash{}
}

func (p PubKeyHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PubKeyHash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePubKeyHash(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Signature is an L2 signature over the canonical encoding of a transaction,
// together with the public key it verifies against. Both are hex encoded
// without a 0x prefix.
type Signature struct {
	PubKey    string `json:"pubKey"`
	Signature string `json:"signature"`
}

// EthSignature type tags
const (
	EthSignatureTypeEthereum = "EthereumSignature"
	EthSignatureTypeEIP1271  = "EIP1271Signature"
)

// EthSignature is an Ethereum-compatible signature over a human-readable
// authorization message.
type EthSignature struct {
	Type      string `json:"type"`
	Signature string `json:"signature"`
}
