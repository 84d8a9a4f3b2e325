package token

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/syncwave/zkwallet-go/pkg/types"
)

// Token is the metadata for one fungible token supported by the rollup.
type Token struct {
	ID       types.TokenID  `json:"id"`
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
	IsNFT    bool           `json:"is_nft,omitempty"`
}

// NFT is the metadata for a minted NFT. NFTs are indivisible; amounts are
// always 1 and never formatted.
type NFT struct {
	ID          types.TokenID   `json:"id"`
	ContentHash common.Hash     `json:"contentHash"`
	CreatorID   types.AccountID `json:"creatorId"`
	Symbol      string          `json:"symbol"`
}

// Like identifies a token by id, L1 address or symbol; the accepted forms
// mirror how users name tokens on the command line and in configs.
type Like string

var numericRe = regexp.MustCompile(`^\d+$`)

// asID returns the numeric id when the Like is a bare number.
func (l Like) asID() (types.TokenID, bool) {
	if !numericRe.MatchString(string(l)) {
		return 0, false
	}
	id, err := strconv.ParseUint(string(l), 10, 32)
	if err != nil {
		return 0, false
	}
	return types.TokenID(id), true
}

// asAddress returns the L1 address when the Like is a 0x-prefixed address.
func (l Like) asAddress() (common.Address, bool) {
	s := string(l)
	if len(s) != 42 || !strings.HasPrefix(s, "0x") || !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}

// Format renders an amount in minor units as a decimal string in token units.
// Whole amounts keep a single trailing zero ("1.0"), matching what the
// network reconstructs when verifying authorization messages.
func (t *Token) Format(amount *big.Int) string {
	d := decimal.NewFromBigInt(amount, -int32(t.Decimals))
	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Parse converts a decimal string in token units into minor units. Fails on
// amounts with more fractional digits than the token supports.
func (t *Token) Parse(humanAmount string) (*big.Int, error) {
	d, err := decimal.NewFromString(humanAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", humanAmount, err)
	}
	scaled := d.Shift(int32(t.Decimals))
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("amount %q has more than %d decimal places for token %s", humanAmount, t.Decimals, t.Symbol)
	}
	if scaled.IsNegative() {
		return nil, fmt.Errorf("amount %q is negative", humanAmount)
	}
	return scaled.BigInt(), nil
}

// Set is the resolved token list of one network, indexed for lookup by id,
// address and symbol.
type Set struct {
	bySymbol  map[string]*Token
	byID      map[types.TokenID]*Token
	byAddress map[common.Address]*Token
}

// NewSet builds the lookup indexes from a token list.
func NewSet(tokens []*Token) *Set {
	s := &Set{
		bySymbol:  make(map[string]*Token, len(tokens)),
		byID:      make(map[types.TokenID]*Token, len(tokens)),
		byAddress: make(map[common.Address]*Token, len(tokens)),
	}
	for _, t := range tokens {
		s.bySymbol[t.Symbol] = t
		s.byID[t.ID] = t
		s.byAddress[t.Address] = t
	}
	return s
}

// Tokens returns the token list in unspecified order.
func (s *Set) Tokens() []*Token {
	out := make([]*Token, 0, len(s.byID))
	for _, t := range s.byID {
		out = append(out, t)
	}
	return out
}

// Resolve maps a token identifier to its metadata. Numeric strings resolve by
// id, 0x-prefixed addresses by L1 address, everything else by symbol.
func (s *Set) Resolve(l Like) (*Token, error) {
	if id, ok := l.asID(); ok {
		if t, found := s.byID[id]; found {
			return t, nil
		}
		return nil, fmt.Errorf("no token with id %d", id)
	}
	if addr, ok := l.asAddress(); ok {
		if t, found := s.byAddress[addr]; found {
			return t, nil
		}
		return nil, fmt.Errorf("no token with address %s", addr.Hex())
	}
	if t, found := s.bySymbol[string(l)]; found {
		return t, nil
	}
	return nil, fmt.Errorf("no token with symbol %q", string(l))
}

// ByID looks a token up by canonical id.
func (s *Set) ByID(id types.TokenID) (*Token, error) {
	t, found := s.byID[id]
	if !found {
		return nil, fmt.Errorf("no token with id %d", id)
	}
	return t, nil
}
