package tokencache

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/syncwave/zkwallet-go/pkg/token"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

// Cache persists slow-changing network metadata between wallet sessions:
// the token list and resolved account ids. Everything cached here is
// re-fetchable from the operator; the cache only saves round trips.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// SaveTokens replaces the cached token list.
	SaveTokens(tokens []*token.Token) error

	// LoadTokens returns the cached token list, or nil when nothing has
	// been cached yet. Absence is not an error.
	LoadTokens() ([]*token.Token, error)

	// SaveAccountID records the resolved account id for an address.
	// Account ids are immutable once assigned, so overwrites are
	// idempotent.
	SaveAccountID(address common.Address, id types.AccountID) error

	// LoadAccountID returns the cached account id for an address, or nil
	// when unknown. Absence is not an error.
	LoadAccountID(address common.Address) (*types.AccountID, error)

	// Close cleanly shuts down the cache. Idempotent.
	Close() error

	// HealthCheck verifies the cache is operational.
	HealthCheck() error
}
