package wallet

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/syncwave/zkwallet-go/pkg/token"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

// Intents are the caller-facing inputs of the transaction builders. Optional
// fields share one convention: a nil Fee asks the operator for a default
// quote (an explicit zero is used verbatim), a nil Nonce fetches the next
// committed nonce, and a nil TimeRange defaults to the widest window.

// TransferIntent moves a fungible token to another L2 account.
type TransferIntent struct {
	To        common.Address
	Token     token.Like
	Amount    *big.Int
	Fee       *big.Int
	Nonce     *types.Nonce
	TimeRange *types.TimeRange
}

// WithdrawIntent moves a fungible token back to an L1 address.
type WithdrawIntent struct {
	To             common.Address
	Token          token.Like
	Amount         *big.Int
	Fee            *big.Int
	Nonce          *types.Nonce
	TimeRange      *types.TimeRange
	FastProcessing bool
}

// ForcedExitIntent withdraws the full balance of a keyless target account.
type ForcedExitIntent struct {
	Target    common.Address
	Token     token.Like
	Fee       *big.Int
	Nonce     *types.Nonce
	TimeRange *types.TimeRange
}

// ChangePubKeyIntent registers the attached L2 signer's key for the account.
type ChangePubKeyIntent struct {
	FeeToken  token.Like
	Fee       *big.Int
	Nonce     *types.Nonce
	TimeRange *types.TimeRange
	AuthType  types.ChangePubKeyAuthType
}

// MintNFTIntent mints an NFT with the given content hash to a recipient.
type MintNFTIntent struct {
	ContentHash common.Hash
	Recipient   common.Address
	FeeToken    token.Like
	Fee         *big.Int
	Nonce       *types.Nonce
}

// WithdrawNFTIntent withdraws an NFT to an L1 address.
type WithdrawNFTIntent struct {
	Token          types.TokenID
	To             common.Address
	FeeToken       token.Like
	Fee            *big.Int
	Nonce          *types.Nonce
	TimeRange      *types.TimeRange
	FastProcessing bool
}

// OrderIntent is one independently-signable half of an atomic swap. Ratio
// maps each traded token to its side of the exchange rate; both traded
// tokens must be present. With RatioTypeToken the values are scaled by the
// token decimals before signing.
type OrderIntent struct {
	TokenSell token.Like
	TokenBuy  token.Like
	Ratio     map[token.Like]*big.Int
	RatioType types.RatioType
	// Amount of TokenSell to trade; nil or zero makes a limit order.
	Amount *big.Int
	// Recipient defaults to the wallet's own address when zero.
	Recipient common.Address
	Nonce     *types.Nonce
	TimeRange *types.TimeRange
}

// SwapIntent atomically executes two matched, already-signed orders. The
// wallet is the submitter and pays the fee. Nil Amounts fall back to the
// amounts embedded in the orders.
type SwapIntent struct {
	Orders   [2]*types.Order
	Amounts  []*big.Int
	FeeToken token.Like
	Fee      *big.Int
	Nonce    *types.Nonce
}

func resolveTimeRange(tr *types.TimeRange) types.TimeRange {
	if tr != nil {
		return *tr
	}
	return types.DefaultTimeRange()
}
