package zksigner

import (
	"github.com/syncwave/zkwallet-go/pkg/types"
)

// Signer produces L2 signatures over the canonical encoding of each
// transaction kind. Implementations own the key material; the wallet only
// sees the resulting signature and the derived public-key hash.
type Signer interface {
	// PubKeyHash returns the 20-byte hash of the signer's public key, the
	// identity registered on the rollup by ChangePubKey.
	PubKeyHash() types.PubKeyHash

	SignTransfer(tx *types.Transfer) (*types.Signature, error)
	SignWithdraw(tx *types.Withdraw) (*types.Signature, error)
	SignForcedExit(tx *types.ForcedExit) (*types.Signature, error)
	SignChangePubKey(tx *types.ChangePubKey) (*types.Signature, error)
	SignSwap(tx *types.Swap) (*types.Signature, error)
	SignMintNFT(tx *types.MintNFT) (*types.Signature, error)
	SignWithdrawNFT(tx *types.WithdrawNFT) (*types.Signature, error)

	// SignOrder signs one half of an atomic swap independently of the swap
	// transaction that will eventually reference it.
	SignOrder(order *types.Order) (*types.Signature, error)
}
