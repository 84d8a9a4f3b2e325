package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/syncwave/zkwallet-go/pkg/token"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

// ErrAccountNotFound is returned when the queried account has no presence on
// the rollup yet.
var ErrAccountNotFound = errors.New("account not found on the rollup")

// AccountStateSnapshot is the account state at one commitment level.
type AccountStateSnapshot struct {
	Nonce      types.Nonce      `json:"nonce"`
	PubKeyHash types.PubKeyHash `json:"pubKeyHash"`
}

// AccountInfo is the operator's view of an account. ID is nil until the
// account has been registered by an L1 priority operation.
type AccountInfo struct {
	Address   common.Address       `json:"address"`
	ID        *types.AccountID     `json:"id"`
	Committed AccountStateSnapshot `json:"committed"`
	Verified  AccountStateSnapshot `json:"verified"`
}

// ContractAddress holds the L1 contract addresses of the network.
type ContractAddress struct {
	MainContract common.Address `json:"mainContract"`
	GovContract  common.Address `json:"govContract"`
}

// TxFeeKind names the fee-quote tag for a transaction kind. Withdrawals have
// a fast-processing variant with a distinct quote.
type TxFeeKind string

const (
	FeeKindTransfer        TxFeeKind = "Transfer"
	FeeKindWithdraw        TxFeeKind = "Withdraw"
	FeeKindFastWithdraw    TxFeeKind = "FastWithdraw"
	FeeKindForcedExit      TxFeeKind = "ForcedExit"
	FeeKindSwap            TxFeeKind = "Swap"
	FeeKindMintNFT         TxFeeKind = "MintNFT"
	FeeKindWithdrawNFT     TxFeeKind = "WithdrawNFT"
	FeeKindFastWithdrawNFT TxFeeKind = "FastWithdrawNFT"
	FeeKindChangePubKey    TxFeeKind = "ChangePubKey"
)

// TxFeeType is the wire form of a fee-quote request tag. ChangePubKey quotes
// depend on the authorization mode; every other kind is a bare string.
type TxFeeType struct {
	Kind             TxFeeKind
	ChangePubKeyAuth types.ChangePubKeyAuthType
}

func (f TxFeeType) MarshalJSON() ([]byte, error) {
	if f.Kind == FeeKindChangePubKey {
		return json.Marshal(map[string]interface{}{
			"ChangePubKey": map[string]interface{}{
				"changePubKeyType": f.ChangePubKeyAuth,
			},
		})
	}
	return json.Marshal(string(f.Kind))
}

// TransferFeeType tags a Transfer fee quote.
func TransferFeeType() TxFeeType {
	return TxFeeType{Kind: FeeKindTransfer}
}

// WithdrawFeeType tags a Withdraw fee quote, fast-processing aware.
func WithdrawFeeType(fast bool) TxFeeType {
	if fast {
		return TxFeeType{Kind: FeeKindFastWithdraw}
	}
	return TxFeeType{Kind: FeeKindWithdraw}
}

// ForcedExitFeeType tags a ForcedExit fee quote.
func ForcedExitFeeType() TxFeeType {
	return TxFeeType{Kind: FeeKindForcedExit}
}

// SwapFeeType tags a Swap fee quote.
func SwapFeeType() TxFeeType {
	return TxFeeType{Kind: FeeKindSwap}
}

// MintNFTFeeType tags a MintNFT fee quote.
func MintNFTFeeType() TxFeeType {
	return TxFeeType{Kind: FeeKindMintNFT}
}

// WithdrawNFTFeeType tags a WithdrawNFT fee quote, fast-processing aware.
func WithdrawNFTFeeType(fast bool) TxFeeType {
	if fast {
		return TxFeeType{Kind: FeeKindFastWithdrawNFT}
	}
	return TxFeeType{Kind: FeeKindWithdrawNFT}
}

// ChangePubKeyFeeType tags a ChangePubKey fee quote for one auth mode.
func ChangePubKeyFeeType(auth types.ChangePubKeyAuthType) TxFeeType {
	return TxFeeType{Kind: FeeKindChangePubKey, ChangePubKeyAuth: auth}
}

// Fee is the operator's fee quote. TotalFee is what a transaction must carry.
type Fee struct {
	GasFee   *big.Int `json:"gasFee"`
	ZkpFee   *big.Int `json:"zkpFee"`
	TotalFee *big.Int `json:"totalFee"`
}

func (f *Fee) UnmarshalJSON(data []byte) error {
	var raw struct {
		GasFee   json.Number `json:"gasFee"`
		ZkpFee   json.Number `json:"zkpFee"`
		TotalFee json.Number `json:"totalFee"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parse := func(n json.Number) (*big.Int, error) {
		if n == "" {
			return big.NewInt(0), nil
		}
		v, ok := new(big.Int).SetString(n.String(), 10)
		if !ok {
			return nil, fmt.Errorf("invalid fee value %q", n.String())
		}
		return v, nil
	}
	var err error
	if f.GasFee, err = parse(raw.GasFee); err != nil {
		return err
	}
	if f.ZkpFee, err = parse(raw.ZkpFee); err != nil {
		return err
	}
	if f.TotalFee, err = parse(raw.TotalFee); err != nil {
		return err
	}
	return nil
}

// Provider is the boundary to the rollup operator: nonce and account-id
// source, fee quoting, token metadata and submission gateway. Everything the
// wallet needs from the network goes through this interface.
type Provider interface {
	// AccountInfo returns the operator's view of an account. Fails with
	// ErrAccountNotFound for accounts with no rollup presence.
	AccountInfo(ctx context.Context, address common.Address) (*AccountInfo, error)

	// Tokens returns the network token list.
	Tokens(ctx context.Context) ([]*token.Token, error)

	// TransactionFee quotes the default total fee for one transaction.
	TransactionFee(ctx context.Context, feeType TxFeeType, address common.Address, tok token.Like) (*Fee, error)

	// TransactionsBatchFee quotes one total fee covering a whole batch.
	TransactionsBatchFee(ctx context.Context, feeTypes []TxFeeType, addresses []common.Address, tok token.Like) (*big.Int, error)

	// SubmitTx submits one signed transaction and returns its tracking hash.
	SubmitTx(ctx context.Context, tx types.Tx, ethSignature *types.EthSignature) (common.Hash, error)

	// SubmitTxsBatch submits an atomically-authorized batch.
	SubmitTxsBatch(ctx context.Context, txs []*types.SignedTransaction, ethSignatures []*types.EthSignature) ([]common.Hash, error)

	// ContractAddress returns the network's L1 contract addresses.
	ContractAddress(ctx context.Context) (*ContractAddress, error)
}
