package wallet

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/syncwave/zkwallet-go/pkg/ethsigner"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

// BatchEntry is one member of a batch. Exactly one field must be set.
// PreSignedChangePubKey reuses an already-built ChangePubKey payload
// verbatim; its message part is still rendered for the batch signature.
type BatchEntry struct {
	Transfer     *TransferIntent
	Withdraw     *WithdrawIntent
	ForcedExit   *ForcedExitIntent
	ChangePubKey *ChangePubKeyIntent
	MintNFT      *MintNFTIntent
	WithdrawNFT  *WithdrawNFTIntent
	Swap         *SwapIntent

	PreSignedChangePubKey *types.ChangePubKey
}

func (e *BatchEntry) kindCount() int {
	count := 0
	for _, set := range []bool{
		e.Transfer != nil, e.Withdraw != nil, e.ForcedExit != nil,
		e.ChangePubKey != nil, e.MintNFT != nil, e.WithdrawNFT != nil,
		e.Swap != nil, e.PreSignedChangePubKey != nil,
	} {
		if set {
			count++
		}
	}
	return count
}

// SignedBatch is an ordered transaction run under one aggregate Ethereum
// signature. The signature authorizes the members as a set with this exact
// nonce run; the batch must not be reordered or edited after signing.
type SignedBatch struct {
	Transactions      []*types.SignedTransaction
	EthereumSignature *types.EthSignature

	// Message is the exact text the aggregate signature covers.
	Message string
}

// SignBatch builds and signs a batch. The starting nonce is resolved once
// (caller-supplied or fetched); members are assigned nonces
// batchNonce, batchNonce+1, ... in input order with no network round trip
// in between. A failure while building any member aborts the whole batch
// before the aggregate signature is requested.
func (w *Wallet) SignBatch(ctx context.Context, entries []BatchEntry, startingNonce *types.Nonce) (*SignedBatch, error) {
	if w.zkSigner == nil {
		return nil, ErrSignerRequired
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("batch cannot be empty")
	}
	for i := range entries {
		if n := entries[i].kindCount(); n != 1 {
			return nil, fmt.Errorf("batch entry %d must set exactly one transaction kind, got %d", i, n)
		}
	}

	batchNonce, err := w.resolveNonce(ctx, startingNonce)
	if err != nil {
		return nil, err
	}

	txs := make([]*types.SignedTransaction, 0, len(entries))
	parts := make([]string, 0, len(entries))

	for i := range entries {
		nonce := batchNonce + types.Nonce(i)
		tx, part, err := w.buildBatchMember(ctx, &entries[i], nonce)
		if err != nil {
			return nil, fmt.Errorf("failed to build batch member %d: %w", i, err)
		}
		txs = append(txs, tx)
		parts = append(parts, part)
	}

	batch := &SignedBatch{
		Transactions: txs,
		Message:      ethsigner.BatchMessage(parts, batchNonce),
	}
	if w.ethSigner.CanSignMessages() {
		sig, err := w.ethSigner.SignMessage(ctx, []byte(batch.Message))
		if err != nil {
			return nil, err
		}
		batch.EthereumSignature = sig
	}

	w.logger.Sugar().Debugw("batch signed",
		"members", len(txs), "startingNonce", batchNonce)
	return batch, nil
}

func (w *Wallet) buildBatchMember(ctx context.Context, e *BatchEntry, nonce types.Nonce) (*types.SignedTransaction, string, error) {
	switch {
	case e.Transfer != nil:
		tx, part, err := w.buildTransfer(ctx, e.Transfer, nonce)
		if err != nil {
			return nil, "", err
		}
		return &types.SignedTransaction{Tx: tx}, part, nil

	case e.Withdraw != nil:
		tx, part, err := w.buildWithdraw(ctx, e.Withdraw, nonce)
		if err != nil {
			return nil, "", err
		}
		return &types.SignedTransaction{Tx: tx}, part, nil

	case e.ForcedExit != nil:
		tx, part, err := w.buildForcedExit(ctx, e.ForcedExit, nonce)
		if err != nil {
			return nil, "", err
		}
		return &types.SignedTransaction{Tx: tx}, part, nil

	case e.MintNFT != nil:
		tx, part, err := w.buildMintNFT(ctx, e.MintNFT, nonce)
		if err != nil {
			return nil, "", err
		}
		return &types.SignedTransaction{Tx: tx}, part, nil

	case e.WithdrawNFT != nil:
		tx, part, err := w.buildWithdrawNFT(ctx, e.WithdrawNFT, nonce)
		if err != nil {
			return nil, "", err
		}
		return &types.SignedTransaction{Tx: tx}, part, nil

	case e.Swap != nil:
		tx, part, err := w.buildSwap(ctx, e.Swap, nonce)
		if err != nil {
			return nil, "", err
		}
		return &types.SignedTransaction{Tx: tx}, part, nil

	case e.ChangePubKey != nil:
		in := *e.ChangePubKey
		in.Nonce = &nonce
		signed, err := w.SignChangePubKey(ctx, &in)
		if err != nil {
			return nil, "", err
		}
		part, err := w.changePubKeyMessagePart(ctx, signed.Tx.(*types.ChangePubKey))
		if err != nil {
			return nil, "", err
		}
		return signed, part, nil

	case e.PreSignedChangePubKey != nil:
		tx := e.PreSignedChangePubKey
		// The payload is reused verbatim, so its nonce must already sit at
		// the slot this batch assigns it.
		if tx.Nonce != nonce {
			return nil, "", fmt.Errorf("pre-signed ChangePubKey carries nonce %d, batch slot requires %d", tx.Nonce, nonce)
		}
		if err := w.guardPubKeyHash(ctx, tx.NewPkHash); err != nil {
			return nil, "", err
		}
		part, err := w.changePubKeyMessagePart(ctx, tx)
		if err != nil {
			return nil, "", err
		}
		return &types.SignedTransaction{Tx: tx}, part, nil
	}
	return nil, "", fmt.Errorf("empty batch entry")
}

// SubmitBatch submits a signed batch with its aggregate signature.
func (w *Wallet) SubmitBatch(ctx context.Context, batch *SignedBatch) ([]common.Hash, error) {
	if batch == nil || len(batch.Transactions) == 0 {
		return nil, fmt.Errorf("cannot submit empty batch")
	}
	var ethSignatures []*types.EthSignature
	if batch.EthereumSignature != nil {
		ethSignatures = []*types.EthSignature{batch.EthereumSignature}
	}
	hashes, err := w.provider.SubmitTxsBatch(ctx, batch.Transactions, ethSignatures)
	if err != nil {
		return nil, err
	}
	w.logger.Sugar().Infow("batch submitted", "members", len(batch.Transactions))
	return hashes, nil
}
