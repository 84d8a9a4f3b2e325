package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/syncwave/zkwallet-go/pkg/ethsigner"
	"github.com/syncwave/zkwallet-go/pkg/provider"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

// The per-kind builders assemble the canonical payload for one nonce, attach
// the L2 signature, and render the message part that must appear in the
// Ethereum authorization text. The public Sign* methods resolve the nonce,
// run the builder, and sign the single-transaction message; the batch builder
// reuses the same builders with locally sequenced nonces.

func amountOrZero(a *big.Int) *big.Int {
	if a == nil {
		return big.NewInt(0)
	}
	return a
}

func (w *Wallet) buildTransfer(ctx context.Context, in *TransferIntent, nonce types.Nonce) (*types.Transfer, string, error) {
	accountID, err := w.AccountID(ctx)
	if err != nil {
		return nil, "", err
	}
	tok, err := w.resolveToken(ctx, in.Token)
	if err != nil {
		return nil, "", err
	}
	fee, err := w.resolveFee(ctx, in.Fee, provider.TransferFeeType(), in.To, in.Token)
	if err != nil {
		return nil, "", err
	}

	tx := &types.Transfer{
		AccountID: accountID,
		From:      w.address,
		To:        in.To,
		Token:     tok.ID,
		Amount:    amountOrZero(in.Amount),
		Fee:       fee,
		Nonce:     nonce,
		TimeRange: resolveTimeRange(in.TimeRange),
	}
	sig, err := w.zkSigner.SignTransfer(tx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign transfer: %w", err)
	}
	tx.Signature = sig

	part := ethsigner.TransferMessagePart(in.To, formatAmount(tok, tx.Amount), formatAmount(tok, fee), tok.Symbol)
	return tx, part, nil
}

// SignTransfer builds and dual-signs a Transfer.
func (w *Wallet) SignTransfer(ctx context.Context, in *TransferIntent) (*types.SignedTransaction, error) {
	if w.zkSigner == nil {
		return nil, ErrSignerRequired
	}
	nonce, err := w.resolveNonce(ctx, in.Nonce)
	if err != nil {
		return nil, err
	}
	tx, part, err := w.buildTransfer(ctx, in, nonce)
	if err != nil {
		return nil, err
	}
	ethSig, err := w.signTxMessage(ctx, part, nonce)
	if err != nil {
		return nil, err
	}
	return &types.SignedTransaction{Tx: tx, EthereumSignature: ethSig}, nil
}

func (w *Wallet) buildWithdraw(ctx context.Context, in *WithdrawIntent, nonce types.Nonce) (*types.Withdraw, string, error) {
	accountID, err := w.AccountID(ctx)
	if err != nil {
		return nil, "", err
	}
	tok, err := w.resolveToken(ctx, in.Token)
	if err != nil {
		return nil, "", err
	}
	fee, err := w.resolveFee(ctx, in.Fee, provider.WithdrawFeeType(in.FastProcessing), in.To, in.Token)
	if err != nil {
		return nil, "", err
	}

	tx := &types.Withdraw{
		AccountID: accountID,
		From:      w.address,
		To:        in.To,
		Token:     tok.ID,
		Amount:    amountOrZero(in.Amount),
		Fee:       fee,
		Nonce:     nonce,
		TimeRange: resolveTimeRange(in.TimeRange),
	}
	sig, err := w.zkSigner.SignWithdraw(tx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign withdraw: %w", err)
	}
	tx.Signature = sig

	part := ethsigner.WithdrawMessagePart(in.To, formatAmount(tok, tx.Amount), formatAmount(tok, fee), tok.Symbol)
	return tx, part, nil
}

// SignWithdraw builds and dual-signs a Withdraw.
func (w *Wallet) SignWithdraw(ctx context.Context, in *WithdrawIntent) (*types.SignedTransaction, error) {
	if w.zkSigner == nil {
		return nil, ErrSignerRequired
	}
	nonce, err := w.resolveNonce(ctx, in.Nonce)
	if err != nil {
		return nil, err
	}
	tx, part, err := w.buildWithdraw(ctx, in, nonce)
	if err != nil {
		return nil, err
	}
	ethSig, err := w.signTxMessage(ctx, part, nonce)
	if err != nil {
		return nil, err
	}
	return &types.SignedTransaction{Tx: tx, EthereumSignature: ethSig}, nil
}

func (w *Wallet) buildForcedExit(ctx context.Context, in *ForcedExitIntent, nonce types.Nonce) (*types.ForcedExit, string, error) {
	accountID, err := w.AccountID(ctx)
	if err != nil {
		return nil, "", err
	}
	tok, err := w.resolveToken(ctx, in.Token)
	if err != nil {
		return nil, "", err
	}
	fee, err := w.resolveFee(ctx, in.Fee, provider.ForcedExitFeeType(), in.Target, in.Token)
	if err != nil {
		return nil, "", err
	}

	tx := &types.ForcedExit{
		InitiatorAccountID: accountID,
		Target:             in.Target,
		Token:              tok.ID,
		Fee:                fee,
		Nonce:              nonce,
		TimeRange:          resolveTimeRange(in.TimeRange),
	}
	sig, err := w.zkSigner.SignForcedExit(tx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign forced exit: %w", err)
	}
	tx.Signature = sig

	part := ethsigner.ForcedExitMessagePart(in.Target, formatAmount(tok, fee), tok.Symbol)
	return tx, part, nil
}

// SignForcedExit builds and dual-signs a ForcedExit.
func (w *Wallet) SignForcedExit(ctx context.Context, in *ForcedExitIntent) (*types.SignedTransaction, error) {
	if w.zkSigner == nil {
		return nil, ErrSignerRequired
	}
	nonce, err := w.resolveNonce(ctx, in.Nonce)
	if err != nil {
		return nil, err
	}
	tx, part, err := w.buildForcedExit(ctx, in, nonce)
	if err != nil {
		return nil, err
	}
	ethSig, err := w.signTxMessage(ctx, part, nonce)
	if err != nil {
		return nil, err
	}
	return &types.SignedTransaction{Tx: tx, EthereumSignature: ethSig}, nil
}

func (w *Wallet) buildMintNFT(ctx context.Context, in *MintNFTIntent, nonce types.Nonce) (*types.MintNFT, string, error) {
	accountID, err := w.AccountID(ctx)
	if err != nil {
		return nil, "", err
	}
	feeTok, err := w.resolveToken(ctx, in.FeeToken)
	if err != nil {
		return nil, "", err
	}
	fee, err := w.resolveFee(ctx, in.Fee, provider.MintNFTFeeType(), in.Recipient, in.FeeToken)
	if err != nil {
		return nil, "", err
	}

	tx := &types.MintNFT{
		CreatorID:      accountID,
		CreatorAddress: w.address,
		ContentHash:    in.ContentHash,
		Recipient:      in.Recipient,
		FeeToken:       feeTok.ID,
		Fee:            fee,
		Nonce:          nonce,
	}
	sig, err := w.zkSigner.SignMintNFT(tx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign nft mint: %w", err)
	}
	tx.Signature = sig

	part := ethsigner.MintNFTMessagePart(in.ContentHash, in.Recipient, formatAmount(feeTok, fee), feeTok.Symbol)
	return tx, part, nil
}

// SignMintNFT builds and dual-signs a MintNFT.
func (w *Wallet) SignMintNFT(ctx context.Context, in *MintNFTIntent) (*types.SignedTransaction, error) {
	if w.zkSigner == nil {
		return nil, ErrSignerRequired
	}
	nonce, err := w.resolveNonce(ctx, in.Nonce)
	if err != nil {
		return nil, err
	}
	tx, part, err := w.buildMintNFT(ctx, in, nonce)
	if err != nil {
		return nil, err
	}
	ethSig, err := w.signTxMessage(ctx, part, nonce)
	if err != nil {
		return nil, err
	}
	return &types.SignedTransaction{Tx: tx, EthereumSignature: ethSig}, nil
}

func (w *Wallet) buildWithdrawNFT(ctx context.Context, in *WithdrawNFTIntent, nonce types.Nonce) (*types.WithdrawNFT, string, error) {
	accountID, err := w.AccountID(ctx)
	if err != nil {
		return nil, "", err
	}
	feeTok, err := w.resolveToken(ctx, in.FeeToken)
	if err != nil {
		return nil, "", err
	}
	fee, err := w.resolveFee(ctx, in.Fee, provider.WithdrawNFTFeeType(in.FastProcessing), in.To, in.FeeToken)
	if err != nil {
		return nil, "", err
	}

	tx := &types.WithdrawNFT{
		AccountID: accountID,
		From:      w.address,
		To:        in.To,
		Token:     in.Token,
		FeeToken:  feeTok.ID,
		Fee:       fee,
		Nonce:     nonce,
		TimeRange: resolveTimeRange(in.TimeRange),
	}
	sig, err := w.zkSigner.SignWithdrawNFT(tx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign nft withdrawal: %w", err)
	}
	tx.Signature = sig

	part := ethsigner.WithdrawNFTMessagePart(in.Token, in.To, formatAmount(feeTok, fee), feeTok.Symbol)
	return tx, part, nil
}

// SignWithdrawNFT builds and dual-signs a WithdrawNFT.
func (w *Wallet) SignWithdrawNFT(ctx context.Context, in *WithdrawNFTIntent) (*types.SignedTransaction, error) {
	if w.zkSigner == nil {
		return nil, ErrSignerRequired
	}
	nonce, err := w.resolveNonce(ctx, in.Nonce)
	if err != nil {
		return nil, err
	}
	tx, part, err := w.buildWithdrawNFT(ctx, in, nonce)
	if err != nil {
		return nil, err
	}
	ethSig, err := w.signTxMessage(ctx, part, nonce)
	if err != nil {
		return nil, err
	}
	return &types.SignedTransaction{Tx: tx, EthereumSignature: ethSig}, nil
}
