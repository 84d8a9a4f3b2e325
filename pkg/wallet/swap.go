package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/syncwave/zkwallet-go/pkg/ethsigner"
	"github.com/syncwave/zkwallet-go/pkg/provider"
	"github.com/syncwave/zkwallet-go/pkg/token"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

// SignOrder signs one half of an atomic swap, fully decoupled from the swap
// transaction that will eventually reference it. Each party signs its own
// order out of band; a submitter then assembles the swap via SignSwap.
func (w *Wallet) SignOrder(ctx context.Context, in *OrderIntent) (*types.Order, error) {
	if w.zkSigner == nil {
		return nil, ErrSignerRequired
	}

	accountID, err := w.AccountID(ctx)
	if err != nil {
		return nil, err
	}
	sellTok, err := w.resolveToken(ctx, in.TokenSell)
	if err != nil {
		return nil, err
	}
	buyTok, err := w.resolveToken(ctx, in.TokenBuy)
	if err != nil {
		return nil, err
	}

	ratio, err := resolveRatio(in, sellTok, buyTok)
	if err != nil {
		return nil, err
	}

	recipient := in.Recipient
	if recipient == (common.Address{}) {
		recipient = w.address
	}

	nonce, err := w.resolveNonce(ctx, in.Nonce)
	if err != nil {
		return nil, err
	}

	order := &types.Order{
		AccountID: accountID,
		Recipient: recipient,
		Nonce:     nonce,
		TokenSell: sellTok.ID,
		TokenBuy:  buyTok.ID,
		Ratio:     ratio,
		Amount:    amountOrZero(in.Amount),
		TimeRange: resolveTimeRange(in.TimeRange),
	}
	sig, err := w.zkSigner.SignOrder(order)
	if err != nil {
		return nil, fmt.Errorf("failed to sign order: %w", err)
	}
	order.Signature = sig

	if w.ethSigner.CanSignMessages() {
		message := ethsigner.OrderMessage(order, formatAmount(sellTok, order.Amount), sellTok.Symbol, buyTok.Symbol)
		ethSig, err := w.ethSigner.SignMessage(ctx, []byte(message))
		if err != nil {
			return nil, err
		}
		order.EthSignature = ethSig
	}
	return order, nil
}

// resolveRatio extracts the two sides of the exchange rate from the intent's
// ratio mapping and scales token-unit ratios into minor units.
func resolveRatio(in *OrderIntent, sellTok, buyTok *token.Token) ([2]*big.Int, error) {
	var ratio [2]*big.Int

	sell, ok := in.Ratio[in.TokenSell]
	if !ok {
		return ratio, fmt.Errorf("%w: %s", ErrRatioMissingToken, in.TokenSell)
	}
	buy, ok := in.Ratio[in.TokenBuy]
	if !ok {
		return ratio, fmt.Errorf("%w: %s", ErrRatioMissingToken, in.TokenBuy)
	}

	switch in.RatioType {
	case types.RatioTypeToken:
		ratio[0] = new(big.Int).Mul(sell, pow10(sellTok.Decimals))
		ratio[1] = new(big.Int).Mul(buy, pow10(buyTok.Decimals))
	default: // RatioTypeWei and the zero value
		ratio[0] = new(big.Int).Set(sell)
		ratio[1] = new(big.Int).Set(buy)
	}
	return ratio, nil
}

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

func (w *Wallet) buildSwap(ctx context.Context, in *SwapIntent, nonce types.Nonce) (*types.Swap, string, error) {
	if in.Orders[0] == nil || in.Orders[1] == nil {
		return nil, "", fmt.Errorf("swap requires two signed orders")
	}

	amounts, err := resolveSwapAmounts(in)
	if err != nil {
		return nil, "", err
	}

	accountID, err := w.AccountID(ctx)
	if err != nil {
		return nil, "", err
	}
	feeTok, err := w.resolveToken(ctx, in.FeeToken)
	if err != nil {
		return nil, "", err
	}
	fee, err := w.resolveFee(ctx, in.Fee, provider.SwapFeeType(), w.address, in.FeeToken)
	if err != nil {
		return nil, "", err
	}

	// The submitter is the wallet's own identity; the two makers are
	// identified inside the embedded orders.
	tx := &types.Swap{
		SubmitterID:      accountID,
		SubmitterAddress: w.address,
		Nonce:            nonce,
		Orders:           in.Orders,
		Amounts:          amounts,
		FeeToken:         feeTok.ID,
		Fee:              fee,
	}
	sig, err := w.zkSigner.SignSwap(tx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign swap: %w", err)
	}
	tx.Signature = sig

	part := ethsigner.SwapMessagePart(formatAmount(feeTok, fee), feeTok.Symbol)
	return tx, part, nil
}

// resolveSwapAmounts uses explicit amounts when supplied, otherwise falls
// back to the amounts embedded in the orders. Two zero-amount limit orders
// without explicit amounts leave the trade undefined.
func resolveSwapAmounts(in *SwapIntent) ([2]*big.Int, error) {
	var amounts [2]*big.Int
	if in.Amounts != nil {
		if len(in.Amounts) != 2 {
			return amounts, fmt.Errorf("swap needs exactly 2 amounts, got %d", len(in.Amounts))
		}
		amounts[0] = amountOrZero(in.Amounts[0])
		amounts[1] = amountOrZero(in.Amounts[1])
		return amounts, nil
	}

	amounts[0] = amountOrZero(in.Orders[0].Amount)
	amounts[1] = amountOrZero(in.Orders[1].Amount)
	if amounts[0].Sign() == 0 && amounts[1].Sign() == 0 {
		return amounts, ErrAmbiguousSwapAmounts
	}
	return amounts, nil
}

// SignSwap builds and dual-signs a Swap referencing two signed orders.
func (w *Wallet) SignSwap(ctx context.Context, in *SwapIntent) (*types.SignedTransaction, error) {
	if w.zkSigner == nil {
		return nil, ErrSignerRequired
	}
	nonce, err := w.resolveNonce(ctx, in.Nonce)
	if err != nil {
		return nil, err
	}
	tx, part, err := w.buildSwap(ctx, in, nonce)
	if err != nil {
		return nil, err
	}
	ethSig, err := w.signTxMessage(ctx, part, nonce)
	if err != nil {
		return nil, err
	}
	return &types.SignedTransaction{Tx: tx, EthereumSignature: ethSig}, nil
}
