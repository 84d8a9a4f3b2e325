package wallet

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/syncwave/zkwallet-go/pkg/ethsigner"
	"github.com/syncwave/zkwallet-go/pkg/provider"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

// SignChangePubKey registers the attached L2 signer's key for the account,
// authorized by one of four mutually exclusive modes:
//
//   - Onchain: no off-chain signature; authorization happens via a separate
//     on-chain call.
//   - ECDSA: personal-message signature over the canonical auth payload
//     (newPkHash ++ nonce ++ accountId ++ batchHash).
//   - CREATE2: the wallet address itself commits to the key; the deployment
//     data is revealed verbatim with no signature.
//   - ECDSALegacyMessage: legacy-format text message; the signature lives at
//     the transaction level instead of inside the auth data.
//
// A rotation to the already-registered hash is rejected in every mode.
func (w *Wallet) SignChangePubKey(ctx context.Context, in *ChangePubKeyIntent) (*types.SignedTransaction, error) {
	if w.zkSigner == nil {
		return nil, ErrSignerRequired
	}
	newPkHash := w.zkSigner.PubKeyHash()

	// The CREATE2 capability check precedes any network round trip.
	var create2 *ethsigner.Create2Signer
	switch in.AuthType {
	case types.ChangePubKeyAuthTypeOnchain, types.ChangePubKeyAuthTypeECDSA, types.ChangePubKeyAuthTypeECDSALegacy:
	case types.ChangePubKeyAuthTypeCREATE2:
		var ok bool
		if create2, ok = w.ethSigner.(*ethsigner.Create2Signer); !ok {
			return nil, ErrCreate2Unavailable
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAuthType, in.AuthType)
	}

	// One account snapshot serves the idempotence guard, the account id and
	// the default nonce.
	info, err := w.accountState(ctx)
	if err != nil {
		return nil, err
	}
	if info.Committed.PubKeyHash == newPkHash {
		return nil, ErrPubKeyHashUnchanged
	}
	if info.ID == nil {
		return nil, ErrAccountIDUnassigned
	}
	accountID := *info.ID

	nonce := info.Committed.Nonce
	if in.Nonce != nil {
		nonce = *in.Nonce
	}

	feeTok, err := w.resolveToken(ctx, in.FeeToken)
	if err != nil {
		return nil, err
	}
	fee, err := w.resolveFee(ctx, in.Fee, provider.ChangePubKeyFeeType(in.AuthType), w.address, in.FeeToken)
	if err != nil {
		return nil, err
	}

	tx := &types.ChangePubKey{
		AccountID: accountID,
		Account:   w.address,
		NewPkHash: newPkHash,
		FeeToken:  feeTok.ID,
		Fee:       fee,
		Nonce:     nonce,
		TimeRange: resolveTimeRange(in.TimeRange),
	}

	switch in.AuthType {
	case types.ChangePubKeyAuthTypeOnchain:
		tx.EthAuthData = &types.ChangePubKeyOnchainAuth{}

	case types.ChangePubKeyAuthTypeECDSA:
		// Standalone rotations sign over a zero batch hash.
		payload := ethsigner.ChangePubKeyAuthPayload(newPkHash, nonce, accountID, common.Hash{})
		ethSig, err := w.ethSigner.SignMessage(ctx, payload)
		if err != nil {
			return nil, err
		}
		tx.EthAuthData = &types.ChangePubKeyECDSAAuth{
			EthSignature: ethSig.Signature,
			BatchHash:    common.Hash{},
		}

	case types.ChangePubKeyAuthTypeCREATE2:
		data := create2.Create2Data()
		tx.EthAuthData = &types.ChangePubKeyCREATE2Auth{
			CreatorAddress: data.CreatorAddress,
			SaltArg:        data.SaltArg,
			CodeHash:       data.CodeHash,
		}

	case types.ChangePubKeyAuthTypeECDSALegacy:
		message := ethsigner.ChangePubKeyLegacyMessage(newPkHash, nonce, accountID)
		ethSig, err := w.ethSigner.SignMessage(ctx, []byte(message))
		if err != nil {
			return nil, err
		}
		tx.EthSignature = &ethSig.Signature
	}

	sig, err := w.zkSigner.SignChangePubKey(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to sign key rotation: %w", err)
	}
	tx.Signature = sig

	w.logger.Sugar().Debugw("change pubkey prepared",
		"authType", in.AuthType, "newPkHash", newPkHash.String(), "nonce", nonce)

	// Authorization travels inside the transaction, so no transaction-level
	// Ethereum signature accompanies a ChangePubKey.
	return &types.SignedTransaction{Tx: tx}, nil
}

// changePubKeyMessagePart renders the batch message lines of a ChangePubKey,
// whether freshly built or supplied pre-signed.
func (w *Wallet) changePubKeyMessagePart(ctx context.Context, tx *types.ChangePubKey) (string, error) {
	set, err := w.Tokens(ctx)
	if err != nil {
		return "", err
	}
	feeTok, err := set.ByID(tx.FeeToken)
	if err != nil {
		return "", err
	}
	return ethsigner.ChangePubKeyMessagePart(tx.NewPkHash, formatAmount(feeTok, tx.Fee), feeTok.Symbol), nil
}

// guardPubKeyHash rejects a key rotation whose target hash is already the
// registered one. Used for pre-signed batch members, which skip the builder.
func (w *Wallet) guardPubKeyHash(ctx context.Context, newPkHash types.PubKeyHash) error {
	info, err := w.accountState(ctx)
	if err != nil {
		return err
	}
	if info.Committed.PubKeyHash == newPkHash {
		return ErrPubKeyHashUnchanged
	}
	return nil
}

// IsSigningKeySet reports whether the account's registered key already
// matches the attached L2 signer.
func (w *Wallet) IsSigningKeySet(ctx context.Context) (bool, error) {
	if w.zkSigner == nil {
		return false, ErrSignerRequired
	}
	info, err := w.accountState(ctx)
	if err != nil {
		return false, err
	}
	return info.Committed.PubKeyHash == w.zkSigner.PubKeyHash(), nil
}
