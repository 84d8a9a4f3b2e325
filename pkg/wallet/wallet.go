package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/syncwave/zkwallet-go/pkg/ethsigner"
	"github.com/syncwave/zkwallet-go/pkg/provider"
	"github.com/syncwave/zkwallet-go/pkg/token"
	"github.com/syncwave/zkwallet-go/pkg/tokencache"
	"github.com/syncwave/zkwallet-go/pkg/types"
	"github.com/syncwave/zkwallet-go/pkg/zksigner"
)

// Precondition and idempotence-guard errors. These are fatal to the calling
// operation and never retried; collaborator errors from the provider are
// propagated unchanged instead.
var (
	// ErrSignerRequired fails operations that need an L2 signature when the
	// wallet was built without one.
	ErrSignerRequired = errors.New("signer required for sending transactions")

	// ErrUnsupportedAuthType fails ChangePubKey requests with an auth mode
	// outside the closed Onchain/ECDSA/CREATE2/ECDSALegacyMessage set.
	ErrUnsupportedAuthType = errors.New("unsupported ChangePubKey authorization type")

	// ErrCreate2Unavailable fails CREATE2 authorization on wallets whose
	// Ethereum identity does not carry CREATE2 deployment data.
	ErrCreate2Unavailable = errors.New("CREATE2 authentication only available for CREATE2 wallets")

	// ErrPubKeyHashUnchanged rejects a key rotation to the hash that is
	// already registered. A no-op rotation is a caller error.
	ErrPubKeyHashUnchanged = errors.New("the new public key hash is already registered for the account")

	// ErrRatioMissingToken fails order signing when the ratio mapping does
	// not mention one of the traded tokens.
	ErrRatioMissingToken = errors.New("swap ratio does not mention the traded token")

	// ErrAmbiguousSwapAmounts fails swap building when neither the caller
	// nor the orders pin down the traded amounts.
	ErrAmbiguousSwapAmounts = errors.New("swap amounts cannot be derived from two zero-amount orders")

	// ErrAccountIDUnassigned is returned when the rollup knows the address
	// but has not assigned it an account id yet.
	ErrAccountIDUnassigned = errors.New("account id is not assigned to the account yet")
)

// Wallet converts user intents into signed rollup transactions and batches.
//
// A wallet instance is a single logical thread of control: the cached account
// id is written at most once and callers must serialize their own calls
// against one account. Nonce safety inside a batch comes from computing all
// nonces from one fetched starting value, never from re-querying mid-batch.
type Wallet struct {
	provider  provider.Provider
	zkSigner  zksigner.Signer
	ethSigner ethsigner.Signer
	cache     tokencache.Cache
	logger    *zap.Logger

	address common.Address

	// accountID and tokens are resolved lazily, written once.
	mu        sync.Mutex
	accountID *types.AccountID
	tokens    *token.Set
}

// Options carries the optional collaborators of a wallet.
type Options struct {
	// ZkSigner may be nil for a read-only wallet; every signing operation
	// then fails with ErrSignerRequired.
	ZkSigner zksigner.Signer

	// Cache persists the token list and resolved account ids between
	// sessions. Nil disables caching.
	Cache tokencache.Cache

	// Logger defaults to a no-op logger when nil.
	Logger *zap.Logger
}

// NewWallet creates a wallet bound to one Ethereum identity and one operator.
func NewWallet(p provider.Provider, ethSigner ethsigner.Signer, opts Options) (*Wallet, error) {
	if p == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	if ethSigner == nil {
		return nil, fmt.Errorf("ethereum signer cannot be nil")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Wallet{
		provider:  p,
		zkSigner:  opts.ZkSigner,
		ethSigner: ethSigner,
		cache:     opts.Cache,
		logger:    log,
		address:   ethSigner.Address(),
	}, nil
}

// Address returns the wallet's L1 address.
func (w *Wallet) Address() common.Address {
	return w.address
}

// Provider exposes the operator boundary for read-only queries.
func (w *Wallet) Provider() provider.Provider {
	return w.provider
}

// PubKeyHash returns the L2 public-key hash of the attached signer.
func (w *Wallet) PubKeyHash() (types.PubKeyHash, error) {
	if w.zkSigner == nil {
		return types.PubKeyHash{}, ErrSignerRequired
	}
	return w.zkSigner.PubKeyHash(), nil
}

// AccountID resolves the wallet's numeric account id, at most once per
// lifetime. Later calls return the cached value without a network round trip.
func (w *Wallet) AccountID(ctx context.Context) (types.AccountID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.accountIDLocked(ctx)
}

func (w *Wallet) accountIDLocked(ctx context.Context) (types.AccountID, error) {
	if w.accountID != nil {
		return *w.accountID, nil
	}

	if w.cache != nil {
		cached, err := w.cache.LoadAccountID(w.address)
		if err != nil {
			w.logger.Sugar().Warnw("account id cache read failed", "error", err)
		} else if cached != nil {
			w.accountID = cached
			return *cached, nil
		}
	}

	info, err := w.provider.AccountInfo(ctx, w.address)
	if err != nil {
		return 0, err
	}
	if info.ID == nil {
		return 0, ErrAccountIDUnassigned
	}

	w.storeAccountIDLocked(*info.ID)
	return *info.ID, nil
}

func (w *Wallet) storeAccountIDLocked(id types.AccountID) {
	if w.accountID != nil {
		return
	}
	w.accountID = &id
	if w.cache != nil {
		if err := w.cache.SaveAccountID(w.address, id); err != nil {
			w.logger.Sugar().Warnw("account id cache write failed", "error", err)
		}
	}
	w.logger.Sugar().Debugw("resolved account id", "address", w.address.Hex(), "accountId", id)
}

// accountState fetches the live account snapshot and opportunistically fills
// the account-id cache from it.
func (w *Wallet) accountState(ctx context.Context) (*provider.AccountInfo, error) {
	info, err := w.provider.AccountInfo(ctx, w.address)
	if err != nil {
		return nil, err
	}
	if info.ID != nil {
		w.mu.Lock()
		w.storeAccountIDLocked(*info.ID)
		w.mu.Unlock()
	}
	return info, nil
}

// Tokens returns the network token set, fetched once and cached.
func (w *Wallet) Tokens(ctx context.Context) (*token.Set, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tokensLocked(ctx)
}

func (w *Wallet) tokensLocked(ctx context.Context) (*token.Set, error) {
	if w.tokens != nil {
		return w.tokens, nil
	}

	if w.cache != nil {
		cached, err := w.cache.LoadTokens()
		if err != nil {
			w.logger.Sugar().Warnw("token cache read failed", "error", err)
		} else if cached != nil {
			w.tokens = token.NewSet(cached)
			return w.tokens, nil
		}
	}

	list, err := w.provider.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	w.tokens = token.NewSet(list)
	if w.cache != nil {
		if err := w.cache.SaveTokens(list); err != nil {
			w.logger.Sugar().Warnw("token cache write failed", "error", err)
		}
	}
	return w.tokens, nil
}

// resolveToken maps a token identifier to its metadata.
func (w *Wallet) resolveToken(ctx context.Context, l token.Like) (*token.Token, error) {
	set, err := w.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	return set.Resolve(l)
}

// resolveNonce uses the requested nonce verbatim when supplied, otherwise
// fetches the next committed nonce. The network validates either way.
func (w *Wallet) resolveNonce(ctx context.Context, requested *types.Nonce) (types.Nonce, error) {
	if requested != nil {
		return *requested, nil
	}
	info, err := w.accountState(ctx)
	if err != nil {
		return 0, err
	}
	return info.Committed.Nonce, nil
}

// resolveFee uses the explicit fee verbatim when supplied (zero included),
// otherwise asks the operator for a default quote.
func (w *Wallet) resolveFee(ctx context.Context, explicit *big.Int, feeType provider.TxFeeType, address common.Address, tok token.Like) (*big.Int, error) {
	if explicit != nil {
		return explicit, nil
	}
	fee, err := w.provider.TransactionFee(ctx, feeType, address, tok)
	if err != nil {
		return nil, err
	}
	return fee.TotalFee, nil
}

// formatAmount renders an amount for an authorization message. Zero renders
// as an empty string so the whole line is omitted, never the literal "0".
func formatAmount(t *token.Token, amount *big.Int) string {
	if amount == nil || amount.Sign() == 0 {
		return ""
	}
	return t.Format(amount)
}

// signTxMessage signs the single-transaction authorization message, or
// reports no signature when the account cannot produce one.
func (w *Wallet) signTxMessage(ctx context.Context, part string, nonce types.Nonce) (*types.EthSignature, error) {
	if !w.ethSigner.CanSignMessages() {
		return nil, nil
	}
	return w.ethSigner.SignMessage(ctx, []byte(ethsigner.TxMessage(part, nonce)))
}

// Submit submits one signed transaction and returns its tracking hash.
func (w *Wallet) Submit(ctx context.Context, signed *types.SignedTransaction) (common.Hash, error) {
	if signed == nil || signed.Tx == nil {
		return common.Hash{}, fmt.Errorf("cannot submit nil transaction")
	}
	hash, err := w.provider.SubmitTx(ctx, signed.Tx, signed.EthereumSignature)
	if err != nil {
		return common.Hash{}, err
	}
	w.logger.Sugar().Infow("transaction submitted",
		"type", signed.Tx.TxType(), "nonce", signed.Tx.TxNonce(), "hash", hash.Hex())
	return hash, nil
}
