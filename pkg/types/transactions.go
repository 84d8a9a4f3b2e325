package types

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxType tags the transaction union. The set is closed: every builder,
// message-part renderer and batch site switches exhaustively over it.
type TxType string

const (
	TxTypeTransfer     TxType = "Transfer"
	TxTypeWithdraw     TxType = "Withdraw"
	TxTypeForcedExit   TxType = "ForcedExit"
	TxTypeChangePubKey TxType = "ChangePubKey"
	TxTypeSwap         TxType = "Swap"
	TxTypeMintNFT      TxType = "MintNFT"
	TxTypeWithdrawNFT  TxType = "WithdrawNFT"
)

// Tx is implemented by every transaction kind.
type Tx interface {
	TxType() TxType
	TxNonce() Nonce
}

// SignedTransaction pairs a transaction with its optional Ethereum-compatible
// signature. The signature is absent when the underlying account cannot
// produce one, or when the transaction is covered by a batch signature.
type SignedTransaction struct {
	Tx                Tx            `json:"tx"`
	EthereumSignature *EthSignature `json:"ethereumSignature,omitempty"`
}

// Transfer moves a fungible token between two L2 accounts.
type Transfer struct {
	AccountID AccountID      `json:"accountId"`
	From      common.Address `json:"from"`
	To        common.Address `json:"to"`
	Token     TokenID        `json:"token"`
	Amount    *big.Int       `json:"amount"`
	Fee       *big.Int       `json:"fee"`
	Nonce     Nonce          `json:"nonce"`
	TimeRange
	Signature *Signature `json:"signature,omitempty"`
}

func (t *Transfer) TxType() TxType { return TxTypeTransfer }
func (t *Transfer) TxNonce() Nonce { return t.Nonce }

func (t *Transfer) MarshalJSON() ([]byte, error) {
	type alias Transfer
	return json.Marshal(&struct {
		Type TxType `json:"type"`
		*alias
	}{TxTypeTransfer, (*alias)(t)})
}

// Withdraw moves a fungible token from L2 back to an L1 address.
type Withdraw struct {
	AccountID AccountID      `json:"accountId"`
	From      common.Address `json:"from"`
	To        common.Address `json:"to"`
	Token     TokenID        `json:"token"`
	Amount    *big.Int       `json:"amount"`
	Fee       *big.Int       `json:"fee"`
	Nonce     Nonce          `json:"nonce"`
	TimeRange
	Signature *Signature `json:"signature,omitempty"`
}

func (w *Withdraw) TxType() TxType { return TxTypeWithdraw }
func (w *Withdraw) TxNonce() Nonce { return w.Nonce }

func (w *Withdraw) MarshalJSON() ([]byte, error) {
	type alias Withdraw
	return json.Marshal(&struct {
		Type TxType `json:"type"`
		*alias
	}{TxTypeWithdraw, (*alias)(w)})
}

// ForcedExit withdraws the full balance of a target account that has no
// registered signing key. The initiator pays the fee.
type ForcedExit struct {
	InitiatorAccountID AccountID      `json:"initiatorAccountId"`
	Target             common.Address `json:"target"`
	Token              TokenID        `json:"token"`
	Fee                *big.Int       `json:"fee"`
	Nonce              Nonce          `json:"nonce"`
	TimeRange
	Signature *Signature `json:"signature,omitempty"`
}

func (f *ForcedExit) TxType() TxType { return TxTypeForcedExit }
func (f *ForcedExit) TxNonce() Nonce { return f.Nonce }

func (f *ForcedExit) MarshalJSON() ([]byte, error) {
	type alias ForcedExit
	return json.Marshal(&struct {
		Type TxType `json:"type"`
		*alias
	}{TxTypeForcedExit, (*alias)(f)})
}

// ChangePubKey registers a new L2 signing key for the account. Authorization
// is carried either in EthAuthData (Onchain/ECDSA/CREATE2) or, for the legacy
// message flow, as a transaction-level EthSignature.
type ChangePubKey struct {
	AccountID AccountID      `json:"accountId"`
	Account   common.Address `json:"account"`
	NewPkHash PubKeyHash     `json:"newPkHash"`
	FeeToken  TokenID        `json:"feeToken"`
	Fee       *big.Int       `json:"fee"`
	Nonce     Nonce          `json:"nonce"`
	TimeRange
	Signature    *Signature           `json:"signature,omitempty"`
	EthAuthData  ChangePubKeyAuthData `json:"ethAuthData,omitempty"`
	EthSignature *string              `json:"ethSignature,omitempty"`
}

func (c *ChangePubKey) TxType() TxType { return TxTypeChangePubKey }
func (c *ChangePubKey) TxNonce() Nonce { return c.Nonce }

func (c *ChangePubKey) MarshalJSON() ([]byte, error) {
	type alias ChangePubKey
	return json.Marshal(&struct {
		Type TxType `json:"type"`
		*alias
	}{TxTypeChangePubKey, (*alias)(c)})
}

// RatioType tags how a swap ratio is expressed.
type RatioType string

const (
	// RatioTypeWei expresses the ratio in minor (wei-like) units.
	RatioTypeWei RatioType = "Wei"
	// RatioTypeToken expresses the ratio in whole token units; it is
	// converted to minor units using token decimals before signing.
	RatioTypeToken RatioType = "Token"
)

// Order is one independently-signable half of an atomic swap.
type Order struct {
	AccountID AccountID      `json:"accountId"`
	Recipient common.Address `json:"recipient"`
	Nonce     Nonce          `json:"nonce"`
	TokenSell TokenID        `json:"tokenSell"`
	TokenBuy  TokenID        `json:"tokenBuy"`
	Ratio     [2]*big.Int    `json:"ratio"`
	Amount    *big.Int       `json:"amount"`
	TimeRange
	Signature    *Signature    `json:"signature,omitempty"`
	EthSignature *EthSignature `json:"ethSignature,omitempty"`
}

// Swap atomically executes two matched orders. The submitter is a third
// identity (possibly one of the two makers) that pays the fee.
type Swap struct {
	SubmitterID      AccountID      `json:"submitterId"`
	SubmitterAddress common.Address `json:"submitterAddress"`
	Nonce            Nonce          `json:"nonce"`
	Orders           [2]*Order      `json:"orders"`
	Amounts          [2]*big.Int    `json:"amounts"`
	FeeToken         TokenID        `json:"feeToken"`
	Fee              *big.Int       `json:"fee"`
	Signature        *Signature     `json:"signature,omitempty"`
}

func (s *Swap) TxType() TxType { return TxTypeSwap }
func (s *Swap) TxNonce() Nonce { return s.Nonce }

func (s *Swap) MarshalJSON() ([]byte, error) {
	type alias Swap
	return json.Marshal(&struct {
		Type TxType `json:"type"`
		*alias
	}{TxTypeSwap, (*alias)(s)})
}

// MintNFT mints a new NFT with the given content hash to a recipient.
type MintNFT struct {
	CreatorID      AccountID      `json:"creatorId"`
	CreatorAddress common.Address `json:"creatorAddress"`
	ContentHash    common.Hash    `json:"contentHash"`
	Recipient      common.Address `json:"recipient"`
	FeeToken       TokenID        `json:"feeToken"`
	Fee            *big.Int       `json:"fee"`
	Nonce          Nonce          `json:"nonce"`
	Signature      *Signature     `json:"signature,omitempty"`
}

func (m *MintNFT) TxType() TxType { return TxTypeMintNFT }
func (m *MintNFT) TxNonce() Nonce { return m.Nonce }

func (m *MintNFT) MarshalJSON() ([]byte, error) {
	type alias MintNFT
	return json.Marshal(&struct {
		Type TxType `json:"type"`
		*alias
	}{TxTypeMintNFT, (*alias)(m)})
}

// WithdrawNFT withdraws an NFT from L2 to an L1 address.
type WithdrawNFT struct {
	AccountID AccountID      `json:"accountId"`
	From      common.Address `json:"from"`
	To        common.Address `json:"to"`
	Token     TokenID        `json:"token"`
	FeeToken  TokenID        `json:"feeToken"`
	Fee       *big.Int       `json:"fee"`
	Nonce     Nonce          `json:"nonce"`
	TimeRange
	Signature *Signature `json:"signature,omitempty"`
}

func (w *WithdrawNFT) TxType() TxType { return TxTypeWithdrawNFT }
func (w *WithdrawNFT) TxNonce() Nonce { return w.Nonce }

func (w *WithdrawNFT) MarshalJSON() ([]byte, error) {
	type alias WithdrawNFT
	return json.Marshal(&struct {
		Type TxType `json:"type"`
		*alias
	}{TxTypeWithdrawNFT, (*alias)(w)})
}
