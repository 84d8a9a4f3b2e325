package ethsigner

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/syncwave/zkwallet-go/pkg/types"
)

// ErrSigningUnsupported is returned by signers whose underlying account
// cannot produce Ethereum message signatures (CREATE2 wallets, watch-only
// addresses). Callers treat the signature as absent rather than failing.
var ErrSigningUnsupported = errors.New("the signer cannot produce ethereum message signatures")

// Signer is an Ethereum-compatible identity: a stable address, and - when
// the capability is present - EIP-191 personal message signatures over
// arbitrary UTF-8 authorization text.
type Signer interface {
	// Address returns the L1 address of the account.
	Address() common.Address

	// CanSignMessages reports whether SignMessage is usable. When false,
	// SignMessage always returns ErrSigningUnsupported.
	CanSignMessages() bool

	// SignMessage signs message as an EIP-191 personal message.
	SignMessage(ctx context.Context, message []byte) (*types.EthSignature, error)
}

// PrivateKeySigner signs with a plain secp256k1 key held in memory.
type PrivateKeySigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

var _ Signer = (*PrivateKeySigner)(nil)

// NewPrivateKeySigner wraps an in-memory secp256k1 key.
func NewPrivateKeySigner(privateKey *ecdsa.PrivateKey) (*PrivateKeySigner, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("private key cannot be nil")
	}
	return &PrivateKeySigner{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// NewPrivateKeySignerFromHex parses a hex-encoded secp256k1 key.
func NewPrivateKeySignerFromHex(hexKey string) (*PrivateKeySigner, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return NewPrivateKeySigner(key)
}

func (s *PrivateKeySigner) Address() common.Address {
	return s.address
}

func (s *PrivateKeySigner) CanSignMessages() bool {
	return true
}

func (s *PrivateKeySigner) SignMessage(_ context.Context, message []byte) (*types.EthSignature, error) {
	sig, err := crypto.Sign(accounts.TextHash(message), s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	// Shift the recovery id into the 27/28 range Ethereum verifiers expect.
	sig[64] += 27
	return &types.EthSignature{
		Type:      types.EthSignatureTypeEthereum,
		Signature: hexutil.Encode(sig),
	}, nil
}

// AddressSigner is a watch-only identity: it knows the account address but
// holds no key material.
type AddressSigner struct {
	address common.Address
}

var _ Signer = (*AddressSigner)(nil)

// NewAddressSigner creates a watch-only signer.
func NewAddressSigner(address common.Address) *AddressSigner {
	return &AddressSigner{address: address}
}

func (s *AddressSigner) Address() common.Address {
	return s.address
}

func (s *AddressSigner) CanSignMessages() bool {
	return false
}

func (s *AddressSigner) SignMessage(context.Context, []byte) (*types.EthSignature, error) {
	return nil, ErrSigningUnsupported
}

// Create2Data is the deployment data of a CREATE2 smart-contract wallet.
type Create2Data struct {
	CreatorAddress common.Address `json:"creatorAddress"`
	SaltArg        common.Hash    `json:"saltArg"`
	CodeHash       common.Hash    `json:"codeHash"`
}

// Create2Signer is the identity of a CREATE2-deployed contract wallet whose
// address commits to the L2 public-key hash. It cannot sign messages; key
// rotation is authorized by revealing the deployment data instead.
type Create2Signer struct {
	data    Create2Data
	address common.Address
}

var _ Signer = (*Create2Signer)(nil)

// NewCreate2Signer derives the wallet address from the deployment data and
// the L2 public-key hash baked into the deployment salt.
func NewCreate2Signer(data Create2Data, pubKeyHash types.PubKeyHash) *Create2Signer {
	salt := crypto.Keccak256(data.SaltArg.Bytes(), pubKeyHash[:])
	var salt32 [32]byte
	copy(salt32[:], salt)
	return &Create2Signer{
		data:    data,
		address: crypto.CreateAddress2(data.CreatorAddress, salt32, data.CodeHash.Bytes()),
	}
}

func (s *Create2Signer) Address() common.Address {
	return s.address
}

func (s *Create2Signer) CanSignMessages() bool {
	return false
}

func (s *Create2Signer) SignMessage(context.Context, []byte) (*types.EthSignature, error) {
	return nil, ErrSigningUnsupported
}

// Create2Data exposes the deployment data for CREATE2 key-rotation
// authorization.
func (s *Create2Signer) Create2Data() Create2Data {
	return s.data
}
