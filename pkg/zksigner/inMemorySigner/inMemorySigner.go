package inMemorySigner

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"golang.org/x/crypto/sha3"

	"github.com/syncwave/zkwallet-go/pkg/types"
	"github.com/syncwave/zkwallet-go/pkg/zksigner"
)

// InMemorySigner holds an EdDSA key over the bn254 twisted Edwards curve in
// process memory and signs canonical transaction encodings with it.
// Intended for tests and development tooling; production deployments keep L2
// keys behind a remote signer implementing zksigner.Signer.
type InMemorySigner struct {
	privateKey *eddsa.PrivateKey
	pubKeyHash types.PubKeyHash
}

var _ zksigner.Signer = (*InMemorySigner)(nil)

// NewRandomSigner generates a fresh key from crypto/rand.
func NewRandomSigner() (*InMemorySigner, error) {
	key, err := eddsa.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate eddsa key: %w", err)
	}
	return newSigner(key), nil
}

// NewSignerFromSeed derives a key deterministically from a seed, typically an
// Ethereum signature over a fixed login message so the L2 key can be
// recovered from the L1 wallet alone.
func NewSignerFromSeed(seed []byte) (*InMemorySigner, error) {
	if len(seed) < 32 {
		return nil, fmt.Errorf("seed must be at least 32 bytes, got %d", len(seed))
	}
	shake := sha3.NewShake256()
	_, _ = shake.Write(seed)
	key, err := eddsa.GenerateKey(shake)
	if err != nil {
		return nil, fmt.Errorf("failed to derive eddsa key from seed: %w", err)
	}
	return newSigner(key), nil
}

func newSigner(key *eddsa.PrivateKey) *InMemorySigner {
	pubBytes := key.PublicKey.Bytes()
	digest := sha3.Sum256(pubBytes)

	var pkh types.PubKeyHash
	copy(pkh[:], digest[:20])

	return &InMemorySigner{
		privateKey: key,
		pubKeyHash: pkh,
	}
}

// PubKeyHash implements zksigner.Signer.
func (s *InMemorySigner) PubKeyHash() types.PubKeyHash {
	return s.pubKeyHash
}

// signPayload hashes the canonical encoding into the scalar field and signs
// the reduced digest.
func (s *InMemorySigner) signPayload(payload []byte) (*types.Signature, error) {
	digest := sha3.Sum256(payload)

	var reduced fr.Element
	reduced.SetBytes(digest[:])
	msg := reduced.Marshal()

	sig, err := s.privateKey.Sign(msg, mimc.NewMiMC())
	if err != nil {
		return nil, fmt.Errorf("eddsa signing failed: %w", err)
	}

	return &types.Signature{
		PubKey:    hex.EncodeToString(s.privateKey.PublicKey.Bytes()),
		Signature: hex.EncodeToString(sig),
	}, nil
}

// Verify checks a signature produced by signPayload against this signer's
// public key. Used by tests to validate round trips.
func (s *InMemorySigner) Verify(sig *types.Signature, payload []byte) (bool, error) {
	digest := sha3.Sum256(payload)

	var reduced fr.Element
	reduced.SetBytes(digest[:])
	msg := reduced.Marshal()

	sigBytes, err := hex.DecodeString(sig.Signature)
	if err != nil {
		return false, fmt.Errorf("invalid signature hex: %w", err)
	}
	return s.privateKey.PublicKey.Verify(sigBytes, msg, mimc.NewMiMC())
}

func (s *InMemorySigner) SignTransfer(tx *types.Transfer) (*types.Signature, error) {
	return s.signPayload(zksigner.EncodeTransfer(tx))
}

func (s *InMemorySigner) SignWithdraw(tx *types.Withdraw) (*types.Signature, error) {
	return s.signPayload(zksigner.EncodeWithdraw(tx))
}

func (s *InMemorySigner) SignForcedExit(tx *types.ForcedExit) (*types.Signature, error) {
	return s.signPayload(zksigner.EncodeForcedExit(tx))
}

func (s *InMemorySigner) SignChangePubKey(tx *types.ChangePubKey) (*types.Signature, error) {
	return s.signPayload(zksigner.EncodeChangePubKey(tx))
}

func (s *InMemorySigner) SignSwap(tx *types.Swap) (*types.Signature, error) {
	return s.signPayload(zksigner.EncodeSwap(tx))
}

func (s *InMemorySigner) SignMintNFT(tx *types.MintNFT) (*types.Signature, error) {
	return s.signPayload(zksigner.EncodeMintNFT(tx))
}

func (s *InMemorySigner) SignWithdrawNFT(tx *types.WithdrawNFT) (*types.Signature, error) {
	return s.signPayload(zksigner.EncodeWithdrawNFT(tx))
}

func (s *InMemorySigner) SignOrder(order *types.Order) (*types.Signature, error) {
	return s.signPayload(zksigner.EncodeOrder(order))
}
