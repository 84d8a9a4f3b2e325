package kmsSigner

import (
	"context"
	cryptoEcdsa "crypto/ecdsa"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"math/big"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/syncwave/zkwallet-go/pkg/ethsigner"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

// KMSSigner signs Ethereum personal messages with a secp256k1 key held in
// AWS KMS. The private key never leaves the HSM; only the keccak digest is
// sent for signing.
type KMSSigner struct {
	logger    *zap.Logger
	kmsClient *kms.Client
	stsClient *sts.Client
	keyID     string
	publicKey *cryptoEcdsa.PublicKey
	address   common.Address
}

var _ ethsigner.Signer = (*KMSSigner)(nil)

// NewKMSSigner resolves the public key of the given KMS key and derives the
// Ethereum address from it.
func NewKMSSigner(ctx context.Context, awsCfg aws.Config, keyID string, logger *zap.Logger) (*KMSSigner, error) {
	if keyID == "" {
		return nil, fmt.Errorf("kms key id cannot be empty")
	}

	kmsClient := kms.NewFromConfig(awsCfg)

	out, err := kmsClient.GetPublicKey(ctx, &kms.GetPublicKeyInput{KeyId: aws.String(keyID)})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get public key for kms key %s", keyID)
	}
	if out.KeySpec != kmstypes.KeySpecEccSecgP256k1 {
		return nil, fmt.Errorf("kms key %s has spec %s, need %s for Ethereum signing", keyID, out.KeySpec, kmstypes.KeySpecEccSecgP256k1)
	}

	publicKey, err := parseECDSAPublicKey(out.PublicKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse public key for kms key %s", keyID)
	}

	return &KMSSigner{
		logger:    logger,
		kmsClient: kmsClient,
		stsClient: sts.NewFromConfig(awsCfg),
		keyID:     keyID,
		publicKey: publicKey,
		address:   crypto.PubkeyToAddress(*publicKey),
	}, nil
}

// NewKMSSignerFromEnv loads AWS configuration from the environment.
func NewKMSSignerFromEnv(ctx context.Context, keyID string, logger *zap.Logger) (*KMSSigner, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load aws config")
	}
	return NewKMSSigner(ctx, awsCfg, keyID, logger)
}

// VerifyCredentials checks that the ambient AWS credentials resolve to a
// caller identity. Used at startup to fail fast on misconfigured
// environments.
func (s *KMSSigner) VerifyCredentials(ctx context.Context) error {
	identity, err := s.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return errors.Wrap(err, "aws credentials check failed")
	}
	s.logger.Sugar().Infow("aws caller identity verified",
		"account", aws.ToString(identity.Account),
		"arn", aws.ToString(identity.Arn),
	)
	return nil
}

func (s *KMSSigner) Address() common.Address {
	return s.address
}

func (s *KMSSigner) CanSignMessages() bool {
	return true
}

func (s *KMSSigner) SignMessage(ctx context.Context, message []byte) (*types.EthSignature, error) {
	digest := accounts.TextHash(message)

	out, err := s.kmsClient.Sign(ctx, &kms.SignInput{
		KeyId:            aws.String(s.keyID),
		Message:          digest,
		MessageType:      kmstypes.MessageTypeDigest,
		SigningAlgorithm: kmstypes.SigningAlgorithmSpecEcdsaSha256,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "kms signing failed for key %s", s.keyID)
	}

	sig, err := derToEthereumSignature(out.Signature, digest, s.publicKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert kms signature")
	}

	return &types.EthSignature{
		Type:      types.EthSignatureTypeEthereum,
		Signature: hexutil.Encode(sig),
	}, nil
}

type subjectPublicKeyInfo struct {
	Algorithm        pkix.AlgorithmIdentifier
	SubjectPublicKey asn1.BitString
}

// parseECDSAPublicKey decodes the DER-encoded SPKI that KMS returns.
func parseECDSAPublicKey(der []byte) (*cryptoEcdsa.PublicKey, error) {
	var spki subjectPublicKeyInfo
	if _, err := asn1.Unmarshal(der, &spki); err != nil {
		return nil, fmt.Errorf("failed to decode SPKI: %w", err)
	}
	pub, err := crypto.UnmarshalPubkey(spki.SubjectPublicKey.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal secp256k1 point: %w", err)
	}
	return pub, nil
}

type derSignature struct {
	R, S *big.Int
}

// derToEthereumSignature converts a DER ECDSA signature into the 65-byte
// r‖s‖v form, normalizing s to the lower half order and recovering v by
// matching the known public key.
func derToEthereumSignature(der []byte, digest []byte, publicKey *cryptoEcdsa.PublicKey) ([]byte, error) {
	var parsed derSignature
	if _, err := asn1.Unmarshal(der, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode DER signature: %w", err)
	}

	curveOrder := crypto.S256().Params().N
	s := new(big.Int).Set(parsed.S)
	if s.Cmp(new(big.Int).Rsh(curveOrder, 1)) > 0 {
		s.Sub(curveOrder, s)
	}

	sig := make([]byte, 65)
	parsed.R.FillBytes(sig[:32])
	s.FillBytes(sig[32:64])

	want := crypto.FromECDSAPub(publicKey)
	for _, v := range []byte{0, 1} {
		sig[64] = v
		recovered, err := crypto.Ecrecover(digest, sig)
		if err != nil {
			continue
		}
		if string(recovered) == string(want) {
			sig[64] = v + 27
			return sig, nil
		}
	}
	return nil, fmt.Errorf("failed to recover a matching public key from the signature")
}
