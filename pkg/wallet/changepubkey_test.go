package wallet

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncwave/zkwallet-go/pkg/ethsigner"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

func TestSignChangePubKey_Onchain(t *testing.T) {
	env := newTestEnv(t)

	signed, err := env.wallet.SignChangePubKey(context.Background(), &ChangePubKeyIntent{
		FeeToken: "ETH",
		AuthType: types.ChangePubKeyAuthTypeOnchain,
	})
	require.NoError(t, err)

	tx := signed.Tx.(*types.ChangePubKey)
	assert.IsType(t, &types.ChangePubKeyOnchainAuth{}, tx.EthAuthData)
	assert.Nil(t, tx.EthSignature)
	assert.Nil(t, signed.EthereumSignature)
	assert.Equal(t, env.zkSigner.PubKeyHash(), tx.NewPkHash)
	require.NotNil(t, tx.Signature)

	// Onchain mode involves no Ethereum message signing at all.
	assert.Empty(t, env.ethSigner.messages)
}

func TestSignChangePubKey_ECDSA(t *testing.T) {
	env := newTestEnv(t)

	signed, err := env.wallet.SignChangePubKey(context.Background(), &ChangePubKeyIntent{
		FeeToken: "ETH",
		Fee:      big.NewInt(100),
		Nonce:    nonce(7),
		AuthType: types.ChangePubKeyAuthTypeECDSA,
	})
	require.NoError(t, err)

	tx := signed.Tx.(*types.ChangePubKey)
	auth, ok := tx.EthAuthData.(*types.ChangePubKeyECDSAAuth)
	require.True(t, ok)
	assert.NotEmpty(t, auth.EthSignature)
	assert.Equal(t, common.Hash{}, auth.BatchHash)
	assert.Nil(t, tx.EthSignature)

	// The signed payload is the canonical binary auth payload.
	require.Len(t, env.ethSigner.messages, 1)
	expected := ethsigner.ChangePubKeyAuthPayload(tx.NewPkHash, tx.Nonce, tx.AccountID, common.Hash{})
	assert.Equal(t, string(expected), env.ethSigner.messages[0])
}

func TestSignChangePubKey_LegacySignatureAtTransactionLevel(t *testing.T) {
	env := newTestEnv(t)

	signed, err := env.wallet.SignChangePubKey(context.Background(), &ChangePubKeyIntent{
		FeeToken: "ETH",
		Fee:      big.NewInt(0),
		AuthType: types.ChangePubKeyAuthTypeECDSALegacy,
	})
	require.NoError(t, err)

	tx := signed.Tx.(*types.ChangePubKey)
	assert.Nil(t, tx.EthAuthData)
	require.NotNil(t, tx.EthSignature)
	assert.NotEmpty(t, *tx.EthSignature)

	require.Len(t, env.ethSigner.messages, 1)
	assert.Equal(t,
		ethsigner.ChangePubKeyLegacyMessage(tx.NewPkHash, tx.Nonce, tx.AccountID),
		env.ethSigner.messages[0])
}

func TestSignChangePubKey_Create2RequiresCreate2Wallet(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.wallet.SignChangePubKey(context.Background(), &ChangePubKeyIntent{
		FeeToken: "ETH",
		AuthType: types.ChangePubKeyAuthTypeCREATE2,
	})
	require.ErrorIs(t, err, ErrCreate2Unavailable)

	// The capability check fires before any network round trip.
	assert.Zero(t, env.provider.accountInfoCalls)
}

func TestSignChangePubKey_Create2(t *testing.T) {
	env := newTestEnv(t)

	data := ethsigner.Create2Data{
		CreatorAddress: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		SaltArg:        common.HexToHash("0x02"),
		CodeHash:       common.HexToHash("0x03"),
	}
	create2 := ethsigner.NewCreate2Signer(data, env.zkSigner.PubKeyHash())
	w, err := NewWallet(env.provider, create2, Options{ZkSigner: env.zkSigner})
	require.NoError(t, err)

	signed, err := w.SignChangePubKey(context.Background(), &ChangePubKeyIntent{
		FeeToken: "ETH",
		Fee:      big.NewInt(0),
		AuthType: types.ChangePubKeyAuthTypeCREATE2,
	})
	require.NoError(t, err)

	tx := signed.Tx.(*types.ChangePubKey)
	auth, ok := tx.EthAuthData.(*types.ChangePubKeyCREATE2Auth)
	require.True(t, ok)
	assert.Equal(t, data.CreatorAddress, auth.CreatorAddress)
	assert.Equal(t, data.SaltArg, auth.SaltArg)
	assert.Equal(t, data.CodeHash, auth.CodeHash)
	assert.Equal(t, create2.Address(), tx.Account)
}

func TestSignChangePubKey_UnsupportedAuthType(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.wallet.SignChangePubKey(context.Background(), &ChangePubKeyIntent{
		FeeToken: "ETH",
		AuthType: "EIP712",
	})
	require.ErrorIs(t, err, ErrUnsupportedAuthType)
	assert.Zero(t, env.provider.accountInfoCalls)
}

func TestSignChangePubKey_IdempotenceGuardEveryMode(t *testing.T) {
	env := newTestEnv(t)

	// The account already carries exactly the key we would register.
	env.provider.info.Committed.PubKeyHash = env.zkSigner.PubKeyHash()

	for _, authType := range []types.ChangePubKeyAuthType{
		types.ChangePubKeyAuthTypeOnchain,
		types.ChangePubKeyAuthTypeECDSA,
		types.ChangePubKeyAuthTypeECDSALegacy,
	} {
		t.Run(string(authType), func(t *testing.T) {
			_, err := env.wallet.SignChangePubKey(context.Background(), &ChangePubKeyIntent{
				FeeToken: "ETH",
				AuthType: authType,
			})
			require.ErrorIs(t, err, ErrPubKeyHashUnchanged)
		})
	}

	t.Run("CREATE2", func(t *testing.T) {
		data := ethsigner.Create2Data{
			CreatorAddress: common.HexToAddress("0x1111111111111111111111111111111111111111"),
			SaltArg:        common.HexToHash("0x02"),
			CodeHash:       common.HexToHash("0x03"),
		}
		create2 := ethsigner.NewCreate2Signer(data, env.zkSigner.PubKeyHash())
		w, err := NewWallet(env.provider, create2, Options{ZkSigner: env.zkSigner})
		require.NoError(t, err)

		_, err = w.SignChangePubKey(context.Background(), &ChangePubKeyIntent{
			FeeToken: "ETH",
			AuthType: types.ChangePubKeyAuthTypeCREATE2,
		})
		require.ErrorIs(t, err, ErrPubKeyHashUnchanged)
	})
}

func TestIsSigningKeySet(t *testing.T) {
	env := newTestEnv(t)

	set, err := env.wallet.IsSigningKeySet(context.Background())
	require.NoError(t, err)
	assert.False(t, set)

	env.provider.info.Committed.PubKeyHash = env.zkSigner.PubKeyHash()
	set, err = env.wallet.IsSigningKeySet(context.Background())
	require.NoError(t, err)
	assert.True(t, set)
}
