package inMemorySigner

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncwave/zkwallet-go/pkg/types"
	"github.com/syncwave/zkwallet-go/pkg/zksigner"
)

func testSeed() []byte {
	seed := make([]byte, 64)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	return seed
}

func TestNewSignerFromSeedDeterministic(t *testing.T) {
	a, err := NewSignerFromSeed(testSeed())
	require.NoError(t, err)
	b, err := NewSignerFromSeed(testSeed())
	require.NoError(t, err)

	assert.Equal(t, a.PubKeyHash(), b.PubKeyHash())
	assert.False(t, a.PubKeyHash().IsZero())
}

func TestNewSignerFromSeedTooShort(t *testing.T) {
	_, err := NewSignerFromSeed([]byte("short"))
	assert.Error(t, err)
}

func TestSignTransferRoundTrip(t *testing.T) {
	signer, err := NewSignerFromSeed(testSeed())
	require.NoError(t, err)

	tx := &types.Transfer{
		AccountID: 5,
		From:      common.HexToAddress("0x1111111111111111111111111111111111111111"),
		To:        common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Token:     1,
		Amount:    big.NewInt(1000),
		Fee:       big.NewInt(10),
		Nonce:     3,
		TimeRange: types.DefaultTimeRange(),
	}

	sig, err := signer.SignTransfer(tx)
	require.NoError(t, err)
	require.NotNil(t, sig)
	assert.NotEmpty(t, sig.PubKey)
	assert.NotEmpty(t, sig.Signature)

	ok, err := signer.Verify(sig, zksigner.EncodeTransfer(tx))
	require.NoError(t, err)
	assert.True(t, ok)

	// a different payload must not verify
	tx.Amount = big.NewInt(1001)
	ok, err = signer.Verify(sig, zksigner.EncodeTransfer(tx))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEncodingsAreDistinct(t *testing.T) {
	transfer := &types.Transfer{Amount: big.NewInt(1), Fee: big.NewInt(1), TimeRange: types.DefaultTimeRange()}
	withdraw := &types.Withdraw{Amount: big.NewInt(1), Fee: big.NewInt(1), TimeRange: types.DefaultTimeRange()}

	assert.NotEqual(t, zksigner.EncodeTransfer(transfer), zksigner.EncodeWithdraw(withdraw))
}

func TestRandomSignersDiffer(t *testing.T) {
	a, err := NewRandomSigner()
	require.NoError(t, err)
	b, err := NewRandomSigner()
	require.NoError(t, err)

	assert.NotEqual(t, a.PubKeyHash(), b.PubKeyHash())
}
