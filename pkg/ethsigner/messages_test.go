package ethsigner

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/syncwave/zkwallet-go/pkg/types"
)

var (
	testTo     = common.HexToAddress("0xAbCd000000000000000000000000000000001234")
	testToLow  = "0xabcd000000000000000000000000000000001234"
	testTarget = common.HexToAddress("0x9999999999999999999999999999999999999999")
)

func TestTransferMessagePart(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		fee    string
		want   string
	}{
		{
			name:   "amount and fee",
			amount: "100.0",
			fee:    "0.5",
			want:   "Transfer 100.0 ETH to: " + testToLow + "\nFee: 0.5 ETH",
		},
		{
			name:   "zero fee omits fee line entirely",
			amount: "100.0",
			fee:    "",
			want:   "Transfer 100.0 ETH to: " + testToLow,
		},
		{
			name:   "zero amount omits transfer line",
			amount: "",
			fee:    "0.5",
			want:   "Fee: 0.5 ETH",
		},
		{
			name:   "all zero renders empty",
			amount: "",
			fee:    "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TransferMessagePart(testTo, tt.amount, tt.fee, "ETH")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithdrawMessagePart(t *testing.T) {
	got := WithdrawMessagePart(testTo, "1.0", "0.1", "DAI")
	assert.Equal(t, "Withdraw 1.0 DAI to: "+testToLow+"\nFee: 0.1 DAI", got)

	got = WithdrawMessagePart(testTo, "1.0", "", "DAI")
	assert.Equal(t, "Withdraw 1.0 DAI to: "+testToLow, got)
}

func TestForcedExitMessagePart(t *testing.T) {
	got := ForcedExitMessagePart(testTarget, "0.2", "ETH")
	assert.Equal(t, "ForcedExit ETH to: 0x9999999999999999999999999999999999999999\nFee: 0.2 ETH", got)
}

func TestSwapMessagePart(t *testing.T) {
	assert.Equal(t, "Swap fee: 0.3 USDC", SwapMessagePart("0.3", "USDC"))
	assert.Equal(t, "", SwapMessagePart("", "USDC"))
}

func TestChangePubKeyMessagePart(t *testing.T) {
	pkh := types.PubKeyHash{0xab, 0xcd}
	got := ChangePubKeyMessagePart(pkh, "", "ETH")
	assert.Equal(t, "Set signing key: abcd000000000000000000000000000000000000", got)
}

func TestWithdrawNFTMessagePart(t *testing.T) {
	got := WithdrawNFTMessagePart(70000, testTo, "0.1", "ETH")
	assert.Equal(t, "WithdrawNFT 70000 to: "+testToLow+"\nFee: 0.1 ETH", got)
}

func TestOrderMessage(t *testing.T) {
	order := &types.Order{
		Recipient: testTo,
		Nonce:     18,
		Ratio:     [2]*big.Int{big.NewInt(1), big.NewInt(4)},
	}

	got := OrderMessage(order, "10.0", "ETH", "DAI")
	assert.Equal(t, "Order for 10.0 ETH -> DAI\nRatio: 1:4\nAddress: "+testToLow+"\nNonce: 18", got)

	got = OrderMessage(order, "", "ETH", "DAI")
	assert.Equal(t, "Limit order for ETH -> DAI\nRatio: 1:4\nAddress: "+testToLow+"\nNonce: 18", got)
}

func TestTxMessage(t *testing.T) {
	assert.Equal(t, "part\nNonce: 7", TxMessage("part", 7))
	assert.Equal(t, "Nonce: 7", TxMessage("", 7))
}

func TestBatchMessageFiltersEmptyParts(t *testing.T) {
	parts := []string{"first part", "", "third part", ""}
	got := BatchMessage(parts, 3)
	assert.Equal(t, "first part\nthird part\nNonce: 3", got)
	assert.NotContains(t, got, "\n\n")
}

func TestChangePubKeyAuthPayload(t *testing.T) {
	pkh := types.PubKeyHash{0x01}
	batchHash := common.HexToHash("0xff")

	payload := ChangePubKeyAuthPayload(pkh, 0x0102, 0x0a0b, batchHash)
	assert.Len(t, payload, 20+4+4+32)
	assert.Equal(t, pkh[:], payload[:20])
	assert.Equal(t, []byte{0, 0, 0x01, 0x02}, payload[20:24])
	assert.Equal(t, []byte{0, 0, 0x0a, 0x0b}, payload[24:28])
	assert.Equal(t, batchHash.Bytes(), payload[28:])
}

func TestChangePubKeyLegacyMessage(t *testing.T) {
	pkh := types.PubKeyHash{0xab}
	got := ChangePubKeyLegacyMessage(pkh, 16, 300)

	want := "Register zkSync pubkey:\n\n" +
		"ab00000000000000000000000000000000000000\n" +
		"nonce: 0x00000010\n" +
		"account id: 0x0000012c\n\n" +
		"Only sign this message for a trusted client!"
	assert.Equal(t, want, got)
}
