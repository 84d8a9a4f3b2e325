package provider

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncwave/zkwallet-go/pkg/logger"
	"github.com/syncwave/zkwallet-go/pkg/token"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

// rpcHandler builds an httptest server that dispatches on JSON-RPC method.
func rpcHandler(t *testing.T, handlers map[string]func(params []json.RawMessage) (interface{}, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     string            `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.ID)

		handler, ok := handlers[req.Method]
		require.True(t, ok, "unexpected method %s", req.Method)

		result, rpcErr := handler(req.Params)
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestProvider(t *testing.T, srv *httptest.Server) *HTTPProvider {
	t.Helper()
	p, err := NewHTTPProvider(&HTTPProviderConfig{
		Endpoint: srv.URL,
		Logger:   logger.NewNopLogger(),
	})
	require.NoError(t, err)
	return p
}

func TestAccountInfo(t *testing.T) {
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")
	id := types.AccountID(42)

	srv := rpcHandler(t, map[string]func(params []json.RawMessage) (interface{}, *rpcError){
		"account_info": func(params []json.RawMessage) (interface{}, *rpcError) {
			var got string
			require.NoError(t, json.Unmarshal(params[0], &got))
			assert.Equal(t, addr.Hex(), got)
			return AccountInfo{
				Address: addr,
				ID:      &id,
				Committed: AccountStateSnapshot{
					Nonce:      7,
					PubKeyHash: types.PubKeyHash{0xde, 0xad},
				},
			}, nil
		},
	})
	defer srv.Close()

	info, err := newTestProvider(t, srv).AccountInfo(context.Background(), addr)
	require.NoError(t, err)
	require.NotNil(t, info.ID)
	assert.Equal(t, types.AccountID(42), *info.ID)
	assert.Equal(t, types.Nonce(7), info.Committed.Nonce)
	assert.Equal(t, types.PubKeyHash{0xde, 0xad}, info.Committed.PubKeyHash)
}

func TestAccountInfoNotFound(t *testing.T) {
	srv := rpcHandler(t, map[string]func(params []json.RawMessage) (interface{}, *rpcError){
		"account_info": func(params []json.RawMessage) (interface{}, *rpcError) {
			return nil, &rpcError{Code: rpcCodeAccountNotFound, Message: "account does not exist"}
		},
	})
	defer srv.Close()

	_, err := newTestProvider(t, srv).AccountInfo(context.Background(), common.Address{})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestTransactionFeeTypeEncoding(t *testing.T) {
	tests := []struct {
		name     string
		feeType  TxFeeType
		wantJSON string
	}{
		{name: "transfer", feeType: TransferFeeType(), wantJSON: `"Transfer"`},
		{name: "fast withdraw", feeType: WithdrawFeeType(true), wantJSON: `"FastWithdraw"`},
		{name: "withdraw nft", feeType: WithdrawNFTFeeType(false), wantJSON: `"WithdrawNFT"`},
		{
			name:     "change pubkey ecdsa",
			feeType:  ChangePubKeyFeeType(types.ChangePubKeyAuthTypeECDSA),
			wantJSON: `{"ChangePubKey":{"changePubKeyType":"ECDSA"}}`,
		},
		{
			name:     "change pubkey onchain",
			feeType:  ChangePubKeyFeeType(types.ChangePubKeyAuthTypeOnchain),
			wantJSON: `{"ChangePubKey":{"changePubKeyType":"Onchain"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.feeType)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(got))
		})
	}
}

func TestTransactionFee(t *testing.T) {
	srv := rpcHandler(t, map[string]func(params []json.RawMessage) (interface{}, *rpcError){
		"get_tx_fee": func(params []json.RawMessage) (interface{}, *rpcError) {
			var feeType string
			require.NoError(t, json.Unmarshal(params[0], &feeType))
			assert.Equal(t, "Transfer", feeType)
			return map[string]interface{}{
				"gasFee":   "100",
				"zkpFee":   "50",
				"totalFee": "150",
			}, nil
		},
	})
	defer srv.Close()

	fee, err := newTestProvider(t, srv).TransactionFee(context.Background(), TransferFeeType(), common.Address{}, "ETH")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(150), fee.TotalFee)
	assert.Equal(t, big.NewInt(100), fee.GasFee)
}

func TestTokens(t *testing.T) {
	srv := rpcHandler(t, map[string]func(params []json.RawMessage) (interface{}, *rpcError){
		"tokens": func(params []json.RawMessage) (interface{}, *rpcError) {
			return map[string]*token.Token{
				"ETH": {ID: 0, Symbol: "ETH", Decimals: 18},
				"DAI": {ID: 1, Symbol: "DAI", Decimals: 18},
			}, nil
		},
	})
	defer srv.Close()

	tokens, err := newTestProvider(t, srv).Tokens(context.Background())
	require.NoError(t, err)
	assert.Len(t, tokens, 2)

	set := token.NewSet(tokens)
	dai, err := set.Resolve("DAI")
	require.NoError(t, err)
	assert.Equal(t, types.TokenID(1), dai.ID)
}

func TestSubmitTx(t *testing.T) {
	wantHash := common.HexToHash("0xabcdef")
	srv := rpcHandler(t, map[string]func(params []json.RawMessage) (interface{}, *rpcError){
		"tx_submit": func(params []json.RawMessage) (interface{}, *rpcError) {
			var tx map[string]interface{}
			require.NoError(t, json.Unmarshal(params[0], &tx))
			assert.Equal(t, "Transfer", tx["type"])
			return wantHash, nil
		},
	})
	defer srv.Close()

	transfer := &types.Transfer{
		AccountID: 1,
		Amount:    big.NewInt(10),
		Fee:       big.NewInt(1),
		TimeRange: types.DefaultTimeRange(),
	}
	hash, err := newTestProvider(t, srv).SubmitTx(context.Background(), transfer, nil)
	require.NoError(t, err)
	assert.Equal(t, wantHash, hash)
}
