package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/syncwave/zkwallet-go/pkg/token"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

// RPC error code the operator uses for accounts without rollup presence.
const rpcCodeAccountNotFound = 201

// HTTPProviderConfig configures the JSON-RPC provider client.
type HTTPProviderConfig struct {
	// Endpoint is the operator JSON-RPC URL.
	Endpoint string
	// RequestTimeout bounds a single HTTP round trip. Defaults to 30s.
	RequestTimeout time.Duration
	// RequestsPerSecond rate-limits outgoing calls; 0 disables limiting.
	RequestsPerSecond float64
	// Logger is required.
	Logger *zap.Logger
}

// HTTPProvider talks JSON-RPC 2.0 to a rollup operator over HTTP.
type HTTPProvider struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewHTTPProvider creates a provider client for the given operator endpoint.
func NewHTTPProvider(cfg *HTTPProviderConfig) (*HTTPProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &HTTPProvider{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		logger:     cfg.Logger,
	}, nil
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      string        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

// call performs one JSON-RPC round trip and decodes the result into out.
func (p *HTTPProvider) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s request", method)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "failed to build %s request", method)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return errors.Wrapf(err, "%s request failed", method)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s response", method)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d: %s", method, resp.StatusCode, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return errors.Wrapf(err, "failed to decode %s response", method)
	}
	if rpcResp.Error != nil {
		if rpcResp.Error.Code == rpcCodeAccountNotFound {
			return ErrAccountNotFound
		}
		return errors.Wrapf(rpcResp.Error, "%s failed", method)
	}

	p.logger.Sugar().Debugw("rpc call completed",
		"method", method,
		"request_id", req.ID,
		"duration", time.Since(started),
	)

	if out == nil {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(rpcResp.Result, out), "failed to decode %s result", method)
}

// AccountInfo implements Provider.
func (p *HTTPProvider) AccountInfo(ctx context.Context, address common.Address) (*AccountInfo, error) {
	var info AccountInfo
	if err := p.call(ctx, "account_info", []interface{}{address.Hex()}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Tokens implements Provider. The operator returns a symbol-keyed map.
func (p *HTTPProvider) Tokens(ctx context.Context) ([]*token.Token, error) {
	var bySymbol map[string]*token.Token
	if err := p.call(ctx, "tokens", []interface{}{}, &bySymbol); err != nil {
		return nil, err
	}
	tokens := make([]*token.Token, 0, len(bySymbol))
	for _, t := range bySymbol {
		tokens = append(tokens, t)
	}
	return tokens, nil
}

// TransactionFee implements Provider.
func (p *HTTPProvider) TransactionFee(ctx context.Context, feeType TxFeeType, address common.Address, tok token.Like) (*Fee, error) {
	var fee Fee
	params := []interface{}{feeType, address.Hex(), string(tok)}
	if err := p.call(ctx, "get_tx_fee", params, &fee); err != nil {
		return nil, err
	}
	return &fee, nil
}

// TransactionsBatchFee implements Provider.
func (p *HTTPProvider) TransactionsBatchFee(ctx context.Context, feeTypes []TxFeeType, addresses []common.Address, tok token.Like) (*big.Int, error) {
	hexAddrs := make([]string, len(addresses))
	for i, a := range addresses {
		hexAddrs[i] = a.Hex()
	}
	var total json.Number
	params := []interface{}{feeTypes, hexAddrs, string(tok)}
	if err := p.call(ctx, "get_txs_batch_fee_in_wei", params, &total); err != nil {
		return nil, err
	}
	fee, ok := new(big.Int).SetString(total.String(), 10)
	if !ok {
		return nil, fmt.Errorf("invalid batch fee value %q", total.String())
	}
	return fee, nil
}

// SubmitTx implements Provider.
func (p *HTTPProvider) SubmitTx(ctx context.Context, tx types.Tx, ethSignature *types.EthSignature) (common.Hash, error) {
	var hash common.Hash
	if err := p.call(ctx, "tx_submit", []interface{}{tx, ethSignature}, &hash); err != nil {
		return common.Hash{}, err
	}
	p.logger.Sugar().Infow("transaction submitted", "type", tx.TxType(), "hash", hash.Hex())
	return hash, nil
}

// SubmitTxsBatch implements Provider.
func (p *HTTPProvider) SubmitTxsBatch(ctx context.Context, txs []*types.SignedTransaction, ethSignatures []*types.EthSignature) ([]common.Hash, error) {
	entries := make([]interface{}, len(txs))
	for i, signed := range txs {
		entries[i] = map[string]interface{}{
			"tx":        signed.Tx,
			"signature": signed.EthereumSignature,
		}
	}
	var hashes []common.Hash
	if err := p.call(ctx, "submit_txs_batch", []interface{}{entries, ethSignatures}, &hashes); err != nil {
		return nil, err
	}
	p.logger.Sugar().Infow("batch submitted", "size", len(txs))
	return hashes, nil
}

// ContractAddress implements Provider.
func (p *HTTPProvider) ContractAddress(ctx context.Context) (*ContractAddress, error) {
	var addr ContractAddress
	if err := p.call(ctx, "contract_address", []interface{}{}, &addr); err != nil {
		return nil, err
	}
	return &addr, nil
}
