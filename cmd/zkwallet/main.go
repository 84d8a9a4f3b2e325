package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/syncwave/zkwallet-go/pkg/config"
	"github.com/syncwave/zkwallet-go/pkg/ethsigner"
	"github.com/syncwave/zkwallet-go/pkg/logger"
	"github.com/syncwave/zkwallet-go/pkg/provider"
	"github.com/syncwave/zkwallet-go/pkg/token"
	"github.com/syncwave/zkwallet-go/pkg/tokencache"
	"github.com/syncwave/zkwallet-go/pkg/tokencache/badger"
	"github.com/syncwave/zkwallet-go/pkg/tokencache/memory"
	"github.com/syncwave/zkwallet-go/pkg/tokencache/redis"
	"github.com/syncwave/zkwallet-go/pkg/types"
	"github.com/syncwave/zkwallet-go/pkg/wallet"
	"github.com/syncwave/zkwallet-go/pkg/zksigner/inMemorySigner"
)

func main() {
	app := &cli.App{
		Name:  "zkwallet",
		Usage: "Sign and submit rollup transactions",
		Description: `A command line wallet for a zkSync-v1-style layer-2 rollup.

It can:
- Query account state and the network token list
- Build, sign and submit transfers, withdrawals and key rotations
- Sign swap orders out of band
- Bundle several transactions into one atomically authorized batch`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "network",
				Usage:   "Target network (" + config.GetSupportedNetworksString() + ")",
				Value:   string(config.NetworkMainnet),
				EnvVars: []string{config.EnvNetwork},
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Usage:   "Operator JSON-RPC endpoint (overrides the network default)",
				EnvVars: []string{config.EnvOperatorEndpoint},
			},
			&cli.StringFlag{
				Name:    "eth-key",
				Usage:   "Hex-encoded Ethereum private key",
				EnvVars: []string{config.EnvEthPrivateKey},
			},
			&cli.StringFlag{
				Name:    "l2-seed",
				Usage:   "Hex-encoded seed for the rollup signing key",
				EnvVars: []string{config.EnvL2Seed},
			},
			&cli.StringFlag{
				Name:  "cache-backend",
				Usage: "Token cache backend: none, memory, badger, redis",
				Value: string(config.CacheBackendNone),
			},
			&cli.StringFlag{
				Name:    "cache-path",
				Usage:   "Directory for the badger cache backend",
				EnvVars: []string{config.EnvCachePath},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Address for the redis cache backend (host:port)",
				EnvVars: []string{config.EnvRedisAddress},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable debug logging",
				EnvVars: []string{config.EnvVerbose},
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the signed payload instead of submitting it",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "account",
				Usage:  "Show the operator's view of the wallet account",
				Action: accountCommand,
			},
			{
				Name:   "tokens",
				Usage:  "List the network token set",
				Action: tokensCommand,
			},
			{
				Name:  "transfer",
				Usage: "Transfer a token to another rollup account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Usage: "Recipient address", Required: true},
					&cli.StringFlag{Name: "token", Usage: "Token id, address or symbol", Required: true},
					&cli.StringFlag{Name: "amount", Usage: "Amount in token units (e.g. 1.5)", Required: true},
					&cli.StringFlag{Name: "fee", Usage: "Fee in token units (default: operator quote)"},
				},
				Action: transferCommand,
			},
			{
				Name:  "withdraw",
				Usage: "Withdraw a token to an L1 address",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Usage: "L1 recipient address", Required: true},
					&cli.StringFlag{Name: "token", Usage: "Token id, address or symbol", Required: true},
					&cli.StringFlag{Name: "amount", Usage: "Amount in token units", Required: true},
					&cli.StringFlag{Name: "fee", Usage: "Fee in token units (default: operator quote)"},
					&cli.BoolFlag{Name: "fast", Usage: "Request fast processing"},
				},
				Action: withdrawCommand,
			},
			{
				Name:  "change-pubkey",
				Usage: "Register the wallet's L2 signing key on the rollup",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "fee-token", Usage: "Token the fee is paid in", Required: true},
					&cli.StringFlag{
						Name:  "auth",
						Usage: "Authorization mode: Onchain, ECDSA, CREATE2, ECDSALegacyMessage",
						Value: string(types.ChangePubKeyAuthTypeECDSA),
					},
				},
				Action: changePubKeyCommand,
			},
			{
				Name:  "sign-order",
				Usage: "Sign one half of an atomic swap",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "sell", Usage: "Token to sell", Required: true},
					&cli.StringFlag{Name: "buy", Usage: "Token to buy", Required: true},
					&cli.StringFlag{Name: "ratio", Usage: "Exchange rate as sell:buy (e.g. 1:2000)", Required: true},
					&cli.StringFlag{Name: "amount", Usage: "Amount to sell in token units (empty for a limit order)"},
					&cli.StringFlag{Name: "recipient", Usage: "Recipient address (default: own address)"},
				},
				Action: signOrderCommand,
			},
			{
				Name:  "batch",
				Usage: "Sign several transfers as one atomically authorized batch",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "transfer",
						Usage:    "Batch member as to:token:amount[:fee], repeatable",
						Required: true,
					},
				},
				Action: batchCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// createWallet assembles the wallet and its collaborators from CLI flags.
// The returned cleanup closes the token cache.
func createWallet(c *cli.Context) (*wallet.Wallet, func(), error) {
	cfg := &config.WalletConfig{
		Network:       config.Network(c.String("network")),
		Endpoint:      c.String("endpoint"),
		EthPrivateKey: c.String("eth-key"),
		L2Seed:        c.String("l2-seed"),
		CacheBackend:  config.CacheBackend(c.String("cache-backend")),
		CachePath:     c.String("cache-path"),
		RedisAddress:  c.String("redis-address"),
		Debug:         c.Bool("verbose"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	zapLogger, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	p, err := provider.NewHTTPProvider(&provider.HTTPProviderConfig{
		Endpoint:          cfg.Endpoint,
		RequestTimeout:    cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            zapLogger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create provider: %w", err)
	}

	ethSigner, err := ethsigner.NewPrivateKeySignerFromHex(strings.TrimPrefix(cfg.EthPrivateKey, "0x"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create ethereum signer: %w", err)
	}

	opts := wallet.Options{Logger: zapLogger}
	if cfg.L2Seed != "" {
		seed, err := hex.DecodeString(strings.TrimPrefix(cfg.L2Seed, "0x"))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid l2 seed: %w", err)
		}
		zk, err := inMemorySigner.NewSignerFromSeed(seed)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create rollup signer: %w", err)
		}
		opts.ZkSigner = zk
	}

	cache, err := createCache(cfg, zapLogger)
	if err != nil {
		return nil, nil, err
	}
	opts.Cache = cache

	w, err := wallet.NewWallet(p, ethSigner, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	cleanup := func() {
		if cache != nil {
			_ = cache.Close()
		}
	}
	return w, cleanup, nil
}

func createCache(cfg *config.WalletConfig, zapLogger *zap.Logger) (tokencache.Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendNone, "":
		return nil, nil
	case config.CacheBackendMemory:
		return memory.NewMemoryCache(), nil
	case config.CacheBackendBadger:
		return badger.NewBadgerCache(cfg.CachePath, zapLogger)
	case config.CacheBackendRedis:
		return redis.NewRedisCache(&redis.RedisConfig{Address: cfg.RedisAddress}, zapLogger)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.CacheBackend)
	}
}

// parseTokenAmount resolves a token and converts a human amount into minor
// units; empty input yields a nil amount.
func parseTokenAmount(ctx context.Context, w *wallet.Wallet, like token.Like, humanAmount string) (*token.Token, *big.Int, error) {
	set, err := w.Tokens(ctx)
	if err != nil {
		return nil, nil, err
	}
	tok, err := set.Resolve(like)
	if err != nil {
		return nil, nil, err
	}
	if humanAmount == "" {
		return tok, nil, nil
	}
	amount, err := tok.Parse(humanAmount)
	if err != nil {
		return nil, nil, err
	}
	return tok, amount, nil
}

// finish either submits the signed transaction or, under --dry-run, prints
// its JSON payload.
func finish(c *cli.Context, w *wallet.Wallet, signed *types.SignedTransaction) error {
	if c.Bool("dry-run") {
		return printJSON(signed)
	}
	hash, err := w.Submit(c.Context, signed)
	if err != nil {
		return fmt.Errorf("failed to submit transaction: %w", err)
	}
	fmt.Printf("submitted: %s\n", hash.Hex())
	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func accountCommand(c *cli.Context) error {
	w, cleanup, err := createWallet(c)
	if err != nil {
		return err
	}
	defer cleanup()

	info, err := w.Provider().AccountInfo(c.Context, w.Address())
	if err != nil {
		return fmt.Errorf("failed to fetch account info: %w", err)
	}
	return printJSON(info)
}

func tokensCommand(c *cli.Context) error {
	w, cleanup, err := createWallet(c)
	if err != nil {
		return err
	}
	defer cleanup()

	set, err := w.Tokens(c.Context)
	if err != nil {
		return fmt.Errorf("failed to fetch token list: %w", err)
	}
	return printJSON(set.Tokens())
}

func transferCommand(c *cli.Context) error {
	w, cleanup, err := createWallet(c)
	if err != nil {
		return err
	}
	defer cleanup()

	like := token.Like(c.String("token"))
	tok, amount, err := parseTokenAmount(c.Context, w, like, c.String("amount"))
	if err != nil {
		return err
	}
	var fee *big.Int
	if feeStr := c.String("fee"); feeStr != "" {
		if fee, err = tok.Parse(feeStr); err != nil {
			return err
		}
	}

	signed, err := w.SignTransfer(c.Context, &wallet.TransferIntent{
		To:     common.HexToAddress(c.String("to")),
		Token:  like,
		Amount: amount,
		Fee:    fee,
	})
	if err != nil {
		return fmt.Errorf("failed to sign transfer: %w", err)
	}
	return finish(c, w, signed)
}

func withdrawCommand(c *cli.Context) error {
	w, cleanup, err := createWallet(c)
	if err != nil {
		return err
	}
	defer cleanup()

	like := token.Like(c.String("token"))
	tok, amount, err := parseTokenAmount(c.Context, w, like, c.String("amount"))
	if err != nil {
		return err
	}
	var fee *big.Int
	if feeStr := c.String("fee"); feeStr != "" {
		if fee, err = tok.Parse(feeStr); err != nil {
			return err
		}
	}

	signed, err := w.SignWithdraw(c.Context, &wallet.WithdrawIntent{
		To:             common.HexToAddress(c.String("to")),
		Token:          like,
		Amount:         amount,
		Fee:            fee,
		FastProcessing: c.Bool("fast"),
	})
	if err != nil {
		return fmt.Errorf("failed to sign withdrawal: %w", err)
	}
	return finish(c, w, signed)
}

func changePubKeyCommand(c *cli.Context) error {
	w, cleanup, err := createWallet(c)
	if err != nil {
		return err
	}
	defer cleanup()

	signed, err := w.SignChangePubKey(c.Context, &wallet.ChangePubKeyIntent{
		FeeToken: token.Like(c.String("fee-token")),
		AuthType: types.ChangePubKeyAuthType(c.String("auth")),
	})
	if err != nil {
		return fmt.Errorf("failed to sign key rotation: %w", err)
	}
	return finish(c, w, signed)
}

func signOrderCommand(c *cli.Context) error {
	w, cleanup, err := createWallet(c)
	if err != nil {
		return err
	}
	defer cleanup()

	sell := token.Like(c.String("sell"))
	buy := token.Like(c.String("buy"))

	ratioParts := strings.SplitN(c.String("ratio"), ":", 2)
	if len(ratioParts) != 2 {
		return fmt.Errorf("ratio must have the form sell:buy, got %q", c.String("ratio"))
	}
	sellRatio, ok := new(big.Int).SetString(ratioParts[0], 10)
	if !ok {
		return fmt.Errorf("invalid ratio value %q", ratioParts[0])
	}
	buyRatio, ok := new(big.Int).SetString(ratioParts[1], 10)
	if !ok {
		return fmt.Errorf("invalid ratio value %q", ratioParts[1])
	}

	_, amount, err := parseTokenAmount(c.Context, w, sell, c.String("amount"))
	if err != nil {
		return err
	}

	intent := &wallet.OrderIntent{
		TokenSell: sell,
		TokenBuy:  buy,
		Ratio:     map[token.Like]*big.Int{sell: sellRatio, buy: buyRatio},
		RatioType: types.RatioTypeToken,
		Amount:    amount,
	}
	if recipient := c.String("recipient"); recipient != "" {
		intent.Recipient = common.HexToAddress(recipient)
	}

	order, err := w.SignOrder(c.Context, intent)
	if err != nil {
		return fmt.Errorf("failed to sign order: %w", err)
	}
	return printJSON(order)
}

func batchCommand(c *cli.Context) error {
	w, cleanup, err := createWallet(c)
	if err != nil {
		return err
	}
	defer cleanup()

	var entries []wallet.BatchEntry
	for _, spec := range c.StringSlice("transfer") {
		parts := strings.Split(spec, ":")
		if len(parts) != 3 && len(parts) != 4 {
			return fmt.Errorf("transfer must have the form to:token:amount[:fee], got %q", spec)
		}
		like := token.Like(parts[1])
		tok, amount, err := parseTokenAmount(c.Context, w, like, parts[2])
		if err != nil {
			return err
		}
		var fee *big.Int
		if len(parts) == 4 {
			if fee, err = tok.Parse(parts[3]); err != nil {
				return err
			}
		}
		entries = append(entries, wallet.BatchEntry{Transfer: &wallet.TransferIntent{
			To:     common.HexToAddress(parts[0]),
			Token:  like,
			Amount: amount,
			Fee:    fee,
		}})
	}

	batch, err := w.SignBatch(c.Context, entries, nil)
	if err != nil {
		return fmt.Errorf("failed to sign batch: %w", err)
	}

	if c.Bool("dry-run") {
		fmt.Printf("batch message:\n%s\n\n", batch.Message)
		return printJSON(batch.Transactions)
	}

	hashes, err := w.SubmitBatch(c.Context, batch)
	if err != nil {
		return fmt.Errorf("failed to submit batch: %w", err)
	}
	for _, h := range hashes {
		fmt.Printf("submitted: %s\n", h.Hex())
	}
	return nil
}
