// Package chain submits approved wallets to the crowdsale contract's
// whitelist in one transaction per flush.
package chain

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"kycgate/internal/platform/config"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ErrNotWhitelister means the configured sender is not the contract's
// whitelister, so every submission would revert.
var ErrNotWhitelister = errors.New("sender has no whitelisting permission")

// RPCWhitelister calls the contract through a node's JSON-RPC endpoint. The
// node holds the whitelister key and signs eth_sendTransaction.
type RPCWhitelister struct {
	rpcURL       string
	fromAddress  string
	contractAddr string
	gasLimit     uint64
	maxBatch     int
	httpClient   *http.Client
	logger       *slog.Logger
}

type Option func(*RPCWhitelister)

func WithLogger(logger *slog.Logger) Option {
	return func(w *RPCWhitelister) {
		w.logger = logger
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(w *RPCWhitelister) {
		w.httpClient = c
	}
}

// WithMaxBatch caps the addresses accepted in one transaction.
func WithMaxBatch(n int) Option {
	return func(w *RPCWhitelister) {
		w.maxBatch = n
	}
}

func NewRPC(cfg config.Chain, opts ...Option) (*RPCWhitelister, error) {
	if strings.TrimSpace(cfg.RPCURL) == "" {
		return nil, fmt.Errorf("missing CHAIN_RPC_URL")
	}
	if !addressPattern.MatchString(strings.TrimSpace(cfg.WhitelisterAddress)) {
		return nil, fmt.Errorf("invalid WHITELISTER_ADDRESS")
	}
	if !addressPattern.MatchString(strings.TrimSpace(cfg.ContractAddress)) {
		return nil, fmt.Errorf("invalid WHITELIST_CONTRACT_ADDRESS")
	}
	gasLimit := cfg.GasLimit
	if gasLimit == 0 {
		gasLimit = 4_000_000
	}
	w := &RPCWhitelister{
		rpcURL:       strings.TrimSpace(cfg.RPCURL),
		fromAddress:  strings.ToLower(strings.TrimSpace(cfg.WhitelisterAddress)),
		contractAddr: strings.TrimSpace(cfg.ContractAddress),
		gasLimit:     gasLimit,
		httpClient:   &http.Client{Timeout: 20 * time.Second},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// WhitelistMany whitelists wallets[i] under kycIDs[i]. The call is all or
// nothing; it returns the transaction hash.
func (w *RPCWhitelister) WhitelistMany(ctx context.Context, wallets, kycIDs []string) (string, error) {
	if len(wallets) == 0 {
		return "", fmt.Errorf("no wallets to whitelist")
	}
	if len(wallets) != len(kycIDs) {
		return "", fmt.Errorf("addresses and kyc ids should be the same length")
	}
	if w.maxBatch > 0 && len(wallets) > w.maxBatch {
		return "", fmt.Errorf("%d addresses are too many for one transaction (max %d)", len(wallets), w.maxBatch)
	}

	data, err := encodeAddManyToWhitelist(wallets, kycIDs)
	if err != nil {
		return "", err
	}
	if err := w.checkWhitelister(ctx); err != nil {
		return "", err
	}

	txObj := map[string]string{
		"from":  w.fromAddress,
		"to":    w.contractAddr,
		"gas":   fmt.Sprintf("0x%x", w.gasLimit),
		"data":  "0x" + hex.EncodeToString(data),
		"value": "0x0",
	}
	var txHash string
	if err := w.rpc(ctx, "eth_sendTransaction", []any{txObj}, &txHash); err != nil {
		return "", fmt.Errorf("send whitelist transaction: %w", err)
	}
	if !strings.HasPrefix(txHash, "0x") {
		return "", fmt.Errorf("invalid tx hash response")
	}
	w.logger.InfoContext(ctx, "whitelist transaction sent", "tx_hash", txHash, "count", len(wallets))
	return txHash, nil
}

func (w *RPCWhitelister) checkWhitelister(ctx context.Context) error {
	call := map[string]string{
		"to":   w.contractAddr,
		"data": "0x" + hex.EncodeToString(selector("whitelister()")),
	}
	var result string
	if err := w.rpc(ctx, "eth_call", []any{call, "latest"}, &result); err != nil {
		return fmt.Errorf("read whitelister: %w", err)
	}
	allowed, err := decodeAddressWord(result)
	if err != nil {
		return err
	}
	if allowed != w.fromAddress {
		return fmt.Errorf("%w: contract allows %s", ErrNotWhitelister, allowed)
	}
	return nil
}

func (w *RPCWhitelister) rpc(ctx context.Context, method string, params []any, out any) error {
	reqBody, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.rpcURL, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var payload struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return err
	}
	if payload.Error != nil {
		return fmt.Errorf("rpc error %d: %s", payload.Error.Code, payload.Error.Message)
	}
	if len(payload.Result) == 0 {
		return fmt.Errorf("rpc empty result")
	}
	return json.Unmarshal(payload.Result, out)
}
