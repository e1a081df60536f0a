package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"codemarket/internal/domain"

	"github.com/cenkalti/backoff/v4"
)

// Default configuration values.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 500 * time.Millisecond
	DefaultMaxDelay   = 5 * time.Second
)

// JSON-RPC error code used by wallets when the user declines to sign
const codeUserRejected = 4001

// RPCClient talks to an Ethereum JSON-RPC endpoint whose node manages the
// accounts (a dev node or a signer proxy).
type RPCClient struct {
	endpoint   string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	maxDelay   time.Duration
	requestID  atomic.Uint64
}

// ClientOption configures RPCClient.
type ClientOption func(*RPCClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *RPCClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts for read calls.
func WithMaxRetries(n int) ClientOption {
	return func(c *RPCClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial and maximum retry delays.
func WithRetryDelay(initial, max time.Duration) ClientOption {
	return func(c *RPCClient) {
		c.retryDelay = initial
		c.maxDelay = max
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *RPCClient) {
		c.client = client
	}
}

// NewRPCClient creates a wallet client for endpoint.
func NewRPCClient(endpoint string, opts ...ClientOption) *RPCClient {
	c := &RPCClient{
		endpoint:   endpoint,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		maxDelay:   DefaultMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

type sendTxParams struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

// ConnectWallet resolves the account to act as from eth_accounts
func (c *RPCClient) ConnectWallet(ctx context.Context, requested string) (string, error) {
	var accounts []string
	if err := c.callWithRetry(ctx, "eth_accounts", []interface{}{}, &accounts); err != nil {
		return "", fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return "", ErrNoAccounts
	}

	if requested == "" {
		return ChecksumAddress(accounts[0])
	}
	for _, a := range accounts {
		if strings.EqualFold(a, requested) {
			return ChecksumAddress(a)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownAccount, requested)
}

// SendTransaction submits eth_sendTransaction once. Payments are never
// retried: a timed-out request may still have been broadcast.
func (c *RPCClient) SendTransaction(ctx context.Context, from, to string, amountWei *big.Int) (string, error) {
	if from == "" {
		return "", &TransactionError{From: from, To: to, Err: domain.ErrWalletDisconnected}
	}
	if amountWei == nil || amountWei.Sign() < 0 {
		return "", &TransactionError{From: from, To: to, Err: errors.New("invalid amount")}
	}

	params := sendTxParams{From: from, To: to, Value: "0x" + amountWei.Text(16)}

	var hash string
	if err := c.call(ctx, "eth_sendTransaction", []interface{}{params}, &hash); err != nil {
		var rpcErr *rpcError
		if errors.As(err, &rpcErr) && rpcErr.Code == codeUserRejected {
			err = fmt.Errorf("%w: %s", ErrRejected, rpcErr.Message)
		}
		return "", &TransactionError{From: from, To: to, Err: err}
	}
	if hash == "" {
		return "", &TransactionError{From: from, To: to, Err: errors.New("empty transaction hash")}
	}
	return hash, nil
}

// callWithRetry performs an idempotent call with exponential backoff.
// RPC-level errors are permanent; transport errors are retried.
func (c *RPCClient) callWithRetry(ctx context.Context, method string, params []interface{}, result interface{}) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryDelay
	b.MaxInterval = c.maxDelay
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)

	return backoff.Retry(func() error {
		err := c.call(ctx, method, params, result)
		var rpcErr *rpcError
		if errors.As(err, &rpcErr) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// call performs a single JSON-RPC round trip.
func (c *RPCClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if result != nil && len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}

	return nil
}
