package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"
)

// ErrReceiptNotFound is returned when the node has no receipt for a hash.
var ErrReceiptNotFound = errors.New("receipt not found")

const defaultCallTimeout = 30 * time.Second

// NodeClient is a read-only JSON-RPC client for an EVM node.
type NodeClient struct {
	url     string
	rpc     *rpc.Client
	timeout time.Duration
	limiter *rate.Limiter
}

// NodeOption configures a NodeClient.
type NodeOption func(*NodeClient)

// WithCallTimeout bounds every individual RPC call. Zero disables the bound.
func WithCallTimeout(d time.Duration) NodeOption {
	return func(c *NodeClient) { c.timeout = d }
}

// WithRateLimit caps outgoing calls at rps requests per second.
// Calls wait for a token; nothing is dropped. rps <= 0 means unlimited.
func WithRateLimit(rps float64) NodeOption {
	return func(c *NodeClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// DialNode connects to the node at url. For HTTP endpoints no request is
// made until the first call.
func DialNode(ctx context.Context, url string, opts ...NodeOption) (*NodeClient, error) {
	if url == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}
	rc, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}
	c := &NodeClient{url: url, rpc: rc, timeout: defaultCallTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL returns the endpoint this client talks to.
func (c *NodeClient) URL() string { return c.url }

// Close releases the underlying connection.
func (c *NodeClient) Close() {
	if c.rpc != nil {
		c.rpc.Close()
	}
}

// BlockNumber returns the current chain height.
func (c *NodeClient) BlockNumber(ctx context.Context) (uint64, error) {
	var n hexutil.Uint64
	if err := c.call(ctx, &n, "eth_blockNumber"); err != nil {
		return 0, fmt.Errorf("failed to get latest block number: %w", err)
	}
	return uint64(n), nil
}

// ChainID returns the chain ID reported by the node.
func (c *NodeClient) ChainID(ctx context.Context) (*big.Int, error) {
	var id hexutil.Big
	if err := c.call(ctx, &id, "eth_chainId"); err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return id.ToInt(), nil
}

// BlockByNumber fetches block n with full transaction bodies.
// It returns nil, nil when the node has no block at that height.
func (c *NodeClient) BlockByNumber(ctx context.Context, n uint64) (*Block, error) {
	var raw *rpcBlock
	if err := c.call(ctx, &raw, "eth_getBlockByNumber", hexutil.EncodeUint64(n), true); err != nil {
		return nil, fmt.Errorf("failed to get block %d: %w", n, err)
	}
	if raw == nil {
		return nil, nil
	}
	return raw.toBlock(), nil
}

// TransactionReceipt fetches the receipt for hash.
func (c *NodeClient) TransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	var raw *rpcReceipt
	if err := c.call(ctx, &raw, "eth_getTransactionReceipt", hash); err != nil {
		return nil, fmt.Errorf("failed to get receipt for %s: %w", hash, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s", ErrReceiptNotFound, hash)
	}
	return raw.toReceipt(), nil
}

// Ping tests the endpoint and returns latency + block number.
func (c *NodeClient) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	return time.Since(start), blockNum, err
}

func (c *NodeClient) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.rpc.CallContext(ctx, result, method, args...)
}

// --- wire types ---

type rpcTransaction struct {
	Hash     string         `json:"hash"`
	From     string         `json:"from"`
	To       *string        `json:"to"`
	Gas      hexutil.Uint64 `json:"gas"`
	GasPrice *hexutil.Big   `json:"gasPrice"`
}

type rpcBlock struct {
	Number       hexutil.Uint64   `json:"number"`
	Hash         string           `json:"hash"`
	Transactions []rpcTransaction `json:"transactions"`
}

type rpcReceipt struct {
	TransactionHash   string         `json:"transactionHash"`
	From              string         `json:"from"`
	To                *string        `json:"to"`
	GasUsed           hexutil.Uint64 `json:"gasUsed"`
	CumulativeGasUsed hexutil.Uint64 `json:"cumulativeGasUsed"`
	ContractAddress   *string        `json:"contractAddress"`
}

func (b *rpcBlock) toBlock() *Block {
	block := &Block{Number: uint64(b.Number), Hash: b.Hash}
	if len(b.Transactions) == 0 {
		return block
	}
	block.Transactions = make([]Transaction, 0, len(b.Transactions))
	for _, rt := range b.Transactions {
		tx := Transaction{
			Hash: rt.Hash,
			From: rt.From,
			To:   deref(rt.To),
			Gas:  uint64(rt.Gas),
		}
		if rt.GasPrice != nil {
			tx.GasPrice = rt.GasPrice.ToInt()
		}
		block.Transactions = append(block.Transactions, tx)
	}
	return block
}

func (r *rpcReceipt) toReceipt() *Receipt {
	return &Receipt{
		TransactionHash:   r.TransactionHash,
		From:              r.From,
		To:                deref(r.To),
		GasUsed:           uint64(r.GasUsed),
		CumulativeGasUsed: uint64(r.CumulativeGasUsed),
		ContractAddress:   deref(r.ContractAddress),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
