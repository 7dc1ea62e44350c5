package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/Mohsinsiddi/txscan/internal/chain"
	"github.com/Mohsinsiddi/txscan/internal/config"
	"github.com/Mohsinsiddi/txscan/internal/rpc"
	"go.uber.org/zap"
)

// lookupChain resolves name (or the configured default) in the registry.
func lookupChain(name string) (*chain.Chain, error) {
	if name == "" {
		name = cfg.DefaultNetwork
	}
	c, err := chain.NewRegistry().GetByName(name)
	if errors.Is(err, chain.ErrChainNotFound) {
		return nil, fmt.Errorf("unknown chain %q, run `txscan network list` to see all chains: %w", name, err)
	}
	return c, err
}

// chainRPCs returns custom RPCs first, then the built-in ones for mode.
func chainRPCs(c *chain.Chain, mode string) []string {
	var rpcs []string
	rpcs = append(rpcs, cfg.GetRPCs(c.Name)...)
	return append(rpcs, c.RPCs(mode)...)
}

func pickBestRPC(ctx context.Context, c *chain.Chain, mode string) (string, error) {
	rpcs := chainRPCs(c, mode)
	if len(rpcs) == 0 {
		return "", fmt.Errorf("no RPCs configured for %s (%s), add one with `txscan rpc add %s <url>`", c.Name, mode, c.Name)
	}
	ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	url, err := rpc.Best(ctx, rpcs, rpc.Algorithm(cfg.RPCAlgorithm))
	if err != nil {
		return "", fmt.Errorf("selecting RPC for %s: %w", c.Name, err)
	}
	return url, nil
}

// connect dials rpcURL, or the best endpoint of the named chain when no URL
// is given.
func connect(ctx context.Context, chainName, rpcURL string, opts ...chain.NodeOption) (*chain.NodeClient, error) {
	if rpcURL == "" {
		c, err := lookupChain(chainName)
		if err != nil {
			return nil, err
		}
		if rpcURL, err = pickBestRPC(ctx, c, cfg.NetworkMode); err != nil {
			return nil, err
		}
	}
	opts = append([]chain.NodeOption{chain.WithCallTimeout(cfg.CallTimeout())}, opts...)
	node, err := chain.DialNode(ctx, rpcURL, opts...)
	if err != nil {
		return nil, err
	}
	log.Debug("using rpc", zap.String("url", rpcURL))
	return node, nil
}

// identifyChain matches the chain ID reported by a node against the selected
// chain. With no selection the registry names the node's chain, if known.
// The registry only carries mainnet IDs, so testnet nodes and chains without
// a fixed ID (local) are never reported as mismatched. mismatch is true when
// the node serves a different chain than selected; c is then the chain the
// node actually runs, or nil when the registry does not know it.
func identifyChain(selected *chain.Chain, mode string, id *big.Int) (c *chain.Chain, mismatch bool) {
	var known *chain.Chain
	if id != nil && id.IsInt64() {
		known, _ = chain.NewRegistry().GetByChainID(id.Int64())
	}
	switch {
	case selected == nil:
		return known, false
	case selected.ChainID == 0, mode == "testnet":
		return selected, false
	case id == nil || !id.IsInt64() || id.Int64() != selected.ChainID:
		return known, true
	}
	return selected, false
}

// parseBound parses a positional block number argument.
func parseBound(name, arg string) (*uint64, error) {
	n, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: must be a non-negative block number", name, arg)
	}
	return &n, nil
}
