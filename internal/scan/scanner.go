// Package scan walks a block range on an EVM node and reports every
// transaction sent from or to an account, joined with its receipt.
package scan

import (
	"context"
	"iter"

	"github.com/Mohsinsiddi/txscan/internal/chain"
	"go.uber.org/zap"
)

// Wildcard matches every transaction.
const Wildcard = "*"

const (
	DefaultWindow           = 100
	DefaultProgressInterval = 1000
)

// Node is the read-only slice of a node client the scanner needs.
type Node interface {
	BlockNumber(ctx context.Context) (uint64, error)
	// BlockByNumber returns nil, nil when the node has no block at n.
	BlockByNumber(ctx context.Context, n uint64) (*chain.Block, error)
	TransactionReceipt(ctx context.Context, hash string) (*chain.Receipt, error)
}

// Request describes one scan. Nil bounds are resolved against the node.
type Request struct {
	Account string
	Start   *uint64
	End     *uint64
}

// Range is an inclusive, resolved block range.
type Range struct {
	Start uint64
	End   uint64
}

// Scanner scans block ranges on a single node.
type Scanner struct {
	node          Node
	log           *zap.Logger
	window        uint64
	progressEvery uint64
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger for bound resolution and progress lines.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.log = l
		}
	}
}

// WithWindow sets how many blocks before the end the scan starts when no
// start block is given.
func WithWindow(n uint64) Option {
	return func(s *Scanner) { s.window = n }
}

// WithProgressInterval logs a progress line for every block number divisible
// by n. Zero keeps the default.
func WithProgressInterval(n uint64) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.progressEvery = n
		}
	}
}

// New creates a Scanner reading from node.
func New(node Node, opts ...Option) *Scanner {
	s := &Scanner{
		node:          node,
		log:           zap.NewNop(),
		window:        DefaultWindow,
		progressEvery: DefaultProgressInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve fills in missing bounds. A missing end is the live chain height;
// a missing start is end minus the window, floored at zero. Supplied bounds
// are returned unchanged.
func (s *Scanner) Resolve(ctx context.Context, req Request) (Range, error) {
	var r Range

	if req.End != nil {
		r.End = *req.End
	} else {
		height, err := s.node.BlockNumber(ctx)
		if err != nil {
			return Range{}, err
		}
		r.End = height
		s.log.Info("using end block", zap.Uint64("end_block", r.End))
	}

	if req.Start != nil {
		r.Start = *req.Start
	} else {
		if r.End > s.window {
			r.Start = r.End - s.window
		}
		s.log.Info("using start block", zap.Uint64("start_block", r.Start))
	}

	s.log.Info("searching for transactions",
		zap.String("account", req.Account),
		zap.Uint64("start_block", r.Start),
		zap.Uint64("end_block", r.End))

	return r, nil
}

// Matches returns a single-pass sequence of the transactions in the request
// range that touch req.Account. Blocks are visited in ascending order and
// transactions in node order. The first node error is yielded once and ends
// the sequence; breaking out of the loop stops the scan.
func (s *Scanner) Matches(ctx context.Context, req Request) iter.Seq2[Match, error] {
	return func(yield func(Match, error) bool) {
		r, err := s.Resolve(ctx, req)
		if err != nil {
			yield(Match{}, err)
			return
		}
		if r.Start > r.End {
			return
		}

		for i := r.Start; ; i++ {
			if err := ctx.Err(); err != nil {
				yield(Match{}, err)
				return
			}
			if !s.scanBlock(ctx, req.Account, i, yield) {
				return
			}
			if i == r.End {
				return
			}
		}
	}
}

// scanBlock reports whether the scan should continue.
func (s *Scanner) scanBlock(ctx context.Context, account string, n uint64, yield func(Match, error) bool) bool {
	if n%s.progressEvery == 0 {
		s.log.Info("searching block", zap.Uint64("block", n))
	}

	block, err := s.node.BlockByNumber(ctx, n)
	if err != nil {
		yield(Match{}, err)
		return false
	}
	if block == nil || len(block.Transactions) == 0 {
		return true
	}

	for _, tx := range block.Transactions {
		if !Touches(account, tx) {
			continue
		}
		receipt, err := s.node.TransactionReceipt(ctx, tx.Hash)
		if err != nil {
			yield(Match{}, err)
			return false
		}
		if !yield(newMatch(n, tx, receipt), nil) {
			return false
		}
	}
	return true
}

// Run writes every match to sink and returns how many were written.
// It stops at the first node or sink error.
func (s *Scanner) Run(ctx context.Context, req Request, sink Sink) (int, error) {
	count := 0
	for m, err := range s.Matches(ctx, req) {
		if err != nil {
			return count, err
		}
		if err := sink.Write(m); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Touches reports whether tx was sent from or to account. Comparison is
// exact; the wildcard matches everything and an empty account nothing.
func Touches(account string, tx chain.Transaction) bool {
	if account == Wildcard {
		return true
	}
	if account == "" {
		return false
	}
	return account == tx.From || account == tx.To
}
