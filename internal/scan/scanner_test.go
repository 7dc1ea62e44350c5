package scan

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/txscan/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// fakeNode serves blocks and receipts from memory and records every call.
type fakeNode struct {
	height     uint64
	heightErr  error
	blocks     map[uint64]*chain.Block
	blockErr   map[uint64]error
	receipts   map[string]*chain.Receipt // overrides the derived receipt
	receiptErr error

	heightCalls  int
	blockCalls   []uint64
	receiptCalls []string
}

func newFakeNode() *fakeNode {
	return &fakeNode{blocks: map[uint64]*chain.Block{}, blockErr: map[uint64]error{}, receipts: map[string]*chain.Receipt{}}
}

func (f *fakeNode) BlockNumber(context.Context) (uint64, error) {
	f.heightCalls++
	return f.height, f.heightErr
}

func (f *fakeNode) BlockByNumber(_ context.Context, n uint64) (*chain.Block, error) {
	f.blockCalls = append(f.blockCalls, n)
	if err := f.blockErr[n]; err != nil {
		return nil, err
	}
	return f.blocks[n], nil
}

// TransactionReceipt derives the receipt from the stored transaction so each
// test only has to describe blocks.
func (f *fakeNode) TransactionReceipt(_ context.Context, hash string) (*chain.Receipt, error) {
	f.receiptCalls = append(f.receiptCalls, hash)
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	if r, ok := f.receipts[hash]; ok {
		return r, nil
	}
	for _, b := range f.blocks {
		for i, tx := range b.Transactions {
			if tx.Hash == hash {
				r := &chain.Receipt{
					TransactionHash:   tx.Hash,
					From:              tx.From,
					To:                tx.To,
					GasUsed:           21000,
					CumulativeGasUsed: 21000 * uint64(i+1),
				}
				if tx.To == "" {
					r.ContractAddress = "0xC0FFEE"
				}
				return r, nil
			}
		}
	}
	return nil, chain.ErrReceiptNotFound
}

func (f *fakeNode) addBlock(n uint64, txs ...chain.Transaction) {
	f.blocks[n] = &chain.Block{Number: n, Transactions: txs}
}

func tx(hash, from, to string) chain.Transaction {
	return chain.Transaction{Hash: hash, From: from, To: to, Gas: 90000, GasPrice: big.NewInt(1_000_000_000)}
}

func u64(n uint64) *uint64 { return &n }

func observedScanner(node Node, opts ...Option) (*Scanner, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	opts = append([]Option{WithLogger(zap.New(core))}, opts...)
	return New(node, opts...), logs
}

func collect(t *testing.T, s *Scanner, req Request) []Match {
	t.Helper()
	var got []Match
	_, err := s.Run(context.Background(), req, SinkFunc(func(m Match) error {
		got = append(got, m)
		return nil
	}))
	require.NoError(t, err)
	return got
}

func progressBlocks(logs *observer.ObservedLogs) []uint64 {
	var out []uint64
	for _, e := range logs.FilterMessage("searching block").All() {
		out = append(out, e.ContextMap()["block"].(uint64))
	}
	return out
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestResolveKeepsSuppliedBounds(t *testing.T) {
	node := newFakeNode()
	node.height = 9999
	s := New(node)

	r, err := s.Resolve(context.Background(), Request{Account: "0xABC", Start: u64(3), End: u64(7)})
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 3, End: 7}, r)
	assert.Zero(t, node.heightCalls, "supplied end must not read the chain height")
}

func TestResolveExplicitZeroStart(t *testing.T) {
	node := newFakeNode()
	node.height = 500
	s := New(node)

	r, err := s.Resolve(context.Background(), Request{Start: u64(0)})
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 0, End: 500}, r, "block 0 is a real bound, not a missing one")
}

func TestResolveDefaultStart(t *testing.T) {
	tests := []struct {
		name  string
		end   uint64
		start uint64
	}{
		{"well past window", 500, 400},
		{"exactly window", 100, 0},
		{"below window clamps to zero", 42, 0},
		{"genesis", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(newFakeNode()).Resolve(context.Background(), Request{End: u64(tt.end)})
			require.NoError(t, err)
			assert.Equal(t, tt.start, r.Start)
			assert.Equal(t, tt.end, r.End)
			assert.LessOrEqual(t, r.Start, r.End)
		})
	}
}

func TestResolveCustomWindow(t *testing.T) {
	r, err := New(newFakeNode(), WithWindow(10)).Resolve(context.Background(), Request{End: u64(50)})
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 40, End: 50}, r)
}

func TestResolveEndIsLiveHeight(t *testing.T) {
	node := newFakeNode()
	s := New(node)

	node.height = 10
	r1, err := s.Resolve(context.Background(), Request{})
	require.NoError(t, err)
	node.height = 20
	r2, err := s.Resolve(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, uint64(10), r1.End)
	assert.Equal(t, uint64(20), r2.End, "height must not be cached")
	assert.Equal(t, 2, node.heightCalls)
}

func TestResolveHeightError(t *testing.T) {
	node := newFakeNode()
	node.heightErr = errors.New("node unavailable")

	_, err := New(node).Resolve(context.Background(), Request{})
	require.Error(t, err)
}

// Both bounds omitted, height 500.
func TestResolveAnnouncesBoundsBeforeScan(t *testing.T) {
	node := newFakeNode()
	node.height = 500
	s, logs := observedScanner(node)

	_ = collect(t, s, Request{Account: "0xDEF"})

	entries := logs.All()
	require.GreaterOrEqual(t, len(entries), 3)

	assert.Equal(t, "using end block", entries[0].Message)
	assert.Equal(t, uint64(500), entries[0].ContextMap()["end_block"])
	assert.Equal(t, "using start block", entries[1].Message)
	assert.Equal(t, uint64(400), entries[1].ContextMap()["start_block"])

	summary := entries[2].ContextMap()
	assert.Equal(t, "searching for transactions", entries[2].Message)
	assert.Equal(t, "0xDEF", summary["account"])
	assert.Equal(t, uint64(400), summary["start_block"])
	assert.Equal(t, uint64(500), summary["end_block"])

	require.NotEmpty(t, node.blockCalls)
	assert.Equal(t, uint64(400), node.blockCalls[0])
	assert.Equal(t, uint64(500), node.blockCalls[len(node.blockCalls)-1])
}

func TestResolveSuppliedBoundsAreNotAnnounced(t *testing.T) {
	s, logs := observedScanner(newFakeNode())
	_, err := s.Resolve(context.Background(), Request{Start: u64(1), End: u64(2)})
	require.NoError(t, err)

	assert.Zero(t, logs.FilterMessage("using end block").Len())
	assert.Zero(t, logs.FilterMessage("using start block").Len())
	assert.Equal(t, 1, logs.FilterMessage("searching for transactions").Len())
}

// ---------------------------------------------------------------------------
// Matches / Run
// ---------------------------------------------------------------------------

// One matching transaction in a single-block range.
func TestScanSingleMatch(t *testing.T) {
	node := newFakeNode()
	node.addBlock(10, tx("0x01", "0xABC", "0xdef"))
	s := New(node)

	got := collect(t, s, Request{Account: "0xABC", Start: u64(10), End: u64(10)})
	require.Len(t, got, 1)

	m := got[0]
	assert.Equal(t, uint64(10), m.BlockNumber)
	assert.Equal(t, "0x01", m.TxHash)
	assert.Equal(t, "0xABC", m.From)
	assert.Equal(t, "0xdef", m.To)
	assert.Equal(t, uint64(90000), m.Gas, "gas is the transaction's limit")
	assert.Equal(t, uint64(21000), m.GasUsed)
	assert.Equal(t, uint64(21000), m.CumulativeGasUsed)
	assert.Equal(t, big.NewInt(1_000_000_000), m.GasPrice)
	assert.Empty(t, m.ContractAddress)

	assert.Equal(t, []string{"0x01"}, node.receiptCalls)

	var buf bytes.Buffer
	require.NoError(t, (&TextPrinter{w: &buf}).Write(m))
	assert.Equal(t, 8, bytes.Count(bytes.TrimSpace(buf.Bytes()), []byte("\n"))+1)
}

// Wildcard over [0, 2000].
func TestScanWildcardWithProgress(t *testing.T) {
	node := newFakeNode()
	node.addBlock(0, tx("0xg", "0x0", "0x1"))
	node.addBlock(5, tx("0xa", "0x1", "0x2"), tx("0xb", "0x3", ""))
	node.addBlock(1500, tx("0xc", "0x4", "0x5"))
	s, logs := observedScanner(node)

	got := collect(t, s, Request{Account: Wildcard, Start: u64(0), End: u64(2000)})

	var hashes []string
	for _, m := range got {
		hashes = append(hashes, m.TxHash)
	}
	assert.Equal(t, []string{"0xg", "0xa", "0xb", "0xc"}, hashes)
	assert.Equal(t, []uint64{0, 1000, 2000}, progressBlocks(logs))
	assert.Len(t, node.blockCalls, 2001)
	assert.Equal(t, "0xC0FFEE", got[2].ContractAddress, "contract creation matches the wildcard")
}

func TestScanProgressInterval(t *testing.T) {
	s, logs := observedScanner(newFakeNode(), WithProgressInterval(10))
	_ = collect(t, s, Request{Account: "0x1", Start: u64(5), End: u64(31)})
	assert.Equal(t, []uint64{10, 20, 30}, progressBlocks(logs))
}

// A missing block is skipped without error.
func TestScanSkipsMissingBlocks(t *testing.T) {
	node := newFakeNode()
	node.addBlock(1, tx("0x01", "0xABC", "0x1"))
	// 2 is missing
	node.addBlock(3, tx("0x03", "0x1", "0xABC"))
	s := New(node)

	got := collect(t, s, Request{Account: "0xABC", Start: u64(1), End: u64(3)})
	require.Len(t, got, 2)
	assert.Equal(t, "0x01", got[0].TxHash)
	assert.Equal(t, "0x03", got[1].TxHash)
	assert.Equal(t, []uint64{1, 2, 3}, node.blockCalls)
}

func TestScanRangeBeyondTip(t *testing.T) {
	node := newFakeNode()
	node.addBlock(100, tx("0x01", "0xABC", "0x1"))
	s := New(node)

	got := collect(t, s, Request{Account: "0xABC", Start: u64(100), End: u64(110)})
	assert.Len(t, got, 1)
	assert.Len(t, node.blockCalls, 11)
}

func TestScanEmptyBlockProducesNothing(t *testing.T) {
	node := newFakeNode()
	node.addBlock(7)
	s := New(node)

	got := collect(t, s, Request{Account: Wildcard, Start: u64(7), End: u64(7)})
	assert.Empty(t, got)
	assert.Empty(t, node.receiptCalls)
}

func TestScanNonMatchingSkipsReceipt(t *testing.T) {
	node := newFakeNode()
	node.addBlock(1, tx("0x01", "0x111", "0x222"), tx("0x02", "0xABC", "0x333"), tx("0x03", "0x444", "0x555"))
	s := New(node)

	got := collect(t, s, Request{Account: "0xABC", Start: u64(1), End: u64(1)})
	require.Len(t, got, 1)
	assert.Equal(t, []string{"0x02"}, node.receiptCalls, "receipts are fetched only for matches")
}

func TestScanMatchIsCaseSensitive(t *testing.T) {
	node := newFakeNode()
	node.addBlock(1, tx("0x01", "0xABC", "0x1"))
	s := New(node)

	got := collect(t, s, Request{Account: "0xabc", Start: u64(1), End: u64(1)})
	assert.Empty(t, got)
	assert.Empty(t, node.receiptCalls)
}

func TestScanTakesIdentityFromReceipt(t *testing.T) {
	node := newFakeNode()
	node.addBlock(7, tx("0x07", "0xaaa", "0xbbb"))
	node.receipts["0x07"] = &chain.Receipt{
		TransactionHash:   "0x07-receipt",
		From:              "0xaaa-receipt",
		To:                "0xbbb-receipt",
		GasUsed:           30000,
		CumulativeGasUsed: 51000,
		ContractAddress:   "0xdead",
	}

	got := collect(t, New(node), Request{Account: "0xaaa", Start: u64(7), End: u64(7)})
	require.Len(t, got, 1)
	m := got[0]

	assert.Equal(t, "0x07-receipt", m.TxHash)
	assert.Equal(t, "0xaaa-receipt", m.From)
	assert.Equal(t, "0xbbb-receipt", m.To)
	assert.Equal(t, uint64(30000), m.GasUsed)
	assert.Equal(t, uint64(51000), m.CumulativeGasUsed)
	assert.Equal(t, "0xdead", m.ContractAddress)

	// Gas limit and price only exist on the transaction.
	assert.Equal(t, uint64(90000), m.Gas)
	assert.Equal(t, big.NewInt(1_000_000_000), m.GasPrice)
	assert.Equal(t, uint64(7), m.BlockNumber)
}

func TestScanRecipientMatch(t *testing.T) {
	node := newFakeNode()
	node.addBlock(1, tx("0x01", "0x1", "0xABC"))
	got := collect(t, New(node), Request{Account: "0xABC", Start: u64(1), End: u64(1)})
	require.Len(t, got, 1)
	assert.Equal(t, "0xABC", got[0].To)
}

func TestScanPreservesTransactionOrder(t *testing.T) {
	node := newFakeNode()
	node.addBlock(1, tx("0x03", "0xABC", "0x1"), tx("0x01", "0x1", "0xABC"), tx("0x02", "0xABC", "0xABC"))
	got := collect(t, New(node), Request{Account: "0xABC", Start: u64(1), End: u64(1)})

	require.Len(t, got, 3)
	assert.Equal(t, "0x03", got[0].TxHash)
	assert.Equal(t, "0x01", got[1].TxHash)
	assert.Equal(t, "0x02", got[2].TxHash)
}

func TestScanStartAfterEndIsEmpty(t *testing.T) {
	node := newFakeNode()
	got := collect(t, New(node), Request{Account: Wildcard, Start: u64(10), End: u64(5)})
	assert.Empty(t, got)
	assert.Empty(t, node.blockCalls)
}

func TestScanIsIdempotent(t *testing.T) {
	node := newFakeNode()
	node.addBlock(1, tx("0x01", "0xABC", "0x1"))
	node.addBlock(2, tx("0x02", "0x1", "0xABC"), tx("0x03", "0x2", "0x3"))
	s := New(node)

	render := func() string {
		var buf bytes.Buffer
		p, err := NewPrinter("text", &buf)
		require.NoError(t, err)
		_, err = s.Run(context.Background(), Request{Account: "0xABC", Start: u64(0), End: u64(3)}, p)
		require.NoError(t, err)
		return buf.String()
	}
	assert.Equal(t, render(), render())
}

func TestRunReturnsCount(t *testing.T) {
	node := newFakeNode()
	node.addBlock(1, tx("0x01", "0xABC", "0x1"), tx("0x02", "0xABC", "0x1"))
	n, err := New(node).Run(context.Background(), Request{Account: "0xABC", Start: u64(1), End: u64(1)}, SinkFunc(func(Match) error { return nil }))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// ---------------------------------------------------------------------------
// failures
// ---------------------------------------------------------------------------

func TestScanBlockErrorIsFatal(t *testing.T) {
	node := newFakeNode()
	node.addBlock(1, tx("0x01", "0xABC", "0x1"))
	node.blockErr[2] = errors.New("connection reset")
	node.addBlock(3, tx("0x03", "0xABC", "0x1"))
	s := New(node)

	var got []Match
	n, err := s.Run(context.Background(), Request{Account: "0xABC", Start: u64(1), End: u64(3)}, SinkFunc(func(m Match) error {
		got = append(got, m)
		return nil
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 1, n)
	assert.Len(t, got, 1)
	assert.Equal(t, []uint64{1, 2}, node.blockCalls, "no block after the failure is fetched")
}

func TestScanReceiptErrorIsFatal(t *testing.T) {
	node := newFakeNode()
	node.addBlock(1, tx("0x01", "0xABC", "0x1"), tx("0x02", "0xABC", "0x1"))
	node.receiptErr = errors.New("boom")

	n, err := New(node).Run(context.Background(), Request{Account: "0xABC", Start: u64(1), End: u64(2)}, SinkFunc(func(Match) error { return nil }))
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"0x01"}, node.receiptCalls)
	assert.Equal(t, []uint64{1}, node.blockCalls)
}

func TestScanHeightErrorIsYielded(t *testing.T) {
	node := newFakeNode()
	node.heightErr = errors.New("node down")

	var errs int
	for _, err := range New(node).Matches(context.Background(), Request{Account: Wildcard}) {
		require.Error(t, err)
		errs++
	}
	assert.Equal(t, 1, errs)
	assert.Empty(t, node.blockCalls)
}

func TestScanSinkErrorStops(t *testing.T) {
	node := newFakeNode()
	node.addBlock(1, tx("0x01", "0xABC", "0x1"))
	node.addBlock(2, tx("0x02", "0xABC", "0x1"))
	sinkErr := errors.New("broken pipe")

	_, err := New(node).Run(context.Background(), Request{Account: "0xABC", Start: u64(1), End: u64(2)}, SinkFunc(func(Match) error { return sinkErr }))
	assert.ErrorIs(t, err, sinkErr)
	assert.Equal(t, []uint64{1}, node.blockCalls)
}

func TestScanCancelledContext(t *testing.T) {
	node := newFakeNode()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(node).Run(ctx, Request{Account: Wildcard, Start: u64(0), End: u64(10)}, SinkFunc(func(Match) error { return nil }))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, node.blockCalls)
}

func TestMatchesBreakStopsScan(t *testing.T) {
	node := newFakeNode()
	for i := uint64(1); i <= 5; i++ {
		node.addBlock(i, tx("0x0"+string(rune('0'+i)), "0xABC", "0x1"))
	}

	for m, err := range New(node).Matches(context.Background(), Request{Account: "0xABC", Start: u64(1), End: u64(5)}) {
		require.NoError(t, err)
		if m.BlockNumber == 2 {
			break
		}
	}
	assert.Equal(t, []uint64{1, 2}, node.blockCalls)
}

// ---------------------------------------------------------------------------
// Touches
// ---------------------------------------------------------------------------

func TestTouches(t *testing.T) {
	creation := chain.Transaction{Hash: "0x1", From: "0xABC"}
	tests := []struct {
		name    string
		account string
		tx      chain.Transaction
		want    bool
	}{
		{"wildcard", Wildcard, tx("0x1", "0x1", "0x2"), true},
		{"sender", "0xABC", tx("0x1", "0xABC", "0x2"), true},
		{"recipient", "0xABC", tx("0x1", "0x1", "0xABC"), true},
		{"neither", "0xABC", tx("0x1", "0x1", "0x2"), false},
		{"case differs", "0xabc", tx("0x1", "0xABC", "0x2"), false},
		{"empty account never matches empty recipient", "", creation, false},
		{"creation by sender", "0xABC", creation, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Touches(tt.account, tt.tx))
		})
	}
}
