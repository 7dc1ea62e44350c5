package rpc

import (
	"errors"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
)

// Endpoint is a single RPC endpoint with its measured attributes.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool // meaningful only when Checked == true
	Checked     bool
}

// Picker selects an RPC endpoint according to an algorithm.
type Picker struct {
	algo    Algorithm
	mu      sync.Mutex
	rrIndex int
}

// NewPicker creates a new Picker. An empty algorithm means fastest.
func NewPicker(algo Algorithm) *Picker {
	if algo == "" {
		algo = AlgorithmFastest
	}
	return &Picker{algo: algo}
}

// Pick selects an endpoint from the provided list according to the algorithm.
func (p *Picker) Pick(endpoints []Endpoint) (*Endpoint, error) {
	candidates := eligible(endpoints)
	if len(candidates) == 0 {
		return nil, ErrNoHealthyRPC
	}

	switch p.algo {
	case AlgorithmRoundRobin:
		p.mu.Lock()
		defer p.mu.Unlock()
		e := candidates[p.rrIndex%len(candidates)]
		p.rrIndex = (p.rrIndex + 1) % len(candidates)
		return e, nil
	case AlgorithmFailover:
		// Candidates keep input order, so the first one is the primary.
		return candidates[0], nil
	default:
		return pickFastest(candidates)
	}
}

// pickFastest scores fresh candidates by latency and recency.
func pickFastest(candidates []*Endpoint) (*Endpoint, error) {
	var bestBlock uint64
	for _, e := range candidates {
		if e.BlockNumber > bestBlock {
			bestBlock = e.BlockNumber
		}
	}

	var winner *Endpoint
	var bestScore float64
	for _, e := range candidates {
		if bestBlock-e.BlockNumber > staleBlockThreshold {
			continue
		}
		s := score(e, bestBlock)
		if winner == nil || s > bestScore {
			winner, bestScore = e, s
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}
	return winner, nil
}

func score(e *Endpoint, bestBlock uint64) float64 {
	var s float64
	if ms := e.Latency.Milliseconds(); ms > 0 {
		s += 1000.0 / float64(ms)
	} else if e.Latency > 0 {
		s += 1000.0
	}
	// Lose a point per block behind the best node.
	s -= float64(bestBlock - e.BlockNumber)
	return s
}

// eligible drops endpoints that were checked and found unhealthy.
func eligible(endpoints []Endpoint) []*Endpoint {
	out := make([]*Endpoint, 0, len(endpoints))
	for i := range endpoints {
		e := &endpoints[i]
		if e.Checked && !e.Healthy {
			continue
		}
		out = append(out, e)
	}
	return out
}
