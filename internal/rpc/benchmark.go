package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/Mohsinsiddi/txscan/internal/chain"
)

const pingTimeout = 5 * time.Second

// BenchmarkResult holds the result of a single endpoint benchmark.
type BenchmarkResult struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// Benchmark pings all URLs in parallel and returns results in input order.
func Benchmark(ctx context.Context, urls []string) []BenchmarkResult {
	results := make([]BenchmarkResult, len(urls))
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			results[idx] = ping(ctx, u)
		}(i, url)
	}

	wg.Wait()
	return results
}

func ping(ctx context.Context, url string) BenchmarkResult {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	res := BenchmarkResult{URL: url}
	c, err := chain.DialNode(ctx, url)
	if err != nil {
		res.Err = err
		return res
	}
	defer c.Close()
	res.Latency, res.BlockNumber, res.Err = c.Ping(ctx)
	return res
}

// ResultsToEndpoints converts benchmark results to picker Endpoints.
// All returned endpoints have Checked: true since they have been actively tested.
func ResultsToEndpoints(results []BenchmarkResult) []Endpoint {
	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		endpoints = append(endpoints, Endpoint{
			URL:         r.URL,
			Latency:     r.Latency,
			BlockNumber: r.BlockNumber,
			Healthy:     r.Err == nil,
			Checked:     true,
		})
	}
	return endpoints
}

// Best benchmarks urls and returns the winner under algo. A single URL is
// returned as-is without touching the network.
func Best(ctx context.Context, urls []string, algo Algorithm) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}

	winner, err := NewPicker(algo).Pick(ResultsToEndpoints(Benchmark(ctx, urls)))
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
