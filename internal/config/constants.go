package config

import "time"

// Timeout constants used across cmd.
const (
	RPCSelectTimeout = 10 * time.Second // endpoint benchmark / RPC selection
	BenchmarkTimeout = 15 * time.Second // `rpc benchmark`
)

// Accepted enum values.
var (
	NetworkModes  = []string{"mainnet", "testnet"}
	RPCAlgorithms = []string{"fastest", "round-robin", "failover"}
	OutputFormats = []string{"text", "json", "yaml"}
	LogLevels     = []string{"debug", "info", "warn", "error"}
)
