package config

// Config holds all txscan configuration.
type Config struct {
	DefaultNetwork    string              `json:"default_network"`
	NetworkMode       string              `json:"network_mode"`  // "mainnet" | "testnet"
	RPCAlgorithm      string              `json:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	CustomRPCs        map[string][]string `json:"custom_rpcs"`
	ScanWindow        uint64              `json:"scan_window"`         // blocks scanned back from the end when no start is given
	ProgressInterval  uint64              `json:"progress_interval"`   // log a progress line every N block numbers
	RequestsPerSecond float64             `json:"requests_per_second"` // 0 = unlimited
	RequestTimeout    int                 `json:"request_timeout"`     // seconds per RPC call
	LogLevel          string              `json:"log_level"`
	Output            string              `json:"output"` // "text" | "json" | "yaml"

	// internal: config dir path used for Save()
	configDir string
}
