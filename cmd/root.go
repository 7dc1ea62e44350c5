package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Mohsinsiddi/txscan/internal/config"
	"github.com/Mohsinsiddi/txscan/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/txscan/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir    string
	cfg       *config.Config
	log       = zap.NewNop()
	verbose   bool
	logFormat string
	testnet   bool
	mainnet   bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "txscan",
	Short: "Find the transactions an account sent or received",
	Long: `txscan walks a range of blocks on an EVM node and prints every
transaction sent from or to an account, together with its receipt.

Results go to stdout; progress and log lines go to stderr.

Global flags --testnet and --mainnet override the configured network mode
for a single invocation. Without either flag the persisted mode is used
(default: mainnet). Persist with: txscan config set network_mode <mode>`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if testnet {
			cfg.NetworkMode = "testnet"
		}
		if mainnet {
			cfg.NetworkMode = "mainnet"
		}

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		log, err = logger.New(&logger.Config{
			Level:    level,
			Encoding: logFormat,
			Output:   cmd.ErrOrStderr(),
		})
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		return nil
	},
}

// Execute runs the root command. An interrupt cancels the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// TXSCAN_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("TXSCAN_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.txscan)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log encoding: console or json")
	rootCmd.PersistentFlags().BoolVar(&testnet, "testnet", false, "use testnet instead of mainnet")
	rootCmd.PersistentFlags().BoolVar(&mainnet, "mainnet", false, "use mainnet instead of testnet")
	rootCmd.MarkFlagsMutuallyExclusive("testnet", "mainnet")

	rootCmd.AddCommand(
		scanCmd,
		heightCmd,
		networkCmd,
		rpcCmd,
		configCmd,
	)
}
