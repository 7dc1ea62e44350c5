package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/Mohsinsiddi/txscan/internal/chain"
	"github.com/Mohsinsiddi/txscan/internal/logger"
	"github.com/Mohsinsiddi/txscan/internal/scan"
	"github.com/Mohsinsiddi/txscan/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scanNetwork       string
	scanRPC           string
	scanOutput        string
	scanRPS           float64
	scanWindow        uint64
	scanProgressEvery uint64
)

// scanOptions is everything a scan needs once flags and config are merged.
type scanOptions struct {
	Request       scan.Request
	Output        string
	Window        uint64
	ProgressEvery uint64
}

var scanCmd = &cobra.Command{
	Use:   "scan <account> [start-block] [end-block]",
	Short: "List transactions sent from or to an account",
	Long: `Scan an inclusive block range and print every transaction whose sender
or recipient is <account>, joined with its receipt.

Pass "*" as the account to print every transaction in the range.
Without an end block the scan stops at the current chain height; without a
start block it begins 100 blocks (--window) before the end.

Examples:
  txscan scan 0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae
  txscan scan 0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae 19000000 19000500
  txscan scan '*' 1200 1210 --network ethereum --output json
  txscan scan 0xabc... --rpc http://127.0.0.1:8545 --rps 20`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := scanOptions{
			Request:       scan.Request{Account: args[0]},
			Output:        cfg.Output,
			Window:        cfg.ScanWindow,
			ProgressEvery: cfg.ProgressInterval,
		}
		var err error
		if len(args) > 1 {
			if opts.Request.Start, err = parseBound("start-block", args[1]); err != nil {
				return err
			}
		}
		if len(args) > 2 {
			if opts.Request.End, err = parseBound("end-block", args[2]); err != nil {
				return err
			}
		}

		flags := cmd.Flags()
		if flags.Changed("output") {
			opts.Output = scanOutput
		}
		if flags.Changed("window") {
			opts.Window = scanWindow
		}
		if flags.Changed("progress-every") {
			opts.ProgressEvery = scanProgressEvery
		}
		rps := cfg.RequestsPerSecond
		if flags.Changed("rps") {
			rps = scanRPS
		}

		ctx := cmd.Context()
		node, err := connect(ctx, scanNetwork, scanRPC, chain.WithRateLimit(rps))
		if err != nil {
			return err
		}
		defer node.Close()

		return runScan(ctx, node, opts, log, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// runScan streams matches to out in the requested format and reports the
// total on errOut.
func runScan(ctx context.Context, node scan.Node, opts scanOptions, lg *zap.Logger, out, errOut io.Writer) error {
	printer, err := scan.NewPrinter(opts.Output, out)
	if err != nil {
		return err
	}

	s := scan.New(node,
		scan.WithLogger(logger.WithComponent(lg, "scan")),
		scan.WithWindow(opts.Window),
		scan.WithProgressInterval(opts.ProgressEvery),
	)
	n, err := s.Run(ctx, opts.Request, printer)
	if cerr := printer.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("scan failed after %d matches: %w", n, err)
	}

	fmt.Fprintln(errOut, ui.Meta(fmt.Sprintf("%d matching transactions", n)))
	return nil
}

func init() {
	scanCmd.Flags().StringVarP(&scanNetwork, "network", "n", "", "chain to scan (default: configured network)")
	scanCmd.Flags().StringVar(&scanRPC, "rpc", "", "node URL, bypasses RPC selection")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "text", "output format: text, json or yaml")
	scanCmd.Flags().Float64Var(&scanRPS, "rps", 0, "max node requests per second (0 = unlimited)")
	scanCmd.Flags().Uint64Var(&scanWindow, "window", scan.DefaultWindow, "blocks scanned before the end when no start block is given")
	scanCmd.Flags().Uint64Var(&scanProgressEvery, "progress-every", scan.DefaultProgressInterval, "log a progress line every N blocks")
}
