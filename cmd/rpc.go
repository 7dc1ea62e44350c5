package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/txscan/internal/config"
	"github.com/Mohsinsiddi/txscan/internal/rpc"
	"github.com/Mohsinsiddi/txscan/internal/ui"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage RPC endpoints",
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <chain> <url>",
	Short: "Add a custom RPC URL for a chain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupChain(args[0])
		if err != nil {
			return err
		}
		url := args[1]
		if err := cfg.AddRPC(c.Name, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.ChainName(c.Name), url)))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <chain> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chainName, url := args[0], args[1]
		if err := cfg.RemoveRPC(chainName, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Removed RPC for %s: %s", chainName, url)))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list <chain>",
	Short: "List all RPCs for a chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupChain(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.StyleTitle.Render(fmt.Sprintf("RPCs for %s", c.DisplayName)))

		fmt.Fprintln(out, ui.StyleHeader.Render("Built-in RPCs:"))
		for _, r := range c.MainnetRPCs {
			fmt.Fprintf(out, "  %s %s\n", ui.Meta("(mainnet)"), r)
		}
		for _, r := range c.TestnetRPCs {
			fmt.Fprintf(out, "  %s %s\n", ui.Meta("(testnet)"), r)
		}

		if custom := cfg.GetRPCs(c.Name); len(custom) > 0 {
			fmt.Fprintln(out, ui.StyleHeader.Render("Custom RPCs:"))
			for _, r := range custom {
				fmt.Fprintf(out, "  %s\n", r)
			}
		}
		return nil
	},
}

var rpcBenchmarkCmd = &cobra.Command{
	Use:   "benchmark <chain>",
	Short: "Benchmark all RPCs for a chain and show the pick",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupChain(args[0])
		if err != nil {
			return err
		}
		rpcs := chainRPCs(c, cfg.NetworkMode)

		spin := ui.NewSpinnerTo(cmd.ErrOrStderr(), fmt.Sprintf("Benchmarking %d %s RPCs…", len(rpcs), c.DisplayName))
		spin.Start()
		ctx, cancel := context.WithTimeout(cmd.Context(), config.BenchmarkTimeout)
		defer cancel()
		results := rpc.Benchmark(ctx, rpcs)
		spin.Stop()

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL", Width: 44},
			{Title: "Latency", Width: 10},
			{Title: "Block #", Width: 12},
			{Title: "Status", Width: 8},
		})
		for _, r := range results {
			latency, block, status := fmt.Sprintf("%dms", r.Latency.Milliseconds()), fmt.Sprintf("%d", r.BlockNumber), "healthy"
			if r.Err != nil {
				latency, block, status = "-", "-", "down"
			}
			t.AddRow(ui.Row{r.URL, latency, block, status})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, t.Render())

		winner, err := rpc.NewPicker(rpc.Algorithm(cfg.RPCAlgorithm)).Pick(rpc.ResultsToEndpoints(results))
		if err != nil {
			fmt.Fprintln(out, ui.Err(err.Error()))
			return nil
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("%s picks %s", cfg.RPCAlgorithm, winner.URL)))
		return nil
	},
}

var rpcAlgorithmCmd = &cobra.Command{
	Use:   "algorithm",
	Short: "Manage the RPC selection algorithm",
}

var rpcAlgorithmSetCmd = &cobra.Command{
	Use:   "set <fastest|round-robin|failover>",
	Short: "Set the RPC selection algorithm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set("rpc_algorithm", args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("RPC algorithm set to %q", args[0])))
		return nil
	},
}

func init() {
	rpcAlgorithmCmd.AddCommand(rpcAlgorithmSetCmd)
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchmarkCmd, rpcAlgorithmCmd)
}
