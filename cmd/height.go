package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/txscan/internal/chain"
	"github.com/Mohsinsiddi/txscan/internal/ui"
	"github.com/spf13/cobra"
)

var (
	heightNetwork string
	heightRPC     string
)

var heightCmd = &cobra.Command{
	Use:   "height [chain]",
	Short: "Show the current block height of a chain",
	Long: `Ask a node for its current block height and chain ID. A warning is printed
when the node serves a different chain than the one selected.

Defaults to the configured default network. Override with --network or a
positional chain name.

Examples:
  txscan height
  txscan height ethereum
  txscan height base --testnet
  txscan height --rpc http://127.0.0.1:8545`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chainName := heightNetwork
		if len(args) == 1 {
			chainName = args[0]
		}
		if chainName == "" {
			chainName = cfg.DefaultNetwork
		}

		var selected *chain.Chain
		if heightRPC == "" {
			var err error
			if selected, err = lookupChain(chainName); err != nil {
				return err
			}
		}

		spin := ui.NewSpinnerTo(cmd.ErrOrStderr(), fmt.Sprintf("Fetching height of %s (%s)…", chainName, cfg.NetworkMode))
		spin.Start()

		ctx := cmd.Context()
		node, err := connect(ctx, chainName, heightRPC)
		if err != nil {
			spin.Stop()
			return err
		}
		defer node.Close()

		height, err := node.BlockNumber(ctx)
		if err != nil {
			spin.Stop()
			return err
		}
		chainID, err := node.ChainID(ctx)
		spin.Stop()
		if err != nil {
			return err
		}

		c, mismatch := identifyChain(selected, cfg.NetworkMode, chainID)
		if mismatch {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Warn(fmt.Sprintf(
				"%s expects chain ID %d but the node reports %s", selected.Name, selected.ChainID, chainID,
			)))
		}

		title := "unknown chain"
		pairs := [][2]string{
			{"RPC", node.URL()},
			{"Mode", cfg.NetworkMode},
			{"Chain ID", chainID.String()},
			{"Height", fmt.Sprintf("%d", height)},
		}
		if c != nil {
			title = c.DisplayName
			if explorer := c.Explorer(cfg.NetworkMode); explorer != "" {
				pairs = append(pairs, [2]string{"Explorer", explorer})
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock(title, pairs))
		return nil
	},
}

func init() {
	heightCmd.Flags().StringVarP(&heightNetwork, "network", "n", "", "chain to query (default: configured network)")
	heightCmd.Flags().StringVar(&heightRPC, "rpc", "", "node URL, bypasses RPC selection")
}
