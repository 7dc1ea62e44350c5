package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/txscan/internal/chain"
	"github.com/Mohsinsiddi/txscan/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported chains",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "#", Width: 3},
			{Title: "Name", Width: 12},
			{Title: "Display", Width: 20},
			{Title: "Chain ID", Width: 10},
			{Title: "Currency", Width: 10},
			{Title: "Testnet", Width: 16},
			{Title: "Explorer (" + cfg.NetworkMode + ")", Width: 40},
		})

		for i, c := range reg.All() {
			chainID := fmt.Sprintf("%d", c.ChainID)
			if c.ChainID == 0 {
				chainID = "-"
			}
			name := c.Name
			if c.Name == cfg.DefaultNetwork {
				name += " *"
			}
			t.AddRow(ui.Row{
				fmt.Sprintf("%d", i+1),
				name,
				c.DisplayName,
				chainID,
				c.NativeCurrency,
				c.TestnetName,
				c.Explorer(cfg.NetworkMode),
			})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d chains total, * marks the default", len(reg.All()))))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <chain>",
	Short: "Set the default network",
	Long: `Set the default chain and persist it to config.

When combined with --testnet or --mainnet the network mode is also persisted.

Examples:
  txscan network use ethereum
  txscan network use base --testnet
  txscan network use local`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupChain(args[0])
		if err != nil {
			return err
		}

		cfg.DefaultNetwork = c.Name
		if err := cfg.Save(); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default network set to %s (%s)", ui.ChainName(c.Name), cfg.NetworkMode)))
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd)
}
