package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/Mohsinsiddi/txscan/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Fprintln(out, string(data))
		fmt.Fprintln(out, ui.Meta("Config directory: "+cfg.Dir()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a single setting and persist it.

Keys: default_network, network_mode, rpc_algorithm, scan_window,
progress_interval, requests_per_second, request_timeout, log_level, output.
Custom RPCs are managed with ` + "`txscan rpc add|remove`" + `.

Examples:
  txscan config set network_mode testnet
  txscan config set scan_window 500
  txscan config set requests_per_second 10`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if key == "default_network" {
			c, err := lookupChain(value)
			if err != nil {
				return err
			}
			value = c.Name
		}
		if err := cfg.Set(key, value); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s set to %q", key, value)))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd, configSetCmd)
}
