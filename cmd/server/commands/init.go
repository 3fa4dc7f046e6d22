package commands

import (
	"github.com/spf13/cobra"
)

var forceInit = false

var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new WireGuard configuration",
	Long: `Create a new configuration with a fresh server key pair, the address space from WG_ADDRESS_SPACE and the port from WG_PORT.

The public host clients connect to is taken from --host, WG_HOST or, if neither is set, detected from the public IP of this machine.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return commandsService.Init(cmd.Context(), cmd.OutOrStdout(), forceInit)
	},
}

func init() {
	InitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Replace an existing configuration (it is backed up first)")
	InitCmd.Flags().StringVar(&initHost, "host", "", "Public host or IP address clients connect to")
}
