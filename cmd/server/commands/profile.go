package commands

import (
	"github.com/spf13/cobra"
)

var ProfileCmd = &cobra.Command{
	Use:   "profile <public-key|name>",
	Short: "Print the client configuration of a peer",
	Long:  `Print the wg-quick configuration for the device of a peer. Only peers created by 'wgconf peer add' without --public-key have their private key stored.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return commandsService.Profile(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}
