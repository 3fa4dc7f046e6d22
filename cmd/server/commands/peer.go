package commands

import (
	"github.com/spf13/cobra"
)

var PeerCmd = &cobra.Command{
	Use:   "peer",
	Short: "Manage peers",
	Long:  `List, add, remove and edit [Peer] sections. A peer is referenced by its public key or by its name.`,
}

var ListPeerCmd = &cobra.Command{
	Use:   "list",
	Short: "List peers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return commandsService.PeerList(cmd.Context(), cmd.OutOrStdout())
	},
}

var AddPeerCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a peer",
	Long:  `Add a peer and save the configuration. Without --public-key a key pair is generated so that 'wgconf profile' can export the client configuration.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := peerOptionsFromFlags(cmd)

		if err != nil {
			return err
		}

		return commandsService.PeerAdd(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

var RemovePeerCmd = &cobra.Command{
	Use:   "remove <public-key|name>",
	Short: "Remove a peer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return commandsService.PeerRemove(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

var RenamePeerCmd = &cobra.Command{
	Use:   "rename <public-key|name> <new-name>",
	Short: "Rename a peer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return commandsService.PeerRename(cmd.Context(), cmd.OutOrStdout(), args[0], args[1])
	},
}

var SetPeerCmd = &cobra.Command{
	Use:   "set <public-key|name>",
	Short: "Change fields of a peer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := peerOptionsFromFlags(cmd)

		if err != nil {
			return err
		}

		return commandsService.PeerSet(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
	},
}

func init() {
	addPeerFlags(AddPeerCmd)
	addPeerFlags(SetPeerCmd)

	PeerCmd.AddCommand(ListPeerCmd)
	PeerCmd.AddCommand(AddPeerCmd)
	PeerCmd.AddCommand(RemovePeerCmd)
	PeerCmd.AddCommand(RenamePeerCmd)
	PeerCmd.AddCommand(SetPeerCmd)
}
