package commands

import (
	"github.com/spf13/cobra"
)

var InterfaceCmd = &cobra.Command{
	Use:   "interface",
	Short: "Manage the [Interface] section",
}

var SetInterfaceCmd = &cobra.Command{
	Use:   "set",
	Short: "Change fields of the interface",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := interfaceOptionsFromFlags(cmd)

		if err != nil {
			return err
		}

		return commandsService.InterfaceSet(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

func init() {
	SetInterfaceCmd.Flags().StringSlice("address", nil, "Interface addresses, e.g. 10.1.3.1/24")
	SetInterfaceCmd.Flags().Int("listen-port", 0, "UDP listen port")
	SetInterfaceCmd.Flags().String("host", "", "Public host or IP address clients connect to")
	SetInterfaceCmd.Flags().StringSlice("dns", nil, "DNS servers")
	SetInterfaceCmd.Flags().Int("mtu", 0, "Interface MTU")
	SetInterfaceCmd.Flags().String("table", "", "Routing table")
	SetInterfaceCmd.Flags().Bool("save-config", false, "Let wg-quick save the runtime state on shutdown")

	InterfaceCmd.AddCommand(SetInterfaceCmd)
}
