package commands

import (
	"github.com/spf13/cobra"
)

var showFormat string
var showRaw bool

var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the WireGuard configuration",
	Long:  `Show the interface and its peers. Private keys are never printed; use --raw to print the file as it would be saved.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if showRaw {
			return commandsService.Raw(cmd.Context(), cmd.OutOrStdout())
		}

		return commandsService.Show(cmd.Context(), cmd.OutOrStdout(), showFormat)
	},
}

func init() {
	ShowCmd.Flags().StringVarP(&showFormat, "format", "o", "text", "Output format: text, json or yaml")
	ShowCmd.Flags().BoolVar(&showRaw, "raw", false, "Print the configuration file including secrets")
}
