package commands

import (
	"github.com/spf13/cobra"
)

var trimKeep int

var BackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return commandsService.Backup(cmd.Context(), cmd.OutOrStdout())
	},
}

var BackupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "Manage configuration backups",
}

var ListBackupsCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return commandsService.BackupsList(cmd.OutOrStdout())
	},
}

var TrimBackupsCmd = &cobra.Command{
	Use:   "trim",
	Short: "Delete all but the newest backups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return commandsService.BackupsTrim(cmd.OutOrStdout(), trimKeep)
	},
}

var RevertCmd = &cobra.Command{
	Use:   "revert",
	Short: "Restore the latest backup",
	Long:  `Overwrite the configuration file with the latest backup and run the restart command.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return commandsService.Revert(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	TrimBackupsCmd.Flags().IntVarP(&trimKeep, "keep", "k", 15, "Number of backups to keep")

	BackupsCmd.AddCommand(ListBackupsCmd)
	BackupsCmd.AddCommand(TrimBackupsCmd)
}
