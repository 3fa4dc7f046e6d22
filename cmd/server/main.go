package main

import (
	"fmt"
	"os"

	"wgconf/cmd/server/commands"
	"wgconf/cmd/server/config"
	"wgconf/internal/database"
	"wgconf/internal/logger"

	"github.com/spf13/cobra"
)

var verbose = false

var rootCmd = &cobra.Command{
	Use:   "wgconf",
	Short: "Manage a WireGuard configuration file",
	Long: `wgconf edits a wg-quick configuration file in place: the [Interface] section, its [Peer] sections and the #!key = value metadata comments stored next to them.

Comments, metadata and the order of every line survive a load and save. Every save backs up the file first; a save that fails to apply is rolled back to that backup.

Configuration is read from the environment (and a .env file):

- WG_PATH, WG_INTERFACE – which file to manage (default /etc/wireguard/wg0.conf)
- WG_RESTART_COMMAND – shell command run after each save, e.g. "wg-quick down wg0; wg-quick up wg0"
- WG_HOST, WG_PORT, WG_ADDRESS_SPACE – defaults for 'wgconf init'
- HOST, PORT, PASSWORD – where 'wgconf serve' listens and the API password
`,
	Version:       fmt.Sprintf("%s; config: %s; db path: %s", config.Config.Release, config.Config.WireguardConfigPath(), config.Config.DatabasePath),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if verbose {
			logger.SetLevel(logger.DEBUG)
			return nil
		}

		level, err := logger.ParseLevel(config.Config.LogLevel)

		if err != nil {
			return err
		}

		logger.SetLevel(level)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages")
}

func main() {
	db, err := database.InitDB(config.Config.DatabasePath)

	if err != nil {
		rootCmd.PrintErrf("Failed to initialize database at %s, backups will not be cataloged: %v\n", config.Config.DatabasePath, err)
	}

	commands.RegisterCommands(rootCmd, db)

	exitCode := 0

	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrf("❌ Error: %v\n", err)
		exitCode = 1
	}

	if db != nil {
		if err := database.CloseDB(db); err != nil {
			rootCmd.PrintErrf("Failed to close database: %v\n", err)
		}
	}

	os.Exit(exitCode)
}
