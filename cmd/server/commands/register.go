package commands

import (
	"wgconf/cmd/server/config"
	"wgconf/internal/backups"
	"wgconf/internal/commands"
	"wgconf/internal/configstore"
	"wgconf/internal/profiles"
	"wgconf/internal/terminal"
	"wgconf/internal/wgconfig"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	backupsRepository *backups.Repository
	store             *configstore.Store
	commandsService   *commands.Service
)

func profileOptions(cfg *config.Configuration) profiles.Options {
	return profiles.Options{
		DNS:                 profiles.SplitList(cfg.DefaultDNS),
		AllowedIPs:          profiles.SplitList(cfg.DefaultAllowedIPs),
		MTU:                 cfg.DefaultMTU,
		PersistentKeepalive: cfg.DefaultPersistentKeepalive,
	}
}

// newStore builds the store for the configured interface. A nil db disables
// the backups catalog but not the backups themselves.
func newStore(cfg *config.Configuration, db *gorm.DB) *configstore.Store {
	if db != nil {
		backupsRepository = backups.NewRepository(db)
	}

	doc := wgconfig.New(cfg.WireguardPath, cfg.WireguardFileName(), cfg.BackupsDir)

	return configstore.New(doc, backupsRepository, terminal.ShellReloader{Command: cfg.WireguardRestartCommand}, configstore.Options{
		ReadOnly:       cfg.ReadOnly,
		BackupTrim:     cfg.BackupTrim,
		BackupTrimKeep: cfg.BackupTrimKeep,
	})
}

func RegisterCommands(rootCmd *cobra.Command, db *gorm.DB) {
	store = newStore(config.Config, db)
	commandsService = &commands.Service{
		Store:    store,
		Profiles: profileOptions(config.Config),
		Defaults: interfaceDefaults,
	}

	rootCmd.AddCommand(ShowCmd)
	rootCmd.AddCommand(InitCmd)
	rootCmd.AddCommand(PeerCmd)
	rootCmd.AddCommand(InterfaceCmd)
	rootCmd.AddCommand(ProfileCmd)
	rootCmd.AddCommand(BackupCmd)
	rootCmd.AddCommand(BackupsCmd)
	rootCmd.AddCommand(RevertCmd)
	rootCmd.AddCommand(ServeCmd)
}
