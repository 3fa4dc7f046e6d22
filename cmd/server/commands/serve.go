package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wgconf/cmd/server/config"
	"wgconf/internal/api"
	"wgconf/internal/logger"
	"wgconf/internal/wgconfig"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var passwordPrompt = false

func apiOptions(cfg *config.Configuration, password string) api.Options {
	opts := api.Options{
		Release:     cfg.Release,
		Password:    password,
		Profiles:    profileOptions(cfg),
		AllowBackup: cfg.AllowBackup,
		Defaults:    interfaceDefaults,
	}

	if cfg.WebUI {
		opts.StaticDir = cfg.WebUIPath
	}

	return opts
}

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long:  `Serve the HTTP API on HOST:PORT. Requests to /api/wireguard/ need ?key=<PASSWORD> when a password is set.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		password := config.Config.Password

		if passwordPrompt {
			var err error

			if password, err = readPasswordSecurely("🔒 Enter API password: ", cmd.OutOrStdout(), cmd.ErrOrStderr(), true); err != nil {
				return err
			}
		}

		if password == "" {
			logger.Warn("No PASSWORD set; the API is open to anyone who can reach %s", config.Config.ListenAddress())
		}

		exists := false

		_ = store.View(func(doc *wgconfig.Document) error {
			exists = doc.ConfigExists()
			return nil
		})

		if exists {
			if err := store.Load(cmd.Context()); err != nil {
				return err
			}
		} else {
			logger.Info("No configuration found yet; POST /api/wireguard/server/new to create one")
		}

		server := &http.Server{
			Addr:              config.Config.ListenAddress(),
			Handler:           api.Router(store, apiOptions(config.Config, password)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serverError := make(chan error, 1)

		go func() {
			logger.Info("wgconf is listening on %s", server.Addr)

			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				serverError <- err
			}

			close(serverError)
		}()

		select {
		case err := <-serverError:
			return err
		case <-ctx.Done():
		}

		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	ServeCmd.Flags().BoolVar(&passwordPrompt, "password-prompt", false, "Read the API password from the terminal instead of PASSWORD")
}
