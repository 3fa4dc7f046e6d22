package commands

import (
	"context"
	"fmt"
	"io"
	"syscall"

	"wgconf/cmd/server/config"
	"wgconf/internal/commands/types"
	"wgconf/internal/configstore"
	"wgconf/internal/keys"
	"wgconf/internal/logger"
	"wgconf/internal/utils"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPasswordSecurely reads a password from the terminal without echoing
func readPasswordSecurely(prompt string, stdOut io.Writer, errOut io.Writer, promptToErr bool) (string, error) {
	if promptToErr {
		fmt.Fprintf(errOut, "%s", prompt)
	} else {
		fmt.Fprintf(stdOut, "%s", prompt)
	}

	bytePassword, err := term.ReadPassword(int(syscall.Stdin))

	if promptToErr {
		fmt.Fprintf(errOut, "\n")
	} else {
		fmt.Fprintf(stdOut, "\n")
	}

	if err != nil {
		return "", err
	}
	return string(bytePassword), nil
}

var initHost string

// resolveHost picks the public host clients will connect to: the --host flag,
// then WG_HOST, then the detected public IP.
func resolveHost(ctx context.Context, flagHost, envHost string, detect func(context.Context) (string, error)) string {
	if flagHost != "" {
		return flagHost
	}

	if envHost != "" {
		return envHost
	}

	ip, err := detect(ctx)

	if err != nil {
		logger.Warn("Could not detect the public IP, set WG_HOST or --host: %v", err)
		return ""
	}

	logger.Info("Detected public IP %s", ip)

	return ip
}

func interfaceDefaults(ctx context.Context) (configstore.InterfaceDefaults, error) {
	privateKey, err := keys.GeneratePrivateKey()

	if err != nil {
		return configstore.InterfaceDefaults{}, err
	}

	cfg := config.Config

	return configstore.InterfaceDefaults{
		Addresses:  []string{cfg.WGAddressSpace},
		ListenPort: cfg.WGPort,
		Host:       resolveHost(ctx, initHost, cfg.WGHost, utils.GetPublicIP),
		PrivateKey: privateKey.String(),
		PreUp:      cfg.WGPreUp,
		PostUp:     cfg.WGPostUp,
		PreDown:    cfg.WGPreDown,
		PostDown:   cfg.WGPostDown,
	}, nil
}

// peerOptionsFromFlags only sets the fields whose flags were given.
func peerOptionsFromFlags(cmd *cobra.Command) (types.PeerOptions, error) {
	var opts types.PeerOptions
	flags := cmd.Flags()

	if flags.Changed("name") {
		name, err := flags.GetString("name")
		if err != nil {
			return opts, err
		}
		opts.Name = &name
	}

	if flags.Changed("public-key") {
		publicKey, err := flags.GetString("public-key")
		if err != nil {
			return opts, err
		}
		opts.PublicKey = &publicKey
	}

	if flags.Changed("endpoint") {
		endpoint, err := flags.GetString("endpoint")
		if err != nil {
			return opts, err
		}
		opts.Endpoint = &endpoint
	}

	if flags.Changed("keepalive") {
		keepalive, err := flags.GetInt("keepalive")
		if err != nil {
			return opts, err
		}
		opts.PersistentKeepalive = &keepalive
	}

	allowedIPs, err := flags.GetStringSlice("allowed-ips")
	if err != nil {
		return opts, err
	}
	opts.AllowedIPs = allowedIPs

	if opts.PresharedKey, err = flags.GetBool("preshared-key"); err != nil {
		return opts, err
	}

	return opts, nil
}

func addPeerFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Peer name, stored as #!Name metadata")
	cmd.Flags().String("public-key", "", "Public key of an existing device (a key pair is generated when omitted on add)")
	cmd.Flags().StringSlice("allowed-ips", nil, "Allowed IPs, e.g. 10.1.3.2/32 (the next free address is used when omitted on add)")
	cmd.Flags().String("endpoint", "", "Peer endpoint host:port")
	cmd.Flags().Int("keepalive", 0, "Persistent keepalive interval in seconds")
	cmd.Flags().Bool("preshared-key", false, "Generate a new preshared key")
}

// interfaceOptionsFromFlags only sets the fields whose flags were given.
func interfaceOptionsFromFlags(cmd *cobra.Command) (types.InterfaceOptions, error) {
	var opts types.InterfaceOptions
	var err error
	flags := cmd.Flags()

	if opts.Addresses, err = flags.GetStringSlice("address"); err != nil {
		return opts, err
	}

	if opts.DNS, err = flags.GetStringSlice("dns"); err != nil {
		return opts, err
	}

	if flags.Changed("listen-port") {
		port, err := flags.GetInt("listen-port")
		if err != nil {
			return opts, err
		}
		opts.ListenPort = &port
	}

	if flags.Changed("host") {
		host, err := flags.GetString("host")
		if err != nil {
			return opts, err
		}
		opts.Host = &host
	}

	if flags.Changed("mtu") {
		mtu, err := flags.GetInt("mtu")
		if err != nil {
			return opts, err
		}
		opts.MTU = &mtu
	}

	if flags.Changed("table") {
		table, err := flags.GetString("table")
		if err != nil {
			return opts, err
		}
		opts.Table = &table
	}

	if flags.Changed("save-config") {
		saveConfig, err := flags.GetBool("save-config")
		if err != nil {
			return opts, err
		}
		opts.SaveConfig = &saveConfig
	}

	return opts, nil
}
