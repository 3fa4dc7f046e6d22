package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"wgconf/internal/commands/types"
	"wgconf/internal/keys"
	"wgconf/internal/templates"
	"wgconf/internal/wgconfig"

	"github.com/aymerick/raymond"
	"gopkg.in/yaml.v3"
)

func init() {
	raymond.RegisterHelper("join", func(items []string, separator string) string {
		return strings.Join(items, separator)
	})
}

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Summarize collects the printable state of doc. Secrets are left out.
func Summarize(doc *wgconfig.Document) types.Summary {
	summary := types.Summary{
		Name:  strings.TrimSuffix(doc.FileName(), ".conf"),
		Path:  doc.Path(),
		Peers: []types.PeerSummary{},
	}

	if iface, err := doc.Interface(); err == nil {
		addresses, _ := iface.Addresses()
		port, _ := iface.ListenPort()
		host, _ := iface.HostAddress()
		dns, _ := iface.DNS()
		mtu, _ := iface.MTU()

		summary.Interface = &types.InterfaceSummary{
			Addresses:  addresses,
			ListenPort: port,
			Host:       host,
			DNS:        dns,
			MTU:        mtu,
		}

		if privateKey, err := iface.PrivateKey(); err == nil {
			summary.Interface.PublicKey, _ = keys.PublicKeyFor(privateKey)
		}
	}

	for _, peer := range doc.Peers() {
		name, _ := peer.Name()
		publicKey, _ := peer.PublicKey()
		allowedIPs, _ := peer.AllowedIPs()
		endpoint, _ := peer.Endpoint()
		keepalive, _ := peer.PersistentKeepalive()
		_, pskErr := peer.PresharedKey()
		_, privateKeyErr := peer.PrivateKey()

		summary.Peers = append(summary.Peers, types.PeerSummary{
			Label:               peer.Label(),
			Name:                name,
			PublicKey:           publicKey,
			AllowedIPs:          allowedIPs,
			Endpoint:            endpoint,
			PersistentKeepalive: keepalive,
			HasPresharedKey:     pskErr == nil,
			HasPrivateKey:       privateKeyErr == nil,
		})
	}

	return summary
}

func renderText(summary types.Summary) (string, error) {
	template, err := templates.Views.ReadFile(templates.ShowTemplatePath)

	if err != nil {
		return "", err
	}

	tpl, err := raymond.Parse(string(template))

	if err != nil {
		return "", err
	}

	return tpl.Exec(summary)
}

// WriteSummary prints summary as text, json or yaml.
func WriteSummary(w io.Writer, summary types.Summary, format string) error {
	switch format {
	case FormatText, "":
		text, err := renderText(summary)
		if err != nil {
			return fmt.Errorf("failed to render summary: %w", err)
		}

		_, err = io.WriteString(w, text)
		return err
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)

		if err := encoder.Encode(summary); err != nil {
			return err
		}

		return encoder.Close()
	}

	return fmt.Errorf("%w: %q (use text, json or yaml)", ErrUnknownFormat, format)
}

// Show prints the current configuration.
func (s *Service) Show(ctx context.Context, stdOut io.Writer, format string) error {
	if err := s.load(ctx); err != nil {
		return err
	}

	var summary types.Summary

	_ = s.Store.View(func(doc *wgconfig.Document) error {
		summary = Summarize(doc)
		return nil
	})

	return WriteSummary(stdOut, summary, format)
}

// Raw prints the configuration file as the document would save it.
func (s *Service) Raw(ctx context.Context, stdOut io.Writer) error {
	if err := s.load(ctx); err != nil {
		return err
	}

	return s.Store.View(func(doc *wgconfig.Document) error {
		_, err := io.WriteString(stdOut, doc.String())
		return err
	})
}
