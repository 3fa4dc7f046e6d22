package profiles

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"wgconf/internal/keys"
	"wgconf/internal/wgconfig"
)

const maxFileNameLen = 32

// Options carries the client-side defaults that the server configuration
// does not record.
type Options struct {
	DNS                 []string
	AllowedIPs          []string
	MTU                 int
	PersistentKeepalive int
}

// SplitList splits a comma separated setting such as "1.1.1.1, 1.0.0.1".
func SplitList(value string) []string {
	var items []string

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

// ClientConfig renders a wg-quick file for peer that connects it to iface.
// The peer must have its private key stored in metadata.
func ClientConfig(iface *wgconfig.Interface, peer *wgconfig.Peer, opts Options) (string, error) {
	privateKey, err := peer.PrivateKey()
	if errors.Is(err, wgconfig.ErrNotFound) {
		return "", ErrNoPrivateKey
	}
	if err != nil {
		return "", err
	}

	addresses, err := peer.AllowedIPs()
	if err != nil {
		return "", fmt.Errorf("peer has no address: %w", err)
	}

	endpoint, err := serverEndpoint(iface)
	if err != nil {
		return "", err
	}

	serverPrivateKey, err := iface.PrivateKey()
	if err != nil {
		return "", fmt.Errorf("server has no private key: %w", err)
	}

	serverPublicKey, err := keys.PublicKeyFor(serverPrivateKey)
	if err != nil {
		return "", fmt.Errorf("invalid server private key: %w", err)
	}

	client := wgconfig.NewSection(wgconfig.InterfaceSection)
	server := wgconfig.NewSection(wgconfig.PeerSection)

	var errs []error
	add := func(section *wgconfig.Section, key, value string) {
		errs = append(errs, section.Add(key, value))
	}

	if name, err := peer.Name(); err == nil && name != "" {
		errs = append(errs, client.AddMetadata(wgconfig.PeerNameMetadata, name))
	}

	add(client, wgconfig.InterfacePrivateKey, privateKey)
	add(client, wgconfig.InterfaceAddress, strings.Join(addresses, ", "))

	if len(opts.DNS) > 0 {
		add(client, wgconfig.InterfaceDNS, strings.Join(opts.DNS, ", "))
	}

	if opts.MTU > 0 {
		add(client, wgconfig.InterfaceMTU, strconv.Itoa(opts.MTU))
	}

	add(server, wgconfig.PeerPublicKey, serverPublicKey)

	if psk, err := peer.PresharedKey(); err == nil {
		add(server, wgconfig.PeerPresharedKey, psk)
	}

	allowedIPs := opts.AllowedIPs
	if len(allowedIPs) == 0 {
		allowedIPs = []string{"0.0.0.0/0", "::/0"}
	}

	add(server, wgconfig.PeerAllowedIPs, strings.Join(allowedIPs, ", "))
	add(server, wgconfig.PeerEndpoint, endpoint)

	if opts.PersistentKeepalive > 0 {
		add(server, wgconfig.PeerPersistentKeepalive, strconv.Itoa(opts.PersistentKeepalive))
	}

	if err := errors.Join(errs...); err != nil {
		return "", err
	}

	return wgconfig.Render(client, server), nil
}

func serverEndpoint(iface *wgconfig.Interface) (string, error) {
	host, err := iface.HostAddress()
	if err != nil {
		return "", fmt.Errorf("server host address is not set: %w", err)
	}

	port, err := iface.ListenPort()
	if err != nil {
		return "", fmt.Errorf("server listen port is not set: %w", err)
	}

	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

// FileName turns a peer label into a safe download name such as "laptop.conf".
func FileName(label string) string {
	var b strings.Builder

	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', strings.ContainsRune("_=+.-", r):
			b.WriteRune(r)
		}

		if b.Len() == maxFileNameLen {
			break
		}
	}

	if b.Len() == 0 {
		return "peer.conf"
	}

	return b.String() + ".conf"
}
