package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"strings"
	"text/tabwriter"

	"wgconf/internal/commands/types"
	"wgconf/internal/keys"
	"wgconf/internal/profiles"
	"wgconf/internal/wgconfig"
)

var (
	ErrPeerExists         = errors.New("a peer with this public key already exists")
	ErrNoAddressSpace     = errors.New("interface has no IPv4 address to allocate peer addresses from")
	ErrAddressSpaceIsFull = errors.New("no free address left in the interface subnet")
)

// nextAddress picks the lowest free host address in the interface's first
// IPv4 subnet.
func nextAddress(doc *wgconfig.Document) (string, error) {
	iface, err := doc.Interface()
	if err != nil {
		return "", err
	}

	addresses, err := iface.Addresses()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoAddressSpace, err)
	}

	used := map[netip.Addr]bool{}
	var subnet netip.Prefix

	for _, address := range addresses {
		prefix, err := netip.ParsePrefix(address)
		if err != nil {
			continue
		}

		used[prefix.Addr()] = true

		if !subnet.IsValid() && prefix.Addr().Is4() {
			subnet = prefix.Masked()
		}
	}

	if !subnet.IsValid() {
		return "", ErrNoAddressSpace
	}

	for _, peer := range doc.Peers() {
		allowedIPs, _ := peer.AllowedIPs()

		for _, allowedIP := range allowedIPs {
			if prefix, err := netip.ParsePrefix(allowedIP); err == nil {
				used[prefix.Addr()] = true
			} else if addr, err := netip.ParseAddr(allowedIP); err == nil {
				used[addr] = true
			}
		}
	}

	// skip the network address; the broadcast address is never handed out
	for addr := subnet.Addr().Next(); subnet.Contains(addr.Next()); addr = addr.Next() {
		if !used[addr] {
			return netip.PrefixFrom(addr, 32).String(), nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrAddressSpaceIsFull, subnet)
}

func applyPeerOptions(peer *wgconfig.Peer, opts types.PeerOptions) error {
	if opts.Name != nil {
		if err := peer.SetName(*opts.Name); err != nil {
			return err
		}
	}

	if opts.PublicKey != nil {
		if err := peer.SetPublicKey(*opts.PublicKey); err != nil {
			return err
		}
	}

	if opts.PresharedKey {
		psk, err := keys.GeneratePresharedKey()
		if err != nil {
			return err
		}

		if err := peer.SetPresharedKey(psk.String()); err != nil {
			return err
		}
	}

	if len(opts.AllowedIPs) > 0 {
		if err := peer.SetAllowedIPs(opts.AllowedIPs...); err != nil {
			return err
		}
	}

	if opts.Endpoint != nil {
		if err := peer.SetEndpoint(*opts.Endpoint); err != nil {
			return err
		}
	}

	if opts.PersistentKeepalive != nil {
		if err := peer.SetPersistentKeepalive(*opts.PersistentKeepalive); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) PeerList(ctx context.Context, stdOut io.Writer) error {
	if err := s.load(ctx); err != nil {
		return err
	}

	w := tabwriter.NewWriter(stdOut, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPUBLIC KEY\tALLOWED IPS\tENDPOINT")

	_ = s.Store.View(func(doc *wgconfig.Document) error {
		for _, peer := range Summarize(doc).Peers {
			endpoint := peer.Endpoint
			if endpoint == "" {
				endpoint = "-"
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", peer.Label, peer.PublicKey, strings.Join(peer.AllowedIPs, ", "), endpoint)
		}
		return nil
	})

	return w.Flush()
}

// PeerAdd appends a new peer and commits. Without a public key a key pair is
// generated and the private key kept in metadata so a client profile can be
// exported later. Without allowed IPs the next free address is assigned.
func (s *Service) PeerAdd(ctx context.Context, stdOut io.Writer, opts types.PeerOptions) error {
	var label, publicKey string

	err := s.update(ctx, func(doc *wgconfig.Document) error {
		var privateKey string

		if opts.PublicKey != nil {
			if err := keys.Validate(*opts.PublicKey); err != nil {
				return err
			}
		} else {
			priv, pub, err := keys.GenerateKeyPair()
			if err != nil {
				return err
			}

			privateKey = priv
			opts.PublicKey = &pub
		}

		if _, err := doc.Peer(*opts.PublicKey); err == nil {
			return fmt.Errorf("%w: %s", ErrPeerExists, *opts.PublicKey)
		}

		if len(opts.AllowedIPs) == 0 {
			address, err := nextAddress(doc)
			if err != nil {
				return err
			}

			opts.AllowedIPs = []string{address}
		}

		peer := doc.AddPeer()

		if opts.Name != nil {
			if err := peer.SetName(*opts.Name); err != nil {
				return err
			}

			opts.Name = nil
		}

		if privateKey != "" {
			if err := peer.SetPrivateKey(privateKey); err != nil {
				return err
			}
		}

		if err := applyPeerOptions(peer, opts); err != nil {
			return err
		}

		label = peer.Label()
		publicKey = *opts.PublicKey

		return nil
	})

	if err != nil {
		return err
	}

	fmt.Fprintf(stdOut, "Added peer %s (%s) with %s\n", label, publicKey, strings.Join(opts.AllowedIPs, ", "))

	return nil
}

func (s *Service) PeerRemove(ctx context.Context, stdOut io.Writer, ref string) error {
	var label string

	err := s.update(ctx, func(doc *wgconfig.Document) error {
		peer, err := findPeer(doc, ref)
		if err != nil {
			return err
		}

		label = peer.Label()

		return doc.RemovePeer(peer)
	})

	if err != nil {
		return err
	}

	fmt.Fprintf(stdOut, "Removed peer %s\n", label)

	return nil
}

func (s *Service) PeerRename(ctx context.Context, stdOut io.Writer, ref, name string) error {
	var previous string

	err := s.update(ctx, func(doc *wgconfig.Document) error {
		peer, err := findPeer(doc, ref)
		if err != nil {
			return err
		}

		previous = peer.Label()

		return peer.SetName(name)
	})

	if err != nil {
		return err
	}

	fmt.Fprintf(stdOut, "Renamed peer %s -> %s\n", previous, name)

	return nil
}

func (s *Service) PeerSet(ctx context.Context, stdOut io.Writer, ref string, opts types.PeerOptions) error {
	if opts.PublicKey != nil {
		if err := keys.Validate(*opts.PublicKey); err != nil {
			return err
		}
	}

	var label string

	err := s.update(ctx, func(doc *wgconfig.Document) error {
		peer, err := findPeer(doc, ref)
		if err != nil {
			return err
		}

		if err := applyPeerOptions(peer, opts); err != nil {
			return err
		}

		label = peer.Label()

		return nil
	})

	if err != nil {
		return err
	}

	fmt.Fprintf(stdOut, "Updated peer %s\n", label)

	return nil
}

// Profile prints the wg-quick configuration for the peer's own device.
func (s *Service) Profile(ctx context.Context, stdOut io.Writer, ref string) error {
	if err := s.load(ctx); err != nil {
		return err
	}

	var config string

	err := s.Store.View(func(doc *wgconfig.Document) error {
		iface, err := doc.Interface()
		if err != nil {
			return err
		}

		peer, err := findPeer(doc, ref)
		if err != nil {
			return err
		}

		config, err = profiles.ClientConfig(iface, peer, s.Profiles)
		return err
	})

	if err != nil {
		return err
	}

	_, err = io.WriteString(stdOut, config)

	return err
}
