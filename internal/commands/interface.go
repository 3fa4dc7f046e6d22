package commands

import (
	"context"
	"fmt"
	"io"

	"wgconf/internal/commands/types"
	"wgconf/internal/configstore"
	"wgconf/internal/wgconfig"
)

func applyInterfaceOptions(iface *wgconfig.Interface, opts types.InterfaceOptions) error {
	var setters []func() error

	if len(opts.Addresses) > 0 {
		setters = append(setters, func() error { return iface.SetAddresses(opts.Addresses...) })
	}

	if opts.ListenPort != nil {
		if *opts.ListenPort < 1 || *opts.ListenPort > 65535 {
			return fmt.Errorf("%w: listen port %d", wgconfig.ErrInvalidValue, *opts.ListenPort)
		}

		setters = append(setters, func() error { return iface.SetListenPort(*opts.ListenPort) })
	}

	if opts.Host != nil {
		setters = append(setters, func() error { return iface.SetHostAddress(*opts.Host) })
	}

	if len(opts.DNS) > 0 {
		setters = append(setters, func() error { return iface.SetDNS(opts.DNS...) })
	}

	if opts.MTU != nil {
		setters = append(setters, func() error { return iface.SetMTU(*opts.MTU) })
	}

	if opts.Table != nil {
		setters = append(setters, func() error { return iface.SetTable(*opts.Table) })
	}

	if opts.SaveConfig != nil {
		setters = append(setters, func() error { return iface.SetSaveConfig(*opts.SaveConfig) })
	}

	for _, set := range setters {
		if err := set(); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) InterfaceSet(ctx context.Context, stdOut io.Writer, opts types.InterfaceOptions) error {
	err := s.update(ctx, func(doc *wgconfig.Document) error {
		iface, err := doc.Interface()
		if err != nil {
			return err
		}

		return applyInterfaceOptions(iface, opts)
	})

	if err != nil {
		return err
	}

	fmt.Fprintf(stdOut, "Interface updated\n")

	return nil
}

// Init writes a new configuration with only an [Interface] section. An
// existing file is backed up and replaced only when force is set.
func (s *Service) Init(ctx context.Context, stdOut io.Writer, force bool) error {
	var defaults configstore.InterfaceDefaults

	if s.Defaults != nil {
		var err error

		if defaults, err = s.Defaults(ctx); err != nil {
			return err
		}
	}

	if err := s.Store.Init(ctx, defaults, force); err != nil {
		return err
	}

	var path string

	_ = s.Store.View(func(doc *wgconfig.Document) error {
		path = doc.Path()
		return nil
	})

	fmt.Fprintf(stdOut, "Wrote new configuration to %s\n", path)

	return nil
}
