package commands

import (
	"context"
	"errors"
	"fmt"

	"wgconf/internal/configstore"
	"wgconf/internal/profiles"
	"wgconf/internal/wgconfig"
)

var (
	ErrNotInitialized = errors.New("no configuration found, run 'wgconf init' first")
	ErrAmbiguousPeer  = errors.New("more than one peer matches")
	ErrUnknownFormat  = errors.New("unknown output format")
)

// Service implements the CLI commands on top of a Store. Every method prints
// its result to stdOut and returns an error instead of printing it.
type Service struct {
	Store    *configstore.Store
	Profiles profiles.Options

	// Defaults seeds the [Interface] section written by Init.
	Defaults func(ctx context.Context) (configstore.InterfaceDefaults, error)
}

// load reads the configuration file, failing with ErrNotInitialized when it
// does not exist yet.
func (s *Service) load(ctx context.Context) error {
	if err := s.checkExists(); err != nil {
		return err
	}

	return s.Store.Load(ctx)
}

func (s *Service) checkExists() error {
	exists := false

	_ = s.Store.View(func(doc *wgconfig.Document) error {
		exists = doc.ConfigExists()
		return nil
	})

	if !exists {
		return ErrNotInitialized
	}

	return nil
}

// update applies fn to the file as it is on disk and commits the result in
// one locked step.
func (s *Service) update(ctx context.Context, fn func(doc *wgconfig.Document) error) error {
	if err := s.checkExists(); err != nil {
		return err
	}

	return s.Store.Transact(ctx, fn)
}

// findPeer resolves ref as a public key first and as a peer name second.
func findPeer(doc *wgconfig.Document, ref string) (*wgconfig.Peer, error) {
	if peer, err := doc.Peer(ref); err == nil {
		return peer, nil
	}

	var matches []*wgconfig.Peer

	for _, peer := range doc.Peers() {
		if name, err := peer.Name(); err == nil && name == ref {
			matches = append(matches, peer)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: peer %q", wgconfig.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	}

	return nil, fmt.Errorf("%w: %q, use its public key", ErrAmbiguousPeer, ref)
}
