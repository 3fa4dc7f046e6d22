package wgconfig

import "strconv"

const (
	PeerSection = "Peer"

	PeerEndpoint            = "Endpoint"
	PeerAllowedIPs          = "AllowedIPs"
	PeerPublicKey           = "PublicKey"
	PeerPersistentKeepalive = "PersistentKeepalive"
	PeerPresharedKey        = "PresharedKey"

	PeerPrivateKeyMetadata = "privateKey"
	PeerNameMetadata       = "Name"
)

// Peer is the typed view of one [Peer] section.
type Peer struct {
	view
}

func (p *Peer) Endpoint() (string, error) {
	return p.value(PeerEndpoint)
}

func (p *Peer) SetEndpoint(endpoint string) error {
	return p.set(PeerEndpoint, endpoint)
}

func (p *Peer) AllowedIPs() ([]string, error) {
	return p.list(PeerAllowedIPs)
}

func (p *Peer) SetAllowedIPs(ips ...string) error {
	return p.set(PeerAllowedIPs, joinList(ips))
}

func (p *Peer) PublicKey() (string, error) {
	return p.value(PeerPublicKey)
}

func (p *Peer) SetPublicKey(key string) error {
	return p.set(PeerPublicKey, key)
}

func (p *Peer) PersistentKeepalive() (int, error) {
	return p.integer(PeerPersistentKeepalive)
}

func (p *Peer) SetPersistentKeepalive(seconds int) error {
	return p.set(PeerPersistentKeepalive, strconv.Itoa(seconds))
}

func (p *Peer) PresharedKey() (string, error) {
	return p.value(PeerPresharedKey)
}

func (p *Peer) SetPresharedKey(key string) error {
	return p.set(PeerPresharedKey, key)
}

// PrivateKey is only known for peers this program generated. It lives in
// metadata because a peer's private key is never part of the server config.
func (p *Peer) PrivateKey() (string, error) {
	return p.metadata(PeerPrivateKeyMetadata)
}

func (p *Peer) SetPrivateKey(key string) error {
	return p.setMetadata(PeerPrivateKeyMetadata, key)
}

func (p *Peer) Name() (string, error) {
	return p.metadata(PeerNameMetadata)
}

func (p *Peer) SetName(name string) error {
	return p.setMetadata(PeerNameMetadata, name)
}

// Label is the peer's name, falling back to its public key.
func (p *Peer) Label() string {
	if name, err := p.Name(); err == nil && name != "" {
		return name
	}

	if key, err := p.PublicKey(); err == nil {
		return key
	}

	return "<unnamed peer>"
}
