package types

// Summary is the printable state of one configuration file.
type Summary struct {
	Name      string            `json:"name" yaml:"name"`
	Path      string            `json:"path" yaml:"path"`
	Interface *InterfaceSummary `json:"interface,omitempty" yaml:"interface,omitempty"`
	Peers     []PeerSummary     `json:"peers" yaml:"peers"`
}

type InterfaceSummary struct {
	PublicKey  string   `json:"publicKey,omitempty" yaml:"publicKey,omitempty"`
	Addresses  []string `json:"addresses" yaml:"addresses"`
	ListenPort int      `json:"listenPort,omitempty" yaml:"listenPort,omitempty"`
	Host       string   `json:"host,omitempty" yaml:"host,omitempty"`
	DNS        []string `json:"dns,omitempty" yaml:"dns,omitempty"`
	MTU        int      `json:"mtu,omitempty" yaml:"mtu,omitempty"`
}

type PeerSummary struct {
	Label               string   `json:"label" yaml:"label"`
	Name                string   `json:"name,omitempty" yaml:"name,omitempty"`
	PublicKey           string   `json:"publicKey" yaml:"publicKey"`
	AllowedIPs          []string `json:"allowedIPs" yaml:"allowedIPs"`
	Endpoint            string   `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	PersistentKeepalive int      `json:"persistentKeepalive,omitempty" yaml:"persistentKeepalive,omitempty"`
	HasPresharedKey     bool     `json:"hasPresharedKey" yaml:"hasPresharedKey"`
	HasPrivateKey       bool     `json:"hasPrivateKey" yaml:"hasPrivateKey"`
}

// PeerOptions describes a peer to add or the fields of a peer to change.
// Nil fields are left alone.
type PeerOptions struct {
	Name                *string
	PublicKey           *string
	AllowedIPs          []string
	Endpoint            *string
	PersistentKeepalive *int
	PresharedKey        bool
}

// InterfaceOptions lists the [Interface] fields to change. Nil fields are
// left alone.
type InterfaceOptions struct {
	Addresses  []string
	ListenPort *int
	Host       *string
	DNS        []string
	MTU        *int
	Table      *string
	SaveConfig *bool
}
