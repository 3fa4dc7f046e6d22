package api

import (
	"time"

	"wgconf/internal/wgconfig"
)

type ReleaseDTO struct {
	Release string `json:"release"`
}

type MetaDTO struct {
	Auth       bool `json:"auth"`
	NeedsSetup bool `json:"needsSetup"`
	ReadOnly   bool `json:"readOnly"`
}

type AuthDTO struct {
	Success bool `json:"success"`
}

type ErrorDTO struct {
	Error string `json:"error"`
}

// ServerDTO is the [Interface] section without its secrets.
type ServerDTO struct {
	wgconfig.SectionJSON

	Interface string  `json:"interface"`
	PublicKey *string `json:"publicKey"`
}

type ClientDTO struct {
	Ref                 string   `json:"ref"`
	Name                string   `json:"name"`
	PublicKey           string   `json:"publicKey"`
	AllowedIPs          []string `json:"allowedIPs"`
	Endpoint            string   `json:"endpoint,omitempty"`
	PersistentKeepalive int      `json:"persistentKeepalive,omitempty"`
	HasPresharedKey     bool     `json:"hasPresharedKey"`
	DownloadableConfig  bool     `json:"downloadableConfig"`
}

type BackupDTO struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	SHA256    string    `json:"sha256"`
	CreatedAt time.Time `json:"createdAt"`
}

type AddressesRequestDTO struct {
	Addresses []string `json:"addresses"`
}

type PortRequestDTO struct {
	Port int `json:"port"`
}

type NameRequestDTO struct {
	Name string `json:"name"`
}

type PublicKeyRequestDTO struct {
	PublicKey string `json:"publicKey"`
}

type PresharedKeyRequestDTO struct {
	PresharedKey string `json:"preSharedKey"`
}
