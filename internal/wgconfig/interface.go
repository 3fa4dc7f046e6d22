package wgconfig

import (
	"fmt"
	"strconv"
)

const (
	InterfaceSection = "Interface"

	InterfaceAddress    = "Address"
	InterfaceListenPort = "ListenPort"
	InterfacePrivateKey = "PrivateKey"
	InterfaceDNS        = "DNS"
	InterfaceTable      = "Table"
	InterfaceMTU        = "MTU"
	InterfacePreUp      = "PreUp"
	InterfacePostUp     = "PostUp"
	InterfacePreDown    = "PreDown"
	InterfacePostDown   = "PostDown"
	InterfaceSaveConfig = "SaveConfig"

	InterfaceHostMetadata = "Host"
)

// Interface is the typed view of this node's own [Interface] section.
//
// Getters fail with ErrNotFound when the key is missing. The lifecycle
// command lists (PreUp, PostUp, PreDown, PostDown) may legitimately be empty
// and never report ErrNotFound.
type Interface struct {
	view
}

func (i *Interface) Addresses() ([]string, error) {
	return i.list(InterfaceAddress)
}

func (i *Interface) SetAddresses(addresses ...string) error {
	return i.set(InterfaceAddress, joinList(addresses))
}

func (i *Interface) ListenPort() (int, error) {
	return i.integer(InterfaceListenPort)
}

func (i *Interface) SetListenPort(port int) error {
	return i.set(InterfaceListenPort, strconv.Itoa(port))
}

func (i *Interface) PrivateKey() (string, error) {
	return i.value(InterfacePrivateKey)
}

func (i *Interface) SetPrivateKey(key string) error {
	return i.set(InterfacePrivateKey, key)
}

func (i *Interface) DNS() ([]string, error) {
	return i.list(InterfaceDNS)
}

func (i *Interface) SetDNS(servers ...string) error {
	return i.set(InterfaceDNS, joinList(servers))
}

// Table is "off", "auto" or the name of a routing table.
func (i *Interface) Table() (string, error) {
	return i.value(InterfaceTable)
}

func (i *Interface) SetTable(table string) error {
	return i.set(InterfaceTable, table)
}

func (i *Interface) MTU() (int, error) {
	return i.integer(InterfaceMTU)
}

func (i *Interface) SetMTU(mtu int) error {
	return i.set(InterfaceMTU, strconv.Itoa(mtu))
}

func (i *Interface) PreUp() ([]string, error) {
	return i.all(InterfacePreUp)
}

func (i *Interface) SetPreUp(commands ...string) error {
	return i.set(InterfacePreUp, commands...)
}

func (i *Interface) PostUp() ([]string, error) {
	return i.all(InterfacePostUp)
}

func (i *Interface) SetPostUp(commands ...string) error {
	return i.set(InterfacePostUp, commands...)
}

func (i *Interface) PreDown() ([]string, error) {
	return i.all(InterfacePreDown)
}

func (i *Interface) SetPreDown(commands ...string) error {
	return i.set(InterfacePreDown, commands...)
}

func (i *Interface) PostDown() ([]string, error) {
	return i.all(InterfacePostDown)
}

func (i *Interface) SetPostDown(commands ...string) error {
	return i.set(InterfacePostDown, commands...)
}

func (i *Interface) SaveConfig() (bool, error) {
	value, err := i.value(InterfaceSaveConfig)
	if err != nil {
		return false, err
	}

	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}

	return false, fmt.Errorf("%w: %s = %q", ErrInvalidValue, InterfaceSaveConfig, value)
}

func (i *Interface) SetSaveConfig(save bool) error {
	return i.set(InterfaceSaveConfig, strconv.FormatBool(save))
}

// HostAddress is the address or FQDN peers use to reach this interface. It
// is stored as metadata, WireGuard itself has no such key.
func (i *Interface) HostAddress() (string, error) {
	return i.metadata(InterfaceHostMetadata)
}

func (i *Interface) SetHostAddress(host string) error {
	return i.setMetadata(InterfaceHostMetadata, host)
}
