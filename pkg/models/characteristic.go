package models

import (
	"fmt"
	"strings"
)

// Capability flags for a characteristic. Mirrors the GATT property bits
// the transport reports during discovery.
const (
	CapRead = 1 << iota
	CapWrite
	CapWriteNR
	CapNotify
	CapIndicate
)

// CharKey identifies one characteristic instance within a connection.
// Handles are only unique per session, and duplicate service/characteristic
// UUID pairs are legal, so all three parts are needed.
type CharKey struct {
	ServiceUUID string
	CharUUID    string
	Handle      uint16
}

func (k CharKey) String() string {
	return fmt.Sprintf("%s:%s:%d", k.ServiceUUID, k.CharUUID, k.Handle)
}

// CharacteristicInfo describes one discovered characteristic. The full set
// is rebuilt on every connection and never merged across sessions.
type CharacteristicInfo struct {
	Key        CharKey
	Properties int
}

func (c CharacteristicInfo) Readable() bool   { return c.Properties&CapRead != 0 }
func (c CharacteristicInfo) Writable() bool   { return c.Properties&CapWrite != 0 }
func (c CharacteristicInfo) WritableNR() bool { return c.Properties&CapWriteNR != 0 }
func (c CharacteristicInfo) Notifiable() bool {
	return c.Properties&(CapNotify|CapIndicate) != 0
}

// PropertyNames returns the capability flags in display order.
func (c CharacteristicInfo) PropertyNames() []string {
	names := []string{}
	if c.Readable() {
		names = append(names, "read")
	}
	if c.Writable() {
		names = append(names, "write")
	}
	if c.WritableNR() {
		names = append(names, "write-without-response")
	}
	if c.Properties&CapNotify != 0 {
		names = append(names, "notify")
	}
	if c.Properties&CapIndicate != 0 {
		names = append(names, "indicate")
	}
	return names
}

func (c CharacteristicInfo) PropertyList() string {
	return strings.Join(c.PropertyNames(), ", ")
}
