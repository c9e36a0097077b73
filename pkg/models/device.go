package models

// DeviceInfo is a snapshot of one advertisement from a peripheral.
// A later advertisement from the same address replaces the record
// wholesale (latest RSSI wins) rather than mutating it in place.
type DeviceInfo struct {
	Addr string
	Name string
	RSSI int
}
