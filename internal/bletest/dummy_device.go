package bletest

import "github.com/go-ble/ble"

type DummyAddr struct {
	Address string
}

func (addr DummyAddr) String() string { return addr.Address }

// DummyAdv is a canned advertisement for scan tests.
type DummyAdv struct {
	Address ble.Addr
	Name    string
	Rssi    int
}

func (a DummyAdv) LocalName() string              { return a.Name }
func (a DummyAdv) ManufacturerData() []byte       { return nil }
func (a DummyAdv) ServiceData() []ble.ServiceData { return nil }
func (a DummyAdv) Services() []ble.UUID           { return nil }
func (a DummyAdv) OverflowService() []ble.UUID    { return nil }
func (a DummyAdv) TxPowerLevel() int              { return 0 }
func (a DummyAdv) Connectable() bool              { return true }
func (a DummyAdv) SolicitedService() []ble.UUID   { return nil }
func (a DummyAdv) RSSI() int                      { return a.Rssi }
func (a DummyAdv) Addr() ble.Addr                 { return a.Address }

// Profile builds a one-service profile whose characteristics carry the
// given property masks, with handles assigned sequentially from 10.
func Profile(serviceUUID string, charUUID string, props []ble.Property) *ble.Profile {
	svcUUID := ble.MustParse(serviceUUID)
	chars := []*ble.Characteristic{}
	for i, p := range props {
		u := ble.MustParse(charUUID)
		chars = append(chars, &ble.Characteristic{
			UUID:     u,
			Property: p,
			Handle:   uint16(10 + 2*i),
		})
	}
	return &ble.Profile{
		Services: []*ble.Service{
			{UUID: svcUUID, Characteristics: chars},
		},
	}
}
