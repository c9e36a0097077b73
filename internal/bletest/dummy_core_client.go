package bletest

import (
	"sync"

	"github.com/go-ble/ble"
)

// WriteRecord captures one WriteCharacteristic call.
type WriteRecord struct {
	Char  *ble.Characteristic
	Value []byte
	NoRsp bool
}

// DummyCoreClient implements ble.Client against canned data. Error fields
// inject failures per call site; zero value means success.
type DummyCoreClient struct {
	mutex sync.Mutex

	addr           string
	GattProfile    *ble.Profile
	ReadData       []byte
	ReadErr        error
	WriteErr       error
	RespWriteErr   error // only responded writes fail when set
	SubscribeErr   error
	UnsubscribeErr error
	CancelErr      error

	Writes       []WriteRecord
	Handlers     map[uint16]ble.NotificationHandler
	Cancelled    int
	disconnected chan struct{}
}

func NewDummyCoreClient(addr string) *DummyCoreClient {
	return &DummyCoreClient{
		addr:         addr,
		Handlers:     map[uint16]ble.NotificationHandler{},
		disconnected: make(chan struct{}),
	}
}

// Notify pushes a payload through the handler registered for the handle,
// as the transport would on an incoming notification.
func (c *DummyCoreClient) Notify(handle uint16, data []byte) bool {
	c.mutex.Lock()
	h, ok := c.Handlers[handle]
	c.mutex.Unlock()
	if !ok {
		return false
	}
	h(data)
	return true
}

// Drop simulates the transport detecting an unexpected disconnect.
func (c *DummyCoreClient) Drop() {
	close(c.disconnected)
}

func (c *DummyCoreClient) ReadCharacteristic(char *ble.Characteristic) ([]byte, error) {
	if c.ReadErr != nil {
		return nil, c.ReadErr
	}
	return c.ReadData, nil
}

func (c *DummyCoreClient) WriteCharacteristic(char *ble.Characteristic, value []byte, noRsp bool) error {
	if c.WriteErr != nil {
		return c.WriteErr
	}
	if !noRsp && c.RespWriteErr != nil {
		return c.RespWriteErr
	}
	c.mutex.Lock()
	c.Writes = append(c.Writes, WriteRecord{Char: char, Value: value, NoRsp: noRsp})
	c.mutex.Unlock()
	return nil
}

func (c *DummyCoreClient) Subscribe(char *ble.Characteristic, ind bool, h ble.NotificationHandler) error {
	if c.SubscribeErr != nil {
		return c.SubscribeErr
	}
	c.mutex.Lock()
	c.Handlers[char.Handle] = h
	c.mutex.Unlock()
	return nil
}

func (c *DummyCoreClient) Unsubscribe(char *ble.Characteristic, ind bool) error {
	if c.UnsubscribeErr != nil {
		return c.UnsubscribeErr
	}
	c.mutex.Lock()
	delete(c.Handlers, char.Handle)
	c.mutex.Unlock()
	return nil
}

func (c *DummyCoreClient) CancelConnection() error {
	c.mutex.Lock()
	c.Cancelled++
	c.mutex.Unlock()
	return c.CancelErr
}

func (c *DummyCoreClient) Addr() ble.Addr                                   { return ble.NewAddr(c.addr) }
func (c *DummyCoreClient) Name() string                                     { return "dummy" }
func (c *DummyCoreClient) Profile() *ble.Profile                            { return c.GattProfile }
func (c *DummyCoreClient) DiscoverProfile(force bool) (*ble.Profile, error) { return c.GattProfile, nil }
func (c *DummyCoreClient) DiscoverServices(filter []ble.UUID) ([]*ble.Service, error) {
	return nil, nil
}
func (c *DummyCoreClient) DiscoverIncludedServices(filter []ble.UUID, s *ble.Service) ([]*ble.Service, error) {
	return nil, nil
}
func (c *DummyCoreClient) DiscoverCharacteristics(filter []ble.UUID, s *ble.Service) ([]*ble.Characteristic, error) {
	return nil, nil
}
func (c *DummyCoreClient) DiscoverDescriptors(filter []ble.UUID, char *ble.Characteristic) ([]*ble.Descriptor, error) {
	return nil, nil
}
func (c *DummyCoreClient) ReadLongCharacteristic(char *ble.Characteristic) ([]byte, error) {
	return c.ReadCharacteristic(char)
}
func (c *DummyCoreClient) ReadDescriptor(d *ble.Descriptor) ([]byte, error)  { return nil, nil }
func (c *DummyCoreClient) WriteDescriptor(d *ble.Descriptor, v []byte) error { return nil }
func (c *DummyCoreClient) ReadRSSI() int                                     { return 0 }
func (c *DummyCoreClient) ExchangeMTU(rxMTU int) (txMTU int, err error)      { return rxMTU, nil }
func (c *DummyCoreClient) ClearSubscriptions() error                         { return nil }
func (c *DummyCoreClient) Disconnected() <-chan struct{}                     { return c.disconnected }
func (c *DummyCoreClient) Conn() ble.Conn                                    { return nil }
