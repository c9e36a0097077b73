package state

import (
	"fmt"
	"testing"

	"gotest.tools/assert"

	"github.com/gattscope/gattscope/pkg/models"
)

var (
	testKey      = models.CharKey{ServiceUUID: "180f", CharUUID: "2a19", Handle: 12}
	testOtherKey = models.CharKey{ServiceUUID: "180f", CharUUID: "2a19", Handle: 14}
)

func testTopology() []models.CharacteristicInfo {
	return []models.CharacteristicInfo{
		{Key: testKey, Properties: models.CapRead | models.CapNotify},
		{Key: testOtherKey, Properties: models.CapWrite},
	}
}

func TestOrderedDevicesSortsByRssi(t *testing.T) {
	s := NewService(0)
	s.UpsertDevice(models.DeviceInfo{Addr: "aa:aa", Name: "far", RSSI: -70})
	s.UpsertDevice(models.DeviceInfo{Addr: "bb:bb", Name: "near", RSSI: -40})
	devs := s.OrderedDevices()
	assert.Equal(t, len(devs), 2)
	assert.Equal(t, devs[0].Addr, "bb:bb")
	assert.Equal(t, devs[1].Addr, "aa:aa")
}

func TestOrderedDevicesTieBreaksByAddr(t *testing.T) {
	s := NewService(0)
	s.UpsertDevice(models.DeviceInfo{Addr: "cc:cc", RSSI: -50})
	s.UpsertDevice(models.DeviceInfo{Addr: "aa:aa", RSSI: -50})
	s.UpsertDevice(models.DeviceInfo{Addr: "bb:bb", RSSI: -50})
	devs := s.OrderedDevices()
	assert.Equal(t, devs[0].Addr, "aa:aa")
	assert.Equal(t, devs[1].Addr, "bb:bb")
	assert.Equal(t, devs[2].Addr, "cc:cc")
}

func TestUpsertDeviceReplacesByAddr(t *testing.T) {
	s := NewService(0)
	s.UpsertDevice(models.DeviceInfo{Addr: "aa:aa", RSSI: -80})
	s.UpsertDevice(models.DeviceInfo{Addr: "aa:aa", Name: "named", RSSI: -45})
	devs := s.OrderedDevices()
	assert.Equal(t, len(devs), 1)
	assert.Equal(t, devs[0].RSSI, -45)
	assert.Equal(t, devs[0].Name, "named")
}

func TestResetDevicesEmptiesRegistry(t *testing.T) {
	s := NewService(0)
	s.UpsertDevice(models.DeviceInfo{Addr: "aa:aa", RSSI: -50})
	s.ResetDevices()
	assert.Equal(t, s.DeviceCount(), 0)
}

func TestAppendLogEvictsOldestAtCap(t *testing.T) {
	s := NewService(0)
	for i := 0; i < DefaultLogCap+25; i++ {
		s.AppendLog(testKey, []byte(fmt.Sprintf("payload-%d", i)))
	}
	log := s.LogFor(testKey)
	assert.Equal(t, len(log), DefaultLogCap)
	assert.Equal(t, string(log[0].Payload), "payload-25")
	assert.Equal(t, string(log[DefaultLogCap-1].Payload), fmt.Sprintf("payload-%d", DefaultLogCap+24))

	n, maxed := s.LogCount(testKey)
	assert.Equal(t, n, DefaultLogCap)
	assert.Assert(t, maxed)
}

func TestAppendLogKeysAreIndependent(t *testing.T) {
	s := NewService(0)
	s.AppendLog(testKey, []byte("one"))
	s.AppendLog(testKey, []byte("two"))
	s.AppendLog(testOtherKey, []byte("other"))
	assert.Equal(t, len(s.LogFor(testKey)), 2)
	assert.Equal(t, len(s.LogFor(testOtherKey)), 1)

	s.ClearLog(testKey)
	assert.Equal(t, len(s.LogFor(testKey)), 0)
	assert.Equal(t, len(s.LogFor(testOtherKey)), 1)
	n, maxed := s.LogCount(testKey)
	assert.Equal(t, n, 0)
	assert.Assert(t, !maxed)
}

func TestAppendLogParsesJSON(t *testing.T) {
	s := NewService(0)
	entry := s.AppendLog(testKey, []byte(`{"a":1}`))
	parsed, ok := entry.JSON()
	assert.Assert(t, ok)
	assert.Equal(t, parsed, `{"a":1}`)

	entry = s.AppendLog(testKey, []byte{0xff, 0x00})
	_, ok = entry.JSON()
	assert.Assert(t, !ok)
	assert.Equal(t, entry.Hex(), "ff 00")
}

func TestSetConnectionClearsPriorSession(t *testing.T) {
	s := NewService(0)
	s.SetConnection("aa:aa", testTopology())
	s.AppendLog(testKey, []byte("stale"))
	s.ToggleSubscription(testKey)

	s.SetConnection("bb:bb", testTopology())
	assert.Equal(t, s.ConnectedAddr(), "bb:bb")
	assert.Equal(t, len(s.LogFor(testKey)), 0)
	assert.Assert(t, !s.IsSubscribed(testKey))
}

func TestClearConnectionIsIdempotent(t *testing.T) {
	s := NewService(0)
	s.SetConnection("aa:aa", testTopology())
	s.AppendLog(testKey, []byte("value"))
	s.ToggleSubscription(testKey)

	s.ClearConnection()
	s.ClearConnection()
	assert.Equal(t, s.ConnectedAddr(), "")
	assert.Equal(t, len(s.Topology()), 0)
	assert.Equal(t, len(s.LogFor(testKey)), 0)
	assert.Equal(t, s.SubscribedCount(), 0)
}

func TestToggleSubscriptionFlips(t *testing.T) {
	s := NewService(0)
	assert.Assert(t, s.ToggleSubscription(testKey))
	assert.Assert(t, s.IsSubscribed(testKey))
	assert.Assert(t, !s.ToggleSubscription(testKey))
	assert.Assert(t, !s.IsSubscribed(testKey))
}

func TestToggleSubscriptionSurvivesClearLog(t *testing.T) {
	s := NewService(0)
	s.ToggleSubscription(testKey)
	s.AppendLog(testKey, []byte("value"))
	s.ClearLog(testKey)
	assert.Assert(t, s.IsSubscribed(testKey))
}

func TestFindChar(t *testing.T) {
	s := NewService(0)
	s.SetConnection("aa:aa", testTopology())
	info, ok := s.FindChar(testKey)
	assert.Assert(t, ok)
	assert.Assert(t, info.Readable())
	assert.Assert(t, info.Notifiable())

	_, ok = s.FindChar(models.CharKey{ServiceUUID: "ffff", CharUUID: "ffff", Handle: 1})
	assert.Assert(t, !ok)
}

func TestLatest(t *testing.T) {
	s := NewService(0)
	_, ok := s.Latest(testKey)
	assert.Assert(t, !ok)
	s.AppendLog(testKey, []byte("first"))
	s.AppendLog(testKey, []byte("second"))
	entry, ok := s.Latest(testKey)
	assert.Assert(t, ok)
	assert.Equal(t, string(entry.Payload), "second")
}
