package state

import (
	"sync"

	"github.com/bradfitz/slice"
	mapset "github.com/deckarep/golang-set"

	"github.com/gattscope/gattscope/pkg/models"
)

// DefaultLogCap bounds each characteristic's value history.
const DefaultLogCap = 200

// Service is the single source of truth the UI reads from: the device
// registry of the last scan, the active connection's discovered topology,
// per-characteristic value histories, and the subscription set. Every
// mutator holds the mutex since scan advertisements and the notification
// dispatcher run on their own goroutines.
type Service struct {
	mutex         sync.RWMutex
	logCap        int
	devices       map[string]models.DeviceInfo
	connectedAddr string
	topology      []models.CharacteristicInfo
	logs          map[models.CharKey][]models.LogEntry
	received      map[models.CharKey]int
	subscribed    mapset.Set
}

// NewService returns an empty state service. A logCap <= 0 selects
// DefaultLogCap.
func NewService(logCap int) *Service {
	if logCap <= 0 {
		logCap = DefaultLogCap
	}
	return &Service{
		logCap:     logCap,
		devices:    map[string]models.DeviceInfo{},
		logs:       map[models.CharKey][]models.LogEntry{},
		received:   map[models.CharKey]int{},
		subscribed: mapset.NewSet(),
	}
}

// ResetDevices clears the device registry. Called once at scan start.
func (s *Service) ResetDevices() {
	s.mutex.Lock()
	s.devices = map[string]models.DeviceInfo{}
	s.mutex.Unlock()
}

// UpsertDevice inserts or replaces a device by address, latest RSSI wins.
func (s *Service) UpsertDevice(dev models.DeviceInfo) {
	s.mutex.Lock()
	s.devices[dev.Addr] = dev
	s.mutex.Unlock()
}

// OrderedDevices returns the registry sorted strongest signal first, with a
// stable tie-break on address so repeated renders stay deterministic.
func (s *Service) OrderedDevices() []models.DeviceInfo {
	s.mutex.RLock()
	devs := make([]models.DeviceInfo, 0, len(s.devices))
	for _, dev := range s.devices {
		devs = append(devs, dev)
	}
	s.mutex.RUnlock()
	slice.Sort(devs, func(i, j int) bool {
		if devs[i].RSSI != devs[j].RSSI {
			return devs[i].RSSI > devs[j].RSSI
		}
		return devs[i].Addr < devs[j].Addr
	})
	return devs
}

// DeviceCount returns the registry size.
func (s *Service) DeviceCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.devices)
}

// SetConnection replaces the characteristic topology wholesale after a
// successful connect and discovery. A new connection is a new universe:
// logs and subscriptions from any prior session are dropped here.
func (s *Service) SetConnection(addr string, topology []models.CharacteristicInfo) {
	s.mutex.Lock()
	s.connectedAddr = addr
	s.topology = topology
	s.logs = map[models.CharKey][]models.LogEntry{}
	s.received = map[models.CharKey]int{}
	s.subscribed = mapset.NewSet()
	s.mutex.Unlock()
}

// ClearConnection drops topology, logs, subscriptions and the connection
// marker. Idempotent: the transport-detected and user-initiated disconnect
// paths may both land here.
func (s *Service) ClearConnection() {
	s.mutex.Lock()
	s.connectedAddr = ""
	s.topology = nil
	s.logs = map[models.CharKey][]models.LogEntry{}
	s.received = map[models.CharKey]int{}
	s.subscribed = mapset.NewSet()
	s.mutex.Unlock()
}

// ConnectedAddr returns the active connection's address, or "" when not
// connected.
func (s *Service) ConnectedAddr() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.connectedAddr
}

// Topology returns the discovered characteristics in discovery order.
func (s *Service) Topology() []models.CharacteristicInfo {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make([]models.CharacteristicInfo, len(s.topology))
	copy(out, s.topology)
	return out
}

// FindChar looks a characteristic up by key.
func (s *Service) FindChar(key models.CharKey) (models.CharacteristicInfo, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	for _, info := range s.topology {
		if info.Key == key {
			return info, true
		}
	}
	return models.CharacteristicInfo{}, false
}

// AppendLog stamps and appends a payload to the key's bounded history,
// evicting the oldest entry once the cap is reached. Returns the entry.
func (s *Service) AppendLog(key models.CharKey, payload []byte) models.LogEntry {
	entry := models.NewLogEntry(payload)
	s.mutex.Lock()
	log := s.logs[key]
	if len(log) >= s.logCap {
		log = log[1:]
	}
	s.logs[key] = append(log, entry)
	s.received[key]++
	s.mutex.Unlock()
	return entry
}

// LogFor returns the key's history in arrival order.
func (s *Service) LogFor(key models.CharKey) []models.LogEntry {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make([]models.LogEntry, len(s.logs[key]))
	copy(out, s.logs[key])
	return out
}

// Latest returns the newest entry for the key, if any.
func (s *Service) Latest(key models.CharKey) (models.LogEntry, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	log := s.logs[key]
	if len(log) == 0 {
		return models.LogEntry{}, false
	}
	return log[len(log)-1], true
}

// LogCount reports the live count for the key's history display. The count
// is capped at the log cap; maxed turns true once the cap has been hit even
// though old entries keep rotating out underneath.
func (s *Service) LogCount(key models.CharKey) (n int, maxed bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	n = s.received[key]
	if n >= s.logCap {
		return s.logCap, true
	}
	return n, false
}

// ClearLog empties one characteristic's history and resets its counter.
// Subscription state is untouched.
func (s *Service) ClearLog(key models.CharKey) {
	s.mutex.Lock()
	delete(s.logs, key)
	delete(s.received, key)
	s.mutex.Unlock()
}

// ToggleSubscription flips the key's membership in the subscribed set and
// returns the new membership. Callers flip only after transport success so
// state and transport truth stay aligned.
func (s *Service) ToggleSubscription(key models.CharKey) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.subscribed.Contains(key) {
		s.subscribed.Remove(key)
		return false
	}
	s.subscribed.Add(key)
	return true
}

// IsSubscribed reports the key's membership in the subscribed set.
func (s *Service) IsSubscribed(key models.CharKey) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.subscribed.Contains(key)
}

// SubscribedCount returns the number of active subscriptions.
func (s *Service) SubscribedCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.subscribed.Cardinality()
}
