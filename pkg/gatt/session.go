package gatt

import (
	"context"
	"io"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/go-ble/ble"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gattscope/gattscope/pkg/models"
	"github.com/gattscope/gattscope/pkg/state"
	"github.com/gattscope/gattscope/pkg/util"
)

const (
	// DefaultScanWindow is the fixed discovery duration.
	DefaultScanWindow = 10 * time.Second
	// DefaultConnectTimeout bounds a single connection attempt.
	DefaultConnectTimeout = 15 * time.Second
)

// Options holds the session's scalar knobs.
type Options struct {
	ScanWindow     time.Duration
	ConnectTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.ScanWindow <= 0 {
		o.ScanWindow = DefaultScanWindow
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	return o
}

type eventKind int

const (
	eventNotify eventKind = iota
	eventDropped
	eventFlush
)

type event struct {
	kind    eventKind
	sid     string
	key     models.CharKey
	payload []byte
	done    chan struct{}
}

// Session translates scan/connect/read/write/notify intents into transport
// calls and routes transport callbacks back into the state service. It owns
// the ble.Client and per-key characteristic handles exclusively; the state
// service and UI never see them.
//
// Notification and unexpected-disconnect callbacks arrive on transport
// goroutines. They are marshaled through the events channel and applied by a
// single dispatch goroutine, which keeps per-key log order exactly equal to
// arrival order.
type Session struct {
	opts     Options
	state    *state.Service
	methods  coreMethods
	listener models.SessionListener
	log      *logrus.Logger

	mutex       sync.Mutex
	cln         ble.Client
	chars       map[models.CharKey]*ble.Characteristic
	sessionID   string
	deviceReady bool

	pending mapset.Set
	events  chan event
	quit    chan struct{}
}

// NewSession wires a session against the real BLE stack.
func NewSession(st *state.Service, listener models.SessionListener, log *logrus.Logger, opts Options) *Session {
	return newSessionWithMethods(st, listener, log, opts, &realCoreMethods{})
}

func newSessionWithMethods(st *state.Service, listener models.SessionListener, log *logrus.Logger, opts Options, methods coreMethods) *Session {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	s := &Session{
		opts:     opts.withDefaults(),
		state:    st,
		methods:  methods,
		listener: listener,
		log:      log,
		pending:  mapset.NewSet(),
		events:   make(chan event, 64),
		quit:     make(chan struct{}),
	}
	go s.dispatchLoop()
	return s
}

// Close tears down any connection and stops the dispatch goroutine.
func (s *Session) Close() {
	s.Disconnect()
	close(s.quit)
}

func (s *Session) dispatchLoop() {
	for {
		select {
		case ev := <-s.events:
			switch ev.kind {
			case eventNotify:
				s.handleNotify(ev)
			case eventDropped:
				s.handleDropped(ev.sid)
			case eventFlush:
				close(ev.done)
			}
		case <-s.quit:
			return
		}
	}
}

func (s *Session) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.quit:
	}
}

func (s *Session) currentSession() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.sessionID
}

func (s *Session) handleNotify(ev event) {
	// Drop late notifications from a connection that no longer exists.
	if ev.sid != s.currentSession() {
		return
	}
	s.state.AppendLog(ev.key, ev.payload)
}

func (s *Session) handleDropped(sid string) {
	s.mutex.Lock()
	if sid != s.sessionID {
		s.mutex.Unlock()
		return
	}
	s.log.WithField("session", sid).Warn("transport reported unexpected disconnect")
	s.teardownLocked(false)
	s.mutex.Unlock()
	if s.listener != nil {
		s.listener.OnDisconnected()
	}
}

func (s *Session) ensureDevice() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.deviceReady {
		return nil
	}
	if err := s.methods.SetDefaultDevice(s.opts.ConnectTimeout); err != nil {
		return err
	}
	s.deviceReady = true
	return nil
}

// Scan runs device discovery for the configured fixed window. The registry
// is reset once at scan start, then every advertisement upserts its device,
// named or not. The window expiring is the success path.
func (s *Session) Scan(ctx context.Context) error {
	if err := s.ensureDevice(); err != nil {
		return &ScanError{Err: err}
	}
	s.state.ResetDevices()
	ctx, cancel := context.WithTimeout(ctx, s.opts.ScanWindow)
	defer cancel()
	err := s.methods.Scan(ctx, func(a ble.Advertisement) {
		s.state.UpsertDevice(models.DeviceInfo{
			Addr: a.Addr().String(),
			Name: a.LocalName(),
			RSSI: a.RSSI(),
		})
	})
	switch errors.Cause(err) {
	case nil, context.DeadlineExceeded, context.Canceled:
		return nil
	default:
		s.log.WithError(err).Error("scan failed")
		return &ScanError{Err: err}
	}
}

// Connect dials the address, discovers the GATT profile, and installs the
// topology. On any failure state is left untouched: no partial topology
// ever becomes visible. A previous connection, if any, is torn down first.
func (s *Session) Connect(ctx context.Context, addr string) error {
	if err := s.ensureDevice(); err != nil {
		return &ConnectError{Addr: addr, Err: err}
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.cln != nil {
		if terr := s.teardownLocked(true); terr != nil && s.listener != nil {
			s.listener.OnInternalError(errors.Wrap(terr, "CancelConnection issue"))
		}
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.opts.ConnectTimeout)
	defer cancel()
	cln, err := s.methods.Dial(dialCtx, ble.NewAddr(addr))
	if err != nil {
		return &ConnectError{Addr: addr, Err: err}
	}

	var profile *ble.Profile
	err = util.CatchErrs(func() error {
		p, e := cln.DiscoverProfile(true)
		profile = p
		return e
	})
	if err != nil {
		cln.CancelConnection()
		return &ConnectError{Addr: addr, Err: errors.Wrap(err, "DiscoverProfile issue")}
	}

	topology, chars := mapProfile(profile)
	sid := uuid.New().String()
	s.cln = cln
	s.chars = chars
	s.sessionID = sid
	s.state.SetConnection(addr, topology)
	s.log.WithField("session", sid).WithField("addr", addr).
		WithField("characteristics", len(chars)).Info("connected")

	go func() {
		<-cln.Disconnected()
		s.post(event{kind: eventDropped, sid: sid})
	}()

	if s.listener != nil {
		s.listener.OnConnected(addr)
	}
	return nil
}

// Disconnect requests teardown and returns state to "not connected"
// regardless of teardown success. A teardown failure is surfaced through
// OnInternalError; the disconnect itself still completes. Safe to call
// with no connection.
func (s *Session) Disconnect() {
	s.mutex.Lock()
	connected := s.cln != nil
	err := s.teardownLocked(true)
	s.mutex.Unlock()
	if s.listener != nil {
		if err != nil {
			s.listener.OnInternalError(errors.Wrap(err, "CancelConnection issue"))
		}
		if connected {
			s.listener.OnDisconnected()
		}
	}
}

func (s *Session) teardownLocked(cancel bool) error {
	var err error
	if s.cln != nil && cancel {
		err = util.CatchErrs(s.cln.CancelConnection)
		if err != nil {
			s.log.WithError(err).Warn("CancelConnection issue during teardown")
		}
	}
	s.cln = nil
	s.chars = nil
	s.sessionID = ""
	s.pending.Clear()
	s.state.ClearConnection()
	return err
}

func (s *Session) lookupLocked(key models.CharKey) (*ble.Characteristic, models.CharacteristicInfo, error) {
	if s.cln == nil {
		return nil, models.CharacteristicInfo{}, &CapabilityError{Key: key, Need: "an active connection"}
	}
	char, ok := s.chars[key]
	if !ok {
		return nil, models.CharacteristicInfo{}, &CapabilityError{Key: key, Need: "a discovered characteristic"}
	}
	info, ok := s.state.FindChar(key)
	if !ok {
		return nil, models.CharacteristicInfo{}, &CapabilityError{Key: key, Need: "a discovered characteristic"}
	}
	return char, info, nil
}

// Read fetches the characteristic's value and appends exactly one log
// entry. Transport failures append nothing.
func (s *Session) Read(key models.CharKey) (models.LogEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	char, info, err := s.lookupLocked(key)
	if err != nil {
		return models.LogEntry{}, err
	}
	if !info.Readable() {
		return models.LogEntry{}, &CapabilityError{Key: key, Need: "the read capability"}
	}
	var data []byte
	err = util.CatchErrs(func() error {
		d, e := s.cln.ReadCharacteristic(char)
		data = d
		return e
	})
	if err != nil {
		s.log.WithError(err).WithField("char", key.String()).Error("read failed")
		return models.LogEntry{}, &ReadError{Key: key, Err: err}
	}
	return s.state.AppendLog(key, data), nil
}

// Write sends the payload, preferring write-with-response when the
// characteristic supports it and falling back to without-response when the
// responded write fails and the characteristic allows it. On success the
// outgoing payload is appended to the key's history so sent values show up
// next to what the device reported.
func (s *Session) Write(key models.CharKey, payload []byte) (models.LogEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	char, info, err := s.lookupLocked(key)
	if err != nil {
		return models.LogEntry{}, err
	}
	if !info.Writable() && !info.WritableNR() {
		return models.LogEntry{}, &CapabilityError{Key: key, Need: "the write capability"}
	}

	write := func(noRsp bool) error {
		return util.CatchErrs(func() error {
			return s.cln.WriteCharacteristic(char, payload, noRsp)
		})
	}
	err = write(!info.Writable())
	if err != nil && info.Writable() && info.WritableNR() {
		s.log.WithError(err).WithField("char", key.String()).
			Warn("responded write failed, retrying without response")
		err = write(true)
	}
	if err != nil {
		s.log.WithError(err).WithField("char", key.String()).Error("write failed")
		return models.LogEntry{}, &WriteError{Key: key, Op: "write", Err: err}
	}
	return s.state.AppendLog(key, payload), nil
}

// ToggleNotify subscribes or unsubscribes the key and flips the
// subscription set only after transport success. A second toggle for the
// same key while one is in flight fails fast with BusyError instead of
// racing the transport.
func (s *Session) ToggleNotify(key models.CharKey) (subscribed bool, err error) {
	s.mutex.Lock()
	char, info, err := s.lookupLocked(key)
	if err != nil {
		s.mutex.Unlock()
		return false, err
	}
	if !info.Notifiable() {
		s.mutex.Unlock()
		return false, &CapabilityError{Key: key, Need: "the notify or indicate capability"}
	}
	if s.pending.Contains(key) {
		s.mutex.Unlock()
		return s.state.IsSubscribed(key), &BusyError{Key: key}
	}
	s.pending.Add(key)
	cln := s.cln
	sid := s.sessionID
	// Indications only matter when the characteristic cannot notify.
	indicate := info.Properties&models.CapNotify == 0
	wasSubscribed := s.state.IsSubscribed(key)
	s.mutex.Unlock()
	defer s.pending.Remove(key)

	if wasSubscribed {
		err = util.CatchErrs(func() error {
			return cln.Unsubscribe(char, indicate)
		})
		if err != nil {
			s.log.WithError(err).WithField("char", key.String()).Error("unsubscribe failed")
			return true, &WriteError{Key: key, Op: "unsubscribe", Err: err}
		}
		s.state.ToggleSubscription(key)
		return false, nil
	}

	handler := func(data []byte) {
		// The transport may reuse its buffer after the callback returns.
		payload := make([]byte, len(data))
		copy(payload, data)
		s.post(event{kind: eventNotify, sid: sid, key: key, payload: payload})
	}
	err = util.CatchErrs(func() error {
		return cln.Subscribe(char, indicate, handler)
	})
	if err != nil {
		s.log.WithError(err).WithField("char", key.String()).Error("subscribe failed")
		return false, &WriteError{Key: key, Op: "subscribe", Err: err}
	}
	s.state.ToggleSubscription(key)
	return true, nil
}

func mapProfile(p *ble.Profile) ([]models.CharacteristicInfo, map[models.CharKey]*ble.Characteristic) {
	topology := []models.CharacteristicInfo{}
	chars := map[models.CharKey]*ble.Characteristic{}
	if p == nil {
		return topology, chars
	}
	for _, svc := range p.Services {
		for _, char := range svc.Characteristics {
			props := 0
			if char.Property&ble.CharRead != 0 {
				props |= models.CapRead
			}
			if char.Property&ble.CharWrite != 0 {
				props |= models.CapWrite
			}
			if char.Property&ble.CharWriteNR != 0 {
				props |= models.CapWriteNR
			}
			if char.Property&ble.CharNotify != 0 {
				props |= models.CapNotify
			}
			if char.Property&ble.CharIndicate != 0 {
				props |= models.CapIndicate
			}
			key := models.CharKey{
				ServiceUUID: svc.UUID.String(),
				CharUUID:    char.UUID.String(),
				Handle:      char.Handle,
			}
			topology = append(topology, models.CharacteristicInfo{Key: key, Properties: props})
			chars[key] = char
		}
	}
	return topology, chars
}

// flush waits until every event posted before the call has been applied.
func (s *Session) flush() {
	done := make(chan struct{})
	s.post(event{kind: eventFlush, done: done})
	select {
	case <-done:
	case <-s.quit:
	}
}
