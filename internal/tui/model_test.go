package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gotest.tools/assert"

	"github.com/gattscope/gattscope/internal/config"
	"github.com/gattscope/gattscope/pkg/models"
	"github.com/gattscope/gattscope/pkg/state"
)

type fakeSession struct {
	st          *state.Service
	scanErr     error
	connectErr  error
	disconnects int
	reads       []models.CharKey
	writes      [][]byte
}

func (f *fakeSession) Scan(context.Context) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	f.st.ResetDevices()
	f.st.UpsertDevice(models.DeviceInfo{Addr: "aa:bb", Name: "near", RSSI: -40})
	f.st.UpsertDevice(models.DeviceInfo{Addr: "cc:dd", Name: "far", RSSI: -70})
	return nil
}

func (f *fakeSession) Connect(_ context.Context, addr string) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.st.SetConnection(addr, []models.CharacteristicInfo{
		{Key: models.CharKey{ServiceUUID: "180f", CharUUID: "2a19", Handle: 10}, Properties: models.CapRead},
		{Key: models.CharKey{ServiceUUID: "180f", CharUUID: "2a19", Handle: 12}, Properties: models.CapWrite},
	})
	return nil
}

func (f *fakeSession) Disconnect() {
	f.disconnects++
	f.st.ClearConnection()
}

func (f *fakeSession) Read(key models.CharKey) (models.LogEntry, error) {
	f.reads = append(f.reads, key)
	return f.st.AppendLog(key, []byte{0x64}), nil
}

func (f *fakeSession) Write(key models.CharKey, payload []byte) (models.LogEntry, error) {
	f.writes = append(f.writes, payload)
	return f.st.AppendLog(key, payload), nil
}

func (f *fakeSession) ToggleNotify(key models.CharKey) (bool, error) {
	return f.st.ToggleSubscription(key), nil
}

func newTestModel(t *testing.T) (Model, *fakeSession, *state.Service) {
	t.Helper()
	st := state.NewService(0)
	f := &fakeSession{st: st}
	return NewModel(st, f, config.Default()), f, st
}

func runUpdate(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestScanFlow(t *testing.T) {
	m, _, st := newTestModel(t)
	cmd := m.scanCmd()
	msg := cmd()
	m, _ = runUpdate(t, m, msg)
	assert.Assert(t, !m.scanning)
	assert.Equal(t, m.status, "Scan complete: 2 device(s).")
	assert.Equal(t, st.OrderedDevices()[0].Addr, "aa:bb")
}

func TestScanKeyIgnoredWhileScanning(t *testing.T) {
	m, _, _ := newTestModel(t)
	assert.Assert(t, m.scanning)
	_, cmd := runUpdate(t, m, keyMsg("s"))
	assert.Assert(t, cmd == nil)
}

func TestConnectFlow(t *testing.T) {
	m, f, st := newTestModel(t)
	m, _ = runUpdate(t, m, m.scanCmd()().(scanDoneMsg))

	m, cmd := runUpdate(t, m, keyMsg("c"))
	assert.Assert(t, m.connecting)
	assert.Assert(t, cmd != nil)

	// drive the async connect to completion
	assert.NilError(t, f.Connect(context.Background(), "aa:bb"))
	m, _ = runUpdate(t, m, connectDoneMsg{addr: "aa:bb"})
	assert.Assert(t, !m.connecting)
	assert.Equal(t, m.pane, PaneGatt)
	assert.Equal(t, st.ConnectedAddr(), "aa:bb")
}

func TestConnectKeyIgnoredWhileConnecting(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = runUpdate(t, m, m.scanCmd()().(scanDoneMsg))

	m, cmd := runUpdate(t, m, keyMsg("c"))
	assert.Assert(t, m.connecting)
	assert.Assert(t, cmd != nil)

	// a second press mid-connect must not dial again
	_, cmd = runUpdate(t, m, keyMsg("c"))
	assert.Assert(t, cmd == nil)
}

func TestValueHeightToggle(t *testing.T) {
	m, f, st := newTestModel(t)
	assert.NilError(t, f.Connect(context.Background(), "aa:bb"))
	key := st.Topology()[0].Key
	st.AppendLog(key, []byte(`{"a":1,"b":2,"c":3,"d":4,"e":5,"f":6,"g":7}`))
	m.width = 120
	m.height = 40
	m.charCursor = 0

	out := m.View()
	assert.Assert(t, strings.Contains(out, "(h to expand)"))

	m, _ = runUpdate(t, m, keyMsg("h"))
	out = m.View()
	assert.Assert(t, !strings.Contains(out, "(h to expand)"))

	// second press collapses again
	m, _ = runUpdate(t, m, keyMsg("h"))
	out = m.View()
	assert.Assert(t, strings.Contains(out, "(h to expand)"))
}

func TestWriteDialogRejectsBadHex(t *testing.T) {
	m, f, _ := newTestModel(t)
	assert.NilError(t, f.Connect(context.Background(), "aa:bb"))
	m.pane = PaneGatt
	m.charCursor = 1 // the writable characteristic

	m, _ = runUpdate(t, m, keyMsg("w"))
	assert.Assert(t, m.writeActive)

	m.writeInput.SetValue("0A0")
	m, _ = runUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Assert(t, m.writeActive)
	assert.Assert(t, m.statusErr)
	assert.Equal(t, len(f.writes), 0)
}

func TestWriteDialogSendsParsedHex(t *testing.T) {
	m, f, _ := newTestModel(t)
	assert.NilError(t, f.Connect(context.Background(), "aa:bb"))
	m.pane = PaneGatt
	m.charCursor = 1

	m, _ = runUpdate(t, m, keyMsg("w"))
	m.writeInput.SetValue("0a 0b")
	m, cmd := runUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Assert(t, !m.writeActive)
	msg := cmd()
	m, _ = runUpdate(t, m, msg)
	assert.Equal(t, len(f.writes), 1)
	assert.DeepEqual(t, f.writes[0], []byte{0x0a, 0x0b})
	assert.Equal(t, m.status, "Wrote 2 byte(s) to 2a19")
}

func TestWriteKeyRequiresWritableChar(t *testing.T) {
	m, f, _ := newTestModel(t)
	assert.NilError(t, f.Connect(context.Background(), "aa:bb"))
	m.pane = PaneGatt
	m.charCursor = 0 // read-only characteristic

	m, _ = runUpdate(t, m, keyMsg("w"))
	assert.Assert(t, !m.writeActive)
	assert.Equal(t, m.status, "Selected characteristic is not writable.")
}

func TestUnexpectedDisconnectStatus(t *testing.T) {
	m, f, st := newTestModel(t)
	assert.NilError(t, f.Connect(context.Background(), "aa:bb"))
	st.ClearConnection()
	m, _ = runUpdate(t, m, DisconnectedMsg{})
	assert.Equal(t, m.status, "Device disconnected unexpectedly")
	assert.Equal(t, m.pane, PaneDevices)
}

func TestViewRendersWithoutConnection(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.width = 120
	m.height = 30
	out := m.View()
	assert.Assert(t, len(out) > 0)
}
