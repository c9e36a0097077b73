package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gattscope/gattscope/internal/config"
	"github.com/gattscope/gattscope/pkg/gatt"
	"github.com/gattscope/gattscope/pkg/models"
	"github.com/gattscope/gattscope/pkg/state"
	"github.com/gattscope/gattscope/pkg/util"
)

// Pane identifies the focused column.
type Pane int

const (
	PaneDevices Pane = iota
	PaneGatt
	PaneValues
)

// bleSession is the slice of gatt.Session the UI drives. Tests inject a
// fake.
type bleSession interface {
	Scan(context.Context) error
	Connect(context.Context, string) error
	Disconnect()
	Read(models.CharKey) (models.LogEntry, error)
	Write(models.CharKey, []byte) (models.LogEntry, error)
	ToggleNotify(models.CharKey) (bool, error)
}

// --- Messages for async intents ---

type tickMsg time.Time

type scanDoneMsg struct{ err error }

type connectDoneMsg struct {
	addr string
	err  error
}

type disconnectDoneMsg struct{}

type readDoneMsg struct {
	key models.CharKey
	err error
}

type writeDoneMsg struct {
	key  models.CharKey
	size int
	err  error
}

type notifyToggledMsg struct {
	key        models.CharKey
	subscribed bool
	err        error
}

// Model is the bubbletea model for the explorer. It owns no BLE truth; all
// renderable data is read from the state service on every View.
type Model struct {
	st      *state.Service
	session bleSession
	cfg     *config.Config

	pane          Pane
	deviceCursor  int
	charCursor    int
	scanning      bool
	connecting    bool
	valueExpanded bool
	status        string
	statusErr     bool

	writeActive bool
	writeAsText bool
	writeInput  textinput.Model

	width  int
	height int

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	styles  Styles
}

// NewModel wires the UI against a state service and session.
func NewModel(st *state.Service, session bleSession, cfg *config.Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	ti := textinput.New()
	ti.Placeholder = "0a 0b 0c"
	ti.CharLimit = 512

	return Model{
		st:         st,
		session:    session,
		cfg:        cfg,
		scanning:   true,
		status:     "Scanning for BLE devices...",
		keys:       DefaultKeyMap(),
		help:       help.New(),
		spinner:    s,
		writeInput: ti,
		styles:     DefaultStyles(),
	}
}

// Init auto-scans on startup, with the refresh tick alongside.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.scanCmd(), m.spinner.Tick, m.tickCmd())
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.cfg.RefreshInterval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) scanCmd() tea.Cmd {
	session := m.session
	return func() tea.Msg { return scanDoneMsg{err: session.Scan(context.Background())} }
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	msg := err.Error()
	if hint := gatt.Hint(err); hint != "" {
		msg += " (" + hint + ")"
	}
	m.status = msg
	m.statusErr = true
}

func (m Model) selectedDevice() (models.DeviceInfo, bool) {
	devs := m.st.OrderedDevices()
	if m.deviceCursor < 0 || m.deviceCursor >= len(devs) {
		return models.DeviceInfo{}, false
	}
	return devs[m.deviceCursor], true
}

func (m Model) selectedChar() (models.CharacteristicInfo, bool) {
	topo := m.st.Topology()
	if m.charCursor < 0 || m.charCursor >= len(topo) {
		return models.CharacteristicInfo{}, false
	}
	return topo[m.charCursor], true
}

func (m *Model) clampCursors() {
	if n := m.st.DeviceCount(); m.deviceCursor >= n {
		m.deviceCursor = max(0, n-1)
	}
	if n := len(m.st.Topology()); m.charCursor >= n {
		m.charCursor = max(0, n-1)
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.scanning && !m.connecting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		m.clampCursors()
		return m, m.tickCmd()

	case scanDoneMsg:
		m.scanning = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Scan complete: %d device(s).", m.st.DeviceCount()))
		return m, nil

	case connectDoneMsg:
		m.connecting = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.pane = PaneGatt
		m.charCursor = 0
		m.setStatus(fmt.Sprintf("Connected: %s. GATT loaded: %d characteristic(s).",
			msg.addr, len(m.st.Topology())))
		return m, nil

	case disconnectDoneMsg:
		m.pane = PaneDevices
		m.setStatus("Disconnected")
		return m, nil

	case readDoneMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setStatus("Read " + msg.key.CharUUID)
		return m, nil

	case writeDoneMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Wrote %d byte(s) to %s", msg.size, msg.key.CharUUID))
		return m, nil

	case notifyToggledMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		if msg.subscribed {
			m.setStatus("Subscribed " + msg.key.CharUUID)
		} else {
			m.setStatus("Stopped notify " + msg.key.CharUUID)
		}
		return m, nil

	case ConnectedMsg:
		return m, nil

	case DisconnectedMsg:
		// transport-detected drop; user-initiated paths come through
		// disconnectDoneMsg first and make this a no-op status-wise
		if m.st.ConnectedAddr() == "" && !m.connecting {
			m.pane = PaneDevices
			if m.status != "Disconnected" {
				m.setStatus("Device disconnected unexpectedly")
			}
		}
		return m, nil

	case InternalErrMsg:
		m.setError(msg.Err)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.writeActive {
		return m.handleWriteKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextPane):
		m.pane = (m.pane + 1) % 3
		return m, nil

	case key.Matches(msg, m.keys.PrevPane):
		m.pane = (m.pane + 2) % 3
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Scan):
		if m.scanning {
			return m, nil
		}
		m.scanning = true
		m.setStatus("Scanning for BLE devices...")
		return m, tea.Batch(m.scanCmd(), m.spinner.Tick)

	case key.Matches(msg, m.keys.Connect):
		if m.pane == PaneGatt {
			return m.readSelected()
		}
		return m.connectSelected()

	case key.Matches(msg, m.keys.Disconnect):
		session := m.session
		return m, func() tea.Msg {
			session.Disconnect()
			return disconnectDoneMsg{}
		}

	case key.Matches(msg, m.keys.Read):
		return m.readSelected()

	case key.Matches(msg, m.keys.Notify):
		info, ok := m.selectedChar()
		if !ok {
			m.setStatus("Select a characteristic first.")
			return m, nil
		}
		session := m.session
		return m, func() tea.Msg {
			subscribed, err := session.ToggleNotify(info.Key)
			return notifyToggledMsg{key: info.Key, subscribed: subscribed, err: err}
		}

	case key.Matches(msg, m.keys.Write):
		info, ok := m.selectedChar()
		if !ok {
			m.setStatus("Select a characteristic first.")
			return m, nil
		}
		if !info.Writable() && !info.WritableNR() {
			m.setStatus("Selected characteristic is not writable.")
			return m, nil
		}
		m.writeActive = true
		m.writeAsText = false
		m.writeInput.SetValue("")
		m.writeInput.Placeholder = "0a 0b 0c"
		m.writeInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.ExpandValue):
		m.valueExpanded = !m.valueExpanded
		return m, nil

	case key.Matches(msg, m.keys.ClearLog):
		info, ok := m.selectedChar()
		if !ok {
			m.setStatus("No characteristic selected to clear.")
			return m, nil
		}
		m.st.ClearLog(info.Key)
		m.setStatus("Cleared history for " + info.Key.CharUUID)
		return m, nil
	}
	return m, nil
}

func (m Model) handleWriteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.writeActive = false
		m.writeInput.Blur()
		m.setStatus("Write cancelled")
		return m, nil

	case tea.KeyCtrlT:
		m.writeAsText = !m.writeAsText
		if m.writeAsText {
			m.writeInput.Placeholder = "plain text"
		} else {
			m.writeInput.Placeholder = "0a 0b 0c"
		}
		return m, nil

	case tea.KeyEnter:
		info, ok := m.selectedChar()
		if !ok {
			m.writeActive = false
			m.setStatus("Selected characteristic not found.")
			return m, nil
		}
		var payload []byte
		if m.writeAsText {
			payload = []byte(m.writeInput.Value())
		} else {
			data, err := util.ParseHex(m.writeInput.Value())
			if err != nil {
				m.setError(err)
				return m, nil
			}
			payload = data
		}
		m.writeActive = false
		m.writeInput.Blur()
		session := m.session
		return m, func() tea.Msg {
			_, err := session.Write(info.Key, payload)
			return writeDoneMsg{key: info.Key, size: len(payload), err: err}
		}
	}

	var cmd tea.Cmd
	m.writeInput, cmd = m.writeInput.Update(msg)
	return m, cmd
}

func (m *Model) moveCursor(delta int) {
	switch m.pane {
	case PaneDevices:
		n := m.st.DeviceCount()
		m.deviceCursor = clamp(m.deviceCursor+delta, 0, max(0, n-1))
	case PaneGatt:
		n := len(m.st.Topology())
		m.charCursor = clamp(m.charCursor+delta, 0, max(0, n-1))
	}
}

func (m Model) connectSelected() (tea.Model, tea.Cmd) {
	if m.connecting {
		return m, nil
	}
	dev, ok := m.selectedDevice()
	if !ok {
		m.setStatus("Select a device first.")
		return m, nil
	}
	if m.st.ConnectedAddr() == dev.Addr {
		m.setStatus("Already connected: " + dev.Addr)
		return m, nil
	}
	m.connecting = true
	m.setStatus("Connecting to " + dev.Addr + "...")
	session := m.session
	return m, tea.Batch(
		func() tea.Msg {
			return connectDoneMsg{addr: dev.Addr, err: session.Connect(context.Background(), dev.Addr)}
		},
		m.spinner.Tick,
	)
}

func (m Model) readSelected() (tea.Model, tea.Cmd) {
	info, ok := m.selectedChar()
	if !ok {
		m.setStatus("Select a characteristic first.")
		return m, nil
	}
	session := m.session
	return m, func() tea.Msg {
		_, err := session.Read(info.Key)
		return readDoneMsg{key: info.Key, err: err}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
