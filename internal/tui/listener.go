package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ConnectedMsg reports a session-level connect.
type ConnectedMsg struct{ Addr string }

// DisconnectedMsg reports a session-level disconnect, including
// transport-detected drops.
type DisconnectedMsg struct{}

// InternalErrMsg surfaces a background session error.
type InternalErrMsg struct{ Err error }

// ProgramListener adapts models.SessionListener onto the bubbletea program,
// so transport callbacks re-enter the UI through its single Update loop.
// SetProgram is called after tea.NewProgram; events before that are dropped.
type ProgramListener struct {
	mutex   sync.Mutex
	program *tea.Program
}

func (l *ProgramListener) SetProgram(p *tea.Program) {
	l.mutex.Lock()
	l.program = p
	l.mutex.Unlock()
}

func (l *ProgramListener) send(msg tea.Msg) {
	l.mutex.Lock()
	p := l.program
	l.mutex.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (l *ProgramListener) OnConnected(addr string) { l.send(ConnectedMsg{Addr: addr}) }
func (l *ProgramListener) OnDisconnected()         { l.send(DisconnectedMsg{}) }
func (l *ProgramListener) OnInternalError(err error) {
	l.send(InternalErrMsg{Err: err})
}
