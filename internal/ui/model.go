package ui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amalg/go-battlecity/internal/game"
)

// Session is where the model sends input and reads snapshots from: a
// network client or an in-process engine.
type Session interface {
	PlayerID() string
	StateChan() <-chan game.Snapshot
	SendIntent(game.ActionType, game.Direction) error
	SendStart() error
	Close()
}

// errorSource is implemented by sessions that report refused requests
// asynchronously, like a network client.
type errorSource interface {
	Errors() <-chan string
}

// stateUpdateMsg carries a new snapshot from the session.
type stateUpdateMsg game.Snapshot

// noticeMsg carries a message the session reported.
type noticeMsg string

// errMsg carries an error.
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

var errSessionClosed = errors.New("game session closed")

// Model is the Bubbletea model for a player.
type Model struct {
	session  Session
	state    *game.Snapshot
	playerID string
	notice   string
	err      error
	quitting bool
}

// NewModel creates a new TUI model bound to session.
func NewModel(session Session) Model {
	return Model{
		session:  session,
		playerID: session.PlayerID(),
	}
}

// Init starts listening for snapshots.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForState(m.session), waitForNotice(m.session))
}

// Update handles incoming messages (key presses, state updates).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case stateUpdateMsg:
		state := game.Snapshot(msg)
		m.state = &state
		return m, waitForState(m.session)

	case noticeMsg:
		m.notice = string(msg)
		return m, waitForNotice(m.session)

	case errMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the current game state.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if m.err != nil {
		out := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444")).
			Render("Error: "+m.err.Error()) + "\n"
		if m.notice != "" {
			out += m.notice + "\n"
		}
		return out
	}

	board := RenderBoard(m.state)
	hud := RenderHUD(m.state, m.playerID, m.notice)

	// Layout: board on the left, HUD on the right
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		board,
		"  ",
		hud,
	) + "\n"
}

var keyDirections = map[string]game.Direction{
	"up": game.DirUp, "w": game.DirUp,
	"down": game.DirDown, "s": game.DirDown,
	"left": game.DirLeft, "a": game.DirLeft,
	"right": game.DirRight, "d": game.DirRight,
}

// handleKey processes keyboard input. Terminals report key presses only, so
// every repeat of a movement key renews the held direction on the engine.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if dir, ok := keyDirections[key]; ok {
		_ = m.session.SendIntent(game.ActionMove, dir)
		return m, nil
	}

	switch key {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case " ", "j":
		_ = m.session.SendIntent(game.ActionFire, 0)
	case "k":
		_ = m.session.SendIntent(game.ActionStop, 0)
	case "enter":
		if err := m.session.SendStart(); err != nil {
			m.notice = err.Error()
		}
	}

	return m, nil
}

// waitForState returns a Cmd that waits for the next snapshot.
func waitForState(s Session) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-s.StateChan()
		if !ok {
			return errMsg{err: closeReason(s)}
		}
		return stateUpdateMsg(state)
	}
}

// waitForNotice returns a Cmd that waits for the next message the session
// reports, or nil if the session never reports any.
func waitForNotice(s Session) tea.Cmd {
	src, ok := s.(errorSource)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-src.Errors()
		if !ok {
			return nil
		}
		return noticeMsg(msg)
	}
}

// closeReason names why the session's state stream ended, using the last
// message the session reported if one is still queued.
func closeReason(s Session) error {
	if src, ok := s.(errorSource); ok {
		select {
		case msg := <-src.Errors():
			return fmt.Errorf("%w: %s", errSessionClosed, msg)
		default:
		}
	}
	return errSessionClosed
}
