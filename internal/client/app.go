package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hubbubchat/hubbub/internal/config"
	"github.com/hubbubchat/hubbub/internal/protocol"
)

// App implements the bubbletea tea.Model interface for the terminal client.
type App struct {
	cfg     config.ClientConfig
	session *Session
	styles  styles

	input    textinput.Model
	viewport viewport.Model
	width    int
	height   int
	ready    bool

	joined      bool
	username    string
	pendingName string
	users       []protocol.UserProfile
	typists     []string
	lines       []string
	statusLine  string
	typingSent  bool
	quitting    bool
}

type connectedMsg struct{ err error }
type envelopeMsg struct{ env protocol.Envelope }
type sessionClosedMsg struct{}

// NewApp returns a Bubble Tea model pre-populated with defaults.
func NewApp(cfg config.ClientConfig) tea.Model {
	input := textinput.New()
	input.Placeholder = "choose a username"
	input.Focus()
	input.CharLimit = 512

	return &App{
		cfg:      cfg,
		session:  NewSession(cfg),
		styles:   newStyles(),
		input:    input,
		viewport: viewport.New(0, 0),
		lines:    make([]string, 0, 128),
	}
}

// Init is part of the tea.Model interface.
func (a *App) Init() tea.Cmd {
	return a.connect()
}

func (a *App) connect() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return connectedMsg{err: a.session.Connect(ctx)}
	}
}

func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case env, ok := <-a.session.Events():
			if !ok {
				return sessionClosedMsg{}
			}
			return envelopeMsg{env: env}
		case <-a.session.Closed():
			return sessionClosedMsg{}
		}
	}
}

// Update handles user input and server events.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(m.Width, m.Height)
		return a, nil

	case connectedMsg:
		if m.err != nil {
			a.statusLine = fmt.Sprintf("connection failed: %v", m.err)
			a.quitting = true
			return a, tea.Quit
		}
		a.statusLine = "connected"
		if name := strings.TrimSpace(a.cfg.Username); name != "" {
			a.requestJoin(name)
		}
		return a, a.waitForEvent()

	case envelopeMsg:
		a.handleEnvelope(m.env)
		return a, a.waitForEvent()

	case sessionClosedMsg:
		a.statusLine = "connection closed"
		a.quitting = true
		return a, tea.Quit

	case tea.KeyMsg:
		return a.handleKey(m)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		_ = a.session.Close()
		a.quitting = true
		return a, tea.Quit

	case tea.KeyEnter:
		value := a.input.Value()
		a.input.SetValue("")
		a.stopTyping()
		if !a.joined {
			if name := strings.TrimSpace(value); name != "" {
				a.requestJoin(name)
			}
			return a, nil
		}
		a.submit(value)
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)

	if a.joined {
		if a.input.Value() != "" && !a.typingSent {
			if _, err := a.session.Send(protocol.EventTyping, true); err == nil {
				a.typingSent = true
			}
		} else if a.input.Value() == "" {
			a.stopTyping()
		}
	}
	return a, cmd
}

func (a *App) requestJoin(name string) {
	a.pendingName = name
	if _, err := a.session.Send(protocol.EventUserJoin, name); err != nil {
		a.statusLine = fmt.Sprintf("join failed: %v", err)
	}
}

// submit sends the typed line: "/msg <user> <text>" as a private
// message, anything else as a public one.
func (a *App) submit(value string) {
	text := strings.TrimSpace(value)
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "/msg ") {
		rest := strings.TrimSpace(strings.TrimPrefix(text, "/msg "))
		target, body, ok := strings.Cut(rest, " ")
		if !ok || strings.TrimSpace(body) == "" {
			a.statusLine = "usage: /msg <user> <text>"
			return
		}
		profile, found := a.findUser(target)
		if !found {
			a.statusLine = fmt.Sprintf("no such user: %s", target)
			return
		}
		if _, err := a.session.Send(protocol.EventPrivateMessage, protocol.PrivateMessageRequest{
			To:      profile.ID,
			Message: strings.TrimSpace(body),
		}); err != nil {
			a.statusLine = fmt.Sprintf("send failed: %v", err)
		}
		return
	}

	if _, err := a.session.Send(protocol.EventSendMessage, protocol.SendMessageRequest{Message: text}); err != nil {
		a.statusLine = fmt.Sprintf("send failed: %v", err)
	}
}

func (a *App) stopTyping() {
	if !a.typingSent {
		return
	}
	a.typingSent = false
	_, _ = a.session.Send(protocol.EventTyping, false)
}

func (a *App) findUser(name string) (protocol.UserProfile, bool) {
	for _, user := range a.users {
		if user.Username == name {
			return user, true
		}
	}
	return protocol.UserProfile{}, false
}

func (a *App) handleEnvelope(env protocol.Envelope) {
	switch env.Event {
	case protocol.EventUsernameError:
		if reason, err := protocol.DecodeString(env.Payload); err == nil {
			a.statusLine = reason
		}
		a.pendingName = ""

	case protocol.EventUserList:
		if users, err := protocol.DecodeUserList(env.Payload); err == nil {
			a.users = users
		}

	case protocol.EventUserJoined:
		profile, err := protocol.DecodeUserProfile(env.Payload)
		if err != nil {
			return
		}
		if !a.joined && profile.Username == a.pendingName {
			a.joined = true
			a.username = profile.Username
			a.input.Placeholder = "say something, or /msg <user> <text>"
			a.statusLine = fmt.Sprintf("joined as %s", a.username)
		}
		a.appendLine(a.styles.notice.Render(fmt.Sprintf("* %s joined", profile.Username)))

	case protocol.EventUserLeft:
		if profile, err := protocol.DecodeUserProfile(env.Payload); err == nil {
			a.appendLine(a.styles.notice.Render(fmt.Sprintf("* %s left", profile.Username)))
		}

	case protocol.EventReceiveMessage:
		if msg, err := protocol.DecodeMessage(env.Payload); err == nil {
			a.appendLine(a.renderMessage(msg))
		}

	case protocol.EventPrivateMessage:
		if msg, err := protocol.DecodeMessage(env.Payload); err == nil {
			a.appendLine(a.renderPrivateMessage(msg))
		}

	case protocol.EventFileMessage:
		if msg, err := protocol.DecodeMessage(env.Payload); err == nil {
			a.appendLine(a.renderFileMessage(msg))
		}

	case protocol.EventTypingUsers:
		if names, err := protocol.DecodeStringList(env.Payload); err == nil {
			a.typists = names
		}

	case protocol.EventMessageReaction:
		if update, err := protocol.DecodeReactionUpdate(env.Payload); err == nil {
			a.appendLine(a.renderReactions(update))
		}

	case protocol.EventMessageReadUpdate:
		if update, err := protocol.DecodeReadUpdate(env.Payload); err == nil {
			a.statusLine = fmt.Sprintf("#%d read by %s", update.MessageID, strings.Join(update.ReadBy, ", "))
		}

	case protocol.EventAck:
		if ack, err := protocol.DecodeAck(env.Payload); err == nil && ack.Delivered {
			a.statusLine = fmt.Sprintf("delivered #%d", ack.MessageID)
		}
	}
}

func (a *App) appendLine(line string) {
	a.lines = append(a.lines, line)
	a.refreshViewport()
}

func (a *App) refreshViewport() {
	if !a.ready {
		return
	}
	a.viewport.SetContent(strings.Join(a.lines, "\n"))
	a.viewport.GotoBottom()
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	const chrome = 3 // input, status, spacing
	vh := height - chrome
	if vh < 3 {
		vh = 3
	}
	a.viewport.Width = width
	a.viewport.Height = vh
	a.input.Width = width - 4
	a.ready = true
	a.refreshViewport()
}
