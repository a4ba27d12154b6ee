package client

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	figure "github.com/common-nighthawk/go-figure"

	"github.com/hubbubchat/hubbub/internal/protocol"
)

type styles struct {
	banner  lipgloss.Style
	sender  lipgloss.Style
	private lipgloss.Style
	notice  lipgloss.Style
	status  lipgloss.Style
	typing  lipgloss.Style
}

func newStyles() styles {
	return styles{
		banner:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		sender:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		private: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		notice:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		status:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		typing:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
	}
}

var banner = figure.NewFigure("hubbub", "", true).String()

// View renders either the join screen or the chat screen.
func (a *App) View() string {
	if a.quitting {
		return a.statusLine + "\n"
	}
	if !a.joined {
		return a.joinView()
	}
	return a.chatView()
}

func (a *App) joinView() string {
	var b strings.Builder
	b.WriteString(a.styles.banner.Render(banner))
	b.WriteString("\n\n")
	b.WriteString("Pick a username to join the chat.\n\n")
	b.WriteString(a.input.View())
	b.WriteString("\n\n")
	b.WriteString(a.styles.status.Render(a.statusLine))
	return b.String()
}

func (a *App) chatView() string {
	var b strings.Builder
	b.WriteString(a.viewport.View())
	b.WriteString("\n")
	b.WriteString(a.input.View())
	b.WriteString("\n")
	b.WriteString(a.statusBar())
	return b.String()
}

func (a *App) statusBar() string {
	parts := []string{fmt.Sprintf("%s | %d online", a.username, len(a.users))}
	if typing := a.typingLine(); typing != "" {
		parts = append(parts, a.styles.typing.Render(typing))
	}
	if a.statusLine != "" {
		parts = append(parts, a.styles.status.Render(a.statusLine))
	}
	return strings.Join(parts, "  ")
}

func (a *App) typingLine() string {
	names := make([]string, 0, len(a.typists))
	for _, name := range a.typists {
		if name != a.username {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	if len(names) == 1 {
		return names[0] + " is typing..."
	}
	return strings.Join(names, ", ") + " are typing..."
}

func (a *App) renderMessage(msg protocol.Message) string {
	return fmt.Sprintf("%s %s: %s",
		a.styles.notice.Render(msg.Timestamp.Local().Format("15:04")),
		a.styles.sender.Render(msg.Sender),
		msg.Body)
}

func (a *App) renderPrivateMessage(msg protocol.Message) string {
	return a.styles.private.Render(fmt.Sprintf("[private] %s: %s", msg.Sender, msg.Body))
}

func (a *App) renderFileMessage(msg protocol.Message) string {
	name := ""
	if msg.File != nil {
		name = msg.File.Name
	}
	line := fmt.Sprintf("%s sent a file: %s", msg.Sender, name)
	if msg.Body != "" {
		line += " (" + msg.Body + ")"
	}
	return a.styles.notice.Render(line)
}

func (a *App) renderReactions(update protocol.ReactionUpdate) string {
	users := make([]string, 0, len(update.Reactions))
	for user := range update.Reactions {
		users = append(users, user)
	}
	sort.Strings(users)

	pairs := make([]string, 0, len(users))
	for _, user := range users {
		pairs = append(pairs, fmt.Sprintf("%s %s", update.Reactions[user], user))
	}
	return a.styles.notice.Render(fmt.Sprintf("reactions on #%d: %s", update.MessageID, strings.Join(pairs, ", ")))
}
