package main

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hubbubchat/hubbub/internal/client"
	"github.com/hubbubchat/hubbub/internal/config"
)

func main() {
	cfg := config.LoadClientConfig()

	model := client.NewApp(cfg)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("client exited: %v", err)
	}
}
