package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// pollStatus creates a command to poll the API status
func pollStatus(client *APIClient) tea.Cmd {
	return func() tea.Msg {
		status, err := client.GetStatus()
		return StatusUpdateMsg{
			Status: status,
			Err:    err,
		}
	}
}

// sendChat creates a command that asks the API a question
func sendChat(client *APIClient, question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := client.Chat(question)
		return ChatResponseMsg{
			Question: question,
			Answer:   answer,
			Err:      err,
		}
	}
}

// triggerExtraction creates a command to start a pipeline run
func triggerExtraction(client *APIClient) tea.Cmd {
	return func() tea.Msg {
		return ExtractionStartedMsg{Err: client.StartExtraction()}
	}
}

// tickCmd creates a command that ticks every 2s for status polling
func tickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
