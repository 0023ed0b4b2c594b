package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// maxHistory bounds how many exchanges the view keeps.
const maxHistory = 5

// Exchange is one question/answer pair in the chat history
type Exchange struct {
	Question string
	Answer   string
}

// Model represents the chat TUI state (thin client)
type Model struct {
	Client *APIClient

	// Chat state
	Input   string
	History []Exchange
	Waiting bool

	// System status (synced from the API)
	Connected          bool
	ArticlesCount      int
	HighlightsCount    int
	ExtractionRunning  bool
	GenerationDegraded bool

	Err error
}

// NewModel creates a new TUI model
func NewModel(apiURL string) Model {
	return Model{
		Client: NewAPIClient(apiURL),
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	// Start polling immediately
	return tea.Batch(
		pollStatus(m.Client),
		tickCmd(),
	)
}

// addExchange appends a completed exchange, trimming old history
func (m Model) addExchange(question, answer string) Model {
	m.History = append(m.History, Exchange{Question: question, Answer: answer})
	if len(m.History) > maxHistory {
		m.History = m.History[len(m.History)-maxHistory:]
	}
	return m
}
