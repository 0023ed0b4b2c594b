package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case StatusUpdateMsg:
		return m.handleStatusUpdate(msg)
	case ChatResponseMsg:
		return m.handleChatResponse(msg)
	case ExtractionStartedMsg:
		return m.handleExtractionStarted(msg)
	case TickMsg:
		return m, tea.Batch(pollStatus(m.Client), tickCmd())
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "ctrl+e":
		if !m.ExtractionRunning {
			return m, triggerExtraction(m.Client)
		}
		return m, nil
	case "enter":
		question := strings.TrimSpace(m.Input)
		if question == "" || m.Waiting {
			return m, nil
		}
		m.Input = ""
		m.Waiting = true
		m.Err = nil
		return m, sendChat(m.Client, question)
	case "backspace":
		if len(m.Input) > 0 {
			runes := []rune(m.Input)
			m.Input = string(runes[:len(runes)-1])
		}
		return m, nil
	default:
		switch msg.Type {
		case tea.KeyRunes:
			m.Input += string(msg.Runes)
		case tea.KeySpace:
			m.Input += " "
		}
		return m, nil
	}
}

// handleStatusUpdate syncs system status from the API
func (m Model) handleStatusUpdate(msg StatusUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Connected = false
		return m, nil
	}
	m.Connected = true
	m.ArticlesCount = msg.Status.ArticlesCount
	m.HighlightsCount = msg.Status.HighlightsCount
	m.ExtractionRunning = msg.Status.ExtractionRunning
	m.GenerationDegraded = msg.Status.GenerationDegraded
	return m, nil
}

// handleChatResponse records the answer for the pending question
func (m Model) handleChatResponse(msg ChatResponseMsg) (tea.Model, tea.Cmd) {
	m.Waiting = false
	if msg.Err != nil {
		m.Err = msg.Err
		return m, nil
	}
	return m.addExchange(msg.Question, msg.Answer), nil
}

// handleExtractionStarted reports the result of triggering a run
func (m Model) handleExtractionStarted(msg ExtractionStartedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Err = msg.Err
		return m, nil
	}
	m.ExtractionRunning = true
	return m, nil
}
