package tui

import (
	"fmt"
	"strings"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	// Title
	b.WriteString(TitleStyle.Render("📰 Newsbrief Chat"))
	b.WriteString("\n\n")

	// Connection and corpus status
	if !m.Connected {
		b.WriteString(ErrorStyle.Render("❌ Not connected to the news API"))
		b.WriteString("\n\n")
	} else {
		stats := fmt.Sprintf("📊 Articles: %d | Highlights: %d", m.ArticlesCount, m.HighlightsCount)
		b.WriteString(InfoStyle.Render(stats))
		b.WriteString("\n")
		if m.ExtractionRunning {
			b.WriteString(StatusStyle.Render("⏳ Extraction run in progress..."))
			b.WriteString("\n")
		}
		if m.GenerationDegraded {
			b.WriteString(InfoStyle.Render("⚠ Generation degraded; answers use extractive fallbacks"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Chat history
	for _, ex := range m.History {
		b.WriteString(QuestionStyle.Render("You: " + ex.Question))
		b.WriteString("\n")
		b.WriteString(AnswerBoxStyle.Render(ex.Answer))
		b.WriteString("\n\n")
	}

	// Prompt
	if m.Waiting {
		b.WriteString(StatusStyle.Render("🤔 Thinking..."))
	} else {
		b.WriteString(QuestionStyle.Render("> ") + m.Input + "█")
	}
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.Err)))
		b.WriteString("\n\n")
	}

	// Help text
	b.WriteString(InfoStyle.Render("Enter to ask | Ctrl+E to run extraction | Esc or Ctrl+C to quit"))

	return b.String()
}
