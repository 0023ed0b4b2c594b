package tui

import "time"

// Messages for the tea program (polling-based)

// StatusUpdateMsg is sent when we receive status from the API
type StatusUpdateMsg struct {
	Status *StatusResponse
	Err    error
}

// ChatResponseMsg is sent when a chat answer arrives
type ChatResponseMsg struct {
	Question string
	Answer   string
	Err      error
}

// ExtractionStartedMsg is sent after triggering a pipeline run
type ExtractionStartedMsg struct {
	Err error
}

// TickMsg is sent periodically to trigger polling
type TickMsg struct {
	Time time.Time
}
