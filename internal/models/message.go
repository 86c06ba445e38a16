package models

// Sender identifies who authored a transcript message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message represents a chat message for TUI display
type Message struct {
	Sender Sender
	Text   string
}

// IsAssistant reports whether the message was produced by the model
func (m Message) IsAssistant() bool {
	return m.Sender == SenderAssistant
}
