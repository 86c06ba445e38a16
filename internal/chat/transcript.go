// Package chat holds the conversation transcript and the single transition
// function that every user action and stream event goes through.
package chat

import (
	"fmt"
	"strings"

	apierrors "github.com/diogo/stormchat/internal/errors"
	"github.com/diogo/stormchat/internal/models"
)

// State is the transcript plus the streaming flag.
// The zero value is an empty, idle transcript.
type State struct {
	Messages  []models.Message
	Streaming bool

	raw    string
	active int // 1-based index of the in-progress assistant message, 0 if none
}

// NewState returns an empty idle transcript
func NewState() State {
	return State{}
}

// Event is anything that can change the transcript
type Event interface {
	isEvent()
}

// Submit is a prompt entered by the user
type Submit struct {
	Prompt string
}

// Fragment is one decoded piece of the streamed reply
type Fragment struct {
	Text string
}

// Finish marks the end of the stream (sentinel frame, EOF or cancellation)
type Finish struct{}

// Fail marks a stream that could not be issued or read
type Fail struct {
	Err error
}

func (Submit) isEvent()   {}
func (Fragment) isEvent() {}
func (Finish) isEvent()   {}
func (Fail) isEvent()     {}

// Apply maps (state, event) to the next state. The input state is never
// modified. On error the returned state equals the input.
func Apply(s State, ev Event) (State, error) {
	next := s.clone()

	switch ev := ev.(type) {
	case Submit:
		if strings.TrimSpace(ev.Prompt) == "" {
			return s, apierrors.ErrEmptyPrompt
		}
		if s.Streaming {
			return s, apierrors.ErrStreamInProgress
		}
		next.Messages = append(next.Messages, models.Message{
			Sender: models.SenderUser,
			Text:   ev.Prompt,
		})
		next.Streaming = true
		next.raw = ""
		next.active = 0

	case Fragment:
		if !s.Streaming {
			return s, apierrors.ErrNotStreaming
		}
		next.raw = s.raw + ev.Text
		cleaned := DedupeLines(next.raw)
		if next.active == 0 {
			next.Messages = append(next.Messages, models.Message{
				Sender: models.SenderAssistant,
				Text:   cleaned,
			})
			next.active = len(next.Messages)
		} else {
			next.Messages[next.active-1].Text = cleaned
		}

	case Finish:
		if !s.Streaming {
			return s, apierrors.ErrNotStreaming
		}
		next.Streaming = false
		next.active = 0

	case Fail:
		if !s.Streaming {
			return s, apierrors.ErrNotStreaming
		}
		next.Messages = append(next.Messages, models.Message{
			Sender: models.SenderAssistant,
			Text:   models.ErrorReplyText,
		})
		next.Streaming = false
		next.active = 0

	default:
		return s, fmt.Errorf("unknown transcript event %T", ev)
	}

	if err := next.check(); err != nil {
		return s, err
	}
	return next, nil
}

// Reply returns the raw, undeduplicated text received for the current reply
func (s State) Reply() string {
	return s.raw
}

// InProgress returns the assistant message being streamed into, if any
func (s State) InProgress() (models.Message, bool) {
	if s.active == 0 || s.active > len(s.Messages) {
		return models.Message{}, false
	}
	return s.Messages[s.active-1], true
}

// LastAssistant returns the most recent assistant message
func (s State) LastAssistant() (models.Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].IsAssistant() {
			return s.Messages[i], true
		}
	}
	return models.Message{}, false
}

// Clear empties an idle transcript
func (s State) Clear() (State, error) {
	if s.Streaming {
		return s, apierrors.ErrStreamInProgress
	}
	return NewState(), nil
}

func (s State) clone() State {
	msgs := make([]models.Message, len(s.Messages))
	copy(msgs, s.Messages)
	return State{
		Messages:  msgs,
		Streaming: s.Streaming,
		raw:       s.raw,
		active:    s.active,
	}
}

// check enforces: at most one in-progress assistant message, which must be
// the last message and only exists while streaming.
func (s State) check() error {
	if s.active == 0 {
		return nil
	}
	if !s.Streaming {
		return fmt.Errorf("transcript invariant: message %d in progress while idle", s.active)
	}
	if s.active != len(s.Messages) {
		return fmt.Errorf("transcript invariant: in-progress message %d is not the last of %d", s.active, len(s.Messages))
	}
	if !s.Messages[s.active-1].IsAssistant() {
		return fmt.Errorf("transcript invariant: in-progress message %d is not from the assistant", s.active)
	}
	return nil
}
