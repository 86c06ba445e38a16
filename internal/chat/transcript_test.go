package chat

import (
	"errors"
	"testing"

	apierrors "github.com/diogo/stormchat/internal/errors"
	"github.com/diogo/stormchat/internal/models"
)

func mustApply(t *testing.T, s State, ev Event) State {
	t.Helper()
	next, err := Apply(s, ev)
	if err != nil {
		t.Fatalf("Apply(%T) returned error: %v", ev, err)
	}
	return next
}

func TestApply_SubmitAppendsUserMessage(t *testing.T) {
	s := mustApply(t, NewState(), Submit{Prompt: "What is Go?"})

	if !s.Streaming {
		t.Error("expected Streaming after submit")
	}
	if len(s.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(s.Messages))
	}
	if s.Messages[0].Sender != models.SenderUser || s.Messages[0].Text != "What is Go?" {
		t.Errorf("unexpected message %+v", s.Messages[0])
	}
	if _, ok := s.InProgress(); ok {
		t.Error("no assistant message should exist before the first fragment")
	}
}

func TestApply_EmptyPromptRejected(t *testing.T) {
	for _, prompt := range []string{"", "   ", "\n\t "} {
		s, err := Apply(NewState(), Submit{Prompt: prompt})
		if !errors.Is(err, apierrors.ErrEmptyPrompt) {
			t.Errorf("Submit(%q) error = %v, want ErrEmptyPrompt", prompt, err)
		}
		if len(s.Messages) != 0 || s.Streaming {
			t.Errorf("Submit(%q) changed the transcript: %+v", prompt, s)
		}
	}
}

func TestApply_SecondSubmitWhileStreamingRejected(t *testing.T) {
	s := mustApply(t, NewState(), Submit{Prompt: "one"})

	next, err := Apply(s, Submit{Prompt: "two"})
	if !errors.Is(err, apierrors.ErrStreamInProgress) {
		t.Fatalf("error = %v, want ErrStreamInProgress", err)
	}
	if len(next.Messages) != 1 {
		t.Errorf("rejected submit must not append, got %d messages", len(next.Messages))
	}
}

func TestApply_FragmentsConcatenateInOrder(t *testing.T) {
	s := mustApply(t, NewState(), Submit{Prompt: "hi"})
	s = mustApply(t, s, Fragment{Text: "Hello"})

	msg, ok := s.InProgress()
	if !ok || msg.Text != "Hello" {
		t.Fatalf("InProgress() = %+v, %v", msg, ok)
	}

	s = mustApply(t, s, Fragment{Text: " world"})
	s = mustApply(t, s, Finish{})

	if s.Streaming {
		t.Error("expected idle after Finish")
	}
	if len(s.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(s.Messages))
	}
	if s.Messages[1].Text != "Hello world" {
		t.Errorf("assistant text = %q, want %q", s.Messages[1].Text, "Hello world")
	}
	if _, ok := s.InProgress(); ok {
		t.Error("no message should be in progress after Finish")
	}
}

func TestApply_DisplayedTextIsDeduplicated(t *testing.T) {
	s := mustApply(t, NewState(), Submit{Prompt: "letters"})
	for _, frag := range []string{"a\n", "b", "\na"} {
		s = mustApply(t, s, Fragment{Text: frag})
	}

	msg, _ := s.InProgress()
	if msg.Text != "a\nb" {
		t.Errorf("displayed text = %q, want %q", msg.Text, "a\nb")
	}
	if s.Reply() != "a\nb\na" {
		t.Errorf("raw reply = %q, want %q", s.Reply(), "a\nb\na")
	}
}

func TestApply_FailAppendsSingleErrorMessage(t *testing.T) {
	s := mustApply(t, NewState(), Submit{Prompt: "hi"})
	s = mustApply(t, s, Fail{Err: errors.New("connection refused")})

	if s.Streaming {
		t.Error("expected idle after Fail")
	}
	if len(s.Messages) != 2 {
		t.Fatalf("expected exactly 2 messages, got %d", len(s.Messages))
	}
	if s.Messages[1].Sender != models.SenderAssistant || s.Messages[1].Text != models.ErrorReplyText {
		t.Errorf("unexpected error message %+v", s.Messages[1])
	}
	if _, ok := s.InProgress(); ok {
		t.Error("no message should be in progress after Fail")
	}
}

func TestApply_FailPreservesPartialReply(t *testing.T) {
	s := mustApply(t, NewState(), Submit{Prompt: "hi"})
	s = mustApply(t, s, Fragment{Text: "partial"})
	s = mustApply(t, s, Fail{Err: errors.New("reset")})

	if len(s.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(s.Messages))
	}
	if s.Messages[1].Text != "partial" {
		t.Errorf("partial reply = %q, want %q", s.Messages[1].Text, "partial")
	}
	if s.Messages[2].Text != models.ErrorReplyText {
		t.Errorf("error reply = %q", s.Messages[2].Text)
	}
}

func TestApply_NewSubmitFinalizesPreviousReply(t *testing.T) {
	s := mustApply(t, NewState(), Submit{Prompt: "first"})
	s = mustApply(t, s, Fragment{Text: "answer one"})
	s = mustApply(t, s, Finish{})
	s = mustApply(t, s, Submit{Prompt: "second"})
	s = mustApply(t, s, Fragment{Text: "answer two"})

	if s.Messages[1].Text != "answer one" {
		t.Errorf("finalized reply mutated: %q", s.Messages[1].Text)
	}
	if s.Messages[3].Text != "answer two" {
		t.Errorf("new reply = %q", s.Messages[3].Text)
	}
	if s.Reply() != "answer two" {
		t.Errorf("raw reply should reset per submission, got %q", s.Reply())
	}
}

func TestApply_EventsWhileIdleRejected(t *testing.T) {
	idle := NewState()
	for _, ev := range []Event{Fragment{Text: "x"}, Finish{}, Fail{Err: errors.New("x")}} {
		s, err := Apply(idle, ev)
		if !errors.Is(err, apierrors.ErrNotStreaming) {
			t.Errorf("Apply(%T) error = %v, want ErrNotStreaming", ev, err)
		}
		if len(s.Messages) != 0 {
			t.Errorf("Apply(%T) changed an idle transcript", ev)
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	s := mustApply(t, NewState(), Submit{Prompt: "hi"})
	s = mustApply(t, s, Fragment{Text: "one"})

	before := s.Messages[1].Text
	_ = mustApply(t, s, Fragment{Text: " two"})

	if s.Messages[1].Text != before {
		t.Errorf("input state mutated: %q", s.Messages[1].Text)
	}
}

func TestApply_FinishWithoutFragments(t *testing.T) {
	s := mustApply(t, NewState(), Submit{Prompt: "hi"})
	s = mustApply(t, s, Finish{})

	if len(s.Messages) != 1 {
		t.Errorf("expected only the user message, got %d", len(s.Messages))
	}
}

func TestLastAssistant(t *testing.T) {
	s := NewState()
	if _, ok := s.LastAssistant(); ok {
		t.Error("empty transcript has no assistant message")
	}

	s = mustApply(t, s, Submit{Prompt: "hi"})
	s = mustApply(t, s, Fragment{Text: "hello"})
	s = mustApply(t, s, Finish{})
	s = mustApply(t, s, Submit{Prompt: "again"})

	msg, ok := s.LastAssistant()
	if !ok || msg.Text != "hello" {
		t.Errorf("LastAssistant() = %+v, %v", msg, ok)
	}
}

func TestClear(t *testing.T) {
	s := mustApply(t, NewState(), Submit{Prompt: "hi"})
	if _, err := s.Clear(); !errors.Is(err, apierrors.ErrStreamInProgress) {
		t.Errorf("Clear() while streaming error = %v", err)
	}

	s = mustApply(t, s, Finish{})
	cleared, err := s.Clear()
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if len(cleared.Messages) != 0 {
		t.Errorf("expected empty transcript, got %d messages", len(cleared.Messages))
	}
}

func TestCheck_DetectsBrokenInvariant(t *testing.T) {
	broken := State{
		Messages: []models.Message{
			{Sender: models.SenderAssistant, Text: "a"},
			{Sender: models.SenderUser, Text: "b"},
		},
		Streaming: true,
		active:    1,
	}
	if err := broken.check(); err == nil {
		t.Error("expected invariant violation when in-progress message is not last")
	}

	idle := State{
		Messages: []models.Message{{Sender: models.SenderAssistant, Text: "a"}},
		active:   1,
	}
	if err := idle.check(); err == nil {
		t.Error("expected invariant violation when idle with an in-progress message")
	}
}
