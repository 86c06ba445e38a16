package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/stormchat/internal/models"
	"github.com/diogo/stormchat/internal/render"
)

func newTestChat(c Completer, opts ...ChatOption) ChatModel {
	opts = append([]ChatOption{WithRenderOptions(render.DefaultOptions().WithStyle(render.StyleASCII))}, opts...)
	m := NewChatModel(c, "test-model", opts...)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// send types prompt and presses enter, returning the stream channel
func send(t *testing.T, m ChatModel, prompt string) (ChatModel, <-chan tea.Msg) {
	t.Helper()
	m.textarea.SetValue(prompt)
	m, _ = m.Update(keyPress("enter"))
	return m, m.stream
}

// pump feeds every remaining stream message into the model
func pump(m ChatModel, ch <-chan tea.Msg) ChatModel {
	for msg := range ch {
		m, _ = m.Update(msg)
	}
	return m
}

func TestChatModel_SubmitStreamsReply(t *testing.T) {
	fc := &fakeCompleter{fragments: []string{"Hello", " world"}}
	m := newTestChat(fc)

	m, ch := send(t, m, "Hi there")
	if ch == nil {
		t.Fatal("expected a stream to start")
	}
	if !m.State().Streaming {
		t.Error("expected Streaming after submit")
	}
	if m.textarea.Value() != "" {
		t.Errorf("expected input to be cleared, got %q", m.textarea.Value())
	}

	m = pump(m, ch)

	state := m.State()
	if state.Streaming {
		t.Error("expected Streaming to be false after the stream ends")
	}
	if len(state.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(state.Messages))
	}
	if state.Messages[0].Text != "Hi there" || state.Messages[0].Sender != models.SenderUser {
		t.Errorf("unexpected user message: %+v", state.Messages[0])
	}
	if state.Messages[1].Text != "Hello world" {
		t.Errorf("assistant text = %q, want %q", state.Messages[1].Text, "Hello world")
	}
	if len(fc.prompts) != 1 || fc.prompts[0] != "Hi there" {
		t.Errorf("completer prompts = %v", fc.prompts)
	}
	if m.err != nil {
		t.Errorf("unexpected error: %v", m.err)
	}
}

func TestChatModel_EmptyInputIsIgnored(t *testing.T) {
	fc := &fakeCompleter{}
	m := newTestChat(fc)

	for _, input := range []string{"", "   ", "\n\t"} {
		m, ch := send(t, m, input)
		if ch != nil {
			t.Errorf("input %q started a stream", input)
		}
		if len(m.State().Messages) != 0 {
			t.Errorf("input %q changed the transcript", input)
		}
	}
	if len(fc.prompts) != 0 {
		t.Errorf("completer should not be called, got %v", fc.prompts)
	}
}

func TestChatModel_SubmitWhileStreamingKeepsInput(t *testing.T) {
	fc := &fakeCompleter{block: true}
	m := newTestChat(fc)

	m, ch := send(t, m, "first")
	m.textarea.SetValue("second")
	m, _ = m.Update(keyPress("enter"))

	if got := len(m.State().Messages); got != 1 {
		t.Errorf("expected only the first prompt in the transcript, got %d messages", got)
	}
	if m.textarea.Value() != "second" {
		t.Errorf("expected input to be kept, got %q", m.textarea.Value())
	}
	if m.stream != ch {
		t.Error("a second stream must not start while one is active")
	}

	m, _ = m.Update(keyPress("esc"))
	m = pump(m, ch)
	if m.State().Streaming {
		t.Error("expected the stream to end after cancel")
	}
}

func TestChatModel_FailureAppendsErrorReply(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("connection refused")}
	m := newTestChat(fc)

	m, ch := send(t, m, "hello")
	m = pump(m, ch)

	state := m.State()
	if len(state.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(state.Messages))
	}
	if state.Messages[1].Text != models.ErrorReplyText {
		t.Errorf("expected error reply, got %q", state.Messages[1].Text)
	}
	if state.Streaming {
		t.Error("expected Streaming false after failure")
	}
	if m.err == nil {
		t.Error("expected the error to be kept for the status line")
	}
}

func TestChatModel_FailureAfterFragmentsKeepsPartialReply(t *testing.T) {
	fc := &fakeCompleter{fragments: []string{"Par", "tial"}, err: errors.New("stream interrupted")}
	m := newTestChat(fc)

	m, ch := send(t, m, "hello")
	m = pump(m, ch)

	msgs := m.State().Messages
	if len(msgs) != 3 {
		t.Fatalf("expected user, partial reply and error reply, got %d messages", len(msgs))
	}
	if msgs[1].Text != "Partial" || msgs[2].Text != models.ErrorReplyText {
		t.Errorf("unexpected transcript: %+v", msgs)
	}
}

func TestChatModel_EscCancelsKeepingPartialReply(t *testing.T) {
	fc := &fakeCompleter{fragments: []string{"partial"}, block: true}
	m := newTestChat(fc)

	m, ch := send(t, m, "tell me a story")

	// first fragment arrives before cancelling
	m, _ = m.Update(<-ch)
	m, _ = m.Update(keyPress("esc"))
	m = pump(m, ch)

	state := m.State()
	if state.Streaming {
		t.Error("expected Streaming false after cancel")
	}
	last, ok := state.LastAssistant()
	if !ok || last.Text != "partial" {
		t.Errorf("expected partial reply to be kept, got %+v", last)
	}
	if m.err != nil {
		t.Errorf("cancellation is not an error, got %v", m.err)
	}
	if len(state.Messages) != 2 {
		t.Errorf("expected no error reply after cancel, got %d messages", len(state.Messages))
	}
}

func TestChatModel_RepeatedLinesAreCollapsed(t *testing.T) {
	fc := &fakeCompleter{fragments: []string{"A\n", "A\n", "B"}}
	m := newTestChat(fc)

	m, ch := send(t, m, "x")
	m = pump(m, ch)

	last, _ := m.State().LastAssistant()
	if last.Text != "A\nB" {
		t.Errorf("assistant text = %q, want %q", last.Text, "A\nB")
	}
}

func TestChatModel_StaleMessagesAreIgnored(t *testing.T) {
	m := newTestChat(&fakeCompleter{})

	m, _ = m.Update(streamFragmentMsg{id: 42, text: "ghost"})
	m, _ = m.Update(streamDoneMsg{id: 42, err: errors.New("ghost")})

	if len(m.State().Messages) != 0 || m.err != nil {
		t.Error("messages from an unknown stream must not touch the transcript")
	}
}

func TestChatModel_Commands(t *testing.T) {
	fc := &fakeCompleter{fragments: []string{"ok"}}
	m := newTestChat(fc)

	m, ch := send(t, m, "hello")
	m = pump(m, ch)

	m.textarea.SetValue("/clear")
	m, _ = m.Update(keyPress("enter"))
	if len(m.State().Messages) != 0 {
		t.Errorf("expected /clear to empty the transcript, got %d messages", len(m.State().Messages))
	}

	for _, cmd := range []string{"/quit", "/exit"} {
		m.textarea.SetValue(cmd)
		var quit tea.Cmd
		m, quit = m.Update(keyPress("enter"))
		if !isQuit(quit) {
			t.Errorf("%s should quit", cmd)
		}
	}

	if len(fc.prompts) != 1 {
		t.Errorf("commands must not reach the completer, got %v", fc.prompts)
	}
}

func TestChatModel_ClearWhileStreamingIsRefused(t *testing.T) {
	fc := &fakeCompleter{block: true}
	m := newTestChat(fc)

	m, ch := send(t, m, "hello")
	m.textarea.SetValue("/clear")
	m, _ = m.Update(keyPress("enter"))

	if len(m.State().Messages) != 1 {
		t.Error("transcript must not be cleared while streaming")
	}
	if m.notice == "" {
		t.Error("expected a notice explaining why /clear was refused")
	}

	m, _ = m.Update(keyPress("esc"))
	pump(m, ch)
}

func TestChatModel_CopyLastCodeBlock(t *testing.T) {
	var copied string
	fc := &fakeCompleter{fragments: []string{"Try:\n```go\nfmt.Println(1)\n```\n\n~~~sh\necho hi\n~~~"}}
	m := newTestChat(fc, WithClipboard(func(s string) error {
		copied = s
		return nil
	}))

	m, _ = m.Update(keyPress("ctrl+y"))
	if copied != "" || m.notice == "" {
		t.Error("expected a notice and no copy before any reply")
	}

	m, ch := send(t, m, "how do I print")
	m = pump(m, ch)
	m, _ = m.Update(keyPress("ctrl+y"))

	if copied != "echo hi" {
		t.Errorf("copied %q, want %q", copied, "echo hi")
	}
	if !strings.Contains(m.notice, "SH") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestChatModel_CopyFailureIsReported(t *testing.T) {
	fc := &fakeCompleter{fragments: []string{"```\nx\n```"}}
	m := newTestChat(fc, WithClipboard(func(string) error {
		return errors.New("no clipboard")
	}))

	m, ch := send(t, m, "q")
	m = pump(m, ch)
	m, _ = m.Update(keyPress("ctrl+y"))

	if !strings.Contains(m.notice, "no clipboard") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestChatModel_View(t *testing.T) {
	fc := &fakeCompleter{fragments: []string{"**bold** reply"}, block: true}
	m := newTestChat(fc)

	if !strings.Contains(m.View(), welcomeText) {
		t.Error("expected the welcome hint on an empty transcript")
	}

	m, ch := send(t, m, "hello")
	m, _ = m.Update(<-ch)

	view := m.View()
	if !strings.Contains(view, typingText) {
		t.Error("expected the typing indicator while streaming")
	}
	if strings.Contains(view, welcomeText) {
		t.Error("welcome hint should be gone once there are messages")
	}

	m, _ = m.Update(keyPress("esc"))
	m = pump(m, ch)
	if strings.Contains(m.View(), typingText) {
		t.Error("typing indicator should disappear after the stream ends")
	}
}

func TestChatModel_ViewBeforeResize(t *testing.T) {
	m := NewChatModel(&fakeCompleter{}, "test-model")
	if !strings.Contains(m.View(), "Initializing") {
		t.Error("expected placeholder before the first window size")
	}
}

func TestChatModel_SaveExportsTranscript(t *testing.T) {
	fc := &fakeCompleter{fragments: []string{"saved reply"}}
	m := newTestChat(fc)

	m.textarea.SetValue("/save")
	m, _ = m.Update(keyPress("enter"))
	if m.notice != "Nothing to save yet" {
		t.Errorf("notice = %q", m.notice)
	}

	m, ch := send(t, m, "hello")
	m = pump(m, ch)

	path := filepath.Join(t.TempDir(), "chat.md")
	m.textarea.SetValue("/save " + path)
	m, _ = m.Update(keyPress("enter"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("transcript not written: %v (notice %q)", err, m.notice)
	}
	if !strings.Contains(string(data), "saved reply") || !strings.Contains(string(data), "test-model") {
		t.Errorf("unexpected export:\n%s", data)
	}
	if len(m.State().Messages) != 2 {
		t.Error("/save must not change the transcript")
	}
	if len(fc.prompts) != 1 {
		t.Errorf("/save must not reach the completer, got %v", fc.prompts)
	}
}
