package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/stormchat/internal/api"
)

// Completer streams a completion for prompt, one fragment at a time
type Completer interface {
	StreamCompletion(ctx context.Context, prompt string, onFragment func(string)) error
}

// Uploader sends one file and reports progress as a percentage
type Uploader interface {
	UploadFile(ctx context.Context, path string, onProgress api.ProgressFunc) (*api.UploadResult, error)
}

// Messages produced by background work. The id ties each message to the
// stream or upload that produced it.
type (
	streamFragmentMsg struct {
		id   int
		text string
	}
	streamDoneMsg struct {
		id  int
		err error
	}
	renderTickMsg struct {
		id int
	}
	uploadProgressMsg struct {
		id      int
		percent int
	}
	uploadDoneMsg struct {
		id     int
		result *api.UploadResult
		err    error
	}
)

// runStream starts the completion in a goroutine. Fragments and the final
// result arrive on the returned channel, which is closed afterwards.
// Fragments produced after ctx is cancelled are dropped.
func runStream(ctx context.Context, c Completer, id int, prompt string) <-chan tea.Msg {
	ch := make(chan tea.Msg, 16)
	go func() {
		defer close(ch)
		err := c.StreamCompletion(ctx, prompt, func(text string) {
			select {
			case ch <- streamFragmentMsg{id: id, text: text}:
			case <-ctx.Done():
			}
		})
		ch <- streamDoneMsg{id: id, err: err}
	}()
	return ch
}

// runUpload starts the upload in a goroutine, mirroring runStream
func runUpload(ctx context.Context, u Uploader, id int, path string) <-chan tea.Msg {
	ch := make(chan tea.Msg, 16)
	go func() {
		defer close(ch)
		last := -1
		result, err := u.UploadFile(ctx, path, func(percent int) {
			if percent == last {
				return
			}
			last = percent
			select {
			case ch <- uploadProgressMsg{id: id, percent: percent}:
			case <-ctx.Done():
			}
		})
		ch <- uploadDoneMsg{id: id, result: result, err: err}
	}()
	return ch
}

// listen delivers the next message from ch into the update loop
func listen(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
