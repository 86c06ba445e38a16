package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/stormchat/internal/api"
)

// fakeCompleter emits fragments, then optionally blocks until cancelled
type fakeCompleter struct {
	fragments []string
	err       error
	block     bool
	prompts   []string
}

func (f *fakeCompleter) StreamCompletion(ctx context.Context, prompt string, onFragment func(string)) error {
	f.prompts = append(f.prompts, prompt)
	for _, frag := range f.fragments {
		onFragment(frag)
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

// fakeUploader reports the given progress values, then returns result or err
type fakeUploader struct {
	progress []int
	result   *api.UploadResult
	err      error
	block    bool
	paths    []string
}

func (f *fakeUploader) UploadFile(ctx context.Context, path string, onProgress api.ProgressFunc) (*api.UploadResult, error) {
	f.paths = append(f.paths, path)
	for _, p := range f.progress {
		onProgress(p)
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.result, f.err
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+y":
		return tea.KeyMsg{Type: tea.KeyCtrlY}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "f1":
		return tea.KeyMsg{Type: tea.KeyF1}
	case "f2":
		return tea.KeyMsg{Type: tea.KeyF2}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// writeTempFile creates a file with content inside a fresh temp dir
func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}
