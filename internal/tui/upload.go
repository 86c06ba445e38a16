package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/diogo/stormchat/internal/api"
	"github.com/diogo/stormchat/internal/models"
)

// filepicker.AutoHeight subtracts this many rows from the window height
const pickerMarginBottom = 5

// UploadModel is the upload screen: a file picker, a progress bar and a
// status line for the last result
type UploadModel struct {
	uploader Uploader
	log      zerolog.Logger

	picker filepicker.Model
	bar    progress.Model
	state  models.UploadState

	confirming bool
	uploading  bool
	uploadID   int
	updates    <-chan tea.Msg
	cancel     context.CancelFunc

	status    string
	statusErr error

	width  int
	height int
}

// NewUploadModel creates the upload screen rooted at dir. An empty dir
// starts in the working directory.
func NewUploadModel(uploader Uploader, dir string, log zerolog.Logger) UploadModel {
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		} else {
			dir = "."
		}
	}

	fp := filepicker.New()
	fp.CurrentDirectory = dir
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.ShowPermissions = false
	fp.ShowSize = true
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(colorSecondary)
	fp.Styles.File = lipgloss.NewStyle().Foreground(colorText)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(colorTextDim).Width(7).Align(lipgloss.Right)

	return UploadModel{
		uploader: uploader,
		log:      log,
		picker:   fp,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Init reads the starting directory
func (m UploadModel) Init() tea.Cmd {
	return m.picker.Init()
}

// State returns the selected file and progress
func (m UploadModel) State() models.UploadState {
	return m.state
}

// Uploading reports whether an upload is in flight
func (m UploadModel) Uploading() bool {
	return m.uploading
}

// Stop cancels the upload in flight, if any
func (m *UploadModel) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Update handles messages for the upload screen
func (m UploadModel) Update(msg tea.Msg) (UploadModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		barWidth := msg.Width - 12
		if barWidth > 60 {
			barWidth = 60
		}
		if barWidth < 10 {
			barWidth = 10
		}
		m.bar.Width = barWidth
		// leave room for the panel chrome, the bar and the status lines
		pickerHeight := msg.Height - 8
		if pickerHeight < 3 {
			pickerHeight = 3
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(tea.WindowSizeMsg{Width: msg.Width, Height: pickerHeight + pickerMarginBottom})
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case uploadProgressMsg:
		if msg.id != m.uploadID {
			return m, nil
		}
		m.state = m.state.SetProgress(msg.percent)
		return m, listen(m.updates)

	case uploadDoneMsg:
		if msg.id != m.uploadID {
			return m, nil
		}
		m.finishUpload(msg.result, msg.err)
		return m, nil
	}

	// directory listings and other picker internals
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m UploadModel) handleKey(msg tea.KeyMsg) (UploadModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+u":
		return m.startUpload()
	case "enter":
		if m.confirming {
			return m.startUpload()
		}
	case "esc":
		if m.uploading {
			m.Stop()
			return m, nil
		}
		if m.confirming {
			m.confirming = false
			return m, nil
		}
	}

	if m.uploading || m.confirming {
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.state = m.state.SelectFile(path)
		m.confirming = true
		m.status = ""
		m.statusErr = nil
	} else if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.status = filepath.Base(path) + " cannot be uploaded"
	}
	return m, cmd
}

// startUpload begins sending the selected file. Without a file, or with an
// upload already running, it does nothing.
func (m UploadModel) startUpload() (UploadModel, tea.Cmd) {
	if !m.state.HasFile() || m.uploading {
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.uploadID++
	m.cancel = cancel
	m.uploading = true
	m.confirming = false
	m.state = m.state.SetProgress(0)
	m.status = "Uploading " + filepath.Base(m.state.SelectedFile) + "..."
	m.statusErr = nil
	m.updates = runUpload(ctx, m.uploader, m.uploadID, m.state.SelectedFile)

	return m, listen(m.updates)
}

// finishUpload records the outcome. On failure the progress keeps its last
// reported value.
func (m *UploadModel) finishUpload(result *api.UploadResult, err error) {
	if m.cancel != nil {
		m.cancel()
	}
	m.cancel = nil
	m.updates = nil
	m.uploading = false

	name := filepath.Base(m.state.SelectedFile)
	if err != nil {
		m.log.Error().Err(err).Str("file", m.state.SelectedFile).Msg("upload failed")
		m.status = "Upload failed"
		m.statusErr = err
		return
	}

	m.state = m.state.SetProgress(100)
	m.statusErr = nil
	m.status = fmt.Sprintf("Uploaded %s (%s)", name, humanize.Bytes(uint64(result.Size)))
	if result.Message != "" {
		m.status += ": " + result.Message
	}
}

// View renders the upload screen
func (m UploadModel) View() string {
	width := m.width - 4
	if width < 20 {
		width = 20
	}

	selected := noticeStyle.Render("No file selected")
	if m.state.HasFile() {
		selected = "Selected: " + fileNameStyle.Render(m.state.SelectedFile)
	}

	sections := []string{
		inputLabelStyle.Render("Choose a file to upload"),
		m.picker.View(),
		selected,
	}

	if m.state.ProgressPercent > 0 {
		sections = append(sections, m.bar.ViewAs(float64(m.state.ProgressPercent)/100))
	}

	switch {
	case m.statusErr != nil:
		sections = append(sections, errorStyle.Render("✗ "+m.status+": "+firstLine(m.statusErr.Error())))
	case m.confirming:
		sections = append(sections, noticeStyle.Render("Press Enter or Ctrl+U to upload, Esc to pick another file"))
	case m.status != "" && !m.uploading && m.state.ProgressPercent == 100:
		sections = append(sections, successStyle.Render("✓ "+m.status))
	case m.status != "":
		sections = append(sections, noticeStyle.Render(m.status))
	}

	panel := uploadPanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return lipgloss.JoinVertical(lipgloss.Left, panel, renderShortcuts(width+2, m.shortcuts()))
}

func (m UploadModel) shortcuts() []shortcut {
	if m.uploading {
		return []shortcut{{"Esc", "Cancel upload"}, {"F1", "Chat"}, {"Ctrl+C", "Quit"}}
	}
	return []shortcut{{"↑/↓", "Browse"}, {"Enter", "Select"}, {"Ctrl+U", "Upload"}, {"F1", "Chat"}, {"Ctrl+C", "Quit"}}
}
