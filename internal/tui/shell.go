package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/diogo/stormchat/internal/models"
	"github.com/diogo/stormchat/internal/render"
)

const appTitle = "⚡ StormChat"

// navBarHeight is the title row plus its bottom border
const navBarHeight = 2

// ShellOptions configures the two-screen application
type ShellOptions struct {
	Completer  Completer
	Uploader   Uploader
	ModelName  string
	Persona    string
	Screen     models.Screen
	UploadDir  string
	Render     render.Options
	Logger     zerolog.Logger
	ChatOption []ChatOption
}

// Shell hosts the chat and upload screens behind a navigation bar. Both
// screens stay alive while the other one is visible.
type Shell struct {
	chat   ChatModel
	upload UploadModel
	screen models.Screen

	modelName string
	persona   string
	width     int
}

// NewShell creates the application model
func NewShell(opts ShellOptions) Shell {
	chatOpts := append([]ChatOption{
		WithRenderOptions(opts.Render),
		WithChatLogger(opts.Logger.With().Str("component", "chat").Logger()),
	}, opts.ChatOption...)

	s := Shell{
		chat:      NewChatModel(opts.Completer, opts.ModelName, chatOpts...),
		upload:    NewUploadModel(opts.Uploader, opts.UploadDir, opts.Logger.With().Str("component", "upload").Logger()),
		screen:    opts.Screen,
		modelName: opts.ModelName,
		persona:   opts.Persona,
	}
	if s.screen != models.ScreenChat {
		s.chat.Blur()
	}
	return s
}

// Init starts both screens
func (s Shell) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, s.upload.Init())
}

// Screen returns the visible screen
func (s Shell) Screen() models.Screen {
	return s.screen
}

// Update routes messages. Keys reach the visible screen only; everything else
// goes to both so background work keeps flowing.
func (s Shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			s.chat.Stop()
			s.upload.Stop()
			return s, tea.Quit
		case "f1", "alt+1":
			return s, s.show(models.ScreenChat)
		case "f2", "alt+2":
			return s, s.show(models.ScreenUpload)
		case "ctrl+n":
			return s, s.show(s.screen.Next())
		}

		var cmd tea.Cmd
		if s.screen == models.ScreenChat {
			s.chat, cmd = s.chat.Update(msg)
		} else {
			s.upload, cmd = s.upload.Update(msg)
		}
		return s, cmd

	case tea.WindowSizeMsg:
		s.width = msg.Width
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - navBarHeight}
		var chatCmd, uploadCmd tea.Cmd
		s.chat, chatCmd = s.chat.Update(inner)
		s.upload, uploadCmd = s.upload.Update(inner)
		return s, tea.Batch(chatCmd, uploadCmd)

	case tea.MouseMsg:
		var cmd tea.Cmd
		if s.screen == models.ScreenChat {
			s.chat, cmd = s.chat.Update(msg)
		}
		return s, cmd
	}

	var chatCmd, uploadCmd tea.Cmd
	s.chat, chatCmd = s.chat.Update(msg)
	s.upload, uploadCmd = s.upload.Update(msg)
	return s, tea.Batch(chatCmd, uploadCmd)
}

// show switches the visible screen and moves keyboard focus with it
func (s *Shell) show(screen models.Screen) tea.Cmd {
	if screen == s.screen {
		return nil
	}
	s.screen = screen
	if screen == models.ScreenChat {
		return s.chat.Focus()
	}
	s.chat.Blur()
	return nil
}

// View renders the navigation bar and the visible screen
func (s Shell) View() string {
	body := s.chat.View()
	if s.screen == models.ScreenUpload {
		body = s.upload.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, s.navBar(), body)
}

func (s Shell) navBar() string {
	tabs := make([]string, 0, 2)
	for i, screen := range []models.Screen{models.ScreenChat, models.ScreenUpload} {
		label := screen.Title()
		if i == 0 {
			label = "F1 " + label
		} else {
			label = "F2 " + label
		}
		if screen == s.screen {
			tabs = append(tabs, tabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(label))
		}
	}

	left := lipgloss.JoinHorizontal(lipgloss.Center, titleStyle.Render(appTitle), lipgloss.JoinHorizontal(lipgloss.Center, tabs...))

	info := s.modelName
	if s.persona != "" {
		info = s.persona + " · " + info
	}
	if s.chat.State().Streaming && s.screen != models.ScreenChat {
		info = "replying… · " + info
	}
	right := subtitleStyle.Render(info)

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + lipgloss.NewStyle().Width(gap).Render("") + right
	return navBarStyle.Width(s.width).Render(bar)
}

// RunShell starts the full-screen application and blocks until it exits
func RunShell(opts ShellOptions) error {
	p := tea.NewProgram(
		NewShell(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
