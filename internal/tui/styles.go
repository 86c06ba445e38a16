// Package tui provides the terminal user interface for stormchat.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/stormchat/internal/errors"
	"github.com/diogo/stormchat/internal/render"
)

// Color variables (updated from theme)
var (
	colorSurface lipgloss.Color
	colorBorder  lipgloss.Color

	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color

	colorText    lipgloss.Color
	colorTextDim lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	// Navigation bar
	titleStyle       lipgloss.Style
	tabActiveStyle   lipgloss.Style
	tabInactiveStyle lipgloss.Style
	navBarStyle      lipgloss.Style
	subtitleStyle    lipgloss.Style

	// Transcript
	messagesAreaStyle    lipgloss.Style
	userBubbleStyle      lipgloss.Style
	userLabelStyle       lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	assistantLabelStyle  lipgloss.Style
	codeHintStyle        lipgloss.Style
	welcomeStyle         lipgloss.Style

	// Input
	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	typingStyle     lipgloss.Style

	// Upload screen
	uploadPanelStyle lipgloss.Style
	fileNameStyle    lipgloss.Style

	// Status bar
	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style

	errorStyle   lipgloss.Style
	successStyle lipgloss.Style
	noticeStyle  lipgloss.Style
)

func init() {
	ApplyTheme(render.DefaultTUIThemeName)
}

// ApplyTheme switches the palette to the named theme. Unknown names fall back
// to the default theme and return false.
func ApplyTheme(name string) bool {
	_, ok := render.LookupTUITheme(name)
	theme := render.TUIThemeOrDefault(name)

	colorSurface = theme.Surface
	colorBorder = theme.Border
	colorPrimary = theme.Primary
	colorSecondary = theme.Secondary
	colorAccent = theme.Accent
	colorWarning = theme.Warning
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim

	rebuildStyles()
	return ok
}

func rebuildStyles() {
	titleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		PaddingRight(2)

	tabActiveStyle = lipgloss.NewStyle().
		Foreground(colorSurface).
		Background(colorPrimary).
		Bold(true).
		Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Padding(0, 1)

	navBarStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(colorBorder)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		PaddingLeft(2)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorSecondary).
		Foreground(colorText).
		Padding(0, 1).
		MarginLeft(4)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true).
		MarginLeft(4)

	assistantBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(4)

	assistantLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	codeHintStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Italic(true).
		PaddingLeft(1)

	welcomeStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true).
		Align(lipgloss.Center)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	typingStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Italic(true)

	uploadPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	fileNameStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	successStyle = lipgloss.NewStyle().
		Foreground(colorSecondary)

	noticeStyle = lipgloss.NewStyle().
		Foreground(colorWarning)
}

// shortcut is one entry of a status bar
type shortcut struct {
	key  string
	desc string
}

func renderShortcuts(width int, items []shortcut) string {
	parts := make([]string, 0, len(items))
	for _, s := range items {
		parts = append(parts, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(parts, "  │  "))
}

// FormatError returns a styled error message with additional context.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %v", err)))

	if status := errors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	switch {
	case errors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Raise or unset timeout_seconds and try again"))
	case errors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Is the server running? Check the endpoint with 'stormchat config'"))
	case errors.GetHTTPStatus(err) == 401 || errors.GetHTTPStatus(err) == 403:
		sb.WriteString(dimStyle.Render("\n  Hint: The server rejected the API key (STORMCHAT_API_KEY)"))
	case errors.GetHTTPStatus(err) == 404:
		sb.WriteString(dimStyle.Render("\n  Hint: Check the endpoint URL and model name"))
	}

	return sb.String()
}
