package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TUITheme defines the color scheme for the terminal interface
type TUITheme struct {
	Name        string
	Description string

	Surface lipgloss.Color // bubbles and bars
	Border  lipgloss.Color

	Primary   lipgloss.Color // user bubble, active tab
	Secondary lipgloss.Color // assistant bubble, success
	Accent    lipgloss.Color // code headers, progress
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text    lipgloss.Color
	TextDim lipgloss.Color
}

// DefaultTUIThemeName is used when the configured name is unknown
const DefaultTUIThemeName = "tokyonight"

var tuiThemes = []TUITheme{
	{
		Name:        "tokyonight",
		Description: "Tokyo Night, dark with blue accents",
		Surface:     lipgloss.Color("#24283b"),
		Border:      lipgloss.Color("#414868"),
		Primary:     lipgloss.Color("#7aa2f7"),
		Secondary:   lipgloss.Color("#9ece6a"),
		Accent:      lipgloss.Color("#bb9af7"),
		Warning:     lipgloss.Color("#e0af68"),
		Error:       lipgloss.Color("#f7768e"),
		Text:        lipgloss.Color("#c0caf5"),
		TextDim:     lipgloss.Color("#565f89"),
	},
	{
		Name:        "catppuccin",
		Description: "Catppuccin Mocha, warm pastels",
		Surface:     lipgloss.Color("#313244"),
		Border:      lipgloss.Color("#45475a"),
		Primary:     lipgloss.Color("#89b4fa"),
		Secondary:   lipgloss.Color("#a6e3a1"),
		Accent:      lipgloss.Color("#cba6f7"),
		Warning:     lipgloss.Color("#f9e2af"),
		Error:       lipgloss.Color("#f38ba8"),
		Text:        lipgloss.Color("#cdd6f4"),
		TextDim:     lipgloss.Color("#6c7086"),
	},
	{
		Name:        "nord",
		Description: "Nord, arctic cool tones",
		Surface:     lipgloss.Color("#3b4252"),
		Border:      lipgloss.Color("#4c566a"),
		Primary:     lipgloss.Color("#88c0d0"),
		Secondary:   lipgloss.Color("#a3be8c"),
		Accent:      lipgloss.Color("#b48ead"),
		Warning:     lipgloss.Color("#ebcb8b"),
		Error:       lipgloss.Color("#bf616a"),
		Text:        lipgloss.Color("#eceff4"),
		TextDim:     lipgloss.Color("#7b88a1"),
	},
	{
		Name:        "dracula",
		Description: "Dracula, vibrant dark",
		Surface:     lipgloss.Color("#44475a"),
		Border:      lipgloss.Color("#6272a4"),
		Primary:     lipgloss.Color("#8be9fd"),
		Secondary:   lipgloss.Color("#50fa7b"),
		Accent:      lipgloss.Color("#ff79c6"),
		Warning:     lipgloss.Color("#f1fa8c"),
		Error:       lipgloss.Color("#ff5555"),
		Text:        lipgloss.Color("#f8f8f2"),
		TextDim:     lipgloss.Color("#6272a4"),
	},
}

// LookupTUITheme returns the named theme, case-insensitively
func LookupTUITheme(name string) (TUITheme, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, t := range tuiThemes {
		if t.Name == key {
			return t, true
		}
	}
	return TUITheme{}, false
}

// TUIThemeOrDefault returns the named theme or the default one
func TUIThemeOrDefault(name string) TUITheme {
	if t, ok := LookupTUITheme(name); ok {
		return t
	}
	t, _ := LookupTUITheme(DefaultTUIThemeName)
	return t
}

// TUIThemeNames returns the names of all TUI themes
func TUIThemeNames() []string {
	names := make([]string, len(tuiThemes))
	for i, t := range tuiThemes {
		names[i] = t.Name
	}
	return names
}
