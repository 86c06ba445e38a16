package render

import "strings"

// Glamour style names
const (
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleDracula    = "dracula"
	StyleTokyoNight = "tokyo-night"
	StylePink       = "pink"
	StyleNoTTY      = "notty"
	StyleASCII      = "ascii"
)

// styleAliases maps TUI theme names onto the closest glamour style
var styleAliases = map[string]string{
	"tokyonight": StyleTokyoNight,
	"catppuccin": StyleDark,
	"nord":       StyleDark,
}

// ResolveStyle normalizes a style name. Unknown names are returned unchanged
// so glamour can treat them as a theme file path.
func ResolveStyle(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return StyleDark
	}
	if alias, ok := styleAliases[key]; ok {
		return alias
	}
	if IsBuiltinStyle(key) {
		return key
	}
	return name
}

// IsBuiltinStyle returns true if the style ships with glamour.
func IsBuiltinStyle(style string) bool {
	switch style {
	case StyleDark, StyleLight, StyleDracula, StyleTokyoNight, StylePink, StyleNoTTY, StyleASCII:
		return true
	default:
		return false
	}
}

// StyleInfo contains information about a style for display purposes.
type StyleInfo struct {
	Name        string
	Description string
}

// AvailableStyles lists the built-in markdown styles.
func AvailableStyles() []StyleInfo {
	return []StyleInfo{
		{Name: StyleDark, Description: "Dark theme (default)"},
		{Name: StyleLight, Description: "Light theme for bright terminals"},
		{Name: StyleTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: StyleDracula, Description: "Dracula color scheme"},
		{Name: StylePink, Description: "Pink accents"},
		{Name: StyleNoTTY, Description: "Plain text (no styling)"},
		{Name: StyleASCII, Description: "ASCII-only output"},
	}
}
