package models

import "fmt"

// Screen selects which page the shell shows
type Screen int

const (
	ScreenChat Screen = iota
	ScreenUpload
)

// String returns the screen identifier
func (s Screen) String() string {
	switch s {
	case ScreenChat:
		return "chat"
	case ScreenUpload:
		return "upload"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// Title returns the label shown in the navigation bar
func (s Screen) Title() string {
	switch s {
	case ScreenUpload:
		return "Upload"
	default:
		return "Chat"
	}
}

// Next returns the other screen
func (s Screen) Next() Screen {
	if s == ScreenChat {
		return ScreenUpload
	}
	return ScreenChat
}

// ParseScreen converts a screen identifier into a Screen
func ParseScreen(name string) (Screen, error) {
	switch name {
	case "", "chat":
		return ScreenChat, nil
	case "upload":
		return ScreenUpload, nil
	default:
		return ScreenChat, fmt.Errorf("unknown screen %q (expected chat or upload)", name)
	}
}
