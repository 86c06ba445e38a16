package commands

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"github.com/diogo/stormchat/internal/api"
	"github.com/diogo/stormchat/internal/config"
	"github.com/diogo/stormchat/internal/tui"
)

// Client is what the commands need from the API client
type Client interface {
	StreamCompletion(ctx context.Context, prompt string, onFragment func(string)) error
	UploadFile(ctx context.Context, path string, onProgress api.ProgressFunc) (*api.UploadResult, error)
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewClient builds the API client from the effective configuration.
	NewClient func(cfg config.Config, log zerolog.Logger) (Client, error)

	// RunShell starts the full-screen interface.
	RunShell func(opts tui.ShellOptions) error

	// Clipboard writes text to the system clipboard.
	Clipboard func(text string) error

	// IsTTY reports whether stdout is a terminal.
	IsTTY func() bool
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient: func(cfg config.Config, log zerolog.Logger) (Client, error) {
			return api.NewClientFromConfig(cfg, api.WithLogger(log.With().Str("component", "api").Logger()))
		},
		RunShell:  tui.RunShell,
		Clipboard: clipboard.WriteAll,
		IsTTY:     isStdoutTTY,
	}
}
