package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/stormchat/internal/models"
	"github.com/diogo/stormchat/internal/render"
	"github.com/diogo/stormchat/internal/tui"
)

// runShell opens the two-screen interface on the given screen
func runShell(cmd *cobra.Command, screen models.Screen) error {
	env, err := loadEnvironment(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer env.Close()

	client, err := deps.NewClient(env.cfg, env.log)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if !tui.ApplyTheme(env.cfg.TUITheme) {
		env.log.Warn().Str("theme", env.cfg.TUITheme).Msg("unknown TUI theme, using default")
	}

	env.log.Info().
		Str("endpoint", env.cfg.CompletionsURL).
		Str("model", env.cfg.Model).
		Str("screen", screen.String()).
		Msg("starting shell")

	return deps.RunShell(tui.ShellOptions{
		Completer:  client,
		Uploader:   client,
		ModelName:  env.cfg.Model,
		Persona:    env.personaName(),
		Screen:     screen,
		Render:     render.OptionsFromConfig(env.cfg.Markdown),
		Logger:     env.log,
		ChatOption: []tui.ChatOption{tui.WithClipboard(deps.Clipboard)},
	})
}
