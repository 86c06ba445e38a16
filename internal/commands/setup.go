package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/stormchat/internal/config"
	"github.com/diogo/stormchat/internal/logging"
)

// environment is the configuration every command runs with: config file,
// .env, environment variables, persona and flags, in increasing precedence
type environment struct {
	cfg     config.Config
	persona *config.Persona
	log     zerolog.Logger
	closer  io.Closer
}

// Close releases the log file
func (e *environment) Close() {
	if e.closer != nil {
		_ = e.closer.Close()
	}
}

// personaName is shown in the navigation bar; empty for the stock persona
func (e *environment) personaName() string {
	if e.persona == nil || e.persona.Name == config.DefaultPersonaName {
		return ""
	}
	return e.persona.Name
}

// loadEnvironment resolves the effective configuration. Warnings that do not
// stop the command are written to stderr.
func loadEnvironment(stderr io.Writer) (*environment, error) {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(&cfg)

	persona, err := resolvePersona()
	if err != nil {
		return nil, err
	}
	if persona != nil {
		cfg.SystemPrompt = persona.SystemPrompt
		if persona.Model != "" && modelFlag == "" {
			cfg.Model = persona.Model
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	env := &environment{cfg: cfg, persona: persona, log: zerolog.Nop()}

	if logPath, err := config.GetLogPath(cfg); err != nil {
		fmt.Fprintf(stderr, "Warning: logging disabled: %v\n", err)
	} else if log, file, err := logging.OpenFile(logPath, cfg.LogLevel); err != nil {
		fmt.Fprintf(stderr, "Warning: logging disabled: %v\n", err)
	} else {
		env.log = log
		env.closer = file
	}

	return env, nil
}

// applyFlags overrides the loaded configuration with global flags
func applyFlags(cfg *config.Config) {
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if endpointFlag != "" {
		cfg.CompletionsURL = endpointFlag
	}
	if uploadURLFlag != "" {
		cfg.UploadURL = uploadURLFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
}

// resolvePersona returns the persona named by --persona, or the configured
// default when it is not the stock one. nil keeps the config's system prompt.
func resolvePersona() (*config.Persona, error) {
	if personaFlag != "" {
		persona, err := config.GetPersona(personaFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to load persona '%s': %w", personaFlag, err)
		}
		return persona, nil
	}

	persona, err := config.ResolvePersona("")
	if err != nil || persona == nil || persona.Name == config.DefaultPersonaName {
		return nil, nil
	}
	return persona, nil
}

// interruptContext is cancelled by Ctrl+C
func interruptContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}
