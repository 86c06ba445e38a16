// Package config handles configuration loading and persistence for stormchat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/diogo/stormchat/internal/models"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style" toml:"style"`                           // glamour style name or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji" toml:"enable_emoji"`             // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines" toml:"preserve_newlines"`   // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap" toml:"table_wrap"`                 // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links" toml:"inline_table_links"` // Render links inline in tables
}

// SamplingConfig holds the generation parameters sent with each completion
type SamplingConfig struct {
	MaxTokens         int     `json:"max_tokens" toml:"max_tokens"`
	Temperature       float64 `json:"temperature" toml:"temperature"`
	TopP              float64 `json:"top_p" toml:"top_p"`
	RepetitionPenalty float64 `json:"repetition_penalty" toml:"repetition_penalty"`
	PresencePenalty   float64 `json:"presence_penalty" toml:"presence_penalty"`
	FrequencyPenalty  float64 `json:"frequency_penalty" toml:"frequency_penalty"`
}

// Params converts the config section into request parameters
func (s SamplingConfig) Params() models.SamplingParams {
	return models.SamplingParams{
		MaxTokens:         s.MaxTokens,
		Temperature:       s.Temperature,
		TopP:              s.TopP,
		RepetitionPenalty: s.RepetitionPenalty,
		PresencePenalty:   s.PresencePenalty,
		FrequencyPenalty:  s.FrequencyPenalty,
	}
}

// Config represents the user configuration
type Config struct {
	CompletionsURL string `json:"completions_url" toml:"completions_url"`
	UploadURL      string `json:"upload_url" toml:"upload_url"`
	APIKey         string `json:"api_key" toml:"api_key"`
	Model          string `json:"model" toml:"model"`
	// SystemPrompt is prepended to every chat prompt. Empty sends the bare
	// User/Assistant turn.
	SystemPrompt string         `json:"system_prompt" toml:"system_prompt"`
	Sampling     SamplingConfig `json:"sampling" toml:"sampling"`
	// TimeoutSeconds bounds each HTTP request, including the whole stream.
	// 0 leaves requests unbounded.
	TimeoutSeconds  int            `json:"timeout_seconds" toml:"timeout_seconds"`
	CopyToClipboard bool           `json:"copy_to_clipboard" toml:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty" toml:"tui_theme"`
	LogLevel        string         `json:"log_level" toml:"log_level"`
	LogFile         string         `json:"log_file,omitempty" toml:"log_file"`
	Markdown        MarkdownConfig `json:"markdown,omitempty" toml:"markdown"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultSamplingConfig returns the default generation parameters
func DefaultSamplingConfig() SamplingConfig {
	p := models.DefaultSamplingParams()
	return SamplingConfig{
		MaxTokens:         p.MaxTokens,
		Temperature:       p.Temperature,
		TopP:              p.TopP,
		RepetitionPenalty: p.RepetitionPenalty,
		PresencePenalty:   p.PresencePenalty,
		FrequencyPenalty:  p.FrequencyPenalty,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		CompletionsURL:  models.EndpointCompletions,
		UploadURL:       models.EndpointUpload,
		APIKey:          models.DefaultAPIKey,
		Model:           models.DefaultModelName,
		SystemPrompt:    models.DefaultSystemPrompt,
		Sampling:        DefaultSamplingConfig(),
		TimeoutSeconds:  0,
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		LogLevel:        "info",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(home, ".stormchat")
	return configDir, nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the config carries the API key
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the JSON config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetTOMLConfigPath returns the path to the optional TOML config file
func GetTOMLConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// GetLogPath returns the log file path from config, defaulting into the config dir
func GetLogPath(cfg Config) (string, error) {
	if cfg.LogFile != "" {
		return cfg.LogFile, nil
	}
	configDir, err := EnsureConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "stormchat.log"), nil
}

// LoadConfig loads the configuration from disk and applies environment overrides.
// config.toml takes precedence over config.json when both exist.
func LoadConfig() (Config, error) {
	cfg, _, err := loadFile()
	if err != nil {
		return cfg, err
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

// Source returns the file the configuration would be read from, or "" for defaults
func Source() string {
	_, path, _ := loadFile()
	return path
}

func loadFile() (Config, string, error) {
	cfg := DefaultConfig()

	tomlPath, err := GetTOMLConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		if _, err := toml.DecodeFile(tomlPath, &cfg); err != nil {
			return DefaultConfig(), tomlPath, fmt.Errorf("failed to parse config file: %w", err)
		}
		return cfg, tomlPath, nil
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, "", err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, "", nil // Use defaults if config doesn't exist
		}
		return cfg, configPath, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), configPath, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, configPath, nil
}

// SaveConfig saves the configuration to disk as JSON
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0o600: the file carries the API key
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
