package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override file configuration
const (
	EnvCompletionsURL = "STORMCHAT_COMPLETIONS_URL"
	EnvUploadURL      = "STORMCHAT_UPLOAD_URL"
	EnvAPIKey         = "STORMCHAT_API_KEY"
	EnvModel          = "STORMCHAT_MODEL"
	EnvLogLevel       = "STORMCHAT_LOG_LEVEL"
	EnvTheme          = "STORMCHAT_THEME"
)

// LoadDotEnv reads KEY=value pairs from the given files (default ".env")
// into the process environment. Variables already set are left alone and
// missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides cfg with any STORMCHAT_* variables that are set
func ApplyEnv(cfg *Config) {
	overrides := []struct {
		key    string
		target *string
	}{
		{EnvCompletionsURL, &cfg.CompletionsURL},
		{EnvUploadURL, &cfg.UploadURL},
		{EnvAPIKey, &cfg.APIKey},
		{EnvModel, &cfg.Model},
		{EnvLogLevel, &cfg.LogLevel},
		{EnvTheme, &cfg.TUITheme},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok && v != "" {
			*o.target = v
		}
	}
}
