package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate reports the first problem that would make requests fail
func (c Config) Validate() error {
	if err := validateURL("completions_url", c.CompletionsURL); err != nil {
		return err
	}
	if err := validateURL("upload_url", c.UploadURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model must not be empty")
	}

	s := c.Sampling
	switch {
	case s.MaxTokens <= 0:
		return fmt.Errorf("sampling.max_tokens must be positive, got %d", s.MaxTokens)
	case s.Temperature < 0 || s.Temperature > 2:
		return fmt.Errorf("sampling.temperature must be within [0, 2], got %g", s.Temperature)
	case s.TopP <= 0 || s.TopP > 1:
		return fmt.Errorf("sampling.top_p must be within (0, 1], got %g", s.TopP)
	case s.RepetitionPenalty <= 0:
		return fmt.Errorf("sampling.repetition_penalty must be positive, got %g", s.RepetitionPenalty)
	case s.PresencePenalty < -2 || s.PresencePenalty > 2:
		return fmt.Errorf("sampling.presence_penalty must be within [-2, 2], got %g", s.PresencePenalty)
	case s.FrequencyPenalty < -2 || s.FrequencyPenalty > 2:
		return fmt.Errorf("sampling.frequency_penalty must be within [-2, 2], got %g", s.FrequencyPenalty)
	}

	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", c.TimeoutSeconds)
	}
	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host: %q", field, raw)
	}
	return nil
}
