package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/diogo/stormchat/internal/models"
)

// Persona is a named system prompt that frames every chat turn
type Persona struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt"`
	Model        string `json:"model,omitempty"` // Preferred model (optional)
}

// PersonaConfig stores all personas
type PersonaConfig struct {
	Personas       []Persona `json:"personas"`
	DefaultPersona string    `json:"default_persona,omitempty"`
}

// DefaultPersonaName is the built-in persona carrying the stock system prompt
const DefaultPersonaName = "default"

// DefaultPersonas returns pre-configured personas
func DefaultPersonas() []Persona {
	return []Persona{
		{
			Name:         DefaultPersonaName,
			Description:  "Helpful assistant with the stock guidelines",
			SystemPrompt: models.DefaultSystemPrompt,
		},
		{
			Name:         "plain",
			Description:  "No system prompt",
			SystemPrompt: "",
		},
		{
			Name:        "coder",
			Description: "Programming assistant",
			SystemPrompt: `You are an expert programming assistant. You should:
- Answer with working code in fenced blocks tagged with their language
- Keep explanations short and focused on the change
- Point out edge cases the user might have missed`,
		},
		{
			Name:        "teacher",
			Description: "Patient educational assistant",
			SystemPrompt: `You are a patient and thorough teacher. When explaining:
- Break down complex topics into simple parts
- Use analogies and examples
- Adapt explanations to the learner's level`,
		},
	}
}

// GetPersonasPath returns the path to the personas file
func GetPersonasPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "personas.json"), nil
}

// LoadPersonas loads the persona configuration
func LoadPersonas() (*PersonaConfig, error) {
	path, err := GetPersonasPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &PersonaConfig{
				Personas:       DefaultPersonas(),
				DefaultPersona: DefaultPersonaName,
			}, nil
		}
		return nil, fmt.Errorf("failed to read personas: %w", err)
	}

	var config PersonaConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse personas: %w", err)
	}

	// Merge with defaults (keep user customizations)
	config.Personas = mergePersonas(DefaultPersonas(), config.Personas)

	return &config, nil
}

// SavePersonas saves the persona configuration
func SavePersonas(config *PersonaConfig) error {
	path, err := GetPersonasPath()
	if err != nil {
		return err
	}

	if _, err := EnsureConfigDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal personas: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// GetPersona returns a persona by name
func GetPersona(name string) (*Persona, error) {
	config, err := LoadPersonas()
	if err != nil {
		return nil, err
	}

	for _, p := range config.Personas {
		if p.Name == name {
			return &p, nil
		}
	}

	return nil, fmt.Errorf("persona '%s' not found", name)
}

// AddPersona adds a new persona
func AddPersona(persona Persona) error {
	if err := ValidatePersona(persona); err != nil {
		return err
	}

	config, err := LoadPersonas()
	if err != nil {
		return err
	}

	for _, p := range config.Personas {
		if p.Name == persona.Name {
			return fmt.Errorf("persona '%s' already exists", persona.Name)
		}
	}

	config.Personas = append(config.Personas, persona)
	return SavePersonas(config)
}

// DeletePersona removes a persona by name
func DeletePersona(name string) error {
	if name == DefaultPersonaName {
		return fmt.Errorf("cannot delete the default persona")
	}

	config, err := LoadPersonas()
	if err != nil {
		return err
	}

	kept := make([]Persona, 0, len(config.Personas))
	found := false
	for _, p := range config.Personas {
		if p.Name == name {
			found = true
			continue
		}
		kept = append(kept, p)
	}

	if !found {
		return fmt.Errorf("persona '%s' not found", name)
	}

	config.Personas = kept
	if config.DefaultPersona == name {
		config.DefaultPersona = DefaultPersonaName
	}

	return SavePersonas(config)
}

// SetDefaultPersona sets the persona used when none is requested
func SetDefaultPersona(name string) error {
	config, err := LoadPersonas()
	if err != nil {
		return err
	}

	found := false
	for _, p := range config.Personas {
		if p.Name == name {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("persona '%s' not found", name)
	}

	config.DefaultPersona = name
	return SavePersonas(config)
}

// ResolvePersona returns the named persona, or the configured default when name is empty
func ResolvePersona(name string) (*Persona, error) {
	if name != "" {
		return GetPersona(name)
	}

	config, err := LoadPersonas()
	if err != nil {
		return nil, err
	}
	if config.DefaultPersona == "" {
		return GetPersona(DefaultPersonaName)
	}
	return GetPersona(config.DefaultPersona)
}

func mergePersonas(defaults, custom []Persona) []Persona {
	result := make([]Persona, len(defaults))
	copy(result, defaults)

	for _, cp := range custom {
		found := false
		for i, dp := range result {
			if dp.Name == cp.Name {
				result[i] = cp
				found = true
				break
			}
		}
		if !found {
			result = append(result, cp)
		}
	}

	return result
}

// Validation constants
const (
	MaxNameLength        = 50
	MaxDescriptionLength = 200
	MaxPromptLength      = 32 * 1024
)

// ValidatePersona validates a persona's fields
func ValidatePersona(p Persona) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("validation failed: name is required")
	case len(p.Name) > MaxNameLength:
		return fmt.Errorf("validation failed: name too long (max %d characters)", MaxNameLength)
	case !isValidPersonaName(p.Name):
		return fmt.Errorf("validation failed: name must contain only alphanumeric characters, underscores, and hyphens")
	case len(p.Description) > MaxDescriptionLength:
		return fmt.Errorf("validation failed: description too long (max %d characters)", MaxDescriptionLength)
	case len(p.SystemPrompt) > MaxPromptLength:
		return fmt.Errorf("validation failed: system prompt too long (max %d characters)", MaxPromptLength)
	}
	return nil
}

func isValidPersonaName(name string) bool {
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-') {
			return false
		}
	}
	return true
}
