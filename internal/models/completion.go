package models

// SamplingParams are the generation knobs sent with every completion request
type SamplingParams struct {
	MaxTokens         int
	Temperature       float64
	TopP              float64
	RepetitionPenalty float64
	PresencePenalty   float64
	FrequencyPenalty  float64
}

// DefaultSamplingParams returns the parameters the chat client has always used
func DefaultSamplingParams() SamplingParams {
	return SamplingParams{
		MaxTokens:         500,
		Temperature:       0.7,
		TopP:              0.9,
		RepetitionPenalty: 1.1,
		PresencePenalty:   0.6,
		FrequencyPenalty:  0.5,
	}
}

// CompletionRequest is the JSON body of a /v1/completions call
type CompletionRequest struct {
	Model             string  `json:"model"`
	Prompt            string  `json:"prompt"`
	MaxTokens         int     `json:"max_tokens"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
	PresencePenalty   float64 `json:"presence_penalty"`
	FrequencyPenalty  float64 `json:"frequency_penalty"`
	Stream            bool    `json:"stream"`
}

// NewCompletionRequest builds a streaming request for model and prompt
func NewCompletionRequest(model, prompt string, params SamplingParams) CompletionRequest {
	return CompletionRequest{
		Model:             model,
		Prompt:            prompt,
		MaxTokens:         params.MaxTokens,
		Temperature:       params.Temperature,
		TopP:              params.TopP,
		RepetitionPenalty: params.RepetitionPenalty,
		PresencePenalty:   params.PresencePenalty,
		FrequencyPenalty:  params.FrequencyPenalty,
		Stream:            true,
	}
}
