// Package api talks to the completion server and the upload backend.
package api

import (
	"fmt"
	"sync"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog"

	"github.com/diogo/stormchat/internal/config"
	"github.com/diogo/stormchat/internal/models"
)

// Doer sends a single HTTP request. tls_client.HttpClient satisfies it.
type Doer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

// Client streams completions and uploads files
type Client struct {
	httpClient     Doer
	endpoint       string
	uploadURL      string
	apiKey         string
	model          string
	systemPrompt   string
	params         models.SamplingParams
	timeoutSeconds int
	log            zerolog.Logger
	mu             sync.RWMutex
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient replaces the TLS client, mostly for tests
func WithHTTPClient(d Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = d
	}
}

// WithLogger sets the logger used for request and stream events
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithEndpoint sets the completions URL
func WithEndpoint(url string) ClientOption {
	return func(c *Client) {
		c.endpoint = url
	}
}

// WithUploadURL sets the upload URL
func WithUploadURL(url string) ClientOption {
	return func(c *Client) {
		c.uploadURL = url
	}
}

// WithAPIKey sets the bearer token. An empty key sends no Authorization header.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithModel sets the model name sent with each completion
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithSystemPrompt sets the text placed before every user turn
func WithSystemPrompt(prompt string) ClientOption {
	return func(c *Client) {
		c.systemPrompt = prompt
	}
}

// WithSampling sets the generation parameters
func WithSampling(params models.SamplingParams) ClientOption {
	return func(c *Client) {
		c.params = params
	}
}

// WithTimeoutSeconds bounds each request, stream included. 0 disables the limit.
func WithTimeoutSeconds(seconds int) ClientOption {
	return func(c *Client) {
		c.timeoutSeconds = seconds
	}
}

// NewClient creates a Client. Without WithHTTPClient a TLS client is built.
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		endpoint:       models.EndpointCompletions,
		uploadURL:      models.EndpointUpload,
		apiKey:         models.DefaultAPIKey,
		model:          models.DefaultModelName,
		systemPrompt:   models.DefaultSystemPrompt,
		params:         models.DefaultSamplingParams(),
		timeoutSeconds: 0,
		log:            zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(client.timeoutSeconds),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// NewClientFromConfig creates a Client from the user configuration.
// Later options override config values.
func NewClientFromConfig(cfg config.Config, opts ...ClientOption) (*Client, error) {
	base := []ClientOption{
		WithEndpoint(cfg.CompletionsURL),
		WithUploadURL(cfg.UploadURL),
		WithAPIKey(cfg.APIKey),
		WithModel(cfg.Model),
		WithSystemPrompt(cfg.SystemPrompt),
		WithSampling(cfg.Sampling.Params()),
		WithTimeoutSeconds(cfg.TimeoutSeconds),
	}
	return NewClient(append(base, opts...)...)
}

// Model returns the model name sent with completions
func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel changes the model for subsequent completions
func (c *Client) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

// SystemPrompt returns the current system prompt
func (c *Client) SystemPrompt() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.systemPrompt
}

// SetSystemPrompt changes the system prompt for subsequent completions
func (c *Client) SetSystemPrompt(prompt string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.systemPrompt = prompt
}

// Endpoint returns the completions URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// UploadURL returns the upload URL
func (c *Client) UploadURL() string {
	return c.uploadURL
}

// TimeoutSeconds returns the request limit; 0 means none
func (c *Client) TimeoutSeconds() int {
	return c.timeoutSeconds
}
