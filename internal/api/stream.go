package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/stormchat/internal/errors"
	"github.com/diogo/stormchat/internal/models"
)

// maxFrameSize bounds a single stream line
const maxFrameSize = 1024 * 1024

// maxErrorBody bounds how much of a failed response is kept for diagnostics
const maxErrorBody = 4096

// FrameKind classifies one line of the completion stream
type FrameKind int

const (
	// FrameEmpty is a blank line or an SSE comment
	FrameEmpty FrameKind = iota
	// FrameFragment carries a piece of the reply
	FrameFragment
	// FrameDone ends the stream
	FrameDone
)

// Frame is one decoded line of the completion stream
type Frame struct {
	Kind FrameKind
	Text string
}

// ParseFrame decodes a single stream line. The "data: " prefix is optional.
// JSON frames without choices[0].text return a *FrameError.
func ParseFrame(line string) (Frame, error) {
	payload := strings.TrimSpace(line)
	if payload == "" || strings.HasPrefix(payload, ":") {
		return Frame{Kind: FrameEmpty}, nil
	}

	payload = strings.TrimSpace(strings.TrimPrefix(payload, strings.TrimSpace(models.FramePrefix)))
	if payload == "" {
		return Frame{Kind: FrameEmpty}, nil
	}

	if payload == models.FrameDone {
		return Frame{Kind: FrameDone}, nil
	}

	if !gjson.Valid(payload) {
		return Frame{}, apierrors.NewFrameError(payload, "not valid JSON")
	}

	if msg := gjson.Get(payload, "message"); gjson.Get(payload, "object").String() == "error" && msg.Exists() {
		return Frame{}, apierrors.NewFrameError(payload, "server error: "+msg.String())
	}

	text := gjson.Get(payload, "choices.0.text")
	if !text.Exists() || text.Type != gjson.String {
		return Frame{}, apierrors.NewFrameError(payload, "missing choices[0].text")
	}

	return Frame{Kind: FrameFragment, Text: text.String()}, nil
}

// ConsumeStream reads body line by line and hands each fragment to onFragment
// in arrival order. It returns nil at the [DONE] frame or at EOF. Malformed
// frames are logged and skipped. The returned error is a read failure or the
// context error.
func ConsumeStream(ctx context.Context, body io.Reader, log zerolog.Logger, onFragment func(string)) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := ParseFrame(scanner.Text())
		if err != nil {
			log.Warn().Err(err).Msg("skipping malformed frame")
			continue
		}

		switch frame.Kind {
		case FrameDone:
			return nil
		case FrameFragment:
			if onFragment != nil {
				onFragment(frame.Text)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return scanner.Err()
}

// StreamCompletion sends prompt to the completions endpoint and streams the
// reply through onFragment. Cancelling ctx stops the stream and returns
// ctx.Err(); text already delivered stays valid.
func (c *Client) StreamCompletion(ctx context.Context, prompt string, onFragment func(string)) error {
	if strings.TrimSpace(prompt) == "" {
		return apierrors.ErrEmptyPrompt
	}

	c.mu.RLock()
	payload := models.NewCompletionRequest(c.model, models.BuildPrompt(c.systemPrompt, prompt), c.params)
	c.mu.RUnlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to build payload: %w", err)
	}

	requestID := uuid.NewString()
	log := c.log.With().Str("request_id", requestID).Str("endpoint", c.endpoint).Logger()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.CompletionHeaders(c.apiKey) {
		req.Header.Set(key, value)
	}
	req.Header.Set("X-Request-Id", requestID)

	log.Debug().Str("model", payload.Model).Int("prompt_len", len(prompt)).Msg("completion requested")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Error().Err(err).Msg("completion request failed")
		return apierrors.NewNetworkErrorWithEndpoint("stream completion", c.endpoint, err)
	}
	if resp == nil || resp.Body == nil {
		log.Error().Msg("completion response has no body")
		return apierrors.ErrNoResponseBody
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Non-2xx is a failed turn; the body is an error document, not frames.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Error().Int("status", resp.StatusCode).Msg("completion rejected")
		return apierrors.NewAPIErrorWithBody(resp.StatusCode, c.endpoint, errorMessage(body, "completion request failed"), string(body))
	}

	// a blocked Read only returns once the body is closed
	stop := context.AfterFunc(ctx, func() {
		_ = resp.Body.Close()
	})
	defer stop()

	fragments := 0
	err = ConsumeStream(ctx, resp.Body, log, func(text string) {
		fragments++
		onFragment(text)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Info().Int("fragments", fragments).Msg("stream canceled")
			return ctxErr
		}
		log.Error().Err(err).Int("fragments", fragments).Msg("stream interrupted")
		return apierrors.NewStreamError(c.endpoint, err)
	}

	log.Debug().Int("fragments", fragments).Msg("stream finished")
	return nil
}

// errorMessage pulls a human readable message out of an error body
func errorMessage(body []byte, fallback string) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.message", "message", "detail", "error"} {
			if r := gjson.GetBytes(body, path); r.Exists() && r.Type == gjson.String && r.String() != "" {
				return r.String()
			}
		}
	}
	return fallback
}
