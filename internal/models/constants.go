// Package models contains data types and constants for the completion and upload APIs.
package models

// Default endpoints for a locally hosted vLLM server and the upload backend
const (
	EndpointCompletions = "http://localhost:8000/v1/completions"
	EndpointUpload      = "http://localhost:5000/api/upload"
)

// DefaultModelName is the model served by the local completion server
const DefaultModelName = "akjindal53244/Llama-3.1-Storm-8B"

// DefaultAPIKey is the bearer token the local vLLM server is started with
const DefaultAPIKey = "token-what-a-day"

// Stream protocol markers
const (
	// FramePrefix is the optional event marker in front of each frame
	FramePrefix = "data: "
	// FrameDone is the sentinel frame that ends a stream
	FrameDone = "[DONE]"
)

// ErrorReplyText is shown as the assistant reply when a completion fails
const ErrorReplyText = "Error generating response."

// UploadFieldName is the multipart field carrying the uploaded file
const UploadFieldName = "file"

// CompletionHeaders returns headers for the streaming completions endpoint
func CompletionHeaders(apiKey string) map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "text/event-stream",
	}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}
	return headers
}
