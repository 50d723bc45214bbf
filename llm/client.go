// Package llm holds the completion clients. Exactly one vendor is selected
// at process start; the rest of the service only ever sees the Client
// interface and a plain generated string.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"character-dialog-service/backend/pkg/logger"
)

// Client sends an assembled prompt to the configured vendor and returns the
// generated text. No retries: a single upstream failure fails the turn.
type Client interface {
	// Complete returns the model's reply for the prompt, or an *UpstreamError.
	Complete(ctx context.Context, prompt string) (string, error)
	// Vendor names the configured upstream, for logs and health reporting.
	Vendor() string
}

// UpstreamError carries vendor status/body context for any transport
// failure, non-2xx response, or unparseable response shape.
type UpstreamError struct {
	VendorName string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.VendorName, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s: status %d: %s", e.VendorName, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s: status %d", e.VendorName, e.StatusCode)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Supported vendor names for LLM_VENDOR.
const (
	VendorGigaChat   = "gigachat"
	VendorOpenRouter = "openrouter"
	VendorGroq       = "groq"
)

// Options configures the single vendor client built at startup.
type Options struct {
	Vendor string

	GigaChat   GigaChatOptions
	OpenRouter OpenRouterOptions
	Groq       GroqOptions

	// Timeout applies to every outbound call. Zero means the default.
	Timeout time.Duration
}

// New builds the one configured client. Missing credentials are logged as a
// warning rather than failing startup; calls will fail at request time.
func New(opts Options, log *logger.Logger) (Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	switch strings.ToLower(strings.TrimSpace(opts.Vendor)) {
	case "", VendorGigaChat:
		if opts.GigaChat.AuthKey == "" {
			log.Warn("GigaChat authorization key not set, completion calls will fail", "vendor", VendorGigaChat)
		}
		return NewGigaChatClient(opts.GigaChat, httpClient), nil
	case VendorOpenRouter:
		if opts.OpenRouter.APIKey == "" {
			log.Warn("OpenRouter API key not set, completion calls will fail", "vendor", VendorOpenRouter)
		}
		return NewOpenRouterClient(opts.OpenRouter, httpClient), nil
	case VendorGroq:
		if opts.Groq.APIKey == "" {
			log.Warn("Groq API key not set, completion calls will fail", "vendor", VendorGroq)
		}
		return NewGroqClient(opts.Groq, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown LLM vendor %q", opts.Vendor)
	}
}

// chatMessage is the OpenAI-style message shape shared by every vendor in
// use here; GigaChat, OpenRouter and Groq all accept it.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
