// Package genai provides text generation using the OpenAI chat-completion API.
//
// The client supports free-text and JSON-schema-constrained output plus an
// optional reasoning effort hint. It never validates schema conformance of
// the returned text; that is the caller's job.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gpt-4o-mini"

// chatService defines the minimal chat-completion surface used by the client,
// allowing tests to substitute a mock for the OpenAI service.
type chatService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Options carries the per-call generation parameters.
type Options struct {
	Temperature     *float64       // nil leaves the model default in place
	ReasoningEffort string         // one of none, minimal, low, medium, high; empty omits the hint
	Schema          map[string]any // non-nil constrains output to this JSON schema
	SchemaName      string         // schema name reported to the API; defaults to response_schema
}

// ClientInterface defines the generation surface consumed by pipeline stages.
type ClientInterface interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error)
}

// Client wraps the OpenAI chat-completion service.
type Client struct {
	chat  chatService
	model string
}

// Option configures the client during construction.
type Option func(*clientConfig)

type clientConfig struct {
	apiKey  string
	baseURL string
	model   string
}

// WithAPIKey overrides the OPENAI_API_KEY environment variable.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) { c.apiKey = key }
}

// WithBaseURL points the client at a hosted gateway (e.g. OpenRouter).
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithModel sets the model name used for all calls.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// NewClient initializes a generation client from options and environment.
func NewClient(opts ...Option) (*Client, error) {
	cfg := clientConfig{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: os.Getenv("OPENAI_BASE_URL"),
		model:   os.Getenv("OPENAI_MODEL"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if cfg.model == "" {
		cfg.model = DefaultModel
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	cli := openai.NewClient(reqOpts...)

	slog.Debug("genai.NewClient: client initialized", "model", cfg.model, "baseURLSet", cfg.baseURL != "")
	return &Client{chat: &cli.Chat.Completions, model: cfg.model}, nil
}

// Generate produces a completion for the given prompts. Transport and model
// errors propagate to the caller uncaught; an empty choice list is an error.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	}
	if opts.Temperature != nil {
		params.Temperature = openai.Float(*opts.Temperature)
	}
	if opts.ReasoningEffort != "" && opts.ReasoningEffort != "none" {
		params.ReasoningEffort = shared.ReasoningEffort(opts.ReasoningEffort)
	}
	if opts.Schema != nil {
		name := opts.SchemaName
		if name == "" {
			name = "response_schema"
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   name,
					Schema: opts.Schema,
				},
			},
		}
	}

	resp, err := c.chat.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
