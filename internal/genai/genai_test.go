package genai

import (
	"context"
	"fmt"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// mockChat captures the request parameters and returns a canned response.
type mockChat struct {
	params openai.ChatCompletionNewParams
	resp   *openai.ChatCompletion
	err    error
}

func (m *mockChat) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.params = body
	return m.resp, m.err
}

func completionWith(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestGenerate_ReturnsContent(t *testing.T) {
	mock := &mockChat{resp: completionWith("a business process")}
	c := &Client{chat: mock, model: "test-model"}

	out, err := c.Generate(context.Background(), "system", "user", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "a business process" {
		t.Errorf("content = %q", out)
	}
	if got := string(mock.params.Model); got != "test-model" {
		t.Errorf("model = %q", got)
	}
	if len(mock.params.Messages) != 2 {
		t.Errorf("expected system and user messages, got %d", len(mock.params.Messages))
	}
}

func TestGenerate_PassesTemperatureAndEffort(t *testing.T) {
	mock := &mockChat{resp: completionWith("ok")}
	c := &Client{chat: mock, model: "test-model"}

	temp := 0.3
	if _, err := c.Generate(context.Background(), "s", "u", Options{Temperature: &temp, ReasoningEffort: "low"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mock.params.Temperature.Valid() || mock.params.Temperature.Value != 0.3 {
		t.Errorf("temperature not forwarded: %+v", mock.params.Temperature)
	}
	if string(mock.params.ReasoningEffort) != "low" {
		t.Errorf("reasoning effort = %q", mock.params.ReasoningEffort)
	}
}

func TestGenerate_OmitsNoneEffort(t *testing.T) {
	mock := &mockChat{resp: completionWith("ok")}
	c := &Client{chat: mock, model: "test-model"}

	if _, err := c.Generate(context.Background(), "s", "u", Options{ReasoningEffort: "none"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.params.ReasoningEffort != "" {
		t.Errorf("none effort should be omitted, got %q", mock.params.ReasoningEffort)
	}
}

func TestGenerate_SchemaConstrainedOutput(t *testing.T) {
	mock := &mockChat{resp: completionWith(`{"process": {"id": "p"}}`)}
	c := &Client{chat: mock, model: "test-model"}

	schema := map[string]any{"type": "object"}
	if _, err := c.Generate(context.Background(), "s", "u", Options{Schema: schema, SchemaName: "process_input"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rf := mock.params.ResponseFormat.OfJSONSchema
	if rf == nil {
		t.Fatal("expected a JSON schema response format")
	}
	if rf.JSONSchema.Name != "process_input" {
		t.Errorf("schema name = %q", rf.JSONSchema.Name)
	}
}

func TestGenerate_NoChoices(t *testing.T) {
	mock := &mockChat{resp: &openai.ChatCompletion{}}
	c := &Client{chat: mock, model: "test-model"}

	if _, err := c.Generate(context.Background(), "s", "u", Options{}); err == nil {
		t.Error("expected error for empty choice list")
	}
}

func TestGenerate_TransportErrorPropagates(t *testing.T) {
	mock := &mockChat{err: fmt.Errorf("upstream unavailable")}
	c := &Client{chat: mock, model: "test-model"}

	if _, err := c.Generate(context.Background(), "s", "u", Options{}); err == nil {
		t.Error("expected transport error to propagate")
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Error("expected error when OPENAI_API_KEY is unset")
	}
}

func TestNewClient_WithOptions(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	c, err := NewClient(WithAPIKey("test-key"), WithModel("custom-model"), WithBaseURL("https://openrouter.ai/api/v1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.model != "custom-model" {
		t.Errorf("model = %q", c.model)
	}
}
