package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
)

func TestGenerateJSONForcesToolCall(t *testing.T) {
	var req map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"stop_reason": "tool_use",
			"content": [
				{"type": "tool_use", "id": "toolu_1", "name": "self_analysis_future", "input": {"question": "何ですか？"}}
			],
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	c, err := NewClient(logger.Nop(), Config{APIKey: "k", BaseURL: srv.URL, Model: "claude-test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"question": map[string]any{"type": "string"}},
		"required":   []string{"question"},
	}
	out, err := c.GenerateJSON(context.Background(), "sys", "usr", "self_analysis_future", schema)
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(out), &obj); err != nil {
		t.Fatalf("tool input is not JSON: %q", out)
	}
	if obj["question"] != "何ですか？" {
		t.Fatalf("unexpected output %v", obj)
	}
	choice, _ := req["tool_choice"].(map[string]any)
	if choice["type"] != "tool" || choice["name"] != "self_analysis_future" {
		t.Fatalf("expected forced tool choice, got %v", req["tool_choice"])
	}
}

func TestGenerateJSONFallsBackToText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_2",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"stop_reason": "end_turn",
			"content": [{"type": "text", "text": "こちらです {\"question\": \"どうですか？\"}"}],
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	c, err := NewClient(logger.Nop(), Config{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := c.GenerateJSON(context.Background(), "sys", "usr", "x", map[string]any{"properties": map[string]any{}})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if out != `こちらです {"question": "どうですか？"}` {
		t.Fatalf("expected text returned undecoded, got %q", out)
	}
}
