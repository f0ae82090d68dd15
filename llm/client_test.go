package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gulf-property-analyzer/utils"
)

func messageHandler(t *testing.T, content []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])
		assert.EqualValues(t, 256, body["max_tokens"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"id":          "msg_test_001",
			"type":        "message",
			"role":        "assistant",
			"content":     content,
			"model":       "test-model",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 12, "output_tokens": 7},
		})
	}
}

func newTestClient(url string) *Client {
	return NewClient(Config{APIKey: "test-key", Model: "test-model", MaxTokens: 256, BaseURL: url}, utils.NewNopLogger())
}

func TestCompleteReturnsText(t *testing.T) {
	ts := httptest.NewServer(messageHandler(t, []map[string]any{
		{"type": "text", "text": "Consider "},
		{"type": "text", "text": "JBR apartments."},
	}))
	defer ts.Close()

	got, err := newTestClient(ts.URL).Complete(context.Background(), "You are an advisor.", "Where should I invest?")
	require.NoError(t, err)
	assert.Equal(t, "Consider JBR apartments.", got)
}

func TestCompleteEmptyResponse(t *testing.T) {
	ts := httptest.NewServer(messageHandler(t, []map[string]any{}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Complete(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestCompleteServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`)) //nolint:errcheck
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Complete(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm: create message")
}
