package openai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/expense-assistant/constants"
	"github.com/joseph-ayodele/expense-assistant/internal/llm"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]any{"content": content}}},
	})
	return string(b)
}

func testRequest() llm.ExtractRequest {
	return llm.ExtractRequest{
		Text:            "I paid $50 for dinner with John and Jane yesterday",
		Participants:    []string{"John", "Jane", "Bob"},
		Intents:         constants.AllIntents(),
		Locale:          "en-US",
		DefaultCurrency: "USD",
		Today:           "2024-06-12",
	}
}

func TestExtractFields(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = io.WriteString(w, completion(`{"intent":"expense_creation","amount":"50.00","currency":"USD","date":"2024-06-11","title":"dinner","participants":["John","Jane"]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model"}, quietLogger())
	out, raw, err := c.ExtractFields(context.Background(), testRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, "50.00", out.Amount)
	assert.Equal(t, []string{"John", "Jane"}, out.Participants)

	assert.Equal(t, "test-model", gotBody["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, gotBody["response_format"])
	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 3)
}

func TestExtractFieldsLenientFencedOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, completion("```json\n{\"intent\":\"expense\",\"total\":50}\n```"))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, LenientOptional: true}, quietLogger())
	out, _, err := c.ExtractFields(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "expense_creation", out.Intent)
	assert.Equal(t, "50.00", out.Amount)
}

func TestExtractFieldsErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		headers map[string]string
		want    error
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":"slow down"}`, map[string]string{"Retry-After": "7"}, llm.ErrRateLimited},
		{"server error", http.StatusServiceUnavailable, `oops`, nil, llm.ErrUnavailable},
		{"bad auth", http.StatusUnauthorized, `no`, nil, llm.ErrUnavailable},
		{"not json", http.StatusOK, `<html>`, nil, llm.ErrMalformedOutput},
		{"no choices", http.StatusOK, `{"choices":[]}`, nil, llm.ErrMalformedOutput},
		{"schema mismatch", http.StatusOK, completion(`{"intent":"party"}`), nil, llm.ErrMalformedOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, quietLogger())
			_, _, err := c.ExtractFields(context.Background(), testRequest())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExtractFieldsRetryAfterSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, quietLogger())
	_, _, err := c.ExtractFields(context.Background(), testRequest())
	d, ok := llm.RetryAfter(err)
	require.True(t, ok)
	assert.Equal(t, "7s", d.String())
}

func TestExtractFieldsWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	c := NewClient(Config{}, quietLogger())
	_, _, err := c.ExtractFields(context.Background(), testRequest())
	assert.ErrorIs(t, err, llm.ErrUnavailable)
}
