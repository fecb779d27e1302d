package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/expense-assistant/internal/llm"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	jsonErr := json.Unmarshal([]byte(`{`), &struct{}{})

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"deadline", fmt.Errorf("openai: %w", context.DeadlineExceeded), KindTimeout},
		{"net timeout", &url.Error{Op: "Post", URL: "http://x", Err: timeoutErr{}}, KindTimeout},
		{"not configured", llm.ErrUnavailable, KindAPIUnavailable},
		{"server error", fmt.Errorf("openai: %w", &llm.StatusError{StatusCode: 503}), KindAPIUnavailable},
		{"dial", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, KindAPIUnavailable},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.example"}, KindAPIUnavailable},
		{"throttled", &llm.ThrottledError{RetryAfter: time.Second}, KindRateLimit},
		{"http 429", &llm.StatusError{StatusCode: 429, RetryAfter: 3 * time.Second}, KindRateLimit},
		{"malformed", fmt.Errorf("%w: no choices", llm.ErrMalformedOutput), KindParseError},
		{"json syntax", jsonErr, KindParseError},
		{"other", errors.New("boom"), KindUnknown},
		{"bad request", &llm.StatusError{StatusCode: 400}, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Classify(tt.err)
			assert.Equal(t, tt.want, f.Kind)
			assert.NotEmpty(t, f.Message)
		})
	}
}

func TestClassifySurfacesRetryAfter(t *testing.T) {
	f := Classify(fmt.Errorf("openai: %w", &llm.StatusError{StatusCode: 429, RetryAfter: 3 * time.Second}))
	assert.Equal(t, KindRateLimit, f.Kind)
	assert.Equal(t, 3*time.Second, f.RetryAfter)
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 0.0, Confidence(Signals{}))
	assert.Equal(t, 0.25, Confidence(Signals{Amount: true}))
	assert.Equal(t, 0.5, Confidence(Signals{Amount: true, Context: true}))
	assert.Equal(t, 0.75, Confidence(Signals{Amount: true, Title: true, Context: true}))
	assert.Equal(t, 1.0, Confidence(Signals{Amount: true, Title: true, Participants: true, Context: true}))
}
