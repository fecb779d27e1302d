package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/expense-assistant/internal/common"
)

func TestSendJSONForwardsRequestID(t *testing.T) {
	var gotID, gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	ctx := common.WithRequestID(context.Background(), "req-42")
	raw, code, err := SendJSON(ctx, srv.Client(), srv.URL, map[string]string{"text": "lunch"},
		map[string]string{"Authorization": "Bearer k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
	assert.Equal(t, "req-42", gotID)
	assert.Equal(t, "Bearer k", gotAuth)
	assert.JSONEq(t, `{"text":"lunch"}`, gotBody)
}

func TestSendJSONStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer srv.Close()

	raw, code, err := SendJSON(context.Background(), srv.Client(), srv.URL, struct{}{}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Contains(t, string(raw), "slow down")
	assert.True(t, errors.Is(err, ErrRateLimited))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 7*time.Second, se.RetryAfter)
}
