package provider

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/expense-assistant/internal/common"
	"github.com/joseph-ayodele/expense-assistant/internal/llm"
	"github.com/joseph-ayodele/expense-assistant/internal/llm/openai"
)

func TestNew(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	fx, err := New(ctx, common.LLMConfig{Provider: common.ProviderNone}, logger)
	require.NoError(t, err)
	assert.Nil(t, fx)

	fx, err = New(ctx, common.LLMConfig{Provider: common.ProviderOpenAI, OpenAIAPIKey: "k"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &openai.Client{}, fx)

	fx, err = New(ctx, common.LLMConfig{Provider: common.ProviderOpenAI, OpenAIAPIKey: "k", RequestsPerMinute: 10, Burst: 1}, logger)
	require.NoError(t, err)
	assert.IsType(t, &llm.RateLimited{}, fx)

	_, err = New(ctx, common.LLMConfig{Provider: "claude"}, logger)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
