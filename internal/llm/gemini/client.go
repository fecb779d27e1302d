package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/joseph-ayodele/expense-assistant/internal/llm"
)

const DefaultModelName = "gemini-2.5-flash"

type Config struct {
	APIKey      string // if empty, falls back to env GEMINI_API_KEY
	Model       string
	Temperature float32
	Lenient     bool
}

// Client implements llm.FieldExtractor on top of the GenAI SDK.
type Client struct {
	cfg    Config
	models generator
	log    *slog.Logger
}

// generator is the slice of *genai.Models the client needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: missing api key: %w", llm.ErrUnavailable)
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create genai client: %w", err)
	}
	return newClient(cfg, gc.Models, logger), nil
}

func newClient(cfg Config, models generator, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModelName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, models: models, log: logger}
}

func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (llm.ExpenseFields, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", "gemini",
		"model", c.cfg.Model,
		"text_len", len(req.Text),
		"participants", len(req.Participants),
		"locale", req.Locale,
	)

	schema := llm.BuildExpenseJSONSchema(req.Intents)
	prompt := llm.BuildSystemPrompt(req) + "\n\nJSON Schema:\n" + llm.SchemaJSON(schema) +
		"\n\n" + llm.BuildUserPrompt(req) +
		"\n\nReturn ONLY valid raw JSON. Do NOT wrap the response in code fences."

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.cfg.Temperature),
		ResponseMIMEType: "application/json",
	}

	resp, err := c.models.GenerateContent(ctx, c.cfg.Model, contents, config)
	if err != nil {
		err = mapAPIError(err)
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExpenseFields{}, nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		c.log.Error("llm.extract.no_choices", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.ExpenseFields{}, nil, fmt.Errorf("%w: empty response from model", llm.ErrMalformedOutput)
	}

	content := []byte(llm.CleanModelJSON(rawText))
	out, rawContent, err := llm.DecodeFields(schema, content, c.cfg.Lenient, c.log, rid)
	if err != nil {
		return llm.ExpenseFields{}, rawContent, err
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"intent", out.Intent,
		"amount", out.Amount,
		"currency", out.Currency,
		"date", out.Date,
		"participants", len(out.Participants),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, rawContent, nil
}

// mapAPIError turns SDK status errors into *llm.StatusError so callers can classify them.
func mapAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &llm.StatusError{StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	return err
}
