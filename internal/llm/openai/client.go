package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/expense-assistant/internal/llm"
)

// ExtractFields implements llm.FieldExtractor using chat/completions in JSON mode.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (llm.ExpenseFields, []byte, error) {
	if c.cfg.APIKey == "" {
		return llm.ExpenseFields{}, nil, fmt.Errorf("openai: missing api key: %w", llm.ErrUnavailable)
	}

	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", "openai",
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Text),
		"participants", len(req.Participants),
		"locale", req.Locale,
		"default_currency", req.DefaultCurrency,
	)

	schema := llm.BuildExpenseJSONSchema(req.Intents)
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req)},
			{"role": "user", "content": llm.BuildUserPrompt(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + llm.SchemaJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, httpErr := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if httpErr != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExpenseFields{}, raw, fmt.Errorf("openai: %w", httpErr)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExpenseFields{}, raw, fmt.Errorf("%w: decode openai response: %w", llm.ErrMalformedOutput, err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExpenseFields{}, raw, fmt.Errorf("%w: no choices in openai response", llm.ErrMalformedOutput)
	}

	content := []byte(llm.CleanModelJSON(cc.Choices[0].Message.Content))
	out, rawContent, err := llm.DecodeFields(schema, content, c.cfg.LenientOptional, c.log, rid)
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
