package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/expense-assistant/internal/common"
	"github.com/joseph-ayodele/expense-assistant/internal/conversation"
	"github.com/joseph-ayodele/expense-assistant/internal/llm/provider"
	"github.com/joseph-ayodele/expense-assistant/internal/nlp"
)

type output struct {
	Amount        *int64            `json:"amount_cents,omitempty"`
	AmountDisplay string            `json:"amount_display,omitempty"`
	Currency      string            `json:"currency"`
	Date          string            `json:"date,omitempty"`
	Participants  []string          `json:"participants"`
	Intent        string            `json:"intent"`
	Title         string            `json:"title,omitempty"`
	Confidence    float64           `json:"confidence"`
	State         string            `json:"state"`
	Outcome       string            `json:"outcome"`
	Error         string            `json:"error,omitempty"`
	Sources       map[string]string `json:"sources"`
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: extract <text> [participant,participant,...]")
		os.Exit(2)
	}
	text := os.Args[1]
	var participants []string
	if len(os.Args) >= 3 {
		for _, p := range strings.Split(os.Args[2], ",") {
			if p = strings.TrimSpace(p); p != "" {
				participants = append(participants, p)
			}
		}
	}

	cfg := common.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	model, err := provider.New(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Error("configure language model", "provider", cfg.LLM.Provider, "error", err)
		os.Exit(1)
	}

	orchestrator := conversation.NewOrchestrator(model, conversation.Config{
		ModelTimeout:    cfg.LLM.Timeout,
		MinConfidence:   cfg.Extraction.MinConfidence,
		DefaultLocale:   cfg.Extraction.DefaultLocale,
		DefaultCurrency: cfg.Extraction.DefaultCurrency,
	}, conversation.WithLogger(logger))

	locale := cfg.Extraction.DefaultLocale
	start := time.Now()
	res, err := orchestrator.Extract(ctx, conversation.Request{
		Text:         text,
		Participants: participants,
		Locale:       locale,
		Currency:     cfg.Extraction.DefaultCurrency,
	})
	if err != nil {
		logger.Error("extract.run.error", "error", err)
		os.Exit(1)
	}
	logger.Info("extract.run.ok", "elapsed_ms", time.Since(start).Milliseconds(), "outcome", res.Outcome)

	out := output{
		Currency:     res.Currency,
		Participants: res.Participants,
		Intent:       string(res.Intent),
		Title:        res.Title,
		Confidence:   res.Confidence,
		State:        string(res.State),
		Outcome:      string(res.Outcome),
		Sources:      make(map[string]string, len(res.Sources)),
	}
	if res.HasAmount {
		amount := res.Amount
		out.Amount = &amount
		out.AmountDisplay = nlp.FormatCurrency(res.Amount, locale, res.Currency)
	}
	if res.HasDate {
		out.Date = nlp.FormatDate(res.Date, locale)
	}
	if res.Failure != nil {
		out.Error = string(res.Failure.Kind)
	}
	for field, src := range res.Sources {
		out.Sources[field] = string(src)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
}
