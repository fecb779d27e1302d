package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// DecodeFields validates content strictly, optionally retries through the lenient
// normalize/sanitize path, then unmarshals. Every failure wraps ErrMalformedOutput.
func DecodeFields(schema map[string]any, content []byte, lenient bool, logger *slog.Logger, reqID string) (ExpenseFields, []byte, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := ValidateJSONAgainstSchema(schema, content); err != nil {
		if !lenient {
			logger.Error("llm.extract.schema_validation_failed",
				"req_id", reqID, "error", err, "content", string(content))
			return ExpenseFields{}, content, fmt.Errorf("%w: schema validation failed: %w", ErrMalformedOutput, err)
		}

		normalized, renamed, nErr := NormalizeAndSanitizeJSON(content, logger)
		if nErr != nil {
			logger.Error("llm.extract.sanitize_failed", "req_id", reqID, "error", nErr)
			return ExpenseFields{}, content, fmt.Errorf("%w: sanitize failed: %w", ErrMalformedOutput, nErr)
		}
		cleaned, dropped, sErr := SanitizeOptionalFields(normalized)
		if sErr != nil {
			logger.Error("llm.extract.sanitize_failed", "req_id", reqID, "error", sErr)
			return ExpenseFields{}, content, fmt.Errorf("%w: sanitize failed: %w", ErrMalformedOutput, sErr)
		}
		if vErr := ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			logger.Error("llm.extract.schema_validation_failed",
				"req_id", reqID, "error", vErr, "content", string(content))
			return ExpenseFields{}, cleaned, fmt.Errorf("%w: schema validation failed: %w", ErrMalformedOutput, vErr)
		}
		logger.Warn("llm.extract.lenient_sanitize_applied",
			"req_id", reqID, "renamed", renamed, "dropped", dropped)
		content = cleaned
	}

	var out ExpenseFields
	if err := json.Unmarshal(content, &out); err != nil {
		logger.Error("llm.extract.unmarshal_failed", "req_id", reqID, "error", err)
		return ExpenseFields{}, content, fmt.Errorf("%w: unmarshal fields: %w", ErrMalformedOutput, err)
	}
	return out, content, nil
}
