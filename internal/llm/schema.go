package llm

import "encoding/json"

var (
	amountPattern = `^\d+(\.\d{1,2})?$`
	datePattern   = `^\d{4}-\d{2}-\d{2}$`
)

// BuildExpenseJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It is sent to the provider as an output constraint and also used locally to validate.
// Intent is REQUIRED and restricted to the supported set.
func BuildExpenseJSONSchema(intents []string) map[string]any {
	props := map[string]any{
		"intent":   map[string]any{"type": "string", "enum": intents},
		"amount":   map[string]any{"type": "string", "pattern": amountPattern},
		"currency": map[string]any{"type": "string", "minLength": 3, "maxLength": 3, "pattern": `^[A-Z]{3}$`},
		"date":     map[string]any{"type": "string", "pattern": datePattern},
		"title":    map[string]any{"type": "string", "minLength": 1, "maxLength": 120},
		"participants": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string", "minLength": 1},
		},
		"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"intent"},
	}
}

// SchemaJSON renders a schema for inclusion in a prompt.
func SchemaJSON(schema map[string]any) string {
	b, _ := json.MarshalIndent(schema, "", "  ")
	return string(b)
}
