package constants

// Outcome is the typed result of one extraction attempt.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"  // model path answered and the result is usable
	OutcomeDegraded Outcome = "degraded" // model failed, local extractors carried the result
	OutcomeFailed   Outcome = "failed"   // confidence too low on every path
)

// FieldSource records which path produced a result field.
type FieldSource string

const (
	SourceModel FieldSource = "model"
	SourceLocal FieldSource = "local"
	SourceUser  FieldSource = "user"
)
