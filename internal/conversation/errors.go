package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/expense-assistant/internal/llm"
)

// ErrorKind is the failure taxonomy surfaced to the UI.
type ErrorKind string

const (
	KindTimeout        ErrorKind = "timeout"
	KindAPIUnavailable ErrorKind = "api_unavailable"
	KindParseError     ErrorKind = "parse_error"
	KindRateLimit      ErrorKind = "rate_limit"
	KindUnknown        ErrorKind = "unknown"
)

// Failure describes why the model path did not produce the result.
type Failure struct {
	Kind       ErrorKind     `json:"kind"`
	Message    string        `json:"message"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

var ErrStaleResult = errors.New("extraction superseded by a newer request")

// Classify maps a model error onto the taxonomy. Rate limiting is checked first
// because a 429 can also carry transport details.
func Classify(err error) Failure {
	if err == nil {
		return Failure{Kind: KindUnknown}
	}
	f := Failure{Message: err.Error()}

	var netErr net.Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var schemaErr *jsonschema.ValidationError
	var opErr *net.OpError
	var dnsErr *net.DNSError

	switch {
	case errors.Is(err, llm.ErrRateLimited):
		f.Kind = KindRateLimit
		f.RetryAfter, _ = llm.RetryAfter(err)
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		f.Kind = KindTimeout
	case errors.Is(err, llm.ErrUnavailable),
		errors.As(err, &dnsErr),
		errors.As(err, &opErr):
		f.Kind = KindAPIUnavailable
	case errors.Is(err, llm.ErrMalformedOutput),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr),
		errors.As(err, &schemaErr):
		f.Kind = KindParseError
	default:
		f.Kind = KindUnknown
	}
	return f
}
