// Package perception hosts the model clients: the opaque request/response
// oracles behind each council member. A client does exactly one provider
// call per prompt; retries and timeouts are the provider's business, not
// ours. Transport and auth errors propagate, JSON parse failures do not —
// they come back as a ParseErrorEnvelope for the normalizer to absorb.
package perception

import (
	"context"
	"encoding/json"
)

// CompleteOptions tune a single completion.
type CompleteOptions struct {
	Temperature *float64
	MaxTokens   int
}

// ModelClient is the per-member oracle.
type ModelClient interface {
	CompleteText(ctx context.Context, systemPrompt, userPrompt string, opts CompleteOptions) (string, error)
}

// ParseErrorEnvelope signals that a model answered, but not with usable
// JSON. Its presence is the normalizer's cue to substitute the
// deterministic fallback.
type ParseErrorEnvelope struct {
	ErrorType string `json:"__errorType"`
	Message   string `json:"message"`
	Raw       string `json:"raw"`
}

func newParseError(msg, raw string) *ParseErrorEnvelope {
	return &ParseErrorEnvelope{ErrorType: "json_parse_error", Message: msg, Raw: raw}
}

// CompleteJSON runs a completion and decodes the response into T.
// A transport error is returned as err and is fatal to the session.
// Undecodable output returns a non-nil envelope instead; the session
// continues on the fallback path.
func CompleteJSON[T any](ctx context.Context, c ModelClient, systemPrompt, userPrompt string, opts CompleteOptions) (T, *ParseErrorEnvelope, error) {
	var out T

	raw, err := c.CompleteText(ctx, systemPrompt, userPrompt, opts)
	if err != nil {
		return out, nil, err
	}

	extracted := ExtractJSON(raw)
	if extracted == "" {
		return out, newParseError("no JSON object found in response", raw), nil
	}
	if err := json.Unmarshal([]byte(extracted), &out); err != nil {
		return out, newParseError(err.Error(), raw), nil
	}
	return out, nil, nil
}
