// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm abstracts the Generative AI API used for outline planning
// and section expansion, so the orchestrator and tests never touch a
// concrete provider. Per Strategy pattern (prd004-orchestration R3.1).
package llm

import (
	"context"
	"encoding/json"
)

// CallOptions holds the per-call knobs the engine exposes. Zero values
// fall back to provider defaults.
type CallOptions struct {
	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64

	// System is an optional system prompt.
	System string
}

// StructuredResult is the outcome of a schema-constrained call.
type StructuredResult struct {
	// Data is the raw JSON document produced by the model.
	Data json.RawMessage

	// TokensUsed counts input plus output tokens for the call.
	TokensUsed int
}

// Client is the Generative AI collaborator. Implementations must honor
// ctx cancellation at every network suspension point; fragment delivery
// for streaming calls is synchronous so the caller's consumption rate
// is the only backpressure (prd004 R3.2).
type Client interface {
	// GenerateStructured makes one call constrained to the given JSON
	// schema and returns the raw document. Callers validate the shape;
	// the client only guarantees syntactic JSON.
	GenerateStructured(ctx context.Context, prompt, schema string, opts CallOptions) (StructuredResult, error)

	// StreamGenerate makes one streaming call, invoking emit for each
	// text fragment as it arrives. A non-nil error from emit aborts the
	// stream. Returns the total tokens used by the call.
	StreamGenerate(ctx context.Context, prompt string, opts CallOptions, emit func(fragment string) error) (int, error)
}
