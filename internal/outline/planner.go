// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outline turns a generation prompt plus a context summary into
// an ordered section plan via one schema-constrained model call.
// Implements: prd002-outline (R1-R3);
//
//	docs/ARCHITECTURE § Outline Planning.
package outline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pdiddy/page-engine/internal/llm"
	"github.com/pdiddy/page-engine/pkg/types"
)

// PlanResult holds the validated outline and the tokens the call used.
type PlanResult struct {
	Outline    types.PageOutline
	TokensUsed int
}

// Plan makes one structured model call and validates the returned
// outline. Any schema-validation failure is returned as an error; a
// partial outline is never accepted, and the orchestrator treats the
// failure as fatal for the whole request (R2.1).
func Plan(ctx context.Context, client llm.Client, prompt string, tmpl *types.PageTemplate, contextSummary string, cfg types.GenerationConfig) (PlanResult, error) {
	rendered, err := renderPrompt(prompt, contextSummary, tmpl)
	if err != nil {
		return PlanResult{}, fmt.Errorf("rendering outline prompt: %w", err)
	}

	result, err := client.GenerateStructured(ctx, rendered, outlineSchema, llm.CallOptions{
		MaxTokens:   cfg.MaxTokensOutline,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return PlanResult{}, fmt.Errorf("outline call: %w", err)
	}

	var o types.PageOutline
	if err := json.Unmarshal(result.Data, &o); err != nil {
		return PlanResult{}, fmt.Errorf("parsing outline: %w", err)
	}
	if err := validate(o); err != nil {
		return PlanResult{}, fmt.Errorf("invalid outline: %w", err)
	}

	return PlanResult{Outline: o, TokensUsed: result.TokensUsed}, nil
}

// validate rejects outlines that would leave the expander with nothing
// to do (R2.2).
func validate(o types.PageOutline) error {
	if o.Title == "" {
		return fmt.Errorf("empty page title")
	}
	if len(o.Sections) == 0 {
		return fmt.Errorf("no sections")
	}
	for i, s := range o.Sections {
		if s.Title == "" {
			return fmt.Errorf("section %d: empty title", i)
		}
	}
	return nil
}
