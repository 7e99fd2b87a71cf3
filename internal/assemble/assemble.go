// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble gathers retrieval context for a generation request:
// it embeds the prompt, pulls scored chunks from the vector index,
// optionally pulls structured facts, and synthesizes a bounded context
// string for the planner and section prompts.
// Implements: prd001-retrieval (R1-R4);
//
//	docs/ARCHITECTURE § Context Assembly.
package assemble

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/page-engine/pkg/types"
)

// NoContextMarker is the fixed sentence placed in ContextText when
// retrieval returns nothing. Downstream prompts treat it as a signal
// that generated citations would be unsupported (R4.4).
const NoContextMarker = "No grounding context is available for this request; any citations would be unsupported."

// Embedder turns text into an embedding vector. Implemented by the
// Ollama adapter in internal/embed; tests supply a stub (R1.2).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SearchOptions narrows a vector search (R2.2, R2.3).
type SearchOptions struct {
	// TopK caps the number of chunks returned.
	TopK int

	// MinScore discards chunks scoring below it.
	MinScore float64

	// DocumentID, when non-empty, restricts the search to one document.
	DocumentID string
}

// ChunkSearcher finds the chunks most similar to a query vector within
// one organization's documents. Implemented by internal/index.
type ChunkSearcher interface {
	Search(ctx context.Context, vector []float32, orgID string, opts SearchOptions) ([]types.RetrievedChunk, error)
}

// FactFinder returns up to maxFacts facts for a company, ordered by
// confidence descending. Implemented by internal/index (R3.2).
type FactFinder interface {
	FindFacts(ctx context.Context, companyID, orgID string, maxFacts int) ([]types.FactRecord, error)
}

// Deps bundles the retrieval collaborators.
type Deps struct {
	Embedder Embedder
	Chunks   ChunkSearcher
	Facts    FactFinder
}

// Result holds the assembled context for one generation request.
type Result struct {
	// ContextText is the synthesized, deterministic grounding string.
	ContextText string

	// Chunks are the retained vector-search hits, in score order.
	Chunks []types.RetrievedChunk

	// Facts are the retrieved fact records, in confidence order.
	Facts []types.FactRecord
}

// GatherContext embeds the request prompt, retrieves scored chunks and
// optional facts, and builds the context string. Embedding or search
// failure is returned as-is; the orchestrator treats it as fatal for
// the whole request (R1.4).
func GatherContext(ctx context.Context, deps Deps, req types.GenerationRequest, cfg types.GenerationConfig) (Result, error) {
	vector, err := deps.Embedder.Embed(ctx, req.Prompt)
	if err != nil {
		return Result{}, fmt.Errorf("embedding prompt: %w", err)
	}

	opts := SearchOptions{TopK: cfg.TopK, MinScore: cfg.MinScore}
	if len(req.DocumentIDs) == 1 {
		opts.DocumentID = req.DocumentIDs[0]
	}

	chunks, err := deps.Chunks.Search(ctx, vector, req.OrgID, opts)
	if err != nil {
		return Result{}, fmt.Errorf("searching chunks: %w", err)
	}

	var facts []types.FactRecord
	if cfg.IncludeFacts && req.CompanyID != "" && deps.Facts != nil {
		facts, err = deps.Facts.FindFacts(ctx, req.CompanyID, req.OrgID, cfg.MaxFacts)
		if err != nil {
			return Result{}, fmt.Errorf("finding facts: %w", err)
		}
	}

	return Result{
		ContextText: buildContextText(chunks, facts),
		Chunks:      chunks,
		Facts:       facts,
	}, nil
}

// buildContextText renders deduplicated chunk content followed by fact
// triples as one numbered source list. Chunk order is preserved from
// the search ranking, so the output is deterministic for a given
// retrieval result (R4.1-R4.3). Citation markers in generated text
// refer to these source numbers.
func buildContextText(chunks []types.RetrievedChunk, facts []types.FactRecord) string {
	if len(chunks) == 0 && len(facts) == 0 {
		return NoContextMarker
	}

	var b strings.Builder
	n := 0
	seen := make(map[string]bool)

	if len(chunks) > 0 {
		b.WriteString("Document excerpts:\n")
		for _, c := range chunks {
			content := strings.TrimSpace(c.Content)
			if content == "" || seen[content] {
				continue
			}
			seen[content] = true
			n++
			fmt.Fprintf(&b, "[%d] (%s", n, c.DocumentName)
			if c.Page > 0 {
				fmt.Fprintf(&b, ", p. %d", c.Page)
			}
			fmt.Fprintf(&b, ") %s\n", content)
		}
	}

	if len(facts) > 0 {
		if n > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Known facts:\n")
		for _, f := range facts {
			n++
			fmt.Fprintf(&b, "[%d] %s %s %s", n, f.Subject, f.Predicate, f.Object)
			if f.DocumentName != "" {
				fmt.Fprintf(&b, " (source: %s)", f.DocumentName)
			}
			b.WriteString("\n")
		}
	}

	// Every chunk deduplicated away and no facts: same as nothing found.
	if n == 0 {
		return NoContextMarker
	}

	return strings.TrimRight(b.String(), "\n")
}

// Summary returns a short digest of the assembled context for the
// outline planner: source counts and the leading sources, not the full
// text (prd002-outline R2.2).
func (r Result) Summary() string {
	if len(r.Chunks) == 0 && len(r.Facts) == 0 {
		return NoContextMarker
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d document excerpt(s) and %d known fact(s) are available.", len(r.Chunks), len(r.Facts))
	docs := make(map[string]bool)
	var names []string
	for _, c := range r.Chunks {
		if c.DocumentName != "" && !docs[c.DocumentName] {
			docs[c.DocumentName] = true
			names = append(names, c.DocumentName)
		}
	}
	if len(names) > 0 {
		fmt.Fprintf(&b, " Sources: %s.", strings.Join(names, ", "))
	}
	return b.String()
}
