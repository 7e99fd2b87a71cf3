// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/page-engine/pkg/types"
)

// --- mock collaborators ---

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return s.vector, s.err
}

type stubSearcher struct {
	chunks   []types.RetrievedChunk
	err      error
	lastOrg  string
	lastOpts SearchOptions
}

func (s *stubSearcher) Search(_ context.Context, _ []float32, orgID string, opts SearchOptions) ([]types.RetrievedChunk, error) {
	s.lastOrg = orgID
	s.lastOpts = opts
	return s.chunks, s.err
}

type stubFactFinder struct {
	facts  []types.FactRecord
	err    error
	called bool
}

func (s *stubFactFinder) FindFacts(_ context.Context, _, _ string, _ int) ([]types.FactRecord, error) {
	s.called = true
	return s.facts, s.err
}

func testDeps(e *stubEmbedder, c *stubSearcher, f *stubFactFinder) Deps {
	deps := Deps{Embedder: e, Chunks: c}
	if f != nil {
		deps.Facts = f
	}
	return deps
}

func testRequest() types.GenerationRequest {
	return types.GenerationRequest{Prompt: "account plan for Acme", OrgID: "org-1", CompanyID: "co-1"}
}

func TestGatherContext_BuildsNumberedSources(t *testing.T) {
	chunks := []types.RetrievedChunk{
		{ID: "c1", Content: "Acme grew 40% in Q3.", Score: 0.9, DocumentName: "Q3 Report", Page: 2},
		{ID: "c2", Content: "Churn fell to 3%.", Score: 0.8, DocumentName: "Q3 Report", Page: 5},
	}
	facts := []types.FactRecord{
		{Subject: "Acme", Predicate: "headquartered in", Object: "Berlin", Confidence: 0.95, DocumentName: "Company Profile"},
	}

	deps := testDeps(&stubEmbedder{vector: []float32{1}}, &stubSearcher{chunks: chunks}, &stubFactFinder{facts: facts})
	res, err := GatherContext(context.Background(), deps, testRequest(), types.DefaultGenerationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"[1] (Q3 Report, p. 2) Acme grew 40% in Q3.",
		"[2] (Q3 Report, p. 5) Churn fell to 3%.",
		"[3] Acme headquartered in Berlin (source: Company Profile)",
	} {
		if !strings.Contains(res.ContextText, want) {
			t.Fatalf("context text missing %q:\n%s", want, res.ContextText)
		}
	}
	if len(res.Chunks) != 2 || len(res.Facts) != 1 {
		t.Fatalf("result carries %d chunks, %d facts", len(res.Chunks), len(res.Facts))
	}
}

func TestGatherContext_Deterministic(t *testing.T) {
	chunks := []types.RetrievedChunk{
		{ID: "c1", Content: "alpha", Score: 0.9, DocumentName: "Doc"},
		{ID: "c2", Content: "beta", Score: 0.8, DocumentName: "Doc"},
	}
	deps := testDeps(&stubEmbedder{vector: []float32{1}}, &stubSearcher{chunks: chunks}, nil)

	first, err := GatherContext(context.Background(), deps, testRequest(), types.DefaultGenerationConfig())
	if err != nil {
		t.Fatal(err)
	}
	second, err := GatherContext(context.Background(), deps, testRequest(), types.DefaultGenerationConfig())
	if err != nil {
		t.Fatal(err)
	}
	if first.ContextText != second.ContextText {
		t.Fatal("context text differs across identical retrievals")
	}
}

func TestGatherContext_DeduplicatesChunks(t *testing.T) {
	chunks := []types.RetrievedChunk{
		{ID: "c1", Content: "same text", Score: 0.9, DocumentName: "A"},
		{ID: "c2", Content: "same text", Score: 0.7, DocumentName: "B"},
	}
	deps := testDeps(&stubEmbedder{vector: []float32{1}}, &stubSearcher{chunks: chunks}, nil)

	res, err := GatherContext(context.Background(), deps, testRequest(), types.DefaultGenerationConfig())
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(res.ContextText, "same text"); n != 1 {
		t.Fatalf("duplicate chunk content appears %d times, want 1", n)
	}
}

func TestGatherContext_NoGroundingMarker(t *testing.T) {
	deps := testDeps(&stubEmbedder{vector: []float32{1}}, &stubSearcher{}, &stubFactFinder{})
	res, err := GatherContext(context.Background(), deps, testRequest(), types.DefaultGenerationConfig())
	if err != nil {
		t.Fatalf("empty retrieval must not be fatal: %v", err)
	}
	if res.ContextText != NoContextMarker {
		t.Fatalf("context text = %q, want the no-grounding marker", res.ContextText)
	}
}

func TestGatherContext_SingleDocumentRestriction(t *testing.T) {
	searcher := &stubSearcher{}
	deps := testDeps(&stubEmbedder{vector: []float32{1}}, searcher, nil)

	req := testRequest()
	req.DocumentIDs = []string{"doc-9"}
	if _, err := GatherContext(context.Background(), deps, req, types.DefaultGenerationConfig()); err != nil {
		t.Fatal(err)
	}
	if searcher.lastOpts.DocumentID != "doc-9" {
		t.Fatalf("single named document must restrict search, got %q", searcher.lastOpts.DocumentID)
	}

	// Two documents named: no restriction.
	req.DocumentIDs = []string{"doc-9", "doc-10"}
	if _, err := GatherContext(context.Background(), deps, req, types.DefaultGenerationConfig()); err != nil {
		t.Fatal(err)
	}
	if searcher.lastOpts.DocumentID != "" {
		t.Fatalf("multiple documents must not restrict search, got %q", searcher.lastOpts.DocumentID)
	}
}

func TestGatherContext_FactGating(t *testing.T) {
	tests := []struct {
		name         string
		includeFacts bool
		companyID    string
		wantCalled   bool
	}{
		{"enabled with company", true, "co-1", true},
		{"enabled without company", true, "", false},
		{"disabled", false, "co-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &stubFactFinder{}
			deps := testDeps(&stubEmbedder{vector: []float32{1}}, &stubSearcher{}, finder)

			cfg := types.DefaultGenerationConfig()
			cfg.IncludeFacts = tt.includeFacts
			req := testRequest()
			req.CompanyID = tt.companyID

			if _, err := GatherContext(context.Background(), deps, req, cfg); err != nil {
				t.Fatal(err)
			}
			if finder.called != tt.wantCalled {
				t.Fatalf("fact lookup called = %v, want %v", finder.called, tt.wantCalled)
			}
		})
	}
}

func TestGatherContext_CollaboratorFailuresAreFatal(t *testing.T) {
	t.Run("embedding", func(t *testing.T) {
		deps := testDeps(&stubEmbedder{err: fmt.Errorf("ollama down")}, &stubSearcher{}, nil)
		if _, err := GatherContext(context.Background(), deps, testRequest(), types.DefaultGenerationConfig()); err == nil {
			t.Fatal("embedding failure must propagate")
		}
	})
	t.Run("vector search", func(t *testing.T) {
		deps := testDeps(&stubEmbedder{vector: []float32{1}}, &stubSearcher{err: fmt.Errorf("index corrupt")}, nil)
		if _, err := GatherContext(context.Background(), deps, testRequest(), types.DefaultGenerationConfig()); err == nil {
			t.Fatal("search failure must propagate")
		}
	})
	t.Run("facts", func(t *testing.T) {
		deps := testDeps(&stubEmbedder{vector: []float32{1}}, &stubSearcher{}, &stubFactFinder{err: fmt.Errorf("db locked")})
		if _, err := GatherContext(context.Background(), deps, testRequest(), types.DefaultGenerationConfig()); err == nil {
			t.Fatal("fact lookup failure must propagate")
		}
	})
}

func TestSummary(t *testing.T) {
	res := Result{
		Chunks: []types.RetrievedChunk{
			{DocumentName: "Q3 Report"},
			{DocumentName: "Q3 Report"},
			{DocumentName: "Profile"},
		},
		Facts: []types.FactRecord{{Subject: "Acme"}},
	}
	s := res.Summary()
	if !strings.Contains(s, "3 document excerpt(s)") || !strings.Contains(s, "1 known fact(s)") {
		t.Fatalf("summary missing counts: %q", s)
	}
	if strings.Count(s, "Q3 Report") != 1 {
		t.Fatalf("summary must list each source once: %q", s)
	}

	empty := Result{}
	if empty.Summary() != NoContextMarker {
		t.Fatalf("empty summary = %q", empty.Summary())
	}
}
