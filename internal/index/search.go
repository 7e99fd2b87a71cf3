// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/page-engine/internal/assemble"
	"github.com/pdiddy/page-engine/pkg/types"
)

// Search finds the organization's chunks most similar to the query
// vector, discarding any below opts.MinScore and returning at most
// opts.TopK in descending score order. When opts.DocumentID is set the
// search is restricted to that document (R3.1-R3.3). Similarity is
// exact cosine over the stored embeddings; the corpus for one
// organization is small enough that a linear scan beats maintaining an
// approximate index.
func (s *Store) Search(ctx context.Context, vector []float32, orgID string, opts assemble.SearchOptions) ([]types.RetrievedChunk, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`
		SELECT c.id, c.content, c.page, c.document_id, d.name, c.org_id, c.embedding
		FROM chunks c JOIN documents d ON d.id = c.document_id
		WHERE c.org_id = ?`)
	args = append(args, orgID)
	if opts.DocumentID != "" {
		qb.WriteString(" AND c.document_id = ?")
		args = append(args, opts.DocumentID)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var scored []types.RetrievedChunk
	for rows.Next() {
		var (
			chunk    types.RetrievedChunk
			rawEmbed string
		)
		if err := rows.Scan(&chunk.ID, &chunk.Content, &chunk.Page, &chunk.DocumentID, &chunk.DocumentName, &chunk.OrgID, &rawEmbed); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}

		var embedding []float32
		if err := json.Unmarshal([]byte(rawEmbed), &embedding); err != nil {
			return nil, fmt.Errorf("decoding embedding for chunk %s: %w", chunk.ID, err)
		}

		chunk.Score = cosineSimilarity(vector, embedding)
		if chunk.Score < opts.MinScore {
			continue
		}
		scored = append(scored, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	topK := opts.TopK
	if topK <= 0 {
		topK = s.maxResults
	}
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// FindFacts returns up to maxFacts facts for a company within an
// organization, ordered by confidence descending (R4.1).
func (s *Store) FindFacts(ctx context.Context, companyID, orgID string, maxFacts int) ([]types.FactRecord, error) {
	if maxFacts <= 0 {
		maxFacts = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, subject, predicate, object, confidence, source_text, document_id, document_name
		FROM facts
		WHERE org_id = ? AND company_id = ?
		ORDER BY confidence DESC
		LIMIT ?`, orgID, companyID, maxFacts)
	if err != nil {
		return nil, fmt.Errorf("querying facts: %w", err)
	}
	defer rows.Close()

	var facts []types.FactRecord
	for rows.Next() {
		var f types.FactRecord
		if err := rows.Scan(&f.ID, &f.Type, &f.Subject, &f.Predicate, &f.Object, &f.Confidence, &f.SourceText, &f.DocumentID, &f.DocumentName); err != nil {
			return nil, fmt.Errorf("scanning fact row: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// clamped to 0 when either norm vanishes or lengths differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
