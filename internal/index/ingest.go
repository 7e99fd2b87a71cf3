// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/page-engine/pkg/types"
)

// Embedder vectorizes chunk text at ingest time. Satisfied by
// internal/embed; tests supply a stub.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// IngestSummary holds counts from a batch ingest run (R2.4).
type IngestSummary struct {
	Documents int
	Chunks    int
	Failed    int
}

// HasFailures reports whether any documents failed.
func (s IngestSummary) HasFailures() bool {
	return s.Failed > 0
}

// IngestDir indexes every Markdown file in dir for one organization:
// each file becomes a document, its heading-delimited sections become
// embedded chunks (R2.1-R2.3). Progress is reported to w.
func (s *Store) IngestDir(ctx context.Context, embedder Embedder, orgID, dir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading document directory %s: %w", dir, err)
	}

	var summary IngestSummary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		n, err := s.IngestDocument(ctx, embedder, orgID, path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "indexed %s (%d chunks)\n", entry.Name(), n)
		summary.Documents++
		summary.Chunks += n
	}
	return summary, nil
}

// IngestDocument indexes one Markdown file and returns the number of
// chunks stored. Re-ingesting the same path replaces the document's
// previous chunks (R2.5).
func (s *Store) IngestDocument(ctx context.Context, embedder Embedder, orgID, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading document %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), ".md")
	docID, err := s.upsertDocument(ctx, orgID, name, path)
	if err != nil {
		return 0, err
	}

	sections := chunkByHeadings(string(content))
	stored := 0
	for _, sec := range sections {
		text := strings.TrimSpace(sec.text())
		if text == "" {
			continue
		}

		vector, err := embedder.Embed(ctx, text)
		if err != nil {
			return stored, fmt.Errorf("embedding chunk: %w", err)
		}
		raw, err := json.Marshal(vector)
		if err != nil {
			return stored, fmt.Errorf("encoding embedding: %w", err)
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO chunks (id, document_id, org_id, content, page, embedding)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET content = excluded.content, embedding = excluded.embedding`,
			stableID(docID, sec.heading, text), docID, orgID, text, sec.page, string(raw))
		if err != nil {
			return stored, fmt.Errorf("inserting chunk: %w", err)
		}
		stored++
	}
	return stored, nil
}

// upsertDocument finds or creates the document row for a path and
// clears its stale chunks.
func (s *Store) upsertDocument(ctx context.Context, orgID, name, path string) (string, error) {
	var docID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM documents WHERE org_id = ? AND path = ?`, orgID, path).Scan(&docID)
	switch {
	case err == nil:
		if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, docID); err != nil {
			return "", fmt.Errorf("clearing stale chunks: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		docID = uuid.NewString()
	default:
		return "", fmt.Errorf("looking up document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, org_id, name, path, indexed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET indexed_at = excluded.indexed_at`,
		docID, orgID, name, path, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("upserting document: %w", err)
	}
	return docID, nil
}

// FactsFile is the YAML import format for extracted facts (R4.2).
type FactsFile struct {
	// CompanyID scopes every fact in the file.
	CompanyID string `json:"company_id" yaml:"company_id"`

	// Facts lists the records to import.
	Facts []types.FactRecord `json:"facts" yaml:"facts"`
}

// ImportFacts reads a YAML facts file and stores its records for one
// organization. Records with out-of-range confidence are rejected
// before anything is written (R4.3).
func (s *Store) ImportFacts(ctx context.Context, orgID, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading facts file: %w", err)
	}

	var file FactsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parsing facts file: %w", err)
	}
	if file.CompanyID == "" {
		return 0, fmt.Errorf("facts file missing company_id")
	}
	for i, f := range file.Facts {
		if f.Subject == "" || f.Predicate == "" || f.Object == "" {
			return 0, fmt.Errorf("fact %d: subject, predicate, and object are required", i)
		}
		if f.Confidence < 0 || f.Confidence > 1 {
			return 0, fmt.Errorf("fact %d: confidence %f out of range [0, 1]", i, f.Confidence)
		}
	}

	stored := 0
	for _, f := range file.Facts {
		id := f.ID
		if id == "" {
			id = stableID(file.CompanyID, f.Subject+f.Predicate, f.Object)
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO facts (id, org_id, company_id, type, subject, predicate, object, confidence, source_text, document_id, document_name)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET confidence = excluded.confidence, object = excluded.object`,
			id, orgID, file.CompanyID, f.Type, f.Subject, f.Predicate, f.Object, f.Confidence, f.SourceText, f.DocumentID, f.DocumentName)
		if err != nil {
			return stored, fmt.Errorf("inserting fact: %w", err)
		}
		stored++
	}
	return stored, nil
}

// section is one heading-delimited span of a Markdown document.
type section struct {
	heading string
	body    string
	page    int
}

func (s section) text() string {
	if s.heading == "" {
		return s.body
	}
	return s.heading + "\n" + s.body
}

// chunkByHeadings splits Markdown into sections at ## and ### heading
// boundaries. Page numbers are read from HTML comments like
// <!-- page 3 --> when the source conversion preserved them (R2.2).
func chunkByHeadings(content string) []section {
	lines := strings.Split(content, "\n")
	var sections []section
	currentHeading := ""
	currentPage := 0
	var bodyLines []string

	flush := func() {
		body := strings.Join(bodyLines, "\n")
		if currentHeading != "" || strings.TrimSpace(body) != "" {
			sections = append(sections, section{heading: currentHeading, body: body, page: currentPage})
		}
		bodyLines = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if page, ok := parsePageMarker(trimmed); ok {
			currentPage = page
			continue
		}
		if strings.HasPrefix(trimmed, "## ") || strings.HasPrefix(trimmed, "### ") {
			flush()
			currentHeading = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			continue
		}
		bodyLines = append(bodyLines, line)
	}
	flush()
	return sections
}

// parsePageMarker extracts the page number from <!-- page N -->.
func parsePageMarker(line string) (int, bool) {
	if !strings.HasPrefix(line, "<!-- page ") || !strings.HasSuffix(line, " -->") {
		return 0, false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(line, "<!-- page "), " -->")
	var page int
	if _, err := fmt.Sscanf(inner, "%d", &page); err != nil {
		return 0, false
	}
	return page, true
}

// stableID generates a deterministic ID from three components: the
// first 12 hex characters of their SHA-256.
func stableID(a, b, c string) string {
	h := sha256.New()
	h.Write([]byte(a))
	h.Write([]byte(b))
	h.Write([]byte(c))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}
