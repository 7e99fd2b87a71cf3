// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists documents, embedded chunks, and extracted
// facts in SQLite, and serves the vector and fact lookups the context
// assembler depends on.
// Implements: prd006-document-index (R1-R5);
//
//	docs/ARCHITECTURE § Document Index.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/page-engine/pkg/types"
)

const dbFile = "pages.db"

// Store manages the document index SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the index database at indexDir/pages.db and
// creates the schema if it does not exist (R1.2, R1.3).
func NewStore(cfg types.IndexConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			org_id TEXT NOT NULL,
			name TEXT NOT NULL,
			path TEXT,
			indexed_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_org ON documents(org_id)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			document_id TEXT NOT NULL REFERENCES documents(id),
			org_id TEXT NOT NULL,
			content TEXT NOT NULL,
			page INTEGER,
			embedding TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_org ON chunks(org_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id)`,
		`CREATE TABLE IF NOT EXISTS facts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			org_id TEXT NOT NULL,
			company_id TEXT NOT NULL,
			type TEXT,
			subject TEXT NOT NULL,
			predicate TEXT NOT NULL,
			object TEXT NOT NULL,
			confidence REAL NOT NULL,
			source_text TEXT,
			document_id TEXT,
			document_name TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_facts_company ON facts(org_id, company_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// OrgStatus summarizes one organization's index contents (R5.2).
type OrgStatus struct {
	OrgID     string `json:"org_id" yaml:"org_id"`
	Documents int    `json:"documents" yaml:"documents"`
	Chunks    int    `json:"chunks" yaml:"chunks"`
	Facts     int    `json:"facts" yaml:"facts"`
}

// Status returns per-organization document, chunk, and fact counts.
func (s *Store) Status() ([]OrgStatus, error) {
	rows, err := s.db.Query(`
		SELECT d.org_id,
		       COUNT(DISTINCT d.id),
		       (SELECT COUNT(*) FROM chunks c WHERE c.org_id = d.org_id),
		       (SELECT COUNT(*) FROM facts f WHERE f.org_id = d.org_id)
		FROM documents d
		GROUP BY d.org_id
		ORDER BY d.org_id`)
	if err != nil {
		return nil, fmt.Errorf("querying status: %w", err)
	}
	defer rows.Close()

	var out []OrgStatus
	for rows.Next() {
		var st OrgStatus
		if err := rows.Scan(&st.OrgID, &st.Documents, &st.Chunks, &st.Facts); err != nil {
			return nil, fmt.Errorf("scanning status row: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
