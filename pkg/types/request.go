// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// GenerationRequest describes one page-generation run. All scoping is
// assumed pre-validated by the caller; the engine never checks that the
// caller may read the named organization or documents.
// Per prd004-orchestration R1.1.
type GenerationRequest struct {
	// Prompt is the user's natural-language description of the page.
	Prompt string `json:"prompt" yaml:"prompt"`

	// OrgID scopes retrieval to one organization's documents.
	OrgID string `json:"org_id" yaml:"org_id"`

	// CompanyID optionally scopes fact retrieval to one company (R1.2).
	CompanyID string `json:"company_id,omitempty" yaml:"company_id,omitempty"`

	// DealID optionally associates the page with a deal. Carried through
	// for the caller's benefit; retrieval does not filter on it.
	DealID string `json:"deal_id,omitempty" yaml:"deal_id,omitempty"`

	// DocumentIDs optionally restricts retrieval. When exactly one ID is
	// listed, vector search is limited to that document (prd001 R2.3).
	DocumentIDs []string `json:"document_ids,omitempty" yaml:"document_ids,omitempty"`

	// Template optionally seeds the outline planner with a fixed
	// section structure (prd002-outline R3).
	Template *PageTemplate `json:"template,omitempty" yaml:"template,omitempty"`
}

// RetrievedChunk is one scored fragment of document text returned by
// vector search and used as generation grounding.
// Per prd001-retrieval R2.1.
type RetrievedChunk struct {
	// ID uniquely identifies the chunk within the index.
	ID string `json:"id" yaml:"id"`

	// Content is the chunk text.
	Content string `json:"content" yaml:"content"`

	// Score is the relevance score in [0, 1].
	Score float64 `json:"score" yaml:"score"`

	// DocumentID identifies the source document.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// DocumentName is the source document's display name.
	DocumentName string `json:"document_name" yaml:"document_name"`

	// Page is the page number within the source document, if known.
	Page int `json:"page,omitempty" yaml:"page,omitempty"`

	// OrgID is the owning organization.
	OrgID string `json:"org_id" yaml:"org_id"`
}

// FactRecord is a structured (subject, predicate, object) triple
// extracted from a document, with a confidence score.
// Per prd001-retrieval R3.1.
type FactRecord struct {
	// ID uniquely identifies the fact within the index.
	ID string `json:"id" yaml:"id"`

	// Type categorizes the fact (e.g. "financial", "personnel").
	Type string `json:"type" yaml:"type"`

	// Subject is the entity the fact is about.
	Subject string `json:"subject" yaml:"subject"`

	// Predicate is the relation between subject and object.
	Predicate string `json:"predicate" yaml:"predicate"`

	// Object is the value or entity the predicate points at.
	Object string `json:"object" yaml:"object"`

	// Confidence is the extraction confidence in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// SourceText is the passage the fact was extracted from (optional).
	SourceText string `json:"source_text,omitempty" yaml:"source_text,omitempty"`

	// DocumentID identifies the source document (optional).
	DocumentID string `json:"document_id,omitempty" yaml:"document_id,omitempty"`

	// DocumentName is the source document's display name (optional).
	DocumentName string `json:"document_name,omitempty" yaml:"document_name,omitempty"`
}
