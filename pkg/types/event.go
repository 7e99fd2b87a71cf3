// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// GenerationEventType discriminates the GenerationEvent variant.
// Per prd004-orchestration R2.1.
type GenerationEventType string

const (
	EventOutline         GenerationEventType = "outline"
	EventSectionStart    GenerationEventType = "section_start"
	EventBlock           GenerationEventType = "block"
	EventSectionComplete GenerationEventType = "section_complete"
	EventDatabaseCreated GenerationEventType = "database_created"
	EventComplete        GenerationEventType = "complete"
	EventError           GenerationEventType = "error"
)

// Usage aggregates resource consumption across one generation run.
// Folded by the orchestrator and surfaced once on the complete event
// (prd004-orchestration R5).
type Usage struct {
	// TotalTokens counts tokens across the outline call and every
	// section call.
	TotalTokens int `json:"total_tokens" yaml:"total_tokens"`

	// SectionsGenerated counts sections that reached section_complete.
	SectionsGenerated int `json:"sections_generated" yaml:"sections_generated"`

	// DatabasesCreated counts database-kind blocks announced.
	DatabasesCreated int `json:"databases_created" yaml:"databases_created"`
}

// GenerationEvent is one element of the ordered event sequence produced
// by a generation run. It is a tagged variant over Type; only the
// fields relevant to the variant are populated.
// Per prd004-orchestration R2.
type GenerationEvent struct {
	// Type selects the variant.
	Type GenerationEventType `json:"type" yaml:"type"`

	// RequestID identifies the generation run that produced the event.
	RequestID string `json:"request_id" yaml:"request_id"`

	// Outline carries the page plan (outline events only).
	Outline *PageOutline `json:"outline,omitempty" yaml:"outline,omitempty"`

	// SectionIndex is the zero-based outline position for
	// section_start, block, database_created, and section_complete.
	// The zero value is a real index, so the field always serializes.
	SectionIndex int `json:"section_index" yaml:"section_index"`

	// SectionTitle accompanies section_start and section_complete.
	SectionTitle string `json:"section_title,omitempty" yaml:"section_title,omitempty"`

	// Block carries the parsed block (block events only).
	Block *GeneratedBlock `json:"block,omitempty" yaml:"block,omitempty"`

	// BlockIndex is the global block position, strictly increasing by
	// one per block event across the whole run, never reset between
	// sections (R2.3).
	// Like SectionIndex, never omitted: index zero is meaningful.
	BlockIndex int `json:"block_index" yaml:"block_index"`

	// DatabaseName is the declared name of an announced database
	// (database_created only).
	DatabaseName string `json:"database_name,omitempty" yaml:"database_name,omitempty"`

	// DatabaseID is the persisted identifier of an announced database.
	// Left empty by the engine; the external materializer fills it in
	// once persistence finishes (R4.3).
	DatabaseID string `json:"database_id,omitempty" yaml:"database_id,omitempty"`

	// Usage carries the folded totals (complete events only).
	Usage *Usage `json:"usage,omitempty" yaml:"usage,omitempty"`

	// Err is the failure description (error events only).
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}
