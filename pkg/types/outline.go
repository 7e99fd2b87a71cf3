// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// OutlineSection describes one planned section of a generated page.
// Per prd002-outline R1.2.
type OutlineSection struct {
	// Title is the section heading.
	Title string `json:"title" yaml:"title"`

	// Description explains what the section should cover.
	Description string `json:"description" yaml:"description"`

	// BlockTypes hints which block kinds the section should lean on.
	// Hints are advisory: the expander may ignore them and the streamer
	// never enforces them (R1.3).
	BlockTypes []string `json:"block_types,omitempty" yaml:"block_types,omitempty"`
}

// PageOutline is the section plan produced before any section content
// is generated. Per prd002-outline R1.1.
type PageOutline struct {
	// Title is the planned page title.
	Title string `json:"title" yaml:"title"`

	// Sections lists the planned sections in generation order.
	Sections []OutlineSection `json:"sections" yaml:"sections"`
}

// TemplateSection describes one fixed section in a page template.
type TemplateSection struct {
	// Title is the section heading.
	Title string `json:"title" yaml:"title"`

	// Description explains what the section should cover.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// BlockTypes hints which block kinds the section should use.
	BlockTypes []string `json:"block_types,omitempty" yaml:"block_types,omitempty"`
}

// PageTemplate seeds the outline planner with a predefined structure.
// The planner still runs: it adapts titles and descriptions to the
// prompt but keeps the template's section order. Per prd002-outline R3.
type PageTemplate struct {
	// Name identifies the template (e.g. "account-plan").
	Name string `json:"name" yaml:"name"`

	// Description explains when to use the template.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Sections lists the template's sections in order.
	Sections []TemplateSection `json:"sections" yaml:"sections"`
}
