// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// BlockType discriminates the GeneratedBlock variant.
// Per prd003-block-streaming R1.1.
type BlockType string

const (
	BlockHeading      BlockType = "heading"
	BlockParagraph    BlockType = "paragraph"
	BlockBulletedList BlockType = "bulleted_list"
	BlockNumberedList BlockType = "numbered_list"
	BlockCallout      BlockType = "callout"
	BlockQuote        BlockType = "quote"
	BlockCode         BlockType = "code"
	BlockDivider      BlockType = "divider"
	BlockDatabase     BlockType = "database"
)

// validBlockTypes is the closed set of accepted block kinds (R1.1).
var validBlockTypes = map[BlockType]bool{
	BlockHeading:      true,
	BlockParagraph:    true,
	BlockBulletedList: true,
	BlockNumberedList: true,
	BlockCallout:      true,
	BlockQuote:        true,
	BlockCode:         true,
	BlockDivider:      true,
	BlockDatabase:     true,
}

// DatabaseColumn describes one column of a database-kind block.
// Per prd004-orchestration R4.2.
type DatabaseColumn struct {
	// Name is the column header.
	Name string `json:"name" yaml:"name"`

	// Kind is the column value type (e.g. "text", "number", "select", "date").
	Kind string `json:"kind" yaml:"kind"`

	// Options lists allowed values for select-kind columns.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// GeneratedBlock is one discrete structured-content unit of a generated
// page. It is a tagged variant over Type; only the fields relevant to
// the variant are populated. Inline citation markers like [3] may
// appear in any text field and are carried verbatim (prd005 R1.4).
type GeneratedBlock struct {
	// Type selects the variant.
	Type BlockType `json:"type" yaml:"type"`

	// Content is the text body for heading, paragraph, callout, quote,
	// and code blocks.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// Level is the heading depth 1-3 (heading only; 0 means 2).
	Level int `json:"level,omitempty" yaml:"level,omitempty"`

	// Items holds the entries of a list block.
	Items []string `json:"items,omitempty" yaml:"items,omitempty"`

	// Icon is an optional emoji for callout blocks.
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty"`

	// Language is the syntax-highlighting hint for code blocks.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// Name is the declared name of a database block.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Columns lists the column specs of a database block.
	Columns []DatabaseColumn `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// Validate checks that the block is a well-formed instance of its
// variant. The streamer uses a failed validation to reject a false
// positive element match, so messages stay cheap (prd003 R3.4).
func (b *GeneratedBlock) Validate() error {
	if !validBlockTypes[b.Type] {
		return fmt.Errorf("unknown block type %q", b.Type)
	}
	switch b.Type {
	case BlockHeading, BlockParagraph, BlockCallout, BlockQuote, BlockCode:
		if b.Content == "" {
			return fmt.Errorf("%s block requires content", b.Type)
		}
	case BlockBulletedList, BlockNumberedList:
		if len(b.Items) == 0 {
			return fmt.Errorf("%s block requires items", b.Type)
		}
	case BlockDatabase:
		if b.Name == "" {
			return fmt.Errorf("database block requires a name")
		}
	case BlockDivider:
		// No payload.
	}
	if b.Type == BlockHeading && (b.Level < 0 || b.Level > 3) {
		return fmt.Errorf("heading level %d out of range", b.Level)
	}
	return nil
}

// Text returns every human-readable text field of the block joined
// with newlines. Citation grounding scans this to find inline markers
// (prd005-grounding R1.2).
func (b *GeneratedBlock) Text() string {
	var parts []string
	if b.Content != "" {
		parts = append(parts, b.Content)
	}
	parts = append(parts, b.Items...)
	if b.Name != "" {
		parts = append(parts, b.Name)
	}
	return strings.Join(parts, "\n")
}
