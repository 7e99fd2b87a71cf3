// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "page-engine/0.1"). Per prd007-cli R4.2.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// EmbeddingConfig holds settings for the embedding service.
// Per prd001-retrieval R1.2.
type EmbeddingConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the embedding server address (default "http://localhost:11434").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the embedding model identifier (default "nomic-embed-text").
	Model string `json:"model" yaml:"model"`
}

// GenerationConfig holds the closed set of recognized generation
// options. Per prd004-orchestration R6.1; the set is validated, not
// open-ended: unknown knobs belong in a PRD first.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`

	// TopK is the maximum number of chunks retrieved for grounding (default 15).
	TopK int `json:"top_k" yaml:"top_k"`

	// MinScore discards chunks scoring below it, in [0, 1] (default 0.4).
	MinScore float64 `json:"min_score" yaml:"min_score"`

	// MaxTokensOutline caps the outline call's output (default 2048).
	MaxTokensOutline int `json:"max_tokens_outline" yaml:"max_tokens_outline"`

	// MaxTokensSection caps each section call's output (default 4096).
	MaxTokensSection int `json:"max_tokens_section" yaml:"max_tokens_section"`

	// Temperature is the sampling temperature in [0, 2] (default 0.7).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// IncludeFacts enables structured fact retrieval when the request
	// names a company (default true).
	IncludeFacts bool `json:"include_facts" yaml:"include_facts"`

	// MaxFacts caps the number of facts retrieved (default 30).
	MaxFacts int `json:"max_facts" yaml:"max_facts"`
}

// DefaultGenerationConfig returns a GenerationConfig with every knob at
// its documented default.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		TopK:             15,
		MinScore:         0.4,
		MaxTokensOutline: 2048,
		MaxTokensSection: 4096,
		Temperature:      0.7,
		IncludeFacts:     true,
		MaxFacts:         30,
	}
}

// Validate checks every option against its documented range. A zero
// value is filled with the default rather than rejected, so partially
// specified config files work (prd004 R6.2).
func (c *GenerationConfig) Validate() error {
	d := DefaultGenerationConfig()
	if c.TopK == 0 {
		c.TopK = d.TopK
	}
	if c.MinScore == 0 {
		c.MinScore = d.MinScore
	}
	if c.MaxTokensOutline == 0 {
		c.MaxTokensOutline = d.MaxTokensOutline
	}
	if c.MaxTokensSection == 0 {
		c.MaxTokensSection = d.MaxTokensSection
	}
	if c.Temperature == 0 {
		c.Temperature = d.Temperature
	}
	if c.MaxFacts == 0 {
		c.MaxFacts = d.MaxFacts
	}

	if c.TopK < 1 || c.TopK > 100 {
		return fmt.Errorf("top_k %d out of range [1, 100]", c.TopK)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("min_score %f out of range [0, 1]", c.MinScore)
	}
	if c.MaxTokensOutline < 1 {
		return fmt.Errorf("max_tokens_outline must be positive")
	}
	if c.MaxTokensSection < 1 {
		return fmt.Errorf("max_tokens_section must be positive")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %f out of range [0, 2]", c.Temperature)
	}
	if c.MaxFacts < 1 || c.MaxFacts > 500 {
		return fmt.Errorf("max_facts %d out of range [1, 500]", c.MaxFacts)
	}
	return nil
}

// IndexConfig holds settings for the document index.
// Per prd006-document-index R1.2.
type IndexConfig struct {
	// IndexDir is the directory holding the SQLite index (contains pages.db).
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// EngineConfig groups all stage configurations for the engine.
type EngineConfig struct {
	Embedding  EmbeddingConfig  `json:"embedding" yaml:"embedding"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Index      IndexConfig      `json:"index" yaml:"index"`
}
