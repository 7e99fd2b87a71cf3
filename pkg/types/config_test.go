// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"testing"
)

func TestGenerationConfigValidate_FillsDefaults(t *testing.T) {
	cfg := GenerationConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := DefaultGenerationConfig()
	if cfg.TopK != want.TopK || cfg.MinScore != want.MinScore ||
		cfg.MaxTokensOutline != want.MaxTokensOutline || cfg.MaxTokensSection != want.MaxTokensSection ||
		cfg.Temperature != want.Temperature || cfg.MaxFacts != want.MaxFacts {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, want)
	}
}

func TestGenerationConfigValidate_KeepsExplicitValues(t *testing.T) {
	cfg := GenerationConfig{TopK: 5, Temperature: 1.2}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.TopK != 5 || cfg.Temperature != 1.2 {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}

func TestGenerationConfigValidate_Ranges(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*GenerationConfig)
		want string
	}{
		{"top_k too large", func(c *GenerationConfig) { c.TopK = 500 }, "top_k"},
		{"top_k negative", func(c *GenerationConfig) { c.TopK = -1 }, "top_k"},
		{"min_score above one", func(c *GenerationConfig) { c.MinScore = 1.5 }, "min_score"},
		{"negative outline budget", func(c *GenerationConfig) { c.MaxTokensOutline = -10 }, "max_tokens_outline"},
		{"negative section budget", func(c *GenerationConfig) { c.MaxTokensSection = -10 }, "max_tokens_section"},
		{"temperature too hot", func(c *GenerationConfig) { c.Temperature = 3 }, "temperature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGenerationConfig()
			tt.mut(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}
