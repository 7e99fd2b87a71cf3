// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package templates loads and validates page templates used to seed the
// outline planner.
// Implements: prd002-outline (R3);
//
//	docs/ARCHITECTURE § Outline Planning.
package templates

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/page-engine/pkg/types"
)

// Load reads a page template from a YAML file and validates it.
func Load(path string) (*types.PageTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}

	var tmpl types.PageTemplate
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	if err := Validate(&tmpl); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// Validate checks that a template can seed the planner: a name, at
// least one section, and a title per section (R3.2).
func Validate(tmpl *types.PageTemplate) error {
	if tmpl.Name == "" {
		return fmt.Errorf("template missing name")
	}
	if len(tmpl.Sections) == 0 {
		return fmt.Errorf("template %q has no sections", tmpl.Name)
	}
	for i, s := range tmpl.Sections {
		if s.Title == "" {
			return fmt.Errorf("template %q: section %d has no title", tmpl.Name, i)
		}
	}
	return nil
}
