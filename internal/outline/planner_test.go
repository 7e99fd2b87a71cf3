// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/page-engine/internal/llm"
	"github.com/pdiddy/page-engine/pkg/types"
)

// mockClient returns a fixed structured response and records the prompt.
type mockClient struct {
	data       string
	tokens     int
	err        error
	lastPrompt string
	lastSchema string
}

func (m *mockClient) GenerateStructured(_ context.Context, prompt, schema string, _ llm.CallOptions) (llm.StructuredResult, error) {
	m.lastPrompt = prompt
	m.lastSchema = schema
	if m.err != nil {
		return llm.StructuredResult{}, m.err
	}
	return llm.StructuredResult{Data: json.RawMessage(m.data), TokensUsed: m.tokens}, nil
}

func (m *mockClient) StreamGenerate(_ context.Context, _ string, _ llm.CallOptions, _ func(string) error) (int, error) {
	return 0, fmt.Errorf("not used by the planner")
}

func TestPlan_Valid(t *testing.T) {
	client := &mockClient{
		data: `{"title":"Acme Account Plan","sections":[
			{"title":"Overview","description":"Company snapshot","block_types":["heading","paragraph"]},
			{"title":"Pipeline","description":"Open deals","block_types":["database"]}]}`,
		tokens: 321,
	}

	res, err := Plan(context.Background(), client, "plan for Acme", nil, "2 excerpts available", types.DefaultGenerationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outline.Title != "Acme Account Plan" {
		t.Fatalf("title = %q", res.Outline.Title)
	}
	if len(res.Outline.Sections) != 2 || res.Outline.Sections[1].Title != "Pipeline" {
		t.Fatalf("sections = %+v", res.Outline.Sections)
	}
	if res.TokensUsed != 321 {
		t.Fatalf("tokens = %d, want 321", res.TokensUsed)
	}
	if !strings.Contains(client.lastPrompt, "plan for Acme") || !strings.Contains(client.lastPrompt, "2 excerpts available") {
		t.Fatalf("prompt missing request or context summary:\n%s", client.lastPrompt)
	}
	if !strings.Contains(client.lastSchema, `"sections"`) {
		t.Fatalf("schema not passed through: %s", client.lastSchema)
	}
}

func TestPlan_TemplateSeedsPrompt(t *testing.T) {
	client := &mockClient{data: `{"title":"T","sections":[{"title":"S","description":"d"}]}`}
	tmpl := &types.PageTemplate{
		Name: "account-plan",
		Sections: []types.TemplateSection{
			{Title: "Relationship History", BlockTypes: []string{"paragraph"}},
			{Title: "Next Steps"},
		},
	}

	if _, err := Plan(context.Background(), client, "p", tmpl, "ctx", types.DefaultGenerationConfig()); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"account-plan", "Relationship History", "Next Steps"} {
		if !strings.Contains(client.lastPrompt, want) {
			t.Fatalf("prompt missing template element %q:\n%s", want, client.lastPrompt)
		}
	}
}

func TestPlan_ValidationFailuresAreFatal(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not an outline", `{"unexpected":true}`},
		{"empty title", `{"title":"","sections":[{"title":"S","description":"d"}]}`},
		{"no sections", `{"title":"T","sections":[]}`},
		{"section without title", `{"title":"T","sections":[{"title":"","description":"d"}]}`},
		{"malformed json", `{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{data: tt.data}
			if _, err := Plan(context.Background(), client, "p", nil, "ctx", types.DefaultGenerationConfig()); err == nil {
				t.Fatal("expected a fatal validation error, got a partial outline")
			}
		})
	}
}

func TestPlan_CallFailureIsFatal(t *testing.T) {
	client := &mockClient{err: fmt.Errorf("model unavailable")}
	if _, err := Plan(context.Background(), client, "p", nil, "ctx", types.DefaultGenerationConfig()); err == nil {
		t.Fatal("expected the call failure to propagate")
	}
}
