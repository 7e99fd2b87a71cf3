// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/page-engine/pkg/types"
)

// outlineSchema is the JSON schema the planner call is constrained to.
// Per prd002-outline R1.1.
const outlineSchema = `{
  "type": "object",
  "required": ["title", "sections"],
  "properties": {
    "title": {"type": "string"},
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "description"],
        "properties": {
          "title": {"type": "string"},
          "description": {"type": "string"},
          "block_types": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

// outlinePromptTmpl is the planning prompt. block_types are hints for
// the section expander, not an enforced contract (R1.3).
var outlinePromptTmpl = template.Must(template.New("outline").Parse(`You are planning a structured workspace page.

Request:
{{.Prompt}}

Available grounding:
{{.ContextSummary}}
{{if .Template}}
Follow this template structure, adapting section titles and descriptions to the request. Keep the section order.
Template "{{.Template.Name}}":
{{- range .Template.Sections}}
- {{.Title}}{{if .Description}}: {{.Description}}{{end}}{{if .BlockTypes}} (suggested blocks: {{range $i, $t := .BlockTypes}}{{if $i}}, {{end}}{{$t}}{{end}}){{end}}
{{- end}}
{{end}}
Produce a page title and an ordered list of sections. For each section give a title, a one-sentence description of what it covers, and optionally block_types hints drawn from: heading, paragraph, bulleted_list, numbered_list, callout, quote, code, divider, database.
`))

// renderPrompt executes the outline prompt template.
func renderPrompt(prompt, contextSummary string, tmpl *types.PageTemplate) (string, error) {
	var buf bytes.Buffer
	err := outlinePromptTmpl.Execute(&buf, struct {
		Prompt         string
		ContextSummary string
		Template       *types.PageTemplate
	}{prompt, contextSummary, tmpl})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
