// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/page-engine/pkg/types"
)

// sectionPromptTmpl is the expansion prompt for one section. The model
// must answer with a JSON array of block objects; the streamer parses
// elements out of it as they arrive. Per prd004-orchestration R3.3.
var sectionPromptTmpl = template.Must(template.New("section").Parse(`You are writing one section of a structured workspace page titled "{{.PageTitle}}".

Section: {{.Section.Title}}
{{if .Section.Description}}Covers: {{.Section.Description}}
{{end}}{{if .Section.BlockTypes}}Preferred block types: {{range $i, $t := .Section.BlockTypes}}{{if $i}}, {{end}}{{$t}}{{end}}
{{end}}
Grounding context:
{{.Context}}

Respond with a JSON array of content blocks and nothing else. Each block is an object with a "type" field, one of: heading, paragraph, bulleted_list, numbered_list, callout, quote, code, divider, database.
- heading, paragraph, callout, quote, code carry "content" (heading also "level" 1-3, callout may carry "icon", code may carry "language")
- bulleted_list and numbered_list carry "items", an array of strings
- divider carries nothing else
- database carries "name" and "columns" (objects with "name", "kind", and for select kinds "options")

Ground every claim in the context above. Cite sources with inline markers like [{{.CitationStart}}]: your first distinct source is [{{.CitationStart}}], the next is [{{.CitationNext}}], and so on. Do not use marker numbers below {{.CitationStart}}. If the context says no grounding is available, write from general knowledge and use no citation markers.
`))

// renderSectionPrompt executes the section expansion template.
func renderSectionPrompt(pageTitle string, sec types.OutlineSection, contextText string, citationStart int) (string, error) {
	var buf bytes.Buffer
	err := sectionPromptTmpl.Execute(&buf, struct {
		PageTitle     string
		Section       types.OutlineSection
		Context       string
		CitationStart int
		CitationNext  int
	}{pageTitle, sec, contextText, citationStart, citationStart + 1})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
