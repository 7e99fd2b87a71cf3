// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/page-engine/internal/httputil"
	"github.com/pdiddy/page-engine/pkg/types"
)

// anthropicAPIBase is the Anthropic Messages endpoint. Declared as a
// var so tests can substitute an httptest server.
var anthropicAPIBase = "https://api.anthropic.com/v1/messages"

const anthropicVersion = "2023-06-01"

// Anthropic implements Client against the Anthropic Messages API.
type Anthropic struct {
	apiKey     string
	model      string
	maxRetries int
	httpClient *http.Client
}

// NewAnthropic builds a client from AIConfig. The HTTP timeout is long
// because streaming section calls hold the connection open for the
// whole response.
func NewAnthropic(cfg types.AIConfig) *Anthropic {
	return &Anthropic{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
	Stream      bool               `json:"stream,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage anthropicUsage `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// streamEvent is one SSE data payload from a streaming call.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Message struct {
		Usage anthropicUsage `json:"usage"`
	} `json:"message"`
	Usage anthropicUsage `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateStructured makes one non-streaming call with the schema
// embedded in the system prompt and returns the model's JSON document.
func (a *Anthropic) GenerateStructured(ctx context.Context, prompt, schema string, opts CallOptions) (StructuredResult, error) {
	system := opts.System
	if system != "" {
		system += "\n\n"
	}
	system += "Respond with a single JSON document matching this schema, and nothing else:\n" + schema

	body := anthropicRequest{
		Model:       a.model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		System:      system,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	}

	resp, err := a.post(ctx, body)
	if err != nil {
		return StructuredResult{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return StructuredResult{}, fmt.Errorf("reading response: %w", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return StructuredResult{}, fmt.Errorf("decoding response: %w", err)
	}
	if parsed.Error != nil {
		return StructuredResult{}, fmt.Errorf("anthropic api: %s: %s", parsed.Error.Type, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return StructuredResult{}, fmt.Errorf("anthropic api: status %d", resp.StatusCode)
	}
	if len(parsed.Content) == 0 {
		return StructuredResult{}, fmt.Errorf("anthropic api: empty response content")
	}

	doc := extractJSON(parsed.Content[0].Text)
	if !json.Valid([]byte(doc)) {
		return StructuredResult{}, fmt.Errorf("response is not valid JSON")
	}

	return StructuredResult{
		Data:       json.RawMessage(doc),
		TokensUsed: parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
	}, nil
}

// StreamGenerate makes one streaming call and invokes emit for each
// content_block_delta text fragment as it arrives.
func (a *Anthropic) StreamGenerate(ctx context.Context, prompt string, opts CallOptions, emit func(fragment string) error) (int, error) {
	body := anthropicRequest{
		Model:       a.model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		System:      opts.System,
		Stream:      true,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	}

	resp, err := a.post(ctx, body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("anthropic api: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var usage anthropicUsage
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			// Unparseable keep-alive or vendor extension: skip.
			continue
		}

		switch ev.Type {
		case "message_start":
			usage.InputTokens = ev.Message.Usage.InputTokens
		case "content_block_delta":
			if ev.Delta.Text != "" {
				if err := emit(ev.Delta.Text); err != nil {
					return usage.InputTokens + usage.OutputTokens, err
				}
			}
		case "message_delta":
			usage.OutputTokens = ev.Usage.OutputTokens
		case "error":
			if ev.Error != nil {
				return usage.InputTokens + usage.OutputTokens, fmt.Errorf("anthropic api: %s: %s", ev.Error.Type, ev.Error.Message)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return usage.InputTokens + usage.OutputTokens, fmt.Errorf("reading stream: %w", err)
	}

	return usage.InputTokens + usage.OutputTokens, nil
}

// post sends one Messages API request, retrying rate-limit and
// overload responses.
func (a *Anthropic) post(ctx context.Context, body anthropicRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIBase, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := httputil.DoWithRetry(ctx, a.httpClient, req, a.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("anthropic api: %w", err)
	}
	return resp, nil
}

// extractJSON strips a Markdown code fence if the model wrapped its
// JSON in one, and trims surrounding prose down to the outermost
// braces.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	end := strings.LastIndexAny(text, "}]")
	if end < start {
		return text
	}
	return text[start : end+1]
}
