// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/page-engine/pkg/types"
)

func TestEmbed(t *testing.T) {
	var gotReq embedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("path = %q, want /api/embeddings", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		fmt.Fprint(w, `{"embedding":[0.1,0.2,0.3]}`)
	}))
	defer srv.Close()

	o := NewOllama(types.EmbeddingConfig{BaseURL: srv.URL, Model: "test-embed"})
	vec, err := o.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("vector = %v, want [0.1 0.2 0.3]", vec)
	}
	if gotReq.Model != "test-embed" || gotReq.Prompt != "some text" {
		t.Errorf("request = %+v", gotReq)
	}
}

func TestEmbed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	o := NewOllama(types.EmbeddingConfig{BaseURL: srv.URL})
	_, err := o.Embed(context.Background(), "text")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("err = %v, want the server status", err)
	}
}

func TestEmbed_EmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"embedding":[]}`)
	}))
	defer srv.Close()

	o := NewOllama(types.EmbeddingConfig{BaseURL: srv.URL})
	_, err := o.Embed(context.Background(), "text")
	if err == nil || !strings.Contains(err.Error(), "empty vector") {
		t.Errorf("err = %v, want an empty-vector error", err)
	}
}

func TestNewOllama_Defaults(t *testing.T) {
	o := NewOllama(types.EmbeddingConfig{})
	if o.baseURL != defaultBaseURL {
		t.Errorf("baseURL = %q, want %q", o.baseURL, defaultBaseURL)
	}
	if o.model != defaultModel {
		t.Errorf("model = %q, want %q", o.model, defaultModel)
	}
}
