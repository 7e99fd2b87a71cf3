// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate drives the full page-generation lifecycle: context
// gathering, outline planning, sequential section expansion, and the
// single ordered event stream the caller consumes.
// Implements: prd004-orchestration (R1-R6);
//
//	docs/ARCHITECTURE § Orchestration.
package generate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pdiddy/page-engine/internal/assemble"
	"github.com/pdiddy/page-engine/internal/blockstream"
	"github.com/pdiddy/page-engine/internal/grounding"
	"github.com/pdiddy/page-engine/internal/llm"
	"github.com/pdiddy/page-engine/internal/outline"
	"github.com/pdiddy/page-engine/pkg/types"
)

// Generator owns the collaborators for one or more generation runs. It
// holds no per-request state: everything a run touches lives on the
// goroutine GeneratePage starts (R1.3).
type Generator struct {
	retrieval assemble.Deps
	client    llm.Client
	cfg       types.GenerationConfig
}

// New validates the configuration and returns a Generator.
func New(retrieval assemble.Deps, client llm.Client, cfg types.GenerationConfig) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("generation config: %w", err)
	}
	return &Generator{retrieval: retrieval, client: client, cfg: cfg}, nil
}

// GeneratePage runs one request and returns its ordered event stream.
// The channel is unbuffered: the caller's consumption rate is the only
// backpressure, and the engine buffers nothing beyond one section's
// in-flight text (R2.2). The channel closes after the terminal
// complete or error event, or once a cancelled run unwinds. Cancel ctx
// to stop cooperatively: the in-flight section's streaming call ends
// early, no new section begins, and already-delivered events remain
// valid (R6). Cancellation is the one case where the channel may close
// without a terminal event; exactly one complete or error event is
// guaranteed only for runs whose ctx stays live.
func (g *Generator) GeneratePage(ctx context.Context, req types.GenerationRequest) <-chan types.GenerationEvent {
	events := make(chan types.GenerationEvent)
	go g.run(ctx, req, events)
	return events
}

// run executes the gathering → outlining → expanding(i)… → complete
// state machine. Only gathering and outlining failures reach the
// terminal error event; section failures are downgraded to fallback
// blocks (R2.4).
func (g *Generator) run(ctx context.Context, req types.GenerationRequest, events chan<- types.GenerationEvent) {
	defer close(events)

	requestID := uuid.NewString()

	// send stamps the request ID and delivers one event. A false
	// return means the consumer is gone or the run is cancelled; the
	// caller must unwind without further sends.
	send := func(ev types.GenerationEvent) bool {
		ev.RequestID = requestID
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	fail := func(err error) {
		send(types.GenerationEvent{Type: types.EventError, Err: err.Error()})
	}

	// Gathering.
	res, err := assemble.GatherContext(ctx, g.retrieval, req, g.cfg)
	if err != nil {
		fail(err)
		return
	}

	// Outlining.
	plan, err := outline.Plan(ctx, g.client, req.Prompt, req.Template, res.Summary(), g.cfg)
	if err != nil {
		fail(err)
		return
	}

	usage := types.Usage{TotalTokens: plan.TokensUsed}
	if !send(types.GenerationEvent{Type: types.EventOutline, Outline: &plan.Outline}) {
		return
	}

	// Expanding, strictly sequential: section k+1's citation range
	// depends on the markers section k actually consumed (R5.1).
	blockIndex := 0
	citationStart := 1

	for i, sec := range plan.Outline.Sections {
		if ctx.Err() != nil {
			// Cancelled: no new section begins and no terminal event is
			// forced on a caller that already walked away (R6.2).
			return
		}

		if !send(types.GenerationEvent{Type: types.EventSectionStart, SectionIndex: i, SectionTitle: sec.Title}) {
			return
		}

		st := &sectionState{
			generator:     g,
			send:          send,
			sectionIndex:  i,
			blockIndex:    &blockIndex,
			usage:         &usage,
			citationStart: citationStart,
		}
		err := st.expand(ctx, plan.Outline.Title, sec, res.ContextText)

		if ctx.Err() != nil {
			// Cancellation, not a section failure: keep whatever was
			// already delivered and stop without further events (R6.2).
			return
		}

		switch {
		case err != nil:
			if !st.emitBlock(types.GeneratedBlock{
				Type:    types.BlockCallout,
				Icon:    "⚠️",
				Content: fmt.Sprintf("This section could not be generated: %v. The rest of the page is unaffected.", err),
			}) {
				return
			}
		case len(st.blocks) == 0:
			// Clean stream that never yielded a parseable block: emit
			// the fixed two-block placeholder (R4.4).
			if !st.emitBlock(types.GeneratedBlock{Type: types.BlockHeading, Level: 2, Content: sec.Title}) {
				return
			}
			if !st.emitBlock(types.GeneratedBlock{Type: types.BlockParagraph, Content: "The content for this section could not be parsed."}) {
				return
			}
		}

		if !send(types.GenerationEvent{Type: types.EventSectionComplete, SectionIndex: i, SectionTitle: sec.Title}) {
			return
		}
		usage.SectionsGenerated++

		used := grounding.CitationsUsed(st.blocks, citationStart)
		citationStart = grounding.NextStartIndex(citationStart, used)
	}

	send(types.GenerationEvent{Type: types.EventComplete, Usage: &usage})
}

// sectionState carries one section's expansion through the streaming
// call. Owned exclusively by the run goroutine and discarded when the
// section completes (R1.3).
type sectionState struct {
	generator     *Generator
	send          func(types.GenerationEvent) bool
	sectionIndex  int
	blockIndex    *int
	usage         *types.Usage
	citationStart int

	blocks []types.GeneratedBlock
}

// expand streams the section call through an incremental block
// streamer, emitting each block the moment its element completes. The
// returned error is the streaming call's own failure; blocks already
// emitted stay emitted either way.
func (s *sectionState) expand(ctx context.Context, pageTitle string, sec types.OutlineSection, contextText string) error {
	prompt, err := renderSectionPrompt(pageTitle, sec, contextText, s.citationStart)
	if err != nil {
		return fmt.Errorf("rendering section prompt: %w", err)
	}

	streamer := blockstream.New()

	tokens, err := s.generator.client.StreamGenerate(ctx, prompt, llm.CallOptions{
		MaxTokens:   s.generator.cfg.MaxTokensSection,
		Temperature: s.generator.cfg.Temperature,
	}, func(fragment string) error {
		streamer.Feed(fragment)
		if !s.emitAll(streamer.Flush()) {
			return context.Canceled
		}
		return nil
	})
	s.usage.TotalTokens += tokens
	if err != nil {
		return err
	}

	// Final flush at stream end; an unterminated tail is discarded by
	// the streamer, never surfaced as a malformed block.
	if !s.emitAll(streamer.Flush()) {
		return context.Canceled
	}
	return nil
}

// emitAll delivers a batch of parsed blocks in order.
func (s *sectionState) emitAll(blocks []types.GeneratedBlock) bool {
	for _, blk := range blocks {
		if !s.emitBlock(blk) {
			return false
		}
	}
	return true
}

// emitBlock delivers one block event, assigns the global block index,
// and announces database-kind blocks immediately so the caller can
// start asynchronous persistence without waiting for the section to
// finish (R4.1). The persisted identifier is left empty for the
// external materializer.
func (s *sectionState) emitBlock(blk types.GeneratedBlock) bool {
	b := blk
	ok := s.send(types.GenerationEvent{
		Type:         types.EventBlock,
		SectionIndex: s.sectionIndex,
		Block:        &b,
		BlockIndex:   *s.blockIndex,
	})
	if !ok {
		return false
	}
	*s.blockIndex++
	s.blocks = append(s.blocks, blk)

	if blk.Type == types.BlockDatabase {
		if !s.send(types.GenerationEvent{
			Type:         types.EventDatabaseCreated,
			SectionIndex: s.sectionIndex,
			DatabaseName: blk.Name,
		}) {
			return false
		}
		s.usage.DatabasesCreated++
	}
	return true
}
