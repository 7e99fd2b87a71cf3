// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package blockstream converts an append-only stream of model output
// fragments into fully-formed content blocks without ever emitting a
// syntactically incomplete one.
// Implements: prd003-block-streaming (R1-R4);
//
//	docs/ARCHITECTURE § Block Streaming.
package blockstream

import (
	"encoding/json"

	"github.com/pdiddy/page-engine/pkg/types"
)

// Streamer is a per-section incremental element scanner. Feed appends
// model output to an internal buffer; Flush consumes every complete
// element currently in the buffer and returns the parsed blocks.
//
// The scanner tracks bracket depth with a string-aware sub-state, so
// structural characters inside quoted block text never corrupt depth
// tracking (R2.2). Output is invariant under fragmentation: feeding a
// response whole or one byte at a time yields the same block sequence
// (R4.1). A Streamer is not safe for concurrent use; the orchestrator
// owns exactly one per in-flight section.
type Streamer struct {
	buf []byte
	pos int // scan offset into buf; everything before pos has been examined

	// started flips once the opening bracket of the element sequence is
	// seen. Prose before it is discarded, never surfaced (R2.1).
	started bool

	// closed flips once the element sequence's closing bracket is seen
	// at the top level. Everything after it is discarded.
	closed bool

	// elemStart is the buffer offset of the current element's opening
	// character, or -1 when scanning between elements.
	elemStart int

	// depth is the bracket nesting depth within the current element.
	depth int

	// inString and escaped form the string-aware sub-state.
	inString bool
	escaped  bool
}

// New returns an empty Streamer.
func New() *Streamer {
	return &Streamer{elemStart: -1}
}

// Feed appends a fragment to the internal buffer. It has no parsing
// side effects; call Flush to consume completed elements (R1.1).
func (s *Streamer) Feed(fragment string) {
	s.buf = append(s.buf, fragment...)
}

// Flush scans forward from the last examined position and returns every
// block whose element completed since the previous call. Matched
// prefixes of the buffer are consumed as it goes; the call is not
// restartable (R1.2). A candidate element that fails to parse is
// retained unconsumed on the assumption that it is a false positive
// inside multi-line text, and the scan continues to the next closing
// bracket (R3.4).
func (s *Streamer) Flush() []types.GeneratedBlock {
	var blocks []types.GeneratedBlock

	for s.pos < len(s.buf) {
		c := s.buf[s.pos]

		if s.closed {
			// Trailing prose after the sequence closed: discard.
			s.pos = len(s.buf)
			break
		}

		if !s.started {
			if c != '[' {
				s.pos++
				continue
			}
			// Candidate sequence opener. Prose may itself contain
			// bracketed tokens like [1], so commit only when the next
			// non-whitespace character begins an element or closes an
			// empty sequence (R2.1).
			next, ok := s.nextNonSpace(s.pos + 1)
			if !ok {
				// Not enough lookahead yet: keep the candidate and
				// whatever follows, wait for more input.
				s.discardExamined()
				break
			}
			s.pos++
			if next == '{' || next == '[' || next == ']' {
				s.started = true
				s.discardExamined()
			}
			continue
		}

		if s.elemStart < 0 {
			// Between elements at the top level of the sequence.
			switch c {
			case '{', '[':
				s.elemStart = s.pos
				s.depth = 1
			case ']':
				s.closed = true
			}
			s.pos++
			if s.elemStart < 0 {
				s.discardExamined()
			}
			continue
		}

		// Inside an element.
		if s.inString {
			switch {
			case s.escaped:
				s.escaped = false
			case c == '\\':
				s.escaped = true
			case c == '"':
				s.inString = false
			}
			s.pos++
			continue
		}

		switch c {
		case '"':
			s.inString = true
		case '{', '[':
			s.depth++
		case '}', ']':
			s.depth--
		}
		s.pos++

		if (c == '}' || c == ']') && s.depth <= 0 {
			if blk, ok := s.tryParse(); ok {
				blocks = append(blocks, blk)
			} else if s.depth < 0 {
				// Stray closer inside a false positive; keep waiting.
				s.depth = 0
			}
		}
	}

	return blocks
}

// tryParse attempts to decode the current candidate element. On success
// the matched prefix is consumed and the scanner resets to the
// between-elements state.
func (s *Streamer) tryParse() (types.GeneratedBlock, bool) {
	candidate := s.buf[s.elemStart:s.pos]

	var blk types.GeneratedBlock
	if err := json.Unmarshal(candidate, &blk); err != nil {
		return types.GeneratedBlock{}, false
	}
	if err := blk.Validate(); err != nil {
		return types.GeneratedBlock{}, false
	}

	s.elemStart = -1
	s.depth = 0
	s.discardExamined()
	return blk, true
}

// nextNonSpace returns the first non-whitespace byte at or after
// offset, or false when the buffer runs out before one appears.
func (s *Streamer) nextNonSpace(offset int) (byte, bool) {
	for i := offset; i < len(s.buf); i++ {
		switch s.buf[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return s.buf[i], true
		}
	}
	return 0, false
}

// discardExamined drops consumed bytes from the front of the buffer.
// Only legal while no element is in progress.
func (s *Streamer) discardExamined() {
	if s.pos == 0 {
		return
	}
	s.buf = s.buf[s.pos:]
	s.pos = 0
}

// ParseAll runs a complete response through a fresh Streamer in one
// shot. The orchestrator's fallback path and tests use it as the
// reference for the fragmentation-invariance property (R4.1).
func ParseAll(text string) []types.GeneratedBlock {
	s := New()
	s.Feed(text)
	return s.Flush()
}
