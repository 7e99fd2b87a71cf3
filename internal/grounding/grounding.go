// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package grounding allocates globally non-overlapping citation index
// ranges to sections and detects the markers a section actually used.
// Implements: prd005-grounding (R1-R2);
//
//	docs/ARCHITECTURE § Citation Grounding.
package grounding

import (
	"regexp"
	"strconv"

	"github.com/pdiddy/page-engine/pkg/types"
)

// markerRe matches inline numeric citation markers like [1], [2], [12].
// Markers are passed through generated text verbatim; this package only
// reads them (R1.4).
var markerRe = regexp.MustCompile(`\[(\d+)\]`)

// HighestMarker returns the largest citation marker number present in
// text, or 0 when text carries no markers (R1.2).
func HighestMarker(text string) int {
	highest := 0
	for _, m := range markerRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest
}

// CitationsUsed reports how many citation indices a section consumed,
// given the blocks it emitted and the start index it was handed.
// A section that cites [start], [start+1], [start+2] used three; one
// that cites nothing, or only stale numbers below its range, used zero.
// Indices handed out are never reused across sections (R2.2).
func CitationsUsed(blocks []types.GeneratedBlock, startIndex int) int {
	highest := 0
	for i := range blocks {
		if h := HighestMarker(blocks[i].Text()); h > highest {
			highest = h
		}
	}
	used := highest - startIndex + 1
	if used < 0 {
		return 0
	}
	return used
}

// NextStartIndex returns the first citation index available to the
// following section: startIndex plus the indices consumed (R2.1).
// Section zero starts at 1.
func NextStartIndex(startIndex, used int) int {
	return startIndex + used
}
