// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grounding

import (
	"testing"

	"github.com/pdiddy/page-engine/pkg/types"
)

func TestHighestMarker(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"no markers", "plain prose without citations", 0},
		{"single marker", "revenue grew [1] last year", 1},
		{"several markers", "growth [2] and churn [5] and margin [3]", 5},
		{"double digits", "see [12] for details", 12},
		{"non-numeric brackets ignored", "a [note] and a [TODO-x]", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HighestMarker(tt.text); got != tt.want {
				t.Fatalf("HighestMarker(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestCitationsUsed(t *testing.T) {
	tests := []struct {
		name       string
		blocks     []types.GeneratedBlock
		startIndex int
		want       int
	}{
		{
			name:       "no blocks",
			blocks:     nil,
			startIndex: 1,
			want:       0,
		},
		{
			name: "uncited section",
			blocks: []types.GeneratedBlock{
				{Type: types.BlockParagraph, Content: "no citations here"},
			},
			startIndex: 4,
			want:       0,
		},
		{
			name: "full range used",
			blocks: []types.GeneratedBlock{
				{Type: types.BlockParagraph, Content: "first [1]"},
				{Type: types.BlockParagraph, Content: "up to [3]"},
			},
			startIndex: 1,
			want:       3,
		},
		{
			name: "later section range",
			blocks: []types.GeneratedBlock{
				{Type: types.BlockParagraph, Content: "cites [4] and [5]"},
			},
			startIndex: 4,
			want:       2,
		},
		{
			name: "stale low markers count as zero",
			blocks: []types.GeneratedBlock{
				{Type: types.BlockParagraph, Content: "stale [2]"},
			},
			startIndex: 6,
			want:       0,
		},
		{
			name: "markers inside list items",
			blocks: []types.GeneratedBlock{
				{Type: types.BlockBulletedList, Items: []string{"point [7]", "point [8]"}},
			},
			startIndex: 7,
			want:       2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CitationsUsed(tt.blocks, tt.startIndex); got != tt.want {
				t.Fatalf("CitationsUsed(start=%d) = %d, want %d", tt.startIndex, got, tt.want)
			}
		})
	}
}

// TestStartIndicesNeverOverlap checks the allocation invariant across a
// run of adjacent sections: section k+1's range begins at or after
// section k's range plus what k consumed.
func TestStartIndicesNeverOverlap(t *testing.T) {
	sections := [][]types.GeneratedBlock{
		{{Type: types.BlockParagraph, Content: "uses [1] and [2]"}},
		{{Type: types.BlockParagraph, Content: "nothing cited"}},
		{{Type: types.BlockParagraph, Content: "uses [3]"}},
	}

	start := 1
	var starts []int
	for _, blocks := range sections {
		starts = append(starts, start)
		start = NextStartIndex(start, CitationsUsed(blocks, start))
	}

	wantStarts := []int{1, 3, 3}
	for i := range starts {
		if starts[i] != wantStarts[i] {
			t.Fatalf("section %d start = %d, want %d", i, starts[i], wantStarts[i])
		}
	}
	if start != 4 {
		t.Fatalf("final next start = %d, want 4", start)
	}
}
