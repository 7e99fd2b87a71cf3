// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGenerationEventJSON_ZeroIndicesSerialize(t *testing.T) {
	ev := GenerationEvent{
		Type:       EventBlock,
		RequestID:  "req-1",
		Block:      &GeneratedBlock{Type: BlockParagraph, Content: "first"},
		BlockIndex: 0,
	}

	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// The first block of the first section sits at index 0 twice over;
	// a consumer must still see both keys.
	for _, key := range []string{`"section_index":0`, `"block_index":0`} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("serialized event missing %s: %s", key, raw)
		}
	}
}
