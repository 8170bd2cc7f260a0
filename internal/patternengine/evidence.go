package patternengine

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// runJQ evaluates a jq filter against an arbitrary JSON-shaped evidence blob.
// The Pattern Engine's aggregated style evidence (punctuation frequency bags,
// tone hit counts) doesn't have a fixed struct shape across subreddits, so a
// jq filter is cheaper than hand-writing a walker per query.
func runJQ(filter string, data any) (any, error) {
	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("parse jq filter %q: %w", filter, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile jq filter %q: %w", filter, err)
	}

	iter := code.Run(data)
	v, ok := iter.Next()
	if !ok {
		return nil, fmt.Errorf("jq filter %q produced no output", filter)
	}
	if err, ok := v.(error); ok {
		return nil, fmt.Errorf("jq filter %q execution error: %w", filter, err)
	}
	return v, nil
}

// dominantPunctuation returns the most frequent punctuation mark across an
// aggregated frequency bag, used in the style-evidence summary handed to the
// style_guide LLM call.
func dominantPunctuation(freq map[string]int) string {
	if len(freq) == 0 {
		return ""
	}

	raw, err := json.Marshal(map[string]any{"punctuation_freq": freq})
	if err != nil {
		return ""
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return ""
	}

	v, err := runJQ(`.punctuation_freq | to_entries | max_by(.value) | .key`, data)
	if err != nil {
		return ""
	}
	key, _ := v.(string)
	return key
}
