package humanize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanize_NeverEmptyForNonEmptyInput(t *testing.T) {
	out := Humanize("Furthermore, this is a short note. Hope this helps!", Heavy)
	assert.NotEmpty(t, out)
}

func TestHumanize_StripsOpeningAndClosingBoilerplate(t *testing.T) {
	out := Humanize("Furthermore, the migration went smoothly. Hope this helps!", Light)
	assert.NotContains(t, out, "Furthermore,")
	assert.NotContains(t, out, "Hope this helps")
}

func TestHumanize_DeterministicForSameInput(t *testing.T) {
	text := "I tried this approach and honestly it worked better than expected for my team."
	a := Humanize(text, Heavy)
	b := Humanize(text, Heavy)
	assert.Equal(t, a, b)
}

func TestHumanize_PreservesParagraphCount(t *testing.T) {
	text := "First paragraph here.\n\nSecond paragraph here."
	out := Humanize(text, Moderate)
	assert.Equal(t, 2, len(splitOnDoubleNewline(out)))
}

func TestDetectAIPatterns_CountsKnownTells(t *testing.T) {
	text := "As an AI, I want to leverage synergies. So, additionally, we should circle back."
	count := DetectAIPatterns(text)
	assert.Greater(t, count, 0)
}

func TestDetectAIPatterns_ZeroForCleanText(t *testing.T) {
	count := DetectAIPatterns("went for a run today, knee still hurts a bit but whatever")
	assert.Equal(t, 0, count)
}

func splitOnDoubleNewline(s string) []string {
	out := []string{}
	start := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '\n' && s[i+1] == '\n' {
			out = append(out, s[start:i])
			start = i + 2
			i++
		}
	}
	out = append(out, s[start:])
	return out
}
