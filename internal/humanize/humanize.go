// Package humanize implements the Humanizer (C9) deterministic text-rewrite
// pass and the AI-Pattern Detector (C10) advisory scan.
package humanize

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"regexp"
	"strings"
)

// Intensity controls how aggressively humanize rewrites a draft. The
// Generator (C8) picks it from a community's formality_level: casual
// communities get Heavy, formal ones Light.
type Intensity string

const (
	Light    Intensity = "light"
	Moderate Intensity = "moderate"
	Heavy    Intensity = "heavy"
)

var fillerWords = []string{"honestly", "tbh", "ngl", "like", "basically"}

var fillerProbability = map[Intensity]float64{
	Light:    0.05,
	Moderate: 0.15,
	Heavy:    0.25,
}

var openingBoilerplate = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^furthermore,\s*`),
	regexp.MustCompile(`(?i)^in conclusion,\s*`),
	regexp.MustCompile(`(?i)^moreover,\s*`),
}

var closingBoilerplate = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*hope this helps!?\s*$`),
	regexp.MustCompile(`(?i)\s*good luck!?\s*$`),
}

var (
	emojiClusterPattern = regexp.MustCompile(`[\x{1F300}-\x{1FAFF}\x{2600}-\x{27BF}]{1,}`)
	boldItalicPattern   = regexp.MustCompile(`\*{1,3}([^*]+)\*{1,3}`)
	enumeratedListItem  = regexp.MustCompile(`(?m)^\s*\d+\.\s+.*$`)
	sentenceSplit       = regexp.MustCompile(`(?:[.!?]+\s+)`)
)

var casualConnectors = map[string]string{
	"additionally":  "also",
	"consequently":  "so",
	"subsequently":  "then",
	"nevertheless":  "still",
}

// Humanize runs the deterministic rewrite pipeline over text. It never
// returns empty output for non-empty input and preserves paragraph count.
func Humanize(text string, intensity Intensity) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	paragraphs := strings.Split(text, "\n\n")
	seed := int64(hashSeed(text))
	rng := rand.New(rand.NewSource(seed))

	for i, p := range paragraphs {
		p = stripArtifacts(p)
		p = casualSubstitutions(p)
		p = injectFillers(p, intensity, rng)
		if intensity == Heavy {
			p = insertSelfCorrections(p, rng)
		}
		if intensity == Moderate || intensity == Heavy {
			p = lowercaseSentenceStarts(p, rng)
		}
		paragraphs[i] = p
	}

	out := strings.Join(paragraphs, "\n\n")
	out = removeTidyEnding(out)

	if strings.TrimSpace(out) == "" {
		return text
	}
	return out
}

func hashSeed(text string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return h.Sum64()
}

func stripArtifacts(p string) string {
	for _, re := range openingBoilerplate {
		p = re.ReplaceAllString(p, "")
	}
	for _, re := range closingBoilerplate {
		p = re.ReplaceAllString(p, "")
	}
	p = emojiClusterPattern.ReplaceAllString(p, "")
	p = boldItalicPattern.ReplaceAllString(p, "$1")

	if items := enumeratedListItem.FindAllString(p, -1); len(items) > 3 {
		lines := strings.Split(p, "\n")
		kept := make([]string, 0, len(lines))
		for _, line := range lines {
			if !enumeratedListItem.MatchString(line) {
				kept = append(kept, line)
			}
		}
		p = strings.Join(kept, "\n")
	}
	return p
}

func casualSubstitutions(p string) string {
	p = strings.ReplaceAll(p, ";", " —")
	for formal, casual := range casualConnectors {
		re := regexp.MustCompile(`(?i)\b` + formal + `\b`)
		p = re.ReplaceAllString(p, casual)
	}
	return p
}

func injectFillers(p string, intensity Intensity, rng *rand.Rand) string {
	prob := fillerProbability[intensity]
	if prob == 0 {
		return p
	}

	sentences := splitSentences(p)
	for i, s := range sentences {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if rng.Float64() < prob {
			filler := fillerWords[rng.Intn(len(fillerWords))]
			sentences[i] = fmt.Sprintf("%s, %s", filler, lowerFirst(strings.TrimSpace(s)))
		}
	}
	return strings.Join(sentences, " ")
}

func insertSelfCorrections(p string, rng *rand.Rand) string {
	sentences := splitSentences(p)
	if len(sentences) == 0 {
		return p
	}
	fragments := []string{"— wait actually …", "— or maybe …"}
	count := 1
	if len(sentences) > 4 {
		count = 2
	}
	for i := 0; i < count && i < len(sentences); i++ {
		idx := rng.Intn(len(sentences))
		sentences[idx] = strings.TrimRight(sentences[idx], " ") + " " + fragments[rng.Intn(len(fragments))]
	}
	return strings.Join(sentences, " ")
}

func lowercaseSentenceStarts(p string, rng *rand.Rand) string {
	sentences := splitSentences(p)
	for i, s := range sentences {
		trimmed := strings.TrimLeft(s, " ")
		if trimmed == "" {
			continue
		}
		if rng.Float64() < 0.30 {
			sentences[i] = strings.Replace(s, trimmed[:1], strings.ToLower(trimmed[:1]), 1)
		}
	}
	return strings.Join(sentences, " ")
}

var tidyEndingPattern = regexp.MustCompile(`(?i)[^.!?]*\b(to (sum|wrap) (up|it)|overall|in summary)\b[^.!?]*[.!?]\s*$`)

func removeTidyEnding(text string) string {
	return strings.TrimSpace(tidyEndingPattern.ReplaceAllString(text, ""))
}

func splitSentences(p string) []string {
	parts := sentenceSplit.Split(p, -1)
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{p}
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
