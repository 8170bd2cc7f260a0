package patternengine

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/contentforge/conditioncore/pkg/models"
)

var (
	sentenceBoundary = regexp.MustCompile(`[.!?]+(\s+|$)`)
	wordPattern      = regexp.MustCompile(`[\p{L}\p{N}']+`)
	urlPattern       = regexp.MustCompile(`https?://\S+|www\.\S+`)
	firstPersonWords = map[string]bool{
		"i": true, "i'm": true, "i've": true, "i'll": true, "i'd": true,
		"me": true, "my": true, "mine": true, "myself": true,
	}
	contractionPattern = regexp.MustCompile(`[\p{L}]+'[\p{L}]+`)

	marketingJargon = []string{
		"game-changer", "game changer", "revolutionize", "revolutionary",
		"synergy", "disrupt", "cutting-edge", "cutting edge", "unlock your potential",
		"limited time", "act now", "don't miss out", "check out my", "dm me",
		"link in bio", "exclusive offer", "level up", "10x", "world-class",
	}

	supportiveLexicon = []string{"you got this", "proud of you", "here for you", "sending support", "keep going", "rooting for"}
	criticalLexicon   = []string{"disagree", "wrong", "flawed", "overrated", "misleading", "doesn't hold up"}
	technicalLexicon  = []string{"benchmark", "latency", "throughput", "algorithm", "architecture", "implementation"}
	casualLexicon     = []string{"lol", "lmao", "tbh", "ngl", "honestly", "gonna", "kinda"}
	formalLexicon     = []string{"furthermore", "consequently", "therefore", "pursuant", "henceforth", "notwithstanding"}
)

// normalize applies Unicode NFC normalization so downstream regex matching
// over user-submitted text isn't thrown off by combining-character variants.
func normalize(text string) string {
	return norm.NFC.String(text)
}

func splitSentences(text string) []string {
	text = normalize(strings.TrimSpace(text))
	if text == "" {
		return nil
	}
	raw := sentenceBoundary.Split(text, -1)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func tokenizeWords(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(normalize(text)), -1)
}

// ComputeRhythmMetadata extracts the local structural evidence bag for a
// single block of text (a raw post body or a generated draft body). It costs
// zero LLM calls and is reused by the Generator (C8) against humanized drafts
// with the exact same formulas applied to raw posts here.
func ComputeRhythmMetadata(text string) models.RhythmMetadata {
	sentences := splitSentences(text)
	words := tokenizeWords(text)

	m := models.RhythmMetadata{
		SentenceCount: len(sentences),
		WordCount:     len(words),
	}

	if len(sentences) > 0 {
		totalWords := 0
		for _, s := range sentences {
			totalWords += len(tokenizeWords(s))
		}
		m.AvgSentenceLength = float64(totalWords) / float64(len(sentences))
	}

	if len(words) > 0 {
		var totalLen int
		unique := make(map[string]bool, len(words))
		var firstPerson int
		for _, w := range words {
			totalLen += len(w)
			unique[w] = true
			if firstPersonWords[w] {
				firstPerson++
			}
		}
		m.AvgWordLength = float64(totalLen) / float64(len(words))
		m.TypeTokenRatio = float64(len(unique)) / float64(len(words))
		m.FirstPersonRate = float64(firstPerson) / float64(len(words))
	}

	if len(sentences) > 0 {
		m.QuestionMarkRate = float64(strings.Count(text, "?")) / float64(len(sentences))
	}

	contractions := contractionPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) > 0 {
		m.ContractionRate = float64(len(contractions)) / float64(len(words))
	}

	m.PunctuationFreq = punctuationFreq(text)

	if len(words) > 0 {
		m.LinkDensity = float64(len(urlPattern.FindAllString(text, -1))) / float64(len(words))
	}

	lower := strings.ToLower(text)
	for _, j := range marketingJargon {
		m.MarketingJargonHits += strings.Count(lower, j)
	}

	return m
}

func punctuationFreq(text string) map[string]int {
	freq := map[string]int{}
	for _, r := range text {
		switch r {
		case ';', ',', '—', '-', ':', '!', '?':
			freq[string(r)]++
		}
	}
	return freq
}

// successScoreInputs bundles the per-post evidence the success_score formula
// needs beyond the rhythm bag itself.
type successScoreInputs struct {
	rhythm       models.RhythmMetadata
	upvoteRatio  float64
	commentCount int
}

// computeSuccessScore implements spec.md §4.4's per-post success_score
// formula. The six named sub-terms (rhythm_adherence, vulnerability_weight,
// formality_match, thread_depth_weight, marketing_jargon_penalty,
// link_density_penalty) aren't individually defined by the contract; this
// derives each from the locally-extracted rhythm bag, the only evidence
// available before an LLM call.
func computeSuccessScore(in successScoreInputs) float64 {
	rhythmAdherence := clamp01(1 - absFloat(in.rhythm.AvgSentenceLength-15)/15)
	vulnerabilityWeight := clamp01(0.6*in.rhythm.FirstPersonRate*10 + 0.4*in.rhythm.QuestionMarkRate)
	formalityMatch := clamp01(1 - absFloat(in.rhythm.ContractionRate-0.1)*5)
	threadDepthWeight := clamp01(float64(in.commentCount) / 50.0)
	marketingJargonPenalty := clamp01(float64(in.rhythm.MarketingJargonHits) / 5.0)
	linkDensityPenalty := clamp01(in.rhythm.LinkDensity * 20)

	raw := 0.35*rhythmAdherence +
		0.25*vulnerabilityWeight +
		0.15*formalityMatch +
		0.10*threadDepthWeight -
		0.10*marketingJargonPenalty -
		0.05*linkDensityPenalty

	score := raw * 10
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return score
}

// ComputeSuccessScore is the exported entry point the Generator (C8) calls
// against a humanized draft body, using the same formula C4 applies to raw
// posts (spec.md §4.8 step 9).
func ComputeSuccessScore(rhythm models.RhythmMetadata, upvoteRatio float64, commentCount int) float64 {
	return computeSuccessScore(successScoreInputs{rhythm: rhythm, upvoteRatio: upvoteRatio, commentCount: commentCount})
}

// VulnerabilityScore isolates the success_score formula's vulnerability_weight
// term as its own [0,1] metric, for the Generator (C8) to record against a
// humanized draft (spec.md §4.8 step 9) using the identical evidence C4 uses
// on raw posts.
func VulnerabilityScore(rhythm models.RhythmMetadata) float64 {
	return clamp01(0.6*rhythm.FirstPersonRate*10 + 0.4*rhythm.QuestionMarkRate)
}

// RhythmMatchScore compares a draft's rhythm bag against the community's
// target sentence length and formality (or a generic baseline when no
// profile exists), returning 1 for a perfect match and decaying toward 0 as
// the draft diverges.
func RhythmMatchScore(rhythm models.RhythmMetadata, targetSentenceLength, targetFormality float64) float64 {
	sentenceDelta := absFloat(rhythm.AvgSentenceLength-targetSentenceLength) / maxFloat(targetSentenceLength, 1)
	formalityDelta := absFloat(formalityLevel(rhythm) - targetFormality)
	return clamp01(1 - 0.6*clamp01(sentenceDelta) - 0.4*formalityDelta)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// classifyTone runs the dominant_tone rule-based classifier: lexicon hit
// counts per named tone, tie-broken by most-frequent hit count then
// alphabetically among ties.
func classifyTone(text string) string {
	lower := strings.ToLower(text)
	hits := map[string]int{
		"supportive": lexiconHits(lower, supportiveLexicon),
		"critical":   lexiconHits(lower, criticalLexicon),
		"technical":  lexiconHits(lower, technicalLexicon),
		"casual":     lexiconHits(lower, casualLexicon),
		"formal":     lexiconHits(lower, formalLexicon),
	}

	best := ""
	bestCount := -1
	for _, tone := range []string{"casual", "critical", "formal", "supportive", "technical"} {
		count := hits[tone]
		if count > bestCount {
			best = tone
			bestCount = count
		}
	}
	if bestCount <= 0 {
		return "neutral"
	}
	return best
}

func lexiconHits(lower string, lexicon []string) int {
	var n int
	for _, phrase := range lexicon {
		n += strings.Count(lower, phrase)
	}
	return n
}
