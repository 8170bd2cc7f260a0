package humanize

import "regexp"

// detectorSignals are the six structural tells the AI-Pattern Detector (C10)
// scans for. The count is advisory only — the Generator (C8) records it but
// never gates on it.
var detectorSignals = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(furthermore|moreover|additionally|consequently|nevertheless)\b`), // formal transitions
	regexp.MustCompile(`(?i)\bas an ai\b|\blanguage model\b|\bi don't have personal\b`),           // model-signature phrases
	regexp.MustCompile(`(?i)\bleverage\b|\bsynerg(y|ies)\b|\bcircle back\b|\bunlock\b|\bdelve\b`), // corporate buzzwords
	regexp.MustCompile(`(?m)^\s*[-*•]\s+.*$`),                                                     // bullet-list dominance (counted per line below)
	regexp.MustCompile(`(?i)^(hi there|hello everyone|greetings)[,!.]?\s`),                        // generic greetings
	regexp.MustCompile(`(?i)\bso,\s`),                                                             // "So, ..." discourse opener
}

// DetectAIPatterns scans text for the six structural tells and returns the
// total number of matches found across all of them. Bullet lines are counted
// individually since bullet-list dominance is a frequency signal, not a
// single-match one.
func DetectAIPatterns(text string) int {
	count := 0
	for i, re := range detectorSignals {
		matches := re.FindAllString(text, -1)
		if i == 3 { // bullet-list dominance only counts when more than 3 bullets
			if len(matches) > 3 {
				count += len(matches)
			}
			continue
		}
		count += len(matches)
	}
	return count
}
