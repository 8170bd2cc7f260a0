// Package qualityfilter implements the Regex Quality Filter (C2): a pure,
// deterministic, network-free scorer that rejects noise and assigns a
// relevance_score in [0,10] used by the Collection Orchestrator (C3) to pick
// the top slice of scraped posts worth an LLM classification call.
package qualityfilter

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ScrapedPost is the subset of the external scraper's post record the filter
// needs. It predates RawPost persistence — a post only becomes a RawPost
// after surviving this filter and, for the sampled top slice, archetype
// classification.
type ScrapedPost struct {
	SourcePostID string
	Title        string
	Body         string
	Author       string
	AuthorKarma  int
	Score        int
	UpvoteRatio  float64
	CommentCount int
}

// Scored pairs a surviving post with its computed relevance score.
type Scored struct {
	Post           ScrapedPost
	RelevanceScore float64
}

var (
	linkOnlyPattern    = regexp.MustCompile(`^(?:\s*(?:https?://\S+|www\.\S+)\s*)+$`)
	botSignaturePattern = regexp.MustCompile(`(?i)i\s+am\s+a\s+bot|this\s+action\s+was\s+performed\s+automatically|\^\^beep\s+\^\^boop`)
	firstPersonPattern  = regexp.MustCompile(`(?i)\b(i|i'm|i've|i'll|my|me|myself)\b`)
	numberMetricPattern = regexp.MustCompile(`\b\d+(\.\d+)?\s*(%|percent|x|lbs?|kg|hours?|days?|weeks?|months?|years?|\$)\b`)
	emotionalLexicon    = []string{
		"amazing", "terrible", "excited", "frustrated", "thrilled", "devastated",
		"love", "hate", "scared", "anxious", "grateful", "furious", "thankful",
	}
	removedAuthors = map[string]bool{"[deleted]": true, "[removed]": true, "": true}
)

const (
	hardRejectMinBodyLen = 50
	qualityFloorLen      = 200
	maxScore             = 10.0
	keywordCapDelta      = 4.0
)

// Filter scores posts against keywords and returns only the survivors,
// highest relevance_score first within ties on original order preserved by a
// stable sort. It performs no I/O and is fully deterministic.
func Filter(posts []ScrapedPost, keywords []string) []Scored {
	survivors := make([]ScrapedPost, 0, len(posts))
	for _, p := range posts {
		if hardReject(p) {
			continue
		}
		survivors = append(survivors, p)
	}

	scores := make([]float64, len(survivors))
	for i, p := range survivors {
		scores[i] = baseScore(p, keywords)
	}

	applyUpvoteTertileBonus(survivors, scores)

	out := make([]Scored, len(survivors))
	for i, p := range survivors {
		s := scores[i]
		if s > maxScore {
			s = maxScore
		}
		out[i] = Scored{Post: p, RelevanceScore: s}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})

	return out
}

func hardReject(p ScrapedPost) bool {
	if len(strings.TrimSpace(p.Body)) < hardRejectMinBodyLen {
		return true
	}
	if removedAuthors[p.Author] {
		return true
	}
	if linkOnlyPattern.MatchString(strings.TrimSpace(p.Body)) {
		return true
	}
	if isLinkOnlyMarkup(p.Body) {
		return true
	}
	if botSignaturePattern.MatchString(p.Body) {
		return true
	}
	return false
}

// isLinkOnlyMarkup handles scraper records whose body arrives as rendered
// HTML (anchor-heavy comment bodies): strip every <a> tag's text and see if
// anything but whitespace is left.
func isLinkOnlyMarkup(body string) bool {
	if !strings.Contains(body, "<a") && !strings.Contains(body, "<A") {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return false
	}
	doc.Find("a").Remove()
	return strings.TrimSpace(doc.Text()) == ""
}

func baseScore(p ScrapedPost, keywords []string) float64 {
	var score float64

	score += keywordDelta(p, keywords)

	if firstPersonPattern.MatchString(p.Body) {
		score++
	}
	if strings.Contains(p.Body, "?") {
		score++
	}
	if containsEmotionalLexicon(p.Body) {
		score++
	}
	if numberMetricPattern.MatchString(p.Body) {
		score++
	}
	if len(p.Body) >= qualityFloorLen {
		score++
	}

	return score
}

func keywordDelta(p ScrapedPost, keywords []string) float64 {
	body := strings.ToLower(p.Body + " " + p.Title)
	var distinct int
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(body, strings.ToLower(kw)) {
			distinct++
		}
	}
	delta := float64(distinct) * 2
	if delta > keywordCapDelta {
		delta = keywordCapDelta
	}
	return delta
}

func containsEmotionalLexicon(body string) bool {
	lower := strings.ToLower(body)
	for _, word := range emotionalLexicon {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// applyUpvoteTertileBonus gives +1 to posts whose upvote_ratio * log(1+score)
// falls in the top tertile of the batch, matching spec.md §4.2's batch-relative
// signal. Mutates scores in place.
func applyUpvoteTertileBonus(posts []ScrapedPost, scores []float64) {
	if len(posts) == 0 {
		return
	}

	weights := make([]float64, len(posts))
	for i, p := range posts {
		weights[i] = p.UpvoteRatio * math.Log(1+float64(p.Score))
	}

	sorted := append([]float64(nil), weights...)
	sort.Float64s(sorted)

	cutoffIdx := (len(sorted) * 2) / 3
	if cutoffIdx >= len(sorted) {
		cutoffIdx = len(sorted) - 1
	}
	threshold := sorted[cutoffIdx]

	for i, w := range weights {
		if w >= threshold {
			scores[i]++
		}
	}
}
