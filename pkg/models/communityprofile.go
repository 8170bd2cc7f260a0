package models

import "time"

// MinProfileSampleSize is the minimum number of raw posts a subreddit needs before a
// CommunityProfile is considered valid (spec.md §3).
const MinProfileSampleSize = 10

// ISCTier buckets isc_score into the four named sensitivity tiers (GLOSSARY: ISC).
type ISCTier string

const (
	ISCTierLow       ISCTier = "Low"
	ISCTierModerate  ISCTier = "Moderate"
	ISCTierHigh      ISCTier = "High"
	ISCTierVeryHigh  ISCTier = "VeryHigh"
)

// ISCTierFor returns the tier label for a given isc_score, per spec.md §4.4:
// <4 Low, <6.5 Moderate, <8.5 High, else Very High.
func ISCTierFor(isc float64) ISCTier {
	switch {
	case isc < 4:
		return ISCTierLow
	case isc < 6.5:
		return ISCTierModerate
	case isc < 8.5:
		return ISCTierHigh
	default:
		return ISCTierVeryHigh
	}
}

// StyleMetrics is the structural extraction backing a CommunityProfile's style
// narrative: aggregated rhythm evidence the style_guide LLM call and the Prompt
// Builder both draw on.
type StyleMetrics struct {
	AvgSentenceLength float64            `json:"avg_sentence_length"`
	FormalityLevel    float64            `json:"formality_level"`
	TypeTokenRatio    float64            `json:"type_token_ratio"`
	ContractionRate   float64            `json:"contraction_rate"`
	ToneHits          map[string]int     `json:"tone_hits,omitempty"`
	Vocabulary        []string           `json:"vocabulary,omitempty"`
}

// CommunityProfile is the per-(campaign,subreddit) behavioral fingerprint computed by
// the Pattern Engine (C4). One row per (CampaignID, Subreddit).
type CommunityProfile struct {
	ID                    string         `json:"id"`
	CampaignID            string         `json:"campaign_id"`
	Subreddit             string         `json:"subreddit"`
	ISCScore              float64        `json:"isc_score"`
	AvgSentenceLength     float64        `json:"avg_sentence_length"`
	DominantTone          string         `json:"dominant_tone"`
	FormalityLevel        float64        `json:"formality_level"`
	TopSuccessHooks       []string       `json:"top_success_hooks"`
	ForbiddenPatterns     map[string]int `json:"forbidden_patterns"`
	ArchetypeDistribution map[string]int `json:"archetype_distribution"`
	StyleMetrics          StyleMetrics   `json:"style_metrics"`
	StyleGuide            string         `json:"style_guide"`
	SampleSize            int            `json:"sample_size"`
	LastAnalyzedAt        time.Time      `json:"last_analyzed_at"`
}

// Valid reports whether the profile meets the minimum sample size invariant.
func (p *CommunityProfile) Valid() bool {
	return p.SampleSize >= MinProfileSampleSize
}

// Tier returns the named sensitivity tier for this profile's ISC score.
func (p *CommunityProfile) Tier() ISCTier {
	return ISCTierFor(p.ISCScore)
}
