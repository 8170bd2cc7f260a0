package models

import "time"

// RhythmMetadata is the bag of locally-extracted structural style evidence for a post
// or draft: sentence length distribution, punctuation frequency, pronoun rates, etc.
// It carries zero LLM cost (GLOSSARY: "Rhythm metadata").
type RhythmMetadata struct {
	SentenceCount       int            `json:"sentence_count"`
	AvgSentenceLength   float64        `json:"avg_sentence_length"`
	WordCount           int            `json:"word_count"`
	AvgWordLength       float64        `json:"avg_word_length"`
	TypeTokenRatio      float64        `json:"type_token_ratio"`
	ContractionRate     float64        `json:"contraction_rate"`
	QuestionMarkRate    float64        `json:"question_mark_rate"`
	FirstPersonRate     float64        `json:"first_person_rate"`
	PunctuationFreq     map[string]int `json:"punctuation_freq,omitempty"`
	LinkDensity         float64        `json:"link_density"`
	MarketingJargonHits int            `json:"marketing_jargon_hits"`
}

// RawPost is an immutable scraped community post, persisted by the Collection
// Orchestrator (C3). RawText is immutable once collected.
type RawPost struct {
	ID             string         `json:"id"`
	CampaignID     string         `json:"campaign_id"`
	Owner          string         `json:"owner"`
	Subreddit      string         `json:"subreddit"`
	SourcePostID   string         `json:"source_post_id"`
	SourceURL      string         `json:"source_url"`
	Author         string         `json:"author"`
	AuthorKarma    int            `json:"author_karma"`
	Title          string         `json:"title"`
	RawText        string         `json:"raw_text"`
	CommentCount   int            `json:"comment_count"`
	UpvoteRatio    float64        `json:"upvote_ratio"`
	Archetype      Archetype      `json:"archetype"`
	SuccessScore   float64        `json:"success_score"`
	IsAIProcessed  bool           `json:"is_ai_processed"`
	RhythmMetadata RhythmMetadata `json:"rhythm_metadata"`
	SourceCreatedAt time.Time     `json:"source_created_at"`
	CollectedAt    time.Time      `json:"collected_at"`
}
