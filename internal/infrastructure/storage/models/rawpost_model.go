package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	pkgmodels "github.com/contentforge/conditioncore/pkg/models"
)

// RawPostModel represents a scraped post row in the database. Uniqueness is
// enforced on (campaign_id, source_post_id) via a database constraint; writes
// go through an upsert that ignores duplicates (spec.md §5).
type RawPostModel struct {
	bun.BaseModel `bun:"table:ccore_raw_posts,alias:rp"`

	ID              uuid.UUID `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	CampaignID      uuid.UUID `bun:"campaign_id,notnull,type:uuid" json:"campaign_id" validate:"required"`
	Owner           string    `bun:"owner,notnull" json:"owner" validate:"required"`
	Subreddit       string    `bun:"subreddit,notnull" json:"subreddit" validate:"required"`
	SourcePostID    string    `bun:"source_post_id,notnull" json:"source_post_id" validate:"required"`
	SourceURL       string    `bun:"source_url" json:"source_url,omitempty"`
	Author          string    `bun:"author" json:"author,omitempty"`
	AuthorKarma     int       `bun:"author_karma,notnull,default:0" json:"author_karma"`
	Title           string    `bun:"title" json:"title,omitempty"`
	RawText         string    `bun:"raw_text,notnull" json:"raw_text"`
	CommentCount    int       `bun:"comment_count,notnull,default:0" json:"comment_count"`
	UpvoteRatio     float64   `bun:"upvote_ratio,notnull,default:0" json:"upvote_ratio"`
	Archetype       string    `bun:"archetype,notnull,default:'Unclassified'" json:"archetype"`
	SuccessScore    float64   `bun:"success_score,notnull,default:0" json:"success_score"`
	IsAIProcessed   bool      `bun:"is_ai_processed,notnull,default:false" json:"is_ai_processed"`
	RhythmMetadata  JSONBMap  `bun:"rhythm_metadata,type:jsonb,default:'{}'" json:"rhythm_metadata,omitempty"`
	SourceCreatedAt time.Time `bun:"source_created_at" json:"source_created_at"`
	CollectedAt     time.Time `bun:"collected_at,notnull,default:current_timestamp" json:"collected_at"`
}

// TableName returns the table name for RawPostModel.
func (RawPostModel) TableName() string {
	return "ccore_raw_posts"
}

// BeforeInsert sets defaults. RawText is immutable once collected — there is
// deliberately no BeforeUpdate hook that touches it.
func (r *RawPostModel) BeforeInsert(ctx interface{}) error {
	r.CollectedAt = time.Now()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Archetype == "" {
		r.Archetype = string(pkgmodels.ArchetypeUnclassified)
	}
	if r.RhythmMetadata == nil {
		r.RhythmMetadata = make(JSONBMap)
	}
	return nil
}

// ToRawPostDomain converts a RawPostModel to the domain RawPost.
func ToRawPostDomain(r *RawPostModel) *pkgmodels.RawPost {
	if r == nil {
		return nil
	}
	return &pkgmodels.RawPost{
		ID:              r.ID.String(),
		CampaignID:      r.CampaignID.String(),
		Owner:           r.Owner,
		Subreddit:       r.Subreddit,
		SourcePostID:    r.SourcePostID,
		SourceURL:       r.SourceURL,
		Author:          r.Author,
		AuthorKarma:     r.AuthorKarma,
		Title:           r.Title,
		RawText:         r.RawText,
		CommentCount:    r.CommentCount,
		UpvoteRatio:     r.UpvoteRatio,
		Archetype:       pkgmodels.Archetype(r.Archetype),
		SuccessScore:    r.SuccessScore,
		IsAIProcessed:   r.IsAIProcessed,
		RhythmMetadata:  rhythmFromJSONB(r.RhythmMetadata),
		SourceCreatedAt: r.SourceCreatedAt,
		CollectedAt:     r.CollectedAt,
	}
}

// FromRawPostDomain converts a domain RawPost to a RawPostModel.
func FromRawPostDomain(r *pkgmodels.RawPost) *RawPostModel {
	if r == nil {
		return nil
	}
	var id, campaignID uuid.UUID
	if r.ID != "" {
		id = uuid.MustParse(r.ID)
	}
	if r.CampaignID != "" {
		campaignID = uuid.MustParse(r.CampaignID)
	}
	return &RawPostModel{
		ID:              id,
		CampaignID:      campaignID,
		Owner:           r.Owner,
		Subreddit:       r.Subreddit,
		SourcePostID:    r.SourcePostID,
		SourceURL:       r.SourceURL,
		Author:          r.Author,
		AuthorKarma:     r.AuthorKarma,
		Title:           r.Title,
		RawText:         r.RawText,
		CommentCount:    r.CommentCount,
		UpvoteRatio:     r.UpvoteRatio,
		Archetype:       string(r.Archetype),
		SuccessScore:    r.SuccessScore,
		IsAIProcessed:   r.IsAIProcessed,
		RhythmMetadata:  rhythmToJSONB(r.RhythmMetadata),
		SourceCreatedAt: r.SourceCreatedAt,
		CollectedAt:     r.CollectedAt,
	}
}

func rhythmToJSONB(m pkgmodels.RhythmMetadata) JSONBMap {
	j := make(JSONBMap)
	j.Set("sentence_count", m.SentenceCount)
	j.Set("avg_sentence_length", m.AvgSentenceLength)
	j.Set("word_count", m.WordCount)
	j.Set("avg_word_length", m.AvgWordLength)
	j.Set("type_token_ratio", m.TypeTokenRatio)
	j.Set("contraction_rate", m.ContractionRate)
	j.Set("question_mark_rate", m.QuestionMarkRate)
	j.Set("first_person_rate", m.FirstPersonRate)
	j.Set("link_density", m.LinkDensity)
	j.Set("marketing_jargon_hits", m.MarketingJargonHits)
	if len(m.PunctuationFreq) > 0 {
		freq := make(map[string]interface{}, len(m.PunctuationFreq))
		for k, v := range m.PunctuationFreq {
			freq[k] = v
		}
		j.Set("punctuation_freq", freq)
	}
	return j
}

func rhythmFromJSONB(j JSONBMap) pkgmodels.RhythmMetadata {
	m := pkgmodels.RhythmMetadata{
		SentenceCount:       j.GetInt("sentence_count"),
		AvgSentenceLength:   j.GetFloat("avg_sentence_length"),
		WordCount:           j.GetInt("word_count"),
		AvgWordLength:       j.GetFloat("avg_word_length"),
		TypeTokenRatio:      j.GetFloat("type_token_ratio"),
		ContractionRate:     j.GetFloat("contraction_rate"),
		QuestionMarkRate:    j.GetFloat("question_mark_rate"),
		FirstPersonRate:     j.GetFloat("first_person_rate"),
		LinkDensity:         j.GetFloat("link_density"),
		MarketingJargonHits: j.GetInt("marketing_jargon_hits"),
	}
	if freq := j.GetMap("punctuation_freq"); len(freq) > 0 {
		m.PunctuationFreq = make(map[string]int, len(freq))
		for k, v := range freq {
			m.PunctuationFreq[k] = freq.GetInt(k)
			_ = v
		}
	}
	return m
}
