package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	pkgmodels "github.com/contentforge/conditioncore/pkg/models"
)

// CommunityProfileModel represents a per-(campaign,subreddit) behavioral
// fingerprint row. Uniqueness is enforced on (campaign_id, subreddit).
type CommunityProfileModel struct {
	bun.BaseModel `bun:"table:ccore_community_profiles,alias:cp"`

	ID                    uuid.UUID `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	CampaignID            uuid.UUID `bun:"campaign_id,notnull,type:uuid" json:"campaign_id" validate:"required"`
	Subreddit             string    `bun:"subreddit,notnull" json:"subreddit" validate:"required"`
	ISCScore              float64   `bun:"isc_score,notnull,default:0" json:"isc_score"`
	AvgSentenceLength     float64   `bun:"avg_sentence_length,notnull,default:0" json:"avg_sentence_length"`
	DominantTone          string    `bun:"dominant_tone" json:"dominant_tone,omitempty"`
	FormalityLevel        float64   `bun:"formality_level,notnull,default:0" json:"formality_level"`
	TopSuccessHooks       StringArray `bun:"top_success_hooks,type:text[]" json:"top_success_hooks"`
	ForbiddenPatterns     JSONBMap  `bun:"forbidden_patterns,type:jsonb,default:'{}'" json:"forbidden_patterns,omitempty"`
	ArchetypeDistribution JSONBMap  `bun:"archetype_distribution,type:jsonb,default:'{}'" json:"archetype_distribution,omitempty"`
	StyleMetrics          JSONBMap  `bun:"style_metrics,type:jsonb,default:'{}'" json:"style_metrics,omitempty"`
	StyleGuide            string    `bun:"style_guide" json:"style_guide,omitempty"`
	SampleSize            int       `bun:"sample_size,notnull,default:0" json:"sample_size"`
	LastAnalyzedAt        time.Time `bun:"last_analyzed_at,notnull,default:current_timestamp" json:"last_analyzed_at"`
}

// TableName returns the table name for CommunityProfileModel.
func (CommunityProfileModel) TableName() string {
	return "ccore_community_profiles"
}

// BeforeInsert sets defaults.
func (p *CommunityProfileModel) BeforeInsert(ctx interface{}) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ForbiddenPatterns == nil {
		p.ForbiddenPatterns = make(JSONBMap)
	}
	if p.ArchetypeDistribution == nil {
		p.ArchetypeDistribution = make(JSONBMap)
	}
	if p.StyleMetrics == nil {
		p.StyleMetrics = make(JSONBMap)
	}
	p.LastAnalyzedAt = time.Now()
	return nil
}

// BeforeUpdate refreshes the analysis timestamp.
func (p *CommunityProfileModel) BeforeUpdate(ctx interface{}) error {
	p.LastAnalyzedAt = time.Now()
	return nil
}

// ToCommunityProfileDomain converts a CommunityProfileModel to the domain type.
func ToCommunityProfileDomain(p *CommunityProfileModel) *pkgmodels.CommunityProfile {
	if p == nil {
		return nil
	}
	forbidden := make(map[string]int, len(p.ForbiddenPatterns))
	for k := range p.ForbiddenPatterns {
		forbidden[k] = p.ForbiddenPatterns.GetInt(k)
	}
	archetypes := make(map[string]int, len(p.ArchetypeDistribution))
	for k := range p.ArchetypeDistribution {
		archetypes[k] = p.ArchetypeDistribution.GetInt(k)
	}
	return &pkgmodels.CommunityProfile{
		ID:                    p.ID.String(),
		CampaignID:            p.CampaignID.String(),
		Subreddit:             p.Subreddit,
		ISCScore:              p.ISCScore,
		AvgSentenceLength:     p.AvgSentenceLength,
		DominantTone:          p.DominantTone,
		FormalityLevel:        p.FormalityLevel,
		TopSuccessHooks:       []string(p.TopSuccessHooks),
		ForbiddenPatterns:     forbidden,
		ArchetypeDistribution: archetypes,
		StyleMetrics:          styleMetricsFromJSONB(p.StyleMetrics),
		StyleGuide:            p.StyleGuide,
		SampleSize:            p.SampleSize,
		LastAnalyzedAt:        p.LastAnalyzedAt,
	}
}

// FromCommunityProfileDomain converts a domain CommunityProfile to a model.
func FromCommunityProfileDomain(p *pkgmodels.CommunityProfile) *CommunityProfileModel {
	if p == nil {
		return nil
	}
	var id, campaignID uuid.UUID
	if p.ID != "" {
		id = uuid.MustParse(p.ID)
	}
	if p.CampaignID != "" {
		campaignID = uuid.MustParse(p.CampaignID)
	}
	forbidden := make(JSONBMap, len(p.ForbiddenPatterns))
	for k, v := range p.ForbiddenPatterns {
		forbidden.Set(k, v)
	}
	archetypes := make(JSONBMap, len(p.ArchetypeDistribution))
	for k, v := range p.ArchetypeDistribution {
		archetypes.Set(k, v)
	}
	return &CommunityProfileModel{
		ID:                    id,
		CampaignID:            campaignID,
		Subreddit:             p.Subreddit,
		ISCScore:              p.ISCScore,
		AvgSentenceLength:     p.AvgSentenceLength,
		DominantTone:          p.DominantTone,
		FormalityLevel:        p.FormalityLevel,
		TopSuccessHooks:       StringArray(p.TopSuccessHooks),
		ForbiddenPatterns:     forbidden,
		ArchetypeDistribution: archetypes,
		StyleMetrics:          styleMetricsToJSONB(p.StyleMetrics),
		StyleGuide:            p.StyleGuide,
		SampleSize:            p.SampleSize,
		LastAnalyzedAt:        p.LastAnalyzedAt,
	}
}

func styleMetricsToJSONB(m pkgmodels.StyleMetrics) JSONBMap {
	j := make(JSONBMap)
	j.Set("avg_sentence_length", m.AvgSentenceLength)
	j.Set("formality_level", m.FormalityLevel)
	j.Set("type_token_ratio", m.TypeTokenRatio)
	j.Set("contraction_rate", m.ContractionRate)
	if len(m.ToneHits) > 0 {
		hits := make(map[string]interface{}, len(m.ToneHits))
		for k, v := range m.ToneHits {
			hits[k] = v
		}
		j.Set("tone_hits", hits)
	}
	if len(m.Vocabulary) > 0 {
		vocab := make([]interface{}, len(m.Vocabulary))
		for i, v := range m.Vocabulary {
			vocab[i] = v
		}
		j.Set("vocabulary", vocab)
	}
	return j
}

func styleMetricsFromJSONB(j JSONBMap) pkgmodels.StyleMetrics {
	m := pkgmodels.StyleMetrics{
		AvgSentenceLength: j.GetFloat("avg_sentence_length"),
		FormalityLevel:    j.GetFloat("formality_level"),
		TypeTokenRatio:    j.GetFloat("type_token_ratio"),
		ContractionRate:   j.GetFloat("contraction_rate"),
	}
	if hits := j.GetMap("tone_hits"); len(hits) > 0 {
		m.ToneHits = make(map[string]int, len(hits))
		for k := range hits {
			m.ToneHits[k] = hits.GetInt(k)
		}
	}
	if vocab, ok := j.Get("vocabulary"); ok {
		if list, ok := vocab.([]interface{}); ok {
			m.Vocabulary = make([]string, 0, len(list))
			for _, v := range list {
				if s, ok := v.(string); ok {
					m.Vocabulary = append(m.Vocabulary, s)
				}
			}
		}
	}
	return m
}
