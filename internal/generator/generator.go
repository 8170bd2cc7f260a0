// Package generator implements the Generator (C8): the single-pass pipeline
// that turns a community profile and a requested archetype into a
// humanized, blacklist-checked GeneratedDraft.
package generator

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/contentforge/conditioncore/internal/blacklist"
	"github.com/contentforge/conditioncore/internal/domain/repository"
	"github.com/contentforge/conditioncore/internal/gating"
	"github.com/contentforge/conditioncore/internal/humanize"
	"github.com/contentforge/conditioncore/internal/inference"
	"github.com/contentforge/conditioncore/internal/patternengine"
	"github.com/contentforge/conditioncore/internal/promptbuilder"
	"github.com/contentforge/conditioncore/pkg/models"
)

const (
	fallbackISCScore       = 5.0
	fallbackTargetLength   = 15.0
	fallbackTargetFormality = 0.5
	exampleCount            = 3
	generateMaxTokens       = 900
	generateTemperature     = 0.9
)

// inferenceCaller is the narrow slice of *inference.Client the generator needs.
type inferenceCaller interface {
	Call(ctx context.Context, owner string, task inference.TaskType, systemPrompt, userPrompt string, maxTokens int, temperature float64, requestID string) (*inference.Result, error)
}

// ProgressFunc reports generation progress.
type ProgressFunc func(snapshot models.TaskSnapshot)

// Engine runs the C8 generation sequence.
type Engine struct {
	profiles  repository.CommunityProfileRepository
	posts     repository.RawPostRepository
	blacklist *blacklist.Store
	gate      *gating.Policy
	infer     inferenceCaller
	drafts    repository.DraftRepository
}

// New builds a generator Engine.
func New(profiles repository.CommunityProfileRepository, posts repository.RawPostRepository, bl *blacklist.Store, gate *gating.Policy, infer inferenceCaller, drafts repository.DraftRepository) *Engine {
	return &Engine{profiles: profiles, posts: posts, blacklist: bl, gate: gate, infer: infer, drafts: drafts}
}

// Generate runs the C8 sequence: load profile (or fallback), merge blacklist,
// gate the archetype, build the prompt, call C1, humanize, advisory-scan,
// tally blacklist violations, score rhythm/vulnerability, persist.
func (e *Engine) Generate(ctx context.Context, campaignID, owner, subreddit string, requested models.Archetype, userContext string, accountStatus models.AccountStatus, progress ProgressFunc) (*models.GeneratedDraft, error) {
	if !requested.Valid() {
		return nil, &models.ValidationError{Field: "requested_archetype", Message: "not in the closed archetype set: " + string(requested)}
	}

	report := func(step string) {
		if progress != nil {
			progress(models.TaskSnapshot{State: models.TaskStateProgress, CurrentStep: step, CurrentSubreddit: subreddit})
		}
	}

	report("load_profile")
	profile, err := e.profiles.GetBySubreddit(ctx, campaignID, subreddit)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		profile = nil
	}

	iscScore := fallbackISCScore
	targetSentenceLength := fallbackTargetLength
	targetFormality := fallbackTargetFormality
	if profile != nil {
		iscScore = profile.ISCScore
		targetSentenceLength = profile.AvgSentenceLength
		targetFormality = profile.FormalityLevel
	}

	report("load_blacklist")
	blacklistEntries, err := e.blacklist.LoadFor(ctx, subreddit, campaignID)
	if err != nil {
		return nil, err
	}
	blacklistEntries = mergeProfileForbiddenPatterns(blacklistEntries, profile)

	report("gate")
	decision, err := e.gate.Gate(accountStatus, iscScore, requested)
	if err != nil {
		return nil, err
	}

	report("build_prompt")
	examples := e.loadExamples(ctx, campaignID, subreddit)
	system, user := promptbuilder.Build(profile, examples, decision.AllowedArchetype, blacklistEntries, decision.Constraints, userContext)

	report("call_inference")
	result, err := e.infer.Call(ctx, owner, inference.TaskGenerateDraft, system, user, generateMaxTokens, generateTemperature, "")
	if err != nil {
		return nil, err
	}

	report("humanize")
	intensity := intensityFor(targetFormality)
	humanized := humanize.Humanize(result.Text, intensity)

	report("detect_ai_patterns")
	aiViolations := humanize.DetectAIPatterns(humanized)

	report("check_blacklist")
	blacklistViolations := countBlacklistViolations(humanized, blacklistEntries)

	report("score_rhythm")
	rhythm := patternengine.ComputeRhythmMetadata(humanized)
	vulnerabilityScore := patternengine.VulnerabilityScore(rhythm)
	rhythmMatchScore := patternengine.RhythmMatchScore(rhythm, targetSentenceLength, targetFormality)

	title, body := splitTitleBody(humanized)

	draft := &models.GeneratedDraft{
		CampaignID:          campaignID,
		Owner:               owner,
		Subreddit:           subreddit,
		Archetype:           decision.AllowedArchetype,
		Title:               title,
		Body:                body,
		VulnerabilityScore:  vulnerabilityScore,
		RhythmMatchScore:    rhythmMatchScore,
		AIPatternViolations: aiViolations,
		BlacklistViolations: blacklistViolations,
		ModelUsed:           result.ModelUsed,
		TokenCount:          result.TokenCount,
		TokenCost:           result.Cost,
		Status:              models.DraftStatusGenerated,
	}

	report("persist")
	if err := e.drafts.Create(ctx, draft); err != nil {
		return nil, err
	}

	if progress != nil {
		progress(models.TaskSnapshot{State: models.TaskStateSuccess, CurrentSubreddit: subreddit})
	}

	return draft, nil
}

// loadExamples pulls the top posts by success_score for few-shot imitation;
// absence (or error) just falls through to the Prompt Builder's generic
// fallback examples.
func (e *Engine) loadExamples(ctx context.Context, campaignID, subreddit string) []promptbuilder.Example {
	posts, err := e.posts.ListBySubreddit(ctx, campaignID, subreddit, exampleCount)
	if err != nil || len(posts) == 0 {
		return nil
	}

	examples := make([]promptbuilder.Example, 0, len(posts))
	for _, p := range posts {
		examples = append(examples, promptbuilder.Example{
			Title:     p.Title,
			Body:      p.RawText,
			Relevance: p.SuccessScore,
		})
	}
	return examples
}

// mergeProfileForbiddenPatterns folds a community profile's category-level
// forbidden_patterns bag into the blacklist entry list as synthetic,
// unpersisted entries so the Prompt Builder's "avoid" list reflects both
// explicitly mined patterns and category-level community noise.
func mergeProfileForbiddenPatterns(entries []*models.BlacklistEntry, profile *models.CommunityProfile) []*models.BlacklistEntry {
	if profile == nil || len(profile.ForbiddenPatterns) == 0 {
		return entries
	}

	merged := append([]*models.BlacklistEntry(nil), entries...)
	for category, hits := range profile.ForbiddenPatterns {
		if hits == 0 {
			continue
		}
		merged = append(merged, &models.BlacklistEntry{
			Subreddit:        profile.Subreddit,
			ForbiddenPattern: category,
			Category:         models.ForbiddenCategory(category),
			Confidence:       1.0,
			IsSystemDetected: true,
		})
	}
	return merged
}

func intensityFor(formalityLevel float64) humanize.Intensity {
	switch {
	case formalityLevel < 0.33:
		return humanize.Heavy
	case formalityLevel < 0.66:
		return humanize.Moderate
	default:
		return humanize.Light
	}
}

func countBlacklistViolations(body string, entries []*models.BlacklistEntry) int {
	lower := strings.ToLower(body)
	var count int
	for _, e := range entries {
		pattern := strings.ToLower(e.ForbiddenPattern)
		if pattern == "" {
			continue
		}
		if isRegexCategory(e.Category) {
			if re, err := regexp.Compile(pattern); err == nil {
				count += len(re.FindAllString(lower, -1))
				continue
			}
		}
		count += strings.Count(lower, pattern)
	}
	return count
}

// isRegexCategory reports whether a category's forbidden_pattern values are
// conventionally authored as regexes (Link patterns commonly are, e.g.
// `https?://\S+`) rather than literal substrings.
func isRegexCategory(category models.ForbiddenCategory) bool {
	return category == models.CategoryLink
}

// splitTitleBody separates a generated post's first line (title) from its
// remaining body when the model emits a title line; otherwise the whole text
// is treated as body with an empty title.
func splitTitleBody(text string) (title, body string) {
	trimmed := strings.TrimSpace(text)
	idx := strings.Index(trimmed, "\n")
	if idx < 0 {
		return "", trimmed
	}
	firstLine := strings.TrimSpace(trimmed[:idx])
	rest := strings.TrimSpace(trimmed[idx+1:])
	if len(firstLine) > 0 && len(firstLine) <= 120 && rest != "" {
		return firstLine, rest
	}
	return "", trimmed
}
