// Package patternengine implements the Pattern Engine (C4): computes
// per-subreddit CommunityProfiles (community sensitivity index, dominant
// tone, success hooks, forbidden-pattern bag) from a campaign's raw posts.
package patternengine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/contentforge/conditioncore/internal/domain/repository"
	"github.com/contentforge/conditioncore/internal/inference"
	"github.com/contentforge/conditioncore/pkg/models"
)

const (
	// postsPerSubredditLimit bounds how many posts feed one profile
	// computation; campaigns accumulate indefinitely but the signal a
	// profile needs saturates well before this.
	postsPerSubredditLimit = 500

	styleGuideMaxTokens  = 400
	styleGuideTemp       = 0.4
	topSuccessHookCount  = 5
)

var forbiddenCategoryLexicon = map[models.ForbiddenCategory][]string{
	models.CategoryPromotional:    {"check out my", "link in bio", "dm me", "exclusive offer", "use code"},
	models.CategorySelfReferential: {"as someone who built", "my startup", "my company", "my product"},
	models.CategoryLink:            {"http://", "https://", "www."},
	models.CategoryLowEffort:       {"nice post", "great job", "+1", "this"},
	models.CategorySpam:            {"limited time", "act now", "don't miss out"},
	models.CategoryOffTopic:        {"unrelated but", "off topic but", "random question"},
}

// inferenceCaller is the narrow slice of *inference.Client the engine needs,
// kept as an interface so tests can fake the style_guide call.
type inferenceCaller interface {
	Call(ctx context.Context, owner string, task inference.TaskType, systemPrompt, userPrompt string, maxTokens int, temperature float64, requestID string) (*inference.Result, error)
}

// ProgressFunc reports incremental analyze progress; see pkg/models.TaskSnapshot.
type ProgressFunc func(snapshot models.TaskSnapshot)

// Result is analyze's return contract.
type Result struct {
	ProfilesCreated int
	Warnings        []Warning
}

// Warning is one subreddit's reason for not getting a profile this run.
type Warning struct {
	Subreddit string `json:"subreddit"`
	Reason    string `json:"reason"`
}

// Engine computes CommunityProfiles from persisted raw posts.
type Engine struct {
	campaigns repository.CampaignRepository
	posts     repository.RawPostRepository
	profiles  repository.CommunityProfileRepository
	infer     inferenceCaller
}

// New builds an Engine.
func New(campaigns repository.CampaignRepository, posts repository.RawPostRepository, profiles repository.CommunityProfileRepository, infer inferenceCaller) *Engine {
	return &Engine{campaigns: campaigns, posts: posts, profiles: profiles, infer: infer}
}

// Analyze implements the C4 contract: for each of the campaign's target
// subreddits with at least MinProfileSampleSize raw posts, recompute and
// upsert a CommunityProfile from scratch; subreddits below the threshold
// yield a warning and no profile.
func (e *Engine) Analyze(ctx context.Context, campaignID string, force bool, progress ProgressFunc) (*Result, error) {
	campaign, err := e.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	total := len(campaign.TargetSubreddits)

	for i, subreddit := range campaign.TargetSubreddits {
		if progress != nil {
			progress(models.TaskSnapshot{
				State:            models.TaskStateProgress,
				CurrentStep:      "analyze_subreddit",
				TotalSteps:       total,
				Current:          i + 1,
				Total:            total,
				CurrentSubreddit: subreddit,
			})
		}

		if !force {
			if existing, err := e.profiles.GetBySubreddit(ctx, campaignID, subreddit); err == nil && existing != nil {
				// An existing profile does not skip the subreddit: with or
				// without force, every run recomputes the profile, and only an
				// insufficient sample size skips it.
				_ = existing
			} else if err != nil && !errors.Is(err, models.ErrNotFound) {
				return nil, err
			}
		}

		posts, err := e.posts.ListBySubreddit(ctx, campaignID, subreddit, postsPerSubredditLimit)
		if err != nil {
			return nil, err
		}

		if len(posts) < models.MinProfileSampleSize {
			result.Warnings = append(result.Warnings, Warning{Subreddit: subreddit, Reason: "insufficient_data"})
			continue
		}

		profile, err := e.buildProfile(ctx, campaign.Owner, campaignID, subreddit, posts)
		if err != nil {
			return nil, err
		}

		if err := e.upsertWithResilience(ctx, profile); err != nil {
			return nil, err
		}

		result.ProfilesCreated++
	}

	if progress != nil {
		state := models.TaskStateSuccess
		var errMsg string
		if result.ProfilesCreated == 0 {
			state = models.TaskStateFailure
			errMsg = "no_profiles_created"
		}
		warnings := make([]string, len(result.Warnings))
		for i, w := range result.Warnings {
			warnings[i] = fmt.Sprintf("%s:%s", w.Subreddit, w.Reason)
		}
		progress(models.TaskSnapshot{State: state, Warnings: warnings, Error: errMsg})
	}

	return result, nil
}

func (e *Engine) buildProfile(ctx context.Context, owner, campaignID, subreddit string, posts []*models.RawPost) (*models.CommunityProfile, error) {
	type scoredPost struct {
		post  *models.RawPost
		score float64
	}

	scored := make([]scoredPost, len(posts))
	archetypeDist := map[string]int{}
	forbiddenPatterns := map[string]int{}

	var (
		sumSentenceLen   float64
		sumFormality     float64
		sumTTR           float64
		sumContraction   float64
		sumUpvoteRatio   float64
		sumJargonPenalty float64
		forbiddenHits    int
		toneHits         = map[string]int{}
		punctuation      = map[string]int{}
		vocabSeen        = map[string]bool{}
	)

	for i, p := range posts {
		rhythm := p.RhythmMetadata
		if rhythm.WordCount == 0 {
			rhythm = ComputeRhythmMetadata(p.RawText)
		}

		score := computeSuccessScore(successScoreInputs{rhythm: rhythm, upvoteRatio: p.UpvoteRatio, commentCount: p.CommentCount})
		scored[i] = scoredPost{post: p, score: score}

		if p.Archetype != models.ArchetypeUnclassified && p.Archetype.Valid() {
			archetypeDist[string(p.Archetype)]++
		}

		sumSentenceLen += rhythm.AvgSentenceLength
		sumTTR += rhythm.TypeTokenRatio
		sumContraction += rhythm.ContractionRate
		sumUpvoteRatio += p.UpvoteRatio
		sumJargonPenalty += clamp01(float64(rhythm.MarketingJargonHits) / 5.0)
		sumFormality += formalityLevel(rhythm)

		for mark, n := range rhythm.PunctuationFreq {
			punctuation[mark] += n
		}

		tone := classifyTone(p.RawText)
		toneHits[tone]++

		for word := range tokenizeWordSet(p.RawText) {
			vocabSeen[word] = true
		}

		// A post is "low-scoring" for forbidden-pattern mining when its
		// success_score is below 4 on the 0-10 scale.
		if score < 4 {
			for category, hits := range matchForbiddenCategories(p.RawText) {
				forbiddenPatterns[string(category)] += hits
				forbiddenHits += hits
			}
		}
	}

	n := float64(len(posts))
	avgSentenceLen := sumSentenceLen / n
	formality := clamp01(sumFormality / n)
	avgTTR := sumTTR / n
	avgContraction := sumContraction / n
	avgUpvoteRatio := sumUpvoteRatio / n
	avgJargonPenalty := sumJargonPenalty / n
	forbiddenHitRate := float64(forbiddenHits) / n

	isc := computeISC(forbiddenHitRate, avgJargonPenalty, avgUpvoteRatio)
	dominantTone := dominantToneFromHits(toneHits)

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	hooks := make([]string, 0, topSuccessHookCount)
	for i := 0; i < len(scored) && i < topSuccessHookCount; i++ {
		hooks = append(hooks, firstSentences(scored[i].post.RawText, 2))
	}

	vocab := make([]string, 0, len(vocabSeen))
	for w := range vocabSeen {
		vocab = append(vocab, w)
	}
	sort.Strings(vocab)
	if len(vocab) > 50 {
		vocab = vocab[:50]
	}

	profile := &models.CommunityProfile{
		CampaignID:            campaignID,
		Subreddit:             subreddit,
		ISCScore:              isc,
		AvgSentenceLength:     avgSentenceLen,
		DominantTone:          dominantTone,
		FormalityLevel:        formality,
		TopSuccessHooks:       hooks,
		ForbiddenPatterns:     forbiddenPatterns,
		ArchetypeDistribution: archetypeDist,
		StyleMetrics: models.StyleMetrics{
			AvgSentenceLength: avgSentenceLen,
			FormalityLevel:    formality,
			TypeTokenRatio:    avgTTR,
			ContractionRate:   avgContraction,
			ToneHits:          toneHits,
			Vocabulary:        vocab,
		},
		SampleSize: len(posts),
	}

	styleGuide, err := e.requestStyleGuide(ctx, owner, subreddit, profile, punctuation)
	if err != nil {
		// Budget exhaustion is explicitly skippable per spec.md §4.4; any
		// other inference failure is also non-fatal to profile creation.
		profile.StyleGuide = ""
	} else {
		profile.StyleGuide = styleGuide
	}

	return profile, nil
}

func (e *Engine) requestStyleGuide(ctx context.Context, owner, subreddit string, profile *models.CommunityProfile, punctuation map[string]int) (string, error) {
	if e.infer == nil {
		return "", errors.New("no inference client configured")
	}

	dominantMark := dominantPunctuation(punctuation)

	system := "You summarize a Reddit community's writing style from structural evidence, in three short labeled lines: Voice, Vocabulary, Formatting."
	user := fmt.Sprintf(
		"Subreddit: r/%s\nDominant tone: %s\nFormality (0=casual,1=formal): %.2f\nAvg sentence length: %.1f words\nMost frequent punctuation: %s\nTop vocabulary: %s",
		subreddit, profile.DominantTone, profile.FormalityLevel, profile.AvgSentenceLength, dominantMark, strings.Join(limitSlice(profile.StyleMetrics.Vocabulary, 15), ", "),
	)

	res, err := e.infer.Call(ctx, owner, inference.TaskStyleGuide, system, user, styleGuideMaxTokens, styleGuideTemp, "")
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// upsertWithResilience strips optional fields and retries once if the store
// rejects the write for an unrecognized column, per spec.md §4.4.
func (e *Engine) upsertWithResilience(ctx context.Context, profile *models.CommunityProfile) error {
	err := e.profiles.Upsert(ctx, profile)
	if err == nil {
		return nil
	}

	var unknownCol *models.UnknownColumnError
	if !errors.As(err, &unknownCol) {
		return err
	}

	stripped := *profile
	stripped.StyleMetrics = models.StyleMetrics{}
	stripped.StyleGuide = ""
	return e.profiles.Upsert(ctx, &stripped)
}

func formalityLevel(r models.RhythmMetadata) float64 {
	return clamp01(0.4*r.TypeTokenRatio + 0.3*clamp01(r.AvgWordLength/8) + 0.3*(1-clamp01(r.ContractionRate*5)))
}

func computeISC(forbiddenHitRate, avgJargonPenalty, avgUpvoteRatio float64) float64 {
	raw := 1 + forbiddenHitRate*4.5 + avgJargonPenalty*2.7 + (1-clamp01(avgUpvoteRatio))*1.8
	if raw < 1 {
		raw = 1
	}
	if raw > 10 {
		raw = 10
	}
	return raw
}

func dominantToneFromHits(hits map[string]int) string {
	best := "neutral"
	bestCount := 0
	for _, tone := range []string{"casual", "critical", "formal", "supportive", "technical"} {
		if hits[tone] > bestCount {
			best = tone
			bestCount = hits[tone]
		}
	}
	return best
}

func matchForbiddenCategories(text string) map[models.ForbiddenCategory]int {
	return MatchForbiddenCategories(text)
}

// MatchForbiddenCategories runs the C4 forbidden-pattern lexicon scan over
// text, returning a hit count per category. Exported so the Audit Engine
// (C12) can run the identical scan over a draft body (spec.md §4.12).
func MatchForbiddenCategories(text string) map[models.ForbiddenCategory]int {
	lower := strings.ToLower(text)
	hits := map[models.ForbiddenCategory]int{}
	for category, phrases := range forbiddenCategoryLexicon {
		for _, phrase := range phrases {
			if strings.Contains(lower, phrase) {
				hits[category]++
			}
		}
	}
	return hits
}

// ForbiddenLexiconPhrases returns the category's source phrase list, used by
// C12 to name which phrase a forbidden-pattern candidate came from.
func ForbiddenLexiconPhrases(category models.ForbiddenCategory) []string {
	return forbiddenCategoryLexicon[category]
}

func firstSentences(text string, n int) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return ""
	}
	if n > len(sentences) {
		n = len(sentences)
	}
	return strings.Join(sentences[:n], ". ") + "."
}

func tokenizeWordSet(text string) map[string]bool {
	words := tokenizeWords(text)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) > 3 {
			set[w] = true
		}
	}
	return set
}

func limitSlice(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
