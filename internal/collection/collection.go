// Package collection implements the Collection Orchestrator (C3): scrapes
// each of a campaign's target subreddits, filters noise, samples a slice for
// LLM archetype classification, and persists survivors as RawPosts.
package collection

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/contentforge/conditioncore/internal/domain/repository"
	"github.com/contentforge/conditioncore/internal/external"
	"github.com/contentforge/conditioncore/internal/inference"
	"github.com/contentforge/conditioncore/internal/qualityfilter"
	"github.com/contentforge/conditioncore/pkg/models"
)

var subredditNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{2,30}$`)

var defaultRetryDelays = []time.Duration{5 * time.Second, 15 * time.Second}

const lockTTL = 15 * time.Minute

// inferenceCaller is the narrow slice of *inference.Client the orchestrator needs.
type inferenceCaller interface {
	Call(ctx context.Context, owner string, task inference.TaskType, systemPrompt, userPrompt string, maxTokens int, temperature float64, requestID string) (*inference.Result, error)
}

// Locker abstracts the Redis SETNX collection lock so at most one run is
// active per campaign at a time.
type Locker interface {
	AcquireCollectionLock(ctx context.Context, campaignID string, ttl time.Duration) (string, bool, error)
	ReleaseCollectionLock(ctx context.Context, campaignID, token string) error
}

// ProgressFunc reports collection progress; see pkg/models.TaskSnapshot.
type ProgressFunc func(snapshot models.TaskSnapshot)

// Status is the final outcome of one collection run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailure Status = "failure"
)

// SubredditError records a caught per-subreddit failure.
type SubredditError struct {
	Subreddit string `json:"subreddit"`
	Message   string `json:"message"`
}

// Result is run_collection's return contract.
type Result struct {
	Status     Status
	Scraped    int
	Filtered   int
	Classified int
	Errors     []SubredditError
}

// Engine runs the C3 orchestration sequence.
type Engine struct {
	scraper     external.Scraper
	posts       repository.RawPostRepository
	campaigns   repository.CampaignRepository
	infer       inferenceCaller
	lock        Locker
	retryDelays []time.Duration
	sleep       func(time.Duration)
}

// New builds a collection Engine with the spec's default 5s/15s retry delays.
func New(scraper external.Scraper, posts repository.RawPostRepository, campaigns repository.CampaignRepository, infer inferenceCaller, lock Locker) *Engine {
	return &Engine{
		scraper:     scraper,
		posts:       posts,
		campaigns:   campaigns,
		infer:       infer,
		lock:        lock,
		retryDelays: defaultRetryDelays,
		sleep:       time.Sleep,
	}
}

// WithRetryDelays overrides the default scrape retry backoff, primarily for tests.
func (e *Engine) WithRetryDelays(delays []time.Duration, sleep func(time.Duration)) *Engine {
	e.retryDelays = delays
	if sleep != nil {
		e.sleep = sleep
	}
	return e
}

// RunCollection implements the C3 contract: validates every target
// subreddit name before any scraping begins, then scrapes/filters/classifies
// each subreddit independently, tolerating per-subreddit failures.
func (e *Engine) RunCollection(ctx context.Context, campaignID string, progress ProgressFunc) (*Result, error) {
	campaign, err := e.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	for _, sub := range campaign.TargetSubreddits {
		if !subredditNamePattern.MatchString(sub) {
			return nil, &models.ValidationError{Field: "target_subreddits", Message: fmt.Sprintf("invalid subreddit name %q", sub)}
		}
	}

	token, acquired, err := e.lock.AcquireCollectionLock(ctx, campaignID, lockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, &models.CollectionInProgressError{CampaignID: campaignID}
	}
	defer func() { _ = e.lock.ReleaseCollectionLock(ctx, campaignID, token) }()

	result := &Result{}
	total := len(campaign.TargetSubreddits)

	for i, subreddit := range campaign.TargetSubreddits {
		if progress != nil {
			progress(models.TaskSnapshot{
				State:            models.TaskStateProgress,
				CurrentStep:      "start_subreddit",
				TotalSteps:       total,
				Current:          i + 1,
				Total:            total,
				CurrentSubreddit: subreddit,
			})
		}

		scraped, filtered, classified, err := e.collectSubreddit(ctx, campaign, subreddit, progress)
		result.Scraped += scraped
		result.Filtered += filtered
		result.Classified += classified
		if err != nil {
			result.Errors = append(result.Errors, SubredditError{Subreddit: subreddit, Message: err.Error()})
		}
	}

	switch {
	case result.Scraped == 0 && len(campaign.TargetSubreddits) > 0 && len(result.Errors) == len(campaign.TargetSubreddits):
		result.Status = StatusFailure
	case len(result.Errors) > 0:
		result.Status = StatusPartial
	default:
		result.Status = StatusSuccess
	}

	return result, nil
}

func (e *Engine) collectSubreddit(ctx context.Context, campaign *models.Campaign, subreddit string, progress ProgressFunc) (scraped, filtered, classified int, err error) {
	req := external.DefaultScrapeRequest(subreddit, campaign.Keywords)
	posts, err := e.scrapeWithRetry(ctx, req)
	if err != nil {
		return 0, 0, 0, &models.ScraperFailureError{Subreddit: subreddit, Err: err}
	}
	scraped = len(posts)

	if progress != nil {
		progress(models.TaskSnapshot{State: models.TaskStateProgress, CurrentStep: "scrape", CurrentSubreddit: subreddit, Scraped: scraped})
	}

	qfPosts := make([]qualityfilter.ScrapedPost, len(posts))
	for i, p := range posts {
		qfPosts[i] = qualityfilter.ScrapedPost{
			SourcePostID: p.SourcePostID,
			Title:        p.Title,
			Body:         p.Body,
			Author:       p.Author,
			AuthorKarma:  p.AuthorKarma,
			Score:        p.Score,
			UpvoteRatio:  p.UpvoteRatio,
			CommentCount: p.CommentCount,
		}
	}
	survivors := qualityfilter.Filter(qfPosts, campaign.Keywords)
	filtered = len(survivors)

	if progress != nil {
		progress(models.TaskSnapshot{State: models.TaskStateProgress, CurrentStep: "filter", CurrentSubreddit: subreddit, Scraped: scraped, Filtered: filtered})
	}

	sourceByID := make(map[string]external.ScrapedPost, len(posts))
	for _, p := range posts {
		sourceByID[p.SourcePostID] = p
	}

	sampleSize := topTenPercentCount(len(survivors))

	for i, sv := range survivors {
		archetype := models.ArchetypeUnclassified
		if i < sampleSize {
			archetype = e.classify(ctx, campaign.Owner, sv.Post)
			classified++
		}

		source := sourceByID[sv.Post.SourcePostID]
		post := &models.RawPost{
			CampaignID:      campaign.ID,
			Owner:           campaign.Owner,
			Subreddit:       subreddit,
			SourcePostID:    sv.Post.SourcePostID,
			SourceURL:       source.URL,
			Author:          sv.Post.Author,
			AuthorKarma:     sv.Post.AuthorKarma,
			Title:           sv.Post.Title,
			RawText:         sv.Post.Body,
			CommentCount:    sv.Post.CommentCount,
			UpvoteRatio:     sv.Post.UpvoteRatio,
			Archetype:       archetype,
			IsAIProcessed:   i < sampleSize,
			SourceCreatedAt: source.SourceCreatedAt,
		}
		if err := e.posts.Upsert(ctx, post); err != nil {
			return scraped, filtered, classified, err
		}
	}

	if progress != nil {
		progress(models.TaskSnapshot{State: models.TaskStateProgress, CurrentStep: "classify", CurrentSubreddit: subreddit, Scraped: scraped, Filtered: filtered, Classified: classified})
	}

	return scraped, filtered, classified, nil
}

// scrapeWithRetry attempts the scrape call, retrying on transport failure per
// the fixed 5s/15s backoff (spec.md §4.3): one initial call plus one retry per
// configured delay, so three calls in all with the default delays. This is
// deliberately a bespoke helper rather than the teacher's generic multiplier-based
// retry policy, since the contract names exact fixed delays, not a backoff
// curve.
func (e *Engine) scrapeWithRetry(ctx context.Context, req external.ScrapeRequest) ([]external.ScrapedPost, error) {
	var lastErr error
	attempts := len(e.retryDelays) + 1

	for attempt := 0; attempt < attempts; attempt++ {
		posts, err := e.scraper.Scrape(ctx, req)
		if err == nil {
			return posts, nil
		}
		lastErr = err

		if attempt < len(e.retryDelays) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			e.sleep(e.retryDelays[attempt])
		}
	}
	return nil, lastErr
}

func (e *Engine) classify(ctx context.Context, owner string, post qualityfilter.ScrapedPost) models.Archetype {
	system := "Classify the following Reddit post into exactly one of: Journey, ProblemSolution, Feedback. Respond with only the label."
	user := post.Title + "\n\n" + post.Body

	res, err := e.infer.Call(ctx, owner, inference.TaskClassifyArchetype, system, user, 16, 0.0, "")
	if err != nil {
		return models.ArchetypeUnclassified
	}

	candidate := models.Archetype(trimToLabel(res.Text))
	if !candidate.Valid() || candidate == models.ArchetypeUnclassified {
		return models.ArchetypeUnclassified
	}
	return candidate
}

func trimToLabel(text string) string {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' || text[i] == ' ' || text[i] == '.' {
			return text[:i]
		}
	}
	return text
}

// topTenPercentCount returns the number of top-ranked survivors to send for
// LLM classification: 10% of n, rounded up, minimum 1 when n >= 1.
func topTenPercentCount(n int) int {
	if n == 0 {
		return 0
	}
	count := int(math.Ceil(float64(n) * 0.10))
	if count < 1 {
		count = 1
	}
	return count
}
