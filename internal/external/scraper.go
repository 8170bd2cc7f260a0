// Package external defines the boundary interfaces to collaborators outside
// this module's control: the community scraper and the dual-perspective
// post-visibility checker the Shadow Monitor (C11) depends on.
package external

import (
	"context"
	"time"
)

// ScrapeRequest is the input shape a scraper call needs (spec.md §6).
type ScrapeRequest struct {
	Subreddit  string
	Keywords   []string
	MaxPosts   int
	Sort       string // "hot", "new", "top"
	TimeFilter string // "day", "week", "month"
}

// DefaultScrapeRequest fills in the spec's documented defaults for any field
// the caller leaves zero.
func DefaultScrapeRequest(subreddit string, keywords []string) ScrapeRequest {
	return ScrapeRequest{
		Subreddit:  subreddit,
		Keywords:   keywords,
		MaxPosts:   100,
		Sort:       "hot",
		TimeFilter: "month",
	}
}

// ScrapedPost is the exact field set a scraper call returns per post
// (spec.md §6). SourceCreatedAt is the post's original creation time, not
// the time it was fetched.
type ScrapedPost struct {
	SourcePostID    string
	Title           string
	Body            string
	URL             string
	Author          string
	AuthorKarma     int
	Score           int
	UpvoteRatio     float64
	CommentCount    int
	SourceCreatedAt time.Time
}

// Scraper abstracts the community-scraping backend. Implementations may hit
// a public API, a scraping proxy, or a fixture in tests; the Collection
// Orchestrator (C3) only depends on this interface.
type Scraper interface {
	Scrape(ctx context.Context, req ScrapeRequest) ([]ScrapedPost, error)
}

// CheckResult is one dual-perspective visibility observation: whether the
// post is visible when fetched as the authenticated poster versus as an
// anonymous/logged-out viewer.
type CheckResult struct {
	VisibleAuthenticated bool
	VisibleAnonymous     bool
	// NotFoundAuthenticated is true when the authenticated fetch itself 404s
	// (both legs missing, as opposed to an authenticated-visible/anonymous-hidden split).
	NotFoundAuthenticated bool
	// ModeratorRemoved distinguishes a moderator-removal signature (e.g. a
	// "[removed]" placeholder body) from an ordinary 404 when both legs 404.
	ModeratorRemoved bool
	UpvoteRatio      float64
	CommentCount     int
}

// VisibilityChecker abstracts the dual-perspective HTTP check the Shadow
// Monitor (C11) runs against a submitted post's URL.
type VisibilityChecker interface {
	Check(ctx context.Context, postURL string) (CheckResult, error)
}
