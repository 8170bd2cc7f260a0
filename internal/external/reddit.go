package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultUserAgent = "conditioncore/1.0 (content conditioning core)"

// RedditScraper implements Scraper against Reddit's public JSON listing
// endpoints (old.reddit.com/r/<sub>/<sort>.json). No OAuth token is required
// for this read-only surface; Reddit only requires a descriptive User-Agent.
type RedditScraper struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
}

// NewRedditScraper builds a RedditScraper with the given HTTP timeout.
func NewRedditScraper(timeout time.Duration) *RedditScraper {
	return &RedditScraper{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  defaultUserAgent,
		baseURL:    "https://old.reddit.com",
	}
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID            string  `json:"id"`
				Title         string  `json:"title"`
				Selftext      string  `json:"selftext"`
				Permalink     string  `json:"permalink"`
				Author        string  `json:"author"`
				AuthorKarma   int     `json:"author_flair_text,omitempty"`
				Score         int     `json:"score"`
				UpvoteRatio   float64 `json:"upvote_ratio"`
				NumComments   int     `json:"num_comments"`
				CreatedUTC    float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Scrape fetches req.MaxPosts posts from req.Subreddit's req.Sort listing.
func (s *RedditScraper) Scrape(ctx context.Context, req ScrapeRequest) ([]ScrapedPost, error) {
	url := fmt.Sprintf("%s/r/%s/%s.json?limit=%d&t=%s", s.baseURL, req.Subreddit, req.Sort, req.MaxPosts, req.TimeFilter)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("scrape r/%s: %w", req.Subreddit, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape r/%s: unexpected status %d", req.Subreddit, resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode r/%s listing: %w", req.Subreddit, err)
	}

	posts := make([]ScrapedPost, 0, len(listing.Data.Children))
	for _, c := range listing.Data.Children {
		d := c.Data
		posts = append(posts, ScrapedPost{
			SourcePostID:    d.ID,
			Title:           d.Title,
			Body:            d.Selftext,
			URL:             s.baseURL + d.Permalink,
			Author:          d.Author,
			Score:           d.Score,
			UpvoteRatio:     d.UpvoteRatio,
			CommentCount:    d.NumComments,
			SourceCreatedAt: time.Unix(int64(d.CreatedUTC), 0),
		})
	}
	return posts, nil
}

// RedditVisibilityChecker implements VisibilityChecker by fetching a post's
// permalink twice: once with a cookie-less client (the anonymous leg) and
// once through a second client configured with session cookies for the
// posting account (the authenticated leg). Without a configured session
// cookie both legs degrade to the anonymous fetch, which is sufficient to
// detect removal but cannot distinguish an anon-only shadowban.
type RedditVisibilityChecker struct {
	anonClient *http.Client
	authClient *http.Client
	userAgent  string
}

// NewRedditVisibilityChecker builds a checker. authClient may be the same as
// the default client when no authenticated session is configured.
func NewRedditVisibilityChecker(timeout time.Duration, authClient *http.Client) *RedditVisibilityChecker {
	anon := &http.Client{Timeout: timeout}
	auth := authClient
	if auth == nil {
		auth = anon
	}
	return &RedditVisibilityChecker{anonClient: anon, authClient: auth, userAgent: defaultUserAgent}
}

func (c *RedditVisibilityChecker) fetch(ctx context.Context, client *http.Client, postURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(postURL, "/")+".json", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	return client.Do(req)
}

// Check performs the dual-perspective fetch (spec.md §4.11).
func (c *RedditVisibilityChecker) Check(ctx context.Context, postURL string) (CheckResult, error) {
	authResp, err := c.fetch(ctx, c.authClient, postURL)
	if err != nil {
		return CheckResult{}, fmt.Errorf("authenticated check: %w", err)
	}
	defer authResp.Body.Close()

	if authResp.StatusCode == http.StatusNotFound {
		var listing []redditListing
		moderatorRemoved := false
		if err := json.NewDecoder(authResp.Body).Decode(&listing); err == nil && len(listing) > 0 && len(listing[0].Data.Children) > 0 {
			moderatorRemoved = strings.Contains(listing[0].Data.Children[0].Data.Selftext, "[removed]")
		}
		return CheckResult{NotFoundAuthenticated: true, ModeratorRemoved: moderatorRemoved}, nil
	}
	if authResp.StatusCode != http.StatusOK {
		return CheckResult{}, fmt.Errorf("authenticated check: unexpected status %d", authResp.StatusCode)
	}

	var authListing []redditListing
	if err := json.NewDecoder(authResp.Body).Decode(&authListing); err != nil {
		return CheckResult{}, fmt.Errorf("decode authenticated check: %w", err)
	}
	if len(authListing) == 0 || len(authListing[0].Data.Children) == 0 {
		return CheckResult{NotFoundAuthenticated: true}, nil
	}
	post := authListing[0].Data.Children[0].Data

	anonResp, err := c.fetch(ctx, c.anonClient, postURL)
	if err != nil {
		return CheckResult{}, fmt.Errorf("anonymous check: %w", err)
	}
	defer anonResp.Body.Close()

	visibleAnonymous := false
	if anonResp.StatusCode == http.StatusOK {
		var anonListing []redditListing
		if err := json.NewDecoder(anonResp.Body).Decode(&anonListing); err == nil &&
			len(anonListing) > 0 && len(anonListing[0].Data.Children) > 0 {
			visibleAnonymous = true
		}
	}

	return CheckResult{
		VisibleAuthenticated: true,
		VisibleAnonymous:     visibleAnonymous,
		UpvoteRatio:          post.UpvoteRatio,
		CommentCount:         post.NumComments,
	}, nil
}
