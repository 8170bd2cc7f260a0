package external

import "context"

// FakeScraper is an in-memory Scraper test double keyed by subreddit.
type FakeScraper struct {
	Posts map[string][]ScrapedPost
	Err   map[string]error
	Calls []ScrapeRequest
}

// NewFakeScraper builds an empty FakeScraper.
func NewFakeScraper() *FakeScraper {
	return &FakeScraper{Posts: map[string][]ScrapedPost{}, Err: map[string]error{}}
}

func (f *FakeScraper) Scrape(ctx context.Context, req ScrapeRequest) ([]ScrapedPost, error) {
	f.Calls = append(f.Calls, req)
	if err, ok := f.Err[req.Subreddit]; ok && err != nil {
		return nil, err
	}
	return f.Posts[req.Subreddit], nil
}

// FakeVisibilityChecker is an in-memory VisibilityChecker test double keyed
// by post URL.
type FakeVisibilityChecker struct {
	Results map[string]CheckResult
	Err     map[string]error
}

// NewFakeVisibilityChecker builds an empty FakeVisibilityChecker.
func NewFakeVisibilityChecker() *FakeVisibilityChecker {
	return &FakeVisibilityChecker{Results: map[string]CheckResult{}, Err: map[string]error{}}
}

func (f *FakeVisibilityChecker) Check(ctx context.Context, postURL string) (CheckResult, error) {
	if err, ok := f.Err[postURL]; ok && err != nil {
		return CheckResult{}, err
	}
	return f.Results[postURL], nil
}
