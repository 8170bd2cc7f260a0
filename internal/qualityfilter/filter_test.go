package qualityfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_HardRejectsShortBody(t *testing.T) {
	posts := []ScrapedPost{{SourcePostID: "1", Body: "too short"}}
	out := Filter(posts, nil)
	assert.Empty(t, out)
}

func TestFilter_HardRejectsRemovedAuthor(t *testing.T) {
	posts := []ScrapedPost{{
		SourcePostID: "1",
		Author:       "[deleted]",
		Body:         strRepeat("word ", 20),
	}}
	out := Filter(posts, nil)
	assert.Empty(t, out)
}

func TestFilter_HardRejectsLinkOnlyBody(t *testing.T) {
	posts := []ScrapedPost{{
		SourcePostID: "1",
		Author:       "alice",
		Body:         "https://example.com/a https://example.com/b",
	}}
	out := Filter(posts, nil)
	assert.Empty(t, out)
}

func TestFilter_HardRejectsBotSignature(t *testing.T) {
	posts := []ScrapedPost{{
		SourcePostID: "1",
		Author:       "AutoModerator",
		Body:         "I am a bot, and this action was performed automatically. " + strRepeat("x", 60),
	}}
	out := Filter(posts, nil)
	assert.Empty(t, out)
}

func TestFilter_ScoresKeywordMatchesCappedAtFour(t *testing.T) {
	posts := []ScrapedPost{{
		SourcePostID: "1",
		Author:       "alice",
		Body:         "I tried switching to the new workflow tool and the automation pipeline saved me time, honestly a huge productivity win for my small team.",
	}}
	out := Filter(posts, []string{"workflow", "automation", "pipeline", "productivity", "team"})
	if assert.Len(t, out, 1) {
		assert.LessOrEqual(t, out[0].RelevanceScore, 10.0)
		assert.Greater(t, out[0].RelevanceScore, 0.0)
	}
	assert.Equal(t, keywordCapDelta, keywordDelta(posts[0], []string{"workflow", "automation", "pipeline", "productivity", "team"}))
}

func TestFilter_DeterministicAcrossRuns(t *testing.T) {
	posts := []ScrapedPost{
		{SourcePostID: "1", Author: "alice", Body: strRepeat("I really love this workflow? ", 10), UpvoteRatio: 0.9, Score: 120},
		{SourcePostID: "2", Author: "bob", Body: strRepeat("Decent tool, nothing special. ", 10), UpvoteRatio: 0.5, Score: 5},
	}
	keywords := []string{"workflow"}

	first := Filter(append([]ScrapedPost(nil), posts...), keywords)
	second := Filter(append([]ScrapedPost(nil), posts...), keywords)

	assert.Equal(t, first, second)
}

func TestFilter_PassesBodyOver200CharsSignal(t *testing.T) {
	posts := []ScrapedPost{{
		SourcePostID: "1",
		Author:       "alice",
		Body:         strRepeat("a", 250),
	}}
	out := Filter(posts, nil)
	if assert.Len(t, out, 1) {
		assert.GreaterOrEqual(t, out[0].RelevanceScore, 1.0)
	}
}

func strRepeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
