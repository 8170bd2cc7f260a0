// Package promptbuilder implements the Prompt Builder (C6): composes the
// system/user message pair the Generator hands to the Inference Client,
// favoring imitation (real example posts) over meta-instruction.
package promptbuilder

import (
	"fmt"
	"strings"

	"github.com/contentforge/conditioncore/pkg/models"
)

// targetSystemChars is the nominal system-turn size; Build does not consult
// it and enforces only maxSystemChars.
const targetSystemChars = 1500

// maxSystemChars is the size past which Build drops the least-relevant
// example, one at a time, while more than one remains; a single example
// that is still over this size is kept whole.
const maxSystemChars = 2500

// Example is one real (or curated fallback) community post used as a
// few-shot imitation target.
type Example struct {
	Title      string
	Body       string
	Relevance  float64 // higher is more relevant; used to decide what to drop first
}

// genericExamples are curated, hand-written fallback posts used when no
// CommunityProfile exists yet for a subreddit.
var genericExamples = []Example{
	{
		Title:     "finally feel like I'm getting somewhere",
		Body:      "Six months ago I couldn't keep a consistent routine going for more than a week. Started tracking one small thing every day instead of trying to overhaul everything at once. Nothing dramatic, just small, boring consistency. It's working better than any of the big plans ever did.",
		Relevance: 0.5,
	},
	{
		Title:     "does anyone else struggle with this or is it just me",
		Body:      "Every time I think I've found a system that works, something throws it off within a week. Curious whether other people have actually solved this or if it's just a constant low-grade battle for everyone.",
		Relevance: 0.4,
	},
	{
		Title:     "tried a bunch of things, here's what actually helped",
		Body:      "Not going to pretend I have it all figured out, but a few things made a real difference: doing the hard thing first thing in the morning, writing down the actual number instead of guessing, and giving myself permission to have an off day without quitting entirely.",
		Relevance: 0.3,
	},
}

// Build composes the system/user message pair. profile may be nil (no
// community profile yet); examples should be real posts pulled from that
// subreddit when profile is non-nil, otherwise genericExamples is used.
func Build(profile *models.CommunityProfile, examples []Example, archetype models.Archetype, blacklistEntries []*models.BlacklistEntry, constraints []string, userContext string) (system, user string) {
	if profile == nil || len(examples) == 0 {
		examples = genericExamples
	}

	// Sort by relevance descending (highest first) so dropping from the tail
	// drops the least-relevant example, per spec.md §4.6.
	sorted := make([]Example, len(examples))
	copy(sorted, examples)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Relevance > sorted[j-1].Relevance; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if len(sorted) > 3 {
		sorted = sorted[:3]
	}

	system = buildSystem(profile, sorted)
	for len(system) > maxSystemChars && len(sorted) > 1 {
		sorted = sorted[:len(sorted)-1]
		system = buildSystem(profile, sorted)
	}

	user = buildUser(archetype, blacklistEntries, constraints, userContext)
	return system, user
}

func buildSystem(profile *models.CommunityProfile, examples []Example) string {
	var b strings.Builder

	b.WriteString("Here is how people actually write in this community. Study the voice, don't copy the content:\n\n")
	for i, ex := range examples {
		fmt.Fprintf(&b, "Example %d:\n", i+1)
		if ex.Title != "" {
			fmt.Fprintf(&b, "%s\n", ex.Title)
		}
		fmt.Fprintf(&b, "%s\n\n", ex.Body)
	}

	b.WriteString("Write the way the examples above write. Match their rhythm, their imperfection, their restraint. Don't sound like marketing copy and don't sound like an assistant.\n\n")

	tone, formality, style := "neutral", "moderately informal", "varied sentence length, occasional tangents"
	if profile != nil {
		if profile.DominantTone != "" {
			tone = profile.DominantTone
		}
		formality = formalityDescription(profile.FormalityLevel)
		if profile.StyleGuide != "" {
			style = profile.StyleGuide
		}
	}
	fmt.Fprintf(&b, "Tone: %s. Formality: %s. Style notes: %s.\n", tone, formality, style)

	return b.String()
}

func formalityDescription(level float64) string {
	switch {
	case level < 0.3:
		return "very casual, loose grammar is fine"
	case level < 0.6:
		return "conversational"
	default:
		return "measured and fairly formal"
	}
}

func buildUser(archetype models.Archetype, blacklistEntries []*models.BlacklistEntry, constraints []string, userContext string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a %s post.\n", archetypeDirective(archetype))
	if userContext != "" {
		fmt.Fprintf(&b, "Context: %s\n", userContext)
	}

	if len(blacklistEntries) > 0 {
		names := make([]string, 0, len(blacklistEntries))
		for _, e := range blacklistEntries {
			names = append(names, e.ForbiddenPattern)
		}
		fmt.Fprintf(&b, "Avoid: %s\n", strings.Join(names, ", "))
	}

	if len(constraints) > 0 {
		fmt.Fprintf(&b, "Constraints: %s\n", strings.Join(constraints, ", "))
	}

	return b.String()
}

func archetypeDirective(a models.Archetype) string {
	switch a {
	case models.ArchetypeJourney:
		return "first-person diary-style update with concrete numeric milestones"
	case models.ArchetypeProblemSolution:
		return "post that leads with the pain point and only mentions any product in the last portion of the text"
	default:
		return "post asking for honest feedback or critique, not advice-giving"
	}
}
