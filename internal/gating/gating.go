package gating

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/contentforge/conditioncore/pkg/models"
)

// Decision is the output of gate: the archetype a draft is actually allowed
// to be generated as, and the constraint names the Prompt Builder (C6) must
// honor.
type Decision struct {
	AllowedArchetype models.Archetype
	Constraints      []string
}

// env is the expr-lang evaluation environment for one gating rule.
type env struct {
	AccountStatus     string
	ISCScore          float64
	RequestedArchetype string
}

// rule pairs a boolean expr-lang condition with the decision to apply when it
// matches. Rules are evaluated in order; the first match wins.
type rule struct {
	name      string
	condition string
	decide    func(requested models.Archetype) Decision
}

// Policy evaluates the ISC Gating Policy (spec.md §4.7): a pure function of
// (account_status, isc_score, requested_archetype).
type Policy struct {
	cache *conditionCache
	rules []rule
}

// NewPolicy builds the policy with its fixed rule table, each rule's
// condition pre-compiled into the LRU program cache.
func NewPolicy() *Policy {
	p := &Policy{
		cache: newConditionCache(16),
		rules: []rule{
			{
				name:      "new_account_forced_feedback",
				condition: `AccountStatus == "New"`,
				decide: func(models.Archetype) Decision {
					return Decision{
						AllowedArchetype: models.ArchetypeFeedback,
						Constraints:      []string{"no_links", "no_pitch", "max_vulnerability=0.9"},
					}
				},
			},
			{
				name:      "high_isc_blocks_pitch_archetypes",
				condition: `ISCScore > 7.5 && (RequestedArchetype == "ProblemSolution" || RequestedArchetype == "Journey")`,
				decide: func(models.Archetype) Decision {
					return Decision{
						AllowedArchetype: models.ArchetypeFeedback,
						Constraints:      []string{"zero_links", "max_vulnerability"},
					}
				},
			},
			{
				name:      "high_isc_feedback_tightened",
				condition: `ISCScore > 7.5 && RequestedArchetype == "Feedback"`,
				decide: func(models.Archetype) Decision {
					return Decision{
						AllowedArchetype: models.ArchetypeFeedback,
						Constraints:      []string{"zero_links"},
					}
				},
			},
		},
	}
	// Pre-warm the cache so the first real evaluation never pays compile cost.
	for _, r := range p.rules {
		if _, err := p.cache.compileAndCache(r.condition, env{}); err != nil {
			panic(fmt.Sprintf("gating: rule %q failed to compile: %v", r.name, err))
		}
	}
	return p
}

// Gate runs the rule table against the given inputs and falls through to the
// archetype-keyed default decisions when no rule matches (spec.md §4.7 table
// rows 4-6). isc_score == 7.5 is intentionally not "high" (strict >).
func (p *Policy) Gate(accountStatus models.AccountStatus, iscScore float64, requested models.Archetype) (Decision, error) {
	e := env{
		AccountStatus:      string(accountStatus),
		ISCScore:           iscScore,
		RequestedArchetype: string(requested),
	}

	for _, r := range p.rules {
		program, err := p.cache.compileAndCache(r.condition, e)
		if err != nil {
			return Decision{}, fmt.Errorf("gating: compile rule %q: %w", r.name, err)
		}
		out, err := expr.Run(program, e)
		if err != nil {
			return Decision{}, fmt.Errorf("gating: run rule %q: %w", r.name, err)
		}
		if matched, ok := out.(bool); ok && matched {
			return r.decide(requested), nil
		}
	}

	return defaultDecision(requested), nil
}

func defaultDecision(requested models.Archetype) Decision {
	switch requested {
	case models.ArchetypeProblemSolution:
		return Decision{
			AllowedArchetype: models.ArchetypeProblemSolution,
			Constraints:      []string{"pain_to_solution_ratio=0.9", "product_mention_only_last_10pct", "in_media_res_opening"},
		}
	case models.ArchetypeJourney:
		return Decision{
			AllowedArchetype: models.ArchetypeJourney,
			Constraints:      []string{"require_numeric_milestones"},
		}
	default:
		return Decision{
			AllowedArchetype: models.ArchetypeFeedback,
			Constraints:      []string{"invert_authority", "controlled_imperfection"},
		}
	}
}
