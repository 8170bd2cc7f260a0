// Package inference implements the Inference Client (C1): a task-typed model
// router with primary/fallback retry, cost accounting, and budget
// enforcement ahead of every outbound call.
package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/contentforge/conditioncore/internal/config"
	"github.com/contentforge/conditioncore/pkg/models"
)

// TaskType is the closed set of inference task kinds, each routed to its own
// primary/fallback model pair.
type TaskType string

const (
	TaskClassifyArchetype TaskType = "classify_archetype"
	TaskExtractPatterns   TaskType = "extract_patterns"
	TaskScorePost         TaskType = "score_post"
	TaskGenerateDraft     TaskType = "generate_draft"
	TaskStyleGuide        TaskType = "style_guide"
)

func (t TaskType) valid() bool {
	switch t {
	case TaskClassifyArchetype, TaskExtractPatterns, TaskScorePost, TaskGenerateDraft, TaskStyleGuide:
		return true
	default:
		return false
	}
}

// Message is one turn of a provider conversation.
type Message struct {
	Role    string // "system" or "user"
	Content string
}

// Result is the Inference Client's call contract output.
type Result struct {
	Text       string
	ModelUsed  string
	TokenCount int
	Cost       float64
}

// Provider abstracts one model-serving backend (OpenAI-style, Anthropic-style).
// Implementations must never concatenate a system prompt into the user turn —
// spec.md documents instruction-following degradation as the cause of that bug.
type Provider interface {
	Execute(ctx context.Context, model string, messages []Message, maxTokens int, temperature float64) (text string, tokenCount int, err error)
}

// UsageRecorder persists append-only cost ledger entries.
type UsageRecorder interface {
	Record(ctx context.Context, rec *models.UsageRecord) error
	SumCostSince(ctx context.Context, owner string, since time.Time) (float64, error)
}

// PlanLookup resolves an owner's current billing plan.
type PlanLookup interface {
	PlanFor(ctx context.Context, owner string) (*models.Plan, error)
}

// CostEstimator turns a model + token budget into a projected USD cost, kept
// pluggable since per-token pricing changes by provider/model.
type CostEstimator func(model string, maxTokens int) float64

// Client routes calls by TaskType, enforces the owner's budget, and records
// usage on success.
type Client struct {
	cfg       config.InferenceConfig
	providers map[string]Provider // keyed by provider family: "openai", "anthropic"
	usage     UsageRecorder
	plans     PlanLookup
	estimate  CostEstimator
	now       func() time.Time
}

// NewClient wires a Client against the given providers, keyed by the family
// name embedded in each ModelConfig's model string's provider prefix.
func NewClient(cfg config.InferenceConfig, providers map[string]Provider, usage UsageRecorder, plans PlanLookup, estimate CostEstimator) *Client {
	return &Client{
		cfg:       cfg,
		providers: providers,
		usage:     usage,
		plans:     plans,
		estimate:  estimate,
		now:       time.Now,
	}
}

// Call implements the Inference Client's contract: routes to the task's
// primary model, falls back once on failure, checks budget before any
// outbound call, and records usage on success.
func (c *Client) Call(ctx context.Context, owner string, task TaskType, systemPrompt, userPrompt string, maxTokens int, temperature float64, requestID string) (*Result, error) {
	if !task.valid() {
		return nil, &models.ValidationError{Field: "task_type", Message: "unknown task type: " + string(task)}
	}

	route, ok := c.cfg.Models[string(task)]
	if !ok {
		return nil, &models.ValidationError{Field: "task_type", Message: "no route configured for task type: " + string(task)}
	}

	if maxTokens <= 0 {
		maxTokens = route.DefaultMaxTokens
	}

	projected := c.estimate(route.PrimaryModel, maxTokens)
	if err := c.checkBudget(ctx, owner, projected); err != nil {
		return nil, err
	}

	messages := buildMessages(systemPrompt, userPrompt)

	text, tokenCount, primaryErr := c.dispatch(ctx, route.PrimaryModel, messages, maxTokens, temperature)
	modelUsed := route.PrimaryModel
	if primaryErr != nil {
		text, tokenCount, err := c.dispatch(ctx, route.FallbackModel, messages, maxTokens, temperature)
		if err != nil {
			return nil, &models.InferenceFailureError{TaskType: string(task), PrimaryErr: primaryErr, FallbackErr: err}
		}
		modelUsed = route.FallbackModel
		return c.finish(ctx, owner, task, modelUsed, text, tokenCount)
	}

	return c.finish(ctx, owner, task, modelUsed, text, tokenCount)
}

func (c *Client) finish(ctx context.Context, owner string, task TaskType, model, text string, tokenCount int) (*Result, error) {
	cost := c.estimate(model, tokenCount)

	rec := &models.UsageRecord{
		Owner:      owner,
		Action:     taskToUsageAction(task),
		TokenCount: tokenCount,
		Cost:       cost,
		OccurredAt: c.now(),
	}
	if err := c.usage.Record(ctx, rec); err != nil {
		return nil, &models.PersistenceFailureError{Operation: "record usage", Err: err}
	}

	return &Result{Text: text, ModelUsed: model, TokenCount: tokenCount, Cost: cost}, nil
}

func (c *Client) dispatch(ctx context.Context, model string, messages []Message, maxTokens int, temperature float64) (string, int, error) {
	provider, ok := c.providers[providerFamily(model)]
	if !ok {
		return "", 0, fmt.Errorf("no provider registered for model %q", model)
	}
	return provider.Execute(ctx, model, messages, maxTokens, temperature)
}

// checkBudget implements can_proceed(owner, plan, projected_cost): cap == 0
// unconditionally fails (covers expired plans), otherwise it sums usage
// across the current billing period and rejects anything that would push the
// owner over cap.
func (c *Client) checkBudget(ctx context.Context, owner string, projectedCost float64) error {
	plan, err := c.plans.PlanFor(ctx, owner)
	if err != nil {
		return &models.PersistenceFailureError{Operation: "load plan", Err: err}
	}
	if plan == nil || plan.MonthlyCapUSD == 0 {
		return &models.BudgetExhaustedError{Owner: owner, CapUSD: 0, UsedUSD: 0, Projected: projectedCost}
	}

	since := c.now().Add(-plan.BillingPeriod)
	used, err := c.usage.SumCostSince(ctx, owner, since)
	if err != nil {
		return &models.PersistenceFailureError{Operation: "sum usage", Err: err}
	}

	if used+projectedCost > plan.MonthlyCapUSD {
		return &models.BudgetExhaustedError{Owner: owner, CapUSD: plan.MonthlyCapUSD, UsedUSD: used, Projected: projectedCost}
	}
	return nil
}

func buildMessages(systemPrompt, userPrompt string) []Message {
	var messages []Message
	if systemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, Message{Role: "user", Content: userPrompt})
	return messages
}

func taskToUsageAction(task TaskType) models.UsageAction {
	switch task {
	case TaskGenerateDraft:
		return models.UsageActionGenerate
	case TaskExtractPatterns, TaskStyleGuide:
		return models.UsageActionAnalyze
	default:
		return models.UsageActionAnalyze
	}
}

// providerFamily maps a model string to the provider family key used to look
// up a Provider in Client.providers. Anthropic model names start with
// "claude-"; everything else routes to the openai family.
func providerFamily(model string) string {
	if len(model) >= 7 && model[:7] == "claude-" {
		return "anthropic"
	}
	return "openai"
}
