package inference

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentforge/conditioncore/internal/config"
	"github.com/contentforge/conditioncore/pkg/models"
)

type fakeProvider struct {
	text    string
	tokens  int
	err     error
	calls   int
}

func (f *fakeProvider) Execute(ctx context.Context, model string, messages []Message, maxTokens int, temperature float64) (string, int, error) {
	f.calls++
	if f.err != nil {
		return "", 0, f.err
	}
	return f.text, f.tokens, nil
}

type fakeUsage struct {
	records []*models.UsageRecord
	sum     float64
}

func (f *fakeUsage) Record(ctx context.Context, rec *models.UsageRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeUsage) SumCostSince(ctx context.Context, owner string, since time.Time) (float64, error) {
	return f.sum, nil
}

type fakePlans struct {
	plan *models.Plan
}

func (f *fakePlans) PlanFor(ctx context.Context, owner string) (*models.Plan, error) {
	return f.plan, nil
}

func testConfig() config.InferenceConfig {
	return config.InferenceConfig{
		Models: map[string]config.ModelConfig{
			string(TaskGenerateDraft): {PrimaryModel: "gpt-4.1", FallbackModel: "gpt-4.1-mini", DefaultMaxTokens: 500},
		},
	}
}

func flatCost(model string, maxTokens int) float64 { return 0.01 }

func TestClient_Call_PrimarySuccess(t *testing.T) {
	primary := &fakeProvider{text: "hello", tokens: 10}
	usage := &fakeUsage{}
	plans := &fakePlans{plan: &models.Plan{MonthlyCapUSD: 100, BillingPeriod: 30 * 24 * time.Hour}}

	c := NewClient(testConfig(), map[string]Provider{"openai": primary}, usage, plans, flatCost)
	res, err := c.Call(context.Background(), "owner-1", TaskGenerateDraft, "sys", "user", 0, 0.7, "req-1")

	require.NoError(t, err)
	assert.Equal(t, "hello", res.Text)
	assert.Equal(t, "gpt-4.1", res.ModelUsed)
	assert.Len(t, usage.records, 1)
	assert.Equal(t, 1, primary.calls)
}

func TestClient_Call_FallsBackOnPrimaryFailure(t *testing.T) {
	primary := &fakeProvider{err: errors.New("boom")}
	usage := &fakeUsage{}
	plans := &fakePlans{plan: &models.Plan{MonthlyCapUSD: 100, BillingPeriod: 30 * 24 * time.Hour}}

	providers := map[string]Provider{"openai": &routingProvider{primary: primary, fallbackText: "fallback text"}}
	c := NewClient(testConfig(), providers, usage, plans, flatCost)

	res, err := c.Call(context.Background(), "owner-1", TaskGenerateDraft, "", "user", 0, 0.7, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-mini", res.ModelUsed)
	assert.Equal(t, "fallback text", res.Text)
}

func TestClient_Call_BothFail(t *testing.T) {
	providers := map[string]Provider{"openai": &routingProvider{primary: &fakeProvider{err: errors.New("p-fail")}, fallbackErr: errors.New("f-fail")}}
	usage := &fakeUsage{}
	plans := &fakePlans{plan: &models.Plan{MonthlyCapUSD: 100, BillingPeriod: 30 * 24 * time.Hour}}

	c := NewClient(testConfig(), providers, usage, plans, flatCost)
	_, err := c.Call(context.Background(), "owner-1", TaskGenerateDraft, "", "user", 0, 0.7, "req-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInferenceFailure)
}

func TestClient_Call_BudgetExhausted_ZeroCapAlwaysFails(t *testing.T) {
	providers := map[string]Provider{"openai": &fakeProvider{text: "x", tokens: 1}}
	usage := &fakeUsage{}
	plans := &fakePlans{plan: &models.Plan{MonthlyCapUSD: 0}}

	c := NewClient(testConfig(), providers, usage, plans, flatCost)
	_, err := c.Call(context.Background(), "owner-1", TaskGenerateDraft, "", "user", 0, 0.7, "req-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrBudgetExhausted)
}

func TestClient_Call_BudgetExhausted_OverCap(t *testing.T) {
	providers := map[string]Provider{"openai": &fakeProvider{text: "x", tokens: 1}}
	usage := &fakeUsage{sum: 99.999}
	plans := &fakePlans{plan: &models.Plan{MonthlyCapUSD: 100, BillingPeriod: 30 * 24 * time.Hour}}

	c := NewClient(testConfig(), providers, usage, plans, flatCost)
	_, err := c.Call(context.Background(), "owner-1", TaskGenerateDraft, "", "user", 0, 0.7, "req-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrBudgetExhausted)
}

func TestClient_Call_UnknownTaskType(t *testing.T) {
	c := NewClient(testConfig(), nil, &fakeUsage{}, &fakePlans{plan: &models.Plan{MonthlyCapUSD: 10, BillingPeriod: time.Hour}}, flatCost)
	_, err := c.Call(context.Background(), "owner-1", TaskType("bogus"), "", "user", 0, 0.5, "req")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}

// routingProvider simulates one provider family serving both the primary and
// fallback model names with independently controllable outcomes.
type routingProvider struct {
	primary      *fakeProvider
	fallbackErr  error
	fallbackText string
	fallbackCalls int
}

func (r *routingProvider) Execute(ctx context.Context, model string, messages []Message, maxTokens int, temperature float64) (string, int, error) {
	if model == "gpt-4.1" {
		return r.primary.Execute(ctx, model, messages, maxTokens, temperature)
	}
	r.fallbackCalls++
	if r.fallbackErr != nil {
		return "", 0, r.fallbackErr
	}
	return r.fallbackText, 5, nil
}
