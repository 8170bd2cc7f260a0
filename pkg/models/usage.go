package models

import "time"

// UsageAction is the closed set of billable actions that append a UsageRecord.
type UsageAction string

const (
	UsageActionCollect        UsageAction = "collect"
	UsageActionAnalyze        UsageAction = "analyze"
	UsageActionGenerate       UsageAction = "generate"
	UsageActionMonitorRegister UsageAction = "monitor_register"
)

// UsageRecord is an append-only ledger entry of inference cost attributed to an owner.
type UsageRecord struct {
	ID         string      `json:"id"`
	Owner      string      `json:"owner"`
	Action     UsageAction `json:"action"`
	CampaignID string      `json:"campaign_id,omitempty"`
	TokenCount int         `json:"token_count"`
	Cost       float64     `json:"cost"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Plan describes an owner's monthly spend cap. A Cap of 0 means the plan is expired or
// never provisioned and can_proceed must unconditionally return false (spec.md §4.1).
type Plan struct {
	Owner           string
	MonthlyCapUSD   float64
	BillingPeriod   time.Duration
}
