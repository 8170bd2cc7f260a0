package models

import (
	"time"

	"github.com/uptrace/bun"

	pkgmodels "github.com/contentforge/conditioncore/pkg/models"
)

// PlanModel represents an owner's monthly spend cap. Billing enforcement
// itself (invoicing, payment collection) is out of scope (spec.md §1); this
// only stores the cap the Inference Client's budget check reads.
type PlanModel struct {
	bun.BaseModel `bun:"table:ccore_plans,alias:pl"`

	Owner             string  `bun:"owner,pk" json:"owner"`
	MonthlyCapUSD     float64 `bun:"monthly_cap_usd,notnull,default:0" json:"monthly_cap_usd"`
	BillingPeriodDays int     `bun:"billing_period_days,notnull,default:30" json:"billing_period_days"`
}

// TableName returns the table name for PlanModel.
func (PlanModel) TableName() string {
	return "ccore_plans"
}

// ToPlanDomain converts a PlanModel to the domain Plan.
func ToPlanDomain(p *PlanModel) *pkgmodels.Plan {
	if p == nil {
		return nil
	}
	return &pkgmodels.Plan{
		Owner:         p.Owner,
		MonthlyCapUSD: p.MonthlyCapUSD,
		BillingPeriod: time.Duration(p.BillingPeriodDays) * 24 * time.Hour,
	}
}
