// Package models defines the domain entities, enums, and error types shared across
// the content conditioning core.
package models

import "errors"

// Error kinds from the spec's error taxonomy. Each maps 1:1 to a stable
// machine-readable code (the sentinel's own identifier); the wrapping struct types
// below carry the failing field/resource id for user-visible surfacing.
var (
	ErrValidation           = errors.New("validation error")
	ErrNotFound             = errors.New("not found")
	ErrAlreadyExists        = errors.New("already exists")
	ErrPlanLimitReached     = errors.New("plan limit reached")
	ErrBudgetExhausted      = errors.New("budget exhausted")
	ErrCollectionInProgress = errors.New("collection already in progress")
	ErrInferenceFailure     = errors.New("inference failure")
	ErrMalformedResponse    = errors.New("malformed inference response")
	ErrScraperFailure       = errors.New("scraper failure")
	ErrPersistenceFailure   = errors.New("persistence failure")
	ErrCancelled            = errors.New("cancelled")
	ErrNoProfile            = errors.New("no community profile")
)

// ValidationError reports a bad input shape or invariant violated at an API boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ValidationErrors represents multiple validation errors collected at once.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Error()
}

func (e ValidationErrors) Unwrap() error { return ErrValidation }

// NotFoundError reports a referenced entity missing for the caller.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found: " + e.ID
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AlreadyExistsError reports an idempotency conflict on a unique key.
type AlreadyExistsError struct {
	Resource string
	Key      string
}

func (e *AlreadyExistsError) Error() string {
	return e.Resource + " already exists: " + e.Key
}

func (e *AlreadyExistsError) Unwrap() error { return ErrAlreadyExists }

// PlanLimitReachedError reports a per-plan quota exhausted before a task could start.
type PlanLimitReachedError struct {
	Owner string
	Limit string
}

func (e *PlanLimitReachedError) Error() string {
	return "plan limit reached for owner " + e.Owner + ": " + e.Limit
}

func (e *PlanLimitReachedError) Unwrap() error { return ErrPlanLimitReached }

// BudgetExhaustedError reports a hit owner-level monthly cost cap.
type BudgetExhaustedError struct {
	Owner     string
	CapUSD    float64
	UsedUSD   float64
	Projected float64
}

func (e *BudgetExhaustedError) Error() string {
	return "budget exhausted for owner " + e.Owner
}

func (e *BudgetExhaustedError) Unwrap() error { return ErrBudgetExhausted }

// CollectionInProgressError reports a concurrent collection for the same campaign.
type CollectionInProgressError struct {
	CampaignID string
}

func (e *CollectionInProgressError) Error() string {
	return "collection already in progress for campaign " + e.CampaignID
}

func (e *CollectionInProgressError) Unwrap() error { return ErrCollectionInProgress }

// InferenceFailureError reports that both the primary and fallback models failed.
type InferenceFailureError struct {
	TaskType    string
	PrimaryErr  error
	FallbackErr error
}

func (e *InferenceFailureError) Error() string {
	msg := "inference failure for task " + e.TaskType
	if e.PrimaryErr != nil {
		msg += ": primary: " + e.PrimaryErr.Error()
	}
	if e.FallbackErr != nil {
		msg += "; fallback: " + e.FallbackErr.Error()
	}
	return msg
}

func (e *InferenceFailureError) Unwrap() error { return ErrInferenceFailure }

// MalformedResponseError reports a structured task whose fallback model also
// returned non-parseable output.
type MalformedResponseError struct {
	TaskType string
	Raw      string
}

func (e *MalformedResponseError) Error() string {
	return "malformed response for task " + e.TaskType
}

func (e *MalformedResponseError) Unwrap() error { return ErrMalformedResponse }

// ScraperFailureError reports an external scraper error, normally captured
// non-fatally in a CollectionResult's Errors slice rather than propagated.
type ScraperFailureError struct {
	Subreddit string
	Err       error
}

func (e *ScraperFailureError) Error() string {
	msg := e.Subreddit + ": scraper failure"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ScraperFailureError) Unwrap() error { return ErrScraperFailure }

// PersistenceFailureError reports an unexpected write failure.
type PersistenceFailureError struct {
	Operation string
	Err       error
}

func (e *PersistenceFailureError) Error() string {
	msg := "persistence failure during " + e.Operation
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PersistenceFailureError) Unwrap() error { return ErrPersistenceFailure }

// CancelledError reports task termination via a cancellation signal. Partial
// progress made before cancellation is retained by the caller.
type CancelledError struct {
	TaskID string
}

func (e *CancelledError) Error() string {
	return "task cancelled: " + e.TaskID
}

func (e *CancelledError) Unwrap() error { return ErrCancelled }

// UnknownColumnError reports a storage write rejected because the backing
// schema doesn't recognize one of the written columns (forward-incompat
// schema drift). The Pattern Engine strips optional fields and retries once
// on this error rather than failing the whole profile upsert (spec.md §4.4).
type UnknownColumnError struct {
	Column string
	Err    error
}

func (e *UnknownColumnError) Error() string {
	msg := "unknown column: " + e.Column
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnknownColumnError) Unwrap() error { return ErrPersistenceFailure }

// NoProfileError is a soft failure: the Generator falls back to generic examples
// rather than surfacing it to the caller.
type NoProfileError struct {
	CampaignID string
	Subreddit  string
}

func (e *NoProfileError) Error() string {
	return "no community profile for " + e.Subreddit + " in campaign " + e.CampaignID
}

func (e *NoProfileError) Unwrap() error { return ErrNoProfile }
