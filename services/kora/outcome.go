package kora

import "github.com/koraprotocol/kora-agent-go/models"

// FailureKind classifies a non-success dispatch outcome. The zero value is
// never a valid failure; a nil *Failure means the call succeeded.
type FailureKind int

const (
	// FailureUnavailable covers transport errors and HTTP 5xx. For spend this
	// is a fail-closed condition: an indeterminate server state is never
	// authorization.
	FailureUnavailable FailureKind = iota + 1

	// FailureNotFound is a 404 on the budget lookup: the mandate is missing
	// or has been revoked. Distinct from a generic client error.
	FailureNotFound

	// FailureClient covers remaining 4xx responses, with the upstream message
	// when one was provided.
	FailureClient
)

// Failure is the classified non-success outcome of one dispatch.
type Failure struct {
	Kind FailureKind

	// Detail carries "timeout"/"connection error" or "HTTP 503"-style status
	// text for unavailable outcomes, and the upstream message for client
	// errors. Empty for not-found.
	Detail string
}

// BudgetResult is the outcome of the budget-check operation.
type BudgetResult struct {
	Budget  *models.Budget
	Failure *Failure
}

// SpendResult is the outcome of the spend operation.
type SpendResult struct {
	Response *models.SpendResponse
	Failure  *Failure
}

// ActivityResult is the outcome of the recent-activity read.
type ActivityResult struct {
	Items   []models.ActivityItem
	Failure *Failure
}

// HealthResult is the outcome of the health probe.
type HealthResult struct {
	Health  *models.HealthStatus
	Failure *Failure
}

// AuditResult is the outcome of the audit read.
type AuditResult struct {
	Entries []models.AuditEntry
	Failure *Failure
}
