package models

// SpendDecision is the verdict of an authorization request.
type SpendDecision string

const (
	DecisionApproved SpendDecision = "APPROVED"
	DecisionDenied   SpendDecision = "DENIED"
)

// Actionable carries the machine-usable part of a denial: how much the agent
// could still spend right now, when the service knows.
type Actionable struct {
	AvailableCents *int64 `json:"available_cents"`
}

// Denial explains a denied authorization.
type Denial struct {
	Message    string      `json:"message"`
	Hint       string      `json:"hint"`
	Actionable *Actionable `json:"actionable"`
}

// ApprovalLimits reports remaining headroom after an approval.
type ApprovalLimits struct {
	DailyRemainingCents *int64 `json:"daily_remaining_cents"`
}

// SpendResponse is the response shape of the spend operation.
type SpendResponse struct {
	Decision            SpendDecision   `json:"decision"`
	DecisionID          string          `json:"decision_id"`
	ReasonCode          string          `json:"reason_code"`
	Denial              *Denial         `json:"denial"`
	LimitsAfterApproval *ApprovalLimits `json:"limits_after_approval"`
}

// Approved reports whether the spend was authorized. Anything other than an
// explicit APPROVED is a denial (fail closed).
func (r *SpendResponse) Approved() bool {
	return r.Decision == DecisionApproved
}
