package models

// ActivityItem is one past authorization decision as returned by the
// recent-activity read. All fields beyond the decision and amount are
// optional on the wire.
type ActivityItem struct {
	Decision    SpendDecision `json:"decision"`
	AmountCents int64         `json:"amount_cents"`
	Currency    string        `json:"currency"`
	VendorID    string        `json:"vendor_id"`
	Purpose     string        `json:"purpose"`
	ReasonCode  string        `json:"reason_code"`
	EvaluatedAt string        `json:"evaluated_at"`
}
