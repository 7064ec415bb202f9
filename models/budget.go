package models

import "encoding/json"

// BudgetStatus represents the lifecycle state of a mandate's budget.
type BudgetStatus string

const (
	BudgetStatusActive    BudgetStatus = "active"
	BudgetStatusSuspended BudgetStatus = "suspended"
)

// Window represents one budget window (daily or monthly). The service
// guarantees remaining_cents = limit_cents - spent_cents; clients render the
// numbers as delivered and never re-derive them.
type Window struct {
	LimitCents     int64  `json:"limit_cents"`
	SpentCents     int64  `json:"spent_cents"`
	RemainingCents int64  `json:"remaining_cents"`
	ResetsAt       string `json:"resets_at"`
}

// LocalHours absorbs both wire encodings of allowed_hours_local: a bare
// "HH:MM" string or a {"start","end"} object.
type LocalHours struct {
	Start string
	End   string
	Raw   string // set when the upstream sent a scalar
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *LocalHours) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &h.Raw)
	}
	var obj struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	h.Start = obj.Start
	h.End = obj.End
	return nil
}

// CloseLabel returns the closing time to display: the end of the range when
// the upstream sent an object, otherwise the scalar verbatim.
func (h LocalHours) CloseLabel() string {
	if h.Raw != "" {
		return h.Raw
	}
	return h.End
}

// TimeWindow describes when a mandate allows spending. CurrentlyOpen is
// authoritative: rendering must follow it exactly rather than recomputing
// from the allowed hours.
type TimeWindow struct {
	AllowedDays       []string   `json:"allowed_days"`
	AllowedHoursLocal LocalHours `json:"allowed_hours_local"`
	CurrentlyOpen     bool       `json:"currently_open"`
	NextOpenAt        string     `json:"next_open_at"`
}

// Budget is the response shape of the budget-check operation. Optional
// restrictions are nil when the mandate does not carry them; a nil
// AllowedVendors means unrestricted, which is distinct from an empty list.
type Budget struct {
	Currency               string       `json:"currency"`
	Status                 BudgetStatus `json:"status"`
	Daily                  Window       `json:"daily"`
	Monthly                Window       `json:"monthly"`
	PerTransactionMaxCents *int64       `json:"per_transaction_max_cents"`
	AllowedVendors         []string     `json:"allowed_vendors"`
	AllowedCategories      []string     `json:"allowed_categories"`
	TimeWindow             *TimeWindow  `json:"time_window"`
}

// Suspended reports whether spending is blocked by mandate status. An empty
// status is treated as active.
func (b *Budget) Suspended() bool {
	return b.Status == BudgetStatusSuspended
}
