package models

import (
	"encoding/json"
	"fmt"
)

// ChangedFields absorbs both wire encodings of details.changed_fields: a list
// of field names or a single scalar.
type ChangedFields []string

// UnmarshalJSON implements json.Unmarshaler.
func (c *ChangedFields) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*c = nil
	case []any:
		fields := make(ChangedFields, 0, len(t))
		for _, elem := range t {
			fields = append(fields, fmt.Sprint(elem))
		}
		*c = fields
	default:
		*c = ChangedFields{fmt.Sprint(t)}
	}
	return nil
}

// AuditDetails is the free-form detail block of an audit entry.
type AuditDetails struct {
	ChangedFields ChangedFields `json:"changed_fields"`
	Reason        string        `json:"reason"`
}

// AuditEntry is one administrative action as returned by the audit read.
type AuditEntry struct {
	Action       string       `json:"action"`
	TargetType   string       `json:"target_type"`
	TargetID     string       `json:"target_id"`
	PerformedAt  string       `json:"performed_at"`
	AdminKeyHash string       `json:"admin_key_hash"`
	Details      AuditDetails `json:"details"`
}
