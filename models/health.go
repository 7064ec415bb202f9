package models

// HealthStatus is the response shape of the unauthenticated health probe.
type HealthStatus struct {
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}
