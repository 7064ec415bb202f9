// Package render maps parsed Kora responses and failure classifications to
// final human-readable text. Every function is pure: same inputs, same
// output, no clock reads, no randomness. The reference time is passed in so
// that a multi-item response is internally consistent.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/koraprotocol/kora-agent-go/models"
)

// Budget renders a budget-check response.
func Budget(budget *models.Budget, now time.Time) string {
	amt := func(cents int64) string { return FormatAmount(cents, budget.Currency) }

	if budget.Suspended() {
		lines := []string{
			"⚠️ This mandate is SUSPENDED. Spending is not currently allowed.",
			"",
			"Budget (if reactivated):",
			fmt.Sprintf("• Daily: %s remaining of %s", amt(budget.Daily.RemainingCents), amt(budget.Daily.LimitCents)),
			fmt.Sprintf("• Monthly: %s remaining of %s", amt(budget.Monthly.RemainingCents), amt(budget.Monthly.LimitCents)),
			"",
			"Contact your administrator to reactivate.",
		}
		return strings.Join(lines, "\n")
	}

	lines := []string{"Your current spending budget:"}
	lines = append(lines, fmt.Sprintf("• Daily: %s remaining of %s (resets %s)",
		amt(budget.Daily.RemainingCents), amt(budget.Daily.LimitCents),
		FormatRelative(budget.Daily.ResetsAt, now)))
	lines = append(lines, fmt.Sprintf("• Daily usage: %d%% (%s of %s)",
		ComputeDailyPercent(budget.Daily.SpentCents, budget.Daily.LimitCents),
		amt(budget.Daily.SpentCents), amt(budget.Daily.LimitCents)))
	lines = append(lines, fmt.Sprintf("• Monthly: %s remaining of %s (resets %s)",
		amt(budget.Monthly.RemainingCents), amt(budget.Monthly.LimitCents),
		FormatRelative(budget.Monthly.ResetsAt, now)))

	if budget.PerTransactionMaxCents != nil {
		lines = append(lines, fmt.Sprintf("• Per transaction max: %s", amt(*budget.PerTransactionMaxCents)))
	}

	if budget.AllowedVendors != nil {
		lines = append(lines, fmt.Sprintf("• Allowed vendors: %s", strings.Join(budget.AllowedVendors, ", ")))
	} else {
		lines = append(lines, "• Vendors: unrestricted")
	}

	if budget.AllowedCategories != nil {
		lines = append(lines, fmt.Sprintf("• Allowed categories: %s", strings.Join(budget.AllowedCategories, ", ")))
	}

	if tw := budget.TimeWindow; tw != nil {
		switch {
		case tw.CurrentlyOpen:
			lines = append(lines, fmt.Sprintf("• Spending window: Open now. Closes at %s today.", tw.AllowedHoursLocal.CloseLabel()))
		case tw.NextOpenAt != "":
			lines = append(lines, fmt.Sprintf("• Spending window: CLOSED. Opens %s.", FormatRelative(tw.NextOpenAt, now)))
		default:
			lines = append(lines, "• Spending window: CLOSED.")
		}
	}

	return strings.Join(lines, "\n")
}

// BudgetError renders the budget 404 outcome (mandate missing or revoked).
func BudgetError() string {
	return "❌ Budget information unavailable. This mandate may not exist or may have been revoked."
}

// SpendApproved renders an approved authorization.
func SpendApproved(resp *models.SpendResponse, vendor string, amountCents int64, currency, reason string) string {
	lines := []string{
		fmt.Sprintf("✅ APPROVED — %s to %s", FormatAmount(amountCents, currency), vendor),
		fmt.Sprintf("Reason: %s", reason),
		fmt.Sprintf("Decision: %s", resp.DecisionID),
	}

	if limits := resp.LimitsAfterApproval; limits != nil && limits.DailyRemainingCents != nil {
		lines = append(lines, fmt.Sprintf("Daily remaining: %s", FormatAmount(*limits.DailyRemainingCents, currency)))
	}

	return strings.Join(lines, "\n")
}

// SpendDenied renders a denied authorization. The retry suggestion appears
// only when the service reported a strictly positive available amount.
func SpendDenied(resp *models.SpendResponse, vendor string, amountCents int64, currency string) string {
	message := ""
	hint := ""
	var availableCents *int64
	if denial := resp.Denial; denial != nil {
		message = denial.Message
		hint = denial.Hint
		if denial.Actionable != nil {
			availableCents = denial.Actionable.AvailableCents
		}
	}
	if message == "" {
		message = resp.ReasonCode
	}
	if message == "" {
		message = "Denied"
	}

	lines := []string{
		fmt.Sprintf("❌ DENIED — Cannot spend %s on %s", FormatAmount(amountCents, currency), vendor),
		fmt.Sprintf("Reason: %s", message),
	}

	if hint != "" {
		lines = append(lines, fmt.Sprintf("Suggestion: %s", hint))
	}

	if availableCents != nil && *availableCents > 0 {
		lines = append(lines, fmt.Sprintf("You could retry with %s or less.", FormatAmount(*availableCents, currency)))
	}

	return strings.Join(lines, "\n")
}

// SpendUnavailable renders the fail-closed message for an unreachable or
// erroring authorization service. The detail string is interpolated verbatim.
func SpendUnavailable(statusOrError string) string {
	lines := []string{
		fmt.Sprintf("❌ AUTHORIZATION UNAVAILABLE — Kora returned %s", statusOrError),
		"⚠️ You MUST NOT proceed with this payment.",
		"No authorization = No payment. This is a safety requirement.",
		"Try again later or call kora_health to check service status.",
	}
	return strings.Join(lines, "\n")
}

// RecentActivity renders the recent-authorization list, numbered from 1, with
// a same-day summary of approved total and denial count.
func RecentActivity(items []models.ActivityItem, now time.Time) string {
	if len(items) == 0 {
		return "No recent spending activity found."
	}

	lines := []string{fmt.Sprintf("Recent spending activity (last %d):", len(items))}

	var todayApprovedCents int64
	todayDeniedCount := 0

	for i, item := range items {
		currency := item.Currency
		if currency == "" {
			currency = "EUR"
		}
		amount := FormatAmount(item.AmountCents, currency)

		relTime := ""
		if item.EvaluatedAt != "" {
			relTime = FormatRelative(item.EvaluatedAt, now)
		}

		if item.Decision == models.DecisionApproved {
			purposeStr := ""
			if item.Purpose != "" {
				purposeStr = fmt.Sprintf("(%s)", item.Purpose)
			}
			lines = append(lines, fmt.Sprintf("%d. ✅ %s → %s %s — %s", i+1, amount, item.VendorID, purposeStr, relTime))
		} else {
			lines = append(lines, fmt.Sprintf("%d. ❌ %s → %s (DENIED: %s) — %s", i+1, amount, item.VendorID, item.ReasonCode, relTime))
		}

		if item.EvaluatedAt != "" {
			if evaluated, err := parseTimestamp(item.EvaluatedAt); err == nil && sameCalendarDay(evaluated, now) {
				if item.Decision == models.DecisionApproved {
					todayApprovedCents += item.AmountCents
				} else {
					todayDeniedCount++
				}
			}
		}
	}

	summaryCurrency := items[0].Currency
	if summaryCurrency == "" {
		summaryCurrency = "EUR"
	}
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("Today's total: %s approved, %d denied",
		FormatAmount(todayApprovedCents, summaryCurrency), todayDeniedCount))

	return strings.Join(lines, "\n")
}

// NoAdminKey renders the recent-activity message when no admin key is
// configured.
func NoAdminKey() string {
	return "Recent activity is not available. An admin key is required for this feature."
}

// HealthOK renders a healthy service status.
func HealthOK(version, database string, uptimeSeconds float64) string {
	lines := []string{
		"✅ Kora is operational",
		fmt.Sprintf("Version: %s", version),
		fmt.Sprintf("Database: %s", database),
		fmt.Sprintf("Uptime: %s", FormatUptime(uptimeSeconds)),
	}
	return strings.Join(lines, "\n")
}

// HealthUnavailable renders an unreachable or unhealthy service status with
// the fail-closed directive.
func HealthUnavailable(statusOrError string) string {
	lines := []string{
		"❌ Kora is unavailable",
		fmt.Sprintf("Status: %s", statusOrError),
		"⚠️ All spending requests will fail. Do NOT attempt any payments until Kora is available.",
	}
	return strings.Join(lines, "\n")
}

// Audit renders the audit-log entries, numbered from 1. Only the last 8
// characters of an admin key hash are ever shown.
func Audit(entries []models.AuditEntry, now time.Time) string {
	if len(entries) == 0 {
		return AuditEmpty()
	}

	lines := []string{fmt.Sprintf("Recent admin actions (%d):", len(entries))}

	for i, entry := range entries {
		action := orUnknown(entry.Action)
		targetType := orUnknown(entry.TargetType)
		targetID := orUnknown(entry.TargetID)

		relTime := ""
		if entry.PerformedAt != "" {
			relTime = FormatRelative(entry.PerformedAt, now)
		}

		lines = append(lines, fmt.Sprintf("%d. %s on %s/%s — %s", i+1, action, targetType, targetID, relTime))
		lines = append(lines, fmt.Sprintf("   By: admin key ...%s", hashSuffix(entry.AdminKeyHash)))

		if fields := entry.Details.ChangedFields; len(fields) > 0 {
			lines = append(lines, fmt.Sprintf("   Changed: %s", strings.Join(fields, ", ")))
		}
		if reason := entry.Details.Reason; reason != "" {
			lines = append(lines, fmt.Sprintf("   Reason: %s", reason))
		}
	}

	return strings.Join(lines, "\n")
}

// AuditEmpty renders the empty audit log sentence.
func AuditEmpty() string {
	return "No admin actions found for this mandate."
}

// AuditNoAdminKey renders the audit message when no admin key is configured.
func AuditNoAdminKey() string {
	return "Audit log is not available. An admin key is required for this feature.\n" +
		"Configure KORA_ADMIN_KEY in the toolhost environment."
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// hashSuffix returns the last 8 characters of the hash, the whole hash when
// shorter, or "unknown" when absent.
func hashSuffix(hash string) string {
	if hash == "" {
		return "unknown"
	}
	if len(hash) <= 8 {
		return hash
	}
	return hash[len(hash)-8:]
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
