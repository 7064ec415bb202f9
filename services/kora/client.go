// Package kora dispatches the five tool operations against the Kora
// authorization service. Each operation is a single attempt with a fixed
// timeout; there are no retries, no backoff, and no shared state between
// calls. Transport and status outcomes are classified into a small set of
// result kinds so the caller can render them without probing errors.
package kora

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/koraprotocol/kora-agent-go/models"
	"github.com/koraprotocol/kora-agent-go/services/signing"
)

const (
	// signedTimeout bounds signed and admin-authenticated calls.
	signedTimeout = 30 * time.Second

	// healthTimeout bounds the unauthenticated health probe.
	healthTimeout = 10 * time.Second

	// spendTTLSeconds asserts the validity window of an authorization
	// decision. Part of the signed payload.
	spendTTLSeconds = 300

	// nonceBytes is the length of the per-request replay nonce.
	nonceBytes = 16
)

// Activity and audit reads clamp their limit parameters to these ranges.
const (
	activityLimitMax = 20
	auditLimitMax    = 50
)

// Config holds the client configuration.
type Config struct {
	BaseURL  string
	AdminKey string
	Identity *signing.AgentIdentity

	// HTTPClient overrides the default client, for tests.
	HTTPClient *http.Client
}

// Client dispatches requests to the Kora authorization service.
type Client struct {
	baseURL  string
	adminKey string
	identity *signing.AgentIdentity
	http     *http.Client
	logger   *zap.Logger
}

// NewClient creates a Kora client. Timeouts are enforced per call through
// context deadlines, not on the HTTP client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	baseURL := cfg.BaseURL
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &Client{
		baseURL:  baseURL,
		adminKey: cfg.AdminKey,
		identity: cfg.Identity,
		http:     httpClient,
		logger:   logger,
	}
}

// CheckBudget looks up the current budget for a mandate. The body is signed
// with the agent key; only mandate_id is part of the signed payload.
func (c *Client) CheckBudget(ctx context.Context, mandateID string) BudgetResult {
	body := map[string]any{"mandate_id": mandateID}

	resp, failure := c.doSigned(ctx, c.baseURL+"/v1/mandates/"+url.PathEscape(mandateID)+"/budget", body, body)
	if failure != nil {
		return BudgetResult{Failure: failure}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return BudgetResult{Failure: &Failure{Kind: FailureNotFound}}
	case resp.StatusCode >= 500:
		return BudgetResult{Failure: &Failure{Kind: FailureUnavailable, Detail: fmt.Sprintf("HTTP %d", resp.StatusCode)}}
	case resp.StatusCode >= 400:
		return BudgetResult{Failure: &Failure{Kind: FailureClient, Detail: errorMessage(resp)}}
	}

	var budget models.Budget
	if err := json.NewDecoder(resp.Body).Decode(&budget); err != nil {
		c.logger.Warn("budget response decode failed", zap.Error(err))
		return BudgetResult{Failure: &Failure{Kind: FailureUnavailable, Detail: "malformed response"}}
	}
	return BudgetResult{Budget: &budget}
}

// SpendRequest is the input to the spend operation.
type SpendRequest struct {
	MandateID   string
	Vendor      string
	AmountCents int64
	Currency    string
	Reason      string
}

// Spend requests authorization for one payment. The signed payload carries a
// fresh intent id and nonce so repeated identical requests stay distinct; the
// purpose field is transmitted but not signed.
func (c *Client) Spend(ctx context.Context, req SpendRequest) SpendResult {
	intentID := uuid.NewString()

	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		// Without a secure nonce the request must not be sent: fail closed.
		c.logger.Error("nonce generation failed", zap.Error(err))
		return SpendResult{Failure: &Failure{Kind: FailureUnavailable, Detail: "nonce generation error"}}
	}

	signed := map[string]any{
		"intent_id":    intentID,
		"agent_id":     c.identity.AgentID,
		"mandate_id":   req.MandateID,
		"amount_cents": req.AmountCents,
		"currency":     req.Currency,
		"vendor_id":    req.Vendor,
		"nonce":        base64.StdEncoding.EncodeToString(nonce),
		"ttl_seconds":  spendTTLSeconds,
	}

	body := make(map[string]any, len(signed)+1)
	for k, v := range signed {
		body[k] = v
	}
	body["purpose"] = req.Reason

	resp, failure := c.doSigned(ctx, c.baseURL+"/v1/authorize", signed, body)
	if failure != nil {
		return SpendResult{Failure: failure}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return SpendResult{Failure: &Failure{Kind: FailureUnavailable, Detail: strconv.Itoa(resp.StatusCode)}}
	case resp.StatusCode >= 400:
		return SpendResult{Failure: &Failure{Kind: FailureClient, Detail: errorMessage(resp)}}
	}

	var decision models.SpendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		c.logger.Warn("spend response decode failed", zap.Error(err))
		return SpendResult{Failure: &Failure{Kind: FailureUnavailable, Detail: "malformed response"}}
	}
	if decision.Decision == "" {
		decision.Decision = models.DecisionDenied
	}
	return SpendResult{Response: &decision}
}

// RecentActivity lists recent authorization decisions for this agent and
// mandate. Authenticated with the bearer admin key, not the agent key; the
// limit is clamped to [1, 20].
func (c *Client) RecentActivity(ctx context.Context, mandateID string, limit int) ActivityResult {
	params := url.Values{}
	params.Set("agent_id", c.identity.AgentID)
	params.Set("mandate_id", mandateID)
	params.Set("limit", strconv.Itoa(clampLimit(limit, activityLimitMax)))

	resp, failure := c.doAdminGet(ctx, c.baseURL+"/v1/authorizations?"+params.Encode())
	if failure != nil {
		return ActivityResult{Failure: failure}
	}
	defer resp.Body.Close()

	if failure := classifyRead(resp); failure != nil {
		return ActivityResult{Failure: failure}
	}

	var envelope struct {
		Data []models.ActivityItem `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		c.logger.Warn("activity response decode failed", zap.Error(err))
		return ActivityResult{Failure: &Failure{Kind: FailureUnavailable, Detail: "malformed response"}}
	}
	return ActivityResult{Items: envelope.Data}
}

// Health probes the unauthenticated health endpoint with its shorter
// timeout. Any non-200 status is unavailable.
func (c *Client) Health(ctx context.Context) HealthResult {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthResult{Failure: &Failure{Kind: FailureUnavailable, Detail: "connection error"}}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return HealthResult{Failure: transportFailure(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return HealthResult{Failure: &Failure{Kind: FailureUnavailable, Detail: fmt.Sprintf("HTTP %d", resp.StatusCode)}}
	}

	health := models.HealthStatus{Version: "unknown", Database: "unknown"}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return HealthResult{Failure: &Failure{Kind: FailureUnavailable, Detail: "malformed response"}}
	}
	if health.Version == "" {
		health.Version = "unknown"
	}
	if health.Database == "" {
		health.Database = "unknown"
	}
	return HealthResult{Health: &health}
}

// Audit lists recent admin actions on a mandate. Bearer admin key; limit
// clamped to [1, 50]; action filter optional.
func (c *Client) Audit(ctx context.Context, mandateID string, limit int, action string) AuditResult {
	params := url.Values{}
	params.Set("target_id", mandateID)
	params.Set("limit", strconv.Itoa(clampLimit(limit, auditLimitMax)))
	if action != "" {
		params.Set("action", action)
	}

	resp, failure := c.doAdminGet(ctx, c.baseURL+"/v1/admin/audit?"+params.Encode())
	if failure != nil {
		return AuditResult{Failure: failure}
	}
	defer resp.Body.Close()

	if failure := classifyRead(resp); failure != nil {
		return AuditResult{Failure: failure}
	}

	var envelope struct {
		Data []models.AuditEntry `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		c.logger.Warn("audit response decode failed", zap.Error(err))
		return AuditResult{Failure: &Failure{Kind: FailureUnavailable, Detail: "malformed response"}}
	}
	return AuditResult{Entries: envelope.Data}
}

// doSigned canonicalizes and signs signedFields, then POSTs body with the
// agent signature headers. The transmitted body may carry more fields than
// were signed.
func (c *Client) doSigned(ctx context.Context, endpoint string, signedFields, body map[string]any) (*http.Response, *Failure) {
	canonical, err := signing.Canonicalize(signedFields)
	if err != nil {
		// Internally constructed payloads should always canonicalize; if one
		// does not, no authorization may be assumed.
		c.logger.Error("payload canonicalization failed", zap.Error(err))
		return nil, &Failure{Kind: FailureUnavailable, Detail: "request encoding error"}
	}
	signature := signing.Sign(canonical, c.identity)

	payload, err := json.Marshal(body)
	if err != nil {
		c.logger.Error("payload encoding failed", zap.Error(err))
		return nil, &Failure{Kind: FailureUnavailable, Detail: "request encoding error"}
	}

	ctx, cancel := context.WithTimeout(ctx, signedTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &Failure{Kind: FailureUnavailable, Detail: "connection error"}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Agent-Id", c.identity.AgentID)
	req.Header.Set("X-Agent-Signature", signature)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportFailure(err)
	}
	return resp, nil
}

// doAdminGet issues a bearer-authenticated GET with the signed-operation
// timeout.
func (c *Client) doAdminGet(ctx context.Context, endpoint string) (*http.Response, *Failure) {
	ctx, cancel := context.WithTimeout(ctx, signedTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Failure{Kind: FailureUnavailable, Detail: "connection error"}
	}
	req.Header.Set("Authorization", "Bearer "+c.adminKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportFailure(err)
	}
	return resp, nil
}

// classifyRead applies the shared status classification for admin reads:
// 5xx unavailable, other non-2xx a client error with the upstream message.
func classifyRead(resp *http.Response) *Failure {
	switch {
	case resp.StatusCode >= 500:
		return &Failure{Kind: FailureUnavailable, Detail: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return &Failure{Kind: FailureClient, Detail: errorMessage(resp)}
	}
	return nil
}

// transportFailure classifies a transport-level error as timeout or
// connection error. Both are fail-closed unavailable outcomes.
func transportFailure(err error) *Failure {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Kind: FailureUnavailable, Detail: "timeout"}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Failure{Kind: FailureUnavailable, Detail: "timeout"}
	}
	return &Failure{Kind: FailureUnavailable, Detail: "connection error"}
}

// errorMessage extracts the upstream error message from a 4xx body, falling
// back to the status line.
func errorMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(raw) > 0 {
		var body struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(raw, &body) == nil {
			if body.Message != "" {
				return body.Message
			}
			if body.Error != "" {
				return body.Error
			}
		}
	}
	return fmt.Sprintf("HTTP %d", resp.StatusCode)
}

func clampLimit(limit, max int) int {
	if limit < 1 {
		return 1
	}
	if limit > max {
		return max
	}
	return limit
}
