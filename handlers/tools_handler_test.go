package handlers

import (
	"crypto/ed25519"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/koraprotocol/kora-agent-go/config"
	"github.com/koraprotocol/kora-agent-go/services/kora"
	"github.com/koraprotocol/kora-agent-go/services/signing"
	"github.com/koraprotocol/kora-agent-go/services/tools"
)

// newHandler wires a ToolsHandler against a stub Kora service.
func newHandler(t *testing.T, stub http.HandlerFunc) (*ToolsHandler, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(stub)
	t.Cleanup(server.Close)

	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 3)
	}
	identity, err := signing.ParseAgentKey(signing.FormatAgentKey("agent_test", seed))
	require.NoError(t, err)

	cfg := &config.Config{
		Kora: config.KoraConfig{
			MandateID: "m_1",
			AdminKey:  "admin_secret",
			BaseURL:   server.URL,
		},
	}
	client := kora.NewClient(kora.Config{
		BaseURL:  server.URL,
		AdminKey: "admin_secret",
		Identity: identity,
	}, zap.NewNop())

	return NewToolsHandler(tools.NewService(cfg, client, zap.NewNop()), zap.NewNop()), server
}

func TestHandleCheckBudget(t *testing.T) {
	handler, _ := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"currency": "EUR",
			"status": "active",
			"daily": {"limit_cents": 50000, "spent_cents": 10000, "remaining_cents": 40000, "resets_at": "2026-02-16T00:00:00+01:00"},
			"monthly": {"limit_cents": 200000, "spent_cents": 10000, "remaining_cents": 190000, "resets_at": "2026-03-01T00:00:00+01:00"}
		}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/tools/check_budget", nil)
	rec := httptest.NewRecorder()
	handler.HandleCheckBudget(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Your current spending budget:")
}

func TestHandleSpend(t *testing.T) {
	t.Run("valid request reaches the service", func(t *testing.T) {
		handler, _ := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"decision":"APPROVED","decision_id":"dec_1"}`))
		})

		body := `{"vendor":"openai","amount_cents":2500,"currency":"EUR","reason":"API credits"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/tools/spend", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.HandleSpend(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "✅ APPROVED — €25.00 to openai")
	})

	t.Run("missing fields are rejected before any dispatch", func(t *testing.T) {
		handler, _ := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("invalid input must not reach the Kora service")
		})

		body := `{"amount_cents":2500,"currency":"EUR"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/tools/spend", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.HandleSpend(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "Vendor is required")
		assert.Contains(t, rec.Body.String(), "Reason is required")
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		handler, _ := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("invalid input must not reach the Kora service")
		})

		body := `{"vendor":"openai","amount_cents":-5,"currency":"EUR","reason":"x"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/tools/spend", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.HandleSpend(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed JSON is rejected", func(t *testing.T) {
		handler, _ := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("invalid input must not reach the Kora service")
		})

		req := httptest.NewRequest(http.MethodPost, "/v1/tools/spend", strings.NewReader(`{not json`))
		rec := httptest.NewRecorder()
		handler.HandleSpend(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid JSON body")
	})
}

func TestHandleRecentActivity(t *testing.T) {
	handler, _ := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/tools/recent_activity", nil)
	rec := httptest.NewRecorder()
	handler.HandleRecentActivity(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No recent spending activity found.", rec.Body.String())
}

func TestHandleRecentActivityLimitParam(t *testing.T) {
	handler, _ := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/tools/recent_activity?limit=3", nil)
	rec := httptest.NewRecorder()
	handler.HandleRecentActivity(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	handler, _ := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"version":"1.4.2","database":"connected","uptime_seconds":60}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/tools/health", nil)
	rec := httptest.NewRecorder()
	handler.HandleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "✅ Kora is operational")
}

func TestHandleAudit(t *testing.T) {
	handler, _ := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "mandate.updated", r.URL.Query().Get("action"))
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/tools/audit?action=mandate.updated", nil)
	rec := httptest.NewRecorder()
	handler.HandleAudit(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No admin actions found for this mandate.", rec.Body.String())
}
