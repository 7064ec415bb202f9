package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/koraprotocol/kora-agent-go/services/tools"
	"github.com/koraprotocol/kora-agent-go/utils"
)

// Default list sizes when the caller does not pass a limit.
const (
	defaultActivityLimit = 5
	defaultAuditLimit    = 10
)

// SpendToolRequest is the JSON body of the spend tool.
type SpendToolRequest struct {
	Vendor      string `json:"vendor" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Currency    string `json:"currency" validate:"required,len=3"`
	Reason      string `json:"reason" validate:"required"`
}

// ToolsHandler exposes the five tool operations over HTTP. Every tool
// response is a single plain-text string; only malformed tool input produces
// a JSON error.
type ToolsHandler struct {
	tools  *tools.Service
	logger *zap.Logger
}

// NewToolsHandler creates a ToolsHandler.
func NewToolsHandler(service *tools.Service, logger *zap.Logger) *ToolsHandler {
	return &ToolsHandler{
		tools:  service,
		logger: logger,
	}
}

// HandleCheckBudget handles POST /v1/tools/check_budget
func (h *ToolsHandler) HandleCheckBudget(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteText(w, http.StatusOK, h.tools.CheckBudget(r.Context()))
}

// HandleSpend handles POST /v1/tools/spend
func (h *ToolsHandler) HandleSpend(w http.ResponseWriter, r *http.Request) {
	var req SpendToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "invalid JSON body", nil)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		var validationErr *utils.ValidationError
		if errors.As(err, &validationErr) {
			details := make(map[string]interface{}, len(validationErr.Fields))
			for field, msg := range validationErr.Fields {
				details[field] = msg
			}
			_ = utils.WriteBadRequest(w, validationErr.Message, details)
			return
		}
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	text := h.tools.Spend(r.Context(), tools.SpendInput{
		Vendor:      req.Vendor,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Reason:      req.Reason,
	})
	_ = utils.WriteText(w, http.StatusOK, text)
}

// HandleRecentActivity handles GET /v1/tools/recent_activity
func (h *ToolsHandler) HandleRecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultActivityLimit)
	_ = utils.WriteText(w, http.StatusOK, h.tools.RecentActivity(r.Context(), limit))
}

// HandleHealth handles GET /v1/tools/health
func (h *ToolsHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteText(w, http.StatusOK, h.tools.Health(r.Context()))
}

// HandleAudit handles GET /v1/tools/audit
func (h *ToolsHandler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultAuditLimit)
	action := r.URL.Query().Get("action")
	_ = utils.WriteText(w, http.StatusOK, h.tools.Audit(r.Context(), limit, action))
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}
