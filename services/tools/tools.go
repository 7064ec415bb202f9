// Package tools composes signing, dispatch, and rendering into the five
// agent-facing operations. Every method is one pass through the pipeline and
// returns exactly one human-readable string; per-call failures are rendered
// into that string, never returned as errors.
package tools

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/koraprotocol/kora-agent-go/config"
	"github.com/koraprotocol/kora-agent-go/render"
	"github.com/koraprotocol/kora-agent-go/services/kora"
)

// Service orchestrates the five tool operations.
type Service struct {
	cfg    *config.Config
	client *kora.Client
	logger *zap.Logger

	// now supplies the reference time for rendering; overridable in tests.
	now func() time.Time
}

// NewService creates a tool service.
func NewService(cfg *config.Config, client *kora.Client, logger *zap.Logger) *Service {
	return &Service{
		cfg:    cfg,
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// CheckBudget reports the current spending budget for the configured
// mandate.
func (s *Service) CheckBudget(ctx context.Context) string {
	result := s.client.CheckBudget(ctx, s.cfg.Kora.MandateID)
	if f := result.Failure; f != nil {
		s.logger.Warn("budget check failed", zap.Int("kind", int(f.Kind)), zap.String("detail", f.Detail))
		switch f.Kind {
		case kora.FailureNotFound:
			return render.BudgetError()
		case kora.FailureClient:
			return "❌ Error: " + f.Detail
		default:
			return render.HealthUnavailable(f.Detail)
		}
	}
	return render.Budget(result.Budget, s.now())
}

// SpendInput is the caller-provided part of a spend request.
type SpendInput struct {
	Vendor      string
	AmountCents int64
	Currency    string
	Reason      string
}

// Spend requests authorization for one payment. Unavailable outcomes render
// the fail-closed warning: no authorization, no payment.
func (s *Service) Spend(ctx context.Context, in SpendInput) string {
	result := s.client.Spend(ctx, kora.SpendRequest{
		MandateID:   s.cfg.Kora.MandateID,
		Vendor:      in.Vendor,
		AmountCents: in.AmountCents,
		Currency:    in.Currency,
		Reason:      in.Reason,
	})
	if f := result.Failure; f != nil {
		s.logger.Warn("spend dispatch failed", zap.Int("kind", int(f.Kind)), zap.String("detail", f.Detail))
		if f.Kind == kora.FailureClient {
			return "❌ Error: " + f.Detail
		}
		return render.SpendUnavailable(f.Detail)
	}

	if result.Response.Approved() {
		return render.SpendApproved(result.Response, in.Vendor, in.AmountCents, in.Currency, in.Reason)
	}
	return render.SpendDenied(result.Response, in.Vendor, in.AmountCents, in.Currency)
}

// RecentActivity lists recent authorization decisions. Requires the admin
// key; without one the tool reports itself unavailable before any network
// call.
func (s *Service) RecentActivity(ctx context.Context, limit int) string {
	if s.cfg.Kora.AdminKey == "" {
		return render.NoAdminKey()
	}

	result := s.client.RecentActivity(ctx, s.cfg.Kora.MandateID, limit)
	if f := result.Failure; f != nil {
		s.logger.Warn("activity fetch failed", zap.Int("kind", int(f.Kind)), zap.String("detail", f.Detail))
		if f.Kind == kora.FailureClient {
			return "Error fetching recent activity: " + f.Detail
		}
		return render.HealthUnavailable(f.Detail)
	}
	return render.RecentActivity(result.Items, s.now())
}

// Health probes the authorization service. No authentication required.
func (s *Service) Health(ctx context.Context) string {
	result := s.client.Health(ctx)
	if f := result.Failure; f != nil {
		return render.HealthUnavailable(f.Detail)
	}
	h := result.Health
	return render.HealthOK(h.Version, h.Database, h.UptimeSeconds)
}

// Audit lists recent admin actions on the configured mandate. Requires the
// admin key.
func (s *Service) Audit(ctx context.Context, limit int, action string) string {
	if s.cfg.Kora.AdminKey == "" {
		return render.AuditNoAdminKey()
	}

	result := s.client.Audit(ctx, s.cfg.Kora.MandateID, limit, action)
	if f := result.Failure; f != nil {
		s.logger.Warn("audit fetch failed", zap.Int("kind", int(f.Kind)), zap.String("detail", f.Detail))
		if f.Kind == kora.FailureClient {
			return "Error fetching audit log: " + f.Detail
		}
		return render.HealthUnavailable(f.Detail)
	}
	return render.Audit(result.Entries, s.now())
}
