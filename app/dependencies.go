package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/koraprotocol/kora-agent-go/config"
	"github.com/koraprotocol/kora-agent-go/services/kora"
	"github.com/koraprotocol/kora-agent-go/services/signing"
	"github.com/koraprotocol/kora-agent-go/services/tools"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	Identity *signing.AgentIdentity
	Client   *kora.Client
	Tools    *tools.Service
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	identity, err := signing.ParseAgentKey(cfg.Kora.AgentSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to parse agent credential: %w", err)
	}

	client := kora.NewClient(kora.Config{
		BaseURL:  cfg.Kora.BaseURL,
		AdminKey: cfg.Kora.AdminKey,
		Identity: identity,
	}, logger)

	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Identity: identity,
		Client:   client,
		Tools:    tools.NewService(cfg, client, logger),
	}

	logger.Info("all dependencies initialized",
		zap.String("agent_id", identity.AgentID),
		zap.String("kora_api", cfg.Kora.BaseURL))
	return deps, nil
}

// Close gracefully shuts down all dependencies.
func (d *Dependencies) Close() {
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}
}
