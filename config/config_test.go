package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("KORA_AGENT_SECRET", "kora_agent_sk_dGVzdA==")
	t.Setenv("KORA_MANDATE", "m_1")
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr string
		check   func(*testing.T, *Config)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "development", cfg.Environment)
				assert.True(t, cfg.IsDevelopment())
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 8765, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
				assert.Equal(t, DefaultBaseURL, cfg.Kora.BaseURL)
				assert.Empty(t, cfg.Kora.AdminKey)
				assert.Equal(t, "info", cfg.LogLevel)
			},
		},
		{
			name: "overrides",
			envVars: map[string]string{
				"ENVIRONMENT":             "production",
				"SERVER_HOST":             "0.0.0.0",
				"SERVER_PORT":             "9000",
				"SERVER_READ_TIMEOUT":     "5s",
				"SERVER_SHUTDOWN_TIMEOUT": "30s",
				"KORA_API_URL":            "http://localhost:8000",
				"KORA_ADMIN_KEY":          "admin_secret",
				"LOG_LEVEL":               "debug",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.IsDevelopment())
				assert.Equal(t, "0.0.0.0:9000", cfg.Server.Address())
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
				assert.Equal(t, "http://localhost:8000", cfg.Kora.BaseURL)
				assert.Equal(t, "admin_secret", cfg.Kora.AdminKey)
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
		{
			name: "invalid numeric values fall back to defaults",
			envVars: map[string]string{
				"SERVER_PORT":         "not-a-number",
				"SERVER_READ_TIMEOUT": "soon",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8765, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
			},
		},
		{
			name:    "missing agent secret",
			envVars: map[string]string{"KORA_AGENT_SECRET": ""},
			wantErr: "KORA_AGENT_SECRET",
		},
		{
			name:    "missing mandate",
			envVars: map[string]string{"KORA_MANDATE": ""},
			wantErr: "KORA_MANDATE",
		},
		{
			name:    "port out of range",
			envVars: map[string]string{"SERVER_PORT": "70000"},
			wantErr: "invalid server port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := New()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8765},
			Kora: KoraConfig{
				AgentSecret: "kora_agent_sk_dGVzdA==",
				MandateID:   "m_1",
				BaseURL:     DefaultBaseURL,
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("empty base URL", func(t *testing.T) {
		cfg := valid()
		cfg.Kora.BaseURL = ""
		assert.Error(t, cfg.Validate())
	})
}
