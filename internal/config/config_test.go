package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamboard/teamboard/pkg/models"
)

// configEnvVars lists every variable LoadConfig reads, so tests can save
// and clear them without leaking state between cases.
var configEnvVars = []string{
	"GITHUB_TOKEN", "GH_TOKEN", "GITHUB_DOMAIN",
	"COLLECT_OWNERS", "COLLECT_REPO_PATTERNS",
	"COLLECT_PAGE_DELAY_MS", "COLLECT_DUPLICATE_POLICY", "COLLECT_OUTPUT",
	"COLLECT_PREFIX_RULES", "COLLECT_COLOR_RULES",
}

func withEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, name := range configEnvVars {
		orig, had := os.LookupEnv(name)
		require.NoError(t, os.Unsetenv(name))
		if had {
			t.Cleanup(func() { os.Setenv(name, orig) })
		}
	}
	for name, value := range env {
		require.NoError(t, os.Setenv(name, value))
		t.Cleanup(func() { os.Unsetenv(name) })
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "Minimal valid configuration",
			env: map[string]string{
				"GITHUB_TOKEN":   "test-token",
				"COLLECT_OWNERS": "teamboard",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "test-token", cfg.GitHub.Token)
				assert.Equal(t, []string{"teamboard"}, cfg.Collect.Owners)
				assert.Equal(t, 100*time.Millisecond, cfg.Collect.PageDelay)
				assert.Equal(t, "last-wins", cfg.Collect.DuplicatePolicy)
				assert.Equal(t, "data/dashboard.json", cfg.Collect.Output)
			},
		},
		{
			name: "Token from fallback name",
			env: map[string]string{
				"GH_TOKEN":       "fallback-token",
				"COLLECT_OWNERS": "teamboard",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "fallback-token", cfg.GitHub.Token)
			},
		},
		{
			name: "Primary token name wins over fallback",
			env: map[string]string{
				"GITHUB_TOKEN":   "primary",
				"GH_TOKEN":       "fallback",
				"COLLECT_OWNERS": "teamboard",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "primary", cfg.GitHub.Token)
			},
		},
		{
			name:    "Missing token",
			env:     map[string]string{"COLLECT_OWNERS": "teamboard"},
			wantErr: true,
		},
		{
			name:    "Missing owners",
			env:     map[string]string{"GITHUB_TOKEN": "test-token"},
			wantErr: true,
		},
		{
			name: "Invalid duplicate policy",
			env: map[string]string{
				"GITHUB_TOKEN":             "test-token",
				"COLLECT_OWNERS":           "teamboard",
				"COLLECT_DUPLICATE_POLICY": "middle-wins",
			},
			wantErr: true,
		},
		{
			name: "Lists and overrides",
			env: map[string]string{
				"GITHUB_TOKEN":          "test-token",
				"COLLECT_OWNERS":        "teamboard, acme",
				"COLLECT_REPO_PATTERNS": "ErCore*,*-service",
				"COLLECT_PAGE_DELAY_MS": "250",
				"COLLECT_OUTPUT":        "out/board.json",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"teamboard", "acme"}, cfg.Collect.Owners)
				assert.Equal(t, []string{"ErCore*", "*-service"}, cfg.Collect.RepoPatterns)
				assert.Equal(t, 250*time.Millisecond, cfg.Collect.PageDelay)
				assert.Equal(t, "out/board.json", cfg.Collect.Output)
			},
		},
		{
			name: "Custom rule sets preserve order",
			env: map[string]string{
				"GITHUB_TOKEN":         "test-token",
				"COLLECT_OWNERS":       "teamboard",
				"COLLECT_PREFIX_RULES": "Board*=BRD, *=GEN",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []models.Rule{
					{Pattern: "Board*", Value: "BRD"},
					{Pattern: "*", Value: "GEN"},
				}, cfg.Rules.Prefix)
			},
		},
		{
			name: "Malformed rule",
			env: map[string]string{
				"GITHUB_TOKEN":         "test-token",
				"COLLECT_OWNERS":       "teamboard",
				"COLLECT_PREFIX_RULES": "no-equals-sign",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withEnv(t, tt.env)

			cfg, err := LoadConfig()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestDefaultRules(t *testing.T) {
	withEnv(t, map[string]string{
		"GITHUB_TOKEN":   "test-token",
		"COLLECT_OWNERS": "teamboard",
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)

	// Both default rule sets end in a catch-all so every repository
	// gets a prefix and a color.
	require.NotEmpty(t, cfg.Rules.Prefix)
	require.NotEmpty(t, cfg.Rules.Color)
	assert.Equal(t, "*", cfg.Rules.Prefix[len(cfg.Rules.Prefix)-1].Pattern)
	assert.Equal(t, "*", cfg.Rules.Color[len(cfg.Rules.Color)-1].Pattern)
}
