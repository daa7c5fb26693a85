package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeBoardFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestBoardConfigDefaultsWithoutFile(t *testing.T) {
	holder, err := NewBoardConfigHolder(Config{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, []string{"occupied"}, cfg.OccupiedStatusKeys)
	assert.Equal(t, 90, cfg.LogRetentionDays)
	assert.False(t, cfg.AutoReset.Enabled)
	assert.Equal(t, "04:00", cfg.AutoReset.At)
	assert.Equal(t, ResetScopeAll, cfg.AutoReset.Scope)
	assert.Equal(t, []ResetRule{{From: "cleaning", To: "vacant"}, {From: "hold", To: "vacant"}}, cfg.AutoReset.Rules)
	assert.Equal(t, 30, cfg.Display.RefreshInterval)
}

func TestBoardConfigFromFile(t *testing.T) {
	path := writeBoardFile(t, `
occupied_status_keys: [occupied, isolation]
log_retention_days: 0
auto_reset:
  enabled: true
  at: "05:30"
  timezone: UTC
  scope: area
  areas: [11, 12]
  rules:
    - from: cleaning
      to: vacant
theme:
  default: dark
`)
	holder, err := NewBoardConfigHolder(Config{BoardConfigPath: path}, zaptest.NewLogger(t))
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, []string{"occupied", "isolation"}, cfg.OccupiedStatusKeys)
	assert.Equal(t, 0, cfg.LogRetentionDays)
	assert.True(t, cfg.AutoReset.Enabled)
	assert.Equal(t, []int64{11, 12}, cfg.AutoReset.AreaIDs)
	assert.Equal(t, []ResetRule{{From: "cleaning", To: "vacant"}}, cfg.AutoReset.Rules)
	assert.Equal(t, "dark", cfg.Theme.Default)

	hour, minute, err := cfg.AutoReset.Cutoff()
	require.NoError(t, err)
	assert.Equal(t, 5, hour)
	assert.Equal(t, 30, minute)
}

func TestBoardConfigRejectsMalformedScope(t *testing.T) {
	cases := map[string]string{
		"unknown scope":    "auto_reset:\n  scope: ward\n",
		"area without ids": "auto_reset:\n  scope: area\n",
		"bad cutoff":       "auto_reset:\n  at: \"25:00\"\n",
		"bad log mode":     "auto_reset:\n  log_mode: verbose\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeBoardFile(t, body)
			_, err := NewBoardConfigHolder(Config{BoardConfigPath: path}, zaptest.NewLogger(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidBoardConfig))
		})
	}
}

func TestStaticHolderNormalizes(t *testing.T) {
	cfg := DefaultBoardConfig()
	cfg.AutoReset.Scope = " ALL "
	cfg.OccupiedStatusKeys = []string{" occupied ", ""}
	holder := NewStaticBoardConfigHolder(cfg)

	got := holder.Get()
	assert.Equal(t, ResetScopeAll, got.AutoReset.Scope)
	assert.Equal(t, []string{"occupied"}, got.OccupiedStatusKeys)
}
