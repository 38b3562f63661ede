package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFullEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FARM_WINDOW_START_MS", "1000")
	t.Setenv("FARM_WINDOW_END_MS", "2000")
	t.Setenv("FARM_EMISSION_RATE_PER_MS", "100")
	t.Setenv("FARM_REWARD_SPLIT_PERCENT", "10")
	t.Setenv("FARM_ADMIN_TOKEN", "secret")
	t.Setenv("FARM_STAKED_DENOM", "uelys")
	t.Setenv("FARM_PRIMARY_REWARD_DENOM", "uelys")
	t.Setenv("FARM_SECONDARY_REWARD_DENOM", "ueden")
}

func TestLoadConfig(t *testing.T) {
	setFullEnv(t)
	require.NoError(t, LoadConfig())

	assert.Equal(t, uint64(1000), WindowStartMS)
	assert.Equal(t, uint64(2000), WindowEndMS)
	assert.Equal(t, uint64(100), EmissionRatePerMS)
	assert.Equal(t, uint64(10), RewardSplitPercent)
	assert.Equal(t, "secret", AdminToken)
	assert.Equal(t, "ueden", SecondaryRewardDenom)
}

func TestLoadConfigRejectsInvertedWindow(t *testing.T) {
	setFullEnv(t)
	t.Setenv("FARM_WINDOW_END_MS", "1000")
	require.Error(t, LoadConfig())
}

func TestLoadConfigRejectsOversizedSplit(t *testing.T) {
	setFullEnv(t)
	t.Setenv("FARM_REWARD_SPLIT_PERCENT", "101")
	require.Error(t, LoadConfig())
}

func TestLoadConfigRequiresAllVariables(t *testing.T) {
	setFullEnv(t)
	t.Setenv("FARM_ADMIN_TOKEN", "")
	require.Error(t, LoadConfig())
}
