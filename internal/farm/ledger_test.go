package farm

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/farm/internal/types"
)

func newTestPool(totalStaked, lastRewardMS uint64) *types.Pool {
	return &types.Pool{
		Index:             0,
		AllocationPoint:   100,
		TotalStaked:       totalStaked,
		AccRewardPerShare: sdkmath.ZeroInt(),
		LastRewardTimeMS:  lastRewardMS,
	}
}

func testWindow() types.RewardWindow {
	return types.RewardWindow{StartMS: 0, EndMS: 1_000_000}
}

func TestMultiplier(t *testing.T) {
	window := testWindow()

	t.Run("simple elapsed time", func(t *testing.T) {
		pool := newTestPool(100, 0)
		assert.Equal(t, uint64(50), Multiplier(pool, window, 50))
	})

	t.Run("clamped to window end", func(t *testing.T) {
		pool := newTestPool(100, 999_990)
		assert.Equal(t, uint64(10), Multiplier(pool, window, 2_000_000))
	})

	t.Run("zero after window end", func(t *testing.T) {
		pool := newTestPool(100, 1_000_000)
		assert.Equal(t, uint64(0), Multiplier(pool, window, 2_000_000))
	})

	t.Run("zero when time has not advanced", func(t *testing.T) {
		pool := newTestPool(100, 500)
		assert.Equal(t, uint64(0), Multiplier(pool, window, 500))
		assert.Equal(t, uint64(0), Multiplier(pool, window, 400))
	})
}

func TestUpdatePool(t *testing.T) {
	window := testWindow()

	t.Run("accrues per-share reward", func(t *testing.T) {
		pool := newTestPool(100, 0)
		UpdatePool(pool, window, 100, 100, 50)

		// 50ms * 100/ms * 100/100 alloc = 5000 reward over 100 staked.
		expected := sdkmath.NewInt(5000).Mul(Precision).QuoRaw(100)
		assert.Equal(t, expected, pool.AccRewardPerShare)
		assert.Equal(t, uint64(50), pool.LastRewardTimeMS)
	})

	t.Run("idempotent at same timestamp", func(t *testing.T) {
		pool := newTestPool(100, 0)
		UpdatePool(pool, window, 100, 100, 50)
		before := pool.AccRewardPerShare
		UpdatePool(pool, window, 100, 100, 50)
		assert.Equal(t, before, pool.AccRewardPerShare)
	})

	t.Run("stale timestamp is a no-op", func(t *testing.T) {
		pool := newTestPool(100, 50)
		UpdatePool(pool, window, 100, 100, 40)
		assert.True(t, pool.AccRewardPerShare.IsZero())
		assert.Equal(t, uint64(50), pool.LastRewardTimeMS)
	})

	t.Run("empty pool forfeits the interval", func(t *testing.T) {
		pool := newTestPool(0, 0)
		UpdatePool(pool, window, 100, 100, 500)

		assert.True(t, pool.AccRewardPerShare.IsZero())
		assert.Equal(t, uint64(500), pool.LastRewardTimeMS)

		// Stake arriving after the gap accrues only from here on.
		pool.TotalStaked = 100
		UpdatePool(pool, window, 100, 100, 510)
		expected := sdkmath.NewInt(1000).Mul(Precision).QuoRaw(100)
		assert.Equal(t, expected, pool.AccRewardPerShare)
	})

	t.Run("zero total allocation accrues nothing", func(t *testing.T) {
		pool := newTestPool(100, 0)
		UpdatePool(pool, window, 0, 100, 50)
		assert.True(t, pool.AccRewardPerShare.IsZero())
		assert.Equal(t, uint64(50), pool.LastRewardTimeMS)
	})

	t.Run("accumulator is monotonic", func(t *testing.T) {
		pool := newTestPool(100, 0)
		previous := pool.AccRewardPerShare
		for _, nowMS := range []uint64{10, 20, 30, 1_000_000, 2_000_000} {
			UpdatePool(pool, window, 100, 100, nowMS)
			assert.True(t, pool.AccRewardPerShare.GTE(previous))
			previous = pool.AccRewardPerShare
		}
	})
}

func TestPendingRewards(t *testing.T) {
	window := testWindow()

	pool := newTestPool(100, 0)
	position := NewPosition(0)
	require.NoError(t, IncreaseStake(position, 100))

	UpdatePool(pool, window, 100, 100, 50)

	// 100 staked * 50_000_000 accPerShare / 1_000_000 = 5000, nothing paid yet.
	assert.Equal(t, sdkmath.NewInt(5000), PendingRewards(pool, position))

	// After checkpointing the pending delta collapses to zero.
	SetRewardDebt(position, RewardsFor(pool, position))
	assert.True(t, PendingRewards(pool, position).IsZero(), "checkpointed position must not be paid twice")
}

func TestPendingAt(t *testing.T) {
	window := testWindow()

	pool := newTestPool(100, 0)
	position := NewPosition(0)
	require.NoError(t, IncreaseStake(position, 100))

	pending := PendingAt(pool, position, window, 100, 100, 50)
	assert.Equal(t, sdkmath.NewInt(5000), pending)

	// The read-only view must leave the ledger untouched.
	assert.True(t, pool.AccRewardPerShare.IsZero())
	assert.Equal(t, uint64(0), pool.LastRewardTimeMS)

	// And it must agree with what an actual update would produce.
	UpdatePool(pool, window, 100, 100, 50)
	assert.Equal(t, pending, PendingRewards(pool, position))
}

func TestPendingAtEmptyPool(t *testing.T) {
	window := testWindow()
	pool := newTestPool(0, 0)
	position := NewPosition(0)

	assert.True(t, PendingAt(pool, position, window, 100, 100, 500).IsZero())
}

func TestTruncatingDivision(t *testing.T) {
	window := testWindow()

	// Reward 10 over 3 staked -> perShare 3_333_333, truncated down.
	pool := newTestPool(3, 0)
	UpdatePool(pool, window, 100, 10, 1)
	assert.Equal(t, sdkmath.NewInt(3_333_333), pool.AccRewardPerShare)

	position := NewPosition(0)
	position.Staked = 3
	// 3 * 3_333_333 / 1_000_000 = 9, the truncated remainder stays unminted.
	assert.Equal(t, sdkmath.NewInt(9), PendingRewards(pool, position))
}
