package farm

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/farm/internal/types"
)

func TestPoolRegistry(t *testing.T) {
	registry := NewPoolRegistry()
	assert.Equal(t, 0, registry.Len())

	_, err := registry.Get(0)
	require.ErrorIs(t, err, ErrPoolNotFound)

	first := &types.Pool{AllocationPoint: 100, AccRewardPerShare: sdkmath.ZeroInt()}
	second := &types.Pool{AllocationPoint: 200, AccRewardPerShare: sdkmath.ZeroInt()}

	assert.Equal(t, types.PoolIndex(0), registry.Append(first))
	assert.Equal(t, types.PoolIndex(1), registry.Append(second))
	assert.Equal(t, 2, registry.Len())

	// Append stamps each pool with its own index.
	assert.Equal(t, types.PoolIndex(0), first.Index)
	assert.Equal(t, types.PoolIndex(1), second.Index)

	got, err := registry.Get(1)
	require.NoError(t, err)
	assert.Same(t, second, got)

	var visited []types.PoolIndex
	registry.Each(func(pool *types.Pool) {
		visited = append(visited, pool.Index)
	})
	assert.Equal(t, []types.PoolIndex{0, 1}, visited)
}

func TestPositionRegistry(t *testing.T) {
	registry := NewPositionRegistry()

	_, err := registry.Get(0, "alice")
	require.ErrorIs(t, err, ErrPositionNotFound)
	assert.False(t, registry.Has(0, "alice"))

	alice := NewPosition(0)
	require.NoError(t, registry.Register(0, "alice", alice))
	assert.True(t, registry.Has(0, "alice"))

	err = registry.Register(0, "alice", NewPosition(0))
	require.ErrorIs(t, err, ErrDuplicateRegistration)

	// Same user in another pool is a distinct position.
	require.NoError(t, registry.Register(1, "alice", NewPosition(1)))

	got, err := registry.Get(0, "alice")
	require.NoError(t, err)
	assert.Same(t, alice, got)
}

func TestTotalStakedIn(t *testing.T) {
	registry := NewPositionRegistry()

	alice := NewPosition(0)
	bob := NewPosition(0)
	carol := NewPosition(1)
	require.NoError(t, IncreaseStake(alice, 100))
	require.NoError(t, IncreaseStake(bob, 250))
	require.NoError(t, IncreaseStake(carol, 999))

	require.NoError(t, registry.Register(0, "alice", alice))
	require.NoError(t, registry.Register(0, "bob", bob))
	require.NoError(t, registry.Register(1, "carol", carol))

	assert.Equal(t, uint64(350), registry.TotalStakedIn(0))
	assert.Equal(t, uint64(999), registry.TotalStakedIn(1))
	assert.Equal(t, uint64(0), registry.TotalStakedIn(2))
}
