package operator

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/farm/internal/farm"
	"github.com/elys-network/farm/internal/types"
)

// PendingReward reports what a distribution at nowMS would pay the user,
// split between the two reward tokens, without mutating any ledger state.
func (o *Operator) PendingReward(poolIndex types.PoolIndex, user string, nowMS uint64) (primary, secondary sdkmath.Int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	pool, err := o.pools.Get(poolIndex)
	if err != nil {
		return sdkmath.Int{}, sdkmath.Int{}, err
	}
	position, err := o.positions.Get(poolIndex, user)
	if err != nil {
		return sdkmath.Int{}, sdkmath.Int{}, err
	}

	pending := farm.PendingAt(pool, position, o.window, o.totalAllocationPoint, o.params.EmissionRatePerMS, nowMS)
	if !pending.IsPositive() {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), nil
	}
	secondary = pending.Mul(sdkmath.NewIntFromUint64(o.params.RewardSplitPercent)).QuoRaw(100)
	return pending.Sub(secondary), secondary, nil
}

// Pools returns a copy of every pool's current state.
func (o *Operator) Pools() []types.Pool {
	o.mu.Lock()
	defer o.mu.Unlock()

	pools := make([]types.Pool, 0, o.pools.Len())
	o.pools.Each(func(pool *types.Pool) {
		pools = append(pools, *pool)
	})
	return pools
}

// Pool returns a copy of one pool's current state.
func (o *Operator) Pool(poolIndex types.PoolIndex) (types.Pool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	pool, err := o.pools.Get(poolIndex)
	if err != nil {
		return types.Pool{}, err
	}
	return *pool, nil
}

// Position returns a copy of one user's position in one pool.
func (o *Operator) Position(poolIndex types.PoolIndex, user string) (types.Position, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	position, err := o.positions.Get(poolIndex, user)
	if err != nil {
		return types.Position{}, err
	}
	return *position, nil
}

// Params returns the current farm-wide parameters and the allocation total.
func (o *Operator) Params() (types.FarmParameters, uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.params, o.totalAllocationPoint
}

// Window returns the farm's reward window.
func (o *Operator) Window() types.RewardWindow {
	return o.window
}

// CollectedFees reports the fee collector's current holdings.
func (o *Operator) CollectedFees() sdk.Coin {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.feeCollector.Collected()
}
