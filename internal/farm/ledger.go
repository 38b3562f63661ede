/*

This file contains the reward ledger math. A pool carries a single running
"accumulated reward per share" total; positions checkpoint against it via
their reward debt. That makes per-user reward computation O(1) no matter how
many other users touched the pool in between.

All reward arithmetic goes through sdkmath.Int so the scaled intermediates
(reward * Precision, stake * accumulator) never overflow, and all divisions
truncate: rounding always favors the protocol.

*/

package farm

import (
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/farm/internal/types"
)

// Precision scales AccRewardPerShare so sub-unit per-share rewards survive
// integer arithmetic.
var Precision = sdkmath.NewInt(1_000_000)

// Multiplier returns the reward-bearing time elapsed between the pool's last
// ledger update and toMS, clamped to the reward window. Zero once the pool
// has already been updated at or past the window end.
func Multiplier(pool *types.Pool, window types.RewardWindow, toMS uint64) uint64 {
	if pool.LastRewardTimeMS >= window.EndMS {
		return 0
	}
	if toMS > window.EndMS {
		toMS = window.EndMS
	}
	if toMS <= pool.LastRewardTimeMS {
		return 0
	}
	return toMS - pool.LastRewardTimeMS
}

// accruedReward computes the pool's share of global emission over the
// interval [pool.LastRewardTimeMS, nowMS], in unscaled reward units.
func accruedReward(pool *types.Pool, window types.RewardWindow, totalAllocationPoint, emissionRatePerMS, nowMS uint64) sdkmath.Int {
	if totalAllocationPoint == 0 {
		return sdkmath.ZeroInt()
	}
	multiplier := Multiplier(pool, window, nowMS)
	if multiplier == 0 {
		return sdkmath.ZeroInt()
	}
	return sdkmath.NewIntFromUint64(multiplier).
		Mul(sdkmath.NewIntFromUint64(emissionRatePerMS)).
		Mul(sdkmath.NewIntFromUint64(pool.AllocationPoint)).
		Quo(sdkmath.NewIntFromUint64(totalAllocationPoint))
}

// UpdatePool brings the pool's ledger forward to nowMS.
//
// A call with nowMS at or before the last update is a no-op, so repeated
// calls within the same instant are idempotent. While the pool is empty the
// timestamp still advances but the accumulator does not: reward for an
// unstaked interval is forfeited, not carried forward.
func UpdatePool(pool *types.Pool, window types.RewardWindow, totalAllocationPoint, emissionRatePerMS, nowMS uint64) {
	if nowMS <= pool.LastRewardTimeMS {
		return
	}
	if pool.TotalStaked == 0 {
		pool.LastRewardTimeMS = nowMS
		return
	}
	reward := accruedReward(pool, window, totalAllocationPoint, emissionRatePerMS, nowMS)
	if reward.IsPositive() {
		perShare := reward.Mul(Precision).Quo(sdkmath.NewIntFromUint64(pool.TotalStaked))
		pool.AccRewardPerShare = pool.AccRewardPerShare.Add(perShare)
	}
	pool.LastRewardTimeMS = nowMS
}

// RewardsFor returns the position's total lifetime accrued reward at the
// pool's current ledger state, before netting out what was already paid.
func RewardsFor(pool *types.Pool, position *types.Position) sdkmath.Int {
	return sdkmath.NewIntFromUint64(position.Staked).
		Mul(pool.AccRewardPerShare).
		Quo(Precision)
}

// PendingRewards returns the unpaid delta since the position's last
// checkpoint. This is the amount actually distributed to the user.
func PendingRewards(pool *types.Pool, position *types.Position) sdkmath.Int {
	return RewardsFor(pool, position).Sub(position.RewardDebt)
}

// PendingAt answers "what would PendingRewards return if the ledger were
// updated at nowMS" without mutating the pool. Used by the read-only query
// surface; it mirrors UpdatePool against scratch values.
func PendingAt(pool *types.Pool, position *types.Position, window types.RewardWindow, totalAllocationPoint, emissionRatePerMS, nowMS uint64) sdkmath.Int {
	accPerShare := pool.AccRewardPerShare
	if nowMS > pool.LastRewardTimeMS && pool.TotalStaked > 0 {
		reward := accruedReward(pool, window, totalAllocationPoint, emissionRatePerMS, nowMS)
		if reward.IsPositive() {
			accPerShare = accPerShare.Add(reward.Mul(Precision).Quo(sdkmath.NewIntFromUint64(pool.TotalStaked)))
		}
	}
	return sdkmath.NewIntFromUint64(position.Staked).
		Mul(accPerShare).
		Quo(Precision).
		Sub(position.RewardDebt)
}
