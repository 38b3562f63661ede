/*

This file contains the pool type: the per-asset staking bucket together with
its reward ledger state.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

type PoolIndex uint64

// Pool is one staking bucket. AccRewardPerShare is the running total of
// reward earned per unit staked since pool inception, scaled by the ledger
// precision constant. It only ever grows.
type Pool struct {
	Index             PoolIndex   `json:"index"`
	AllocationPoint   uint64      `json:"allocation_point"` // relative share of the global emission rate
	FeeRatePercent    uint64      `json:"fee_rate_percent"` // deposit fee, parts per hundred
	TotalStaked       uint64      `json:"total_staked"`     // sum of all live positions in this pool
	AccRewardPerShare sdkmath.Int `json:"acc_reward_per_share"`
	LastRewardTimeMS  uint64      `json:"last_reward_time_ms"` // wall clock of the last ledger recompute
	Emergency         bool        `json:"emergency"`           // one-way; only emergency full-withdraw allowed once set
}

// RewardWindow bounds reward accrual for the whole farm. No reward accrues
// before StartMS or after EndMS.
type RewardWindow struct {
	StartMS uint64 `json:"start_ms"`
	EndMS   uint64 `json:"end_ms"`
}

// PoolSnapshot is the persisted form of a pool's ledger state at a point in
// time. AccRewardPerShare is kept as a decimal string so it survives NUMERIC
// round trips regardless of magnitude.
type PoolSnapshot struct {
	SnapshotID        int64     `json:"snapshot_id,omitempty"` // auto-incremented by DB
	PoolIndex         PoolIndex `json:"pool_index"`
	AllocationPoint   uint64    `json:"allocation_point"`
	TotalStaked       uint64    `json:"total_staked"`
	AccRewardPerShare string    `json:"acc_reward_per_share"`
	LastRewardTimeMS  uint64    `json:"last_reward_time_ms"`
	Emergency         bool      `json:"emergency"`
}
