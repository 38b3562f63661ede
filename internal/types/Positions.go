/*

This file contains the position type: one user's staking record within one
pool, consisting of the staked amount and the reward checkpoint.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// Position tracks stake and checkpoint only. It knows nothing about pool
// state or time; the operator is responsible for sequencing ledger updates,
// reward distribution, and checkpointing around any mutation.
type Position struct {
	PoolIndex  PoolIndex   `json:"pool_index"` // immutable after creation
	Staked     uint64      `json:"staked"`
	RewardDebt sdkmath.Int `json:"reward_debt"` // lifetime reward already attributed to this position, scaled
}

// OperationReceipt records one completed orchestrated operation for the
// audit trail. Reward amounts are decimal strings for the same NUMERIC
// round-trip reason as PoolSnapshot.
type OperationReceipt struct {
	ReceiptID       int64     `json:"receipt_id,omitempty"` // auto-incremented by DB
	OpID            string    `json:"op_id"`
	Kind            string    `json:"kind"`
	PoolIndex       PoolIndex `json:"pool_index"`
	User            string    `json:"user"`
	Amount          uint64    `json:"amount"`
	FeePaid         uint64    `json:"fee_paid"`
	PrimaryReward   string    `json:"primary_reward"`
	SecondaryReward string    `json:"secondary_reward"`
	Timestamp       time.Time `json:"timestamp"`
}

// Receipt kinds.
const (
	OpIncrease          = "increase"
	OpDecrease          = "decrease"
	OpEmergencyWithdraw = "emergency_withdraw"
	OpCreatePool        = "create_pool"
	OpSetAllocation     = "set_allocation"
	OpSetEmissionRate   = "set_emission_rate"
	OpStopReward        = "stop_reward"
)
