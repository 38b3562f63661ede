/*

This file contains the farm-wide parameter set. These values are shared by
every pool and are mutated only by admin operations; the operator mass
updates all pool ledgers before applying any change that alters accrual.

*/

package types

// FarmParameters is the global, admin-mutable configuration of the farm.
type FarmParameters struct {
	EmissionRatePerMS  uint64 `json:"emission_rate_per_ms"` // reward units minted per millisecond across all pools
	RewardSplitPercent uint64 `json:"reward_split_percent"` // share of each payout diverted to the secondary token, parts per hundred
}
