package farm

import (
	"math"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/farm/internal/types"
)

// NewPosition creates an empty position for a pool. Positions are created
// lazily on first deposit and never deleted; a fully withdrawn position
// keeps its record with zero stake.
func NewPosition(poolIndex types.PoolIndex) *types.Position {
	return &types.Position{
		PoolIndex:  poolIndex,
		Staked:     0,
		RewardDebt: sdkmath.ZeroInt(),
	}
}

// IncreaseStake adds amount to the position's stake. Fails with ErrOverflow
// if the sum would leave the uint64 range; the position is untouched on error.
func IncreaseStake(position *types.Position, amount uint64) error {
	if amount > math.MaxUint64-position.Staked {
		return ErrOverflow
	}
	position.Staked += amount
	return nil
}

// DecreaseStake removes amount from the position's stake. Fails with
// ErrInsufficientStake if amount exceeds the current stake.
func DecreaseStake(position *types.Position, amount uint64) error {
	if amount > position.Staked {
		return ErrInsufficientStake
	}
	position.Staked -= amount
	return nil
}

// SetRewardDebt unconditionally overwrites the position's checkpoint. The
// operator calls this after every distribution and after every stake change;
// calling it at any other moment silently discards unclaimed reward.
func SetRewardDebt(position *types.Position, debt sdkmath.Int) {
	position.RewardDebt = debt
}
