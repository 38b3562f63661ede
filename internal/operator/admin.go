/*

This file contains the capability-gated admin surface. Every operation that
changes the emission rate or an allocation weight mass updates all pool
ledgers first, so no pool retroactively applies a new rate to time that
elapsed under the old one. StopReward deliberately does not: once the kill
switch is thrown nothing accrues, not even for elapsed, unsettled time.

*/

package operator

import (
	"errors"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/farm/internal/types"
)

// CreatePool registers a new staking pool with the given allocation weight
// and deposit fee rate, and returns its index. Pools are never deleted.
func (o *Operator) CreatePool(token string, allocationPoint, feeRatePercent uint64, nowMS uint64) (types.PoolIndex, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.authorize(token); err != nil {
		return 0, err
	}
	if feeRatePercent > 100 {
		return 0, errors.Join(ErrInvalidPercent, fmt.Errorf("fee rate %d", feeRatePercent))
	}

	log, opID := o.opLogger(types.OpCreatePool)

	o.massUpdatePoolsLocked(nowMS)

	lastReward := nowMS
	if lastReward < o.window.StartMS {
		lastReward = o.window.StartMS
	}
	pool := &types.Pool{
		AllocationPoint:   allocationPoint,
		FeeRatePercent:    feeRatePercent,
		AccRewardPerShare: sdkmath.ZeroInt(),
		LastRewardTimeMS:  lastReward,
	}
	o.totalAllocationPoint += allocationPoint
	index := o.pools.Append(pool)

	log.Info().
		Uint64("pool", uint64(index)).
		Uint64("allocationPoint", allocationPoint).
		Uint64("feeRatePercent", feeRatePercent).
		Uint64("totalAllocationPoint", o.totalAllocationPoint).
		Msg("Pool created")

	o.record(types.OperationReceipt{
		OpID: opID, Kind: types.OpCreatePool, PoolIndex: index,
		Amount: allocationPoint, Timestamp: time.Now(),
		PrimaryReward: "0", SecondaryReward: "0",
	}, pool)
	return index, nil
}

// SetAllocationPoint changes a pool's share of the global emission. The mass
// update runs while the global total still reflects the old weight, then the
// total is corrected by the delta.
func (o *Operator) SetAllocationPoint(token string, poolIndex types.PoolIndex, newPoint uint64, nowMS uint64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.authorize(token); err != nil {
		return err
	}
	pool, err := o.pools.Get(poolIndex)
	if err != nil {
		return err
	}

	log, opID := o.opLogger(types.OpSetAllocation)

	o.massUpdatePoolsLocked(nowMS)

	o.totalAllocationPoint = o.totalAllocationPoint - pool.AllocationPoint + newPoint
	old := pool.AllocationPoint
	pool.AllocationPoint = newPoint

	log.Info().
		Uint64("pool", uint64(poolIndex)).
		Uint64("oldPoint", old).
		Uint64("newPoint", newPoint).
		Uint64("totalAllocationPoint", o.totalAllocationPoint).
		Msg("Allocation point changed")

	o.record(types.OperationReceipt{
		OpID: opID, Kind: types.OpSetAllocation, PoolIndex: poolIndex,
		Amount: newPoint, Timestamp: time.Now(),
		PrimaryReward: "0", SecondaryReward: "0",
	}, pool)
	return nil
}

// SetEmissionRate changes the global reward emission rate after settling all
// pools against the old rate.
func (o *Operator) SetEmissionRate(token string, ratePerMS uint64, nowMS uint64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.authorize(token); err != nil {
		return err
	}

	log, opID := o.opLogger(types.OpSetEmissionRate)

	o.massUpdatePoolsLocked(nowMS)
	old := o.params.EmissionRatePerMS
	o.params.EmissionRatePerMS = ratePerMS

	log.Info().
		Uint64("oldRatePerMS", old).
		Uint64("newRatePerMS", ratePerMS).
		Msg("Emission rate changed")

	o.record(types.OperationReceipt{
		OpID: opID, Kind: types.OpSetEmissionRate,
		Amount: ratePerMS, Timestamp: time.Now(),
		PrimaryReward: "0", SecondaryReward: "0",
	}, nil)
	return nil
}

// SetRewardSplitPercent changes the share of each payout diverted to the
// secondary token. The split only applies at distribution time, so no ledger
// settlement is needed.
func (o *Operator) SetRewardSplitPercent(token string, percent uint64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.authorize(token); err != nil {
		return err
	}
	if percent > 100 {
		return errors.Join(ErrInvalidPercent, fmt.Errorf("reward split %d", percent))
	}
	o.params.RewardSplitPercent = percent
	o.log.Info().Uint64("rewardSplitPercent", percent).Msg("Reward split changed")
	return nil
}

// SetFeeRate changes a pool's deposit fee rate.
func (o *Operator) SetFeeRate(token string, poolIndex types.PoolIndex, percent uint64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.authorize(token); err != nil {
		return err
	}
	if percent > 100 {
		return errors.Join(ErrInvalidPercent, fmt.Errorf("fee rate %d", percent))
	}
	pool, err := o.pools.Get(poolIndex)
	if err != nil {
		return err
	}
	pool.FeeRatePercent = percent
	o.log.Info().Uint64("pool", uint64(poolIndex)).Uint64("feeRatePercent", percent).Msg("Fee rate changed")
	return nil
}

// WithdrawCollectedFees releases previously collected deposit fees.
func (o *Operator) WithdrawCollectedFees(token string, amount sdkmath.Int) (sdk.Coin, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.authorize(token); err != nil {
		return sdk.Coin{}, err
	}
	funds, err := o.feeCollector.WithdrawCollected(amount)
	if err != nil {
		return sdk.Coin{}, err
	}
	o.log.Info().Str("amount", funds.String()).Msg("Collected fees withdrawn")
	return funds, nil
}

// StopReward is the one-way, system-wide kill switch: every pool flips to
// emergency state and the emission rate drops to zero. There is intentionally
// no final mass update first; elapsed-but-unsettled reward time is discarded.
func (o *Operator) StopReward(token string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.authorize(token); err != nil {
		return err
	}

	log, opID := o.opLogger(types.OpStopReward)

	o.pools.Each(func(pool *types.Pool) {
		pool.Emergency = true
	})
	o.params.EmissionRatePerMS = 0

	log.Warn().
		Int("pools", o.pools.Len()).
		Msg("Reward emission stopped; all pools in emergency state")

	o.record(types.OperationReceipt{
		OpID: opID, Kind: types.OpStopReward, Timestamp: time.Now(),
		PrimaryReward: "0", SecondaryReward: "0",
	}, nil)
	return nil
}
