/*

This file contains the operator: the top-level coordinator that sequences
every farm use case. Each public operation runs ledger update, reward
distribution, stake mutation, and re-checkpointing as one atomic unit under
a single mutex; preconditions are checked before anything mutates, so a
returned error always means the farm state is untouched.

*/

package operator

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/elys-network/farm/internal/bank"
	"github.com/elys-network/farm/internal/farm"
	"github.com/elys-network/farm/internal/logger"
	"github.com/elys-network/farm/internal/types"
)

// Error definitions for the orchestration boundary.
var (
	ErrUnauthorized   = errors.New("admin capability token is not valid")
	ErrInvalidPercent = errors.New("percent value must be at most 100")
)

// ReceiptSink receives the audit records the operator emits after each
// completed operation. A nil sink disables persistence; store failures are
// logged, never propagated.
type ReceiptSink interface {
	SaveOperationReceipt(receipt types.OperationReceipt) error
	SavePoolSnapshot(snapshot types.PoolSnapshot) error
}

// Operator coordinates pools, positions, and the custody/fee/minting
// collaborators.
type Operator struct {
	mu sync.Mutex

	log    zerolog.Logger
	window types.RewardWindow
	params types.FarmParameters

	totalAllocationPoint uint64
	adminToken           string

	pools     *farm.PoolRegistry
	positions *farm.PositionRegistry

	stakeCustody    bank.Custody
	feeCollector    *bank.FeeCollector
	primaryMinter   bank.Minter
	secondaryMinter bank.Minter

	receipts ReceiptSink
}

// Config holds the dependencies for creating a new Operator.
type Config struct {
	Window          types.RewardWindow
	Params          types.FarmParameters
	AdminToken      string
	StakeCustody    bank.Custody
	FeeCollector    *bank.FeeCollector
	PrimaryMinter   bank.Minter
	SecondaryMinter bank.Minter
	Receipts        ReceiptSink // optional
}

// New creates an Operator with dependency injection.
func New(cfg Config) (*Operator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("operator configuration validation failed: %w", err)
	}

	op := &Operator{
		log:             logger.GetForComponent("operator"),
		window:          cfg.Window,
		params:          cfg.Params,
		adminToken:      cfg.AdminToken,
		pools:           farm.NewPoolRegistry(),
		positions:       farm.NewPositionRegistry(),
		stakeCustody:    cfg.StakeCustody,
		feeCollector:    cfg.FeeCollector,
		primaryMinter:   cfg.PrimaryMinter,
		secondaryMinter: cfg.SecondaryMinter,
		receipts:        cfg.Receipts,
	}

	op.log.Info().
		Uint64("windowStartMS", cfg.Window.StartMS).
		Uint64("windowEndMS", cfg.Window.EndMS).
		Uint64("emissionRatePerMS", cfg.Params.EmissionRatePerMS).
		Uint64("rewardSplitPercent", cfg.Params.RewardSplitPercent).
		Msg("Operator created")
	return op, nil
}

func validateConfig(cfg Config) error {
	if cfg.Window.EndMS <= cfg.Window.StartMS {
		return fmt.Errorf("reward window end %d must be after start %d", cfg.Window.EndMS, cfg.Window.StartMS)
	}
	if cfg.Params.RewardSplitPercent > 100 {
		return errors.Join(ErrInvalidPercent, fmt.Errorf("reward split %d", cfg.Params.RewardSplitPercent))
	}
	if cfg.AdminToken == "" {
		return errors.New("admin token cannot be empty")
	}
	if cfg.StakeCustody == nil {
		return errors.New("stake custody cannot be nil")
	}
	if cfg.FeeCollector == nil {
		return errors.New("fee collector cannot be nil")
	}
	if cfg.PrimaryMinter == nil || cfg.SecondaryMinter == nil {
		return errors.New("both reward minters are required")
	}
	return nil
}

// authorize compares a presented capability token against the configured
// admin token.
func (o *Operator) authorize(token string) error {
	if subtle.ConstantTimeCompare([]byte(token), []byte(o.adminToken)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// opLogger tags every log line of one orchestrated operation with a unique
// op id so a single operation can be traced end to end.
func (o *Operator) opLogger(kind string) (zerolog.Logger, string) {
	opID := uuid.New().String()
	return o.log.With().Str("op_id", opID).Str("op", kind).Logger(), opID
}

// IncreasePosition deposits amount into the user's position in the given
// pool, distributing any pending reward first. A zero amount is a legal pure
// harvest.
func (o *Operator) IncreasePosition(poolIndex types.PoolIndex, user string, amount uint64, nowMS uint64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	log, opID := o.opLogger(types.OpIncrease)

	pool, err := o.pools.Get(poolIndex)
	if err != nil {
		return err
	}
	if pool.Emergency {
		return farm.ErrPoolInEmergency
	}

	fee := o.feeCollector.FeeAmount(amount, pool.FeeRatePercent)
	net := amount - fee

	position, err := o.positions.Get(poolIndex, user)
	fresh := false
	if err != nil {
		position = farm.NewPosition(poolIndex)
		fresh = true
	}
	if net > math.MaxUint64-position.Staked || net > math.MaxUint64-pool.TotalStaked {
		return farm.ErrOverflow
	}

	// All preconditions hold; mutations start here.
	if fresh {
		if err := o.positions.Register(poolIndex, user, position); err != nil {
			return err
		}
	}

	farm.UpdatePool(pool, o.window, o.totalAllocationPoint, o.params.EmissionRatePerMS, nowMS)

	var primary, secondary sdkmath.Int
	if position.Staked > 0 {
		primary, secondary, err = o.distribute(user, farm.PendingRewards(pool, position))
		if err != nil {
			return err
		}
	} else {
		primary, secondary = sdkmath.ZeroInt(), sdkmath.ZeroInt()
	}

	if amount > 0 {
		if err := o.feeCollector.Collect(fee); err != nil {
			return err
		}
		if err := o.stakeCustody.Deposit(sdkmath.NewIntFromUint64(net)); err != nil {
			return err
		}
		if err := farm.IncreaseStake(position, net); err != nil {
			return err
		}
		pool.TotalStaked += net
	}

	farm.SetRewardDebt(position, farm.RewardsFor(pool, position))

	log.Info().
		Uint64("pool", uint64(poolIndex)).
		Str("user", user).
		Uint64("amount", amount).
		Uint64("fee", fee).
		Str("primaryReward", primary.String()).
		Str("secondaryReward", secondary.String()).
		Uint64("nowMS", nowMS).
		Msg("Position increased")

	o.record(types.OperationReceipt{
		OpID: opID, Kind: types.OpIncrease, PoolIndex: poolIndex, User: user,
		Amount: amount, FeePaid: fee,
		PrimaryReward: primary.String(), SecondaryReward: secondary.String(),
		Timestamp: time.Now(),
	}, pool)
	return nil
}

// DecreasePosition withdraws amount from the user's position, distributing
// any pending reward first, and returns the released funds.
func (o *Operator) DecreasePosition(poolIndex types.PoolIndex, user string, amount uint64, nowMS uint64) (sdk.Coin, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	log, opID := o.opLogger(types.OpDecrease)

	pool, err := o.pools.Get(poolIndex)
	if err != nil {
		return sdk.Coin{}, err
	}
	if pool.Emergency {
		return sdk.Coin{}, farm.ErrPoolInEmergency
	}
	position, err := o.positions.Get(poolIndex, user)
	if err != nil {
		return sdk.Coin{}, err
	}
	if amount > position.Staked {
		return sdk.Coin{}, farm.ErrInsufficientStake
	}

	farm.UpdatePool(pool, o.window, o.totalAllocationPoint, o.params.EmissionRatePerMS, nowMS)

	var primary, secondary sdkmath.Int
	if position.Staked > 0 {
		primary, secondary, err = o.distribute(user, farm.PendingRewards(pool, position))
		if err != nil {
			return sdk.Coin{}, err
		}
	} else {
		primary, secondary = sdkmath.ZeroInt(), sdkmath.ZeroInt()
	}

	funds := sdk.NewCoin(o.stakeCustody.Balance().Denom, sdkmath.ZeroInt())
	if amount > 0 {
		funds, err = o.stakeCustody.Withdraw(sdkmath.NewIntFromUint64(amount))
		if err != nil {
			// Unreachable with consistent accounting; fatal if hit.
			log.Error().Err(err).Msg("Stake custody rejected withdrawal")
			return sdk.Coin{}, err
		}
		if err := farm.DecreaseStake(position, amount); err != nil {
			return sdk.Coin{}, err
		}
		pool.TotalStaked -= amount
	}

	farm.SetRewardDebt(position, farm.RewardsFor(pool, position))

	log.Info().
		Uint64("pool", uint64(poolIndex)).
		Str("user", user).
		Uint64("amount", amount).
		Str("primaryReward", primary.String()).
		Str("secondaryReward", secondary.String()).
		Uint64("nowMS", nowMS).
		Msg("Position decreased")

	o.record(types.OperationReceipt{
		OpID: opID, Kind: types.OpDecrease, PoolIndex: poolIndex, User: user,
		Amount: amount,
		PrimaryReward: primary.String(), SecondaryReward: secondary.String(),
		Timestamp: time.Now(),
	}, pool)
	return funds, nil
}

// DecreasePositionEmergency returns the position's entire stake, bypassing
// reward distribution and fees. Valid only once the pool is in emergency
// state.
func (o *Operator) DecreasePositionEmergency(poolIndex types.PoolIndex, user string) (sdk.Coin, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	log, opID := o.opLogger(types.OpEmergencyWithdraw)

	pool, err := o.pools.Get(poolIndex)
	if err != nil {
		return sdk.Coin{}, err
	}
	if !pool.Emergency {
		return sdk.Coin{}, farm.ErrPoolNotInEmergency
	}
	position, err := o.positions.Get(poolIndex, user)
	if err != nil {
		return sdk.Coin{}, err
	}

	amount := position.Staked
	funds := sdk.NewCoin(o.stakeCustody.Balance().Denom, sdkmath.ZeroInt())
	if amount > 0 {
		funds, err = o.stakeCustody.Withdraw(sdkmath.NewIntFromUint64(amount))
		if err != nil {
			log.Error().Err(err).Msg("Stake custody rejected emergency withdrawal")
			return sdk.Coin{}, err
		}
		if err := farm.DecreaseStake(position, amount); err != nil {
			return sdk.Coin{}, err
		}
		pool.TotalStaked -= amount
	}
	farm.SetRewardDebt(position, sdkmath.ZeroInt())

	log.Warn().
		Uint64("pool", uint64(poolIndex)).
		Str("user", user).
		Uint64("amount", amount).
		Msg("Emergency withdrawal executed; unclaimed reward forfeited")

	o.record(types.OperationReceipt{
		OpID: opID, Kind: types.OpEmergencyWithdraw, PoolIndex: poolIndex, User: user,
		Amount:        amount,
		PrimaryReward: "0", SecondaryReward: "0",
		Timestamp: time.Now(),
	}, pool)
	return funds, nil
}

// distribute splits a pending reward between the two reward tokens and
// dispatches the minters, skipping a mint call entirely when its portion is
// zero.
func (o *Operator) distribute(user string, pending sdkmath.Int) (primary, secondary sdkmath.Int, err error) {
	if !pending.IsPositive() {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), nil
	}
	secondary = pending.Mul(sdkmath.NewIntFromUint64(o.params.RewardSplitPercent)).QuoRaw(100)
	primary = pending.Sub(secondary)
	if primary.IsPositive() {
		if err := o.primaryMinter.Mint(user, primary); err != nil {
			return sdkmath.ZeroInt(), sdkmath.ZeroInt(), fmt.Errorf("primary mint failed: %w", err)
		}
	}
	if secondary.IsPositive() {
		if err := o.secondaryMinter.Mint(user, secondary); err != nil {
			return sdkmath.ZeroInt(), sdkmath.ZeroInt(), fmt.Errorf("secondary mint failed: %w", err)
		}
	}
	return primary, secondary, nil
}

// MassUpdatePools brings every pool's ledger forward to nowMS. Invoked
// before any mutation of the emission rate or allocation weights so already
// elapsed time is settled against the pre-change rates.
func (o *Operator) MassUpdatePools(nowMS uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.massUpdatePoolsLocked(nowMS)
}

func (o *Operator) massUpdatePoolsLocked(nowMS uint64) {
	o.pools.Each(func(pool *types.Pool) {
		farm.UpdatePool(pool, o.window, o.totalAllocationPoint, o.params.EmissionRatePerMS, nowMS)
	})
}

// record persists an operation receipt and a snapshot of the acting pool.
// Persistence failures are logged and swallowed; the accounting state is
// already committed.
func (o *Operator) record(receipt types.OperationReceipt, pool *types.Pool) {
	if o.receipts == nil {
		return
	}
	if err := o.receipts.SaveOperationReceipt(receipt); err != nil {
		o.log.Error().Err(err).Str("op_id", receipt.OpID).Msg("Failed to persist operation receipt")
	}
	if pool == nil {
		return
	}
	snapshot := types.PoolSnapshot{
		PoolIndex:         pool.Index,
		AllocationPoint:   pool.AllocationPoint,
		TotalStaked:       pool.TotalStaked,
		AccRewardPerShare: pool.AccRewardPerShare.String(),
		LastRewardTimeMS:  pool.LastRewardTimeMS,
		Emergency:         pool.Emergency,
	}
	if err := o.receipts.SavePoolSnapshot(snapshot); err != nil {
		o.log.Error().Err(err).Str("op_id", receipt.OpID).Msg("Failed to persist pool snapshot")
	}
}
