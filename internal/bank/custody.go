/*

This file contains the asset-custody collaborators the operator drives: the
stake reserve, the deposit-fee collector, and the reward-token minters. They
hold funds and enforce their own balance invariants but know nothing about
reward accounting.

*/

package bank

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/farm/internal/logger"
)

// Error definitions for custody operations.
var (
	ErrInsufficientReserve = errors.New("withdrawal exceeds held reserve")
	ErrInvalidAmount       = errors.New("amount is invalid")
)

var bankLogger = logger.GetForComponent("bank")

// Custody holds deposited funds of a single denom and releases them on
// withdrawal. Deployments backed by a chain module implement the same
// contract.
type Custody interface {
	Deposit(amount sdkmath.Int) error
	Withdraw(amount sdkmath.Int) (sdk.Coin, error)
	Balance() sdk.Coin
}

// Reserve is the in-memory Custody implementation.
type Reserve struct {
	denom   string
	balance sdkmath.Int
}

func NewReserve(denom string) *Reserve {
	return &Reserve{denom: denom, balance: sdkmath.ZeroInt()}
}

func (r *Reserve) Deposit(amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return errors.Join(ErrInvalidAmount, fmt.Errorf("cannot deposit %s", amount))
	}
	r.balance = r.balance.Add(amount)
	return nil
}

// Withdraw releases amount from the reserve. Fails with
// ErrInsufficientReserve if the reserve does not hold that much; with correct
// upstream accounting this branch is unreachable, so hitting it signals a
// consistency violation.
func (r *Reserve) Withdraw(amount sdkmath.Int) (sdk.Coin, error) {
	if amount.IsNil() || amount.IsNegative() {
		return sdk.Coin{}, errors.Join(ErrInvalidAmount, fmt.Errorf("cannot withdraw %s", amount))
	}
	if amount.GT(r.balance) {
		bankLogger.Error().
			Str("denom", r.denom).
			Str("requested", amount.String()).
			Str("held", r.balance.String()).
			Msg("Reserve withdrawal exceeds held balance")
		return sdk.Coin{}, errors.Join(ErrInsufficientReserve,
			fmt.Errorf("requested %s, held %s%s", amount, r.balance, r.denom))
	}
	r.balance = r.balance.Sub(amount)
	return sdk.NewCoin(r.denom, amount), nil
}

func (r *Reserve) Balance() sdk.Coin {
	return sdk.NewCoin(r.denom, r.balance)
}

// FeeCollector assesses the proportional deposit fee and custodies what it
// collects until an admin withdraws it.
type FeeCollector struct {
	vault *Reserve
}

func NewFeeCollector(denom string) *FeeCollector {
	return &FeeCollector{vault: NewReserve(denom)}
}

// FeeAmount computes the fee on a gross deposit at ratePercent parts per
// hundred. Truncating division: the fee rounds down in the depositor's favor.
// The intermediate product goes through sdkmath.Int so a near-max gross
// cannot overflow.
func (f *FeeCollector) FeeAmount(gross uint64, ratePercent uint64) uint64 {
	return sdkmath.NewIntFromUint64(gross).
		Mul(sdkmath.NewIntFromUint64(ratePercent)).
		QuoRaw(100).
		Uint64()
}

func (f *FeeCollector) Collect(amount uint64) error {
	return f.vault.Deposit(sdkmath.NewIntFromUint64(amount))
}

func (f *FeeCollector) Collected() sdk.Coin {
	return f.vault.Balance()
}

// WithdrawCollected releases previously collected fees.
func (f *FeeCollector) WithdrawCollected(amount sdkmath.Int) (sdk.Coin, error) {
	return f.vault.Withdraw(amount)
}
