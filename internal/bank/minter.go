package bank

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Minter turns a computed reward amount into tokens for a recipient. The
// farm runs two instances, one per reward token. Implementations may reject
// a mint on their own authorization grounds.
type Minter interface {
	Mint(recipient string, amount sdkmath.Int) error
	Denom() string
}

// TokenMinter is the in-memory Minter implementation. It tracks cumulative
// minted supply per recipient so tests and the query surface can audit
// distributions.
type TokenMinter struct {
	denom  string
	minted map[string]sdkmath.Int
	total  sdkmath.Int
}

func NewTokenMinter(denom string) *TokenMinter {
	return &TokenMinter{
		denom:  denom,
		minted: make(map[string]sdkmath.Int),
		total:  sdkmath.ZeroInt(),
	}
}

func (m *TokenMinter) Mint(recipient string, amount sdkmath.Int) error {
	if recipient == "" {
		return errors.New("mint recipient cannot be empty")
	}
	if amount.IsNil() || amount.IsNegative() {
		return errors.Join(ErrInvalidAmount, fmt.Errorf("cannot mint %s", amount))
	}
	current, exists := m.minted[recipient]
	if !exists {
		current = sdkmath.ZeroInt()
	}
	m.minted[recipient] = current.Add(amount)
	m.total = m.total.Add(amount)

	bankLogger.Debug().
		Str("denom", m.denom).
		Str("recipient", recipient).
		Str("amount", amount.String()).
		Msg("Minted reward tokens")
	return nil
}

func (m *TokenMinter) Denom() string {
	return m.denom
}

// MintedTo returns the cumulative amount minted to a recipient.
func (m *TokenMinter) MintedTo(recipient string) sdk.Coin {
	amount, exists := m.minted[recipient]
	if !exists {
		amount = sdkmath.ZeroInt()
	}
	return sdk.NewCoin(m.denom, amount)
}

// TotalMinted returns the cumulative supply this minter has issued.
func (m *TokenMinter) TotalMinted() sdk.Coin {
	return sdk.NewCoin(m.denom, m.total)
}
