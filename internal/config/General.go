package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// WindowStartMS is the millisecond timestamp at which reward accrual begins.
	WindowStartMS uint64
	// WindowEndMS is the millisecond timestamp after which no reward accrues.
	WindowEndMS uint64

	// EmissionRatePerMS is the initial global emission rate, reward units per millisecond.
	EmissionRatePerMS uint64
	// RewardSplitPercent is the share of each payout diverted to the secondary token.
	RewardSplitPercent uint64

	// AdminToken is the capability token required by every admin operation.
	AdminToken string

	// StakedDenom is the denom of the asset users stake.
	StakedDenom string
	// PrimaryRewardDenom is the denom of the main reward token.
	PrimaryRewardDenom string
	// SecondaryRewardDenom is the denom of the secondary reward token.
	SecondaryRewardDenom string
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// All environment variables are required and must be set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	WindowStartMS, err = getEnvAsUint64("FARM_WINDOW_START_MS")
	if err != nil {
		return err
	}

	WindowEndMS, err = getEnvAsUint64("FARM_WINDOW_END_MS")
	if err != nil {
		return err
	}
	if WindowEndMS <= WindowStartMS {
		return errors.New("FARM_WINDOW_END_MS must be greater than FARM_WINDOW_START_MS")
	}

	EmissionRatePerMS, err = getEnvAsUint64("FARM_EMISSION_RATE_PER_MS")
	if err != nil {
		return err
	}

	RewardSplitPercent, err = getEnvAsUint64("FARM_REWARD_SPLIT_PERCENT")
	if err != nil {
		return err
	}
	if RewardSplitPercent > 100 {
		return errors.New("FARM_REWARD_SPLIT_PERCENT must be at most 100")
	}

	AdminToken, err = getEnv("FARM_ADMIN_TOKEN")
	if err != nil {
		return err
	}

	StakedDenom, err = getEnv("FARM_STAKED_DENOM")
	if err != nil {
		return err
	}

	PrimaryRewardDenom, err = getEnv("FARM_PRIMARY_REWARD_DENOM")
	if err != nil {
		return err
	}

	SecondaryRewardDenom, err = getEnv("FARM_SECONDARY_REWARD_DENOM")
	if err != nil {
		return err
	}

	log.Debug().
		Uint64("WindowStartMS", WindowStartMS).
		Uint64("WindowEndMS", WindowEndMS).
		Uint64("EmissionRatePerMS", EmissionRatePerMS).
		Str("StakedDenom", StakedDenom).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set or empty.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}
