// ./internal/state/parameters_store.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/elys-network/farm/internal/types"
)

// SaveFarmParameters saves a new version of the farm-wide parameters.
func SaveFarmParameters(params types.FarmParameters, configName string, version int, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE farm_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	stmt := `
        INSERT INTO farm_parameters (
            version, config_name, is_active, activated_at, created_at,
            emission_rate_per_ms, reward_split_percent
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7
        ) RETURNING params_id;`

	var paramsID int64
	currentTime := time.Now()
	err = tx.QueryRow(
		stmt,
		version, configName, makeActive, currentTime, currentTime,
		params.EmissionRatePerMS, params.RewardSplitPercent,
	).Scan(&paramsID)

	if err != nil {
		return 0, fmt.Errorf("failed to insert farm parameters: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Int("version", version).
		Str("config", configName).
		Int64("params_id", paramsID).
		Bool("active", makeActive).
		Msg("Saved farm parameters")
	return paramsID, nil
}

// LoadActiveFarmParameters loads the currently active farm parameters.
func LoadActiveFarmParameters(configName string) (*types.FarmParameters, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	stmt := `
        SELECT emission_rate_per_ms, reward_split_percent
        FROM farm_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	var params types.FarmParameters
	err := DB.QueryRow(stmt, configName).Scan(
		&params.EmissionRatePerMS, &params.RewardSplitPercent,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no active farm parameters found for config %s", configName)
		}
		return nil, fmt.Errorf("failed to load active farm parameters: %w", err)
	}

	return &params, nil
}
