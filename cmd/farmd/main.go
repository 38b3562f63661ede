package main

import (
	"os"
	"strconv"

	"github.com/elys-network/farm/internal/bank"
	"github.com/elys-network/farm/internal/config"
	"github.com/elys-network/farm/internal/logger"
	"github.com/elys-network/farm/internal/operator"
	"github.com/elys-network/farm/internal/state"
	"github.com/elys-network/farm/internal/types"
	"github.com/elys-network/farm/internal/web"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DEFAULT_FARM_CONFIG_NAME    = "default"
	DEFAULT_FARM_CONFIG_VERSION = 1
)

// main is the entry point for the farm service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("Farm Service Starting...")

	// Initialize Database Connection (parameters and audit history)
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Load Farm Parameters, seeding from the environment on first run
	farmParams, err := state.LoadActiveFarmParameters(DEFAULT_FARM_CONFIG_NAME)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active farm parameters, using environment values and saving.")
		seeded := types.FarmParameters{
			EmissionRatePerMS:  config.EmissionRatePerMS,
			RewardSplitPercent: config.RewardSplitPercent,
		}
		if _, err := state.SaveFarmParameters(seeded, DEFAULT_FARM_CONFIG_NAME, DEFAULT_FARM_CONFIG_VERSION, true); err != nil {
			log.Fatal().Err(err).Msg("Failed to save initial farm parameters.")
		}
		farmParams = &seeded
	}
	log.Info().
		Uint64("emissionRatePerMS", farmParams.EmissionRatePerMS).
		Uint64("rewardSplitPercent", farmParams.RewardSplitPercent).
		Msg("Farm parameters loaded successfully.")

	// --- 2. Create Operator Instance with Dependency Injection ---
	operatorConfig := operator.Config{
		Window: types.RewardWindow{
			StartMS: config.WindowStartMS,
			EndMS:   config.WindowEndMS,
		},
		Params:          *farmParams,
		AdminToken:      config.AdminToken,
		StakeCustody:    bank.NewReserve(config.StakedDenom),
		FeeCollector:    bank.NewFeeCollector(config.StakedDenom),
		PrimaryMinter:   bank.NewTokenMinter(config.PrimaryRewardDenom),
		SecondaryMinter: bank.NewTokenMinter(config.SecondaryRewardDenom),
		Receipts:        state.NewStore(),
	}

	farmOperator, err := operator.New(operatorConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create operator instance")
	}
	log.Info().Msg("Operator instance created successfully")

	// --- 3. Serve the HTTP API ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(webPort, farmOperator)
	log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting farm API server")
	if err := webServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("Web server failed")
	}
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
