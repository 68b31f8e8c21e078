package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds ledger configuration.
type Config struct {
	// DataFile is where the ledger blob lives. The default name mirrors the
	// localStorage key the browser variants used.
	DataFile string
	// FloorAtZero clamps running balances at zero instead of letting an
	// overpaying customer go negative. Per-deployment policy.
	FloorAtZero  bool
	IsProduction bool
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first; real environment variables win over it.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("LEDGER_DATA_FILE", "udhar_entries_v1.json")
	viper.SetDefault("FLOOR_AT_ZERO", false)
	viper.SetDefault("IS_PRODUCTION", false)

	viper.AutomaticEnv()

	cfg := &Config{
		DataFile:     viper.GetString("LEDGER_DATA_FILE"),
		FloorAtZero:  viper.GetBool("FLOOR_AT_ZERO"),
		IsProduction: viper.GetBool("IS_PRODUCTION"),
	}
	return cfg, nil
}
