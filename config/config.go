package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds every tunable the ingestion pipeline reads at startup.
// Values are loaded once via viper and treated as immutable read-only
// state for the lifetime of the process.
type Config struct {
	MaxDeviceChars        int     `mapstructure:"MAX_DEVICE_CHARS"`
	RulingMaxChunkChars   int     `mapstructure:"RULING_MAX_CHUNK_CHARS"`
	RulingOverlapRatio    float64 `mapstructure:"RULING_OVERLAP_RATIO"`
	RulingMinOverlapChars int     `mapstructure:"RULING_MIN_OVERLAP_CHARS"`
	RulingMaxOverlapChars int     `mapstructure:"RULING_MAX_OVERLAP_CHARS"`
	CanonicalNormsPath    string  `mapstructure:"CANONICAL_NORMS_PATH"`
	DatabaseURL           string  `mapstructure:"DATABASE_URL"`
}

// Load reads config.yaml (if present) and environment variables into a
// Config: AddConfigPath chain, AutomaticEnv, fatal on unmarshal failure.
func Load(logger *zap.Logger) *Config {
	var config Config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")        // For running locally
	viper.AddConfigPath("../")      // For running from a subdirectory
	viper.AddConfigPath("./config") // Common config folder
	viper.AutomaticEnv()

	viper.SetDefault("MAX_DEVICE_CHARS", 8000)
	viper.SetDefault("RULING_MAX_CHUNK_CHARS", 4000)
	viper.SetDefault("RULING_OVERLAP_RATIO", 0.20)
	viper.SetDefault("RULING_MIN_OVERLAP_CHARS", 200)
	viper.SetDefault("RULING_MAX_OVERLAP_CHARS", 1200)
	viper.SetDefault("CANONICAL_NORMS_PATH", "")
	viper.SetDefault("DATABASE_URL", "")

	if err := viper.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		if logger != nil {
			logger.Fatal("unable to decode config into struct", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	return &config
}
