package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

var oneHundred = decimal.NewFromInt(100)

// DistributionConfig holds the settings the revenue distribution engine
// and its sweep scheduler run with.
type DistributionConfig struct {
	AdminPercentage decimal.Decimal
	SweepInterval   time.Duration
	StatsCacheTTL   time.Duration
}

// LoadDistributionConfig reads distribution settings with defaults.
func LoadDistributionConfig() (*DistributionConfig, error) {
	viper.SetDefault("distribution.admin_percentage", "10")
	viper.SetDefault("distribution.sweep_interval", time.Hour)
	viper.SetDefault("distribution.stats_cache_ttl", 5*time.Minute)

	pct, err := decimal.NewFromString(viper.GetString("distribution.admin_percentage"))
	if err != nil {
		return nil, fmt.Errorf("invalid admin percentage: %w", err)
	}
	if pct.IsNegative() || pct.GreaterThan(oneHundred) {
		return nil, fmt.Errorf("admin percentage %s outside [0,100]", pct)
	}

	interval := viper.GetDuration("distribution.sweep_interval")
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}

	return &DistributionConfig{
		AdminPercentage: pct,
		SweepInterval:   interval,
		StatsCacheTTL:   viper.GetDuration("distribution.stats_cache_ttl"),
	}, nil
}
