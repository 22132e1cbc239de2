package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoadDistributionConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		viper.Reset()

		cfg, err := LoadDistributionConfig()
		assert.NoError(t, err)
		assert.True(t, cfg.AdminPercentage.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, time.Hour, cfg.SweepInterval)
		assert.Equal(t, 5*time.Minute, cfg.StatsCacheTTL)
	})

	t.Run("overrides", func(t *testing.T) {
		viper.Reset()
		viper.Set("distribution.admin_percentage", "12.5")
		viper.Set("distribution.sweep_interval", "30m")

		cfg, err := LoadDistributionConfig()
		assert.NoError(t, err)
		assert.True(t, cfg.AdminPercentage.Equal(decimal.RequireFromString("12.5")))
		assert.Equal(t, 30*time.Minute, cfg.SweepInterval)
	})

	t.Run("percentage out of range", func(t *testing.T) {
		viper.Reset()
		viper.Set("distribution.admin_percentage", "120")

		_, err := LoadDistributionConfig()
		assert.Error(t, err)
	})

	t.Run("malformed percentage", func(t *testing.T) {
		viper.Reset()
		viper.Set("distribution.admin_percentage", "ten")

		_, err := LoadDistributionConfig()
		assert.Error(t, err)
	})
}
