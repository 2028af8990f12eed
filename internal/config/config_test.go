package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockhive/internal/config"
)

func baseViper() *viper.Viper {
	v := viper.New()
	v.Set("APP_ENV", "development")
	v.Set("PORT", "3000")
	v.Set("DATABASE_URL", "sqlite:stockhive.db")
	v.Set("JWT_SECRET", "secret")
	v.Set("STORE_TIMEOUT", "2s")
	v.Set("TOKEN_TTL", "720h")
	v.Set("BCRYPT_COST", 4)
	return v
}

func TestFromViper_Valid(t *testing.T) {
	cfg, err := config.FromViper(baseViper())
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.ListenAddr())
	assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 30*24*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.IsDevelopment())
}

func TestFromViper_MissingRequired(t *testing.T) {
	v := baseViper()
	v.Set("PORT", "")
	v.Set("JWT_SECRET", "")

	_, err := config.FromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.NotContains(t, err.Error(), "DATABASE_URL")
}

func TestFromViper_BadCost(t *testing.T) {
	v := baseViper()
	v.Set("BCRYPT_COST", 99)

	_, err := config.FromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BCRYPT_COST")
}

func TestListenAddr_KeepsHost(t *testing.T) {
	cfg := &config.Config{Port: "127.0.0.1:8080"}
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr())
}

func TestLoadWithoutListener_PortOptional(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "sqlite:stockhive.db")
	t.Setenv("JWT_SECRET", "secret")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")

	cfg, err := config.LoadWithoutListener()
	require.NoError(t, err)
	assert.Empty(t, cfg.Port)
	assert.Equal(t, "sqlite:stockhive.db", cfg.DatabaseURL)
}

func TestLoadWithoutListener_StillNeedsStoreAndSecret(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := config.LoadWithoutListener()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.NotContains(t, err.Error(), "PORT")
}
