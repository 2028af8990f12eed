package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"stockhive/internal/app"
	"stockhive/internal/config"
	"stockhive/internal/database"
	"stockhive/internal/models"
	"stockhive/internal/validation"
)

func TestDemoCatalogIsValid(t *testing.T) {
	v := validation.New()
	names := make(map[string]bool)
	for _, item := range demoCatalog {
		assert.NoError(t, v.Struct(item.request()), item.name)
		assert.False(t, names[item.name], "duplicate %s", item.name)
		names[item.name] = true
	}
}

func TestRunIsRepeatable(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL:  fmt.Sprintf("sqlite:file:%s?mode=memory&cache=shared", uuid.NewString()),
		StoreTimeout: 5 * time.Second,
		JWTSecret:    "seed-test-secret",
		TokenTTL:     time.Hour,
		BcryptCost:   bcrypt.MinCost,
	}

	// Keep one connection open so the shared in-memory database outlives each run.
	keep, err := database.Open(context.Background(), cfg.DatabaseURL, database.Options{})
	require.NoError(t, err)
	defer database.Close(keep)

	require.NoError(t, run(cfg, zap.NewNop(), "Demo", "demo@x.com", "pw123456"))
	require.NoError(t, run(cfg, zap.NewNop(), "Demo", "demo@x.com", "pw123456"))

	svc := app.NewServices(app.Dependencies{Config: cfg, Logger: zap.NewNop(), DB: keep})
	payload, err := svc.Auth.LoginUser(context.Background(), models.LoginRequest{Email: "demo@x.com", Password: "pw123456"})
	require.NoError(t, err)

	products, err := svc.Products.GetAllProducts(context.Background(), models.Principal{ID: payload.ID})
	require.NoError(t, err)
	assert.Len(t, products, len(demoCatalog))

	assert.Error(t, run(cfg, zap.NewNop(), "Demo", "demo@x.com", ""))
}
