package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"stockhive/internal/config"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestRunServesUntilCancelled(t *testing.T) {
	addr := freeAddr(t)
	cfg := &config.Config{
		Env:          "production",
		Port:         addr,
		DatabaseURL:  fmt.Sprintf("sqlite:file:%s?mode=memory&cache=shared", uuid.NewString()),
		StoreTimeout: 5 * time.Second,
		JWTSecret:    "test_jwt_secret",
		TokenTTL:     time.Hour,
		BcryptCost:   bcrypt.MinCost,
		CORSOrigins:  "*",
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zap.NewNop()) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunFailsWithoutStore(t *testing.T) {
	cfg := &config.Config{
		Port:         freeAddr(t),
		DatabaseURL:  "mongodb://localhost/stock",
		StoreTimeout: time.Second,
		JWTSecret:    "x",
		TokenTTL:     time.Hour,
		BcryptCost:   bcrypt.MinCost,
	}
	assert.Error(t, run(context.Background(), cfg, zap.NewNop()))
}
