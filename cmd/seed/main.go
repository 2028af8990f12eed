// Command seed loads the demo catalog into one account, registering it first if needed.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"stockhive/internal/app"
	"stockhive/internal/apperrors"
	"stockhive/internal/config"
	"stockhive/internal/database"
	"stockhive/internal/logger"
	"stockhive/internal/models"
)

func main() {
	flags := pflag.NewFlagSet("seed", pflag.ExitOnError)
	flags.String("name", "Demo User", "account name used when registering")
	flags.String("email", "demo@stockhive.dev", "account email")
	flags.String("password", "", "account password (or SEED_PASSWORD)")
	_ = flags.Parse(os.Args[1:])

	v := viper.New()
	v.SetEnvPrefix("seed")
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	cfg, err := config.LoadWithoutListener()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log, v.GetString("name"), v.GetString("email"), v.GetString("password")); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger, name, email, password string) error {
	if password == "" {
		return errors.New("a password is required (--password or SEED_PASSWORD)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.Open(ctx, cfg.DatabaseURL, database.Options{})
	if err != nil {
		return err
	}
	defer database.Close(db)

	svc := app.NewServices(app.Dependencies{Config: cfg, Logger: log, DB: db})

	payload, err := svc.Auth.LoginUser(ctx, models.LoginRequest{Email: email, Password: password})
	if errors.Is(err, apperrors.ErrUnauthenticated) {
		payload, err = svc.Auth.RegisterUser(ctx, models.RegisterRequest{Name: name, Email: email, Password: password})
	}
	if err != nil {
		return fmt.Errorf("failed to sign in %s: %w", email, err)
	}
	principal := models.Principal{ID: payload.ID, Name: payload.Name, Email: payload.Email}

	existing, err := svc.Products.GetAllProducts(ctx, principal)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		have[p.Name] = true
	}

	added := 0
	for _, item := range demoCatalog {
		if have[item.name] {
			log.Info("skipped product, already exists", zap.String("name", item.name))
			continue
		}
		product, err := svc.Products.CreateProduct(ctx, principal, item.request())
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", item.name, err)
		}
		added++
		log.Info("added product", zap.String("name", product.Name), zap.String("id", product.ID))
	}

	log.Info("seed complete", zap.String("owner_id", principal.ID), zap.Int("added", added))
	return nil
}
