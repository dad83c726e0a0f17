// Command seed creates the first admin account, or promotes an existing one,
// in the configured user store.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/odyssey-erp/gatehouse/internal/app"
	"github.com/odyssey-erp/gatehouse/internal/auth"
	"github.com/odyssey-erp/gatehouse/internal/shared"
	"github.com/odyssey-erp/gatehouse/internal/users"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var storeCfg app.StoreConfig
	if err := envconfig.Process("", &storeCfg); err != nil {
		log.Fatalf("load store config: %v", err)
	}
	username := getenv("SEED_ADMIN_USERNAME", "admin")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("SEED_ADMIN_PASSWORD must be set")
	}
	cost, err := strconv.Atoi(getenv("BCRYPT_COST", strconv.Itoa(auth.DefaultCost)))
	if err != nil {
		log.Fatalf("parse BCRYPT_COST: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	store, closeStore, err := app.OpenUserStore(ctx, storeCfg, logger)
	if err != nil {
		log.Fatalf("open user store: %v", err)
	}
	defer func() { _ = closeStore(context.Background()) }()

	created, err := seedAdmin(ctx, store, auth.NewBcryptHasher(cost), username, password)
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	if created {
		logger.Info("admin created", slog.String("username", username))
	} else {
		logger.Info("existing user promoted to admin", slog.String("username", username))
	}
}

// seedAdmin signs the account up when absent and then grants it the admin
// role. An existing account keeps its password.
func seedAdmin(ctx context.Context, store users.Store, hasher auth.PasswordHasher, username, password string) (bool, error) {
	created := true
	_, err := auth.NewService(store, hasher).SignUp(ctx, auth.Credentials{Username: username, Password: password})
	switch {
	case errors.Is(err, shared.ErrDuplicateUser):
		created = false
	case err != nil:
		return false, err
	}
	if err := users.NewService(store).Promote(ctx, username); err != nil {
		return false, err
	}
	return created, nil
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
