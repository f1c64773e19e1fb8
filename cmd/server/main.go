package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/accounts-be/internal/auth"
	"github.com/hongminglow/accounts-be/internal/config"
	"github.com/hongminglow/accounts-be/internal/identity"
	"github.com/hongminglow/accounts-be/internal/logging"
	"github.com/hongminglow/accounts-be/internal/server"
	"github.com/hongminglow/accounts-be/internal/storage"
	"github.com/hongminglow/accounts-be/internal/storage/memory"
	"github.com/hongminglow/accounts-be/internal/storage/postgres"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "error", "text").Error(context.Background(), "load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()
	if envErr != nil {
		log.Debug(ctx, "no .env file found; relying on existing environment")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log logging.Logger) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info(ctx, "storage ready", "driver", cfg.StorageDriver)

	svc, err := identity.NewService(
		store,
		auth.NewBcryptHasher(cfg.BcryptCost),
		auth.NewPasswordPolicy(cfg.PasswordMinLength),
		auth.NewTokenGenerator(),
		log,
	)
	if err != nil {
		return err
	}

	if cfg.Admin.Enabled() {
		if _, err := svc.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return err
		}
	}

	srv := server.New(cfg, svc, log)
	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "accounts backend listening", "addr", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case sig := <-sigCh:
		log.Info(ctx, "shutting down", "signal", sig.String())
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Warn(ctx, "graceful shutdown error", "error", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.StorageDriver == config.DriverMemory {
		return memory.NewStore(), nil
	}
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return store, nil
}
