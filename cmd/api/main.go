package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"notepool/internal/config"
	"notepool/internal/core"
	"notepool/internal/database"
	"notepool/internal/database/repositories"
	"notepool/internal/server"
	"notepool/internal/storage"
	"notepool/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	db, err := database.New(cfg.DSN())
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	if err := seedAdmin(context.Background(), db, cfg.AdminPassword); err != nil {
		log.Error("admin seed failed", "error", err)
		os.Exit(1)
	}

	pool, err := storage.NewPool(cfg.UploadDir)
	if err != nil {
		log.Error("image pool unavailable", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg, db, pool, log)
	srv.RegisterFiberRoutes()

	log.Info("listening", "port", cfg.Port)
	if err := srv.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// seedAdmin creates the ADMIN account on first start.
func seedAdmin(ctx context.Context, db database.Service, password string) error {
	users := repositories.NewUserRepository(db.DB())
	_, err := users.PasswordHash(ctx, core.AdminID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	return users.Insert(ctx, core.AdminID, hash)
}
