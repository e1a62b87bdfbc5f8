package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/geocoder89/bistro/internal/config"
	"github.com/geocoder89/bistro/internal/db"
	"github.com/geocoder89/bistro/internal/observability"
	"github.com/geocoder89/bistro/internal/repo"
)

func main() {
	file := flag.String("file", "fixtures.yaml", "YAML file with menu, reviews, carts and users")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	res, err := run(ctx, cfg, *file)
	stop()

	if err != nil {
		log.Error("seed failed", "file", *file, "inserted", res, "err", err)
		os.Exit(1)
	}

	log.Info("seed complete", "file", *file, "inserted", res)
}

// run loads path into the configured store and ensures the bootstrap admin.
// The store is closed before returning, on success or failure.
func run(ctx context.Context, cfg config.Config, path string) (res db.SeedResult, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	fixtures, err := db.LoadFixtures(f)
	_ = f.Close()
	if err != nil {
		return nil, err
	}

	database, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store connect (%s): %w", cfg.StoreDriver, err)
	}
	defer func() {
		if cerr := database.Close(context.Background()); cerr != nil && err == nil {
			err = fmt.Errorf("store close: %w", cerr)
		}
	}()

	res, err = db.Seed(ctx, database, fixtures)
	if err != nil {
		return res, err
	}

	if err := db.EnsureAdminUser(ctx, repo.NewUserRepo(database), cfg.AdminEmail); err != nil {
		return res, fmt.Errorf("admin bootstrap: %w", err)
	}

	return res, nil
}
