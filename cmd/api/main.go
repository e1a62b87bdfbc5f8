package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/bistro/internal/auth"
	"github.com/geocoder89/bistro/internal/config"
	"github.com/geocoder89/bistro/internal/db"
	httpx "github.com/geocoder89/bistro/internal/http"
	"github.com/geocoder89/bistro/internal/observability"
	"github.com/geocoder89/bistro/internal/repo"
	"github.com/geocoder89/bistro/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	shutdownTracer, err := observability.InitTracer(context.Background(), cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	raw, err := db.Open(context.Background(), cfg)
	if err != nil {
		log.Error("store connect failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	database := store.Instrument(raw, prom)

	bootCtx, cancel := config.WithTimeout(10 * time.Second)
	if err := db.EnsureAdminUser(bootCtx, repo.NewUserRepo(database), cfg.AdminEmail); err != nil {
		log.Error("admin bootstrap failed", "email", cfg.AdminEmail, "err", err)
	}
	cancel()

	// set up routers with the log
	router := httpx.NewRouter(log, httpx.Deps{
		Env:          cfg.Env,
		ServiceName:  cfg.ServiceName,
		Store:        database,
		Tokens:       auth.NewManager(cfg.TokenSecret, cfg.TokenTTL),
		Prom:         prom,
		Gatherer:     prometheus.DefaultGatherer,
		CORSOrigins:  cfg.AllowedOrigins(),
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := database.Close(ctx); err != nil {
			log.Error("store close failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(cfg.ShutdownTimeout + 2*time.Second):
		log.Error("shutdown timed out")
	}
}
