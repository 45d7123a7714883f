// cmd/web/main.go
//
// lincms – HTTP entry point.
//
// Start-up
// --------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Load configuration (YAML, LINCMS_ env, Vault secrets).
//
//  3. Start daily rotating logger (tees to console when configured or in a
//     TTY).
//
//  4. Open the MySQL pool.
//
//  5. Build the /cms router from every registered blueprint.
//
//  6. Serve the API and, on its own listener, Prometheus /metrics.  SIGINT
//     or SIGTERM drains both.
//
// Large comment blocks are framed by blank "//" lines; inline comments use
// a single "//".
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/lincms/internal/cms"
	"github.com/yanizio/lincms/internal/component"
	"github.com/yanizio/lincms/internal/config"
	"github.com/yanizio/lincms/internal/database"
	"github.com/yanizio/lincms/internal/logger"
	"github.com/yanizio/lincms/internal/server"

	// Blueprints register themselves in init().
	_ "github.com/yanizio/lincms/components/admin"
	_ "github.com/yanizio/lincms/components/hotel"
	_ "github.com/yanizio/lincms/components/lnput"
	_ "github.com/yanizio/lincms/components/log"
	_ "github.com/yanizio/lincms/components/member"
	_ "github.com/yanizio/lincms/components/test"
	_ "github.com/yanizio/lincms/components/user"
)

const serverEnvPath = "/usr/local/etc/lincms/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, cfg.Log.Level, cfg.Log.Tee || runningInTTY())
	if err != nil {
		return fmt.Errorf("start logger: %w", err)
	}
	defer logOut.Sync() //nolint:errcheck

	//
	// ── 1.  Database ────────────────────────────────────────────────────
	//
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	logOut.Infow("database online", "max_open", cfg.Database.MaxOpen)

	//
	// ── 2.  Blueprints ──────────────────────────────────────────────────
	//
	router, err := cms.New(component.NewEnv(db, logOut))
	if err != nil {
		return fmt.Errorf("mount blueprints: %w", err)
	}

	//
	// ── 3.  Serve API and metrics until a signal arrives ───────────────
	//
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, server.New(cfg.HTTP.ListenAddr, router), cfg.HTTP.ShutdownTimeout)
	})
	if cfg.HTTP.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		g.Go(func() error {
			return server.Run(gctx, server.New(cfg.HTTP.MetricsAddr, mux), cfg.HTTP.ShutdownTimeout)
		})
	}

	if err := g.Wait(); err != nil {
		logOut.Errorw("server stopped", "err", err)
		return err
	}
	logOut.Info("shutdown complete")
	return nil
}
