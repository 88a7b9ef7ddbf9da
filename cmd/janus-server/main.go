package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/janus-door/janus/internal/config"
	"github.com/janus-door/janus/internal/db"
	"github.com/janus-door/janus/internal/httpapi"
	"github.com/janus-door/janus/internal/janus/service"
	sqlitestore "github.com/janus-door/janus/internal/janus/store/sqlite"
)

func main() {
	cfg := config.FromEnv()

	// Flags override env for the common local knobs.
	addr := flag.String("addr", cfg.HTTPAddr, "HTTP listen address")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	seedDev := flag.Bool("seed-dev", cfg.SeedDev, "seed example visitors (dev)")
	flag.Parse()
	cfg.HTTPAddr = *addr
	cfg.DBPath = *dbPath
	cfg.SeedDev = *seedDev

	logger := log.New(os.Stdout, "janus-server ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	if cfg.Env == "dev" && cfg.SeedDev {
		if err := db.SeedDev(ctx, conn, db.SeedDevOptions{}); err != nil {
			logger.Fatalf("seed dev data: %v", err)
		}
	}

	writer := db.NewWorker(conn)
	defer writer.Close()

	// Stores
	rateLimits := sqlitestore.NewRateLimitStore(conn, writer)
	passcodes := sqlitestore.NewPasscodeStore(conn, writer)
	visitors := sqlitestore.NewVisitorStore(conn, writer)
	decisions := sqlitestore.NewDecisionEventStore(conn, writer)

	// Notification sink
	var dispatcher service.Dispatcher
	if cfg.WebhookURL != "" {
		dispatcher = service.NewWebhookDispatcher(cfg.WebhookURL)
	} else {
		dispatcher = service.NewLogDispatcher(logger)
	}

	// Services
	issuer := service.NewIssuer(passcodes, cfg.OTPTTL)
	engine := service.NewEngine(rateLimits, visitors, issuer, dispatcher, decisions,
		service.EngineConfig{
			Window:          cfg.NotifyWindow,
			ApprovalPageURL: cfg.ApprovalPageURL,
		}, logger)
	verifySvc := service.NewVerifyService(issuer, visitors, cfg.SingleUseCodes, logger)
	registerSvc := service.NewRegisterService(issuer, visitors, dispatcher, decisions, logger)

	sweeper := service.NewSweeper(passcodes, rateLimits,
		service.SweeperConfig{IntervalMinutes: cfg.SweepIntervalMinutes}, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:          logger,
		Addr:            cfg.HTTPAddr,
		Engine:          engine,
		VerifyService:   verifySvc,
		RegisterService: registerSvc,
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
