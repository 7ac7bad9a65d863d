package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-rescue-command/internal/api"
	"github.com/mr1hm/go-rescue-command/internal/config"
	"github.com/mr1hm/go-rescue-command/internal/dashboard"
	"github.com/mr1hm/go-rescue-command/internal/generator"
	"github.com/mr1hm/go-rescue-command/internal/journal"
	"github.com/mr1hm/go-rescue-command/internal/logging"
	"github.com/mr1hm/go-rescue-command/internal/relay"
	"github.com/mr1hm/go-rescue-command/internal/report"
	"github.com/mr1hm/go-rescue-command/internal/repository"
	"github.com/mr1hm/go-rescue-command/internal/simulation"
	"github.com/mr1hm/go-rescue-command/internal/stream"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize event journal: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broadcaster := stream.NewBroadcaster()

	var eventRelay journal.Relay
	var natsPublisher *relay.Publisher
	if cfg.NATS.URL != "" {
		natsPublisher, err = relay.Connect(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			logging.Fatalf("Failed to connect event relay: %v", err)
		}
		eventRelay = natsPublisher
	}

	recorder := journal.NewRecorder(db, broadcaster, eventRelay, cfg.Worker.Count, cfg.Worker.BufferSize)
	recorder.Start(ctx)

	sim := cfg.Simulation
	rnd := generator.NewRandom(sim.RandomSeed)
	dash := dashboard.New(dashboard.Options{
		Capacity:          sim.RegistryCapacity,
		AlertProbability:  orDisabled(sim.AlertProbability),
		ReturnProbability: orDisabled(sim.ReturnProbability),
		SeedAlerts:        int(orDisabled(float64(sim.SeedAlerts))),
		Generator:         generator.New(rnd, nil),
		Random:            rnd,
		Sink:              recorder,
	})
	slog.Info("dashboard seeded", "alerts", len(dash.Alerts()), "resources", len(dash.Resources()))

	ticker := simulation.NewTicker(sim.TickInterval, dash, nil)
	if err := ticker.Start(ctx); err != nil {
		logging.Fatalf("Failed to start ticker: %v", err)
	}

	reports, err := report.NewScheduler(cfg.Report.Schedule, dash, recorder)
	if err != nil {
		logging.Fatalf("Failed to schedule reports: %v", err)
	}
	reports.Start()

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimitRPS))

	handler := api.NewHandler(dash, db, broadcaster)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	ticker.Stop()
	reports.Stop()
	broadcaster.Close() // Close all streams gracefully

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	recorder.Stop()
	cancel()
	if natsPublisher != nil {
		if err := natsPublisher.Close(); err != nil {
			slog.Error("relay close error", "error", err)
		}
	}

	slog.Info("shutdown complete")
}

// orDisabled keeps an explicit zero from the environment from being read as
// "use the default" by dashboard.Options.
func orDisabled(v float64) float64 {
	if v == 0 {
		return dashboard.Disabled
	}
	return v
}
