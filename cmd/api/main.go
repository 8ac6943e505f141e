package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/samirrijal/fifteenmap/internal/adapters/http"
	"github.com/samirrijal/fifteenmap/internal/adapters/memcache"
	natsadapter "github.com/samirrijal/fifteenmap/internal/adapters/nats"
	"github.com/samirrijal/fifteenmap/internal/adapters/osm"
	"github.com/samirrijal/fifteenmap/internal/adapters/postgres"
	"github.com/samirrijal/fifteenmap/internal/adapters/valkey"
	"github.com/samirrijal/fifteenmap/internal/core/usecases"
	"github.com/samirrijal/fifteenmap/internal/pkg/config"
	"github.com/samirrijal/fifteenmap/internal/pkg/logging"
	"github.com/samirrijal/fifteenmap/internal/pkg/telemetry"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load("fifteenmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
	}
	mapCfg := usecases.MapServiceConfig{
		LocalCache:      memcache.New(0, 10*time.Minute),
		CacheTTLSeconds: cfg.Cache.TTLSeconds,
		IncludeEdges:    cfg.Map.IncludeEdges,
	}

	// Database backs the place history only; the map pipeline runs without it.
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Warn("database unavailable, place history disabled", "error", err)
	} else {
		defer db.Close()
		go db.ReportPoolMetrics(ctx, 15*time.Second)
		deps.DB = db
		deps.Places = usecases.NewPlaceService(postgres.NewPlaceRepo(db))
	}

	// Shared result cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, using in-process cache only", "error", err)
	} else {
		defer cache.Close()
		deps.Cache = cache
		mapCfg.SharedCache = cache
	}

	// NATS: JetStream publisher for computed maps and session events
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, events disabled", "error", err)
	} else {
		defer pub.Close()
		mapCfg.Publisher = pub
		deps.NATS = pub.Conn()
	}

	osmClient := osm.NewClient(osm.Config{
		NominatimURL: cfg.OSM.NominatimURL,
		OverpassURL:  cfg.OSM.OverpassURL,
		UserAgent:    cfg.OSM.UserAgent,
		Timeout:      cfg.OSM.HTTPTimeout(),
	})

	deps.Upstreams = osmClient

	mapSvc := usecases.NewMapService(osmClient, osmClient, osmClient, mapCfg)
	deps.Maps = mapSvc

	deps.Sessions = usecases.NewSessionService(mapSvc, mapCfg.Publisher,
		time.Duration(cfg.Sessions.IdleMinutes)*time.Minute)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024, // an address fits comfortably
		AppName:      "fifteenmap",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// In-flight map builds may take a while; give them the request timeout.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), deps.RequestTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
