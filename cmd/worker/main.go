package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/fifteenmap/internal/adapters/memcache"
	natsadapter "github.com/samirrijal/fifteenmap/internal/adapters/nats"
	"github.com/samirrijal/fifteenmap/internal/adapters/osm"
	"github.com/samirrijal/fifteenmap/internal/adapters/valkey"
	"github.com/samirrijal/fifteenmap/internal/core/usecases"
	"github.com/samirrijal/fifteenmap/internal/pkg/config"
	"github.com/samirrijal/fifteenmap/internal/pkg/logging"
	"github.com/samirrijal/fifteenmap/internal/pkg/telemetry"
	"github.com/samirrijal/fifteenmap/internal/workflows"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("fifteenmap-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	mapCfg := usecases.MapServiceConfig{
		LocalCache:      memcache.New(0, 10*time.Minute),
		CacheTTLSeconds: cfg.Cache.TTLSeconds,
		IncludeEdges:    cfg.Map.IncludeEdges,
	}

	// Prefetching only pays off when the API can read the results back.
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()
	mapCfg.SharedCache = cache

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, computed maps will not be recorded", "error", err)
	} else {
		defer pub.Close()
		mapCfg.Publisher = pub
	}

	osmClient := osm.NewClient(osm.Config{
		NominatimURL: cfg.OSM.NominatimURL,
		OverpassURL:  cfg.OSM.OverpassURL,
		UserAgent:    cfg.OSM.UserAgent,
		Timeout:      cfg.OSM.HTTPTimeout(),
	})
	maps := usecases.NewMapService(osmClient, osmClient, osmClient, mapCfg)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	// One map at a time keeps the public Overpass instance happy.
	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize: 1,
	})
	w.RegisterWorkflow(workflows.PrefetchWorkflow)
	w.RegisterActivity(&workflows.PrefetchActivities{Maps: maps})

	slog.Info("prefetch worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
