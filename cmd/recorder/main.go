package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	natsadapter "github.com/samirrijal/fifteenmap/internal/adapters/nats"
	"github.com/samirrijal/fifteenmap/internal/adapters/postgres"
	"github.com/samirrijal/fifteenmap/internal/core/domain"
	"github.com/samirrijal/fifteenmap/internal/core/usecases"
	"github.com/samirrijal/fifteenmap/internal/pkg/config"
	"github.com/samirrijal/fifteenmap/internal/pkg/logging"
)

// recorder consumes computed-map events from JetStream and keeps the place
// history in Postgres.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("fifteenmap-recorder")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolMetrics(ctx, 15*time.Second)

	places := usecases.NewPlaceService(postgres.NewPlaceRepo(db))

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "fifteenmap-recorder")
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeMapComputed(ctx, func(ctx context.Context, ev *domain.MapComputed) error {
		if err := places.Record(ctx, ev); err != nil {
			return err
		}
		slog.Info("place recorded",
			"address", ev.Address,
			"isochrones", len(ev.Isochrones),
			"amenities", ev.Stats.Amenities,
		)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	slog.Info("recorder started", "subject", natsadapter.SubjectMapComputed)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())
}
