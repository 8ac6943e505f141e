package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/fifteenmap/internal/adapters/postgres"
	"github.com/samirrijal/fifteenmap/internal/adapters/valkey"
	"github.com/samirrijal/fifteenmap/internal/core/ports"
	"github.com/samirrijal/fifteenmap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. Places, NATS, DB,
// Cache and Upstreams are optional; handlers degrade when they are nil.
type Dependencies struct {
	Maps           ports.MapBuilder
	Sessions       *usecases.SessionService
	Places         *usecases.PlaceService
	NATS           *nats.Conn
	DB             *postgres.DB
	Cache          *valkey.Cache
	Upstreams      ports.UpstreamChecker
	RequestTimeout time.Duration // pipeline routes; defaults to 120s
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout <= 0 {
		return 120 * time.Second
	}
	return d.RequestTimeout
}
