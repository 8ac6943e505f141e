package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
	"github.com/samirrijal/fifteenmap/internal/core/ports"
	"github.com/samirrijal/fifteenmap/internal/pkg/metrics"
	"github.com/samirrijal/fifteenmap/internal/pkg/telemetry"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// SessionService drives the presentation shell state machine. Sessions are
// kept in memory and expire after being idle.
type SessionService struct {
	maps      ports.MapBuilder
	publisher ports.EventPublisher

	mu       sync.Mutex
	sessions *gocache.Cache
}

// NewSessionService creates a new SessionService. publisher may be nil.
func NewSessionService(maps ports.MapBuilder, publisher ports.EventPublisher, idle time.Duration) *SessionService {
	return &SessionService{
		maps:      maps,
		publisher: publisher,
		sessions:  gocache.New(idle, idle),
	}
}

// Create starts a new idle session.
func (s *SessionService) Create(ctx context.Context) *domain.Session {
	sess := domain.NewSession(uuid.NewString())

	s.mu.Lock()
	s.sessions.SetDefault(sess.ID, sess)
	snap := *sess
	s.mu.Unlock()

	s.emit(ctx, &snap)
	return &snap
}

// Get returns a snapshot of the session.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	snap := *sess
	return &snap, nil
}

// Submit runs the pipeline for address and returns the session once the run
// has finished. An empty address leaves the session untouched and returns
// domain.ErrEmptyAddress. If another submission overtook this one the
// returned error is domain.ErrStaleResult and the snapshot reflects the newer run.
func (s *SessionService) Submit(ctx context.Context, id, address string) (*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanSessionSubmit, attribute.String("session_id", id))
	defer span.End()

	address = strings.TrimSpace(address)

	s.mu.Lock()
	sess, err := s.lookup(id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	gen, err := sess.Submit(address)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.touch(sess)
	loading := *sess
	s.mu.Unlock()

	s.emit(ctx, &loading)

	doc, buildErr := s.build(ctx, address)

	s.mu.Lock()
	if buildErr != nil {
		err = sess.Fail(gen, buildErr)
	} else {
		err = sess.Succeed(gen, doc)
	}
	s.touch(sess)
	done := *sess
	s.mu.Unlock()

	if err != nil {
		slog.InfoContext(ctx, "discarding stale session result", "session_id", id, "generation", gen)
		return &done, err
	}

	if buildErr != nil {
		slog.InfoContext(ctx, "session run failed",
			"session_id", id,
			"address", address,
			"kind", done.Error.Kind,
			"error", buildErr,
		)
	}
	s.emit(ctx, &done)
	return &done, nil
}

// build runs the pipeline and turns a panic into an unexpected failure so
// the session always leaves the loading state.
func (s *SessionService) build(ctx context.Context, address string) (doc *domain.MapDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "map pipeline panicked", "address", address, "panic", r)
			doc, err = nil, fmt.Errorf("pipeline panic: %v", r)
		}
	}()
	return s.maps.Build(ctx, address)
}

// lookup must be called with mu held.
func (s *SessionService) lookup(id string) (*domain.Session, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return v.(*domain.Session), nil
}

// touch refreshes the idle expiry; mu must be held.
func (s *SessionService) touch(sess *domain.Session) {
	s.sessions.SetDefault(sess.ID, sess)
}

func (s *SessionService) emit(ctx context.Context, snap *domain.Session) {
	metrics.SessionTransitions.WithLabelValues(string(snap.State)).Inc()
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSessionEvent(ctx, snap.Event()); err != nil {
		slog.WarnContext(ctx, "publish session event failed", "session_id", snap.ID, "error", err)
	}
}
