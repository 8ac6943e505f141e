package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
)

// ErrPlaceNotFound is returned when no place was recorded for an address.
var ErrPlaceNotFound = errors.New("place not found")

// PlaceRepository persists the history of computed places.
type PlaceRepository interface {
	Save(ctx context.Context, ev *domain.MapComputed) error
	GetByAddress(ctx context.Context, address string) (*domain.PlaceRecord, error)
	Recent(ctx context.Context, limit int) ([]domain.PlaceRecord, error)
}
