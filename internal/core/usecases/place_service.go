package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
	"github.com/samirrijal/fifteenmap/internal/core/ports"
)

// PlaceService records and lists previously computed places.
type PlaceService struct {
	places ports.PlaceRepository
}

// NewPlaceService creates a new PlaceService.
func NewPlaceService(places ports.PlaceRepository) *PlaceService {
	return &PlaceService{places: places}
}

// Record stores a computed map event.
func (s *PlaceService) Record(ctx context.Context, ev *domain.MapComputed) error {
	if strings.TrimSpace(ev.Address) == "" {
		return fmt.Errorf("record place: %w", domain.ErrEmptyAddress)
	}
	if err := s.places.Save(ctx, ev); err != nil {
		return fmt.Errorf("save place %q: %w", ev.Address, err)
	}
	return nil
}

// Recent returns the latest places; limit is clamped to 1-50 (default 20).
func (s *PlaceService) Recent(ctx context.Context, limit int) ([]domain.PlaceRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	return s.places.Recent(ctx, limit)
}

// GetByAddress returns the recorded place for address.
func (s *PlaceService) GetByAddress(ctx context.Context, address string) (*domain.PlaceRecord, error) {
	return s.places.GetByAddress(ctx, strings.TrimSpace(address))
}
