package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
	"github.com/samirrijal/fifteenmap/internal/core/ports"
)

// PlaceRepo implements ports.PlaceRepository with pgx and PostGIS.
type PlaceRepo struct {
	db *DB
}

// NewPlaceRepo creates a new PlaceRepo.
func NewPlaceRepo(db *DB) *PlaceRepo {
	return &PlaceRepo{db: db}
}

// Save upserts the place and replaces its isochrones in one transaction.
func (r *PlaceRepo) Save(ctx context.Context, ev *domain.MapComputed) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		var placeID string
		err := tx.QueryRow(ctx, `
			INSERT INTO places (address, display_name, location, node_count, edge_count, amenity_count, computed_at)
			VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, $5, $6, $7, $8)
			ON CONFLICT (address) DO UPDATE
			SET display_name = EXCLUDED.display_name, location = EXCLUDED.location,
			    node_count = EXCLUDED.node_count, edge_count = EXCLUDED.edge_count,
			    amenity_count = EXCLUDED.amenity_count, computed_at = EXCLUDED.computed_at
			RETURNING id
		`, ev.Address, ev.DisplayName, ev.Location.Lon, ev.Location.Lat,
			ev.Stats.Nodes, ev.Stats.Edges, ev.Stats.Amenities, ev.ComputedAt,
		).Scan(&placeID)
		if err != nil {
			return fmt.Errorf("upsert place: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM isochrones WHERE place_id = $1`, placeID); err != nil {
			return fmt.Errorf("clear isochrones: %w", err)
		}

		batch := &pgx.Batch{}
		for _, iso := range ev.Isochrones {
			batch.Queue(`
				INSERT INTO isochrones (place_id, trip_time, color, geom)
				VALUES ($1, $2, $3, ST_SetSRID(ST_GeomFromGeoJSON($4), 4326))
			`, placeID, iso.TripTime, iso.Color, string(iso.Geometry))
		}
		br := tx.SendBatch(ctx, batch)
		defer br.Close()
		for range ev.Isochrones {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("insert isochrone: %w", err)
			}
		}
		return nil
	})
}

// GetByAddress returns the recorded place for address with its isochrones.
func (r *PlaceRepo) GetByAddress(ctx context.Context, address string) (*domain.PlaceRecord, error) {
	var p domain.PlaceRecord
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, address, display_name,
		       ST_Y(location::geometry) AS lat,
		       ST_X(location::geometry) AS lon,
		       node_count, edge_count, amenity_count, computed_at
		FROM places WHERE address = $1
	`, address).Scan(
		&p.ID, &p.Address, &p.DisplayName,
		&p.Location.Lat, &p.Location.Lon,
		&p.Stats.Nodes, &p.Stats.Edges, &p.Stats.Amenities, &p.ComputedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrPlaceNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT trip_time, color, ST_AsGeoJSON(geom)
		FROM isochrones WHERE place_id = $1
		ORDER BY trip_time DESC
	`, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var iso domain.IsochroneRecord
		var geom string
		if err := rows.Scan(&iso.TripTime, &iso.Color, &geom); err != nil {
			return nil, err
		}
		iso.Geometry = []byte(geom)
		p.Isochrones = append(p.Isochrones, iso)
	}
	return &p, rows.Err()
}

// Recent returns the most recently computed places, newest first.
func (r *PlaceRepo) Recent(ctx context.Context, limit int) ([]domain.PlaceRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, address, display_name,
		       ST_Y(location::geometry) AS lat,
		       ST_X(location::geometry) AS lon,
		       node_count, edge_count, amenity_count, computed_at
		FROM places
		ORDER BY computed_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []domain.PlaceRecord
	for rows.Next() {
		var p domain.PlaceRecord
		if err := rows.Scan(
			&p.ID, &p.Address, &p.DisplayName,
			&p.Location.Lat, &p.Location.Lon,
			&p.Stats.Nodes, &p.Stats.Edges, &p.Stats.Amenities, &p.ComputedAt,
		); err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}
