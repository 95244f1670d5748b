package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kevann/nosteq-core/internal/onu"
)

// DefaultLocationMaxAge is how long stored GPS coordinates are considered
// fresh. Coordinates change far less often than statuses.
const DefaultLocationMaxAge = 24 * time.Hour

// LocationStore persists the GPS coordinates of the network.
type LocationStore interface {
	// ReplaceLocations stores locations as the current set and returns how
	// many distinct external IDs were written.
	ReplaceLocations(ctx context.Context, locations []onu.Location) (int, error)

	// Locations returns the stored coordinates keyed by unique external ID.
	Locations(ctx context.Context) (map[string]onu.Location, error)

	// LocationMetadata returns when the coordinates were last fetched.
	// Returns ErrNoLocations if nothing has been stored.
	LocationMetadata(ctx context.Context) (LocationMetadata, error)

	// LocationsFresh reports whether coordinates exist and are younger
	// than maxAge.
	LocationsFresh(ctx context.Context, now time.Time, maxAge time.Duration) (bool, error)
}

// LocationMetadata describes the stored coordinate set.
type LocationMetadata struct {
	LastUpdated    time.Time `json:"last_updated"`
	TotalLocations int       `json:"total_locations"`
}

// ReplaceLocations swaps the stored coordinates in one transaction.
// Entries without an external ID are skipped and the last entry wins for
// a repeated ID.
func (s *SQLiteStore) ReplaceLocations(ctx context.Context, locations []onu.Location) (int, error) {
	stamp := s.now().UTC().Format(time.RFC3339Nano)

	byID := make(map[string]onu.Location, len(locations))
	for _, loc := range locations {
		if loc.UniqueExternalID != "" {
			byID[loc.UniqueExternalID] = loc
		}
	}

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM onu_locations`); err != nil {
			return fmt.Errorf("clearing locations: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO onu_locations (unique_external_id, latitude, longitude, fetched_at)
			VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for id, loc := range byID {
			if _, err := stmt.ExecContext(ctx, id, loc.Latitude, loc.Longitude, stamp); err != nil {
				return fmt.Errorf("inserting location %s: %w", id, err)
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO onu_location_metadata (id, last_updated, total_locations) VALUES (1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET last_updated = excluded.last_updated, total_locations = excluded.total_locations`,
			stamp, len(byID))
		if err != nil {
			return fmt.Errorf("updating location metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(byID), nil
}

// Locations returns every stored coordinate pair.
func (s *SQLiteStore) Locations(ctx context.Context) (map[string]onu.Location, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT unique_external_id, latitude, longitude FROM onu_locations`)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]onu.Location)
	for rows.Next() {
		var loc onu.Location
		if err := rows.Scan(&loc.UniqueExternalID, &loc.Latitude, &loc.Longitude); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		out[loc.UniqueExternalID] = loc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating locations: %w", err)
	}
	return out, nil
}

// LocationMetadata returns the coordinate set metadata.
func (s *SQLiteStore) LocationMetadata(ctx context.Context) (LocationMetadata, error) {
	var lastUpdated string
	var m LocationMetadata
	err := s.db.QueryRowContext(ctx,
		`SELECT last_updated, total_locations FROM onu_location_metadata WHERE id = 1`,
	).Scan(&lastUpdated, &m.TotalLocations)
	if errors.Is(err, sql.ErrNoRows) {
		return LocationMetadata{}, ErrNoLocations
	}
	if err != nil {
		return LocationMetadata{}, fmt.Errorf("querying location metadata: %w", err)
	}

	m.LastUpdated, err = time.Parse(time.RFC3339Nano, lastUpdated)
	if err != nil {
		return LocationMetadata{}, fmt.Errorf("parsing last_updated %q: %w", lastUpdated, err)
	}
	return m, nil
}

// LocationsFresh reports whether the coordinates are younger than maxAge.
// A maxAge of zero or less uses DefaultLocationMaxAge.
func (s *SQLiteStore) LocationsFresh(ctx context.Context, now time.Time, maxAge time.Duration) (bool, error) {
	if maxAge <= 0 {
		maxAge = DefaultLocationMaxAge
	}

	m, err := s.LocationMetadata(ctx)
	if errors.Is(err, ErrNoLocations) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return now.Sub(m.LastUpdated) < maxAge, nil
}

// Located pairs an ONU with its coordinates.
type Located struct {
	SN               string  `json:"sn"`
	UniqueExternalID string  `json:"unique_external_id"`
	Name             string  `json:"name"`
	ZoneName         string  `json:"zone_name"`
	Status           string  `json:"status"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
}

// JoinLocations returns the onus that have coordinates, in input order.
func JoinLocations(onus []onu.Onu, locations map[string]onu.Location) []Located {
	out := make([]Located, 0, len(onus))
	for i := range onus {
		loc, ok := locations[onus[i].UniqueExternalID]
		if !ok || onus[i].UniqueExternalID == "" {
			continue
		}
		out = append(out, Located{
			SN:               onus[i].SN,
			UniqueExternalID: onus[i].UniqueExternalID,
			Name:             onus[i].Name,
			ZoneName:         onus[i].ZoneName(),
			Status:           onus[i].Status,
			Latitude:         loc.Latitude,
			Longitude:        loc.Longitude,
		})
	}
	return out
}
