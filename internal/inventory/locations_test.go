package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kevann/nosteq-core/internal/onu"
)

func TestSQLiteStore_ReplaceLocations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.LocationMetadata(ctx); !errors.Is(err, ErrNoLocations) {
		t.Errorf("LocationMetadata() error = %v, want ErrNoLocations", err)
	}

	saved, err := store.ReplaceLocations(ctx, []onu.Location{
		{UniqueExternalID: "ext-1", Latitude: -1.2005, Longitude: 36.7921},
		{UniqueExternalID: "ext-2", Latitude: -1.1931, Longitude: 36.8102},
		{UniqueExternalID: "ext-1", Latitude: -1.2010, Longitude: 36.7930},
		{UniqueExternalID: "", Latitude: 1, Longitude: 1},
	})
	if err != nil {
		t.Fatalf("ReplaceLocations() error = %v", err)
	}
	if saved != 2 {
		t.Errorf("saved = %d, want 2", saved)
	}

	got, err := store.Locations(ctx)
	if err != nil {
		t.Fatalf("Locations() error = %v", err)
	}
	if len(got) != 2 || got["ext-1"].Latitude != -1.2010 || got["ext-2"].Longitude != 36.8102 {
		t.Errorf("Locations() = %+v", got)
	}

	// A later fetch replaces the whole set.
	if _, err := store.ReplaceLocations(ctx, []onu.Location{{UniqueExternalID: "ext-3", Latitude: -1.1, Longitude: 36.9}}); err != nil {
		t.Fatalf("ReplaceLocations() error = %v", err)
	}
	got, err = store.Locations(ctx)
	if err != nil {
		t.Fatalf("Locations() error = %v", err)
	}
	if _, ok := got["ext-1"]; ok || len(got) != 1 {
		t.Errorf("Locations() after replace = %+v, want only ext-3", got)
	}

	meta, err := store.LocationMetadata(ctx)
	if err != nil {
		t.Fatalf("LocationMetadata() error = %v", err)
	}
	if meta.TotalLocations != 1 || !meta.LastUpdated.Equal(baseTime.Add(time.Second)) {
		t.Errorf("LocationMetadata() = %+v", meta)
	}
}

func TestSQLiteStore_LocationsFresh(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	fresh, err := store.LocationsFresh(ctx, baseTime, 0)
	if err != nil {
		t.Fatalf("LocationsFresh() error = %v", err)
	}
	if fresh {
		t.Error("LocationsFresh() = true before any fetch")
	}

	// An empty fetch still counts as a completed fetch.
	if _, err := store.ReplaceLocations(ctx, nil); err != nil {
		t.Fatalf("ReplaceLocations() error = %v", err)
	}

	tests := []struct {
		name   string
		now    time.Time
		maxAge time.Duration
		want   bool
	}{
		{"just fetched", baseTime.Add(time.Hour), 0, true},
		{"just before expiry", baseTime.Add(23 * time.Hour), DefaultLocationMaxAge, true},
		{"at expiry", baseTime.Add(24 * time.Hour), DefaultLocationMaxAge, false},
		{"short max age", baseTime.Add(2 * time.Hour), time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.LocationsFresh(ctx, tt.now, tt.maxAge)
			if err != nil {
				t.Fatalf("LocationsFresh() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("LocationsFresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJoinLocations(t *testing.T) {
	onus := []onu.Onu{
		{SN: "SN1", UniqueExternalID: "ext-1", Name: "Amina", ZoneNameValue: onu.Str("BNN_1"), Status: "Online"},
		{SN: "SN2", UniqueExternalID: "ext-2", Name: "Baraka"},
		{SN: "SN3", Name: "Chebet"},
	}
	locations := map[string]onu.Location{
		"ext-1": {UniqueExternalID: "ext-1", Latitude: -1.2, Longitude: 36.8},
		"":      {Latitude: 9, Longitude: 9},
	}

	got := JoinLocations(onus, locations)
	if len(got) != 1 {
		t.Fatalf("JoinLocations() len = %d, want 1: %+v", len(got), got)
	}
	if got[0].SN != "SN1" || got[0].ZoneName != "BNN_1" || got[0].Latitude != -1.2 || got[0].Status != "Online" {
		t.Errorf("JoinLocations()[0] = %+v", got[0])
	}
}
