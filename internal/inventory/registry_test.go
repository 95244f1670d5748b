package inventory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kevann/nosteq-core/internal/onu"
	"github.com/kevann/nosteq-core/internal/technician"
)

// memStore is an in-memory Store used to exercise the registry.
type memStore struct {
	onus     []onu.Onu
	listErr  error
	listHits int
}

func (m *memStore) ReplaceAll(_ context.Context, onus []onu.Onu) (int, error) {
	m.onus = append([]onu.Onu(nil), onus...)
	return len(onus), nil
}

func (m *memStore) List(context.Context) ([]onu.Onu, error) {
	m.listHits++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]onu.Onu(nil), m.onus...), nil
}

func (m *memStore) GetBySN(_ context.Context, sn string) (*onu.Onu, error) {
	if o, ok := onu.FindBySN(m.onus, sn); ok {
		return o.Clone(), nil
	}
	return nil, ErrOnuNotFound
}

func (m *memStore) Metadata(context.Context) (Metadata, error) {
	return Metadata{}, ErrNoSnapshot
}

func (m *memStore) IsFresh(context.Context, time.Time, time.Duration) (bool, error) {
	return false, nil
}

func zoneOnu(sn, name, zoneName, status string) onu.Onu {
	return onu.Onu{SN: sn, Name: name, ZoneNameValue: onu.Str(zoneName), Status: status}
}

func newTestRegistry(t *testing.T) (*Registry, *memStore) {
	t.Helper()

	store := &memStore{onus: []onu.Onu{
		zoneOnu("SN3", "Wekesa", "TURITU MAIN", "Online"),
		zoneOnu("SN1", "Achieng", "BNN_4521", "Offline"),
		zoneOnu("SN2", "Baraka", "KWD_0012", "Online"),
		zoneOnu("SN4", "Achieng", "RUAKA DAVANA", "Power fail"),
	}}
	reg := NewRegistry(store)
	if err := reg.RefreshCache(context.Background()); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}
	return reg, store
}

func TestRegistry_ListSortedByName(t *testing.T) {
	reg, _ := newTestRegistry(t)

	list, err := reg.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	var got []string
	for _, o := range list {
		got = append(got, o.SN)
	}
	if fmt.Sprint(got) != "[SN1 SN4 SN2 SN3]" {
		t.Errorf("List() order = %v, want by name then SN", got)
	}
	if reg.Count() != 4 {
		t.Errorf("Count() = %d, want 4", reg.Count())
	}
}

func TestRegistry_ListReturnsCopies(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	list, _ := reg.List(ctx)
	list[0].Name = "MUTATED"

	again, _ := reg.List(ctx)
	if again[0].Name == "MUTATED" {
		t.Error("List() exposed the cache to mutation")
	}
}

func TestRegistry_ServesFromCache(t *testing.T) {
	reg, store := newTestRegistry(t)
	hits := store.listHits

	if _, err := reg.List(context.Background()); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if store.listHits != hits {
		t.Error("List() hit the store while the cache was loaded")
	}
}

func TestRegistry_FallsBackToStore(t *testing.T) {
	store := &memStore{onus: []onu.Onu{zoneOnu("SN9", "Otieno", "BNN_1", "Online")}}
	reg := NewRegistry(store)
	ctx := context.Background()

	list, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List() len = %d, want 1 from store", len(list))
	}

	got, err := reg.GetBySN(ctx, "SN9")
	if err != nil || got.Name != "Otieno" {
		t.Errorf("GetBySN() = %+v, %v", got, err)
	}

	store.listErr = errors.New("disk gone")
	if _, err := reg.List(ctx); err == nil {
		t.Error("List() error = nil, want store error")
	}
	if err := reg.RefreshCache(ctx); err == nil {
		t.Error("RefreshCache() error = nil, want store error")
	}
}

func TestRegistry_GetBySN(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	got, err := reg.GetBySN(ctx, "SN2")
	if err != nil {
		t.Fatalf("GetBySN() error = %v", err)
	}
	if got.Name != "Baraka" {
		t.Errorf("Name = %q", got.Name)
	}

	if _, err := reg.GetBySN(ctx, "nope"); !errors.Is(err, ErrOnuNotFound) {
		t.Errorf("GetBySN(nope) error = %v, want ErrOnuNotFound", err)
	}
}

func TestRegistry_SetStatuses(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	live := onu.StatusMap{"SN2": {SN: "SN2", Status: "LOS"}}
	reg.SetStatuses(live)
	live["SN3"] = onu.LiveStatus{SN: "SN3", Status: "LOS"}

	got, err := reg.GetBySN(ctx, "SN2")
	if err != nil {
		t.Fatalf("GetBySN() error = %v", err)
	}
	if got.Status != "LOS" {
		t.Errorf("Status = %q, want live LOS", got.Status)
	}

	other, _ := reg.GetBySN(ctx, "SN3")
	if other.Status != "Online" {
		t.Errorf("SN3 Status = %q, registry must copy the status map", other.Status)
	}
}

func TestRegistry_ForTechnicianAndCounts(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		profile *technician.Profile
		wantSNs string
		want    onu.Counts
	}{
		{
			name:    "zone A technician",
			profile: &technician.Profile{Role: technician.RoleTechnician, ServiceArea: "ZONE A"},
			wantSNs: "[SN1 SN4]",
			want:    onu.Counts{Offline: 1, PowerFail: 1},
		},
		{
			name:    "zone C technician",
			profile: &technician.Profile{Role: technician.RoleTechnician, ServiceArea: "ZONE C"},
			wantSNs: "[SN2]",
			want:    onu.Counts{Online: 1},
		},
		{
			name:    "admin",
			profile: &technician.Profile{Role: technician.RoleAdmin, ServiceArea: "ZONE A"},
			wantSNs: "[SN1 SN4 SN2 SN3]",
			want:    onu.Counts{Online: 2, Offline: 1, PowerFail: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visible, err := reg.ForTechnician(ctx, tt.profile)
			if err != nil {
				t.Fatalf("ForTechnician() error = %v", err)
			}
			var sns []string
			for _, o := range visible {
				sns = append(sns, o.SN)
			}
			if fmt.Sprint(sns) != tt.wantSNs {
				t.Errorf("ForTechnician() = %v, want %s", sns, tt.wantSNs)
			}

			counts, err := reg.Counts(ctx, tt.profile)
			if err != nil {
				t.Fatalf("Counts() error = %v", err)
			}
			if counts != tt.want {
				t.Errorf("Counts() = %+v, want %+v", counts, tt.want)
			}
		})
	}
}
