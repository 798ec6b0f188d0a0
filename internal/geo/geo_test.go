package geo

import (
	"math"
	"testing"

	"github.com/example/venue-discovery/internal/models"
)

func TestHaversineIdenticalPoint(t *testing.T) {
	if d := Haversine(41.0082, 28.9784, 41.0082, 28.9784); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	cases := [][4]float64{
		{41.0082, 28.9784, 41.0500, 29.0500},
		{0, 0, 10, 10},
		{-33.8688, 151.2093, 51.5074, -0.1278},
	}
	for _, c := range cases {
		ab := Haversine(c[0], c[1], c[2], c[3])
		ba := Haversine(c[2], c[3], c[0], c[1])
		if math.Abs(ab-ba) > 1e-9 {
			t.Fatalf("not symmetric: %f vs %f", ab, ba)
		}
		if ab < 0 {
			t.Fatalf("negative distance %f", ab)
		}
	}
}

func TestHaversineKnownDistances(t *testing.T) {
	// Istanbul reference point against two nearby venues.
	nearby := Haversine(41.0082, 28.9784, 41.0090, 28.9790)
	if nearby < 0.05 || nearby > 0.2 {
		t.Fatalf("expected ~0.1 km, got %f", nearby)
	}
	across := Haversine(41.0082, 28.9784, 41.0500, 29.0500)
	if across < 7 || across > 8 {
		t.Fatalf("expected 7-8 km, got %f", across)
	}
}

func TestRoundKm(t *testing.T) {
	if got := RoundKm(7.4567); got != 7.46 {
		t.Fatalf("got %f", got)
	}
	if got := RoundKm(0.104); got != 0.1 {
		t.Fatalf("got %f", got)
	}
}

func TestIndexNearby(t *testing.T) {
	idx := NewIndex()
	idx.Upsert(models.Venue{ID: "a", Loc: &models.Coordinate{Lat: 41.0090, Lon: 28.9790}})
	idx.Upsert(models.Venue{ID: "b", Loc: &models.Coordinate{Lat: 41.0500, Lon: 29.0500}})
	idx.Upsert(models.Venue{ID: "c", Loc: &models.Coordinate{Lat: 41.0082, Lon: 28.9784}})
	idx.Upsert(models.Venue{ID: "far", Loc: &models.Coordinate{Lat: 48.8566, Lon: 2.3522}})
	idx.Upsert(models.Venue{ID: "nocoord"})

	got := idx.Nearby(41.0082, 28.9784, 10000, 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 venues inside radius, got %d", len(got))
	}
	if got[0].ID != "c" || got[1].ID != "a" || got[2].ID != "b" {
		t.Fatalf("unexpected order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestIndexNearbyLimit(t *testing.T) {
	idx := NewIndex()
	idx.Upsert(models.Venue{ID: "a", Loc: &models.Coordinate{Lat: 41.0090, Lon: 28.9790}})
	idx.Upsert(models.Venue{ID: "b", Loc: &models.Coordinate{Lat: 41.0500, Lon: 29.0500}})
	got := idx.Nearby(41.0082, 28.9784, 10000, 1)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected just the nearest venue, got %v", got)
	}
}
