package geo

import (
	"math"
	"sync"
	"time"

	"github.com/example/venue-discovery/internal/models"
)

// Geo is the minimal venue-index interface required by the handlers.
// Radius is in meters to match what the places surface accepts.
type Geo interface {
	Nearby(lat, lon, radiusMeters float64, limit int) []models.Venue
	Upsert(v models.Venue)
}

// Index is an in-memory venue index, a drop-in for RedisGeo when no
// Redis is configured. Naive scan; fine for the bounded metropolitan
// data sets this serves.
type Index struct {
	mu     sync.RWMutex
	venues map[string]indexed
}

type indexed struct {
	v       models.Venue
	updated time.Time
}

func NewIndex() *Index {
	return &Index{venues: make(map[string]indexed)}
}

func (g *Index) Upsert(v models.Venue) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.venues[v.ID] = indexed{v: v, updated: time.Now()}
}

func (g *Index) Nearby(lat, lon, radiusMeters float64, limit int) []models.Venue {
	g.mu.RLock()
	defer g.mu.RUnlock()
	type pair struct {
		v    models.Venue
		dist float64
	}
	arr := make([]pair, 0, len(g.venues))
	for _, e := range g.venues {
		if e.v.Loc == nil {
			continue
		}
		dist := Haversine(lat, lon, e.v.Loc.Lat, e.v.Loc.Lon)
		if dist*1000 > radiusMeters {
			continue
		}
		arr = append(arr, pair{e.v, dist})
	}
	// partial selection sort for top-N
	n := limit
	if n > len(arr) {
		n = len(arr)
	}
	for i := 0; i < n; i++ {
		minIdx := i
		for j := i + 1; j < len(arr); j++ {
			if arr[j].dist < arr[minIdx].dist {
				minIdx = j
			}
		}
		arr[i], arr[minIdx] = arr[minIdx], arr[i]
	}
	out := make([]models.Venue, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, arr[i].v)
	}
	return out
}

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance between two points in
// kilometers. Inputs are decimal degrees and assumed valid; identical
// points yield exactly 0.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180.0 }

// RoundKm rounds a distance for display. Sorting always uses the full
// precision value.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}
