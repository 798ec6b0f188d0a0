// Package rank orders place candidates by distance from a query origin.
package rank

import (
	"sort"

	"github.com/example/venue-discovery/internal/geo"
	"github.com/example/venue-discovery/internal/models"
)

// MissingCoordPolicy decides what happens to candidates without a
// resolvable coordinate. Defaulting their distance to zero would rank
// unknowns as nearest, so that is deliberately not an option here.
type MissingCoordPolicy int

const (
	// Exclude drops candidates without a coordinate from the output.
	Exclude MissingCoordPolicy = iota
	// RankLast keeps them at the tail, unranked, in input order.
	RankLast
)

type Ranker struct {
	Policy MissingCoordPolicy
}

// Rank annotates each candidate with its distance from origin and
// returns them sorted ascending. The sort is stable: ties keep the
// relative input order. Pure transformation; candidates are not mutated.
func (r Ranker) Rank(origin models.Coordinate, candidates []models.Venue) []models.RankedVenue {
	ranked := make([]models.RankedVenue, 0, len(candidates))
	var tail []models.RankedVenue
	for _, c := range candidates {
		if c.Loc == nil {
			if r.Policy == RankLast {
				tail = append(tail, models.RankedVenue{Venue: c})
			}
			continue
		}
		ranked = append(ranked, models.RankedVenue{
			Venue:      c,
			DistanceKm: geo.Haversine(origin.Lat, origin.Lon, c.Loc.Lat, c.Loc.Lon),
			Ranked:     true,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	return append(ranked, tail...)
}
