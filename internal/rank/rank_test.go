package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/venue-discovery/internal/models"
)

var istanbul = models.Coordinate{Lat: 41.0082, Lon: 28.9784}

func candidates() []models.Venue {
	return []models.Venue{
		{ID: "A", Loc: &models.Coordinate{Lat: 41.0090, Lon: 28.9790}},
		{ID: "B", Loc: &models.Coordinate{Lat: 41.0500, Lon: 29.0500}},
		{ID: "C", Loc: &models.Coordinate{Lat: 41.0082, Lon: 28.9784}},
	}
}

func TestRankOrdersByDistance(t *testing.T) {
	out := Ranker{}.Rank(istanbul, candidates())

	assert.Len(t, out, 3)
	assert.Equal(t, "C", out[0].ID)
	assert.Equal(t, "A", out[1].ID)
	assert.Equal(t, "B", out[2].ID)

	assert.Zero(t, out[0].DistanceKm)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i].DistanceKm, out[i-1].DistanceKm)
	}
}

func TestRankDeterministic(t *testing.T) {
	first := Ranker{}.Rank(istanbul, candidates())
	for i := 0; i < 5; i++ {
		again := Ranker{}.Rank(istanbul, candidates())
		assert.Equal(t, first, again)
	}
}

func TestRankStableOnTies(t *testing.T) {
	// Two venues at the same point as each other; input order must hold.
	same := models.Coordinate{Lat: 41.0100, Lon: 28.9800}
	cands := []models.Venue{
		{ID: "first", Loc: &same},
		{ID: "second", Loc: &same},
	}
	out := Ranker{}.Rank(istanbul, cands)
	assert.Equal(t, "first", out[0].ID)
	assert.Equal(t, "second", out[1].ID)
}

func TestRankExcludesMissingCoordinates(t *testing.T) {
	cands := append(candidates(), models.Venue{ID: "unknown"})
	out := Ranker{Policy: Exclude}.Rank(istanbul, cands)
	assert.Len(t, out, 3)
	for _, rv := range out {
		assert.NotEqual(t, "unknown", rv.ID)
	}
}

func TestRankLastKeepsMissingCoordinatesAtTail(t *testing.T) {
	cands := []models.Venue{
		{ID: "u1"},
		{ID: "B", Loc: &models.Coordinate{Lat: 41.0500, Lon: 29.0500}},
		{ID: "u2"},
		{ID: "A", Loc: &models.Coordinate{Lat: 41.0090, Lon: 28.9790}},
	}
	out := Ranker{Policy: RankLast}.Rank(istanbul, cands)
	assert.Len(t, out, 4)
	assert.Equal(t, "A", out[0].ID)
	assert.Equal(t, "B", out[1].ID)
	// tail preserves input order and carries no rank
	assert.Equal(t, "u1", out[2].ID)
	assert.Equal(t, "u2", out[3].ID)
	assert.False(t, out[2].Ranked)
	assert.False(t, out[3].Ranked)
}

func TestRankEmptyInput(t *testing.T) {
	out := Ranker{}.Rank(istanbul, nil)
	assert.Empty(t, out)
}
