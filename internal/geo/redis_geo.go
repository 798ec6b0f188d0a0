package geo

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/example/venue-discovery/internal/models"
)

// RedisGeo implements Geo using Redis GEO commands, with a hash per
// venue for the metadata GEOADD cannot carry.
type RedisGeo struct {
	client *redis.Client
	key    string
	ctx    context.Context
}

func NewRedisGeo(addr, password, key string) *RedisGeo {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisGeo{client: c, key: key, ctx: context.Background()}
}

func (r *RedisGeo) Upsert(v models.Venue) {
	if v.Loc == nil {
		return
	}
	_, _ = r.client.GeoAdd(r.ctx, r.key, &redis.GeoLocation{Longitude: v.Loc.Lon, Latitude: v.Loc.Lat, Name: v.ID}).Result()
	_ = r.client.HSet(r.ctx, metaKey(v.ID), map[string]interface{}{
		"name":     v.Name,
		"category": v.Category,
		"address":  v.Address,
		"rating":   strconv.FormatFloat(v.Rating, 'f', -1, 64),
	}).Err()
}

func (r *RedisGeo) Nearby(lat, lon, radiusMeters float64, limit int) []models.Venue {
	res, err := r.client.GeoRadius(r.ctx, r.key, lon, lat, &redis.GeoRadiusQuery{
		Radius: radiusMeters, Unit: "m", WithCoord: true, WithDist: true, Count: limit, Sort: "ASC",
	}).Result()
	if err != nil {
		return nil
	}
	out := make([]models.Venue, 0, len(res))
	for _, g := range res {
		v := models.Venue{ID: g.Name, Loc: &models.Coordinate{Lat: g.Latitude, Lon: g.Longitude}}
		if m, err := r.client.HGetAll(r.ctx, metaKey(g.Name)).Result(); err == nil {
			v.Name = m["name"]
			v.Category = m["category"]
			v.Address = m["address"]
			if s, ok := m["rating"]; ok {
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					v.Rating = f
				}
			}
		}
		out = append(out, v)
	}
	return out
}

func metaKey(id string) string { return "venue:meta:" + id }
