package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/venue-discovery/internal/config"
	"github.com/example/venue-discovery/internal/logging"
	"github.com/example/venue-discovery/internal/models"
	"github.com/example/venue-discovery/internal/places"
)

type fakeGateway struct{ holdErr error }

func (f *fakeGateway) Hold(ctx context.Context, amount int64, currency, customerID string) (string, error) {
	if f.holdErr != nil {
		return "", f.holdErr
	}
	return "pi_test", nil
}
func (f *fakeGateway) Capture(ctx context.Context, paymentID string) error { return nil }
func (f *fakeGateway) Cancel(ctx context.Context, paymentID string) error  { return nil }

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		HTTPAddr:        ":0",
		RedisGeoKey:     "venues_geo",
		NearbyLimit:     50,
		DefaultRadiusM:  10000,
		DefaultCurrency: "usd",
		LogLevel:        "error",
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv := NewServer(testConfig(), logging.NewLoggerTo(bytes.NewBuffer(nil), "error"))
	srv.Orders.Payments = &fakeGateway{}
	return srv
}

func upsertVenue(t *testing.T, srv *Server, v models.Venue) {
	t.Helper()
	b, _ := json.Marshal(v)
	req := httptest.NewRequest("POST", "/internal/venues", bytes.NewReader(b))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestNearbyRanksByDistance(t *testing.T) {
	srv := newTestServer(t)
	upsertVenue(t, srv, models.Venue{ID: "A", Name: "Cafe A", Loc: &models.Coordinate{Lat: 41.0090, Lon: 28.9790}})
	upsertVenue(t, srv, models.Venue{ID: "B", Name: "Bar B", Loc: &models.Coordinate{Lat: 41.0500, Lon: 29.0500}})
	upsertVenue(t, srv, models.Venue{ID: "C", Name: "Cafe C", Loc: &models.Coordinate{Lat: 41.0082, Lon: 28.9784}})

	req := httptest.NewRequest("GET", "/api/v1/venues/nearby?lat=41.0082&lon=28.9784", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Venues []struct {
			ID         string   `json:"id"`
			DistanceKm *float64 `json:"distance_km"`
		} `json:"venues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Venues, 3)
	assert.Equal(t, "C", body.Venues[0].ID)
	assert.Equal(t, "A", body.Venues[1].ID)
	assert.Equal(t, "B", body.Venues[2].ID)

	require.NotNil(t, body.Venues[0].DistanceKm)
	assert.Zero(t, *body.Venues[0].DistanceKm)
	require.NotNil(t, body.Venues[2].DistanceKm)
	assert.InDelta(t, 7.5, *body.Venues[2].DistanceKm, 1.0)
}

func TestNearbyRejectsMalformedCoordinates(t *testing.T) {
	srv := newTestServer(t)
	for _, q := range []string{"", "lat=91&lon=0", "lat=abc&lon=1", "lat=1&lon=181"} {
		req := httptest.NewRequest("GET", "/api/v1/venues/nearby?"+q, nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %q", q)
	}
}

type failingProvider struct{}

func (failingProvider) Search(ctx context.Context, origin models.Coordinate, radiusMeters float64, category string) ([]models.Venue, error) {
	return nil, errors.New("network error")
}

func TestNearbyDegradesToEmptyOnProviderFailure(t *testing.T) {
	srv := newTestServer(t)
	srv.Places = failingProvider{}

	req := httptest.NewRequest("GET", "/api/v1/venues/nearby?lat=41.0082&lon=28.9784", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "provider outages must not become client errors")
	var body struct {
		Venues []json.RawMessage `json:"venues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Venues)
}

var _ places.Provider = failingProvider{}

func TestFavoritesMigrateOnSignIn(t *testing.T) {
	srv := newTestServer(t)

	// Anonymous favorite lands in local storage.
	req := httptest.NewRequest("PUT", "/api/v1/favorites/v1", bytes.NewReader([]byte(`{"name":"Cafe X"}`)))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Sign in; the next read claims the record remotely.
	req = httptest.NewRequest("POST", "/api/v1/session", bytes.NewReader([]byte(`{"user_id":"u1"}`)))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest("GET", "/api/v1/favorites", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Records []models.OwnedRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Records, 1)
	assert.Equal(t, "u1", body.Records[0].UserID)
	assert.Equal(t, "v1", body.Records[0].SubjectID)
	assert.Equal(t, "Cafe X", body.Records[0].Fields["name"])
}

func TestOrderRequiresSession(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest("POST", "/api/v1/orders", bytes.NewReader([]byte(`{"venue_id":"v1","items":[{"name":"tea","quantity":1,"cents":200}]}`)))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderLifecycle(t *testing.T) {
	srv := newTestServer(t)
	srv.Sessions.SignIn("u1")

	req := httptest.NewRequest("POST", "/api/v1/orders", bytes.NewReader([]byte(`{"venue_id":"v1","items":[{"name":"tea","quantity":2,"cents":200}]}`)))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var o models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, "placed", o.Status)
	assert.Equal(t, "pi_test", o.PaymentID)

	req = httptest.NewRequest("POST", "/api/v1/orders/"+o.ID+"/accept", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, "accepted", o.Status)
}

func TestOrderPaymentFailureSurfacedInline(t *testing.T) {
	srv := newTestServer(t)
	srv.Sessions.SignIn("u1")
	srv.Orders.Payments = &fakeGateway{holdErr: errors.New("card declined")}

	req := httptest.NewRequest("POST", "/api/v1/orders", bytes.NewReader([]byte(`{"venue_id":"v1","items":[{"name":"tea","quantity":1,"cents":200}]}`)))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "card declined")
}

func TestReservationBookAndCancel(t *testing.T) {
	srv := newTestServer(t)
	at := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)

	req := httptest.NewRequest("POST", "/api/v1/reservations", bytes.NewReader([]byte(`{"venue_id":"v1","party":2,"at":"`+at+`"}`)))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest("GET", "/api/v1/reservations", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Reservations []models.Reservation `json:"reservations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Reservations, 1)

	req = httptest.NewRequest("DELETE", "/api/v1/reservations/v1", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCheckInRequiresSessionAndValidCoordinate(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/venues/v1/checkin", bytes.NewReader([]byte(`{"lat":41,"lon":29}`)))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	srv.Sessions.SignIn("u1")

	req = httptest.NewRequest("POST", "/api/v1/venues/v1/checkin", bytes.NewReader([]byte(`{"lat":99,"lon":29}`)))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest("POST", "/api/v1/venues/v1/checkin", bytes.NewReader([]byte(`{"lat":41,"lon":29}`)))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var c models.CheckIn
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "v1", c.VenueID)
	assert.False(t, c.At.IsZero())
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
