package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/venue-discovery/internal/geo"
	"github.com/example/venue-discovery/internal/models"
	"github.com/example/venue-discovery/internal/observability"
)

func (s *Server) routes() {
	s.mux.HandleFunc("/api/v1/venues/nearby", s.handleNearby).Methods("GET")
	s.mux.HandleFunc("/internal/venues", s.handleVenueUpsert).Methods("POST")

	s.mux.HandleFunc("/api/v1/session", s.handleSignIn).Methods("POST")
	s.mux.HandleFunc("/api/v1/session", s.handleSignOut).Methods("DELETE")

	for _, col := range []models.Collection{models.Favorites, models.Cart} {
		col := col
		base := "/api/v1/" + string(col)
		s.mux.HandleFunc(base, s.handleCollectionList(col)).Methods("GET")
		s.mux.HandleFunc(base+"/{venue_id}", s.handleCollectionPut(col)).Methods("PUT")
		s.mux.HandleFunc(base+"/{venue_id}", s.handleCollectionDelete(col)).Methods("DELETE")
	}

	s.mux.HandleFunc("/api/v1/reservations", s.handleReservationList).Methods("GET")
	s.mux.HandleFunc("/api/v1/reservations", s.handleReservationBook).Methods("POST")
	s.mux.HandleFunc("/api/v1/reservations/{venue_id}", s.handleReservationCancel).Methods("DELETE")

	s.mux.HandleFunc("/api/v1/orders", s.handleOrderPlace).Methods("POST")
	s.mux.HandleFunc("/api/v1/orders/{order_id}/accept", s.handleOrderDecision("accept")).Methods("POST")
	s.mux.HandleFunc("/api/v1/orders/{order_id}/reject", s.handleOrderDecision("reject")).Methods("POST")

	s.mux.HandleFunc("/api/v1/venues/{venue_id}/checkin", s.handleCheckIn).Methods("POST")
	s.mux.HandleFunc("/api/v1/venues/{venue_id}/photos", s.handlePhotoUpload).Methods("POST")
	s.mux.HandleFunc("/api/v1/venues/{venue_id}/photos/{filename}", s.handlePhotoGet).Methods("GET")

	s.mux.HandleFunc("/ws/presence/{venue_id}", s.handlePresenceWS)
	s.mux.HandleFunc("/ws/chat/{conversation_id}", s.handleChatWS)

	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

type nearbyVenue struct {
	models.Venue
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// handleNearby ranks venues around the caller's coordinate. A provider
// outage degrades to an empty list; only malformed input is an error.
func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	origin, err := parseCoordinate(r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	radius := s.cfg.DefaultRadiusM
	if v := r.URL.Query().Get("radius"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			http.Error(w, "invalid radius", http.StatusBadRequest)
			return
		}
		radius = f
	}
	observability.SearchesTotal.Inc()

	candidates, err := s.Places.Search(r.Context(), origin, radius, r.URL.Query().Get("category"))
	if err != nil {
		observability.ProviderFailures.Inc()
		s.logger.Error("places provider failed", "error", err)
		writeJSON(w, map[string]any{"venues": []nearbyVenue{}})
		return
	}

	ranked := s.Ranker.Rank(origin, candidates)
	out := make([]nearbyVenue, 0, len(ranked))
	for _, rv := range ranked {
		nv := nearbyVenue{Venue: rv.Venue}
		if rv.Ranked {
			d := geo.RoundKm(rv.DistanceKm)
			nv.DistanceKm = &d
		}
		out = append(out, nv)
	}
	writeJSON(w, map[string]any{"venues": out})
}

// handleVenueUpsert feeds the self-hosted venue index, the counterpart
// of the consumer's stream-driven updates.
func (s *Server) handleVenueUpsert(w http.ResponseWriter, r *http.Request) {
	var v models.Venue
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if v.ID == "" || v.Loc == nil || !v.Loc.Valid() {
		http.Error(w, "venue needs an id and a valid coordinate", http.StatusBadRequest)
		return
	}
	s.Geo.Upsert(v)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}
	s.Sessions.SignIn(body.UserID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.Sessions.SignOut()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCollectionList(col models.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs := s.Layers[col].List(r.Context())
		if recs == nil {
			recs = []models.OwnedRecord{}
		}
		writeJSON(w, map[string]any{"records": recs})
	}
}

func (s *Server) handleCollectionPut(col models.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fields map[string]string
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		rec := models.OwnedRecord{SubjectID: mux.Vars(r)["venue_id"], Fields: fields}
		if !s.Layers[col].Put(r.Context(), rec) {
			http.Error(w, "write failed", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleCollectionDelete(col models.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.Layers[col].Remove(r.Context(), mux.Vars(r)["venue_id"]) {
			http.Error(w, "delete failed", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleReservationList(w http.ResponseWriter, r *http.Request) {
	out := s.Reservations.List(r.Context())
	if out == nil {
		out = []models.Reservation{}
	}
	writeJSON(w, map[string]any{"reservations": out})
}

func (s *Server) handleReservationBook(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VenueID string    `json:"venue_id"`
		Party   int       `json:"party"`
		At      time.Time `json:"at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.VenueID == "" {
		http.Error(w, "venue_id, party and at required", http.StatusBadRequest)
		return
	}
	res, err := s.Reservations.Book(r.Context(), body.VenueID, body.Party, body.At)
	if err != nil {
		// User-initiated action: the failure is surfaced inline.
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleReservationCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.Reservations.Cancel(r.Context(), mux.Vars(r)["venue_id"]); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOrderPlace(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.Sessions.CurrentUserID()
	if !ok {
		http.Error(w, "sign in to place an order", http.StatusUnauthorized)
		return
	}
	var body struct {
		VenueID string             `json:"venue_id"`
		Items   []models.OrderItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.VenueID == "" {
		http.Error(w, "venue_id and items required", http.StatusBadRequest)
		return
	}
	o, err := s.Orders.Place(r.Context(), userID, body.VenueID, body.Items)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, o)
}

func (s *Server) handleOrderDecision(decision string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := mux.Vars(r)["order_id"]
		var (
			o   *models.Order
			err error
		)
		if decision == "accept" {
			o, err = s.Orders.Accept(r.Context(), orderID)
		} else {
			o, err = s.Orders.Reject(r.Context(), orderID)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeJSON(w, o)
	}
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.Sessions.CurrentUserID()
	if !ok {
		http.Error(w, "sign in to check in", http.StatusUnauthorized)
		return
	}
	var body struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	loc := models.Coordinate{Lat: body.Lat, Lon: body.Lon}
	if !loc.Valid() {
		http.Error(w, "invalid coordinate", http.StatusBadRequest)
		return
	}
	c := s.Presence.Announce(models.CheckIn{
		UserID:  userID,
		VenueID: mux.Vars(r)["venue_id"],
		Loc:     loc,
	})
	writeJSON(w, c)
}

func (s *Server) handlePhotoUpload(w http.ResponseWriter, r *http.Request) {
	if s.Photos == nil {
		http.Error(w, "photo storage not configured", http.StatusServiceUnavailable)
		return
	}
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		http.Error(w, "filename required", http.StatusBadRequest)
		return
	}
	key, err := s.Photos.Put(r.Context(), mux.Vars(r)["venue_id"], filename, r.Header.Get("Content-Type"), r.Body, r.ContentLength)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"key": key})
}

func (s *Server) handlePhotoGet(w http.ResponseWriter, r *http.Request) {
	if s.Photos == nil {
		http.Error(w, "photo storage not configured", http.StatusServiceUnavailable)
		return
	}
	vars := mux.Vars(r)
	obj, err := s.Photos.Get(r.Context(), vars["venue_id"], vars["filename"])
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	defer obj.Close()
	if _, err := io.Copy(w, obj); err != nil {
		s.logger.Warn("photo stream interrupted", "error", err)
	}
}

func (s *Server) handlePresenceWS(w http.ResponseWriter, r *http.Request) {
	venueID := mux.Vars(r)["venue_id"]
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "upgrade failed", http.StatusBadRequest)
		return
	}
	sess := s.PresenceReg.Watch(venueID, conn)
	defer s.PresenceReg.Unwatch(venueID, sess)
	// Hold the watcher open until the peer goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "upgrade failed", http.StatusBadRequest)
		return
	}
	s.Chat.Join(mux.Vars(r)["conversation_id"], conn)
}

var errInvalidCoordinate = errors.New("invalid coordinate")

func parseCoordinate(latStr, lonStr string) (models.Coordinate, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return models.Coordinate{}, errInvalidCoordinate
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return models.Coordinate{}, errInvalidCoordinate
	}
	c := models.Coordinate{Lat: lat, Lon: lon}
	if !c.Valid() {
		return models.Coordinate{}, errInvalidCoordinate
	}
	return c, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
