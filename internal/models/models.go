package models

import "time"

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both components are inside the usual
// latitude/longitude ranges. Validation happens at the boundary; the
// distance math itself assumes valid input.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Venue is a point-of-interest record as returned by a places provider.
// The ranker never mutates one; it annotates distance onto a copy.
type Venue struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Loc      *Coordinate `json:"loc,omitempty"` // nil when the provider could not resolve one
	Address  string      `json:"address,omitempty"`
	Rating   float64     `json:"rating,omitempty"` // 0..5
}

// RankedVenue pairs a venue with its computed distance from the query
// origin. Ranked is false for venues kept under the rank-last policy,
// whose distance is not meaningful.
type RankedVenue struct {
	Venue
	DistanceKm float64 `json:"distance_km"`
	Ranked     bool    `json:"ranked"`
}

// Collection names the user-owned record sets the reconciliation layer
// manages. Each has a fixed device-storage key derived from it.
type Collection string

const (
	Favorites    Collection = "favorites"
	Cart         Collection = "cart"
	Reservations Collection = "reservations"
)

// OwnedRecord is one user-owned record in canonical form: a subject
// venue plus a flat set of canonical fields. At most one remote record
// exists per (UserID, SubjectID, Collection).
type OwnedRecord struct {
	UserID    string            `json:"user_id,omitempty"`
	SubjectID string            `json:"subject_id"`
	Fields    map[string]string `json:"fields,omitempty"`
	UpdatedAt time.Time         `json:"updated_at,omitempty"`
}

type Reservation struct {
	ID      string    `json:"id"`
	UserID  string    `json:"user_id"`
	VenueID string    `json:"venue_id"`
	Party   int       `json:"party"`
	At      time.Time `json:"at"`
	Status  string    `json:"status"` // requested, confirmed, canceled
}

type OrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Cents    int64  `json:"cents"`
}

type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	VenueID   string      `json:"venue_id"`
	Items     []OrderItem `json:"items"`
	Currency  string      `json:"currency"`
	PaymentID string      `json:"payment_id,omitempty"`
	Status    string      `json:"status"` // placed, accepted, rejected
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TotalCents sums the line items.
func (o Order) TotalCents() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.Cents * int64(it.Quantity)
	}
	return total
}

// CheckIn is a presence broadcast: a user announcing themselves at a
// venue to other users subscribed there.
type CheckIn struct {
	UserID  string     `json:"user_id"`
	VenueID string     `json:"venue_id"`
	Loc     Coordinate `json:"loc"`
	At      time.Time  `json:"at"`
}

type ChatMessage struct {
	ConversationID string    `json:"conversation_id"`
	From           string    `json:"from"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sent_at"`
}
