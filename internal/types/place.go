package types

import (
	"time"

	"github.com/google/uuid"
)

// LatLng is a parsed coordinate pair. Stored as JSONB, nil when the place has
// no usable coordinates.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a point of interest associated with exactly one station.
type Place struct {
	ID           uuid.UUID         `json:"id"`
	StationID    string            `json:"station_id"`
	Name         string            `json:"name"`
	Category     string            `json:"category,omitempty"`
	Description  string            `json:"description,omitempty"`
	Image        string            `json:"image,omitempty"`
	Gallery      []string          `json:"gallery"`
	OpeningHours string            `json:"openingHours,omitempty"`
	TravelInfo   string            `json:"travelInfo,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Contact      map[string]string `json:"contact"`
	Location     *LatLng           `json:"location"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ReviewSummary is the review shape embedded in place listings.
type ReviewSummary struct {
	User    string `json:"user"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// PlaceWithStats is a Place enriched with derived review data for the public
// station view. AverageRating is nil when the place has no reviews.
type PlaceWithStats struct {
	Place
	AverageRating *float64        `json:"average_rating"`
	ReviewCount   int             `json:"review_count"`
	Reviews       []ReviewSummary `json:"reviews"`
}

// PlaceUpsertRequest is the request body for both create and update. Update
// has full-replace semantics, so the same required fields apply: callers must
// resend every field, omitted optional fields are overwritten with empties.
// Latitude and longitude arrive as strings from form inputs and are parsed
// server-side; non-numeric values are treated as absent.
type PlaceUpsertRequest struct {
	StationID    string            `json:"station_id" validate:"required"`
	Name         string            `json:"name" validate:"required"`
	Category     string            `json:"category"`
	Description  string            `json:"description"`
	Image        string            `json:"image"`
	Gallery      []string          `json:"gallery"`
	OpeningHours string            `json:"openingHours"`
	TravelInfo   string            `json:"travelInfo"`
	Phone        string            `json:"phone"`
	Contact      map[string]string `json:"contact"`
	Latitude     string            `json:"lat"`
	Longitude    string            `json:"lng"`
}
