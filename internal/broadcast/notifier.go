package broadcast

import "github.com/google/uuid"

// Event type published when a review is created for a place.
const EventReviewUpdated = "review_updated"

// ReviewUpdatedPayload carries at minimum the affected place id; the full
// refreshed place is attached when available so connected clients can update
// their local view without a re-fetch.
type ReviewUpdatedPayload struct {
	PlaceID uuid.UUID `json:"placeId"`
	Place   any       `json:"place,omitempty"`
}

// Notifier is the single publish point for data-change notifications. It is
// fire-and-forget: no delivery guarantee, no per-client filtering, and a
// disconnected client misses everything published during its absence.
type Notifier interface {
	Notify(event string, payload any)
}

// Noop discards every notification. Used in tests and in the seeder.
type Noop struct{}

func (Noop) Notify(string, any) {}
