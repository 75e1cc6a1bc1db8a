package types

import (
	"time"

	"github.com/google/uuid"
)

// Review is an unauthenticated user-submitted rating and comment on a place.
type Review struct {
	ID        uuid.UUID `json:"id"`
	PlaceID   uuid.UUID `json:"place_id"`
	User      string    `json:"user"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateReviewRequest struct {
	User    string `json:"user" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}
