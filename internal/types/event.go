package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day component. Events are date-only
// and carry no timezone handling beyond calendar-date granularity.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Event is a dated happening associated with a place, shown on the public
// calendar view.
type Event struct {
	ID          uuid.UUID `json:"id"`
	PlaceID     uuid.UUID `json:"place_id"`
	EventDate   Date      `json:"event_date"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventWithPlace joins an event with its place and station for display.
type EventWithPlace struct {
	Event
	PlaceName   string `json:"place_name"`
	StationID   string `json:"station_id"`
	StationName string `json:"station_name"`
}

// EventUpsertRequest covers create and update; update is full-replace.
type EventUpsertRequest struct {
	PlaceID     uuid.UUID `json:"place_id" validate:"required"`
	EventDate   Date      `json:"event_date" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
}
