package types

import "time"

// Ticket represents a purchased ticket. Tickets are created exactly
// once at purchase time and are immutable afterwards.
type Ticket struct {
	// ID is the unique identifier of the ticket.
	ID int `json:"id" db:"id"`

	// Title is the ticket's free-text title.
	Title string `json:"title" db:"title"`

	// UserID references the user who purchased the ticket.
	UserID int `json:"user_id" db:"user_id"`

	// Price is the amount debited from the buyer, in whole currency units.
	Price int64 `json:"price" db:"price"`

	// FromLocation is the optional origin of the trip.
	FromLocation string `json:"from_location,omitempty" db:"from_location"`

	// ToLocation is the optional destination of the trip.
	ToLocation string `json:"to_location,omitempty" db:"to_location"`

	// ToLocationPhotoURL is an optional photo URL for the destination.
	ToLocationPhotoURL string `json:"to_location_photo_url,omitempty" db:"to_location_photo_url"`

	// CreatedAt is the timestamp of the purchase.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
