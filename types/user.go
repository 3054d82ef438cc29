package types

import "time"

// User represents an account in the system.
// It contains identity, wallet state, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Name is the user's display name, title-cased at registration.
	Name string `json:"name" db:"name"`

	// Email is the user's unique email address.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Balance is the user's remaining money balance in whole
	// currency units. New accounts start at 1000.
	Balance int64 `json:"money_balance" db:"money_balance"`

	// BoughtTickets is the append-only list of ticket IDs the user
	// has purchased, mirroring the ticket-to-user relationship.
	BoughtTickets []int64 `json:"bought_tickets" db:"bought_tickets"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserWithTickets pairs a user with its full purchase history.
// Users with no purchases carry an empty, not absent, ticket list.
type UserWithTickets struct {
	User
	Tickets []Ticket `json:"tickets"`
}
