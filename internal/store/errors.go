package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when a user's email is already taken.
var ErrDuplicateEmail = errors.New("email already exists")

// ErrInsufficientFunds is returned when a purchase exceeds the buyer's balance.
var ErrInsufficientFunds = errors.New("insufficient balance")
