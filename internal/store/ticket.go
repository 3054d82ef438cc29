package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/tickettrail/apiserver/types"
)

// TicketRepository handles persistence for tickets, including the
// purchase transaction that debits the buyer.
type TicketRepository struct {
	db *sql.DB
}

func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) GetByID(ctx context.Context, id int) (types.Ticket, error) {
	const query = `
		SELECT id, title, user_id, price, from_location, to_location, to_location_photo_url, created_at
		FROM tickets
		WHERE id = $1`
	var ticket types.Ticket
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.UserID,
		&ticket.Price,
		&ticket.FromLocation,
		&ticket.ToLocation,
		&ticket.ToLocationPhotoURL,
		&ticket.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Ticket{}, ErrNotFound
		}
		return types.Ticket{}, err
	}
	return ticket, nil
}

// Purchase creates a ticket for the user and debits its balance in a
// single transaction. The buyer's row is locked for the duration, so
// two concurrent purchases cannot both pass the balance check. A
// failed check leaves both tables untouched.
func (r *TicketRepository) Purchase(ctx context.Context, userID int, ticket types.Ticket) (types.Ticket, types.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Ticket{}, types.User{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const lockQuery = `
		SELECT money_balance
		FROM users
		WHERE id = $1
		FOR UPDATE`
	var balance int64
	if err := tx.QueryRowContext(ctx, lockQuery, userID).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Ticket{}, types.User{}, ErrNotFound
		}
		return types.Ticket{}, types.User{}, err
	}

	if balance < ticket.Price {
		return types.Ticket{}, types.User{}, ErrInsufficientFunds
	}

	ticket.UserID = userID
	ticket.CreatedAt = time.Now()

	const insertQuery = `
		INSERT INTO tickets (title, user_id, price, from_location, to_location, to_location_photo_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := tx.QueryRowContext(
		ctx,
		insertQuery,
		ticket.Title,
		ticket.UserID,
		ticket.Price,
		ticket.FromLocation,
		ticket.ToLocation,
		ticket.ToLocationPhotoURL,
		ticket.CreatedAt,
	).Scan(&ticket.ID); err != nil {
		return types.Ticket{}, types.User{}, err
	}

	const debitQuery = `
		UPDATE users
		SET money_balance = money_balance - $1,
			bought_tickets = array_append(bought_tickets, $2),
			updated_at = $3
		WHERE id = $4
		RETURNING ` + userColumns
	var user types.User
	var bought pq.Int64Array
	if err := tx.QueryRowContext(
		ctx,
		debitQuery,
		ticket.Price,
		ticket.ID,
		time.Now(),
		userID,
	).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Balance,
		&bought,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return types.Ticket{}, types.User{}, err
	}
	user.BoughtTickets = bought

	if err := tx.Commit(); err != nil {
		return types.Ticket{}, types.User{}, err
	}
	return ticket, user, nil
}
