package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/tickettrail/apiserver/types"
)

const userColumns = `id, name, email, password_hash, money_balance, bought_tickets, created_at, updated_at`

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, money_balance, bought_tickets`
	var bought pq.Int64Array
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID, &user.Balance, &bought); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return types.User{}, ErrDuplicateEmail
		}
		return types.User{}, err
	}
	user.BoughtTickets = bought
	if user.BoughtTickets == nil {
		user.BoughtTickets = []int64{}
	}
	return user, nil
}

// List returns all users sorted by name ascending.
func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// ListWithTickets returns every user joined with its tickets, sorted by
// user name. Users without tickets appear with an empty ticket list.
func (r *UserRepository) ListWithTickets(ctx context.Context) ([]types.UserWithTickets, error) {
	const query = `
		SELECT u.id, u.name, u.email, u.password_hash, u.money_balance, u.bought_tickets, u.created_at, u.updated_at,
			t.id, t.title, t.user_id, t.price, t.from_location, t.to_location, t.to_location_photo_url, t.created_at
		FROM users u
		LEFT JOIN tickets t ON t.user_id = u.id
		ORDER BY u.name, u.id, t.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]types.UserWithTickets, 0)
	for rows.Next() {
		var user types.User
		var bought pq.Int64Array
		var ticketID, ticketUserID sql.NullInt64
		var title, from, to, photoURL sql.NullString
		var price sql.NullInt64
		var ticketCreatedAt sql.NullTime
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Balance,
			&bought,
			&user.CreatedAt,
			&user.UpdatedAt,
			&ticketID,
			&title,
			&ticketUserID,
			&price,
			&from,
			&to,
			&photoURL,
			&ticketCreatedAt,
		); err != nil {
			return nil, err
		}

		if len(result) == 0 || result[len(result)-1].ID != user.ID {
			user.BoughtTickets = bought
			if user.BoughtTickets == nil {
				user.BoughtTickets = []int64{}
			}
			result = append(result, types.UserWithTickets{
				User:    user,
				Tickets: []types.Ticket{},
			})
		}

		if ticketID.Valid {
			entry := &result[len(result)-1]
			entry.Tickets = append(entry.Tickets, types.Ticket{
				ID:                 int(ticketID.Int64),
				Title:              title.String,
				UserID:             int(ticketUserID.Int64),
				Price:              price.Int64,
				FromLocation:       from.String,
				ToLocation:         to.String,
				ToLocationPhotoURL: photoURL.String,
				CreatedAt:          ticketCreatedAt.Time,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetWithTickets returns one user joined with its tickets.
func (r *UserRepository) GetWithTickets(ctx context.Context, id int) (types.UserWithTickets, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return types.UserWithTickets{}, err
	}

	const query = `
		SELECT id, title, user_id, price, from_location, to_location, to_location_photo_url, created_at
		FROM tickets
		WHERE user_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return types.UserWithTickets{}, err
	}
	defer rows.Close()

	tickets := make([]types.Ticket, 0)
	for rows.Next() {
		var ticket types.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.UserID,
			&ticket.Price,
			&ticket.FromLocation,
			&ticket.ToLocation,
			&ticket.ToLocationPhotoURL,
			&ticket.CreatedAt,
		); err != nil {
			return types.UserWithTickets{}, err
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return types.UserWithTickets{}, err
	}

	return types.UserWithTickets{User: user, Tickets: tickets}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (types.User, error) {
	var user types.User
	var bought pq.Int64Array
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Balance,
		&bought,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	user.BoughtTickets = bought
	if user.BoughtTickets == nil {
		user.BoughtTickets = []int64{}
	}
	return user, nil
}
