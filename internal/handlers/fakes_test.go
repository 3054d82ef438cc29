package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/tickettrail/apiserver/internal/services"
	"github.com/tickettrail/apiserver/internal/store"
	"github.com/tickettrail/apiserver/internal/token"
	"github.com/tickettrail/apiserver/types"
)

// fakeStore holds in-memory state shared by the fake user and ticket
// repositories, mirroring the Postgres store's semantics.
type fakeStore struct {
	users        map[int]*types.User
	tickets      map[int]*types.Ticket
	nextUserID   int
	nextTicketID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[int]*types.User),
		tickets:      make(map[int]*types.Ticket),
		nextUserID:   1,
		nextTicketID: 1,
	}
}

func (f *fakeStore) userByID(id int) types.User {
	user, ok := f.users[id]
	if !ok {
		return types.User{}
	}
	return *user
}

func (f *fakeStore) ticketByID(id int) types.Ticket {
	ticket, ok := f.tickets[id]
	if !ok {
		return types.Ticket{}
	}
	return *ticket
}

func (f *fakeStore) ticketsForUser(userID int) []types.Ticket {
	tickets := make([]types.Ticket, 0)
	for _, ticket := range f.tickets {
		if ticket.UserID == userID {
			tickets = append(tickets, *ticket)
		}
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
	return tickets
}

type fakeUserRepo struct {
	*fakeStore
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	now := time.Now()
	user.ID = f.nextUserID
	user.Balance = 1000
	user.BoughtTickets = []int64{}
	user.CreatedAt = now
	user.UpdatedAt = now
	f.nextUserID++
	stored := user
	f.users[user.ID] = &stored
	return user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return *user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return *user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]types.User, error) {
	users := make([]types.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (f *fakeUserRepo) ListWithTickets(ctx context.Context) ([]types.UserWithTickets, error) {
	users, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]types.UserWithTickets, 0, len(users))
	for _, user := range users {
		result = append(result, types.UserWithTickets{
			User:    user,
			Tickets: f.ticketsForUser(user.ID),
		})
	}
	return result, nil
}

func (f *fakeUserRepo) GetWithTickets(ctx context.Context, id int) (types.UserWithTickets, error) {
	user, err := f.GetByID(ctx, id)
	if err != nil {
		return types.UserWithTickets{}, err
	}
	return types.UserWithTickets{User: user, Tickets: f.ticketsForUser(id)}, nil
}

type fakeTicketRepo struct {
	*fakeStore
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id int) (types.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return types.Ticket{}, store.ErrNotFound
	}
	return *ticket, nil
}

func (f *fakeTicketRepo) Purchase(ctx context.Context, userID int, ticket types.Ticket) (types.Ticket, types.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return types.Ticket{}, types.User{}, store.ErrNotFound
	}
	if user.Balance < ticket.Price {
		return types.Ticket{}, types.User{}, store.ErrInsufficientFunds
	}

	ticket.ID = f.nextTicketID
	ticket.UserID = userID
	ticket.CreatedAt = time.Now()
	f.nextTicketID++
	stored := ticket
	f.tickets[ticket.ID] = &stored

	user.Balance -= ticket.Price
	user.BoughtTickets = append(user.BoughtTickets, int64(ticket.ID))
	user.UpdatedAt = time.Now()

	return ticket, *user, nil
}

func newTestRouter(t *testing.T) (*chi.Mux, *fakeStore, *token.Service) {
	t.Helper()

	fs := newFakeStore()
	tokens, err := token.NewService("test-access-secret", "test-refresh-secret")
	require.NoError(t, err)

	userService := services.NewUserService(&fakeUserRepo{fs})
	ticketService := services.NewTicketService(&fakeTicketRepo{fs})
	authMiddleware := RequireAuth(tokens)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, tokens)
	})
	router.Route("/users", func(r chi.Router) {
		UserRouter(r, userService, authMiddleware)
	})
	router.Route("/tickets", func(r chi.Router) {
		TicketRouter(r, ticketService, nil, nil, authMiddleware)
	})
	return router, fs, tokens
}

func doJSON(t *testing.T, router http.Handler, method, target, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &value))
	return value
}
