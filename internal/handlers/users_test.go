package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tickettrail/apiserver/types"
)

func registerOne(t *testing.T, router http.Handler, name, email string) AuthResponse {
	t.Helper()
	recorder := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Name: name, Email: email, Password: "abc123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	return decodeBody[AuthResponse](t, recorder)
}

func TestListUsersSortedByName(t *testing.T) {
	router, _, _ := newTestRouter(t)

	registerOne(t, router, "Zoe", "zoe@b.com")
	auth := registerOne(t, router, "Adam", "adam@b.com")

	recorder := doJSON(t, router, http.MethodGet, "/users", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	users := decodeBody[[]types.User](t, recorder)
	require.Len(t, users, 2)
	assert.Equal(t, "Adam", users[0].Name)
	assert.Equal(t, "Zoe", users[1].Name)
}

func TestGetUser(t *testing.T) {
	router, _, _ := newTestRouter(t)
	auth := registerOne(t, router, "Ana", "a@b.com")

	recorder := doJSON(t, router, http.MethodGet, "/users/1", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	user := decodeBody[types.User](t, recorder)
	assert.Equal(t, auth.User.ID, user.ID)

	missing := doJSON(t, router, http.MethodGet, "/users/99", auth.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	malformed := doJSON(t, router, http.MethodGet, "/users/abc", auth.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, malformed.Code)
}

func TestGetUserWithTicketsEmptyHistory(t *testing.T) {
	router, _, _ := newTestRouter(t)
	auth := registerOne(t, router, "Ana", "a@b.com")

	recorder := doJSON(t, router, http.MethodGet, "/users/1/tickets", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	// Zero purchases yield an empty ticket array, not a missing field.
	assert.Contains(t, recorder.Body.String(), `"tickets":[]`)

	result := decodeBody[types.UserWithTickets](t, recorder)
	assert.Equal(t, auth.User.ID, result.ID)
	assert.Empty(t, result.Tickets)
}

func TestGetUserWithTickets(t *testing.T) {
	router, _, _ := newTestRouter(t)
	auth := registerOne(t, router, "Ana", "a@b.com")

	bought := doJSON(t, router, http.MethodPost, "/tickets", auth.AccessToken, PurchaseRequest{
		Title: "Flight", Price: 200,
	})
	require.Equal(t, http.StatusOK, bought.Code)

	recorder := doJSON(t, router, http.MethodGet, "/users/1/tickets", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	result := decodeBody[types.UserWithTickets](t, recorder)
	require.Len(t, result.Tickets, 1)
	assert.Equal(t, "Flight", result.Tickets[0].Title)
	assert.Equal(t, auth.User.ID, result.Tickets[0].UserID)
}

func TestListUsersWithTickets(t *testing.T) {
	router, _, _ := newTestRouter(t)

	buyer := registerOne(t, router, "Ana", "a@b.com")
	registerOne(t, router, "Zoe", "zoe@b.com")

	bought := doJSON(t, router, http.MethodPost, "/tickets", buyer.AccessToken, PurchaseRequest{
		Title: "Flight", Price: 200,
	})
	require.Equal(t, http.StatusOK, bought.Code)

	recorder := doJSON(t, router, http.MethodGet, "/users/with-tickets", buyer.AccessToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	result := decodeBody[[]types.UserWithTickets](t, recorder)
	require.Len(t, result, 2)
	assert.Equal(t, "Ana", result[0].Name)
	require.Len(t, result[0].Tickets, 1)
	assert.Equal(t, "Flight", result[0].Tickets[0].Title)
	assert.Equal(t, "Zoe", result[1].Name)
	assert.Empty(t, result[1].Tickets)
}

func TestGetUserWithTicketsNotFound(t *testing.T) {
	router, _, _ := newTestRouter(t)
	auth := registerOne(t, router, "Ana", "a@b.com")

	missing := doJSON(t, router, http.MethodGet, "/users/99/tickets", auth.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	malformed := doJSON(t, router, http.MethodGet, "/users/abc/tickets", auth.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, malformed.Code)
}
