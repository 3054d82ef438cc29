package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tickettrail/apiserver/types"
)

func registerAndLogin(t *testing.T, router http.Handler) AuthResponse {
	t.Helper()
	recorder := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Name: "Ana", Email: "a@b.com", Password: "abc123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	return decodeBody[AuthResponse](t, recorder)
}

func TestBuyTicket(t *testing.T) {
	router, fs, _ := newTestRouter(t)
	auth := registerAndLogin(t, router)

	recorder := doJSON(t, router, http.MethodPost, "/tickets", auth.AccessToken, PurchaseRequest{
		Title:        "Flight",
		Price:        200,
		FromLocation: "Lisbon",
		ToLocation:   "Madrid",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	resp := decodeBody[PurchaseResponse](t, recorder)
	assert.Equal(t, "purchase successful", resp.Message)
	assert.Equal(t, int64(800), resp.Balance)
	assert.Equal(t, auth.User.ID, resp.Ticket.UserID)
	assert.Equal(t, int64(200), resp.Ticket.Price)
	assert.Equal(t, "Flight", resp.Ticket.Title)

	// Balance debited by exactly the price; exactly one ticket appended.
	user := fs.userByID(auth.User.ID)
	assert.Equal(t, int64(800), user.Balance)
	assert.Equal(t, []int64{int64(resp.Ticket.ID)}, user.BoughtTickets)

	stored := fs.ticketByID(resp.Ticket.ID)
	assert.Equal(t, auth.User.ID, stored.UserID)
}

func TestBuyTicketInsufficientFunds(t *testing.T) {
	router, fs, _ := newTestRouter(t)
	auth := registerAndLogin(t, router)

	recorder := doJSON(t, router, http.MethodPost, "/tickets", auth.AccessToken, PurchaseRequest{
		Title: "Around the World",
		Price: 5000,
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "insufficient balance", decodeBody[ErrorResponse](t, recorder).Error)

	// A failed balance check leaves both stores untouched.
	user := fs.userByID(auth.User.ID)
	assert.Equal(t, int64(1000), user.Balance)
	assert.Empty(t, user.BoughtTickets)
	assert.Empty(t, fs.tickets)
}

func TestBuyTicketValidation(t *testing.T) {
	router, fs, _ := newTestRouter(t)
	auth := registerAndLogin(t, router)

	missingTitle := doJSON(t, router, http.MethodPost, "/tickets", auth.AccessToken, PurchaseRequest{
		Price: 100,
	})
	assert.Equal(t, http.StatusBadRequest, missingTitle.Code)

	negativePrice := doJSON(t, router, http.MethodPost, "/tickets", auth.AccessToken, PurchaseRequest{
		Title: "Flight",
		Price: -1,
	})
	assert.Equal(t, http.StatusBadRequest, negativePrice.Code)
	assert.Empty(t, fs.tickets)
}

func TestBuyTicketRequiresAuth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodPost, "/tickets", "", PurchaseRequest{
		Title: "Flight",
		Price: 100,
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestGetTicket(t *testing.T) {
	router, _, _ := newTestRouter(t)
	auth := registerAndLogin(t, router)

	bought := doJSON(t, router, http.MethodPost, "/tickets", auth.AccessToken, PurchaseRequest{
		Title: "Flight",
		Price: 200,
	})
	require.Equal(t, http.StatusOK, bought.Code)
	purchase := decodeBody[PurchaseResponse](t, bought)

	recorder := doJSON(t, router, http.MethodGet, "/tickets/1", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	ticket := decodeBody[types.Ticket](t, recorder)
	assert.Equal(t, purchase.Ticket.ID, ticket.ID)

	missing := doJSON(t, router, http.MethodGet, "/tickets/42", auth.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	malformed := doJSON(t, router, http.MethodGet, "/tickets/not-a-number", auth.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, malformed.Code)
}

func TestUploadPhotoWithoutStorage(t *testing.T) {
	router, _, _ := newTestRouter(t)
	auth := registerAndLogin(t, router)

	recorder := doJSON(t, router, http.MethodPost, "/tickets/photos", auth.AccessToken, nil)
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}
