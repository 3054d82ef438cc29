package handlers

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tickettrail/apiserver/internal/events"
	"github.com/tickettrail/apiserver/internal/services"
	"github.com/tickettrail/apiserver/internal/storage"
	"github.com/tickettrail/apiserver/internal/store"
	"github.com/tickettrail/apiserver/types"
)

const (
	maxPhotoBytes      = 8 << 20
	formFieldPhoto     = "photo"
	photoKeyPrefix     = "photos"
	defaultContentType = "application/octet-stream"
)

// TicketHandler provides HTTP handlers for ticket purchases.
type TicketHandler struct {
	ticketService *services.TicketService
	purchases     *events.PurchasePublisher
	photos        *storage.Storage
}

// NewTicketHandler constructs a handler with the provided dependencies.
// The purchase publisher and photo storage are optional.
func NewTicketHandler(
	ticketService *services.TicketService,
	purchases *events.PurchasePublisher,
	photos *storage.Storage,
) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		purchases:     purchases,
		photos:        photos,
	}
}

// TicketRouter registers ticket routes on the given router. All routes
// require authentication.
func TicketRouter(
	r chi.Router,
	ticketService *services.TicketService,
	purchases *events.PurchasePublisher,
	photos *storage.Storage,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewTicketHandler(ticketService, purchases, photos)

	r.Use(authMiddleware)
	r.Post("/", handler.BuyTicket)
	r.Post("/photos", handler.UploadPhoto)
	r.Get("/{ticketID}", handler.GetTicket)
}

// BuyTicket purchases a ticket for the authenticated user, debiting
// its balance. The balance check and both writes happen in a single
// store transaction, so a failed check changes nothing.
func (h *TicketHandler) BuyTicket(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "access denied")
		return
	}

	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Price < 0 {
		writeError(w, http.StatusBadRequest, "invalid price")
		return
	}

	ticket, user, err := h.ticketService.Purchase(r.Context(), userID, types.Ticket{
		Title:              req.Title,
		Price:              req.Price,
		FromLocation:       strings.TrimSpace(req.FromLocation),
		ToLocation:         strings.TrimSpace(req.ToLocation),
		ToLocationPhotoURL: strings.TrimSpace(req.ToLocationPhotoURL),
	})
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			writeError(w, http.StatusBadRequest, "insufficient balance")
			return
		}
		// An authenticated ID with no user row is a contract
		// violation, not a caller mistake.
		writeError(w, http.StatusInternalServerError, "failed to complete purchase")
		return
	}

	if h.purchases != nil {
		if err := h.purchases.PurchaseCompleted(r.Context(), ticket, user); err != nil {
			slog.Warn("failed to publish purchase event", "ticket_id", ticket.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, PurchaseResponse{
		Message: "purchase successful",
		Ticket:  ticket,
		Balance: user.Balance,
	})
}

// GetTicket returns a single ticket by ID.
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "ticketID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}

	ticket, err := h.ticketService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "ticket not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch ticket")
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// UploadPhoto stores a destination photo and returns its public URL,
// suitable for the to_location_photo_url field of a purchase.
func (h *TicketHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if h.photos == nil {
		writeError(w, http.StatusServiceUnavailable, "photo storage not configured")
		return
	}

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	files := r.MultipartForm.File[formFieldPhoto]
	if len(files) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one photo file is required")
		return
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read photo")
		return
	}
	data, err := readFileLimited(file, maxPhotoBytes)
	_ = file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}

	key := photoKeyPrefix + "/" + newObjectID() + path.Ext(fileHeader.Filename)
	if err := h.photos.Put(r.Context(), key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store photo")
		return
	}

	writeJSON(w, http.StatusCreated, PhotoResponse{URL: h.photos.PublicURL(key)})
}

// PurchaseRequest is the buy-ticket payload.
type PurchaseRequest struct {
	Title              string `json:"title"`
	Price              int64  `json:"price"`
	FromLocation       string `json:"from_location"`
	ToLocation         string `json:"to_location"`
	ToLocationPhotoURL string `json:"to_location_photo_url"`
}

// PurchaseResponse confirms a purchase.
type PurchaseResponse struct {
	Message string       `json:"message"`
	Ticket  types.Ticket `json:"ticket"`
	Balance int64        `json:"money_balance"`
}

// PhotoResponse carries the public URL of an uploaded photo.
type PhotoResponse struct {
	URL string `json:"url"`
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}

func newObjectID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(buf[:])
}
