package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tickettrail/apiserver/internal/mq"
	"github.com/tickettrail/apiserver/types"
)

// PurchasesChannel carries purchase.completed events for downstream
// consumers (receipts, notifications, analytics).
const PurchasesChannel = "ticket.purchases"

const eventPurchaseCompleted = "purchase.completed"

// PurchaseEvent is the wire payload published after a successful purchase.
type PurchaseEvent struct {
	TicketID    int       `json:"ticket_id"`
	UserID      int       `json:"user_id"`
	Title       string    `json:"title"`
	Price       int64     `json:"price"`
	Balance     int64     `json:"money_balance"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// PurchasePublisher emits purchase events to the message broker.
type PurchasePublisher struct {
	broker *mq.MQ
}

// NewPurchasePublisher constructs a publisher over the given broker.
func NewPurchasePublisher(broker *mq.MQ) *PurchasePublisher {
	return &PurchasePublisher{broker: broker}
}

// PurchaseCompleted publishes an event for a committed purchase. The
// purchase itself is already durable; a publish failure is the
// caller's to log, never to roll back.
func (p *PurchasePublisher) PurchaseCompleted(ctx context.Context, ticket types.Ticket, user types.User) error {
	payload, err := json.Marshal(PurchaseEvent{
		TicketID:    ticket.ID,
		UserID:      user.ID,
		Title:       ticket.Title,
		Price:       ticket.Price,
		Balance:     user.Balance,
		PurchasedAt: ticket.CreatedAt,
	})
	if err != nil {
		return err
	}

	_, err = p.broker.Publish(ctx, PurchasesChannel, payload, map[string]string{
		"event": eventPurchaseCompleted,
	})
	return err
}
