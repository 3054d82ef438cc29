package services

import (
	"context"

	"github.com/tickettrail/apiserver/types"
)

// TicketRepository defines persistence operations for tickets.
type TicketRepository interface {
	GetByID(ctx context.Context, id int) (types.Ticket, error)
	Purchase(ctx context.Context, userID int, ticket types.Ticket) (types.Ticket, types.User, error)
}

// TicketService encapsulates ticket use-cases.
type TicketService struct {
	repo TicketRepository
}

func NewTicketService(repo TicketRepository) *TicketService {
	return &TicketService{repo: repo}
}

func (s *TicketService) GetByID(ctx context.Context, id int) (types.Ticket, error) {
	return s.repo.GetByID(ctx, id)
}

// Purchase creates a ticket for the user and debits its balance.
// The returned user reflects the post-purchase state.
func (s *TicketService) Purchase(ctx context.Context, userID int, ticket types.Ticket) (types.Ticket, types.User, error) {
	return s.repo.Purchase(ctx, userID, ticket)
}
