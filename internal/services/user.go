package services

import (
	"context"

	"github.com/tickettrail/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	ListWithTickets(ctx context.Context) ([]types.UserWithTickets, error)
	GetWithTickets(ctx context.Context, id int) (types.UserWithTickets, error)
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) ListWithTickets(ctx context.Context) ([]types.UserWithTickets, error) {
	return s.repo.ListWithTickets(ctx)
}

func (s *UserService) GetWithTickets(ctx context.Context, id int) (types.UserWithTickets, error) {
	return s.repo.GetWithTickets(ctx, id)
}
