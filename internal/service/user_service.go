package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type UserService struct {
	userRepo UserStore
}

func NewUserService(userRepo UserStore) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register создаёт пользователя по email; повторная регистрация
// того же email возвращает существующего (идемпотентно).
func (s *UserService) Register(ctx context.Context, email string) (*domain.User, error) {
	u, err := domain.NewUser(email, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return s.userRepo.GetByEmail(ctx, u.Email)
		}
		return nil, fmt.Errorf("userRepo.Create: %w", err)
	}

	return u, nil
}

func (s *UserService) Get(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
