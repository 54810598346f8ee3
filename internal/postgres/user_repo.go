package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/postgres/queries"

	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	q querier
}

// NewUserRepository — конструктор от пула (*pgxpool.Pool) или транзакции.
func NewUserRepository(q querier) *UserRepository {
	return &UserRepository{q: q}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	var id int64
	err := r.q.QueryRow(ctx, queries.QueryCreateUser,
		u.Email, u.DisplayName, u.AvatarURL, u.CreatedAt, u.UpdatedAt).Scan(&id)
	if err != nil {
		return mapPgError(err)
	}
	u.ID = domain.UserID(id)

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return r.getOne(ctx, queries.QueryGetUserByID, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, queries.QueryGetUserByEmail, email)
}

func (r *UserRepository) getOne(ctx context.Context, sql string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.q.QueryRow(ctx, sql, arg).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapPgError(err)
	}

	return &u, nil
}
