package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/postgres/queries"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReplyRepository struct {
	db *pgxpool.Pool
}

func NewReplyRepository(db *pgxpool.Pool) *ReplyRepository {
	return &ReplyRepository{db: db}
}

func (r *ReplyRepository) Create(ctx context.Context, rp *domain.Reply) error {
	err := r.db.QueryRow(ctx, queries.QueryCreateReply, rp.MessageID, rp.UserID, rp.Body).
		Scan(&rp.ID, &rp.CreatedAt, &rp.UpdatedAt)
	if err != nil {
		return mapPgError(err)
	}

	return nil
}

func (r *ReplyRepository) Get(ctx context.Context, id int64) (*domain.Reply, error) {
	var rp domain.Reply
	err := r.db.QueryRow(ctx, queries.QueryGetReply, id).
		Scan(&rp.ID, &rp.MessageID, &rp.UserID, &rp.Body, &rp.CreatedAt, &rp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapPgError(err)
	}

	return &rp, nil
}

func (r *ReplyRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, queries.QueryDeleteReply, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}
