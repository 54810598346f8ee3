package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/postgres/queries"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MembershipRepository struct {
	db *pgxpool.Pool
}

func NewMembershipRepository(db *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) Exists(ctx context.Context, roomID string, userID domain.UserID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, queries.QueryMembershipExists, roomID, userID).Scan(&exists)

	return exists, err
}

func (r *MembershipRepository) Get(ctx context.Context, roomID string, userID domain.UserID) (*domain.Membership, error) {
	var m domain.Membership
	err := r.db.QueryRow(ctx, queries.QueryGetMembership, roomID, userID).
		Scan(&m.ID, &m.RoomID, &m.UserID, &m.LastReadID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotMember
		}
		return nil, mapPgError(err)
	}

	return &m, nil
}

// Toggle — check-then-act в одной транзакции: есть членство — удаляем (leave),
// нет — вставляем (join). Параллельный двойной join гасится уникальным
// constraint'ом (room_id, user_id): ON CONFLICT DO NOTHING, не ошибка.
func (r *MembershipRepository) Toggle(ctx context.Context, roomID string, userID domain.UserID) (joined bool, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, queries.QueryDeleteMembership, roomID, userID)
	if err != nil {
		return false, mapPgError(err)
	}
	if tag.RowsAffected() > 0 {
		// был членом — вышли
		return false, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, queries.QueryInsertMembership, roomID, userID); err != nil {
		return false, mapPgError(err)
	}

	return true, tx.Commit(ctx)
}

// MarkRead ставит last_read_id членства в текущий максимум id сообщений
// комнаты. Монотонность обеспечена самим запросом (GREATEST).
// Если членства нет — no-op.
func (r *MembershipRepository) MarkRead(ctx context.Context, roomID string, userID domain.UserID) error {
	_, err := r.db.Exec(ctx, queries.QueryMarkMembershipRead, roomID, userID)
	if err != nil {
		return mapPgError(err)
	}

	return nil
}
