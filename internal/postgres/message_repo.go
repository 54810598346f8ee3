package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/postgres/queries"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	err := r.db.QueryRow(ctx, queries.QueryCreateMessage, m.RoomID, m.UserID, m.Body).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return mapPgError(err)
	}

	return nil
}

// Get возвращает сообщение с подгруженным автором и всеми ответами
// (у каждого ответа — его автор).
func (r *MessageRepository) Get(ctx context.Context, id int64) (*domain.Message, error) {
	var (
		m domain.Message
		u domain.User
	)
	err := r.db.QueryRow(ctx, queries.QueryGetMessage, id).Scan(
		&m.ID, &m.RoomID, &m.UserID, &m.Body, &m.CreatedAt, &m.UpdatedAt,
		&u.ID, &u.Email, &u.DisplayName, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapPgError(err)
	}
	m.User = &u

	if err := r.attachReplies(ctx, []*domain.Message{&m}); err != nil {
		return nil, err
	}

	return &m, nil
}

// ListByRoom — все сообщения комнаты по (created_at, id) с preload'ами.
func (r *MessageRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, queries.QueryListMessagesByRoom, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var (
			m domain.Message
			u domain.User
		)
		if err := rows.Scan(
			&m.ID, &m.RoomID, &m.UserID, &m.Body, &m.CreatedAt, &m.UpdatedAt,
			&u.ID, &u.Email, &u.DisplayName, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		m.User = &u
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ptrs := make([]*domain.Message, len(msgs))
	for i := range msgs {
		ptrs[i] = &msgs[i]
	}
	if err := r.attachReplies(ctx, ptrs); err != nil {
		return nil, err
	}

	return msgs, nil
}

func (r *MessageRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, queries.QueryDeleteMessage, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// attachReplies грузит ответы одним запросом (message_id = ANY)
// и раскладывает по родителям; пустой список — пустой слайс, не nil.
func (r *MessageRepository) attachReplies(ctx context.Context, msgs []*domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(msgs))
	byID := make(map[int64]*domain.Message, len(msgs))
	for _, m := range msgs {
		m.Replies = []domain.Reply{}
		ids = append(ids, m.ID)
		byID[m.ID] = m
	}

	rows, err := r.db.Query(ctx, queries.QueryListRepliesByMessages, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rp domain.Reply
			u  domain.User
		)
		if err := rows.Scan(
			&rp.ID, &rp.MessageID, &rp.UserID, &rp.Body, &rp.CreatedAt, &rp.UpdatedAt,
			&u.ID, &u.Email, &u.DisplayName, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return err
		}
		rp.User = &u
		if parent, ok := byID[rp.MessageID]; ok {
			parent.Replies = append(parent.Replies, rp)
		}
	}

	return rows.Err()
}
