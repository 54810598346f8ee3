package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/postgres/queries"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	err := r.db.QueryRow(ctx, queries.QueryCreateRoom, room.Name, room.Topic).
		Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return mapPgError(err)
	}

	return nil
}

func (r *RoomRepository) Update(ctx context.Context, room *domain.Room) error {
	err := r.db.QueryRow(ctx, queries.QueryUpdateRoom, room.ID, room.Name, room.Topic).
		Scan(&room.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRoomNotFound
		}
		return mapPgError(err)
	}

	return nil
}

func (r *RoomRepository) Get(ctx context.Context, id string) (*domain.Room, error) {
	return r.getOne(ctx, queries.QueryGetRoom, domain.ErrRoomNotFound, id)
}

// First — комната с лексикографически минимальным именем.
func (r *RoomRepository) First(ctx context.Context) (*domain.Room, error) {
	return r.getOne(ctx, queries.QueryFirstRoom, domain.ErrNoRooms)
}

func (r *RoomRepository) getOne(ctx context.Context, sql string, notFound error, args ...any) (*domain.Room, error) {
	var rm domain.Room
	err := r.db.QueryRow(ctx, sql, args...).
		Scan(&rm.ID, &rm.Name, &rm.Topic, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, mapPgError(err)
	}

	return &rm, nil
}

func (r *RoomRepository) List(ctx context.Context) ([]domain.Room, error) {
	rows, err := r.db.Query(ctx, queries.QueryListRooms)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var rm domain.Room
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Topic, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, rm)
	}

	return rooms, rows.Err()
}

// NameTaken — pre-check уникальности имени; excludeID исключает саму комнату
// при обновлении (nil для создания).
func (r *RoomRepository) NameTaken(ctx context.Context, name string, excludeID *string) (bool, error) {
	var one int
	err := r.db.QueryRow(ctx, queries.QueryRoomNameTaken, name, excludeID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, mapPgError(err)
	}

	return true, nil
}

func (r *RoomRepository) ListWithJoined(ctx context.Context, userID domain.UserID, limit, offset int) ([]domain.RoomWithJoined, error) {
	rows, err := r.db.Query(ctx, queries.QueryListRoomsWithJoined, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RoomWithJoined
	for rows.Next() {
		var item domain.RoomWithJoined
		if err := rows.Scan(
			&item.Room.ID, &item.Room.Name, &item.Room.Topic,
			&item.Room.CreatedAt, &item.Room.UpdatedAt,
			&item.Joined,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	return out, rows.Err()
}

func (r *RoomRepository) ListJoinedWithUnread(ctx context.Context, userID domain.UserID) ([]domain.RoomWithUnread, error) {
	rows, err := r.db.Query(ctx, queries.QueryListJoinedRoomsWithUnread, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RoomWithUnread
	for rows.Next() {
		var item domain.RoomWithUnread
		if err := rows.Scan(
			&item.Room.ID, &item.Room.Name, &item.Room.Topic,
			&item.Room.CreatedAt, &item.Room.UpdatedAt,
			&item.Unread,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	return out, rows.Err()
}
