package domain

import "time"

// Membership — join-сущность (room, user); уникальна на пару.
// last_read_id указывает на последнее прочитанное сообщение и только растёт.
type Membership struct {
	ID         int64     `db:"id"`
	RoomID     string    `db:"room_id"`
	UserID     UserID    `db:"user_id"`
	LastReadID *int64    `db:"last_read_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
