package domain

import "time"

type Reply struct {
	ID        int64     `db:"id"`
	MessageID int64     `db:"message_id"`
	UserID    UserID    `db:"user_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// preload
	User *User
}
