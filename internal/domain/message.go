package domain

import (
	"strings"
	"time"
)

const MessageBodyMaxLen = 4000

type Message struct {
	ID        int64     `db:"id"`
	RoomID    string    `db:"room_id"`
	UserID    UserID    `db:"user_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// preload
	User    *User
	Replies []Reply
}

// ValidateBody — общая проверка тела для сообщений и ответов.
func ValidateBody(body string) FieldErrors {
	switch {
	case strings.TrimSpace(body) == "":
		return FieldErrors{"body": "can't be blank"}
	case len(body) > MessageBodyMaxLen:
		return FieldErrors{"body": "should be at most 4000 character(s)"}
	}

	return nil
}
