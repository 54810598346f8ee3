package domain

import (
	"strings"
	"time"
)

type UserID int64

type User struct {
	ID          UserID    `db:"id"`
	Email       string    `db:"email"`
	DisplayName *string   `db:"display_name"`
	AvatarURL   *string   `db:"avatar_url"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Name — отображаемое имя; если display_name не задан,
// берём часть email до "@".
func (u *User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	if i := strings.IndexByte(u.Email, '@'); i > 0 {
		return u.Email[:i]
	}

	return u.Email
}

func NewUser(email string, now time.Time) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, FieldErrors{"email": "is invalid"}
	}

	return &User{
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
