package domain

import (
	"regexp"
	"time"
)

const (
	RoomNameMaxLen  = 80
	RoomTopicMaxLen = 200
)

// строчные буквы, цифры и дефисы
var roomNameRe = regexp.MustCompile(`^[a-z0-9-]+$`)

type Room struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Topic     *string   `db:"topic"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ValidateRoom проверяет формат/длину имени и длину топика.
// Уникальность имени проверяется отдельно (pre-check + constraint).
func ValidateRoom(name string, topic *string) FieldErrors {
	errs := FieldErrors{}

	switch {
	case name == "":
		errs["name"] = "can't be blank"
	case len(name) > RoomNameMaxLen:
		errs["name"] = "should be at most 80 character(s)"
	case !roomNameRe.MatchString(name):
		errs["name"] = "must contain only lowercase letters, digits and dashes"
	}

	if topic != nil && len(*topic) > RoomTopicMaxLen {
		errs["topic"] = "should be at most 200 character(s)"
	}

	if errs.Any() {
		return errs
	}

	return nil
}

// RoomWithJoined — строка листинга комнат с флагом членства.
type RoomWithJoined struct {
	Room   Room
	Joined bool
}

// RoomWithUnread — комната + количество непрочитанных сообщений
// (id > last_read_id членства; NULL считается нулём).
type RoomWithUnread struct {
	Room   Room
	Unread int64
}
