package pubsub

import "github.com/cwrk-planet/chat-service/internal/domain"

// Типы событий fan-out по комнате
const (
	TypeNewMessage     = "new_message"     // новое сообщение (с пустым списком ответов)
	TypeMessageDeleted = "message_deleted" // сообщение удалено (id + room id)
	TypeNewReply       = "new_reply"       // родительское сообщение со всеми ответами
	TypeDeletedReply   = "deleted_reply"   // родительское сообщение со всеми ответами
)

type Event struct {
	Type      string
	RoomID    string
	MessageID int64
	// Для new_message/new_reply/deleted_reply — сообщение с preload'ами;
	// для message_deleted — nil.
	Message *domain.Message
}

// RoomTopic — ключ топика комнаты.
func RoomTopic(roomID string) string {
	return "chat_room:" + roomID
}
