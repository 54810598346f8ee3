package ws

import "time"

// Типы событий WS
const (
	// server -> client
	TypeState            = "state"             // снапшот комнаты: все сообщения с ответами
	TypeNewMessage       = "new_message"       // новое сообщение (пустой список ответов)
	TypeMessageDeleted   = "message_deleted"   // сообщение удалено
	TypeNewReply         = "new_reply"         // родитель со всеми ответами
	TypeDeletedReply     = "deleted_reply"     // родитель со всеми ответами
	TypeValidationResult = "validation_result" // только отправителю
	TypeError            = "error"             // только отправителю

	// client -> server
	TypeValidateMessage = "validate_message"
	TypeDeleteMessage   = "delete_message"
	TypeDeleteReply     = "delete_reply"
	// new_message и new_reply клиент шлёт с теми же типами, что и сервер
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type ReplyItem struct {
	ID        int64     `json:"id"`
	MessageID int64     `json:"message_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type MessageItem struct {
	ID        int64       `json:"id"`
	RoomID    string      `json:"room_id"`
	UserID    string      `json:"user_id"`
	UserName  string      `json:"user_name"`
	Body      string      `json:"body"`
	CreatedAt time.Time   `json:"created_at"`
	Replies   []ReplyItem `json:"replies"`
}

type StatePayload struct {
	RoomID   string        `json:"room_id"`
	RoomName string        `json:"room_name"`
	Messages []MessageItem `json:"messages"`
}

type MessageDeletedPayload struct {
	RoomID    string `json:"room_id"`
	MessageID int64  `json:"message_id"`
}

// client -> server payloads

type SubmitMessagePayload struct {
	Body string `json:"body"`
}

type SubmitReplyPayload struct {
	MessageID int64  `json:"message_id"`
	Body      string `json:"body"`
}

type DeletePayload struct {
	ID int64 `json:"id"`
}

// server -> sender only

type ValidationResultPayload struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}
