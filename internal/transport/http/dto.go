package http

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse — ошибки по полям для инлайн-отображения.
type ValidationErrorResponse struct {
	Errors map[string]string `json:"errors"`
}

type RegisterUserRequest struct {
	Email string `json:"email"`
}

type UserItem struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar_url,omitempty"`
}

type CreateRoomRequest struct {
	Name  string  `json:"name"`
	Topic *string `json:"topic,omitempty"`
}

type UpdateRoomRequest = CreateRoomRequest

type RoomItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Topic     *string   `json:"topic,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RoomsListResponse struct {
	Items []RoomItem `json:"items"`
}

type RoomWithJoinedItem struct {
	RoomItem
	Joined bool `json:"joined"`
}

type RoomsWithJoinedResponse struct {
	Items []RoomWithJoinedItem `json:"items"`
	Page  int                  `json:"page"`
}

type RoomUnreadItem struct {
	RoomItem
	Unread int64 `json:"unread"`
}

type RoomsUnreadResponse struct {
	Items []RoomUnreadItem `json:"items"`
}

type MembershipResponse struct {
	RoomID     string `json:"room_id"`
	Joined     bool   `json:"joined"`
	LastReadID *int64 `json:"last_read_id,omitempty"`
}

type ToggleResponse struct {
	RoomID string `json:"room_id"`
	Joined bool   `json:"joined"`
}

type CreateMessageRequest struct {
	Body string `json:"body"`
}

type ValidateMessageRequest = CreateMessageRequest

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

type MessagesListResponse struct {
	Items []MessageItem `json:"items"`
}
