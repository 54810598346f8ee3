package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/service"
	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	userSvc    *service.UserService
	roomSvc    *service.RoomService
	memberSvc  *service.MemberService
	messageSvc *service.MessageService
}

func NewHandler(user *service.UserService, room *service.RoomService, member *service.MemberService, message *service.MessageService) *Handler {
	return &Handler{
		userSvc:    user,
		roomSvc:    room,
		memberSvc:  member,
		messageSvc: message,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// единый маппинг ошибок сервисов в статус/тело
func writeServiceError(w http.ResponseWriter, op string, err error) {
	if fe, ok := domain.AsFieldErrors(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{Errors: fe})
		return
	}
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
	case errors.Is(err, domain.ErrNoRooms):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no rooms exist"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrNotOwner):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "not the owner"})
	case errors.Is(err, domain.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "already exists"})
	default:
		// детали только в лог, клиенту — общий ответ
		slog.Error(op, slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func toRoomItem(rm domain.Room) RoomItem {
	return RoomItem{
		ID:        rm.ID,
		Name:      rm.Name,
		Topic:     rm.Topic,
		CreatedAt: rm.CreatedAt,
		UpdatedAt: rm.UpdatedAt,
	}
}

func toReplyItem(rp domain.Reply) ReplyItem {
	item := ReplyItem{
		ID:        rp.ID,
		MessageID: rp.MessageID,
		UserID:    strconv.FormatInt(int64(rp.UserID), 10),
		Body:      rp.Body,
		CreatedAt: rp.CreatedAt,
	}
	if rp.User != nil {
		item.UserName = rp.User.Name()
	}

	return item
}

func toMessageItem(m domain.Message) MessageItem {
	item := MessageItem{
		ID:        m.ID,
		RoomID:    m.RoomID,
		UserID:    strconv.FormatInt(int64(m.UserID), 10),
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
		Replies:   make([]ReplyItem, 0, len(m.Replies)),
	}
	if m.User != nil {
		item.UserName = m.User.Name()
	}
	for _, rp := range m.Replies {
		item.Replies = append(item.Replies, toReplyItem(rp))
	}

	return item
}

func toUserItem(u *domain.User) UserItem {
	item := UserItem{
		ID:    strconv.FormatInt(int64(u.ID), 10),
		Email: u.Email,
		Name:  u.Name(),
	}
	if u.AvatarURL != nil {
		item.Avatar = *u.AvatarURL
	}

	return item
}

// POST /users
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	u, err := h.userSvc.Register(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, "handler.RegisterUser:", err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserItem(u))
}

// GET /users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())
	u, err := h.userSvc.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "handler.Me:", err)
		return
	}

	writeJSON(w, http.StatusOK, toUserItem(u))
}

// POST /rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	room, err := h.roomSvc.Create(r.Context(), req.Name, req.Topic)
	if err != nil {
		writeServiceError(w, "handler.CreateRoom:", err)
		return
	}

	writeJSON(w, http.StatusCreated, toRoomItem(*room))
}

// PUT /rooms/{id}
func (h *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	room, err := h.roomSvc.Update(r.Context(), id, req.Name, req.Topic)
	if err != nil {
		writeServiceError(w, "handler.UpdateRoom:", err)
		return
	}

	writeJSON(w, http.StatusOK, toRoomItem(*room))
}

// GET /rooms/all
func (h *Handler) ListAllRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomSvc.List(r.Context())
	if err != nil {
		writeServiceError(w, "handler.ListAllRooms:", err)
		return
	}

	resp := RoomsListResponse{Items: make([]RoomItem, 0, len(rooms))}
	for _, rm := range rooms {
		resp.Items = append(resp.Items, toRoomItem(rm))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /rooms?page=
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())
	page := 1
	if s := r.URL.Query().Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			page = n
		}
	}

	items, err := h.roomSvc.ListWithJoined(r.Context(), userID, page)
	if err != nil {
		writeServiceError(w, "handler.ListRooms:", err)
		return
	}

	resp := RoomsWithJoinedResponse{Items: make([]RoomWithJoinedItem, 0, len(items)), Page: page}
	for _, it := range items {
		resp.Items = append(resp.Items, RoomWithJoinedItem{
			RoomItem: toRoomItem(it.Room),
			Joined:   it.Joined,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /rooms/unread
func (h *Handler) ListUnread(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())

	items, err := h.roomSvc.ListJoinedWithUnread(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "handler.ListUnread:", err)
		return
	}

	resp := RoomsUnreadResponse{Items: make([]RoomUnreadItem, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, RoomUnreadItem{
			RoomItem: toRoomItem(it.Room),
			Unread:   it.Unread,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /rooms/first — комната по умолчанию
func (h *Handler) FirstRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomSvc.First(r.Context())
	if err != nil {
		writeServiceError(w, "handler.FirstRoom:", err)
		return
	}

	writeJSON(w, http.StatusOK, toRoomItem(*room))
}

// GET /rooms/{id}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	room, err := h.roomSvc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, "handler.GetRoom:", err)
		return
	}

	writeJSON(w, http.StatusOK, toRoomItem(*room))
}

// POST /rooms/{id}/toggle — join/leave одной операцией
func (h *Handler) ToggleMembership(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	userID := httpmw.UserIDFromCtx(r.Context())

	joined, err := h.memberSvc.Toggle(r.Context(), roomID, userID)
	if err != nil {
		writeServiceError(w, "handler.ToggleMembership:", err)
		return
	}

	writeJSON(w, http.StatusOK, ToggleResponse{RoomID: roomID, Joined: joined})
}

// GET /rooms/{id}/membership — состояние членства; для не-члена joined=false
func (h *Handler) GetMembership(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	userID := httpmw.UserIDFromCtx(r.Context())

	m, err := h.memberSvc.Membership(r.Context(), roomID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotMember) {
			writeJSON(w, http.StatusOK, MembershipResponse{RoomID: roomID, Joined: false})
			return
		}
		writeServiceError(w, "handler.GetMembership:", err)
		return
	}

	writeJSON(w, http.StatusOK, MembershipResponse{
		RoomID:     m.RoomID,
		Joined:     true,
		LastReadID: m.LastReadID,
	})
}

// POST /rooms/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	userID := httpmw.UserIDFromCtx(r.Context())

	if err := h.memberSvc.MarkRead(r.Context(), roomID, userID); err != nil {
		writeServiceError(w, "handler.MarkRead:", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /rooms/{id}/messages
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	msgs, err := h.messageSvc.ListInRoom(r.Context(), roomID)
	if err != nil {
		writeServiceError(w, "handler.ListMessages:", err)
		return
	}

	resp := MessagesListResponse{Items: make([]MessageItem, 0, len(msgs))}
	for _, m := range msgs {
		resp.Items = append(resp.Items, toMessageItem(m))
	}

	writeJSON(w, http.StatusOK, resp)
}

// POST /rooms/{id}/messages
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	userID := httpmw.UserIDFromCtx(r.Context())

	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	m, err := h.messageSvc.Create(r.Context(), roomID, userID, req.Body)
	if err != nil {
		writeServiceError(w, "handler.CreateMessage:", err)
		return
	}

	writeJSON(w, http.StatusCreated, toMessageItem(*m))
}

// POST /messages/validate — живая проверка формы, ничего не сохраняет
func (h *Handler) ValidateMessage(w http.ResponseWriter, r *http.Request) {
	var req ValidateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	if errs := h.messageSvc.Change(req.Body); errs != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{Errors: errs})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "valid"})
}

// GET /messages/{id}
func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid message id"})
		return
	}

	m, err := h.messageSvc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, "handler.GetMessage:", err)
		return
	}

	writeJSON(w, http.StatusOK, toMessageItem(*m))
}

// DELETE /messages/{id}
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid message id"})
		return
	}
	userID := httpmw.UserIDFromCtx(r.Context())

	if err := h.messageSvc.DeleteByID(r.Context(), id, userID); err != nil {
		writeServiceError(w, "handler.DeleteMessage:", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// POST /messages/{id}/replies
func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	messageID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid message id"})
		return
	}
	userID := httpmw.UserIDFromCtx(r.Context())

	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	rp, err := h.messageSvc.CreateReply(r.Context(), messageID, userID, req.Body)
	if err != nil {
		writeServiceError(w, "handler.CreateReply:", err)
		return
	}

	writeJSON(w, http.StatusCreated, toReplyItem(*rp))
}

// DELETE /replies/{id}
func (h *Handler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid reply id"})
		return
	}
	userID := httpmw.UserIDFromCtx(r.Context())

	if err := h.messageSvc.DeleteReplyByID(r.Context(), id, userID); err != nil {
		writeServiceError(w, "handler.DeleteReply:", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
