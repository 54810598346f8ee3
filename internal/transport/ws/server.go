package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/pubsub"
	"github.com/cwrk-planet/chat-service/internal/security"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type RoomSvc interface {
	Get(ctx context.Context, id string) (*domain.Room, error)
}

type MemberSvc interface {
	MarkRead(ctx context.Context, roomID string, userID domain.UserID) error
}

type MessageSvc interface {
	Change(body string) domain.FieldErrors
	Create(ctx context.Context, roomID string, userID domain.UserID, body string) (*domain.Message, error)
	DeleteByID(ctx context.Context, id int64, userID domain.UserID) error
	CreateReply(ctx context.Context, messageID int64, userID domain.UserID, body string) (*domain.Reply, error)
	DeleteReplyByID(ctx context.Context, id int64, userID domain.UserID) error
	ListInRoom(ctx context.Context, roomID string) ([]domain.Message, error)
}

type Server struct {
	upgrader   websocket.Upgrader
	bus        *pubsub.Bus
	roomSvc    RoomSvc
	memberSvc  MemberSvc
	messageSvc MessageSvc
	verifier   *security.TokenVerifier

	pingEvery time.Duration
}

func NewServer(bus *pubsub.Bus, room RoomSvc, member MemberSvc, message MessageSvc) *Server {
	return &Server{
		bus:        bus,
		roomSvc:    room,
		memberSvc:  member,
		messageSvc: message,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

func (s *Server) SetPingInterval(d time.Duration) {
	if d > 0 {
		s.pingEvery = d
	}
}

// SetVerifier включает проверку access_token тем же ключом, что и HTTP.
// nil — доверяем user_id из query (режим за gateway'ем).
func (s *Server) SetVerifier(v *security.TokenVerifier) {
	s.verifier = v
}

// WS endpoint: GET /ws/rooms/{id}?access_token=...&user_id=...
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	accessToken := strings.TrimSpace(q.Get("access_token"))
	if accessToken == "" {
		http.Error(w, "missing access_token", http.StatusUnauthorized)
		return
	}

	var uid int64
	if s.verifier != nil {
		claims, err := s.verifier.ParseAndValidate(accessToken)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		id, err := security.SubjectAsUserID(claims)
		if err != nil {
			http.Error(w, "invalid token subject", http.StatusUnauthorized)
			return
		}
		uid = int64(id)
	} else {
		id, err := strconv.ParseInt(strings.TrimSpace(q.Get("user_id")), 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "invalid user_id", http.StatusUnauthorized)
			return
		}
		uid = id
	}
	roomID := chi.URLParam(r, "id")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	room, err := s.roomSvc.Get(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		slog.Error("ws resolve room failed", "room", roomID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, room.ID, domain.UserID(uid))

	// вход в комнату: помечаем прочитанным (best-effort)
	if err := s.memberSvc.MarkRead(r.Context(), room.ID, c.userID); err != nil {
		slog.Debug("ws mark read failed", "room", room.ID, "user", uid, "err", err)
	}

	// подписка до снапшота: событие из окна между ними придёт
	// дубликатом, а не потеряется
	sub := s.bus.Subscribe(pubsub.RoomTopic(room.ID))

	if err := s.sendState(r.Context(), c, room); err != nil {
		slog.Warn("ws send initial state failed", "room", room.ID, "user", uid, "err", err)
	}

	go s.writeLoop(r.Context(), c, sub)
	s.readLoop(r.Context(), c)

	sub.Close()

	// прочитано всё, что успели увидеть
	if err := s.memberSvc.MarkRead(context.WithoutCancel(r.Context()), room.ID, c.userID); err != nil {
		slog.Debug("ws mark read on leave failed", "room", room.ID, "user", uid, "err", err)
	}

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "room", room.ID, "user", uid, "err", err)
	}
}

func (s *Server) sendState(ctx context.Context, c *wsConn, room *domain.Room) error {
	msgs, err := s.messageSvc.ListInRoom(ctx, room.ID)
	if err != nil {
		return err
	}

	items := make([]MessageItem, 0, len(msgs))
	for i := range msgs {
		items = append(items, toMessageItem(&msgs[i]))
	}

	return c.Send(Message{
		Type: TypeState,
		Payload: StatePayload{
			RoomID:   room.ID,
			RoomName: room.Name,
			Messages: items,
		},
	})
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		s.dispatch(ctx, c, msg)
	}
}

// dispatch выполняет клиентское событие. Успешные мутации доходят до
// клиента ТОЛЬКО через fan-out комнаты (self-notification) — никакого
// отдельного локального apply-пути. Ошибки валидации и авторизации
// уходят только отправителю.
func (s *Server) dispatch(ctx context.Context, c *wsConn, msg Message) {
	switch msg.Type {
	case TypeNewMessage:
		var p SubmitMessagePayload
		if decode(msg.Payload, &p) != nil {
			return
		}
		if _, err := s.messageSvc.Create(ctx, c.roomID, c.userID, p.Body); err != nil {
			s.sendFailure(c, err)
			return
		}
		// отправитель увидел собственное сообщение — двигаем маркер
		_ = s.memberSvc.MarkRead(ctx, c.roomID, c.userID)

	case TypeValidateMessage:
		var p SubmitMessagePayload
		if decode(msg.Payload, &p) != nil {
			return
		}
		result := ValidationResultPayload{Valid: true}
		if errs := s.messageSvc.Change(p.Body); errs != nil {
			result = ValidationResultPayload{Valid: false, Errors: errs}
		}
		_ = c.Send(Message{Type: TypeValidationResult, Payload: result})

	case TypeDeleteMessage:
		var p DeletePayload
		if decode(msg.Payload, &p) != nil {
			return
		}
		if err := s.messageSvc.DeleteByID(ctx, p.ID, c.userID); err != nil {
			s.sendFailure(c, err)
		}

	case TypeNewReply:
		var p SubmitReplyPayload
		if decode(msg.Payload, &p) != nil {
			return
		}
		if _, err := s.messageSvc.CreateReply(ctx, p.MessageID, c.userID, p.Body); err != nil {
			s.sendFailure(c, err)
		}

	case TypeDeleteReply:
		var p DeletePayload
		if decode(msg.Payload, &p) != nil {
			return
		}
		if err := s.messageSvc.DeleteReplyByID(ctx, p.ID, c.userID); err != nil {
			s.sendFailure(c, err)
		}

	default:
		// ignore
	}
}

func (s *Server) sendFailure(c *wsConn, err error) {
	if fe, ok := domain.AsFieldErrors(err); ok {
		_ = c.Send(Message{
			Type:    TypeValidationResult,
			Payload: ValidationResultPayload{Valid: false, Errors: fe},
		})
		return
	}

	slog.Warn("ws operation failed", "room", c.roomID, "user", c.userID, "err", err)
	_ = c.Send(Message{Type: TypeError, Payload: ErrorPayload{Error: err.Error()}})
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn, sub *pubsub.Subscription) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			if err := c.Send(toWireMessage(ev)); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

// --- helpers ---

func toWireMessage(ev pubsub.Event) Message {
	switch ev.Type {
	case pubsub.TypeMessageDeleted:
		return Message{
			Type: TypeMessageDeleted,
			Payload: MessageDeletedPayload{
				RoomID:    ev.RoomID,
				MessageID: ev.MessageID,
			},
		}
	default:
		// new_message / new_reply / deleted_reply несут сообщение целиком
		return Message{
			Type:    ev.Type,
			Payload: toMessageItem(ev.Message),
		}
	}
}

func toMessageItem(m *domain.Message) MessageItem {
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
		ri := ReplyItem{
			ID:        rp.ID,
			MessageID: rp.MessageID,
			UserID:    strconv.FormatInt(int64(rp.UserID), 10),
			Body:      rp.Body,
			CreatedAt: rp.CreatedAt,
		}
		if rp.User != nil {
			ri.UserName = rp.User.Name()
		}
		item.Replies = append(item.Replies, ri)
	}

	return item
}

func decode(payload interface{}, dst interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, dst)
}

type wsConn struct {
	conn     *websocket.Conn
	roomID   string
	userID   domain.UserID
	sendMu   chan struct{}
	closed   chan struct{}
	closeOne sync.Once
}

func newWsConn(c *websocket.Conn, roomID string, userID domain.UserID) *wsConn {
	return &wsConn{
		conn:   c,
		roomID: roomID,
		userID: userID,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	c.closeOne.Do(func() { close(c.closed) })

	return c.conn.Close()
}
