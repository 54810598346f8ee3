package ws

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/pubsub"
	"github.com/cwrk-planet/chat-service/internal/security"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt"
	"github.com/gorilla/websocket"
)

type stubRoomSvc struct{ room *domain.Room }

func (s stubRoomSvc) Get(ctx context.Context, id string) (*domain.Room, error) {
	if s.room != nil && s.room.ID == id {
		return s.room, nil
	}
	return nil, domain.ErrRoomNotFound
}

type stubMemberSvc struct{}

func (stubMemberSvc) MarkRead(ctx context.Context, roomID string, userID domain.UserID) error {
	return nil
}

type stubMessageSvc struct{ msgs []domain.Message }

func (s stubMessageSvc) Change(body string) domain.FieldErrors { return domain.ValidateBody(body) }
func (s stubMessageSvc) Create(ctx context.Context, roomID string, userID domain.UserID, body string) (*domain.Message, error) {
	return nil, domain.ErrNotFound
}
func (s stubMessageSvc) DeleteByID(ctx context.Context, id int64, userID domain.UserID) error {
	return domain.ErrNotOwner
}
func (s stubMessageSvc) CreateReply(ctx context.Context, messageID int64, userID domain.UserID, body string) (*domain.Reply, error) {
	return nil, domain.ErrNotFound
}
func (s stubMessageSvc) DeleteReplyByID(ctx context.Context, id int64, userID domain.UserID) error {
	return domain.ErrNotOwner
}
func (s stubMessageSvc) ListInRoom(ctx context.Context, roomID string) ([]domain.Message, error) {
	return s.msgs, nil
}

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newWSFixture(t *testing.T, srv *Server) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/ws/rooms/{id}", srv.HandleWS)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return ts
}

func dialWS(t *testing.T, ts *httptest.Server, path string) (*websocket.Conn, int) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp == nil {
			t.Fatalf("dial: %v", err)
		}
		return nil, resp.StatusCode
	}

	return conn, resp.StatusCode
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}

	return f
}

func TestHandleWS_StateThenLiveEvent(t *testing.T) {
	bus := pubsub.NewBus()
	room := &domain.Room{ID: "r1", Name: "lobby"}
	srv := NewServer(bus, stubRoomSvc{room}, stubMemberSvc{}, stubMessageSvc{
		msgs: []domain.Message{{ID: 1, RoomID: "r1", Body: "old", User: &domain.User{Email: "alice@example.com"}}},
	})
	ts := newWSFixture(t, srv)

	conn, _ := dialWS(t, ts, "/ws/rooms/r1?access_token=tok&user_id=1")
	defer conn.Close()

	f := readFrame(t, conn)
	if f.Type != TypeState {
		t.Fatalf("first frame = %s, want state", f.Type)
	}
	var state StatePayload
	if err := json.Unmarshal(f.Payload, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.RoomID != "r1" || state.RoomName != "lobby" || len(state.Messages) != 1 {
		t.Fatalf("unexpected state: %+v", state)
	}

	// подписка уже активна: опубликованное после снапшота доходит
	bus.Publish(pubsub.RoomTopic("r1"), pubsub.Event{
		Type:      pubsub.TypeNewMessage,
		RoomID:    "r1",
		MessageID: 2,
		Message:   &domain.Message{ID: 2, RoomID: "r1", Body: "hi", User: &domain.User{Email: "bob@example.com"}},
	})

	f = readFrame(t, conn)
	if f.Type != TypeNewMessage {
		t.Fatalf("frame = %s, want new_message", f.Type)
	}
	var item MessageItem
	if err := json.Unmarshal(f.Payload, &item); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if item.ID != 2 || item.Body != "hi" || item.UserName != "bob" {
		t.Fatalf("unexpected message: %+v", item)
	}
}

func TestHandleWS_RoomNotFound(t *testing.T) {
	srv := NewServer(pubsub.NewBus(), stubRoomSvc{}, stubMemberSvc{}, stubMessageSvc{})
	ts := newWSFixture(t, srv)

	conn, status := dialWS(t, ts, "/ws/rooms/missing?access_token=tok&user_id=1")
	if conn != nil {
		conn.Close()
		t.Fatal("handshake must fail for unknown room")
	}
	if status != 404 {
		t.Fatalf("status = %d, want 404", status)
	}
}

func TestHandleWS_MissingToken(t *testing.T) {
	srv := NewServer(pubsub.NewBus(), stubRoomSvc{}, stubMemberSvc{}, stubMessageSvc{})
	ts := newWSFixture(t, srv)

	conn, status := dialWS(t, ts, "/ws/rooms/r1?user_id=1")
	if conn != nil {
		conn.Close()
		t.Fatal("handshake must fail without access_token")
	}
	if status != 401 {
		t.Fatalf("status = %d, want 401", status)
	}
}

func TestHandleWS_VerifierMode(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	verifier := security.NewTokenVerifier(&key.PublicKey, "auth-service", 30*time.Second)

	bus := pubsub.NewBus()
	room := &domain.Room{ID: "r1", Name: "lobby"}
	srv := NewServer(bus, stubRoomSvc{room}, stubMemberSvc{}, stubMessageSvc{})
	srv.SetVerifier(verifier)
	ts := newWSFixture(t, srv)

	// мусорный токен отклоняется на рукопожатии
	conn, status := dialWS(t, ts, "/ws/rooms/r1?access_token=garbage")
	if conn != nil {
		conn.Close()
		t.Fatal("handshake must fail with a bad token")
	}
	if status != 401 {
		t.Fatalf("status = %d, want 401", status)
	}

	// корректный токен: user id берётся из sub, query user_id не нужен
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, &security.AccessClaims{StandardClaims: jwt.StandardClaims{
		Issuer:    "auth-service",
		Subject:   "7",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}}).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	conn, _ = dialWS(t, ts, "/ws/rooms/r1?access_token="+token)
	if conn == nil {
		t.Fatal("handshake with a valid token failed")
	}
	defer conn.Close()

	if f := readFrame(t, conn); f.Type != TypeState {
		t.Fatalf("first frame = %s, want state", f.Type)
	}
}

func TestHandleWS_SenderOnlyFailures(t *testing.T) {
	bus := pubsub.NewBus()
	room := &domain.Room{ID: "r1", Name: "lobby"}
	srv := NewServer(bus, stubRoomSvc{room}, stubMemberSvc{}, stubMessageSvc{})
	ts := newWSFixture(t, srv)

	conn, _ := dialWS(t, ts, "/ws/rooms/r1?access_token=tok&user_id=1")
	defer conn.Close()

	if f := readFrame(t, conn); f.Type != TypeState {
		t.Fatalf("first frame = %s, want state", f.Type)
	}

	// пустое тело — validation_result только отправителю
	if err := conn.WriteJSON(Message{Type: TypeValidateMessage, Payload: SubmitMessagePayload{Body: "  "}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	f := readFrame(t, conn)
	if f.Type != TypeValidationResult {
		t.Fatalf("frame = %s, want validation_result", f.Type)
	}
	var vr ValidationResultPayload
	if err := json.Unmarshal(f.Payload, &vr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if vr.Valid || vr.Errors["body"] == "" {
		t.Fatalf("unexpected validation result: %+v", vr)
	}

	// чужое удаление — error-фрейм отправителю, фан-аута нет
	if err := conn.WriteJSON(Message{Type: TypeDeleteMessage, Payload: DeletePayload{ID: 1}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := readFrame(t, conn); f.Type != TypeError {
		t.Fatalf("frame = %s, want error", f.Type)
	}
}
