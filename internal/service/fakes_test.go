package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

// memStore — in-memory замена postgres-репозиториев для тестов сервисов.
// Реализует RoomRepo, MembershipRepo, MessageRepo, ReplyRepo и UserStore.
type memStore struct {
	mu          sync.Mutex
	rooms       map[string]*domain.Room
	memberships map[string]map[domain.UserID]*domain.Membership
	messages    map[int64]*domain.Message
	replies     map[int64]*domain.Reply
	users       map[domain.UserID]*domain.User
	nextID      int64
}

func newMemStore() *memStore {
	return &memStore{
		rooms:       make(map[string]*domain.Room),
		memberships: make(map[string]map[domain.UserID]*domain.Membership),
		messages:    make(map[int64]*domain.Message),
		replies:     make(map[int64]*domain.Reply),
		users:       make(map[domain.UserID]*domain.User),
	}
}

func (s *memStore) nextSeq() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addUser(email string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := &domain.User{
		ID:        domain.UserID(s.nextSeq()),
		Email:     email,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.users[u.ID] = u

	return u
}

// --- RoomRepo ---

func (s *memStore) Create(ctx context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rm := range s.rooms {
		if rm.Name == room.Name {
			return domain.ErrAlreadyExists
		}
	}
	room.ID = fmt.Sprintf("room-%d", s.nextSeq())
	room.CreatedAt = time.Now()
	room.UpdatedAt = room.CreatedAt
	cp := *room
	s.rooms[room.ID] = &cp

	return nil
}

func (s *memStore) Update(ctx context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; !ok {
		return domain.ErrRoomNotFound
	}
	room.UpdatedAt = time.Now()
	cp := *room
	s.rooms[room.ID] = &cp

	return nil
}

func (s *memStore) Get(ctx context.Context, id string) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rm, ok := s.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	cp := *rm

	return &cp, nil
}

func (s *memStore) First(ctx context.Context) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms := s.sortedRooms()
	if len(rooms) == 0 {
		return nil, domain.ErrNoRooms
	}
	cp := rooms[0]

	return &cp, nil
}

func (s *memStore) List(ctx context.Context) ([]domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedRooms(), nil
}

func (s *memStore) sortedRooms() []domain.Room {
	out := make([]domain.Room, 0, len(s.rooms))
	for _, rm := range s.rooms {
		out = append(out, *rm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

func (s *memStore) NameTaken(ctx context.Context, name string, excludeID *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rm := range s.rooms {
		if rm.Name == name && (excludeID == nil || rm.ID != *excludeID) {
			return true, nil
		}
	}

	return false, nil
}

func (s *memStore) ListWithJoined(ctx context.Context, userID domain.UserID, limit, offset int) ([]domain.RoomWithJoined, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms := s.sortedRooms()
	if offset >= len(rooms) {
		return nil, nil
	}
	rooms = rooms[offset:]
	if len(rooms) > limit {
		rooms = rooms[:limit]
	}

	out := make([]domain.RoomWithJoined, 0, len(rooms))
	for _, rm := range rooms {
		_, joined := s.memberships[rm.ID][userID]
		out = append(out, domain.RoomWithJoined{Room: rm, Joined: joined})
	}

	return out, nil
}

func (s *memStore) ListJoinedWithUnread(ctx context.Context, userID domain.UserID) ([]domain.RoomWithUnread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.RoomWithUnread
	for _, rm := range s.sortedRooms() {
		m, ok := s.memberships[rm.ID][userID]
		if !ok {
			continue
		}
		var lastRead int64
		if m.LastReadID != nil {
			lastRead = *m.LastReadID
		}
		var unread int64
		for _, msg := range s.messages {
			if msg.RoomID == rm.ID && msg.ID > lastRead {
				unread++
			}
		}
		out = append(out, domain.RoomWithUnread{Room: rm, Unread: unread})
	}

	return out, nil
}

// --- MembershipRepo ---

func (s *memStore) Exists(ctx context.Context, roomID string, userID domain.UserID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.memberships[roomID][userID]

	return ok, nil
}

func (s *memStore) GetMembership(ctx context.Context, roomID string, userID domain.UserID) (*domain.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[roomID][userID]
	if !ok {
		return nil, domain.ErrNotMember
	}
	cp := *m

	return &cp, nil
}

func (s *memStore) Toggle(ctx context.Context, roomID string, userID domain.UserID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.memberships[roomID][userID]; ok {
		delete(s.memberships[roomID], userID)
		return false, nil
	}
	if s.memberships[roomID] == nil {
		s.memberships[roomID] = make(map[domain.UserID]*domain.Membership)
	}
	s.memberships[roomID][userID] = &domain.Membership{
		ID:        s.nextSeq(),
		RoomID:    roomID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	return true, nil
}

func (s *memStore) MarkRead(ctx context.Context, roomID string, userID domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[roomID][userID]
	if !ok {
		return nil // no-op без членства
	}

	var maxID int64
	for _, msg := range s.messages {
		if msg.RoomID == roomID && msg.ID > maxID {
			maxID = msg.ID
		}
	}
	if m.LastReadID == nil || maxID > *m.LastReadID {
		m.LastReadID = &maxID
	}

	return nil
}

// --- MessageRepo ---

func (s *memStore) CreateMessage(ctx context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.nextSeq()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	cp := *m
	cp.User = nil
	cp.Replies = nil
	s.messages[m.ID] = &cp

	return nil
}

func (s *memStore) GetMessage(ctx context.Context, id int64) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return s.assemble(m), nil
}

func (s *memStore) ListMessagesByRoom(ctx context.Context, roomID string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Message
	for _, m := range s.messages {
		if m.RoomID == roomID {
			out = append(out, *s.assemble(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (s *memStore) DeleteMessage(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.messages, id)
	for rid, rp := range s.replies {
		if rp.MessageID == id {
			delete(s.replies, rid)
		}
	}

	return nil
}

func (s *memStore) assemble(m *domain.Message) *domain.Message {
	cp := *m
	cp.User = s.users[m.UserID]
	cp.Replies = []domain.Reply{}
	for _, rp := range s.replies {
		if rp.MessageID == m.ID {
			rcp := *rp
			rcp.User = s.users[rp.UserID]
			cp.Replies = append(cp.Replies, rcp)
		}
	}
	sort.Slice(cp.Replies, func(i, j int) bool {
		if cp.Replies[i].CreatedAt.Equal(cp.Replies[j].CreatedAt) {
			return cp.Replies[i].ID < cp.Replies[j].ID
		}
		return cp.Replies[i].CreatedAt.Before(cp.Replies[j].CreatedAt)
	})

	return &cp
}

// --- ReplyRepo ---

func (s *memStore) CreateReply(ctx context.Context, rp *domain.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rp.ID = s.nextSeq()
	rp.CreatedAt = time.Now()
	rp.UpdatedAt = rp.CreatedAt
	cp := *rp
	cp.User = nil
	s.replies[rp.ID] = &cp

	return nil
}

func (s *memStore) GetReply(ctx context.Context, id int64) (*domain.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rp, ok := s.replies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rp

	return &cp, nil
}

func (s *memStore) DeleteReply(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.replies[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.replies, id)

	return nil
}

// --- UserStore ---

func (s *memStore) CreateUser(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ex := range s.users {
		if ex.Email == u.Email {
			return domain.ErrAlreadyExists
		}
	}
	u.ID = domain.UserID(s.nextSeq())
	cp := *u
	s.users[u.ID] = &cp

	return nil
}

func (s *memStore) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u

	return &cp, nil
}

func (s *memStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}

	return nil, domain.ErrNotFound
}

// адаптеры под узкие интерфейсы сервисов

type msgRepoAdapter struct{ *memStore }

func (a msgRepoAdapter) Create(ctx context.Context, m *domain.Message) error {
	return a.CreateMessage(ctx, m)
}
func (a msgRepoAdapter) Get(ctx context.Context, id int64) (*domain.Message, error) {
	return a.GetMessage(ctx, id)
}
func (a msgRepoAdapter) ListByRoom(ctx context.Context, roomID string) ([]domain.Message, error) {
	return a.ListMessagesByRoom(ctx, roomID)
}
func (a msgRepoAdapter) Delete(ctx context.Context, id int64) error {
	return a.DeleteMessage(ctx, id)
}

type replyRepoAdapter struct{ *memStore }

func (a replyRepoAdapter) Create(ctx context.Context, rp *domain.Reply) error {
	return a.CreateReply(ctx, rp)
}
func (a replyRepoAdapter) Get(ctx context.Context, id int64) (*domain.Reply, error) {
	return a.GetReply(ctx, id)
}
func (a replyRepoAdapter) Delete(ctx context.Context, id int64) error {
	return a.DeleteReply(ctx, id)
}

type membershipRepoAdapter struct{ *memStore }

func (a membershipRepoAdapter) Get(ctx context.Context, roomID string, userID domain.UserID) (*domain.Membership, error) {
	return a.GetMembership(ctx, roomID, userID)
}

type userStoreAdapter struct{ *memStore }

func (a userStoreAdapter) Create(ctx context.Context, u *domain.User) error {
	return a.CreateUser(ctx, u)
}
