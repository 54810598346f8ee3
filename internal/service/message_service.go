package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/pubsub"
)

type MessageRepo interface {
	Create(ctx context.Context, m *domain.Message) error
	Get(ctx context.Context, id int64) (*domain.Message, error)
	ListByRoom(ctx context.Context, roomID string) ([]domain.Message, error)
	Delete(ctx context.Context, id int64) error
}

type ReplyRepo interface {
	Create(ctx context.Context, rp *domain.Reply) error
	Get(ctx context.Context, id int64) (*domain.Reply, error)
	Delete(ctx context.Context, id int64) error
}

type UserRepo interface {
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
}

// Broadcaster — fan-out по топику комнаты; реализуется *pubsub.Bus.
type Broadcaster interface {
	Publish(topic string, ev pubsub.Event)
}

type MessageService struct {
	messageRepo MessageRepo
	replyRepo   ReplyRepo
	userRepo    UserRepo
	bus         Broadcaster
}

func NewMessageService(messageRepo MessageRepo, replyRepo ReplyRepo, userRepo UserRepo, bus Broadcaster) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		replyRepo:   replyRepo,
		userRepo:    userRepo,
		bus:         bus,
	}
}

// Change — проверка тела без сохранения; для живой подсветки формы.
func (s *MessageService) Change(body string) domain.FieldErrors {
	return domain.ValidateBody(body)
}

// Create сохраняет сообщение и публикует new_message в топик комнаты.
// Событие несёт полное сообщение с автором и пустым списком ответов.
func (s *MessageService) Create(ctx context.Context, roomID string, userID domain.UserID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if errs := domain.ValidateBody(body); errs != nil {
		return nil, errs
	}

	m := &domain.Message{
		RoomID: roomID,
		UserID: userID,
		Body:   body,
	}
	if err := s.messageRepo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("messageRepo.Create: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("userRepo.GetByID: %w", err)
	}
	m.User = user
	m.Replies = []domain.Reply{}

	s.bus.Publish(pubsub.RoomTopic(roomID), pubsub.Event{
		Type:      pubsub.TypeNewMessage,
		RoomID:    roomID,
		MessageID: m.ID,
		Message:   m,
	})

	return m, nil
}

// DeleteByID удаляет сообщение. Чужое сообщение удалить нельзя:
// несовпадение владельца — жёсткая ошибка, не тихий фильтр.
func (s *MessageService) DeleteByID(ctx context.Context, id int64, userID domain.UserID) error {
	m, err := s.messageRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.UserID != userID {
		return domain.ErrNotOwner
	}

	if err := s.messageRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("messageRepo.Delete: %w", err)
	}

	s.bus.Publish(pubsub.RoomTopic(m.RoomID), pubsub.Event{
		Type:      pubsub.TypeMessageDeleted,
		RoomID:    m.RoomID,
		MessageID: m.ID,
	})

	return nil
}

// ListInRoom — сообщения комнаты по (created_at, id) с авторами и ответами.
func (s *MessageService) ListInRoom(ctx context.Context, roomID string) ([]domain.Message, error) {
	return s.messageRepo.ListByRoom(ctx, roomID)
}

func (s *MessageService) Get(ctx context.Context, id int64) (*domain.Message, error) {
	return s.messageRepo.Get(ctx, id)
}

// CreateReply сохраняет ответ и публикует new_reply. Событие несёт
// родительское сообщение, перечитанное со ВСЕМИ ответами, чтобы
// подписчики пересинхронизировали тред целиком.
func (s *MessageService) CreateReply(ctx context.Context, messageID int64, userID domain.UserID, body string) (*domain.Reply, error) {
	body = strings.TrimSpace(body)
	if errs := domain.ValidateBody(body); errs != nil {
		return nil, errs
	}

	parent, err := s.messageRepo.Get(ctx, messageID)
	if err != nil {
		return nil, err
	}

	rp := &domain.Reply{
		MessageID: parent.ID,
		UserID:    userID,
		Body:      body,
	}
	if err := s.replyRepo.Create(ctx, rp); err != nil {
		return nil, fmt.Errorf("replyRepo.Create: %w", err)
	}

	reloaded, err := s.messageRepo.Get(ctx, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("reload parent: %w", err)
	}

	s.bus.Publish(pubsub.RoomTopic(reloaded.RoomID), pubsub.Event{
		Type:      pubsub.TypeNewReply,
		RoomID:    reloaded.RoomID,
		MessageID: reloaded.ID,
		Message:   reloaded,
	})

	return rp, nil
}

// DeleteReplyByID удаляет ответ владельца и публикует deleted_reply
// с перечитанным родительским сообщением.
func (s *MessageService) DeleteReplyByID(ctx context.Context, id int64, userID domain.UserID) error {
	rp, err := s.replyRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if rp.UserID != userID {
		return domain.ErrNotOwner
	}

	if err := s.replyRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("replyRepo.Delete: %w", err)
	}

	reloaded, err := s.messageRepo.Get(ctx, rp.MessageID)
	if err != nil {
		return fmt.Errorf("reload parent: %w", err)
	}

	s.bus.Publish(pubsub.RoomTopic(reloaded.RoomID), pubsub.Event{
		Type:      pubsub.TypeDeletedReply,
		RoomID:    reloaded.RoomID,
		MessageID: reloaded.ID,
		Message:   reloaded,
	})

	return nil
}
