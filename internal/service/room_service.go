package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

const DefaultRoomsPageSize = 10

type RoomRepo interface {
	Create(ctx context.Context, room *domain.Room) error
	Update(ctx context.Context, room *domain.Room) error
	Get(ctx context.Context, id string) (*domain.Room, error)
	First(ctx context.Context) (*domain.Room, error)
	List(ctx context.Context) ([]domain.Room, error)
	NameTaken(ctx context.Context, name string, excludeID *string) (bool, error)
	ListWithJoined(ctx context.Context, userID domain.UserID, limit, offset int) ([]domain.RoomWithJoined, error)
	ListJoinedWithUnread(ctx context.Context, userID domain.UserID) ([]domain.RoomWithUnread, error)
}

type RoomService struct {
	roomRepo RoomRepo
	pageSize int
}

func NewRoomService(roomRepo RoomRepo) *RoomService {
	return &RoomService{
		roomRepo: roomRepo,
		pageSize: DefaultRoomsPageSize,
	}
}

func (s *RoomService) SetPageSize(n int) {
	if n > 0 {
		s.pageSize = n
	}
}

// Create создаёт комнату. Ошибки валидации (включая занятое имя)
// возвращаются как domain.FieldErrors.
func (s *RoomService) Create(ctx context.Context, name string, topic *string) (*domain.Room, error) {
	name = strings.TrimSpace(name)
	topic = trimTopic(topic)

	if errs, err := s.validate(ctx, name, topic, nil); err != nil {
		return nil, err
	} else if errs != nil {
		return nil, errs
	}

	room := &domain.Room{Name: name, Topic: topic}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		// гонка между pre-check и вставкой: constraint — источник истины
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.FieldErrors{"name": "has already been taken"}
		}
		return nil, fmt.Errorf("roomRepo.Create: %w", err)
	}

	return room, nil
}

// Update меняет имя/топик комнаты с той же валидацией, что и Create.
func (s *RoomService) Update(ctx context.Context, roomID, name string, topic *string) (*domain.Room, error) {
	room, err := s.roomRepo.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	topic = trimTopic(topic)

	if errs, err := s.validate(ctx, name, topic, &room.ID); err != nil {
		return nil, err
	} else if errs != nil {
		return nil, errs
	}

	room.Name = name
	room.Topic = topic
	if err := s.roomRepo.Update(ctx, room); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.FieldErrors{"name": "has already been taken"}
		}
		return nil, fmt.Errorf("roomRepo.Update: %w", err)
	}

	return room, nil
}

func (s *RoomService) validate(ctx context.Context, name string, topic *string, excludeID *string) (domain.FieldErrors, error) {
	if errs := domain.ValidateRoom(name, topic); errs != nil {
		return errs, nil
	}

	taken, err := s.roomRepo.NameTaken(ctx, name, excludeID)
	if err != nil {
		return nil, fmt.Errorf("roomRepo.NameTaken: %w", err)
	}
	if taken {
		return domain.FieldErrors{"name": "has already been taken"}, nil
	}

	return nil, nil
}

func (s *RoomService) Get(ctx context.Context, id string) (*domain.Room, error) {
	return s.roomRepo.Get(ctx, id)
}

// List — все комнаты по имени по возрастанию.
func (s *RoomService) List(ctx context.Context) ([]domain.Room, error) {
	return s.roomRepo.List(ctx)
}

// First — комната по умолчанию (минимальное имя).
// domain.ErrNoRooms — фатально для вызывающего: без комнаты рендерить нечего.
func (s *RoomService) First(ctx context.Context) (*domain.Room, error) {
	return s.roomRepo.First(ctx)
}

// ListWithJoined — страница (page от 1) комнат с флагом членства.
func (s *RoomService) ListWithJoined(ctx context.Context, userID domain.UserID, page int) ([]domain.RoomWithJoined, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * s.pageSize

	return s.roomRepo.ListWithJoined(ctx, userID, s.pageSize, offset)
}

// ListJoinedWithUnread — комнаты пользователя со счётчиком непрочитанного.
func (s *RoomService) ListJoinedWithUnread(ctx context.Context, userID domain.UserID) ([]domain.RoomWithUnread, error) {
	return s.roomRepo.ListJoinedWithUnread(ctx, userID)
}

func trimTopic(topic *string) *string {
	if topic == nil {
		return nil
	}
	t := strings.TrimSpace(*topic)
	if t == "" {
		return nil
	}

	return &t
}
