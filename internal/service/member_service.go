package service

import (
	"context"
	"fmt"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

type MembershipRepo interface {
	Exists(ctx context.Context, roomID string, userID domain.UserID) (bool, error)
	Get(ctx context.Context, roomID string, userID domain.UserID) (*domain.Membership, error)
	Toggle(ctx context.Context, roomID string, userID domain.UserID) (joined bool, err error)
	MarkRead(ctx context.Context, roomID string, userID domain.UserID) error
}

type MemberService struct {
	roomRepo       RoomRepo
	membershipRepo MembershipRepo
}

func NewMemberService(roomRepo RoomRepo, membershipRepo MembershipRepo) *MemberService {
	return &MemberService{
		roomRepo:       roomRepo,
		membershipRepo: membershipRepo,
	}
}

// Toggle — join/leave одной операцией: есть членство — удаляем,
// нет — создаём. Возвращает итоговое состояние (joined).
func (s *MemberService) Toggle(ctx context.Context, roomID string, userID domain.UserID) (bool, error) {
	if _, err := s.roomRepo.Get(ctx, roomID); err != nil {
		return false, err
	}

	joined, err := s.membershipRepo.Toggle(ctx, roomID, userID)
	if err != nil {
		return false, fmt.Errorf("membershipRepo.Toggle: %w", err)
	}

	return joined, nil
}

// MarkRead двигает last_read_id членства до текущего максимума id
// сообщений комнаты. Если пользователь не член комнаты — no-op.
func (s *MemberService) MarkRead(ctx context.Context, roomID string, userID domain.UserID) error {
	return s.membershipRepo.MarkRead(ctx, roomID, userID)
}

func (s *MemberService) IsMember(ctx context.Context, roomID string, userID domain.UserID) (bool, error) {
	return s.membershipRepo.Exists(ctx, roomID, userID)
}

// Membership — членство пользователя в комнате с маркером прочтения.
// domain.ErrNotMember, если членства нет.
func (s *MemberService) Membership(ctx context.Context, roomID string, userID domain.UserID) (*domain.Membership, error) {
	if _, err := s.roomRepo.Get(ctx, roomID); err != nil {
		return nil, err
	}

	return s.membershipRepo.Get(ctx, roomID, userID)
}
