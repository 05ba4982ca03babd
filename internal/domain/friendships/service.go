package friendships

import (
	"context"
	"errors"
	"strings"
	"time"

	"pup-hangouts/internal/domain/users"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// PupDirectory expone lo mínimo que este módulo necesita del store de pups.
type PupDirectory interface {
	OwnerOf(ctx context.Context, pupID string) (string, error)
}

// UserDirectory resuelve usuarios para validar el rol del amigo.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (users.User, error)
}

type Service struct {
	repo    Repository
	pups    PupDirectory
	userDir UserDirectory
	now     func() time.Time
}

func NewService(repo Repository, pups PupDirectory, userDir UserDirectory) *Service {
	return &Service{
		repo:    repo,
		pups:    pups,
		userDir: userDir,
		now:     time.Now,
	}
}

type LinkInput struct {
	PupID        string
	FriendUserID string
	History      string
}

// Link crea el vínculo (pup, amigo). Solo el dueño del pup puede vincular,
// y únicamente a usuarios con rol FRIEND. Si el vínculo ya existe, lo
// devuelve tal cual (idempotente: a lo sumo un edge por par).
func (s *Service) Link(ctx context.Context, callerUserID string, in LinkInput) (Friendship, error) {
	pupID := strings.TrimSpace(in.PupID)
	friendID := strings.TrimSpace(in.FriendUserID)

	if pupID == "" || friendID == "" || strings.TrimSpace(callerUserID) == "" {
		return Friendship{}, ErrInvalidInput
	}

	ownerID, err := s.pups.OwnerOf(ctx, pupID)
	if err != nil {
		return Friendship{}, ErrNotFound
	}
	if ownerID != callerUserID {
		return Friendship{}, ErrForbidden
	}
	if friendID == ownerID {
		return Friendship{}, ErrInvalidInput
	}

	friend, err := s.userDir.GetByID(ctx, friendID)
	if err != nil {
		return Friendship{}, ErrNotFound
	}
	if friend.Role != users.RoleFriend {
		return Friendship{}, ErrInvalidInput
	}

	if existing, err := s.repo.GetByPupAndFriend(ctx, pupID, friendID); err == nil && existing.ID != "" {
		return existing, nil
	}

	f := Friendship{
		ID:           uuid.NewString(),
		PupID:        pupID,
		FriendUserID: friendID,
		History:      strings.TrimSpace(in.History),
		CreatedAt:    s.now(),
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return Friendship{}, err
	}
	return f, nil
}

// Unlink quita el vínculo. Solo el dueño del pup.
func (s *Service) Unlink(ctx context.Context, callerUserID, pupID, friendUserID string) error {
	ownerID, err := s.pups.OwnerOf(ctx, pupID)
	if err != nil {
		return ErrNotFound
	}
	if ownerID != callerUserID {
		return ErrForbidden
	}

	f, err := s.repo.GetByPupAndFriend(ctx, pupID, friendUserID)
	if err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, f.ID)
}

func (s *Service) ListByPup(ctx context.Context, pupID string) ([]Friendship, error) {
	pupID = strings.TrimSpace(pupID)
	if pupID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByPup(ctx, pupID)
}

func (s *Service) ListByFriend(ctx context.Context, friendUserID string) ([]Friendship, error) {
	friendUserID = strings.TrimSpace(friendUserID)
	if friendUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByFriend(ctx, friendUserID)
}

// Exists reporta si hay vínculo (pup, amigo). Precondición de asignaciones,
// claims y sugerencias en los módulos de calendario.
func (s *Service) Exists(ctx context.Context, pupID, friendUserID string) (bool, error) {
	f, err := s.repo.GetByPupAndFriend(ctx, pupID, friendUserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return f.ID != "", nil
}

// FriendIDsOf enumera los amigos vinculados a un pup (destinatarios de fan-out).
func (s *Service) FriendIDsOf(ctx context.Context, pupID string) ([]string, error) {
	items, err := s.repo.ListByPup(ctx, pupID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, f := range items {
		out = append(out, f.FriendUserID)
	}
	return out, nil
}
