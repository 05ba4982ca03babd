package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type RegisterInput struct {
	Name           string
	Role           string
	ContactChannel *string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return User{}, ErrInvalidInput
	}

	role := Role(strings.ToUpper(strings.TrimSpace(in.Role)))
	if role != RoleOwner && role != RoleFriend {
		return User{}, ErrInvalidInput
	}

	contact := normalizeContact(in.ContactChannel)

	now := s.now()
	u := User{
		ID:             uuid.NewString(),
		Name:           name,
		Role:           role,
		ContactChannel: contact,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}

// UpdateContact cambia (o limpia) el canal de contacto. El rol nunca se toca.
func (s *Service) UpdateContact(ctx context.Context, id string, contact *string) (User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	u.ContactChannel = normalizeContact(contact)
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// NameOf resuelve solo el nombre; lo usan otros dominios para componer
// mensajes sin acoplarse al modelo completo.
func (s *Service) NameOf(ctx context.Context, userID string) (string, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Name, nil
}

func normalizeContact(c *string) *string {
	if c == nil {
		return nil
	}
	v := strings.TrimSpace(*c)
	if v == "" {
		return nil
	}
	return &v
}
