package pups

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
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

type CreateInput struct {
	Name  string
	Notes string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pup, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pup{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pup{}, ErrInvalidInput
	}

	now := s.now()
	p := Pup{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pup{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pup, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pup{}, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pup{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pup, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

func (s *Service) Delete(ctx context.Context, callerUserID, id string) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.OwnerUserID != callerUserID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
