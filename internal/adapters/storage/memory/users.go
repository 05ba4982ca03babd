// Package memory implementa los repositorios sobre mapas protegidos por
// RWMutex. Es el backend por defecto cuando no hay DSN configurado: arranque
// instantáneo, cero dependencias externas, y el mismo contrato de errores
// que el backend Postgres.
package memory

import (
	"context"
	"sync"

	"pup-hangouts/internal/domain/users"
)

type UserRepository struct {
	mu   sync.RWMutex
	byID map[string]users.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: map[string]users.User{}}
}

func (r *UserRepository) Create(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = u
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; !ok {
		return users.ErrNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}
