package pups

import "context"

// OwnerOf expone el ownerUserID de un pup.
// Se usa para evitar ciclos de imports entre módulos (pups <-> hangouts).
func (s *Service) OwnerOf(ctx context.Context, pupID string) (string, error) {
	p, err := s.GetByID(ctx, pupID)
	if err != nil {
		return "", err
	}
	return p.OwnerUserID, nil
}

// NameOf expone el nombre de un pup, para componer notificaciones.
func (s *Service) NameOf(ctx context.Context, pupID string) (string, error) {
	p, err := s.GetByID(ctx, pupID)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}
