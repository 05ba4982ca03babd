package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pup-hangouts/internal/domain/pups"
)

type PupsRepo struct {
	db *sql.DB
}

func NewPupsRepo(db *sql.DB) *PupsRepo {
	return &PupsRepo{db: db}
}

func (r *PupsRepo) Create(ctx context.Context, p pups.Pup) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pups (
			id, owner_user_id, name, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		p.ID,
		p.OwnerUserID,
		p.Name,
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PupsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return pups.ErrNotFound
	}
	return nil
}

func (r *PupsRepo) GetByID(ctx context.Context, id string) (pups.Pup, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pups.Pup{}, pups.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_user_id, name, notes, created_at, updated_at
		FROM pups
		WHERE id = $1
	`, id)

	var p pups.Pup
	if err := row.Scan(&p.ID, &p.OwnerUserID, &p.Name, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return pups.Pup{}, pups.ErrNotFound
		}
		return pups.Pup{}, err
	}

	return p, nil
}

func (r *PupsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pups.Pup, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_user_id, name, notes, created_at, updated_at
		FROM pups
		WHERE owner_user_id = $1
		ORDER BY created_at
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pups.Pup, 0)
	for rows.Next() {
		var p pups.Pup
		if err := rows.Scan(&p.ID, &p.OwnerUserID, &p.Name, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
