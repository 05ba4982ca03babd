package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pup-hangouts/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, name, role, contact_channel,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		u.ID,
		u.Name,
		string(u.Role),
		u.ContactChannel,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			name = $2,
			contact_channel = $3,
			updated_at = $4
		WHERE id = $1
	`,
		u.ID,
		u.Name,
		u.ContactChannel,
		u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, users.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, role, contact_channel, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)

	var u users.User
	var role string
	var contact sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &role, &contact, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}

	u.Role = users.Role(role)
	if contact.Valid {
		u.ContactChannel = &contact.String
	}

	return u, nil
}
