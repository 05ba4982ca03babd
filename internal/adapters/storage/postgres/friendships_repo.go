package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pup-hangouts/internal/domain/friendships"
)

type FriendshipsRepo struct {
	db *sql.DB
}

func NewFriendshipsRepo(db *sql.DB) *FriendshipsRepo {
	return &FriendshipsRepo{db: db}
}

func (r *FriendshipsRepo) Create(ctx context.Context, f friendships.Friendship) error {
	// El índice único (pup_id, friend_user_id) respalda el "a lo sumo un
	// edge por par" también frente a escrituras concurrentes.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO friendships (
			id, pup_id, friend_user_id, history, created_at
		) VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (pup_id, friend_user_id) DO NOTHING
	`,
		f.ID,
		f.PupID,
		f.FriendUserID,
		f.History,
		f.CreatedAt,
	)
	return err
}

func (r *FriendshipsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM friendships WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return friendships.ErrNotFound
	}
	return nil
}

func (r *FriendshipsRepo) GetByPupAndFriend(ctx context.Context, pupID, friendUserID string) (friendships.Friendship, error) {
	pupID = strings.TrimSpace(pupID)
	friendUserID = strings.TrimSpace(friendUserID)
	if pupID == "" || friendUserID == "" {
		return friendships.Friendship{}, friendships.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, pup_id, friend_user_id, history, created_at
		FROM friendships
		WHERE pup_id = $1 AND friend_user_id = $2
	`, pupID, friendUserID)

	var f friendships.Friendship
	if err := row.Scan(&f.ID, &f.PupID, &f.FriendUserID, &f.History, &f.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return friendships.Friendship{}, friendships.ErrNotFound
		}
		return friendships.Friendship{}, err
	}

	return f, nil
}

func (r *FriendshipsRepo) ListByPup(ctx context.Context, pupID string) ([]friendships.Friendship, error) {
	return r.list(ctx, `WHERE pup_id = $1`, pupID)
}

func (r *FriendshipsRepo) ListByFriend(ctx context.Context, friendUserID string) ([]friendships.Friendship, error) {
	return r.list(ctx, `WHERE friend_user_id = $1`, friendUserID)
}

func (r *FriendshipsRepo) list(ctx context.Context, where string, arg any) ([]friendships.Friendship, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pup_id, friend_user_id, history, created_at
		FROM friendships
	`+where+` ORDER BY created_at`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]friendships.Friendship, 0)
	for rows.Next() {
		var f friendships.Friendship
		if err := rows.Scan(&f.ID, &f.PupID, &f.FriendUserID, &f.History, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
