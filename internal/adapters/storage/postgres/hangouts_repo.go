package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pup-hangouts/internal/domain/hangouts"
)

const hangoutColumns = `
	id, pup_id, start_at, end_at, status,
	assigned_friend_user_id, created_by_user_id,
	notes, display_name,
	series_id, series_index,
	created_at, updated_at
`

type HangoutsRepo struct {
	db *sql.DB
}

func NewHangoutsRepo(db *sql.DB) *HangoutsRepo {
	return &HangoutsRepo{db: db}
}

func (r *HangoutsRepo) Create(ctx context.Context, h hangouts.Hangout) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO hangouts (`+hangoutColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		h.ID,
		h.PupID,
		h.StartAt,
		h.EndAt,
		string(h.Status),
		h.AssignedFriendUserID,
		h.CreatedByUserID,
		h.Notes,
		h.DisplayName,
		h.SeriesID,
		h.SeriesIndex,
		h.CreatedAt,
		h.UpdatedAt,
	)
	return err
}

func (r *HangoutsRepo) Update(ctx context.Context, h hangouts.Hangout) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE hangouts SET
			start_at = $2,
			end_at = $3,
			status = $4,
			assigned_friend_user_id = $5,
			notes = $6,
			display_name = $7,
			updated_at = $8
		WHERE id = $1
	`,
		h.ID,
		h.StartAt,
		h.EndAt,
		string(h.Status),
		h.AssignedFriendUserID,
		h.Notes,
		h.DisplayName,
		h.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return hangouts.ErrNotFound
	}
	return nil
}

func (r *HangoutsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM hangouts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return hangouts.ErrNotFound
	}
	return nil
}

func (r *HangoutsRepo) GetByID(ctx context.Context, id string) (hangouts.Hangout, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return hangouts.Hangout{}, hangouts.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+hangoutColumns+`
		FROM hangouts
		WHERE id = $1
	`, id)

	h, err := scanHangout(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return hangouts.Hangout{}, hangouts.ErrNotFound
		}
		return hangouts.Hangout{}, err
	}
	return h, nil
}

func (r *HangoutsRepo) ListByPup(ctx context.Context, pupID string, f hangouts.ListFilter) ([]hangouts.Hangout, error) {
	return r.list(ctx, `WHERE pup_id = $1`, pupID, f)
}

func (r *HangoutsRepo) ListActiveByPup(ctx context.Context, pupID string) ([]hangouts.Hangout, error) {
	return r.list(ctx, `WHERE pup_id = $1 AND status IN ('OPEN','ASSIGNED')`, pupID, hangouts.ListFilter{})
}

func (r *HangoutsRepo) ListAssignedTo(ctx context.Context, friendUserID string, f hangouts.ListFilter) ([]hangouts.Hangout, error) {
	return r.list(ctx, `WHERE assigned_friend_user_id = $1`, friendUserID, f)
}

func (r *HangoutsRepo) list(ctx context.Context, where, arg string, f hangouts.ListFilter) ([]hangouts.Hangout, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + hangoutColumns + ` FROM hangouts ` + where)

	args := []any{arg}
	argN := 2

	// Filtro de rango: toda ventana que toque [from, to).
	if f.From != nil {
		sb.WriteString(fmt.Sprintf(" AND end_at > $%d", argN))
		args = append(args, *f.From)
		argN++
	}
	if f.To != nil {
		sb.WriteString(fmt.Sprintf(" AND start_at < $%d", argN))
		args = append(args, *f.To)
		argN++
	}
	if f.Status != nil {
		sb.WriteString(fmt.Sprintf(" AND status = $%d", argN))
		args = append(args, string(*f.Status))
		argN++
	}

	sb.WriteString(" ORDER BY start_at")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]hangouts.Hangout, 0)
	for rows.Next() {
		h, err := scanHangout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHangout(row rowScanner) (hangouts.Hangout, error) {
	var h hangouts.Hangout
	var status string
	var assigned, seriesID sql.NullString
	var seriesIndex sql.NullInt64

	if err := row.Scan(
		&h.ID,
		&h.PupID,
		&h.StartAt,
		&h.EndAt,
		&status,
		&assigned,
		&h.CreatedByUserID,
		&h.Notes,
		&h.DisplayName,
		&seriesID,
		&seriesIndex,
		&h.CreatedAt,
		&h.UpdatedAt,
	); err != nil {
		return hangouts.Hangout{}, err
	}

	h.Status = hangouts.Status(status)
	if assigned.Valid {
		h.AssignedFriendUserID = &assigned.String
	}
	if seriesID.Valid {
		h.SeriesID = &seriesID.String
	}
	if seriesIndex.Valid {
		idx := int(seriesIndex.Int64)
		h.SeriesIndex = &idx
	}

	return h, nil
}
