package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pup-hangouts/internal/domain/hangouts"
	"pup-hangouts/internal/domain/suggestions"
)

const suggestionColumns = `
	id, pup_id, start_at, end_at, status,
	suggested_by_user_id, display_name, comment,
	decision_comment, decided_by_user_id, decided_at,
	series_id, series_index,
	created_at, updated_at
`

type SuggestionsRepo struct {
	db *sql.DB
}

func NewSuggestionsRepo(db *sql.DB) *SuggestionsRepo {
	return &SuggestionsRepo{db: db}
}

func (r *SuggestionsRepo) Create(ctx context.Context, s suggestions.Suggestion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO suggestions (`+suggestionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		s.ID,
		s.PupID,
		s.StartAt,
		s.EndAt,
		string(s.Status),
		s.SuggestedByUserID,
		s.DisplayName,
		s.Comment,
		s.DecisionComment,
		s.DecidedByUserID,
		s.DecidedAt,
		s.SeriesID,
		s.SeriesIndex,
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

func (r *SuggestionsRepo) Update(ctx context.Context, s suggestions.Suggestion) error {
	res, err := r.db.ExecContext(ctx, updateSuggestionSQL, updateSuggestionArgs(s)...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return suggestions.ErrNotFound
	}
	return nil
}

const updateSuggestionSQL = `
	UPDATE suggestions SET
		start_at = $2,
		end_at = $3,
		status = $4,
		display_name = $5,
		comment = $6,
		decision_comment = $7,
		decided_by_user_id = $8,
		decided_at = $9,
		updated_at = $10
	WHERE id = $1
`

func updateSuggestionArgs(s suggestions.Suggestion) []any {
	return []any{
		s.ID,
		s.StartAt,
		s.EndAt,
		string(s.Status),
		s.DisplayName,
		s.Comment,
		s.DecisionComment,
		s.DecidedByUserID,
		s.DecidedAt,
		s.UpdatedAt,
	}
}

func (r *SuggestionsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM suggestions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return suggestions.ErrNotFound
	}
	return nil
}

func (r *SuggestionsRepo) GetByID(ctx context.Context, id string) (suggestions.Suggestion, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return suggestions.Suggestion{}, suggestions.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+suggestionColumns+`
		FROM suggestions
		WHERE id = $1
	`, id)

	s, err := scanSuggestion(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return suggestions.Suggestion{}, suggestions.ErrNotFound
		}
		return suggestions.Suggestion{}, err
	}
	return s, nil
}

func (r *SuggestionsRepo) ListByPup(ctx context.Context, pupID string, f suggestions.ListFilter) ([]suggestions.Suggestion, error) {
	return r.list(ctx, `WHERE pup_id = $1`, pupID, f)
}

func (r *SuggestionsRepo) ListBySuggester(ctx context.Context, userID string, f suggestions.ListFilter) ([]suggestions.Suggestion, error) {
	return r.list(ctx, `WHERE suggested_by_user_id = $1`, userID, f)
}

func (r *SuggestionsRepo) list(ctx context.Context, where, arg string, f suggestions.ListFilter) ([]suggestions.Suggestion, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + suggestionColumns + ` FROM suggestions ` + where)

	args := []any{arg}
	argN := 2

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

	out := make([]suggestions.Suggestion, 0)
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSuggestion(row rowScanner) (suggestions.Suggestion, error) {
	var s suggestions.Suggestion
	var status string
	var decidedBy, seriesID sql.NullString
	var decidedAt sql.NullTime
	var seriesIndex sql.NullInt64

	if err := row.Scan(
		&s.ID,
		&s.PupID,
		&s.StartAt,
		&s.EndAt,
		&status,
		&s.SuggestedByUserID,
		&s.DisplayName,
		&s.Comment,
		&s.DecisionComment,
		&decidedBy,
		&decidedAt,
		&seriesID,
		&seriesIndex,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return suggestions.Suggestion{}, err
	}

	s.Status = suggestions.Status(status)
	if decidedBy.Valid {
		s.DecidedByUserID = &decidedBy.String
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		s.DecidedAt = &t
	}
	if seriesID.Valid {
		s.SeriesID = &seriesID.String
	}
	if seriesIndex.Valid {
		idx := int(seriesIndex.Int64)
		s.SeriesIndex = &idx
	}

	return s, nil
}

// ApprovalStore hace el par flip-a-APPROVED + insert-hangout en una sola
// transacción: si cualquiera de las dos escrituras falla, el rollback deja
// el store como estaba.
type ApprovalStore struct {
	db *sql.DB
}

func NewApprovalStore(db *sql.DB) *ApprovalStore {
	return &ApprovalStore{db: db}
}

func (a *ApprovalStore) Approve(ctx context.Context, s suggestions.Suggestion, h hangouts.Hangout) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, updateSuggestionSQL, updateSuggestionArgs(s)...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return suggestions.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
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
	); err != nil {
		return err
	}

	return tx.Commit()
}
