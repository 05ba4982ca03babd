package suggestions

import (
	"context"
	"errors"
	"strings"
	"time"

	"pup-hangouts/internal/domain/hangouts"
	"pup-hangouts/internal/domain/notifications"
	"pup-hangouts/internal/platform/timewindow"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
)

// PupDirectory expone lo mínimo del store de pups (solo lectura).
type PupDirectory interface {
	OwnerOf(ctx context.Context, pupID string) (string, error)
	NameOf(ctx context.Context, pupID string) (string, error)
}

// FriendshipDirectory responde si el vínculo pup-amigo existe.
type FriendshipDirectory interface {
	Exists(ctx context.Context, pupID, friendUserID string) (bool, error)
}

// UserDirectory resuelve nombres para componer notificaciones.
type UserDirectory interface {
	NameOf(ctx context.Context, userID string) (string, error)
}

type Service struct {
	repo      Repository
	approvals ApprovalStore
	pups      PupDirectory
	friends   FriendshipDirectory
	userDir   UserDirectory
	now       func() time.Time
}

func NewService(repo Repository, approvals ApprovalStore, pups PupDirectory, friends FriendshipDirectory, userDir UserDirectory) *Service {
	return &Service{
		repo:      repo,
		approvals: approvals,
		pups:      pups,
		friends:   friends,
		userDir:   userDir,
		now:       time.Now,
	}
}

// Recurrence pide expandir la propuesta en una serie; mismo contrato que la
// creación de hangouts (Frequency+Count o RawRule).
type Recurrence struct {
	Frequency string
	Count     int
	RawRule   string
}

type ProposeInput struct {
	PupID   string
	StartAt time.Time
	EndAt   time.Time

	DisplayName string
	Comment     string

	Recurrence *Recurrence
}

type ProposeOutput struct {
	Created []Suggestion
	Intents []notifications.Intent
}

// Propose registra una o más sugerencias PENDING. Requiere vínculo con el
// pup. Acá no hay chequeo de solapamiento: una sugerencia no ocupa el
// calendario, solo un Hangout comprometido lo hace.
func (s *Service) Propose(ctx context.Context, callerUserID string, in ProposeInput) (ProposeOutput, error) {
	pupID := strings.TrimSpace(in.PupID)
	if pupID == "" || strings.TrimSpace(callerUserID) == "" {
		return ProposeOutput{}, ErrInvalidInput
	}
	if !in.StartAt.Before(in.EndAt) {
		return ProposeOutput{}, ErrInvalidInput
	}

	if _, err := s.pups.OwnerOf(ctx, pupID); err != nil {
		return ProposeOutput{}, ErrNotFound
	}
	ok, err := s.friends.Exists(ctx, pupID, callerUserID)
	if err != nil {
		return ProposeOutput{}, err
	}
	if !ok {
		return ProposeOutput{}, ErrForbidden
	}

	windows, err := expandWindows(in.StartAt, in.EndAt, in.Recurrence)
	if err != nil {
		return ProposeOutput{}, err
	}

	var seriesID *string
	if len(windows) > 1 {
		sid := uuid.NewString()
		seriesID = &sid
	}

	now := s.now()
	out := ProposeOutput{}

	for i, w := range windows {
		sg := Suggestion{
			ID:                uuid.NewString(),
			PupID:             pupID,
			StartAt:           w.Start,
			EndAt:             w.End,
			Status:            StatusPending,
			SuggestedByUserID: callerUserID,
			DisplayName:       strings.TrimSpace(in.DisplayName),
			Comment:           strings.TrimSpace(in.Comment),
			SeriesID:          seriesID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if seriesID != nil {
			idx := i
			sg.SeriesIndex = &idx
		}

		if err := s.repo.Create(ctx, sg); err != nil {
			return out, err
		}
		out.Created = append(out.Created, sg)
	}

	first := out.Created[0]
	out.Intents = s.ownerIntent(ctx, first, callerUserID,
		notifications.KindSuggestionReceived, first.Comment, len(out.Created))
	return out, nil
}

// Decision del dueño sobre una sugerencia PENDING.
const (
	DecisionApprove = "APPROVE"
	DecisionReject  = "REJECT"
)

type DecideInput struct {
	Decision string
	Comment  string
}

// Decide resuelve la sugerencia exactamente una vez. Al aprobar, la creación
// del Hangout (ASSIGNED al amigo que sugirió, con el comentario de decisión
// como notas) y el flip a APPROVED van juntos por el ApprovalStore: o entran
// los dos o no entra ninguno. No se rechequea solapamiento contra el
// calendario del pup en este punto.
func (s *Service) Decide(ctx context.Context, callerUserID, suggestionID string, in DecideInput) (Suggestion, *hangouts.Hangout, []notifications.Intent, error) {
	sg, err := s.repo.GetByID(ctx, suggestionID)
	if err != nil {
		return Suggestion{}, nil, nil, ErrNotFound
	}
	if !sg.Pending() {
		return Suggestion{}, nil, nil, ErrBadState
	}

	ownerID, err := s.pups.OwnerOf(ctx, sg.PupID)
	if err != nil {
		return Suggestion{}, nil, nil, ErrNotFound
	}
	if callerUserID != ownerID {
		return Suggestion{}, nil, nil, ErrForbidden
	}

	now := s.now()
	caller := callerUserID
	sg.DecisionComment = strings.TrimSpace(in.Comment)
	sg.DecidedByUserID = &caller
	sg.DecidedAt = &now
	sg.UpdatedAt = now

	switch in.Decision {
	case DecisionApprove:
		sg.Status = StatusApproved

		friendID := sg.SuggestedByUserID
		h := hangouts.Hangout{
			ID:                   uuid.NewString(),
			PupID:                sg.PupID,
			StartAt:              sg.StartAt,
			EndAt:                sg.EndAt,
			Status:               hangouts.StatusAssigned,
			AssignedFriendUserID: &friendID,
			CreatedByUserID:      callerUserID,
			Notes:                sg.DecisionComment,
			DisplayName:          sg.DisplayName,
			SeriesID:             sg.SeriesID,
			SeriesIndex:          sg.SeriesIndex,
			CreatedAt:            now,
			UpdatedAt:            now,
		}

		if err := s.approvals.Approve(ctx, sg, h); err != nil {
			return Suggestion{}, nil, nil, err
		}

		intents := s.suggesterIntent(ctx, sg, callerUserID, notifications.KindSuggestionApproved)
		return sg, &h, intents, nil

	case DecisionReject:
		sg.Status = StatusRejected
		if err := s.repo.Update(ctx, sg); err != nil {
			return Suggestion{}, nil, nil, err
		}
		intents := s.suggesterIntent(ctx, sg, callerUserID, notifications.KindSuggestionRejected)
		return sg, nil, intents, nil

	default:
		return Suggestion{}, nil, nil, ErrInvalidInput
	}
}

// EditInput es un patch: nil = no tocar.
type EditInput struct {
	DisplayName *string
	Comment     *string
	StartAt     *time.Time
	EndAt       *time.Time
}

// Edit lo puede usar solo quien creó la sugerencia, y solo mientras PENDING.
func (s *Service) Edit(ctx context.Context, callerUserID, suggestionID string, in EditInput) (Suggestion, error) {
	sg, err := s.repo.GetByID(ctx, suggestionID)
	if err != nil {
		return Suggestion{}, ErrNotFound
	}
	if callerUserID != sg.SuggestedByUserID {
		return Suggestion{}, ErrForbidden
	}
	if !sg.Pending() {
		return Suggestion{}, ErrBadState
	}

	if in.DisplayName != nil {
		sg.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.Comment != nil {
		sg.Comment = strings.TrimSpace(*in.Comment)
	}
	if in.StartAt != nil {
		sg.StartAt = *in.StartAt
	}
	if in.EndAt != nil {
		sg.EndAt = *in.EndAt
	}
	if !sg.StartAt.Before(sg.EndAt) {
		return Suggestion{}, ErrInvalidInput
	}
	sg.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, sg); err != nil {
		return Suggestion{}, err
	}
	return sg, nil
}

// Withdraw borra una sugerencia PENDING. Puede hacerlo quien la creó o el
// dueño del pup. Si la retira el creador se avisa al dueño; el retiro por el
// dueño no notifica a nadie.
func (s *Service) Withdraw(ctx context.Context, callerUserID, suggestionID string) (Suggestion, []notifications.Intent, error) {
	sg, err := s.repo.GetByID(ctx, suggestionID)
	if err != nil {
		return Suggestion{}, nil, ErrNotFound
	}

	ownerID, err := s.pups.OwnerOf(ctx, sg.PupID)
	if err != nil {
		return Suggestion{}, nil, ErrNotFound
	}
	isCreator := callerUserID == sg.SuggestedByUserID
	if !isCreator && callerUserID != ownerID {
		return Suggestion{}, nil, ErrForbidden
	}
	if !sg.Pending() {
		return Suggestion{}, nil, ErrBadState
	}

	if err := s.repo.Delete(ctx, sg.ID); err != nil {
		return Suggestion{}, nil, err
	}

	if !isCreator {
		return sg, nil, nil
	}
	intents := s.ownerIntent(ctx, sg, callerUserID, notifications.KindSuggestionWithdrawn, "", 0)
	return sg, intents, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Suggestion, error) {
	sg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Suggestion{}, ErrNotFound
	}
	return sg, nil
}

// ListForViewer: el dueño ve todas las sugerencias de su pup; un amigo
// vinculado ve solo las propias.
func (s *Service) ListForViewer(ctx context.Context, callerUserID, pupID string, f ListFilter) ([]Suggestion, error) {
	ownerID, err := s.pups.OwnerOf(ctx, pupID)
	if err != nil {
		return nil, ErrNotFound
	}

	items, err := s.repo.ListByPup(ctx, pupID, f)
	if err != nil {
		return nil, err
	}

	if callerUserID == ownerID {
		return items, nil
	}

	ok, err := s.friends.Exists(ctx, pupID, callerUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	out := make([]Suggestion, 0, len(items))
	for _, sg := range items {
		if sg.SuggestedByUserID == callerUserID {
			out = append(out, sg)
		}
	}
	return out, nil
}

// ListMine lista las sugerencias hechas por el caller, cruzando pups.
func (s *Service) ListMine(ctx context.Context, callerUserID string, f ListFilter) ([]Suggestion, error) {
	return s.repo.ListBySuggester(ctx, callerUserID, f)
}

func (s *Service) ownerIntent(ctx context.Context, sg Suggestion, actorUserID string, kind notifications.Kind, comment string, occurrences int) []notifications.Intent {
	ownerID, err := s.pups.OwnerOf(ctx, sg.PupID)
	if err != nil {
		return nil
	}
	pupName, err := s.pups.NameOf(ctx, sg.PupID)
	if err != nil {
		return nil
	}
	actorName, err := s.userDir.NameOf(ctx, actorUserID)
	if err != nil {
		actorName = actorUserID
	}

	return []notifications.Intent{{
		Kind:            kind,
		RecipientUserID: ownerID,
		Relationship:    "owner",
		PupName:         pupName,
		StartAt:         sg.StartAt,
		EndAt:           sg.EndAt,
		ActorName:       actorName,
		Comment:         comment,
		Occurrences:     occurrences,
	}}
}

func (s *Service) suggesterIntent(ctx context.Context, sg Suggestion, actorUserID string, kind notifications.Kind) []notifications.Intent {
	pupName, err := s.pups.NameOf(ctx, sg.PupID)
	if err != nil {
		return nil
	}
	actorName, err := s.userDir.NameOf(ctx, actorUserID)
	if err != nil {
		actorName = actorUserID
	}

	return []notifications.Intent{{
		Kind:            kind,
		RecipientUserID: sg.SuggestedByUserID,
		Relationship:    "suggesting friend",
		PupName:         pupName,
		StartAt:         sg.StartAt,
		EndAt:           sg.EndAt,
		ActorName:       actorName,
		Comment:         sg.DecisionComment,
	}}
}

func expandWindows(start, end time.Time, rec *Recurrence) ([]timewindow.Window, error) {
	if rec == nil {
		return []timewindow.Window{{Start: start, End: end}}, nil
	}

	if strings.TrimSpace(rec.RawRule) != "" {
		max := rec.Count
		if max == 0 {
			max = timewindow.MaxCount
		}
		ws, err := timewindow.ExpandRRule(start, end, rec.RawRule, max)
		if err != nil {
			return nil, ErrInvalidInput
		}
		return ws, nil
	}

	freq, err := timewindow.ParseFrequency(rec.Frequency)
	if err != nil {
		return nil, ErrInvalidInput
	}
	ws, err := timewindow.Expand(start, end, freq, rec.Count)
	if err != nil {
		return nil, ErrInvalidInput
	}
	return ws, nil
}
