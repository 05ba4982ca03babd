package hangouts

import (
	"context"
	"errors"
	"strings"
	"time"

	"pup-hangouts/internal/domain/notifications"
	"pup-hangouts/internal/platform/timewindow"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrOverlap      = errors.New("time window overlaps an existing hangout")
	ErrNoFriendship = errors.New("no friendship for that pup and friend")
	ErrBadState     = errors.New("invalid state")
)

// PupDirectory expone lo mínimo del store de pups (solo lectura).
type PupDirectory interface {
	OwnerOf(ctx context.Context, pupID string) (string, error)
	NameOf(ctx context.Context, pupID string) (string, error)
}

// FriendshipDirectory expone los hechos de vínculo que gobiernan permisos.
type FriendshipDirectory interface {
	Exists(ctx context.Context, pupID, friendUserID string) (bool, error)
	FriendIDsOf(ctx context.Context, pupID string) ([]string, error)
}

// UserDirectory resuelve nombres para componer notificaciones.
type UserDirectory interface {
	NameOf(ctx context.Context, userID string) (string, error)
}

type Service struct {
	repo    Repository
	pups    PupDirectory
	friends FriendshipDirectory
	userDir UserDirectory
	now     func() time.Time
	locks   *pupLocks
}

func NewService(repo Repository, pups PupDirectory, friends FriendshipDirectory, userDir UserDirectory) *Service {
	return &Service{
		repo:    repo,
		pups:    pups,
		friends: friends,
		userDir: userDir,
		now:     time.Now,
		locks:   newPupLocks(),
	}
}

// Recurrence pide expandir la creación en una serie. O bien Frequency+Count,
// o bien RawRule (RRULE cruda, tope MaxCount ocurrencias).
type Recurrence struct {
	Frequency string
	Count     int
	RawRule   string
}

type CreateInput struct {
	PupID   string
	StartAt time.Time
	EndAt   time.Time

	DisplayName string
	Notes       string

	AssignedFriendUserID *string

	Recurrence *Recurrence
}

// CreateOutput incluye lo creado, las ocurrencias de la serie que se
// saltaron por conflicto (la creación por lote es indulgente: cada
// ocurrencia se valida por separado y las anteriores quedan en pie) y los
// intents de notificación para el dispatcher.
type CreateOutput struct {
	Created []Hangout
	Skipped []timewindow.Window
	Intents []notifications.Intent
}

// Create registra uno o más hangouts. Solo el dueño del pup.
func (s *Service) Create(ctx context.Context, callerUserID string, in CreateInput) (CreateOutput, error) {
	pupID := strings.TrimSpace(in.PupID)
	if pupID == "" || strings.TrimSpace(callerUserID) == "" {
		return CreateOutput{}, ErrInvalidInput
	}
	if !in.StartAt.Before(in.EndAt) {
		return CreateOutput{}, ErrInvalidInput
	}

	ownerID, err := s.pups.OwnerOf(ctx, pupID)
	if err != nil {
		return CreateOutput{}, ErrNotFound
	}
	if ownerID != callerUserID {
		return CreateOutput{}, ErrForbidden
	}

	var assigned *string
	if in.AssignedFriendUserID != nil {
		friendID := strings.TrimSpace(*in.AssignedFriendUserID)
		if friendID == "" {
			return CreateOutput{}, ErrInvalidInput
		}
		ok, err := s.friends.Exists(ctx, pupID, friendID)
		if err != nil {
			return CreateOutput{}, err
		}
		if !ok {
			return CreateOutput{}, ErrNoFriendship
		}
		assigned = &friendID
	}

	windows, err := expandWindows(in.StartAt, in.EndAt, in.Recurrence)
	if err != nil {
		return CreateOutput{}, err
	}

	var seriesID *string
	if len(windows) > 1 {
		sid := uuid.NewString()
		seriesID = &sid
	}

	status := StatusOpen
	if assigned != nil {
		status = StatusAssigned
	}

	unlock := s.locks.lock(pupID)
	defer unlock()

	active, err := s.repo.ListActiveByPup(ctx, pupID)
	if err != nil {
		return CreateOutput{}, err
	}
	occupied := make([]timewindow.Window, 0, len(active))
	for _, h := range active {
		occupied = append(occupied, timewindow.Window{Start: h.StartAt, End: h.EndAt})
	}

	now := s.now()
	out := CreateOutput{}

	for i, w := range windows {
		if anyOverlap(w, occupied) {
			if len(windows) == 1 {
				return CreateOutput{}, ErrOverlap
			}
			out.Skipped = append(out.Skipped, w)
			continue
		}

		h := Hangout{
			ID:                   uuid.NewString(),
			PupID:                pupID,
			StartAt:              w.Start,
			EndAt:                w.End,
			Status:               status,
			AssignedFriendUserID: assigned,
			CreatedByUserID:      callerUserID,
			Notes:                strings.TrimSpace(in.Notes),
			DisplayName:          strings.TrimSpace(in.DisplayName),
			SeriesID:             seriesID,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if seriesID != nil {
			idx := i
			h.SeriesIndex = &idx
		}

		if err := s.repo.Create(ctx, h); err != nil {
			return out, err
		}
		out.Created = append(out.Created, h)
		occupied = append(occupied, w)
	}

	if len(out.Created) == 0 {
		return CreateOutput{}, ErrOverlap
	}

	intents, err := s.createIntents(ctx, pupID, assigned, out.Created)
	if err == nil {
		out.Intents = intents
	}
	return out, nil
}

// createIntents: con amigo asignado se le confirma solo a él; sin amigo se
// avisa "hangout disponible" a cada vínculo del pup.
func (s *Service) createIntents(ctx context.Context, pupID string, assigned *string, created []Hangout) ([]notifications.Intent, error) {
	pupName, err := s.pups.NameOf(ctx, pupID)
	if err != nil {
		return nil, err
	}
	first := created[0]

	if assigned != nil {
		return []notifications.Intent{{
			Kind:            notifications.KindHangoutConfirmed,
			RecipientUserID: *assigned,
			Relationship:    "assigned friend",
			PupName:         pupName,
			StartAt:         first.StartAt,
			EndAt:           first.EndAt,
			Occurrences:     len(created),
		}}, nil
	}

	friendIDs, err := s.friends.FriendIDsOf(ctx, pupID)
	if err != nil {
		return nil, err
	}
	intents := make([]notifications.Intent, 0, len(friendIDs))
	for _, fid := range friendIDs {
		intents = append(intents, notifications.Intent{
			Kind:            notifications.KindHangoutAvailable,
			RecipientUserID: fid,
			Relationship:    "friend",
			PupName:         pupName,
			StartAt:         first.StartAt,
			EndAt:           first.EndAt,
			Occurrences:     len(created),
		})
	}
	return intents, nil
}

// UpdateInput es un patch: nil = no tocar. ClearAssignedFriend desasigna y
// reabre el turno (no se puede expresar con un puntero a string vacío).
type UpdateInput struct {
	DisplayName *string
	Notes       *string
	StartAt     *time.Time
	EndAt       *time.Time

	AssignedFriendUserID *string
	ClearAssignedFriend  bool
}

// Update aplica un patch con autorización por campo: display name, notas y
// asignación son solo-dueño; el horario lo puede mover el dueño o el amigo
// asignado. Mover solo el horario de un turno ASSIGNED no borra la
// asignación: reprogramar no es reasignar.
func (s *Service) Update(ctx context.Context, callerUserID, hangoutID string, in UpdateInput) (Hangout, []notifications.Intent, error) {
	h, err := s.repo.GetByID(ctx, hangoutID)
	if err != nil {
		return Hangout{}, nil, ErrNotFound
	}
	if !h.Active() {
		return Hangout{}, nil, ErrBadState
	}

	ownerID, err := s.pups.OwnerOf(ctx, h.PupID)
	if err != nil {
		return Hangout{}, nil, ErrNotFound
	}

	isOwner := callerUserID == ownerID
	isAssigned := h.AssignedTo(callerUserID)
	if !isOwner && !isAssigned {
		return Hangout{}, nil, ErrForbidden
	}

	ownerOnlyTouched := in.DisplayName != nil || in.Notes != nil ||
		in.AssignedFriendUserID != nil || in.ClearAssignedFriend
	if ownerOnlyTouched && !isOwner {
		return Hangout{}, nil, ErrForbidden
	}

	prevAssigned := h.AssignedFriendUserID

	if in.DisplayName != nil {
		h.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.Notes != nil {
		h.Notes = strings.TrimSpace(*in.Notes)
	}

	switch {
	case in.ClearAssignedFriend:
		h.AssignedFriendUserID = nil
	case in.AssignedFriendUserID != nil:
		friendID := strings.TrimSpace(*in.AssignedFriendUserID)
		if friendID == "" {
			return Hangout{}, nil, ErrInvalidInput
		}
		ok, err := s.friends.Exists(ctx, h.PupID, friendID)
		if err != nil {
			return Hangout{}, nil, err
		}
		if !ok {
			return Hangout{}, nil, ErrNoFriendship
		}
		h.AssignedFriendUserID = &friendID
	}

	timesChanged := false
	if in.StartAt != nil {
		h.StartAt = *in.StartAt
		timesChanged = true
	}
	if in.EndAt != nil {
		h.EndAt = *in.EndAt
		timesChanged = true
	}
	if !h.StartAt.Before(h.EndAt) {
		return Hangout{}, nil, ErrInvalidInput
	}

	// Estado recalculado por presencia de amigo; nunca sale de OPEN/ASSIGNED acá.
	if h.AssignedFriendUserID != nil {
		h.Status = StatusAssigned
	} else {
		h.Status = StatusOpen
	}
	h.UpdatedAt = s.now()

	unlock := s.locks.lock(h.PupID)
	defer unlock()

	if timesChanged {
		// Re-chequeo contra la ventana post-patch, excluyéndose a sí mismo.
		active, err := s.repo.ListActiveByPup(ctx, h.PupID)
		if err != nil {
			return Hangout{}, nil, err
		}
		w := timewindow.Window{Start: h.StartAt, End: h.EndAt}
		for _, other := range active {
			if other.ID == h.ID {
				continue
			}
			if timewindow.Overlaps(w, timewindow.Window{Start: other.StartAt, End: other.EndAt}) {
				return Hangout{}, nil, ErrOverlap
			}
		}
	}

	if err := s.repo.Update(ctx, h); err != nil {
		return Hangout{}, nil, err
	}

	intents := s.updateIntents(ctx, h, prevAssigned, timesChanged)
	return h, intents, nil
}

func (s *Service) updateIntents(ctx context.Context, h Hangout, prevAssigned *string, timesChanged bool) []notifications.Intent {
	if h.AssignedFriendUserID == nil {
		return nil
	}

	pupName, err := s.pups.NameOf(ctx, h.PupID)
	if err != nil {
		return nil
	}

	assignmentChanged := prevAssigned == nil || *prevAssigned != *h.AssignedFriendUserID

	base := notifications.Intent{
		RecipientUserID: *h.AssignedFriendUserID,
		Relationship:    "assigned friend",
		PupName:         pupName,
		StartAt:         h.StartAt,
		EndAt:           h.EndAt,
	}

	switch {
	case assignmentChanged:
		base.Kind = notifications.KindHangoutConfirmed
		return []notifications.Intent{base}
	case timesChanged:
		// La confirmación previa no se arrastra: hay que reconfirmar.
		base.Kind = notifications.KindHangoutRescheduled
		return []notifications.Intent{base}
	default:
		return nil
	}
}

// Delete borra el turno (el análogo práctico de cancelar). Solo el dueño.
func (s *Service) Delete(ctx context.Context, callerUserID, hangoutID string) (Hangout, []notifications.Intent, error) {
	h, err := s.repo.GetByID(ctx, hangoutID)
	if err != nil {
		return Hangout{}, nil, ErrNotFound
	}

	ownerID, err := s.pups.OwnerOf(ctx, h.PupID)
	if err != nil {
		return Hangout{}, nil, ErrNotFound
	}
	if callerUserID != ownerID {
		return Hangout{}, nil, ErrForbidden
	}

	if err := s.repo.Delete(ctx, h.ID); err != nil {
		return Hangout{}, nil, err
	}

	pupName, nameErr := s.pups.NameOf(ctx, h.PupID)
	if nameErr != nil {
		return h, nil, nil
	}

	var intents []notifications.Intent
	switch h.Status {
	case StatusAssigned:
		intents = append(intents, notifications.Intent{
			Kind:            notifications.KindHangoutCancelled,
			RecipientUserID: *h.AssignedFriendUserID,
			Relationship:    "assigned friend",
			PupName:         pupName,
			StartAt:         h.StartAt,
			EndAt:           h.EndAt,
		})
	case StatusOpen:
		friendIDs, err := s.friends.FriendIDsOf(ctx, h.PupID)
		if err != nil {
			break
		}
		for _, fid := range friendIDs {
			intents = append(intents, notifications.Intent{
				Kind:            notifications.KindHangoutRemoved,
				RecipientUserID: fid,
				Relationship:    "friend",
				PupName:         pupName,
				StartAt:         h.StartAt,
				EndAt:           h.EndAt,
			})
		}
	}

	return h, intents, nil
}

// Claim: un amigo vinculado toma un turno OPEN.
func (s *Service) Claim(ctx context.Context, callerUserID, hangoutID string) (Hangout, []notifications.Intent, error) {
	h, err := s.repo.GetByID(ctx, hangoutID)
	if err != nil {
		return Hangout{}, nil, ErrNotFound
	}

	ok, err := s.friends.Exists(ctx, h.PupID, callerUserID)
	if err != nil {
		return Hangout{}, nil, err
	}
	if !ok {
		return Hangout{}, nil, ErrNoFriendship
	}

	unlock := s.locks.lock(h.PupID)
	defer unlock()

	// Releer bajo lock: otro claim pudo ganar.
	h, err = s.repo.GetByID(ctx, hangoutID)
	if err != nil {
		return Hangout{}, nil, ErrNotFound
	}
	if h.Status != StatusOpen {
		return Hangout{}, nil, ErrBadState
	}

	caller := callerUserID
	h.AssignedFriendUserID = &caller
	h.Status = StatusAssigned
	h.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, h); err != nil {
		return Hangout{}, nil, err
	}

	return h, s.ownerIntent(ctx, h, callerUserID, notifications.KindHangoutClaimed), nil
}

// Release: el amigo asignado se baja del turno, que vuelve a OPEN.
func (s *Service) Release(ctx context.Context, callerUserID, hangoutID string) (Hangout, []notifications.Intent, error) {
	h, err := s.repo.GetByID(ctx, hangoutID)
	if err != nil {
		return Hangout{}, nil, ErrNotFound
	}
	if h.Status != StatusAssigned {
		return Hangout{}, nil, ErrBadState
	}
	if !h.AssignedTo(callerUserID) {
		return Hangout{}, nil, ErrForbidden
	}

	h.AssignedFriendUserID = nil
	h.Status = StatusOpen
	h.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, h); err != nil {
		return Hangout{}, nil, err
	}

	return h, s.ownerIntent(ctx, h, callerUserID, notifications.KindHangoutReleased), nil
}

// Complete: el dueño marca el turno como realizado (estado terminal).
func (s *Service) Complete(ctx context.Context, callerUserID, hangoutID string) (Hangout, error) {
	h, err := s.repo.GetByID(ctx, hangoutID)
	if err != nil {
		return Hangout{}, ErrNotFound
	}

	ownerID, err := s.pups.OwnerOf(ctx, h.PupID)
	if err != nil {
		return Hangout{}, ErrNotFound
	}
	if callerUserID != ownerID {
		return Hangout{}, ErrForbidden
	}
	if !h.Active() {
		return Hangout{}, ErrBadState
	}

	h.Status = StatusCompleted
	h.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, h); err != nil {
		return Hangout{}, err
	}
	return h, nil
}

func (s *Service) ownerIntent(ctx context.Context, h Hangout, actorUserID string, kind notifications.Kind) []notifications.Intent {
	ownerID, err := s.pups.OwnerOf(ctx, h.PupID)
	if err != nil {
		return nil
	}
	pupName, err := s.pups.NameOf(ctx, h.PupID)
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
		StartAt:         h.StartAt,
		EndAt:           h.EndAt,
		ActorName:       actorName,
	}}
}

func (s *Service) GetByID(ctx context.Context, id string) (Hangout, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Hangout{}, ErrNotFound
	}
	return h, nil
}

// ListForViewer aplica visibilidad por rol: el dueño ve todo lo de su pup;
// un amigo vinculado ve los OPEN más los asignados a él.
func (s *Service) ListForViewer(ctx context.Context, callerUserID, pupID string, f ListFilter) ([]Hangout, error) {
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

	out := make([]Hangout, 0, len(items))
	for _, h := range items {
		if h.Status == StatusOpen || h.AssignedTo(callerUserID) {
			out = append(out, h)
		}
	}
	return out, nil
}

// ListAssignedTo lista los turnos asignados a un amigo (su agenda).
func (s *Service) ListAssignedTo(ctx context.Context, friendUserID string, f ListFilter) ([]Hangout, error) {
	return s.repo.ListAssignedTo(ctx, friendUserID, f)
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

func anyOverlap(w timewindow.Window, occupied []timewindow.Window) bool {
	for _, o := range occupied {
		if timewindow.Overlaps(w, o) {
			return true
		}
	}
	return false
}
