package suggestions

import (
	"context"
	"errors"
	"testing"
	"time"

	"pup-hangouts/internal/domain/hangouts"
	"pup-hangouts/internal/domain/notifications"
)

// -------------------------
// Fakes in-memory
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Suggestion
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Suggestion{}}
}

func (r *testRepo) Create(ctx context.Context, s Suggestion) error {
	if _, ok := r.byID[s.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[s.ID] = s
	return nil
}

func (r *testRepo) Update(ctx context.Context, s Suggestion) error {
	if _, ok := r.byID[s.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[s.ID] = s
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return errRepoNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Suggestion, error) {
	s, ok := r.byID[id]
	if !ok {
		return Suggestion{}, errRepoNotFound
	}
	return s, nil
}

func (r *testRepo) ListByPup(ctx context.Context, pupID string, f ListFilter) ([]Suggestion, error) {
	out := make([]Suggestion, 0)
	for _, s := range r.byID {
		if s.PupID == pupID && f.Matches(s) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *testRepo) ListBySuggester(ctx context.Context, userID string, f ListFilter) ([]Suggestion, error) {
	out := make([]Suggestion, 0)
	for _, s := range r.byID {
		if s.SuggestedByUserID == userID && f.Matches(s) {
			out = append(out, s)
		}
	}
	return out, nil
}

// fakeApprovals imita el par insertar-hangout + flip-a-APPROVED con un punto
// de falla inyectable entre ambas escrituras, compensando como lo hace el
// adapter en memoria real.
type fakeApprovals struct {
	repo         *testRepo
	hangouts     map[string]hangouts.Hangout
	failMidway   bool
	approveCalls int
}

func newFakeApprovals(repo *testRepo) *fakeApprovals {
	return &fakeApprovals{repo: repo, hangouts: map[string]hangouts.Hangout{}}
}

func (f *fakeApprovals) Approve(ctx context.Context, s Suggestion, h hangouts.Hangout) error {
	f.approveCalls++
	f.hangouts[h.ID] = h
	if f.failMidway {
		delete(f.hangouts, h.ID)
		return errors.New("store: injected failure")
	}
	if err := f.repo.Update(ctx, s); err != nil {
		delete(f.hangouts, h.ID)
		return err
	}
	return nil
}

type fakePups struct {
	owners map[string]string
	names  map[string]string
}

func (f *fakePups) OwnerOf(ctx context.Context, pupID string) (string, error) {
	o, ok := f.owners[pupID]
	if !ok {
		return "", errRepoNotFound
	}
	return o, nil
}

func (f *fakePups) NameOf(ctx context.Context, pupID string) (string, error) {
	n, ok := f.names[pupID]
	if !ok {
		return "", errRepoNotFound
	}
	return n, nil
}

type fakeFriends struct {
	byPup map[string][]string
}

func (f *fakeFriends) Exists(ctx context.Context, pupID, friendUserID string) (bool, error) {
	for _, id := range f.byPup[pupID] {
		if id == friendUserID {
			return true, nil
		}
	}
	return false, nil
}

type fakeUsers struct {
	names map[string]string
}

func (f *fakeUsers) NameOf(ctx context.Context, userID string) (string, error) {
	n, ok := f.names[userID]
	if !ok {
		return "", errRepoNotFound
	}
	return n, nil
}

func newTestService() (*Service, *testRepo, *fakeApprovals) {
	repo := newTestRepo()
	approvals := newFakeApprovals(repo)
	svc := NewService(
		repo,
		approvals,
		&fakePups{
			owners: map[string]string{"pup-1": "owner-1"},
			names:  map[string]string{"pup-1": "Milo"},
		},
		&fakeFriends{byPup: map[string][]string{
			"pup-1": {"friend-1", "friend-2"},
		}},
		&fakeUsers{names: map[string]string{
			"owner-1":  "Olivia",
			"friend-1": "Fede",
			"friend-2": "Gabi",
		}},
	)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	}
	return svc, repo, approvals
}

func at(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return v
}

func propose(t *testing.T, svc *Service) Suggestion {
	t.Helper()
	out, err := svc.Propose(context.Background(), "friend-1", ProposeInput{
		PupID:   "pup-1",
		StartAt: at(t, "2024-06-10T10:00:00Z"),
		EndAt:   at(t, "2024-06-10T12:00:00Z"),
		Comment: "can take Milo to the park",
	})
	if err != nil {
		t.Fatalf("Propose error: %v", err)
	}
	return out.Created[0]
}

// -------------------------
// Propose
// -------------------------

func TestService_Propose_NotifiesOwner(t *testing.T) {
	svc, repo, _ := newTestService()

	out, err := svc.Propose(context.Background(), "friend-1", ProposeInput{
		PupID:   "pup-1",
		StartAt: at(t, "2024-06-10T10:00:00Z"),
		EndAt:   at(t, "2024-06-10T12:00:00Z"),
		Comment: "morning walk",
	})
	if err != nil {
		t.Fatalf("Propose error: %v", err)
	}

	sg := out.Created[0]
	if sg.Status != StatusPending {
		t.Fatalf("expected PENDING, got %s", sg.Status)
	}
	if sg.SuggestedByUserID != "friend-1" {
		t.Fatalf("suggester not recorded")
	}
	if _, ok := repo.byID[sg.ID]; !ok {
		t.Fatalf("suggestion not persisted")
	}

	if len(out.Intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(out.Intents))
	}
	in := out.Intents[0]
	if in.Kind != notifications.KindSuggestionReceived || in.RecipientUserID != "owner-1" {
		t.Fatalf("expected SUGGESTION_RECEIVED for owner-1, got %#v", in)
	}
	if in.Comment != "morning walk" {
		t.Fatalf("friend comment must travel in the intent")
	}
}

func TestService_Propose_WithoutFriendship_Forbidden(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Propose(context.Background(), "stranger-9", ProposeInput{
		PupID:   "pup-1",
		StartAt: at(t, "2024-06-10T10:00:00Z"),
		EndAt:   at(t, "2024-06-10T12:00:00Z"),
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("nothing should persist")
	}
}

func TestService_Propose_BadTimeRange(t *testing.T) {
	svc, _, _ := newTestService()

	start := at(t, "2024-06-10T10:00:00Z")
	_, err := svc.Propose(context.Background(), "friend-1", ProposeInput{
		PupID: "pup-1", StartAt: start, EndAt: start,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Propose_IgnoresCalendarConflicts(t *testing.T) {
	// Dos sugerencias sobre la misma ventana conviven: ninguna ocupa el
	// calendario hasta que el dueño apruebe.
	svc, repo, _ := newTestService()

	propose(t, svc)
	propose(t, svc)

	if len(repo.byID) != 2 {
		t.Fatalf("expected 2 coexisting suggestions, got %d", len(repo.byID))
	}
}

func TestService_Propose_Recurring_SharesSeries(t *testing.T) {
	svc, _, _ := newTestService()

	out, err := svc.Propose(context.Background(), "friend-1", ProposeInput{
		PupID:      "pup-1",
		StartAt:    at(t, "2024-06-10T10:00:00Z"),
		EndAt:      at(t, "2024-06-10T11:00:00Z"),
		Recurrence: &Recurrence{Frequency: "weekly", Count: 3},
	})
	if err != nil {
		t.Fatalf("Propose error: %v", err)
	}
	if len(out.Created) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(out.Created))
	}
	sid := out.Created[0].SeriesID
	for i, sg := range out.Created {
		if sg.SeriesID == nil || *sg.SeriesID != *sid {
			t.Fatalf("suggestion %d: series id mismatch", i)
		}
		if sg.SeriesIndex == nil || *sg.SeriesIndex != i {
			t.Fatalf("suggestion %d: bad series index", i)
		}
	}
	if len(out.Intents) != 1 || out.Intents[0].Occurrences != 3 {
		t.Fatalf("owner should get one intent covering the 3 occurrences, got %#v", out.Intents)
	}
}

// -------------------------
// Decide
// -------------------------

func TestService_Decide_Approve_CreatesAssignedHangout(t *testing.T) {
	svc, repo, approvals := newTestService()
	sg := propose(t, svc)

	decided, h, intents, err := svc.Decide(context.Background(), "owner-1", sg.ID, DecideInput{
		Decision: DecisionApprove,
		Comment:  "please use the side gate",
	})
	if err != nil {
		t.Fatalf("Decide error: %v", err)
	}

	if decided.Status != StatusApproved {
		t.Fatalf("expected APPROVED, got %s", decided.Status)
	}
	if decided.DecidedByUserID == nil || *decided.DecidedByUserID != "owner-1" {
		t.Fatalf("decision metadata missing")
	}
	if repo.byID[sg.ID].Status != StatusApproved {
		t.Fatalf("flip not persisted")
	}

	if h == nil {
		t.Fatalf("approve must yield a hangout")
	}
	if h.Status != hangouts.StatusAssigned || h.AssignedFriendUserID == nil || *h.AssignedFriendUserID != "friend-1" {
		t.Fatalf("hangout must be ASSIGNED to the suggesting friend")
	}
	if h.Notes != "please use the side gate" {
		t.Fatalf("decision comment must land in hangout notes, got %q", h.Notes)
	}
	if !h.StartAt.Equal(sg.StartAt) || !h.EndAt.Equal(sg.EndAt) {
		t.Fatalf("hangout window must match the suggestion")
	}
	if _, ok := approvals.hangouts[h.ID]; !ok {
		t.Fatalf("hangout not persisted through approval store")
	}

	if len(intents) != 1 || intents[0].Kind != notifications.KindSuggestionApproved {
		t.Fatalf("expected approval intent, got %#v", intents)
	}
	if intents[0].RecipientUserID != "friend-1" {
		t.Fatalf("approval must notify the suggesting friend")
	}
}

func TestService_Decide_Approve_Twice_NoDuplicateHangout(t *testing.T) {
	svc, _, approvals := newTestService()
	sg := propose(t, svc)

	if _, _, _, err := svc.Decide(context.Background(), "owner-1", sg.ID, DecideInput{Decision: DecisionApprove}); err != nil {
		t.Fatalf("first approve error: %v", err)
	}

	_, _, _, err := svc.Decide(context.Background(), "owner-1", sg.ID, DecideInput{Decision: DecisionApprove})
	if !errors.Is(err, ErrBadState) {
		t.Fatalf("second approve: expected ErrBadState, got %v", err)
	}
	if approvals.approveCalls != 1 {
		t.Fatalf("approval store must be hit exactly once, got %d", approvals.approveCalls)
	}
	if len(approvals.hangouts) != 1 {
		t.Fatalf("expected exactly 1 hangout, got %d", len(approvals.hangouts))
	}
}

func TestService_Decide_Approve_AtomicOnStoreFailure(t *testing.T) {
	svc, repo, approvals := newTestService()
	sg := propose(t, svc)

	approvals.failMidway = true

	_, _, _, err := svc.Decide(context.Background(), "owner-1", sg.ID, DecideInput{Decision: DecisionApprove})
	if err == nil {
		t.Fatalf("expected injected failure to surface")
	}

	// Ni hangout nuevo ni sugerencia APPROVED: todo o nada.
	if len(approvals.hangouts) != 0 {
		t.Fatalf("hangout must not survive a failed approval")
	}
	if got := repo.byID[sg.ID].Status; got != StatusPending {
		t.Fatalf("suggestion must stay PENDING after failed approval, got %s", got)
	}

	// Con el store sano, la misma sugerencia sigue siendo aprobable.
	approvals.failMidway = false
	if _, _, _, err := svc.Decide(context.Background(), "owner-1", sg.ID, DecideInput{Decision: DecisionApprove}); err != nil {
		t.Fatalf("retry approve error: %v", err)
	}
}

func TestService_Decide_Reject_NoHangout(t *testing.T) {
	svc, repo, approvals := newTestService()
	sg := propose(t, svc)

	decided, h, intents, err := svc.Decide(context.Background(), "owner-1", sg.ID, DecideInput{
		Decision: DecisionReject,
		Comment:  "we are away that weekend",
	})
	if err != nil {
		t.Fatalf("Decide error: %v", err)
	}
	if decided.Status != StatusRejected {
		t.Fatalf("expected REJECTED, got %s", decided.Status)
	}
	if h != nil {
		t.Fatalf("reject must not create a hangout")
	}
	if len(approvals.hangouts) != 0 || approvals.approveCalls != 0 {
		t.Fatalf("approval store must stay untouched on reject")
	}
	if repo.byID[sg.ID].Status != StatusRejected {
		t.Fatalf("rejection not persisted")
	}
	if len(intents) != 1 || intents[0].Kind != notifications.KindSuggestionRejected {
		t.Fatalf("expected rejection intent, got %#v", intents)
	}
	if intents[0].Comment != "we are away that weekend" {
		t.Fatalf("decision comment must travel in the intent")
	}
}

func TestService_Decide_Authz(t *testing.T) {
	svc, _, _ := newTestService()
	sg := propose(t, svc)

	// Ni el amigo que sugirió ni otro amigo deciden: solo el dueño.
	for _, caller := range []string{"friend-1", "friend-2", "stranger-9"} {
		if _, _, _, err := svc.Decide(context.Background(), caller, sg.ID, DecideInput{Decision: DecisionApprove}); !errors.Is(err, ErrForbidden) {
			t.Fatalf("caller %s: expected ErrForbidden, got %v", caller, err)
		}
	}
}

func TestService_Decide_UnknownDecision(t *testing.T) {
	svc, _, _ := newTestService()
	sg := propose(t, svc)

	if _, _, _, err := svc.Decide(context.Background(), "owner-1", sg.ID, DecideInput{Decision: "MAYBE"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// -------------------------
// Edit / Withdraw
// -------------------------

func TestService_Edit_CreatorOnlyWhilePending(t *testing.T) {
	svc, _, _ := newTestService()
	sg := propose(t, svc)

	newEnd := at(t, "2024-06-10T13:00:00Z")
	edited, err := svc.Edit(context.Background(), "friend-1", sg.ID, EditInput{EndAt: &newEnd})
	if err != nil {
		t.Fatalf("Edit error: %v", err)
	}
	if !edited.EndAt.Equal(newEnd) {
		t.Fatalf("end not applied")
	}

	// El dueño no edita la propuesta ajena, ni siquiera siendo dueño del pup.
	if _, err := svc.Edit(context.Background(), "owner-1", sg.ID, EditInput{EndAt: &newEnd}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("owner edit: expected ErrForbidden, got %v", err)
	}

	// Después de decidir, ni el creador.
	if _, _, _, err := svc.Decide(context.Background(), "owner-1", sg.ID, DecideInput{Decision: DecisionReject}); err != nil {
		t.Fatalf("reject error: %v", err)
	}
	if _, err := svc.Edit(context.Background(), "friend-1", sg.ID, EditInput{EndAt: &newEnd}); !errors.Is(err, ErrBadState) {
		t.Fatalf("edit after decision: expected ErrBadState, got %v", err)
	}
}

func TestService_Edit_BadTimeRange(t *testing.T) {
	svc, _, _ := newTestService()
	sg := propose(t, svc)

	badEnd := sg.StartAt
	if _, err := svc.Edit(context.Background(), "friend-1", sg.ID, EditInput{EndAt: &badEnd}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Withdraw_ByCreator_NotifiesOwner(t *testing.T) {
	svc, repo, _ := newTestService()
	sg := propose(t, svc)

	_, intents, err := svc.Withdraw(context.Background(), "friend-1", sg.ID)
	if err != nil {
		t.Fatalf("Withdraw error: %v", err)
	}
	if _, ok := repo.byID[sg.ID]; ok {
		t.Fatalf("suggestion should be gone")
	}
	if len(intents) != 1 || intents[0].Kind != notifications.KindSuggestionWithdrawn {
		t.Fatalf("creator withdrawal must notify the owner, got %#v", intents)
	}
	if intents[0].RecipientUserID != "owner-1" {
		t.Fatalf("expected recipient owner-1, got %s", intents[0].RecipientUserID)
	}
}

func TestService_Withdraw_ByOwner_Silent(t *testing.T) {
	svc, repo, _ := newTestService()
	sg := propose(t, svc)

	_, intents, err := svc.Withdraw(context.Background(), "owner-1", sg.ID)
	if err != nil {
		t.Fatalf("Withdraw error: %v", err)
	}
	if _, ok := repo.byID[sg.ID]; ok {
		t.Fatalf("suggestion should be gone")
	}
	// El retiro del dueño no avisa a nadie.
	if len(intents) != 0 {
		t.Fatalf("owner withdrawal must be silent, got %#v", intents)
	}
}

func TestService_Withdraw_OnDecided_Conflict(t *testing.T) {
	svc, _, _ := newTestService()
	sg := propose(t, svc)

	if _, _, _, err := svc.Decide(context.Background(), "owner-1", sg.ID, DecideInput{Decision: DecisionReject}); err != nil {
		t.Fatalf("reject error: %v", err)
	}

	if _, _, err := svc.Withdraw(context.Background(), "friend-1", sg.ID); !errors.Is(err, ErrBadState) {
		t.Fatalf("withdraw on REJECTED: expected ErrBadState, got %v", err)
	}
}

func TestService_Withdraw_Authz(t *testing.T) {
	svc, _, _ := newTestService()
	sg := propose(t, svc)

	if _, _, err := svc.Withdraw(context.Background(), "friend-2", sg.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

// -------------------------
// Visibilidad
// -------------------------

func TestService_ListForViewer(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	propose(t, svc) // friend-1
	if _, err := svc.Propose(ctx, "friend-2", ProposeInput{
		PupID:   "pup-1",
		StartAt: at(t, "2024-06-11T10:00:00Z"),
		EndAt:   at(t, "2024-06-11T12:00:00Z"),
	}); err != nil {
		t.Fatalf("Propose error: %v", err)
	}

	all, err := svc.ListForViewer(ctx, "owner-1", "pup-1", ListFilter{})
	if err != nil {
		t.Fatalf("owner list error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("owner should see both, got %d", len(all))
	}

	mine, err := svc.ListForViewer(ctx, "friend-1", "pup-1", ListFilter{})
	if err != nil {
		t.Fatalf("friend list error: %v", err)
	}
	if len(mine) != 1 || mine[0].SuggestedByUserID != "friend-1" {
		t.Fatalf("friend-1 should see only their own proposal")
	}

	if _, err := svc.ListForViewer(ctx, "stranger-9", "pup-1", ListFilter{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger: expected ErrForbidden, got %v", err)
	}
}
