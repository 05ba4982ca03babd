package pups

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testRepo struct {
	byID map[string]Pup
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Pup{}}
}

func (r *testRepo) Create(ctx context.Context, p Pup) error {
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Pup, error) {
	p, ok := r.byID[id]
	if !ok {
		return Pup{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]Pup, error) {
	out := make([]Pup, 0)
	for _, p := range r.byID {
		if p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	}
	return svc, repo
}

func TestService_Create(t *testing.T) {
	svc, repo := newTestService()

	p, err := svc.Create(context.Background(), "owner-1", CreateInput{
		Name:  "  Rocco ",
		Notes: "le tiene miedo a las bicis",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name != "Rocco" {
		t.Errorf("Name = %q, quiero %q", p.Name, "Rocco")
	}
	if p.OwnerUserID != "owner-1" {
		t.Errorf("OwnerUserID = %q", p.OwnerUserID)
	}
	if _, ok := repo.byID[p.ID]; !ok {
		t.Error("el pup no quedó persistido")
	}
}

func TestService_Create_RejectsBadInput(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Create(context.Background(), "owner-1", CreateInput{Name: "   "}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nombre vacío: err = %v, quiero ErrInvalidInput", err)
	}
	if _, err := svc.Create(context.Background(), "", CreateInput{Name: "Rocco"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("dueño vacío: err = %v, quiero ErrInvalidInput", err)
	}
}

func TestService_Delete_OnlyOwner(t *testing.T) {
	svc, repo := newTestService()

	p, err := svc.Create(context.Background(), "owner-1", CreateInput{Name: "Rocco"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(context.Background(), "friend-1", p.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, quiero ErrForbidden", err)
	}
	if _, ok := repo.byID[p.ID]; !ok {
		t.Error("el pup desapareció tras un delete prohibido")
	}

	if err := svc.Delete(context.Background(), "owner-1", p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := repo.byID[p.ID]; ok {
		t.Error("el pup sigue existiendo")
	}

	if err := svc.Delete(context.Background(), "owner-1", p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("segundo delete: err = %v, quiero ErrNotFound", err)
	}
}

func TestService_OwnerOfAndNameOf(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.Create(context.Background(), "owner-1", CreateInput{Name: "Rocco"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	owner, err := svc.OwnerOf(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("OwnerOf: %v", err)
	}
	if owner != "owner-1" {
		t.Errorf("OwnerOf = %q", owner)
	}

	name, err := svc.NameOf(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("NameOf: %v", err)
	}
	if name != "Rocco" {
		t.Errorf("NameOf = %q", name)
	}

	if _, err := svc.OwnerOf(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, quiero ErrNotFound", err)
	}
}
