package users

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testRepo struct {
	byID map[string]User
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]User{}}
}

func (r *testRepo) Create(ctx context.Context, u User) error {
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) Update(ctx context.Context, u User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return ErrNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	}
	return svc, repo
}

func strptr(s string) *string { return &s }

func TestService_Register(t *testing.T) {
	svc, repo := newTestService()

	u, err := svc.Register(context.Background(), RegisterInput{
		Name:           "  Fede ",
		Role:           "friend",
		ContactChannel: strptr("fede@example.com"),
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Name != "Fede" {
		t.Errorf("Name = %q, quiero %q", u.Name, "Fede")
	}
	if u.Role != RoleFriend {
		t.Errorf("Role = %q, quiero FRIEND", u.Role)
	}
	if u.ContactChannel == nil || *u.ContactChannel != "fede@example.com" {
		t.Errorf("ContactChannel = %v", u.ContactChannel)
	}
	if _, ok := repo.byID[u.ID]; !ok {
		t.Error("el usuario no quedó persistido")
	}
}

func TestService_Register_RejectsBadInput(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"nombre vacío", RegisterInput{Name: "   ", Role: "OWNER"}},
		{"rol desconocido", RegisterInput{Name: "Fede", Role: "ADMIN"}},
		{"rol vacío", RegisterInput{Name: "Fede"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, quiero ErrInvalidInput", err)
			}
		})
	}
}

func TestService_Register_BlankContactBecomesNil(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.Register(context.Background(), RegisterInput{
		Name:           "Gabi",
		Role:           "FRIEND",
		ContactChannel: strptr("   "),
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ContactChannel != nil {
		t.Errorf("ContactChannel = %q, quiero nil", *u.ContactChannel)
	}
}

func TestService_UpdateContact(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.Register(context.Background(), RegisterInput{Name: "Nico", Role: "FRIEND"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := svc.UpdateContact(context.Background(), u.ID, strptr("nico@example.com"))
	if err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}
	if got.ContactChannel == nil || *got.ContactChannel != "nico@example.com" {
		t.Errorf("ContactChannel = %v", got.ContactChannel)
	}
	if got.Role != RoleFriend {
		t.Errorf("Role cambió a %q", got.Role)
	}

	// Limpiar el canal vuelve a dejarlo sin destino.
	got, err = svc.UpdateContact(context.Background(), u.ID, nil)
	if err != nil {
		t.Fatalf("UpdateContact(nil): %v", err)
	}
	if got.ContactChannel != nil {
		t.Errorf("ContactChannel = %v, quiero nil", got.ContactChannel)
	}
}

func TestService_UpdateContact_NotFound(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.UpdateContact(context.Background(), "nope", strptr("x@y")); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, quiero ErrNotFound", err)
	}
}

func TestService_NameOf(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.Register(context.Background(), RegisterInput{Name: "Fede", Role: "OWNER"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	name, err := svc.NameOf(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("NameOf: %v", err)
	}
	if name != "Fede" {
		t.Errorf("NameOf = %q", name)
	}

	if _, err := svc.NameOf(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, quiero ErrNotFound", err)
	}
}
