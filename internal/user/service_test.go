package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/parthg/splitwise/pkg/auth"
)

type fakeStore struct {
	nextID int64
	users  map[int64]*User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[int64]*User)}
}

func (f *fakeStore) Create(_ context.Context, username, email string, phone *string, passwordHash string) (*User, error) {
	f.nextID++
	u := &User{ID: f.nextID, Username: username, Email: email, Phone: phone, PasswordHash: passwordHash, CreatedAt: time.Now()}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*User, error) {
	return f.users[id], nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var out []*User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (f *fakeStore) Update(_ context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	u := f.users[id]
	if u == nil {
		return nil, nil
	}
	if req.Username != nil {
		u.Username = *req.Username
	}
	return u, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	delete(f.users, id)
	return nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	jwt := auth.NewJWTManager("test-secret", time.Hour)
	return NewService(store, jwt), store
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{Username: "parth", Email: "parth@example.com", Password: "short"})
	if !errors.Is(err, auth.ErrWeakPassword) {
		t.Fatalf("expected weak password error, got %v", err)
	}

	u, err := svc.Register(ctx, &RegisterRequest{Username: "parth", Email: "parth@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.PasswordHash == "supersecret" {
		t.Errorf("password must be stored hashed")
	}

	_, err = svc.Register(ctx, &RegisterRequest{Username: "parth2", Email: "parth@example.com", Password: "supersecret"})
	if !errors.Is(err, ErrEmailAlreadyInUse) {
		t.Fatalf("expected duplicate email error, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{Username: "parth", Email: "parth@example.com", Password: "supersecret"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, u, err := svc.Login(ctx, &LoginRequest{Email: "parth@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" || u == nil {
		t.Fatalf("expected token and user")
	}

	_, _, err = svc.Login(ctx, &LoginRequest{Email: "parth@example.com", Password: "wrongpass"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	_, _, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "supersecret"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestGetByID(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	if _, err := svc.GetByID(ctx, 99); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}

	created, _ := store.Create(ctx, "parth", "p@example.com", nil, "hash")
	got, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Username != "parth" {
		t.Errorf("username = %q, want parth", got.Username)
	}
}
