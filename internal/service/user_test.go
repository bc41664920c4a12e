package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roster/roster/internal/metrics"
	"github.com/roster/roster/internal/model"
	"github.com/roster/roster/internal/repository"
)

// fakeStore is an in-memory UserStore for tests.
type fakeStore struct {
	nextID int64
	users  map[int64]*model.User
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[int64]*model.User)}
}

func (f *fakeStore) CreateUser(_ context.Context, input model.NewUser) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	user := &model.User{
		ID:        f.nextID,
		Name:      input.Name,
		Email:     input.Email,
		CreatedAt: time.Now().UTC(),
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeStore) ListUsers(_ context.Context) ([]*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	users := make([]*model.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	return users, nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func TestUserService_CreateUser(t *testing.T) {
	t.Parallel()

	recorder := metrics.NewInMemory()
	svc := NewUserService(newFakeStore(), recorder)

	user, err := svc.CreateUser(context.Background(), model.NewUser{
		Name:  "Ada",
		Email: "ada@example.com",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if user.ID == 0 {
		t.Error("expected store-assigned id")
	}
	if user.CreatedAt.IsZero() {
		t.Error("expected store-assigned created_at")
	}
	if got := recorder.Snapshot().UsersCreated; got != 1 {
		t.Errorf("expected 1 user created metric, got %d", got)
	}
}

func TestUserService_CreateUser_TrimsWhitespace(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newFakeStore(), nil)

	user, err := svc.CreateUser(context.Background(), model.NewUser{
		Name:  "  Ada  ",
		Email: " ada@example.com ",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Name != "Ada" {
		t.Errorf("expected trimmed name, got %q", user.Name)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("expected trimmed email, got %q", user.Email)
	}
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	t.Parallel()

	longString := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = 'a'
		}
		return string(b)
	}

	tests := []struct {
		name    string
		input   model.NewUser
		wantErr error
	}{
		{
			name:    "missing name",
			input:   model.NewUser{Email: "ada@example.com"},
			wantErr: ErrNameRequired,
		},
		{
			name:    "missing email",
			input:   model.NewUser{Name: "Ada"},
			wantErr: ErrEmailRequired,
		},
		{
			name:    "malformed email",
			input:   model.NewUser{Name: "Ada", Email: "not-an-email"},
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "name too long",
			input:   model.NewUser{Name: longString(201), Email: "ada@example.com"},
			wantErr: ErrNameTooLong,
		},
		{
			name:    "email too long",
			input:   model.NewUser{Name: "Ada", Email: longString(320) + "@example.com"},
			wantErr: ErrEmailTooLong,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := NewUserService(newFakeStore(), nil)
			_, err := svc.CreateUser(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUserService_GetUser(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewUserService(store, nil)

	created, err := svc.CreateUser(context.Background(), model.NewUser{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	user, err := svc.GetUser(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("Email mismatch: got %q", user.Email)
	}
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newFakeStore(), nil)

	_, err := svc.GetUser(context.Background(), 404)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	recorder := metrics.NewInMemory()
	svc := NewUserService(store, recorder)

	created, err := svc.CreateUser(context.Background(), model.NewUser{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := svc.DeleteUser(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if _, err := svc.GetUser(context.Background(), created.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound after delete, got %v", err)
	}

	if err := svc.DeleteUser(context.Background(), created.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound on repeat delete, got %v", err)
	}

	if got := recorder.Snapshot().UsersDeleted; got != 1 {
		t.Errorf("expected 1 user deleted metric, got %d", got)
	}
}

func TestUserService_StoreFailurePropagates(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.err = errors.New("connection refused")
	svc := NewUserService(store, nil)

	if _, err := svc.ListUsers(context.Background()); err == nil {
		t.Error("expected error when store fails")
	}
	if _, err := svc.GetUser(context.Background(), 1); errors.Is(err, ErrUserNotFound) {
		t.Error("store failure must not be reported as not-found")
	}
}
