package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hireon/hireon-api/internal/domain/user"
	"github.com/hireon/hireon-api/internal/pkg/jwt"
	"github.com/hireon/hireon-api/internal/pkg/password"
)

type userRepoStub struct {
	byEmail map[string]*user.User
	created *user.User
}

func (r *userRepoStub) Create(_ context.Context, u *user.User) error {
	if _, exists := r.byEmail[u.Email]; exists {
		return user.ErrEmailTaken
	}
	r.created = u
	return nil
}

func (r *userRepoStub) GetByEmail(_ context.Context, email string) (*user.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

func (r *userRepoStub) GetByID(context.Context, uuid.UUID) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func newTestService(repo *userRepoStub) *Service {
	return NewService(repo, jwt.NewService("test-secret", 15*time.Minute))
}

func TestRegisterNormalizesEmail(t *testing.T) {
	repo := &userRepoStub{byEmail: map[string]*user.User{}}
	svc := newTestService(repo)

	result, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "  Seeker@Example.COM ",
		Password: "secret-password",
		Role:     user.RoleSeeker,
		FullName: "Test Seeker",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if repo.created.Email != "seeker@example.com" {
		t.Fatalf("expected normalized email, got %q", repo.created.Email)
	}
	if result.AccessToken == "" {
		t.Fatal("expected access token")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := password.Hash("right-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	repo := &userRepoStub{byEmail: map[string]*user.User{
		"seeker@example.com": {ID: uuid.New(), Email: "seeker@example.com", PasswordHash: hash, Role: user.RoleSeeker},
	}}
	svc := newTestService(repo)

	_, err = svc.Login(context.Background(), &LoginRequest{Email: "seeker@example.com", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownUserHidesExistence(t *testing.T) {
	svc := newTestService(&userRepoStub{byEmail: map[string]*user.User{}})

	_, err := svc.Login(context.Background(), &LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
