package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hireon/hireon-api/internal/domain/user"
	"github.com/hireon/hireon-api/internal/pkg/jwt"
	"github.com/hireon/hireon-api/internal/pkg/password"
)

// UserRepository is the slice of user storage the auth flow needs
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type Service struct {
	users UserRepository
	jwt   *jwt.Service
}

func NewService(users UserRepository, jwtService *jwt.Service) *Service {
	return &Service{users: users, jwt: jwtService}
}

// Register creates a user and returns a signed access token
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         req.Role,
		FullName:     strings.TrimSpace(req.FullName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", u.ID.String()).Str("role", u.Role).Msg("user registered")
	return s.issueToken(u)
}

// Login verifies credentials and returns a signed access token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if err == user.ErrUserNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(u)
}

// GetUser returns the public view of a user
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return userInfo(u), nil
}

func (s *Service) issueToken(u *user.User) (*AuthResponse, error) {
	token, err := s.jwt.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.jwt.GetAccessTTL().Seconds()),
		User:        userInfo(u),
	}, nil
}

func userInfo(u *user.User) *UserInfo {
	return &UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	}
}
