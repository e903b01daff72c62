package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type Service struct {
	repo   Repository
	tokens *TokenManager
	log    *zap.Logger
}

func NewService(repo Repository, tokens *TokenManager, log *zap.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, log: log}
}

// Login checks the credentials and issues a session token. Unknown user
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Info("failed login attempt", zap.String("username", username))
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Sign(user.Username, user.Ambulatori)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// GetUser loads the user record behind a verified token subject.
func (s *Service) GetUser(ctx context.Context, username string) (*User, error) {
	return s.repo.GetUserByUsername(ctx, username)
}

// HashPassword is used by seeding and user provisioning.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
