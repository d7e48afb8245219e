// Package services contains the account business logic. AuthService covers
// sign-up and sign-in; UserService covers the operations of an
// authenticated user, including the cached by-id lookup.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/BakeNecko/sidus-heroes/internal/common"
	"github.com/BakeNecko/sidus-heroes/internal/logging"
	"github.com/BakeNecko/sidus-heroes/internal/server/models"
	"github.com/BakeNecko/sidus-heroes/internal/server/repositories/users"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 12
)

type PasswordHasher interface {
	Hash(plaintext string) ([]byte, error)
	Verify(plaintext string, hash []byte) bool
}

type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

type SignUpInput struct {
	UserName string
	Email    string
	Password string
}

type AuthService struct {
	users  users.Repository
	hasher PasswordHasher
	tokens TokenIssuer
	logger logging.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(repo users.Repository, hasher PasswordHasher, tokens TokenIssuer, logger logging.Logger) *AuthService {
	return &AuthService{
		users:  repo,
		hasher: hasher,
		tokens: tokens,
		logger: logger.With("module", "auth_service"),
	}
}

// SignUp creates a user. The password length is checked before any hashing
// or store access; a taken username or email yields common.ErrConflict.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*models.PublicUser, error) {
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrInternal, err)
	}

	user, err := s.users.Create(ctx, &models.User{
		UserName:     in.UserName,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			s.logger.Info(ctx, "sign-up rejected: duplicate", "username", in.UserName)
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user.Public(), nil
}

// SignIn checks the credentials and returns a fresh access token. An unknown
// username and a wrong password both yield common.ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// burn the same bcrypt time as a real comparison
			s.hasher.Verify(password, s.dummy())
			s.logger.Info(ctx, "sign-in rejected")
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Info(ctx, "sign-in rejected")
		return "", common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("%w: issue token: %v", common.ErrInternal, err)
	}

	s.logger.Info(ctx, "user signed in", "user_id", user.ID)
	return token, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("dummy-password")
	})
	return s.dummyHash
}

// ValidatePassword enforces the password length policy, counted in
// characters rather than bytes.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return fmt.Errorf("%w: password must be %d to %d characters long",
			common.ErrValidation, MinPasswordLength, MaxPasswordLength)
	}
	return nil
}
