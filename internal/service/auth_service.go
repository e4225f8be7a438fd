package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"payauth/internal/auth"
	apperrors "payauth/internal/errors"
	"payauth/internal/model"
	"payauth/internal/repository"
)

const (
	msgAllFieldsRequired  = "All fields are required"
	msgCredentialsMissing = "Email and password required"
	msgUserExists         = "User already exists"
	msgInvalidCredentials = "Invalid credentials"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	User      model.Profile
	Token     string
	ExpiresAt time.Time
}

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID uint, email string) (string, time.Time, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	hasher   PasswordHasher
	log      logrus.FieldLogger
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, hasher PasswordHasher, log logrus.FieldLogger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
		log:      log,
	}
}

// Register stores a new user. Uniqueness relies on the unique email index, so
// concurrent registrations of one email yield exactly one row and one conflict.
func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperrors.Validation(msgAllFieldsRequired)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperrors.Validation("Password must be at most 72 bytes")
		}
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict(msgUserExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password produce the same error.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperrors.Validation(msgCredentialsMissing)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.Auth(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("stored password hash is unusable")
		}
		return nil, apperrors.Auth(msgInvalidCredentials)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{
		User:      user.Profile(),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
