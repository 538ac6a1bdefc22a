package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mejova/bloggy/internal/domain/entity"
	"github.com/mejova/bloggy/internal/domain/repository"
	"github.com/mejova/bloggy/pkg/helpers"
)

// MinPasswordLength is the registration floor for raw passwords.
const MinPasswordLength = 6

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password, so login failures never reveal whether a handle exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters long")
	// ErrSelfDelete rejects an admin deleting their own account.
	ErrSelfDelete = errors.New("cannot delete own account")
)

// UserService is the credential store: it owns user records and is the only
// component that sees raw passwords.
type UserService struct {
	Repo   repository.UserRepository
	Logger *logrus.Logger
}

func NewUserService(repo repository.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{Repo: repo, Logger: logger}
}

// Register creates a new account. The raw password is digested with bcrypt
// and never retained.
func (s *UserService) Register(ctx context.Context, username, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Username: username, PasswordHash: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies a username/password pair against the stored digest.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.Repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]entity.User, error) {
	return s.Repo.List(ctx)
}

// Delete removes the target account. The acting principal may never delete
// itself; the guard runs before any store access.
func (s *UserService) Delete(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return ErrSelfDelete
	}
	return s.Repo.Delete(ctx, targetID)
}
