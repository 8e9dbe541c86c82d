// Package auth implements registration, credential validation, and authorship
// checks for questhall accounts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ebonmoor/questhall/internal/platform/id"
	"github.com/ebonmoor/questhall/internal/storage"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

// Account roles. Masters author adventures; players join campaigns.
const (
	RoleMaster = "master"
	RolePlayer = "player"
)

// ErrEmptyLogin indicates a registration or login attempt without a login.
var ErrEmptyLogin = errors.New("login is required")

// ErrEmptyPassword indicates a registration or login attempt without a password.
var ErrEmptyPassword = errors.New("password is required")

// ErrInvalidRole indicates a role outside master/player.
var ErrInvalidRole = errors.New("role must be master or player")

// ErrDuplicateLogin indicates the login is already registered.
var ErrDuplicateLogin = errors.New("login already registered")

// ErrInvalidCredentials indicates no account matches the login and password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is an authenticated account identity. The password hash never leaves
// the storage layer through this type.
type User struct {
	ID    string
	Login string
	Role  string
}

// Service implements identity and access checks over injected stores.
type Service struct {
	users      storage.UserStore
	adventures storage.AdventureStore
	clock      func() time.Time
	newID      func() (string, error)
}

// NewService creates an auth service backed by the given stores.
func NewService(users storage.UserStore, adventures storage.AdventureStore) *Service {
	return &Service{
		users:      users,
		adventures: adventures,
		clock:      time.Now,
		newID:      id.NewID,
	}
}

// normalizeLogin trims and NFC-normalizes a user-entered login so visually
// identical logins collide instead of registering twice.
func normalizeLogin(login string) string {
	return norm.NFC.String(strings.TrimSpace(login))
}

// Register creates an account with a bcrypt-hashed password.
//
// Callers re-authenticate afterwards; nothing about the new account is
// returned beyond the error.
func (s *Service) Register(ctx context.Context, login, password, role string) error {
	if s == nil || s.users == nil {
		return fmt.Errorf("user store is not configured")
	}

	login = normalizeLogin(login)
	if login == "" {
		return ErrEmptyLogin
	}
	if password == "" {
		return ErrEmptyPassword
	}
	if role != RoleMaster && role != RolePlayer {
		return ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	userID, err := s.newID()
	if err != nil {
		return fmt.Errorf("generate user id: %w", err)
	}

	err = s.users.CreateUser(ctx, storage.User{
		ID:           userID,
		Login:        login,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.clock().UTC(),
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return ErrDuplicateLogin
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Authenticate validates a login/password pair and returns the account.
// Unknown logins and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, login, password string) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user store is not configured")
	}

	login = normalizeLogin(login)
	if login == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	record, err := s.users.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	return User{ID: record.ID, Login: record.Login, Role: record.Role}, nil
}

// IsAdventureAuthor reports whether userID authored the adventure.
// Returns storage.ErrNotFound when the adventure does not exist.
func (s *Service) IsAdventureAuthor(ctx context.Context, adventureID, userID string) (bool, error) {
	if s == nil || s.adventures == nil {
		return false, fmt.Errorf("adventure store is not configured")
	}

	adventure, err := s.adventures.GetAdventure(ctx, adventureID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, storage.ErrNotFound
		}
		return false, fmt.Errorf("load adventure: %w", err)
	}
	return adventure.AuthorID == userID, nil
}
