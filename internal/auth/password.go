// Package auth handles accounts, password checks and cookie sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
	"fintrack/internal/metrics"
)

// Credential limits. bcrypt ignores input past 72 bytes.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// UserStorage defines the user persistence the authenticator needs.
type UserStorage interface {
	CreateUser(ctx context.Context, user *core.User) error
	UserByUsername(ctx context.Context, username string) (*core.User, error)
}

type credentials struct {
	Username string `validate:"required,min=3,max=50,printascii"`
	Password string `validate:"required,min=8,max=72"`
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage UserStorage
	metrics *metrics.Metrics
	cost    int
}

// NewPasswordAuthenticator creates an authenticator hashing with bcrypt.DefaultCost.
func NewPasswordAuthenticator(storage UserStorage, m *metrics.Metrics) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
		metrics: m,
		cost:    bcrypt.DefaultCost,
	}
}

// WithCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (a *PasswordAuthenticator) WithCost(cost int) *PasswordAuthenticator {
	a.cost = cost
	return a
}

// Register creates an account. Returns a *core.ValidationError for bad
// input and core.ErrDuplicateUsername when the name is taken.
func (a *PasswordAuthenticator) Register(ctx context.Context, username, password string) (*core.User, error) {
	user, err := a.register(ctx, username, password)
	a.metrics.AuthAttempt("register", err == nil)
	return user, err
}

func (a *PasswordAuthenticator) register(ctx context.Context, username, password string) (*core.User, error) {
	username = strings.TrimSpace(username)
	if err := core.ValidateStruct(credentials{Username: username, Password: password}); err != nil {
		return nil, err
	}
	// The tag above counts characters; bcrypt's limit is in bytes.
	if len(password) > MaxPasswordLength {
		return nil, &core.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be at most %d bytes", MaxPasswordLength),
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &core.User{Username: username, PasswordHash: string(hashed)}
	if err := a.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateUsername) {
			return nil, core.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user for a matching username and password, or
// core.ErrInvalidCredentials without revealing which one was wrong.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, password string) (*core.User, error) {
	user, err := a.authenticate(ctx, username, password)
	a.metrics.AuthAttempt("login", err == nil)
	return user, err
}

func (a *PasswordAuthenticator) authenticate(ctx context.Context, username, password string) (*core.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, core.ErrInvalidCredentials
	}

	user, err := a.storage.UserByUsername(ctx, username)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, core.ErrInvalidCredentials
	}
	return user, nil
}
