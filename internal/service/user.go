// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/roster/roster/internal/metrics"
	"github.com/roster/roster/internal/model"
	"github.com/roster/roster/internal/repository"
)

// Service errors.
var (
	ErrNameRequired  = errors.New("name is required")
	ErrEmailRequired = errors.New("email is required")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrNameTooLong   = errors.New("name too long")
	ErrEmailTooLong  = errors.New("email too long")
	ErrUserNotFound  = errors.New("user not found")
)

const (
	maxNameLength  = 200
	maxEmailLength = 320
)

// Loose shape check only; deliverability is not this service's problem.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserStore is the persistence surface the service needs.
// *repository.Repository satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, input model.NewUser) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// UserService handles user business logic.
type UserService struct {
	store   UserStore
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   store,
		metrics: recorder,
	}
}

// CreateUser validates the payload and stores a new user.
// The returned record carries the store-assigned id and created_at.
func (s *UserService) CreateUser(ctx context.Context, input model.NewUser) (*model.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	if err := validateNewUser(input); err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncUserCreated()
	return user, nil
}

// GetUser returns the user with the given id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUsers returns all stored users.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// DeleteUser removes the user with the given id.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	err := s.store.DeleteUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.metrics.IncUserDeleted()
	return nil
}

func validateNewUser(input model.NewUser) error {
	if input.Name == "" {
		return ErrNameRequired
	}
	if len(input.Name) > maxNameLength {
		return ErrNameTooLong
	}
	if input.Email == "" {
		return ErrEmailRequired
	}
	if len(input.Email) > maxEmailLength {
		return ErrEmailTooLong
	}
	if !emailRegex.MatchString(input.Email) {
		return ErrInvalidEmail
	}
	return nil
}
