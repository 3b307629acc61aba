package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/tutoring-scheduler/internal/timezone"
)

// UserRepository captures the persistence interactions for accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context, role UserRole) ([]User, error)
}

// UserService manages tutor and student accounts.
type UserService struct {
	users       UserRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewUserService wires dependencies for account operations.
func NewUserService(users UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:       users,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateUser validates and persists a new account.
func (s *UserService) CreateUser(ctx context.Context, input UserInput) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "user", "create")

	vErr := &ValidationError{}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "email is not valid")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		vErr.add("display_name", "display name is required")
	}
	switch input.Role {
	case RoleTutor, RoleStudent:
	default:
		vErr.add("role", fmt.Sprintf("unknown role %q", input.Role))
	}
	if input.TimeZone == "" {
		vErr.add("time_zone", "timezone is required")
	} else if !timezone.ValidZone(input.TimeZone) {
		vErr.add("time_zone", fmt.Sprintf("unknown IANA zone %q", input.TimeZone))
	}
	if vErr.HasErrors() {
		return User{}, vErr
	}

	createdAt := s.now()
	user := User{
		ID:          s.idGenerator(),
		Email:       email,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Role:        input.Role,
		TimeZone:    input.TimeZone,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	persisted, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	logger.InfoContext(ctx, "user created", "user_id", persisted.ID, "role", string(persisted.Role))
	return persisted, nil
}

// GetUser fetches one account.
func (s *UserService) GetUser(ctx context.Context, id string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	return user, nil
}

// ListTutors returns every tutor account.
func (s *UserService) ListTutors(ctx context.Context) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return nil, fmt.Errorf("user repository not configured")
	}
	tutors, err := s.users.ListUsers(ctx, RoleTutor)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return tutors, nil
}

// TutorExists reports whether the id names a tutor account. Satisfies
// TutorDirectory for the availability and booking services.
func (s *UserService) TutorExists(ctx context.Context, id string) (bool, error) {
	if s == nil || s.users == nil {
		return false, nil
	}
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		mapped := mapRepoError(err)
		if errors.Is(mapped, ErrNotFound) {
			return false, nil
		}
		return false, mapped
	}
	return user.Role == RoleTutor, nil
}
