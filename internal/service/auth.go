package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/eventhub/eventhub/internal/activity"
	"github.com/eventhub/eventhub/internal/auth"
	"github.com/eventhub/eventhub/internal/metrics"
	"github.com/eventhub/eventhub/internal/model"
	"github.com/eventhub/eventhub/internal/store"
)

// AuthService handles sign-up, login and user lookups.
type AuthService struct {
	store    *store.Store
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenManager
	metrics  metrics.Recorder
	activity activity.Publisher
	logger   *slog.Logger

	// registerMu serializes the email check with the insert.
	registerMu sync.Mutex
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	st *store.Store,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenManager,
	recorder metrics.Recorder,
	publisher activity.Publisher,
	logger *slog.Logger,
) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if publisher == nil {
		publisher = activity.NewNoop()
	}
	return &AuthService{
		store:    st,
		hasher:   hasher,
		tokens:   tokens,
		metrics:  recorder,
		activity: publisher,
		logger:   logger.With("component", "service.auth"),
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role // defaults to attendee
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  model.PublicUser `json:"user"`
	Token string           `json:"token"`
}

// Register creates an account and signs the user in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := NormalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}

	role := input.Role
	if role == "" {
		role = model.RoleAttendee
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	// Hash outside the lock; it is the slow part.
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.registerMu.Lock()
	if _, err := s.store.FindUserByEmail(email); err == nil {
		s.registerMu.Unlock()
		return nil, ErrEmailExists
	}
	user := s.store.AddUser(model.NewUser{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     role,
	})
	s.registerMu.Unlock()

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncUserRegistered()
	s.activity.PublishAsync(activity.NewMessage(activity.KindUserRegistered, user.ID, 0))
	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID,
		"role", user.Role,
	)

	return &AuthResult{User: user.Public(), Token: token}, nil
}

// Login checks credentials and issues a token. Unknown emails and wrong
// passwords return the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.FindUserByEmail(NormalizeEmail(email))
	if err != nil {
		s.hasher.VerifyDummy(password)
		s.metrics.IncLogin(metrics.LoginFailed)
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.Password)
	if err != nil {
		s.logger.ErrorContext(ctx, "stored password hash unreadable",
			"user_id", user.ID,
			"error", err,
		)
		s.metrics.IncLogin(metrics.LoginFailed)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		s.metrics.IncLogin(metrics.LoginFailed)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncLogin(metrics.LoginSuccess)
	return &AuthResult{User: user.Public(), Token: token}, nil
}

// Profile returns the public record of a user.
func (s *AuthService) Profile(_ context.Context, userID int64) (model.PublicUser, error) {
	user, err := s.store.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return model.PublicUser{}, ErrUserNotFound
		}
		return model.PublicUser{}, fmt.Errorf("find user: %w", err)
	}
	return user.Public(), nil
}

// Users lists every user without credentials.
func (s *AuthService) Users(_ context.Context) []model.PublicUser {
	return s.store.AllUsers()
}

// NormalizeEmail trims and lowercases an email so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
