// Package auth implements registration and login on top of the user store
// and the token service.
package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	tokens "github.com/SevaSetu/scheme_portal/internal/app/auth"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/user"
	"github.com/SevaSetu/scheme_portal/internal/app/storage"
	svcerr "github.com/SevaSetu/scheme_portal/internal/errors"
	"github.com/SevaSetu/scheme_portal/pkg/logger"
)

// DefaultBcryptCost is used when no cost is configured.
const DefaultBcryptCost = 10

// LoginResult is returned on successful login.
type LoginResult struct {
	Token string    `json:"token"`
	Role  user.Role `json:"role"`
	Email string    `json:"email"`
}

// Service orchestrates credential storage and token issuance.
type Service struct {
	users      storage.UserStore
	tokens     *tokens.TokenService
	bcryptCost int
	log        *logger.Logger
}

// Option configures the service.
type Option func(*Service)

// WithBcryptCost overrides the password hashing work factor.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// New constructs an auth service.
func New(users storage.UserStore, tokenSvc *tokens.TokenService, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	s := &Service{users: users, tokens: tokenSvc, bcryptCost: DefaultBcryptCost, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new identity. The role defaults to citizen when empty.
// The plaintext password is hashed immediately and never stored or logged.
func (s *Service) Register(ctx context.Context, email, password string, role user.Role) (user.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return user.User{}, svcerr.Validation("email and password are required")
	}
	if role == "" {
		role = user.RoleCitizen
	}
	if !role.Valid() {
		return user.User{}, svcerr.Validation("unknown role").WithDetails("role", string(role))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return user.User{}, svcerr.Internal(err)
	}

	created, err := s.users.CreateUser(ctx, user.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return user.User{}, svcerr.Conflict("email already registered")
		}
		return user.User{}, svcerr.Internal(err)
	}

	s.log.WithField("user_id", created.ID).
		WithField("role", string(created.Role)).
		Info("user registered")
	return created, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password fail identically so callers cannot enumerate identities.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, svcerr.Validation("email and password are required")
	}

	invalid := svcerr.Unauthorized("invalid email or password")

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return LoginResult{}, invalid
		}
		return LoginResult{}, svcerr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, invalid
	}

	token, err := s.tokens.Issue(tokens.Identity{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return LoginResult{}, svcerr.Internal(err)
	}

	s.log.WithField("user_id", u.ID).Info("user logged in")
	return LoginResult{Token: token, Role: u.Role, Email: u.Email}, nil
}
