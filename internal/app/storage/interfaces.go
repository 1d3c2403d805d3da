// Package storage defines the persistence interfaces the services depend on.
package storage

import (
	"context"
	"errors"

	"github.com/SevaSetu/scheme_portal/internal/app/domain/application"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/scheme"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/user"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when creating a user whose email is
	// already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserStore persists identity records. Users are immutable after creation.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
}

// SchemeStore persists the scheme catalog.
type SchemeStore interface {
	CreateScheme(ctx context.Context, s scheme.Scheme) (scheme.Scheme, error)
	GetScheme(ctx context.Context, id string) (scheme.Scheme, error)
	ListSchemes(ctx context.Context) ([]scheme.Scheme, error)
	CountSchemes(ctx context.Context) (int, error)
}

// ApplicationStore persists citizen applications.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, app application.Application) (application.Application, error)
	GetApplication(ctx context.Context, id string) (application.Application, error)
	ListApplications(ctx context.Context) ([]application.Application, error)
	// UpdateReview writes status, remarks and review time in a single
	// statement. Returns ErrNotFound when the id does not resolve.
	UpdateReview(ctx context.Context, id string, status application.Status, remarks string) (application.Application, error)
}
