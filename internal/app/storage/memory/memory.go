// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SevaSetu/scheme_portal/internal/app/domain/application"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/scheme"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/user"
	"github.com/SevaSetu/scheme_portal/internal/app/storage"
)

// Store holds all records behind a single lock.
type Store struct {
	mu           sync.RWMutex
	users        map[string]user.User
	usersByEmail map[string]string
	schemes      []scheme.Scheme
	applications map[string]application.Application
	appOrder     []string
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.SchemeStore = (*Store)(nil)
var _ storage.ApplicationStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:        make(map[string]user.User),
		usersByEmail: make(map[string]string),
		applications: make(map[string]application.Application),
	}
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[u.Email]; exists {
		return user.User{}, storage.ErrDuplicateEmail
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	s.users[u.ID] = u
	s.usersByEmail[u.Email] = u.ID
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

// SchemeStore implementation --------------------------------------------------

func (s *Store) CreateScheme(_ context.Context, sch scheme.Scheme) (scheme.Scheme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sch.ID == "" {
		sch.ID = uuid.NewString()
	}
	sch.CreatedAt = time.Now().UTC()
	s.schemes = append(s.schemes, sch)
	return sch, nil
}

func (s *Store) GetScheme(_ context.Context, id string) (scheme.Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sch := range s.schemes {
		if sch.ID == id {
			return sch, nil
		}
	}
	return scheme.Scheme{}, storage.ErrNotFound
}

func (s *Store) ListSchemes(_ context.Context) ([]scheme.Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]scheme.Scheme, len(s.schemes))
	copy(out, s.schemes)
	return out, nil
}

func (s *Store) CountSchemes(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.schemes), nil
}

// ApplicationStore implementation ---------------------------------------------

func (s *Store) CreateApplication(_ context.Context, app application.Application) (application.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	app.Status = application.StatusPending
	app.CreatedAt = time.Now().UTC()

	s.applications[app.ID] = app
	s.appOrder = append(s.appOrder, app.ID)
	return app, nil
}

func (s *Store) GetApplication(_ context.Context, id string) (application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.applications[id]
	if !ok {
		return application.Application{}, storage.ErrNotFound
	}
	return app, nil
}

func (s *Store) ListApplications(_ context.Context) ([]application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]application.Application, 0, len(s.appOrder))
	for _, id := range s.appOrder {
		out = append(out, s.applications[id])
	}
	return out, nil
}

func (s *Store) UpdateReview(_ context.Context, id string, status application.Status, remarks string) (application.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.applications[id]
	if !ok {
		return application.Application{}, storage.ErrNotFound
	}
	app.Status = status
	app.AdminRemarks = remarks
	app.ReviewedAt = time.Now().UTC()
	s.applications[id] = app
	return app, nil
}
