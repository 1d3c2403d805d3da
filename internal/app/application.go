// Package app composes the portal services with their stores and manages
// their lifecycle.
package app

import (
	"context"
	"fmt"
	"time"

	tokens "github.com/SevaSetu/scheme_portal/internal/app/auth"
	appsvc "github.com/SevaSetu/scheme_portal/internal/app/services/applications"
	authsvc "github.com/SevaSetu/scheme_portal/internal/app/services/auth"
	"github.com/SevaSetu/scheme_portal/internal/app/services/schemes"
	"github.com/SevaSetu/scheme_portal/internal/app/storage"
	"github.com/SevaSetu/scheme_portal/internal/app/storage/memory"
	"github.com/SevaSetu/scheme_portal/internal/app/system"
	"github.com/SevaSetu/scheme_portal/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users        storage.UserStore
	Schemes      storage.SchemeStore
	Applications storage.ApplicationStore
}

// Options tunes application construction.
type Options struct {
	JWTSecret   string
	TokenTTL    time.Duration
	BcryptCost  int
	SeedCatalog bool
}

// Application ties the portal services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger
	opts    Options

	Tokens       *tokens.TokenService
	Auth         *authsvc.Service
	Schemes      *schemes.Service
	Applications *appsvc.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Schemes == nil {
		stores.Schemes = mem
	}
	if stores.Applications == nil {
		stores.Applications = mem
	}

	tokenSvc, err := tokens.NewTokenService(opts.JWTSecret, opts.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	var authOpts []authsvc.Option
	if opts.BcryptCost > 0 {
		authOpts = append(authOpts, authsvc.WithBcryptCost(opts.BcryptCost))
	}

	authService := authsvc.New(stores.Users, tokenSvc, log, authOpts...)
	schemeService := schemes.New(stores.Schemes, log)
	applicationService := appsvc.New(stores.Applications, stores.Schemes, log)

	manager := system.NewManager()
	for _, name := range []string{"auth", "schemes", "applications"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	return &Application{
		manager:      manager,
		log:          log,
		opts:         opts,
		Tokens:       tokenSvc,
		Auth:         authService,
		Schemes:      schemeService,
		Applications: applicationService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services and seeds the scheme catalog when
// requested.
func (a *Application) Start(ctx context.Context) error {
	if err := a.manager.Start(ctx); err != nil {
		return err
	}
	if a.opts.SeedCatalog {
		if err := a.Schemes.SeedIfEmpty(ctx, schemes.Defaults); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}
	return nil
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
