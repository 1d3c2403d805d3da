// Package runtime wires configuration, persistence and the HTTP server into
// a runnable portal process.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/SevaSetu/scheme_portal/internal/api/httpserver"
	app "github.com/SevaSetu/scheme_portal/internal/app"
	"github.com/SevaSetu/scheme_portal/internal/app/httpapi"
	"github.com/SevaSetu/scheme_portal/internal/app/metrics"
	"github.com/SevaSetu/scheme_portal/internal/app/storage/postgres"
	"github.com/SevaSetu/scheme_portal/internal/config"
	mw "github.com/SevaSetu/scheme_portal/internal/middleware"
	"github.com/SevaSetu/scheme_portal/internal/platform/migrations"
	"github.com/SevaSetu/scheme_portal/pkg/logger"
)

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg        *config.Config
	log        *logger.Logger
	httpServer *httpserver.Server
	app        *app.Application
	db         *sql.DB
}

// NewApplication constructs an application instance from configuration.
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	stores, db, err := buildStores(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}

	portal, err := app.New(stores, app.Options{
		JWTSecret:   cfg.Auth.JWTSecret,
		TokenTTL:    cfg.Auth.TokenTTL,
		BcryptCost:  cfg.Auth.BcryptCost,
		SeedCatalog: true,
	}, log)
	if err != nil {
		return nil, err
	}

	var sink httpapi.AuditSink
	if path := os.Getenv("AUDIT_LOG_PATH"); path != "" {
		fileSink, err := httpapi.NewFileAuditSink(path)
		if err != nil {
			log.WithError(err).Warn("audit file sink disabled")
		} else {
			sink = fileSink
		}
	}
	audit := httpapi.NewAuditLog(0, sink)

	authMW := mw.NewAuthMiddleware(portal.Tokens, log, nil)
	limiter := mw.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
	var handler http.Handler = httpapi.NewHandler(portal, authMW, limiter, audit, log)
	handler = mw.NewCORSMiddleware(cfg.CORS.AllowedOrigins).Handler(handler)
	handler = metrics.InstrumentHandler(handler)

	httpSrv := httpserver.New(cfg.Server, log, handler)

	return &Application{
		cfg:        cfg,
		log:        log,
		httpServer: httpSrv,
		app:        portal,
		db:         db,
	}, nil
}

// App exposes the composed services, mainly for tests.
func (a *Application) App() *app.Application { return a.app }

// Run starts the services and the HTTP server, blocking until the context is
// cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("HTTP server listening on %s", a.httpServer.Addr())
		if err := a.httpServer.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server, the services and the database.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := a.app.Stop(shutdownCtx); err != nil {
		a.log.WithError(err).Warn("error stopping services")
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
	return nil
}

func buildStores(cfg *config.Config) (app.Stores, *sql.DB, error) {
	if cfg.Database.Driver != "postgres" {
		// empty stores default to memory inside app.New
		return app.Stores{}, nil, nil
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return app.Stores{}, nil, err
	}

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrations.Apply(migrateCtx, db); err != nil {
		db.Close()
		return app.Stores{}, nil, err
	}

	store := postgres.New(db)
	return app.Stores{Users: store, Schemes: store, Applications: store}, db, nil
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
