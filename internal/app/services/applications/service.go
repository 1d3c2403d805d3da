// Package applications implements the citizen application workflow: submit,
// status lookup, admin listing and review.
package applications

import (
	"context"
	"errors"
	"strings"

	"github.com/SevaSetu/scheme_portal/internal/app/domain/application"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/scheme"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/user"
	"github.com/SevaSetu/scheme_portal/internal/app/storage"
	svcerr "github.com/SevaSetu/scheme_portal/internal/errors"
	"github.com/SevaSetu/scheme_portal/pkg/logger"
)

// Listing pairs an application with its resolved scheme for admin views.
type Listing struct {
	Application application.Application `json:"application"`
	Scheme      scheme.Scheme           `json:"scheme"`
}

// Service manages the application lifecycle.
type Service struct {
	store   storage.ApplicationStore
	schemes storage.SchemeStore
	log     *logger.Logger
}

// New constructs an application workflow service.
func New(store storage.ApplicationStore, schemes storage.SchemeStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("applications")
	}
	return &Service{store: store, schemes: schemes, log: log}
}

// Submit creates a pending application for userID against schemeID. The
// scheme must exist; form data is stored opaquely.
func (s *Service) Submit(ctx context.Context, userID, schemeID, formData string) (application.Application, error) {
	if strings.TrimSpace(schemeID) == "" {
		return application.Application{}, svcerr.Validation("scheme_id is required")
	}

	if _, err := s.schemes.GetScheme(ctx, schemeID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return application.Application{}, svcerr.Validation("unknown scheme").WithDetails("scheme_id", schemeID)
		}
		return application.Application{}, svcerr.Internal(err)
	}

	created, err := s.store.CreateApplication(ctx, application.Application{
		UserID:   userID,
		SchemeID: schemeID,
		FormData: formData,
	})
	if err != nil {
		return application.Application{}, svcerr.Internal(err)
	}

	s.log.WithField("application_id", created.ID).
		WithField("scheme_id", schemeID).
		WithField("user_id", userID).
		Info("application submitted")
	return created, nil
}

// Status returns the application status to its owner or an admin.
func (s *Service) Status(ctx context.Context, id, requesterID string, requesterRole user.Role) (application.Status, error) {
	app, err := s.store.GetApplication(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", svcerr.NotFound("application not found")
		}
		return "", svcerr.Internal(err)
	}

	if app.UserID != requesterID && requesterRole != user.RoleAdmin {
		return "", svcerr.Forbidden("access to this application is restricted")
	}
	return app.Status, nil
}

// ListAll returns every application with its scheme resolved. Intended for
// admin-gated callers only; the HTTP layer enforces the role.
func (s *Service) ListAll(ctx context.Context) ([]Listing, error) {
	apps, err := s.store.ListApplications(ctx)
	if err != nil {
		return nil, svcerr.Internal(err)
	}

	listings := make([]Listing, 0, len(apps))
	for _, app := range apps {
		sch, err := s.schemes.GetScheme(ctx, app.SchemeID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, svcerr.Internal(err)
		}
		listings = append(listings, Listing{Application: app, Scheme: sch})
	}
	return listings, nil
}

// Review decides a pending application. Decisions on an already-decided
// application are rejected; approved and rejected are terminal states.
func (s *Service) Review(ctx context.Context, id string, decision application.Status, remarks string) (application.Application, error) {
	if !application.ValidDecision(decision) {
		return application.Application{}, svcerr.Validation("decision must be approved or rejected").WithDetails("decision", string(decision))
	}

	app, err := s.store.GetApplication(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return application.Application{}, svcerr.NotFound("application not found")
		}
		return application.Application{}, svcerr.Internal(err)
	}
	if app.Status.Terminal() {
		return application.Application{}, svcerr.Conflict("application already reviewed").
			WithDetails("status", string(app.Status))
	}

	updated, err := s.store.UpdateReview(ctx, id, decision, remarks)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return application.Application{}, svcerr.NotFound("application not found")
		}
		return application.Application{}, svcerr.Internal(err)
	}

	s.log.WithField("application_id", id).
		WithField("decision", string(decision)).
		Info("application reviewed")
	return updated, nil
}
