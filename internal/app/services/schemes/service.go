// Package schemes exposes the read-only welfare scheme catalog.
package schemes

import (
	"context"

	"github.com/SevaSetu/scheme_portal/internal/app/domain/scheme"
	"github.com/SevaSetu/scheme_portal/internal/app/storage"
	svcerr "github.com/SevaSetu/scheme_portal/internal/errors"
	"github.com/SevaSetu/scheme_portal/pkg/logger"
)

// Defaults is the catalog seeded into an empty store at startup.
var Defaults = []scheme.Scheme{
	{
		Name:        "Old Age Pension",
		Description: "Monthly pension for senior citizens without regular income.",
		Eligibility: "Age 60 or above, annual household income below 1,00,000.",
	},
	{
		Name:        "Student Scholarship",
		Description: "Merit scholarship covering tuition for higher education.",
		Eligibility: "Enrolled student, family income below 2,50,000.",
	},
	{
		Name:        "Housing Assistance",
		Description: "One-time grant for construction or repair of a dwelling.",
		Eligibility: "No pucca house registered to the applicant household.",
	},
}

// Service serves the scheme catalog.
type Service struct {
	store storage.SchemeStore
	log   *logger.Logger
}

// New constructs a scheme catalog service.
func New(store storage.SchemeStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("schemes")
	}
	return &Service{store: store, log: log}
}

// List returns all schemes in storage order.
func (s *Service) List(ctx context.Context) ([]scheme.Scheme, error) {
	list, err := s.store.ListSchemes(ctx)
	if err != nil {
		return nil, svcerr.Internal(err)
	}
	return list, nil
}

// Get returns a single scheme by id.
func (s *Service) Get(ctx context.Context, id string) (scheme.Scheme, error) {
	sch, err := s.store.GetScheme(ctx, id)
	if err != nil {
		if err == storage.ErrNotFound {
			return scheme.Scheme{}, svcerr.NotFound("scheme not found")
		}
		return scheme.Scheme{}, svcerr.Internal(err)
	}
	return sch, nil
}

// SeedIfEmpty inserts the provided defaults when the catalog has no entries.
// It is a no-op otherwise, so repeated startups do not duplicate schemes.
func (s *Service) SeedIfEmpty(ctx context.Context, defaults []scheme.Scheme) error {
	count, err := s.store.CountSchemes(ctx)
	if err != nil {
		return svcerr.Internal(err)
	}
	if count > 0 {
		return nil
	}

	for _, sch := range defaults {
		if _, err := s.store.CreateScheme(ctx, sch); err != nil {
			return svcerr.Internal(err)
		}
	}
	s.log.WithField("count", len(defaults)).Info("scheme catalog seeded")
	return nil
}
