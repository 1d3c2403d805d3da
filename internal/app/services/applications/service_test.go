package applications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SevaSetu/scheme_portal/internal/app/domain/application"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/scheme"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/user"
	"github.com/SevaSetu/scheme_portal/internal/app/storage/memory"
	svcerr "github.com/SevaSetu/scheme_portal/internal/errors"
)

func setup(t *testing.T) (*Service, scheme.Scheme) {
	t.Helper()
	store := memory.New()
	sch, err := store.CreateScheme(context.Background(), scheme.Scheme{Name: "Old Age Pension"})
	require.NoError(t, err)
	return New(store, store, nil), sch
}

func TestSubmitStartsPending(t *testing.T) {
	svc, sch := setup(t)
	ctx := context.Background()

	app, err := svc.Submit(ctx, "citizen-1", sch.ID, `{"income":50000}`)
	require.NoError(t, err)
	require.NotEmpty(t, app.ID)
	require.Equal(t, application.StatusPending, app.Status)

	status, err := svc.Status(ctx, app.ID, "citizen-1", user.RoleCitizen)
	require.NoError(t, err)
	require.Equal(t, application.StatusPending, status)
}

func TestSubmitRejectsUnknownScheme(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Submit(context.Background(), "citizen-1", "no-such-scheme", "{}")
	var se *svcerr.ServiceError
	require.ErrorAs(t, err, &se)
	require.Equal(t, svcerr.CodeValidation, se.Code)
}

func TestStatusRestrictedToOwnerOrAdmin(t *testing.T) {
	svc, sch := setup(t)
	ctx := context.Background()

	app, err := svc.Submit(ctx, "citizen-1", sch.ID, "{}")
	require.NoError(t, err)

	_, err = svc.Status(ctx, app.ID, "citizen-2", user.RoleCitizen)
	var se *svcerr.ServiceError
	require.ErrorAs(t, err, &se)
	require.Equal(t, svcerr.CodeForbidden, se.Code)

	status, err := svc.Status(ctx, app.ID, "someone-else", user.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, application.StatusPending, status)
}

func TestReviewTransitionsAndPersistsRemarks(t *testing.T) {
	svc, sch := setup(t)
	ctx := context.Background()

	app, err := svc.Submit(ctx, "citizen-1", sch.ID, "{}")
	require.NoError(t, err)

	updated, err := svc.Review(ctx, app.ID, application.StatusApproved, "ok")
	require.NoError(t, err)
	require.Equal(t, application.StatusApproved, updated.Status)
	require.Equal(t, "ok", updated.AdminRemarks)
	require.False(t, updated.ReviewedAt.IsZero())

	status, err := svc.Status(ctx, app.ID, "citizen-1", user.RoleCitizen)
	require.NoError(t, err)
	require.Equal(t, application.StatusApproved, status)
}

func TestReviewRejectsSecondDecision(t *testing.T) {
	svc, sch := setup(t)
	ctx := context.Background()

	app, err := svc.Submit(ctx, "citizen-1", sch.ID, "{}")
	require.NoError(t, err)

	_, err = svc.Review(ctx, app.ID, application.StatusRejected, "ineligible")
	require.NoError(t, err)

	_, err = svc.Review(ctx, app.ID, application.StatusApproved, "changed my mind")
	var se *svcerr.ServiceError
	require.ErrorAs(t, err, &se)
	require.Equal(t, svcerr.CodeConflict, se.Code)

	// the first decision stands
	status, err := svc.Status(ctx, app.ID, "citizen-1", user.RoleCitizen)
	require.NoError(t, err)
	require.Equal(t, application.StatusRejected, status)
}

func TestReviewValidatesDecision(t *testing.T) {
	svc, sch := setup(t)
	ctx := context.Background()

	app, err := svc.Submit(ctx, "citizen-1", sch.ID, "{}")
	require.NoError(t, err)

	_, err = svc.Review(ctx, app.ID, application.StatusPending, "")
	var se *svcerr.ServiceError
	require.ErrorAs(t, err, &se)
	require.Equal(t, svcerr.CodeValidation, se.Code)
}

func TestReviewUnknownApplication(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Review(context.Background(), "missing", application.StatusApproved, "")
	var se *svcerr.ServiceError
	require.ErrorAs(t, err, &se)
	require.Equal(t, svcerr.CodeNotFound, se.Code)
}

func TestListAllResolvesSchemes(t *testing.T) {
	svc, sch := setup(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "citizen-1", sch.ID, "{}")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "citizen-2", sch.ID, "{}")
	require.NoError(t, err)

	listings, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	for _, listing := range listings {
		require.Equal(t, sch.ID, listing.Scheme.ID)
		require.Equal(t, "Old Age Pension", listing.Scheme.Name)
	}
}
