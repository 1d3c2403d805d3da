package memory

import (
	"context"
	"testing"

	"github.com/SevaSetu/scheme_portal/internal/app/domain/application"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/scheme"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/user"
	"github.com/SevaSetu/scheme_portal/internal/app/storage"
)

func TestUserDuplicateEmail(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.CreateUser(ctx, user.User{Email: "a@b.c", PasswordHash: "h", Role: user.RoleCitizen})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", created)
	}

	if _, err := store.CreateUser(ctx, user.User{Email: "a@b.c", PasswordHash: "h2", Role: user.RoleCitizen}); err != storage.ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	byEmail, err := store.GetUserByEmail(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, byEmail.ID)
	}

	if _, err := store.GetUser(ctx, "missing"); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSchemeOrdering(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if _, err := store.CreateScheme(ctx, scheme.Scheme{Name: name}); err != nil {
			t.Fatalf("create scheme %s: %v", name, err)
		}
	}

	count, err := store.CountSchemes(ctx)
	if err != nil || count != 3 {
		t.Fatalf("expected count 3, got %d (%v)", count, err)
	}

	list, err := store.ListSchemes(ctx)
	if err != nil {
		t.Fatalf("list schemes: %v", err)
	}
	for i, name := range []string{"first", "second", "third"} {
		if list[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, list[i].Name)
		}
	}
}

func TestApplicationReview(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.CreateApplication(ctx, application.Application{
		UserID:   "u1",
		SchemeID: "s1",
		FormData: "{}",
		// incoming status is ignored; new applications always start pending
		Status: application.StatusApproved,
	})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	if created.Status != application.StatusPending {
		t.Fatalf("expected pending, got %s", created.Status)
	}

	updated, err := store.UpdateReview(ctx, created.ID, application.StatusRejected, "ineligible")
	if err != nil {
		t.Fatalf("update review: %v", err)
	}
	if updated.Status != application.StatusRejected || updated.AdminRemarks != "ineligible" || updated.ReviewedAt.IsZero() {
		t.Fatalf("unexpected review result: %+v", updated)
	}

	if _, err := store.UpdateReview(ctx, "missing", application.StatusApproved, ""); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListApplicationsPreservesOrder(t *testing.T) {
	store := New()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		app, err := store.CreateApplication(ctx, application.Application{UserID: "u1", SchemeID: "s1"})
		if err != nil {
			t.Fatalf("create application: %v", err)
		}
		ids = append(ids, app.ID)
	}

	list, err := store.ListApplications(ctx)
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if len(list) != len(ids) {
		t.Fatalf("expected %d applications, got %d", len(ids), len(list))
	}
	for i, app := range list {
		if app.ID != ids[i] {
			t.Fatalf("position %d: expected %s, got %s", i, ids[i], app.ID)
		}
	}
}
