package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	app "github.com/SevaSetu/scheme_portal/internal/app"
	mw "github.com/SevaSetu/scheme_portal/internal/middleware"
)

func newTestApplication(t *testing.T) *app.Application {
	t.Helper()
	application, err := app.New(app.Stores{}, app.Options{
		JWTSecret:   "handler-test-secret",
		TokenTTL:    time.Hour,
		BcryptCost:  4,
		SeedCatalog: true,
	}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	if err := application.Start(context.Background()); err != nil {
		t.Fatalf("start application: %v", err)
	}
	t.Cleanup(func() { _ = application.Stop(context.Background()) })
	return application
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	application := newTestApplication(t)
	authMW := mw.NewAuthMiddleware(application.Tokens, nil, nil)
	return NewHandler(application, authMW, nil, nil, nil)
}

func doJSON(t *testing.T, handler http.Handler, method, url, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), dst); err != nil {
		t.Fatalf("unmarshal response %q: %v", resp.Body.String(), err)
	}
}

func registerAndLogin(t *testing.T, handler http.Handler, email, password, role string) string {
	t.Helper()
	payload := map[string]string{"email": email, "password": password}
	if role != "" {
		payload["role"] = role
	}
	resp := doJSON(t, handler, http.MethodPost, "/api/register", "", payload)
	if resp.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d (%s)", email, resp.Code, resp.Body.String())
	}

	resp = doJSON(t, handler, http.MethodPost, "/api/login", "", map[string]string{
		"email": email, "password": password,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", email, resp.Code)
	}
	var login struct {
		Token string `json:"token"`
		Role  string `json:"role"`
		Email string `json:"email"`
	}
	decode(t, resp, &login)
	if login.Token == "" {
		t.Fatalf("login %s: empty token", email)
	}
	return login.Token
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(t)
	resp := doJSON(t, handler, http.MethodGet, "/healthz", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	handler := newTestHandler(t)

	resp := doJSON(t, handler, http.MethodPost, "/api/register", "", map[string]string{"email": "a@b.c"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %d", resp.Code)
	}

	resp = doJSON(t, handler, http.MethodPost, "/api/register", "", map[string]string{
		"email": "a@b.c", "password": "pw",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	resp = doJSON(t, handler, http.MethodPost, "/api/register", "", map[string]string{
		"email": "a@b.c", "password": "other",
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", resp.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler := newTestHandler(t)
	registerAndLogin(t, handler, "alice@example.com", "pw123", "")

	wrongPassword := doJSON(t, handler, http.MethodPost, "/api/login", "", map[string]string{
		"email": "alice@example.com", "password": "nope",
	})
	unknownEmail := doJSON(t, handler, http.MethodPost, "/api/login", "", map[string]string{
		"email": "ghost@example.com", "password": "pw123",
	})

	if wrongPassword.Code != http.StatusUnauthorized || unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPassword.Code, unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Fatalf("login failure bodies differ: %s vs %s", wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

func TestSchemesRequireAuth(t *testing.T) {
	handler := newTestHandler(t)

	resp := doJSON(t, handler, http.MethodGet, "/api/schemes", "", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	token := registerAndLogin(t, handler, "alice@example.com", "pw123", "")
	resp = doJSON(t, handler, http.MethodGet, "/api/schemes", token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var schemes []map[string]any
	decode(t, resp, &schemes)
	if len(schemes) == 0 {
		t.Fatal("expected seeded schemes")
	}

	id, _ := schemes[0]["id"].(string)
	resp = doJSON(t, handler, http.MethodGet, "/api/schemes/"+id, token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for scheme by id, got %d", resp.Code)
	}

	resp = doJSON(t, handler, http.MethodGet, "/api/schemes/missing", token, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown scheme, got %d", resp.Code)
	}
}

func TestAdminRoutesRejectCitizens(t *testing.T) {
	handler := newTestHandler(t)
	citizen := registerAndLogin(t, handler, "alice@example.com", "pw123", "")

	resp := doJSON(t, handler, http.MethodGet, "/api/admin/applications", citizen, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for citizen, got %d", resp.Code)
	}

	admin := registerAndLogin(t, handler, "admin@example.com", "secret", "admin")
	resp = doJSON(t, handler, http.MethodGet, "/api/admin/applications", admin, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.Code)
	}
}

func TestApplyAndReviewScenario(t *testing.T) {
	handler := newTestHandler(t)

	alice := registerAndLogin(t, handler, "alice@example.com", "pw123", "")

	// pick a scheme from the seeded catalog
	resp := doJSON(t, handler, http.MethodGet, "/api/schemes", alice, nil)
	var schemes []struct {
		ID string `json:"id"`
	}
	decode(t, resp, &schemes)
	if len(schemes) == 0 {
		t.Fatal("expected seeded schemes")
	}

	resp = doJSON(t, handler, http.MethodPost, "/api/apply", alice, map[string]string{
		"schemeId": schemes[0].ID,
		"formData": `{"income":50000}`,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("apply: expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	var applied struct {
		ApplicationID string `json:"applicationId"`
	}
	decode(t, resp, &applied)

	// owner sees pending
	resp = doJSON(t, handler, http.MethodGet, "/api/application/"+applied.ApplicationID+"/status", alice, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d", resp.Code)
	}
	var status struct {
		Status string `json:"status"`
	}
	decode(t, resp, &status)
	if status.Status != "pending" {
		t.Fatalf("expected pending, got %s", status.Status)
	}

	// another citizen cannot read it
	bob := registerAndLogin(t, handler, "bob@example.com", "pw456", "")
	resp = doJSON(t, handler, http.MethodGet, "/api/application/"+applied.ApplicationID+"/status", bob, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", resp.Code)
	}

	// admin reviews it as rejected
	admin := registerAndLogin(t, handler, "admin@example.com", "secret", "admin")
	resp = doJSON(t, handler, http.MethodPut, "/api/admin/application/"+applied.ApplicationID+"/review", admin, map[string]string{
		"decision": "rejected",
		"remarks":  "ineligible",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("review: expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}

	// owner now sees rejected
	resp = doJSON(t, handler, http.MethodGet, "/api/application/"+applied.ApplicationID+"/status", alice, nil)
	decode(t, resp, &status)
	if status.Status != "rejected" {
		t.Fatalf("expected rejected, got %s", status.Status)
	}

	// admin listing resolves the scheme
	resp = doJSON(t, handler, http.MethodGet, "/api/admin/applications", admin, nil)
	var listings []struct {
		Application struct {
			ID           string `json:"id"`
			AdminRemarks string `json:"admin_remarks"`
		} `json:"application"`
		Scheme struct {
			Name string `json:"name"`
		} `json:"scheme"`
	}
	decode(t, resp, &listings)
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if listings[0].Application.AdminRemarks != "ineligible" || listings[0].Scheme.Name == "" {
		t.Fatalf("unexpected listing: %+v", listings[0])
	}

	// second review is refused
	resp = doJSON(t, handler, http.MethodPut, "/api/admin/application/"+applied.ApplicationID+"/review", admin, map[string]string{
		"decision": "approved",
		"remarks":  "reconsidered",
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for re-review, got %d", resp.Code)
	}

	// the decision is in the audit trail
	resp = doJSON(t, handler, http.MethodGet, "/api/admin/audit", admin, nil)
	var entries []struct {
		ApplicationID string `json:"application_id"`
		Decision      string `json:"decision"`
	}
	decode(t, resp, &entries)
	if len(entries) != 1 || entries[0].Decision != "rejected" {
		t.Fatalf("unexpected audit entries: %+v", entries)
	}
}

func TestRateLimiterBucketsPerAuthenticatedUser(t *testing.T) {
	application := newTestApplication(t)
	authMW := mw.NewAuthMiddleware(application.Tokens, nil, nil)

	// separate unthrottled router over the same stores for account setup
	setup := NewHandler(application, authMW, nil, nil, nil)
	alice := registerAndLogin(t, setup, "alice@example.com", "pw123", "")
	bob := registerAndLogin(t, setup, "bob@example.com", "pw456", "")

	limited := NewHandler(application, authMW, mw.NewRateLimiter(1, 1, nil), nil, nil)

	// all requests share the default httptest remote address, so distinct
	// outcomes prove the limiter keys by user id, not by address
	if resp := doJSON(t, limited, http.MethodGet, "/api/schemes", alice, nil); resp.Code != http.StatusOK {
		t.Fatalf("alice first request: expected 200, got %d", resp.Code)
	}
	if resp := doJSON(t, limited, http.MethodGet, "/api/schemes", bob, nil); resp.Code != http.StatusOK {
		t.Fatalf("bob must not share alice's bucket: expected 200, got %d", resp.Code)
	}
	if resp := doJSON(t, limited, http.MethodGet, "/api/schemes", alice, nil); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("alice second request: expected 429, got %d", resp.Code)
	}
}

func TestApplyUnknownScheme(t *testing.T) {
	handler := newTestHandler(t)
	alice := registerAndLogin(t, handler, "alice@example.com", "pw123", "")

	resp := doJSON(t, handler, http.MethodPost, "/api/apply", alice, map[string]string{
		"schemeId": "no-such-scheme",
		"formData": "{}",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown scheme, got %d", resp.Code)
	}
}

func TestStatusUnknownApplication(t *testing.T) {
	handler := newTestHandler(t)
	alice := registerAndLogin(t, handler, "alice@example.com", "pw123", "")

	resp := doJSON(t, handler, http.MethodGet, "/api/application/missing/status", alice, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
