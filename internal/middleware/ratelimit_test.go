package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SevaSetu/scheme_portal/internal/app/auth"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/user"
)

func TestRateLimiterKeysByUserID(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	handler := rl.Handler(okHandler())

	// same remote address throughout; only the identity differs
	send := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/schemes", nil)
		if userID != "" {
			req = req.WithContext(WithIdentity(req.Context(), auth.Identity{UserID: userID, Role: user.RoleCitizen}))
		}
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		return resp.Code
	}

	if code := send("alice"); code != http.StatusOK {
		t.Fatalf("alice first request: expected 200, got %d", code)
	}
	if code := send("bob"); code != http.StatusOK {
		t.Fatalf("bob must not share alice's bucket: expected 200, got %d", code)
	}
	if code := send("alice"); code != http.StatusTooManyRequests {
		t.Fatalf("alice second request: expected 429, got %d", code)
	}
}

func TestRateLimiterKeysAnonymousByAddress(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	handler := rl.Handler(okHandler())

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/login", nil)
		req.RemoteAddr = addr
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		return resp.Code
	}

	if code := send("10.0.0.1:1000"); code != http.StatusOK {
		t.Fatalf("first address: expected 200, got %d", code)
	}
	if code := send("10.0.0.2:1000"); code != http.StatusOK {
		t.Fatalf("second address has its own bucket: expected 200, got %d", code)
	}
	if code := send("10.0.0.1:1000"); code != http.StatusTooManyRequests {
		t.Fatalf("first address again: expected 429, got %d", code)
	}
}
