// Package httpapi exposes the portal REST API.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	app "github.com/SevaSetu/scheme_portal/internal/app"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/application"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/user"
	"github.com/SevaSetu/scheme_portal/internal/app/metrics"
	"github.com/SevaSetu/scheme_portal/internal/errors"
	mw "github.com/SevaSetu/scheme_portal/internal/middleware"
	"github.com/SevaSetu/scheme_portal/pkg/logger"
)

// handler bundles HTTP endpoints for the portal services.
type handler struct {
	app   *app.Application
	audit *AuditLog
	log   *logger.Logger
}

// NewHandler returns a router exposing the portal REST API. Routes under
// /api require a bearer token except register and login; routes under
// /api/admin additionally require the admin role. The limiter, when set,
// throttles register and login by remote address and runs after the auth
// middleware on protected routes so it can key by user id.
func NewHandler(application *app.Application, authMW *mw.AuthMiddleware, limiter *mw.RateLimiter, audit *AuditLog, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	if audit == nil {
		audit = NewAuditLog(0, nil)
	}
	h := &handler{app: application, audit: audit, log: log}

	throttle := func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return limiter.Handler(next)
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.Handle("/api/register", throttle(http.HandlerFunc(h.register))).Methods(http.MethodPost)
	r.Handle("/api/login", throttle(http.HandlerFunc(h.login))).Methods(http.MethodPost)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(authMW.Handler)
	if limiter != nil {
		protected.Use(limiter.Handler)
	}
	protected.HandleFunc("/schemes", h.listSchemes).Methods(http.MethodGet)
	protected.HandleFunc("/schemes/{id}", h.getScheme).Methods(http.MethodGet)
	protected.HandleFunc("/apply", h.apply).Methods(http.MethodPost)
	protected.HandleFunc("/application/{id}/status", h.applicationStatus).Methods(http.MethodGet)

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(mw.RequireAdmin)
	admin.HandleFunc("/applications", h.listApplications).Methods(http.MethodGet)
	admin.HandleFunc("/application/{id}/review", h.reviewApplication).Methods(http.MethodPut)
	admin.HandleFunc("/audit", h.listAudit).Methods(http.MethodGet)

	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "scheme-portal"})
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, errors.Validation("invalid request body"))
		return
	}

	created, err := h.app.Auth.Register(r.Context(), payload.Email, payload.Password, user.Role(payload.Role))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "registration successful",
		"userId":  created.ID,
	})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, errors.Validation("invalid request body"))
		return
	}

	result, err := h.app.Auth.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) listSchemes(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Schemes.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getScheme(w http.ResponseWriter, r *http.Request) {
	sch, err := h.app.Schemes.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sch)
}

func (h *handler) apply(w http.ResponseWriter, r *http.Request) {
	identity, ok := mw.IdentityFromContext(r.Context())
	if !ok {
		h.writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	var payload struct {
		SchemeID string `json:"schemeId"`
		FormData string `json:"formData"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, errors.Validation("invalid request body"))
		return
	}

	created, err := h.app.Applications.Submit(r.Context(), identity.UserID, payload.SchemeID, payload.FormData)
	if err != nil {
		h.writeError(w, err)
		return
	}
	metrics.ObserveSubmission()
	writeJSON(w, http.StatusOK, map[string]string{"applicationId": created.ID})
}

func (h *handler) applicationStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := mw.IdentityFromContext(r.Context())
	if !ok {
		h.writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id := mux.Vars(r)["id"]
	status, err := h.app.Applications.Status(r.Context(), id, identity.UserID, identity.Role)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

func (h *handler) listApplications(w http.ResponseWriter, r *http.Request) {
	listings, err := h.app.Applications.ListAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *handler) reviewApplication(w http.ResponseWriter, r *http.Request) {
	identity, _ := mw.IdentityFromContext(r.Context())

	var payload struct {
		Decision string `json:"decision"`
		Remarks  string `json:"remarks"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, errors.Validation("invalid request body"))
		return
	}

	id := mux.Vars(r)["id"]
	decision := application.Status(strings.ToLower(strings.TrimSpace(payload.Decision)))
	updated, err := h.app.Applications.Review(r.Context(), id, decision, payload.Remarks)
	if err != nil {
		h.writeError(w, err)
		return
	}

	metrics.ObserveReview(string(updated.Status))
	h.audit.add(AuditEntry{
		Admin:         identity.Email,
		ApplicationID: updated.ID,
		Decision:      string(updated.Status),
		Remarks:       updated.AdminRemarks,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "application " + string(updated.Status)})
}

func (h *handler) listAudit(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		// invalid limits fall back to the default window
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	writeJSON(w, http.StatusOK, h.audit.listLimit(limit))
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	svcErr := errors.AsServiceError(err)
	if svcErr.HTTPStatus >= http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(svcErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": svcErr.Message})
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
