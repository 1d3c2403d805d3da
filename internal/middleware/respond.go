package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/SevaSetu/scheme_portal/internal/errors"
)

func respondError(w http.ResponseWriter, err *errors.ServiceError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": err.Message})
}
