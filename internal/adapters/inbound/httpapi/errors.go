package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/sufield/todoapi/internal/domain"
)

// codeMalformed is the error code for bodies that are not JSON.
const codeMalformed = "malformed_request"

type errorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotDeleted:
		return http.StatusConflict
	case domain.KindUndoTimeout:
		return http.StatusGone
	case domain.KindUnauthenticated, domain.KindSessionExpired:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

var details = map[domain.Kind]string{
	domain.KindNotFound:        "Not found",
	domain.KindForbidden:       "You don't have access to this list",
	domain.KindNotDeleted:      "Item was not deleted",
	domain.KindUndoTimeout:     "Undo timeout expired - item cannot be restored",
	domain.KindUnauthenticated: "Not authenticated",
	domain.KindSessionExpired:  "Session expired",
	domain.KindInternal:        "Internal server error",
}

// writeError renders err as {"detail", "code"}. Internal errors are logged
// and never echoed.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if errors.Is(err, errMalformed) {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: err.Error(), Code: codeMalformed})
		return
	}

	kind := domain.KindOf(err)
	body := errorBody{Detail: details[kind], Code: string(kind)}

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		body.Detail = ve.Error()
	case kind == domain.KindInternal:
		logger.ErrorContext(r.Context(), "request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}
	writeJSON(w, statusFor(kind), body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
