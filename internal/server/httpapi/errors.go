package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/secureledger/vault/internal/common"
	"github.com/secureledger/vault/internal/logging"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}

func internalServerError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// writeServiceError maps internal error kinds onto the external contract.
// The three token failures deliberately collapse into one message so the
// endpoint is not an oracle for which tokens exist; the precise kind still
// goes to the log.
func writeServiceError(ctx context.Context, w http.ResponseWriter, logger logging.Logger, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		notFound(w)
	case errors.Is(err, common.ErrTokenNotFound),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenConsumed):
		logger.Warn(ctx, "reset token rejected", "reason", err.Error())
		badRequest(w, "invalid or expired token")
	default:
		logger.Error(ctx, "operation failed", "error", err.Error())
		internalServerError(w)
	}
}
