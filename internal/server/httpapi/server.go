// Package httpapi exposes the vault operations over a small JSON API.
// It owns wire shapes and status codes only; all business rules live in the
// service layer.
package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/secureledger/vault/internal/logging"
	"github.com/secureledger/vault/internal/server/services"
)

type Server struct {
	vault  *services.VaultService
	logger logging.Logger

	mux *http.ServeMux
}

func NewServer(vault *services.VaultService, logger logging.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		vault:  vault,
		logger: logger.With("module", "httpapi"),
		mux:    mux,
	}

	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.HandleFunc("POST /api/v1/credentials", s.handleStoreCredentials)
	mux.HandleFunc("GET /api/v1/credentials/{user_id}", s.handleRetrieveCredentials)

	mux.HandleFunc("POST /api/v1/reset/initiate", s.handleInitiateReset)
	mux.HandleFunc("POST /api/v1/reset/complete", s.handleCompleteReset)

	mux.HandleFunc("POST /api/v1/biometrics/{user_id}", s.handleEnrollBiometrics)
	mux.HandleFunc("POST /api/v1/biometrics/{user_id}/verify", s.handleVerifyBiometrics)

	return s
}

func (s *Server) Handler() http.Handler {
	return withMiddleware(s.mux, s.logger)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleStoreCredentials(w http.ResponseWriter, r *http.Request) {
	var req storeCredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if req.UserID == "" || req.Username == "" || req.Password == "" {
		badRequest(w, "missing required fields")
		return
	}

	err := s.vault.StoreCredentials(r.Context(), req.UserID, services.Credentials{
		Username: req.Username,
		Password: req.Password,
		Hint:     req.Hint,
	})
	if err != nil {
		writeServiceError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "credentials stored"})
}

func (s *Server) handleRetrieveCredentials(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	creds, err := s.vault.RetrieveCredentials(r.Context(), userID)
	if err != nil {
		writeServiceError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, credentialsResponse{
		Username: creds.Username,
		Password: creds.Password,
		Hint:     creds.Hint,
	})
}

func (s *Server) handleInitiateReset(w http.ResponseWriter, r *http.Request) {
	var req initiateResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if req.UserID == "" {
		badRequest(w, "missing required fields")
		return
	}

	token, err := s.vault.InitiatePasswordReset(r.Context(), req.UserID)
	if err != nil {
		writeServiceError(r.Context(), w, s.logger, err)
		return
	}

	// Delivery of the token to the user (mail, SMS) is an external concern;
	// the transport hands it back to the caller.
	writeJSON(w, http.StatusOK, initiateResetResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	})
}

func (s *Server) handleCompleteReset(w http.ResponseWriter, r *http.Request) {
	var req completeResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		badRequest(w, "missing required fields")
		return
	}

	if err := s.vault.CompletePasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		writeServiceError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "password reset"})
}

func (s *Server) handleEnrollBiometrics(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	var req biometricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	template, err := base64.StdEncoding.DecodeString(req.Template)
	if err != nil || len(template) == 0 {
		badRequest(w, "invalid template")
		return
	}

	if err := s.vault.EnrollBiometrics(r.Context(), userID, template); err != nil {
		writeServiceError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "biometrics enrolled"})
}

func (s *Server) handleVerifyBiometrics(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	var req biometricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	candidate, err := base64.StdEncoding.DecodeString(req.Template)
	if err != nil || len(candidate) == 0 {
		badRequest(w, "invalid template")
		return
	}

	match, err := s.vault.VerifyBiometrics(r.Context(), userID, candidate)
	if err != nil {
		writeServiceError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, verifyBiometricsResponse{Match: match})
}
