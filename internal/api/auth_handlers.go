package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clinicware/ambulatorio-scheduling/internal/auth"
)

func loginHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validateStruct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		token, user, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
			User: UserResponse{
				ID:         user.ID,
				Username:   user.Username,
				Ambulatori: user.Ambulatori,
			},
		})
	}
}

func meHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "missing_token", "no session")
			return
		}

		user, err := svc.GetUser(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				writeError(w, http.StatusUnauthorized, "invalid_token", "session user no longer exists")
				return
			}
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, UserResponse{
			ID:         user.ID,
			Username:   user.Username,
			Ambulatori: user.Ambulatori,
		})
	}
}
