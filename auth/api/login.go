package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lfmonteiro/taskdeck/auth"
	"github.com/lfmonteiro/taskdeck/internal/logutil"
)

type (
	loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	loginResponse struct {
		Token string `json:"token"`
	}

	errorResponse struct {
		Message string `json:"message"`
	}
)

// LoginHandler exposes the one unauthenticated entry point of the API.
func LoginHandler(svc *auth.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
			return
		}
		token, err := svc.Login(r.Context(), req.Username, req.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "invalid credentials"})
			return
		} else if err != nil {
			logger := logutil.GetOrDefault(r.Context())
			logger.Error().Err(err).Msg("Unexpected error during login")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
			return
		}
		writeJSON(w, http.StatusOK, loginResponse{Token: token})
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
