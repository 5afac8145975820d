package router

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	staffjwt "clinic-records/internal/adapters/auth/jwt"
	"clinic-records/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func registerSessionRoutes(r chi.Router, tokens *staffjwt.Tokens, authn *staffjwt.Authenticator, log *zap.Logger) {
	r.Route("/staff", func(sr chi.Router) {
		sr.Post("/login", loginHandler(tokens, authn, log))
		sr.Post("/logout", logoutHandler(tokens, log))
	})
}

// loginHandler godoc
// @Summary Login de staff
// @Description Valida la cuenta de staff configurada y emite un Bearer token (HS256).
// @Tags staff
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} loginResponse
// @Failure 400 {string} string "invalid json"
// @Failure 401 {string} string "invalid credentials"
// @Router /staff/login [post]
func loginHandler(tokens *staffjwt.Tokens, authn *staffjwt.Authenticator, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := authn.Authenticate(req.Username, req.Password); err != nil {
			log.Warn("staff login rejected", zap.String("username", strings.TrimSpace(req.Username)))
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		token, claims, err := tokens.Issue(strings.TrimSpace(req.Username))
		if err != nil {
			log.Error("issue staff token", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: claims.ExpiresAt})
	}
}

// logoutHandler godoc
// @Summary Logout de staff
// @Description Revoca el token actual hasta su expiración.
// @Tags staff
// @Param Authorization header string true "Bearer token de staff"
// @Success 204
// @Failure 401 {string} string "unauthorized"
// @Failure 503 {string} string "revocation store unavailable"
// @Router /staff/logout [post]
func logoutHandler(tokens *staffjwt.Tokens, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := tokens.Revoke(r.Context(), claims); err != nil {
			log.Error("revoke staff token", zap.Error(err))
			http.Error(w, "revocation store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
