package handler

import (
	"encoding/json"
	"net/http"
	"vaccitrack/internal/api/middleware"
	"vaccitrack/internal/app/service"
	"vaccitrack/internal/common"

	"github.com/go-chi/chi/v5"
)

// clearAuthCookie expires the session cookie on the client. The token
// itself stays valid until it expires.
const clearAuthCookie = "Authorization=; Path=/; HttpOnly; Max-Age=0"

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes mounts the public routes on r and the session routes
// behind authn.
func (h *AuthHandler) RegisterRoutes(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)

	r.Group(func(protected chi.Router) {
		protected.Use(authn)
		protected.Post("/logout", h.logout)
		protected.Post("/hydrate", h.hydrate)
	})
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.authService.Signup(r.Context(), &req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusCreated, user, "signup")
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	res, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	w.Header().Set("Set-Cookie", res.Cookie)
	common.RespondWithData(w, http.StatusOK, res.User, "login")
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithErr(w, common.ErrUnauthorized)
		return
	}

	loggedOut, err := h.authService.Logout(r.Context(), user)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	w.Header().Set("Set-Cookie", clearAuthCookie)
	common.RespondWithData(w, http.StatusOK, loggedOut, "logout")
}

func (h *AuthHandler) hydrate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithErr(w, common.ErrUnauthorized)
		return
	}

	res, err := h.authService.Hydrate(r.Context(), user)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	w.Header().Set("Set-Cookie", res.Cookie)
	common.RespondWithData(w, http.StatusOK, res.User, "hydrate")
}
