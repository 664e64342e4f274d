package handlers

import (
	"net/http"

	"parsshop-be/internal/httpx"
	"parsshop-be/internal/user"
	"parsshop-be/internal/utils"
	"parsshop-be/internal/verification"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	users user.Service
	codes verification.Service
}

func NewUserHandler(users user.Service, codes verification.Service) *UserHandler {
	return &UserHandler{users: users, codes: codes}
}

func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/send-code", h.sendCode)
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	return r
}

func (h *UserHandler) ProfileRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.profile)
	r.Put("/", h.updateProfile)
	return r
}

type sendCodeInput struct {
	Phone string `json:"phone" validate:"required"`
}

func (h *UserHandler) sendCode(w http.ResponseWriter, r *http.Request) {
	var input sendCodeInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	if err := h.codes.SendCode(r.Context(), input.Phone); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

type sessionResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   24 * 60 * 60,
	})
}

func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	var input user.RegisterInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	token, u, err := h.users.Register(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	setSessionCookie(w, token)
	httpx.RespondJSON(w, http.StatusCreated, sessionResponse{Token: token, User: u})
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var input user.LoginInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	token, u, err := h.users.Login(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	setSessionCookie(w, token)
	httpx.RespondJSON(w, http.StatusOK, sessionResponse{Token: token, User: u})
}

func (h *UserHandler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *UserHandler) profile(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())
	u, err := h.users.Get(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, u)
}

func (h *UserHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var input user.UpdateProfileInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	u, err := h.users.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, u)
}
