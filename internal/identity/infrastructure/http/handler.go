package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	cartapp "github.com/freshbasket/storefront/internal/cart/application"
	cart "github.com/freshbasket/storefront/internal/cart/domain"
	"github.com/freshbasket/storefront/internal/httpapi"
	"github.com/freshbasket/storefront/internal/identity/application"
	"github.com/freshbasket/storefront/internal/identity/domain"
	sessions "github.com/freshbasket/storefront/internal/identity/infrastructure/redis"
)

type Handler struct {
	log      *slog.Logger
	users    *application.Service
	carts    *cartapp.Service
	sessions *sessions.SessionStore
}

func NewHandler(log *slog.Logger, users *application.Service, carts *cartapp.Service, store *sessions.SessionStore) *Handler {
	return &Handler{log: log, users: users, carts: carts, sessions: store}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/users", h.listUsers)
	r.Post("/users/{userID}/admin", h.setAdmin)
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Admin     bool   `json:"admin"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Admin:     u.Admin,
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	u, err := h.users.Register(r.Context(), application.RegisterRequest{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, application.ErrInvalidRegistration) {
			httpapi.JSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusCreated, toUserResponse(u))
}

// login authenticates, opens a session and migrates the anonymous cart to
// the user. The migration is an explicit step, not a side effect of cart
// reads.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	ctx := r.Context()
	u, err := h.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}

	token, err := h.sessions.Create(ctx, sessions.Session{UserID: u.ID, Admin: u.Admin})
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if owner := httpapi.OwnerFrom(ctx); owner.Kind == cart.OwnerAnonymous && owner.ID != "" {
		if err := h.carts.Merge(ctx, owner, cart.UserOwner(u.ID)); err != nil {
			h.log.Error("cart merge on login failed", "user_id", u.ID, "err", err)
		}
	}

	httpapi.JSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if err := h.sessions.Destroy(r.Context(), c.Value); err != nil {
			h.log.Error("session destroy failed", "err", err)
		}
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context(), httpapi.ActorFrom(r.Context()))
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpapi.JSON(w, http.StatusOK, map[string]any{"users": out})
}

func (h *Handler) setAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Admin bool `json:"admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	err := h.users.SetAdmin(r.Context(), httpapi.ActorFrom(r.Context()), chi.URLParam(r, "userID"), req.Admin)
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
