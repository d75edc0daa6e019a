package http

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"

	cart "github.com/freshbasket/storefront/internal/cart/domain"
	"github.com/freshbasket/storefront/internal/httpapi"
	identity "github.com/freshbasket/storefront/internal/identity/domain"
	sessions "github.com/freshbasket/storefront/internal/identity/infrastructure/redis"
)

const (
	sessionCookie = "fb_session"
	cartCookie    = "fb_cart"
)

// Middleware resolves the session cookie into an explicit Actor and derives
// the cart owner: the user when authenticated, otherwise the anonymous cart
// cookie (created here on first sight).
func Middleware(log *slog.Logger, store *sessions.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var actor identity.Actor
			if c, err := r.Cookie(sessionCookie); err == nil {
				sess, ok, err := store.Resolve(ctx, c.Value)
				if err != nil {
					log.Error("session resolve failed", "err", err)
				} else if ok {
					actor = identity.Actor{UserID: sess.UserID, Admin: sess.Admin}
				}
			}

			cartID := ""
			if c, err := r.Cookie(cartCookie); err == nil {
				cartID = c.Value
			}
			if cartID == "" {
				cartID = newCartID()
				http.SetCookie(w, &http.Cookie{
					Name:     cartCookie,
					Value:    cartID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			owner := cart.AnonymousOwner(cartID)
			if actor.Authenticated() {
				owner = cart.UserOwner(actor.UserID)
			}

			ctx = httpapi.WithActor(ctx, actor)
			ctx = httpapi.WithOwner(ctx, owner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newCartID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
