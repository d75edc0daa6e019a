package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	catalog "github.com/freshbasket/storefront/internal/catalog/domain"
	identity "github.com/freshbasket/storefront/internal/identity/domain"
	order "github.com/freshbasket/storefront/internal/order/domain"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Product string `json:"product,omitempty"`
}

// Error translates domain errors into HTTP statuses. Anything unrecognised
// is logged with detail and reported as a generic 500 so internals never
// leak to the client.
func Error(w http.ResponseWriter, log *slog.Logger, err error) {
	var stockErr *catalog.InsufficientStockError
	var transitionErr *order.InvalidTransitionError

	switch {
	case errors.As(err, &stockErr):
		JSON(w, http.StatusConflict, errorBody{Error: stockErr.Error(), Product: stockErr.ProductID})
	case errors.As(err, &transitionErr):
		JSON(w, http.StatusUnprocessableEntity, errorBody{Error: transitionErr.Error()})
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, identity.ErrUserNotFound):
		JSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, identity.ErrNotAuthenticated),
		errors.Is(err, identity.ErrInvalidCredentials):
		JSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, identity.ErrForbidden):
		JSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case errors.Is(err, identity.ErrUsernameTaken),
		errors.Is(err, identity.ErrEmailTaken):
		JSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrBlankAddress),
		errors.Is(err, order.ErrUnknownStatus),
		errors.Is(err, identity.ErrSelfDemotion),
		errors.Is(err, catalog.ErrInvalidPrice),
		errors.Is(err, catalog.ErrNegativeStock),
		errors.Is(err, catalog.ErrMissingFields):
		JSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	default:
		log.Error("request failed", "err", err)
		JSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
