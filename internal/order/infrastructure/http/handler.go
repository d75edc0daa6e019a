package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/freshbasket/storefront/internal/httpapi"
	"github.com/freshbasket/storefront/internal/order/application"
	"github.com/freshbasket/storefront/internal/order/domain"
	"github.com/freshbasket/storefront/pkg/idempotency"
)

type Handler struct {
	log    *slog.Logger
	svc    *application.Service
	idem   *idempotency.Store
	tracer trace.Tracer
}

func NewHandler(log *slog.Logger, svc *application.Service, idem *idempotency.Store) *Handler {
	return &Handler{
		log:    log,
		svc:    svc,
		idem:   idem,
		tracer: otel.Tracer("order-http"),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/checkout", h.checkout)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{orderID}", h.getOrder)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/orders", h.listAllOrders)
	r.Post("/orders/{orderID}/status", h.updateStatus)
}

type lineResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type orderResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	ShippingAddress string          `json:"shipping_address"`
	Notes           string          `json:"notes,omitempty"`
	Status          domain.Status   `json:"status"`
	Lines           []lineResponse  `json:"lines"`
	Total           decimal.Decimal `json:"total"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toOrderResponse(o domain.Order) orderResponse {
	out := orderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		Status:          o.Status,
		Lines:           make([]lineResponse, 0, len(o.Lines)),
		Total:           o.Total,
		CreatedAt:       o.CreatedAt,
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, lineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		})
	}
	return out
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Checkout")
	defer span.End()

	var req struct {
		ShippingAddress string `json:"shipping_address"`
		Notes           string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	actor := httpapi.ActorFrom(ctx)
	owner := httpapi.OwnerFrom(ctx)

	if key := r.Header.Get("Idempotency-Key"); key != "" {
		seen, err := h.idem.Seen(ctx, h.idem.Key(owner.Key(), key))
		if err != nil {
			httpapi.Error(w, h.log, err)
			return
		}
		if seen {
			httpapi.JSON(w, http.StatusConflict, map[string]string{"error": "duplicate checkout request"})
			return
		}
	}

	o, err := h.svc.Place(ctx, actor, owner, application.PlaceRequest{
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListByUser(r.Context(), httpapi.ActorFrom(r.Context()))
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, map[string]any{"orders": toOrderResponses(orders)})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Get(r.Context(), httpapi.ActorFrom(r.Context()), chi.URLParam(r, "orderID"))
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListAll(r.Context(), httpapi.ActorFrom(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, map[string]any{"orders": toOrderResponses(orders)})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	o, err := h.svc.UpdateStatus(r.Context(), httpapi.ActorFrom(r.Context()), chi.URLParam(r, "orderID"), req.Status)
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, toOrderResponse(o))
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}
