package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/freshbasket/storefront/internal/cart/application"
	"github.com/freshbasket/storefront/internal/cart/domain"
	"github.com/freshbasket/storefront/internal/httpapi"
)

type Handler struct {
	log *slog.Logger
	svc *application.Service
}

func NewHandler(log *slog.Logger, svc *application.Service) *Handler {
	return &Handler{log: log, svc: svc}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.view)
	r.Post("/add/{productID}", h.add)
	r.Post("/update/{productID}", h.update)
	r.Post("/remove/{productID}", h.remove)
	return r
}

type lineResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type cartResponse struct {
	Lines     []lineResponse  `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func toCartResponse(c domain.Cart) cartResponse {
	out := cartResponse{
		Lines:     make([]lineResponse, 0, len(c.Lines)),
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
	}
	for _, l := range c.Lines {
		out.Lines = append(out.Lines, lineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
		})
	}
	return out
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.View(r.Context(), httpapi.OwnerFrom(r.Context()))
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, toCartResponse(c))
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	req := quantityRequest{Quantity: 1}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpapi.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
			return
		}
	}
	ctx := r.Context()
	owner := httpapi.OwnerFrom(ctx)
	if err := h.svc.Add(ctx, owner, chi.URLParam(r, "productID"), req.Quantity); err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	h.respondWithCart(w, r, owner)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	ctx := r.Context()
	owner := httpapi.OwnerFrom(ctx)
	if err := h.svc.UpdateQuantity(ctx, owner, chi.URLParam(r, "productID"), req.Quantity); err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	h.respondWithCart(w, r, owner)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := httpapi.OwnerFrom(ctx)
	if err := h.svc.Remove(ctx, owner, chi.URLParam(r, "productID")); err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	h.respondWithCart(w, r, owner)
}

func (h *Handler) respondWithCart(w http.ResponseWriter, r *http.Request, owner domain.Owner) {
	c, err := h.svc.View(r.Context(), owner)
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, toCartResponse(c))
}
