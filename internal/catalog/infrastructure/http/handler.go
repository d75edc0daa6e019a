package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/freshbasket/storefront/internal/catalog/application"
	"github.com/freshbasket/storefront/internal/catalog/domain"
	"github.com/freshbasket/storefront/internal/httpapi"
)

type Handler struct {
	log *slog.Logger
	svc *application.Service
}

func NewHandler(log *slog.Logger, svc *application.Service) *Handler {
	return &Handler{log: log, svc: svc}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{productID}", h.get)
	r.Get("/categories", h.categories)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/products", h.create)
	r.Put("/products/{productID}", h.update)
	r.Delete("/products/{productID}", h.deactivate)
}

type productResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url,omitempty"`
	Available   bool            `json:"available"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		Available:   p.Available,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f := application.Filter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}
	if f.Category == "all" {
		f.Category = ""
	}
	products, err := h.svc.List(r.Context(), f)
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	httpapi.JSON(w, http.StatusOK, map[string]any{"products": out})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, map[string]any{"categories": categories})
}

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url"`
	Available   *bool           `json:"available"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	p, err := h.svc.Create(r.Context(), httpapi.ActorFrom(r.Context()), domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	p, err := h.svc.Update(r.Context(), httpapi.ActorFrom(r.Context()), domain.Product{
		ID:          chi.URLParam(r, "productID"),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Available:   available,
	})
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, toProductResponse(p))
}

// deactivate is the admin "delete": the product disappears from the
// storefront but stays referenced by historical order lines.
func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Deactivate(r.Context(), httpapi.ActorFrom(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
