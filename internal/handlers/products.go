package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/osegonte/kiox/internal/domain"
	"github.com/osegonte/kiox/internal/platform/httpx"
	"github.com/osegonte/kiox/internal/repositories"
	"github.com/osegonte/kiox/internal/services"
)

// ProductHandlers exposes catalog management endpoints.
type ProductHandlers struct {
	catalog services.CatalogService
}

// NewProductHandlers constructs catalog handlers backed by the given service.
func NewProductHandlers(catalog services.CatalogService) (*ProductHandlers, error) {
	if catalog == nil {
		return nil, errors.New("product handlers: catalog service is required")
	}
	return &ProductHandlers{catalog: catalog}, nil
}

// Routes registers the catalog endpoints on the provided router group.
func (h *ProductHandlers) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{productID}", h.get)
	r.Put("/{productID}", h.update)
	r.Patch("/{productID}", h.update)
}

type createProductPayload struct {
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Brand     *string `json:"brand"`
	Category  *string `json:"category"`
	Unit      string  `json:"unit"`
	PriceKobo int64   `json:"price_kobo"`
	Active    *bool   `json:"active"`
}

type updateProductPayload struct {
	Name      *string `json:"name"`
	Brand     *string `json:"brand"`
	Category  *string `json:"category"`
	Unit      *string `json:"unit"`
	PriceKobo *int64  `json:"price_kobo"`
	Active    *bool   `json:"active"`
}

type productResponse struct {
	ID        string  `json:"id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Brand     *string `json:"brand,omitempty"`
	Category  *string `json:"category,omitempty"`
	Unit      string  `json:"unit"`
	PriceKobo int64   `json:"price_kobo"`
	Active    bool    `json:"active"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

func productToResponse(product domain.Product) productResponse {
	return productResponse{
		ID:        product.ID,
		SKU:       product.SKU,
		Name:      product.Name,
		Brand:     product.Brand,
		Category:  product.Category,
		Unit:      product.Unit,
		PriceKobo: product.PriceKobo,
		Active:    product.Active,
		CreatedAt: formatTime(product.CreatedAt),
		UpdatedAt: formatTime(product.UpdatedAt),
	}
}

func (h *ProductHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := services.ProductListFilter{
		Category:   strings.TrimSpace(r.URL.Query().Get("category")),
		Search:     strings.TrimSpace(r.URL.Query().Get("search")),
		ActiveOnly: queryBool(r, "active_only"),
		Limit:      queryInt(r, "limit", 0),
		Offset:     queryInt(r, "offset", 0),
	}

	products, err := h.catalog.List(ctx, filter)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	items := make([]productResponse, 0, len(products))
	for _, product := range products {
		items = append(items, productToResponse(product))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": items})
}

func (h *ProductHandlers) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	product, err := h.catalog.Get(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, productToResponse(product))
}

func (h *ProductHandlers) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload createProductPayload
	if err := decodeJSONBody(w, r, &payload); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	product, err := h.catalog.Create(ctx, services.CreateProductInput{
		SKU:       payload.SKU,
		Name:      payload.Name,
		Brand:     payload.Brand,
		Category:  payload.Category,
		Unit:      payload.Unit,
		PriceKobo: payload.PriceKobo,
		Active:    payload.Active,
	})
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, productToResponse(product))
}

func (h *ProductHandlers) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload updateProductPayload
	if err := decodeJSONBody(w, r, &payload); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	product, err := h.catalog.Update(ctx, chi.URLParam(r, "productID"), services.UpdateProductInput{
		Name:      payload.Name,
		Brand:     payload.Brand,
		Category:  payload.Category,
		Unit:      payload.Unit,
		PriceKobo: payload.PriceKobo,
		Active:    payload.Active,
	})
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, productToResponse(product))
}

func writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCatalogInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCatalogNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", err.Error(), http.StatusNotFound))
	case errors.Is(err, services.ErrCatalogConflict):
		httpx.WriteError(ctx, w, httpx.NewError("conflict", err.Error(), http.StatusConflict))
	case repositories.IsUnavailable(err):
		httpx.WriteError(ctx, w, httpx.NewError("store_unavailable", "catalog store is unavailable", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
	}
}
