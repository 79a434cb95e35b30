package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/osegonte/kiox/internal/domain"
	"github.com/osegonte/kiox/internal/repositories"
)

var (
	// ErrCatalogInvalidInput signals the caller provided invalid product data.
	ErrCatalogInvalidInput = errors.New("catalog: invalid input")
	// ErrCatalogNotFound indicates the product could not be located.
	ErrCatalogNotFound = errors.New("catalog: product not found")
	// ErrCatalogConflict indicates a duplicate SKU or constraint violation.
	ErrCatalogConflict = errors.New("catalog: conflict")
)

// CatalogServiceDeps bundles collaborators required to construct the catalog service.
type CatalogServiceDeps struct {
	Catalog repositories.CatalogRepository
	Clock   func() time.Time
}

type catalogService struct {
	catalog repositories.CatalogRepository
	clock   func() time.Time
}

// NewCatalogService wires dependencies into a concrete CatalogService implementation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Catalog == nil {
		return nil, errors.New("catalog service: catalog repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &catalogService{
		catalog: deps.Catalog,
		clock:   func() time.Time { return clock().UTC() },
	}, nil
}

// Get fetches a single product by id.
func (s *catalogService) Get(ctx context.Context, productID string) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}

	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

// List returns catalog entries matching the filter.
func (s *catalogService) List(ctx context.Context, filter ProductListFilter) ([]domain.Product, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	products, err := s.catalog.List(ctx, repositories.CatalogFilter{
		Category:   strings.TrimSpace(filter.Category),
		Search:     strings.TrimSpace(filter.Search),
		ActiveOnly: filter.ActiveOnly,
		Limit:      limit,
		Offset:     filter.Offset,
	})
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return products, nil
}

// Create validates and persists a new catalog entry. New products default
// to active unless the caller says otherwise.
func (s *catalogService) Create(ctx context.Context, input CreateProductInput) (domain.Product, error) {
	sku := strings.TrimSpace(input.SKU)
	name := strings.TrimSpace(input.Name)
	unit := strings.TrimSpace(input.Unit)

	var invalid []string
	if sku == "" {
		invalid = append(invalid, "sku")
	}
	if name == "" {
		invalid = append(invalid, "name")
	}
	if unit == "" {
		invalid = append(invalid, "unit")
	}
	if input.PriceKobo < 0 {
		invalid = append(invalid, "price_kobo")
	}
	if len(invalid) > 0 {
		return domain.Product{}, fmt.Errorf("%w: %s", ErrCatalogInvalidInput, strings.Join(invalid, ", "))
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	product, err := s.catalog.Insert(ctx, domain.Product{
		SKU:       sku,
		Name:      name,
		Brand:     input.Brand,
		Category:  input.Category,
		Unit:      unit,
		PriceKobo: input.PriceKobo,
		Active:    active,
	})
	if err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

// Update applies the non-nil fields of input to the stored product.
func (s *catalogService) Update(ctx context.Context, productID string, input UpdateProductInput) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}

	changes := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return domain.Product{}, fmt.Errorf("%w: name", ErrCatalogInvalidInput)
		}
		changes["name"] = name
	}
	if input.Brand != nil {
		changes["brand"] = *input.Brand
	}
	if input.Category != nil {
		changes["category"] = *input.Category
	}
	if input.Unit != nil {
		unit := strings.TrimSpace(*input.Unit)
		if unit == "" {
			return domain.Product{}, fmt.Errorf("%w: unit", ErrCatalogInvalidInput)
		}
		changes["unit"] = unit
	}
	if input.PriceKobo != nil {
		if *input.PriceKobo < 0 {
			return domain.Product{}, fmt.Errorf("%w: price_kobo", ErrCatalogInvalidInput)
		}
		changes["price_kobo"] = *input.PriceKobo
	}
	if input.Active != nil {
		changes["active"] = *input.Active
	}
	if len(changes) == 0 {
		return domain.Product{}, fmt.Errorf("%w: no fields to update", ErrCatalogInvalidInput)
	}
	changes["updated_at"] = s.clock().Format(time.RFC3339Nano)

	product, err := s.catalog.Update(ctx, productID, changes)
	if err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case repositories.IsNotFound(err):
		return fmt.Errorf("%w: %v", ErrCatalogNotFound, err)
	case repositories.IsConflict(err):
		return fmt.Errorf("%w: %v", ErrCatalogConflict, err)
	default:
		return err
	}
}
