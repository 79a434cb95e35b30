package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/osegonte/kiox/internal/domain"
	"github.com/osegonte/kiox/internal/platform/supabase"
	"github.com/osegonte/kiox/internal/repositories"
)

const productsTable = "products"

type productRow struct {
	ID        string     `json:"id,omitempty"`
	SKU       string     `json:"sku"`
	Name      string     `json:"name"`
	Brand     *string    `json:"brand"`
	Category  *string    `json:"category"`
	Unit      string     `json:"unit"`
	PriceKobo int64      `json:"price_kobo"`
	Active    bool       `json:"active"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (r productRow) toDomain() domain.Product {
	product := domain.Product{
		ID:        r.ID,
		SKU:       r.SKU,
		Name:      r.Name,
		Brand:     r.Brand,
		Category:  r.Category,
		Unit:      r.Unit,
		PriceKobo: r.PriceKobo,
		Active:    r.Active,
	}
	if r.CreatedAt != nil {
		product.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		product.UpdatedAt = *r.UpdatedAt
	}
	return product
}

func productRowFromDomain(p domain.Product) productRow {
	return productRow{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Brand:     p.Brand,
		Category:  p.Category,
		Unit:      p.Unit,
		PriceKobo: p.PriceKobo,
		Active:    p.Active,
	}
}

// ProductRepository implements repositories.CatalogRepository on the store's products table.
type ProductRepository struct {
	client *supabase.Client
}

// NewProductRepository constructs a catalog repository backed by the store client.
func NewProductRepository(client *supabase.Client) (*ProductRepository, error) {
	if client == nil {
		return nil, fmt.Errorf("supabase product repository requires a client")
	}
	return &ProductRepository{client: client}, nil
}

var _ repositories.CatalogRepository = (*ProductRepository)(nil)

// FindByID fetches a single product by primary key.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	const op = "products.FindByID"

	var rows []productRow
	query := supabase.Query{Filters: []supabase.Filter{supabase.Eq("id", id)}, Limit: 1}
	if err := r.client.Select(ctx, productsTable, query, &rows); err != nil {
		return domain.Product{}, supabase.WrapError(op, err)
	}
	if len(rows) == 0 {
		return domain.Product{}, supabase.NotFound(op, fmt.Sprintf("product %s not found", id))
	}
	return rows[0].toDomain(), nil
}

// FindByIDs fetches the products matching ids in a single batch query.
// Missing ids are simply absent from the result; callers decide whether
// that is an error.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	const op = "products.FindByIDs"

	if len(ids) == 0 {
		return nil, nil
	}

	var rows []productRow
	query := supabase.Query{Filters: []supabase.Filter{supabase.In("id", ids)}}
	if err := r.client.Select(ctx, productsTable, query, &rows); err != nil {
		return nil, supabase.WrapError(op, err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	return products, nil
}

// List returns catalog entries matching the filter, newest first.
func (r *ProductRepository) List(ctx context.Context, filter repositories.CatalogFilter) ([]domain.Product, error) {
	const op = "products.List"

	query := supabase.Query{
		OrderBy:    "created_at",
		Descending: true,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if filter.ActiveOnly {
		query.Filters = append(query.Filters, supabase.Eq("active", "true"))
	}
	if filter.Category != "" {
		query.Filters = append(query.Filters, supabase.Eq("category", filter.Category))
	}
	if filter.Search != "" {
		query.Filters = append(query.Filters, supabase.ILike("name", "*"+filter.Search+"*"))
	}

	var rows []productRow
	if err := r.client.Select(ctx, productsTable, query, &rows); err != nil {
		return nil, supabase.WrapError(op, err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	return products, nil
}

// Insert creates a catalog entry and returns the stored row.
func (r *ProductRepository) Insert(ctx context.Context, product domain.Product) (domain.Product, error) {
	const op = "products.Insert"

	var created []productRow
	if err := r.client.Insert(ctx, productsTable, []productRow{productRowFromDomain(product)}, &created); err != nil {
		return domain.Product{}, supabase.WrapError(op, err)
	}
	if len(created) == 0 {
		return domain.Product{}, supabase.NotFound(op, "insert returned no rows")
	}
	return created[0].toDomain(), nil
}

// Update patches the product identified by id and returns the stored row.
func (r *ProductRepository) Update(ctx context.Context, id string, changes map[string]any) (domain.Product, error) {
	const op = "products.Update"

	var updated []productRow
	filters := []supabase.Filter{supabase.Eq("id", id)}
	if err := r.client.Update(ctx, productsTable, filters, changes, &updated); err != nil {
		return domain.Product{}, supabase.WrapError(op, err)
	}
	if len(updated) == 0 {
		return domain.Product{}, supabase.NotFound(op, fmt.Sprintf("product %s not found", id))
	}
	return updated[0].toDomain(), nil
}
