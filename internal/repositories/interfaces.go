package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/osegonte/kiox/internal/domain"
)

// RepositoryError captures backend error semantics so services can react without
// knowing which store produced the failure.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// IsNotFound reports whether err carries not-found semantics.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsConflict reports whether err carries conflict semantics.
func IsConflict(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}

// IsUnavailable reports whether err carries transient-outage semantics.
func IsUnavailable(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}

// CatalogFilter narrows product listings.
type CatalogFilter struct {
	Category   string
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// CatalogRepository provides access to the product catalog.
type CatalogRepository interface {
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	List(ctx context.Context, filter CatalogFilter) ([]domain.Product, error)
	Insert(ctx context.Context, product domain.Product) (domain.Product, error)
	Update(ctx context.Context, id string, changes map[string]any) (domain.Product, error)
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	ShopID string
	Status domain.OrderStatus
	Limit  int
	Offset int
}

// OrderRepository persists orders and their line items.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) (domain.Order, error)
	InsertItems(ctx context.Context, items []domain.OrderItem) ([]domain.OrderItem, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (domain.Order, error)
	ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	Update(ctx context.Context, id string, changes map[string]any) (domain.Order, error)
}

// AuditLogRepository records immutable audit trail entries.
type AuditLogRepository interface {
	Append(ctx context.Context, entry domain.AuditLogEntry) error
}

// HealthRepository reports dependency health for readiness probes.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}

// UnitOfWork coordinates multi-step writes. Stores without transactional
// semantics fall back to compensating actions inside the closure.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopUnitOfWork executes the closure without any transactional guarantees.
type NoopUnitOfWork struct{}

// Run invokes fn directly.
func (NoopUnitOfWork) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Clock yields the current time; injected so tests can fix it.
type Clock func() time.Time
