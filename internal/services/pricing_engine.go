package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/osegonte/kiox/internal/domain"
	"github.com/osegonte/kiox/internal/repositories"
)

var (
	// ErrPricingEmptyOrder signals a pricing request with no lines.
	ErrPricingEmptyOrder = errors.New("pricing: order has no items")
	// ErrPricingInvalidQty signals a line with a non-positive quantity.
	ErrPricingInvalidQty = errors.New("pricing: quantity must be positive")
	// ErrPricingProductNotFound signals a line referencing an unknown or inactive product.
	ErrPricingProductNotFound = errors.New("pricing: product not found")
	// ErrPricingOverflow signals a line or subtotal that does not fit in int64 kobo.
	ErrPricingOverflow = errors.New("pricing: amount overflow")
)

// PricingEngineDeps bundles collaborators required to construct the pricing engine.
type PricingEngineDeps struct {
	Catalog repositories.CatalogRepository
}

type pricingEngine struct {
	catalog repositories.CatalogRepository
}

// NewPricingEngine wires dependencies into a concrete PricingEngine implementation.
func NewPricingEngine(deps PricingEngineDeps) (PricingEngine, error) {
	if deps.Catalog == nil {
		return nil, errors.New("pricing engine: catalog repository is required")
	}
	return &pricingEngine{catalog: deps.Catalog}, nil
}

// Price resolves every requested line against the catalog in one batch lookup
// and computes line totals and the subtotal in integer kobo. Pricing is
// all-or-nothing: a single unresolvable line fails the whole request.
// Inactive products are treated as absent from the catalog.
func (e *pricingEngine) Price(ctx context.Context, lines []domain.OrderLineRequest) (PricedOrder, error) {
	if len(lines) == 0 {
		return PricedOrder{}, ErrPricingEmptyOrder
	}

	ids := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if line.ProductID == "" {
			return PricedOrder{}, fmt.Errorf("%w: missing product id", ErrPricingProductNotFound)
		}
		if line.Qty <= 0 {
			return PricedOrder{}, fmt.Errorf("%w: product %s qty %d", ErrPricingInvalidQty, line.ProductID, line.Qty)
		}
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}

	products, err := e.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return PricedOrder{}, fmt.Errorf("pricing: catalog lookup: %w", err)
	}

	priceByID := make(map[string]int64, len(products))
	for _, product := range products {
		if !product.Active {
			continue
		}
		priceByID[product.ID] = product.PriceKobo
	}

	priced := PricedOrder{Items: make([]domain.PricedOrderItem, 0, len(lines))}
	for _, line := range lines {
		unitPrice, ok := priceByID[line.ProductID]
		if !ok {
			return PricedOrder{}, fmt.Errorf("%w: %s", ErrPricingProductNotFound, line.ProductID)
		}
		lineTotal := unitPrice * int64(line.Qty)
		if unitPrice > 0 && lineTotal/int64(line.Qty) != unitPrice {
			return PricedOrder{}, fmt.Errorf("%w: %s", ErrPricingOverflow, line.ProductID)
		}
		if priced.SubtotalKobo > 0 && lineTotal > 0 && priced.SubtotalKobo+lineTotal < 0 {
			return PricedOrder{}, ErrPricingOverflow
		}
		priced.Items = append(priced.Items, domain.PricedOrderItem{
			ProductID:     line.ProductID,
			Qty:           line.Qty,
			UnitPriceKobo: unitPrice,
			LineTotalKobo: lineTotal,
		})
		priced.SubtotalKobo += lineTotal
	}
	return priced, nil
}
