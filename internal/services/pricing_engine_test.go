package services

import (
	"context"
	"errors"
	"testing"

	"github.com/osegonte/kiox/internal/domain"
	"github.com/osegonte/kiox/internal/repositories"
)

type stubCatalogRepository struct {
	findByIDFn  func(ctx context.Context, id string) (domain.Product, error)
	findByIDsFn func(ctx context.Context, ids []string) ([]domain.Product, error)
	listFn      func(ctx context.Context, filter repositories.CatalogFilter) ([]domain.Product, error)
	insertFn    func(ctx context.Context, product domain.Product) (domain.Product, error)
	updateFn    func(ctx context.Context, id string, changes map[string]any) (domain.Product, error)
}

func (s *stubCatalogRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, id)
	}
	return domain.Product{}, errors.New("unexpected FindByID call")
}

func (s *stubCatalogRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if s.findByIDsFn != nil {
		return s.findByIDsFn(ctx, ids)
	}
	return nil, errors.New("unexpected FindByIDs call")
}

func (s *stubCatalogRepository) List(ctx context.Context, filter repositories.CatalogFilter) ([]domain.Product, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, errors.New("unexpected List call")
}

func (s *stubCatalogRepository) Insert(ctx context.Context, product domain.Product) (domain.Product, error) {
	if s.insertFn != nil {
		return s.insertFn(ctx, product)
	}
	return domain.Product{}, errors.New("unexpected Insert call")
}

func (s *stubCatalogRepository) Update(ctx context.Context, id string, changes map[string]any) (domain.Product, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, changes)
	}
	return domain.Product{}, errors.New("unexpected Update call")
}

func activeProduct(id string, priceKobo int64) domain.Product {
	return domain.Product{ID: id, SKU: "SKU-" + id, Name: "Product " + id, Unit: "unit", PriceKobo: priceKobo, Active: true}
}

func TestPricingEngineComputesSubtotal(t *testing.T) {
	catalog := &stubCatalogRepository{
		findByIDsFn: func(_ context.Context, ids []string) ([]domain.Product, error) {
			if len(ids) != 2 {
				t.Fatalf("expected batched lookup of 2 ids, got %v", ids)
			}
			return []domain.Product{
				activeProduct("p1", 50000),
				activeProduct("p2", 120000),
			}, nil
		},
	}

	engine, err := NewPricingEngine(PricingEngineDeps{Catalog: catalog})
	if err != nil {
		t.Fatalf("NewPricingEngine returned error: %v", err)
	}

	priced, err := engine.Price(context.Background(), []domain.OrderLineRequest{
		{ProductID: "p1", Qty: 2},
		{ProductID: "p2", Qty: 1},
	})
	if err != nil {
		t.Fatalf("Price returned error: %v", err)
	}

	if priced.SubtotalKobo != 220000 {
		t.Fatalf("expected subtotal 220000, got %d", priced.SubtotalKobo)
	}
	if len(priced.Items) != 2 {
		t.Fatalf("expected 2 priced items, got %d", len(priced.Items))
	}
	if priced.Items[0].LineTotalKobo != 100000 {
		t.Fatalf("expected first line total 100000, got %d", priced.Items[0].LineTotalKobo)
	}
	if priced.Items[1].UnitPriceKobo != 120000 {
		t.Fatalf("expected snapshot unit price 120000, got %d", priced.Items[1].UnitPriceKobo)
	}
}

func TestPricingEngineRejectsEmptyOrder(t *testing.T) {
	engine, err := NewPricingEngine(PricingEngineDeps{Catalog: &stubCatalogRepository{}})
	if err != nil {
		t.Fatalf("NewPricingEngine returned error: %v", err)
	}

	_, err = engine.Price(context.Background(), nil)
	if !errors.Is(err, ErrPricingEmptyOrder) {
		t.Fatalf("expected ErrPricingEmptyOrder, got %v", err)
	}
}

func TestPricingEngineRejectsNonPositiveQty(t *testing.T) {
	engine, err := NewPricingEngine(PricingEngineDeps{Catalog: &stubCatalogRepository{}})
	if err != nil {
		t.Fatalf("NewPricingEngine returned error: %v", err)
	}

	_, err = engine.Price(context.Background(), []domain.OrderLineRequest{{ProductID: "p1", Qty: 0}})
	if !errors.Is(err, ErrPricingInvalidQty) {
		t.Fatalf("expected ErrPricingInvalidQty, got %v", err)
	}
}

func TestPricingEngineAllOrNothingOnMissingProduct(t *testing.T) {
	catalog := &stubCatalogRepository{
		findByIDsFn: func(context.Context, []string) ([]domain.Product, error) {
			return []domain.Product{activeProduct("p1", 50000)}, nil
		},
	}

	engine, err := NewPricingEngine(PricingEngineDeps{Catalog: catalog})
	if err != nil {
		t.Fatalf("NewPricingEngine returned error: %v", err)
	}

	_, err = engine.Price(context.Background(), []domain.OrderLineRequest{
		{ProductID: "p1", Qty: 1},
		{ProductID: "missing", Qty: 1},
	})
	if !errors.Is(err, ErrPricingProductNotFound) {
		t.Fatalf("expected ErrPricingProductNotFound, got %v", err)
	}
}

func TestPricingEngineTreatsInactiveProductAsMissing(t *testing.T) {
	inactive := activeProduct("p1", 50000)
	inactive.Active = false

	catalog := &stubCatalogRepository{
		findByIDsFn: func(context.Context, []string) ([]domain.Product, error) {
			return []domain.Product{inactive}, nil
		},
	}

	engine, err := NewPricingEngine(PricingEngineDeps{Catalog: catalog})
	if err != nil {
		t.Fatalf("NewPricingEngine returned error: %v", err)
	}

	_, err = engine.Price(context.Background(), []domain.OrderLineRequest{{ProductID: "p1", Qty: 1}})
	if !errors.Is(err, ErrPricingProductNotFound) {
		t.Fatalf("expected ErrPricingProductNotFound for inactive product, got %v", err)
	}
}

func TestPricingEngineDeduplicatesLookupIDs(t *testing.T) {
	catalog := &stubCatalogRepository{
		findByIDsFn: func(_ context.Context, ids []string) ([]domain.Product, error) {
			if len(ids) != 1 || ids[0] != "p1" {
				t.Fatalf("expected deduplicated lookup [p1], got %v", ids)
			}
			return []domain.Product{activeProduct("p1", 10000)}, nil
		},
	}

	engine, err := NewPricingEngine(PricingEngineDeps{Catalog: catalog})
	if err != nil {
		t.Fatalf("NewPricingEngine returned error: %v", err)
	}

	priced, err := engine.Price(context.Background(), []domain.OrderLineRequest{
		{ProductID: "p1", Qty: 1},
		{ProductID: "p1", Qty: 3},
	})
	if err != nil {
		t.Fatalf("Price returned error: %v", err)
	}
	if priced.SubtotalKobo != 40000 {
		t.Fatalf("expected subtotal 40000, got %d", priced.SubtotalKobo)
	}
}
