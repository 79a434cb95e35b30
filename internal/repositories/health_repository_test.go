package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/osegonte/kiox/internal/domain"
)

func TestDependencyHealthRepositoryRequiresChecks(t *testing.T) {
	if _, err := NewDependencyHealthRepository(nil); err == nil {
		t.Fatal("expected error for empty check set")
	}
	if _, err := NewDependencyHealthRepository([]DependencyCheck{{Name: "", Check: func(context.Context) error { return nil }}}); err == nil {
		t.Fatal("expected error for unnamed check")
	}
	if _, err := NewDependencyHealthRepository([]DependencyCheck{{Name: "store"}}); err == nil {
		t.Fatal("expected error for check without function")
	}
}

func TestDependencyHealthRepositoryAggregatesWorstStatus(t *testing.T) {
	repo, err := NewDependencyHealthRepository([]DependencyCheck{
		{Name: "store", Check: func(context.Context) error { return nil }},
		{Name: "cache", Check: func(context.Context) error { return errors.New("connection refused") }},
	})
	if err != nil {
		t.Fatalf("NewDependencyHealthRepository returned error: %v", err)
	}

	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	if report.Status != domain.HealthStatusDegraded {
		t.Fatalf("expected degraded aggregate, got %s", report.Status)
	}
	if report.Checks["store"].Status != domain.HealthStatusOK {
		t.Fatalf("expected store ok, got %+v", report.Checks["store"])
	}
	if report.Checks["cache"].Status != domain.HealthStatusDegraded {
		t.Fatalf("expected cache degraded, got %+v", report.Checks["cache"])
	}
}

func TestDependencyHealthRepositoryTimesOutSlowChecks(t *testing.T) {
	repo, err := NewDependencyHealthRepository([]DependencyCheck{
		{
			Name:    "store",
			Timeout: 10 * time.Millisecond,
			Check: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		},
	})
	if err != nil {
		t.Fatalf("NewDependencyHealthRepository returned error: %v", err)
	}

	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if report.Status != domain.HealthStatusError {
		t.Fatalf("expected error status for timed out check, got %s", report.Status)
	}
	if report.Checks["store"].Detail != "timeout" {
		t.Fatalf("expected timeout detail, got %+v", report.Checks["store"])
	}
}
