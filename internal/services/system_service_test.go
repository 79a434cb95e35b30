package services

import (
	"context"
	"errors"
	"testing"

	"github.com/osegonte/kiox/internal/domain"
)

type stubHealthRepository struct {
	collectFn func(ctx context.Context) (domain.SystemHealthReport, error)
}

func (s *stubHealthRepository) Collect(ctx context.Context) (domain.SystemHealthReport, error) {
	if s.collectFn != nil {
		return s.collectFn(ctx)
	}
	return domain.SystemHealthReport{}, errors.New("unexpected Collect call")
}

func TestSystemServiceLivenessNeverProbes(t *testing.T) {
	health := &stubHealthRepository{
		collectFn: func(context.Context) (domain.SystemHealthReport, error) {
			t.Fatal("liveness must not probe dependencies")
			return domain.SystemHealthReport{}, nil
		},
	}

	svc, err := NewSystemService(SystemServiceDeps{Health: health, Version: "1.2.3", Environment: "test", Clock: fixedClock})
	if err != nil {
		t.Fatalf("NewSystemService returned error: %v", err)
	}

	report := svc.Liveness(context.Background())
	if report.Status != domain.HealthStatusOK {
		t.Fatalf("expected ok status, got %s", report.Status)
	}
	if report.Version != "1.2.3" || report.Environment != "test" {
		t.Fatalf("expected version and environment set, got %+v", report)
	}
}

func TestSystemServiceReadinessAggregatesChecks(t *testing.T) {
	health := &stubHealthRepository{
		collectFn: func(context.Context) (domain.SystemHealthReport, error) {
			return domain.SystemHealthReport{
				Status: domain.HealthStatusDegraded,
				Checks: map[string]domain.SystemHealthCheck{
					"store": {Status: domain.HealthStatusDegraded, Detail: "slow"},
				},
			}, nil
		},
	}

	svc, err := NewSystemService(SystemServiceDeps{Health: health, Version: "1.2.3", Environment: "test", Clock: fixedClock})
	if err != nil {
		t.Fatalf("NewSystemService returned error: %v", err)
	}

	report, err := svc.Readiness(context.Background())
	if err != nil {
		t.Fatalf("Readiness returned error: %v", err)
	}
	if report.Status != domain.HealthStatusDegraded {
		t.Fatalf("expected degraded, got %s", report.Status)
	}
	if report.Version != "1.2.3" {
		t.Fatalf("expected version stamped onto report, got %q", report.Version)
	}
	if _, ok := report.Checks["store"]; !ok {
		t.Fatalf("expected store check present, got %+v", report.Checks)
	}
}

func TestSystemServiceReadinessPropagatesError(t *testing.T) {
	health := &stubHealthRepository{
		collectFn: func(context.Context) (domain.SystemHealthReport, error) {
			return domain.SystemHealthReport{}, errors.New("probe wiring broken")
		},
	}

	svc, err := NewSystemService(SystemServiceDeps{Health: health, Clock: fixedClock})
	if err != nil {
		t.Fatalf("NewSystemService returned error: %v", err)
	}

	if _, err := svc.Readiness(context.Background()); err == nil {
		t.Fatal("expected error from readiness")
	}
}
