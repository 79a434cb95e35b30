package services

import (
	"context"
	"errors"
	"time"

	"github.com/osegonte/kiox/internal/domain"
	"github.com/osegonte/kiox/internal/repositories"
)

// SystemServiceDeps bundles constructor inputs for the system service.
type SystemServiceDeps struct {
	Health      repositories.HealthRepository
	Version     string
	Environment string
	Clock       func() time.Time
}

type systemService struct {
	health      repositories.HealthRepository
	version     string
	environment string
	clock       func() time.Time
	startedAt   time.Time
}

// NewSystemService wires dependencies into a concrete SystemService implementation.
func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.Health == nil {
		return nil, errors.New("system service: health repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &systemService{
		health:      deps.Health,
		version:     deps.Version,
		environment: deps.Environment,
		clock:       func() time.Time { return clock().UTC() },
		startedAt:   clock().UTC(),
	}, nil
}

// Liveness reports the process is up. It never probes dependencies so a
// degraded store cannot take the process out of rotation.
func (s *systemService) Liveness(context.Context) domain.SystemHealthReport {
	now := s.clock()
	return domain.SystemHealthReport{
		Status:      domain.HealthStatusOK,
		Version:     s.version,
		Environment: s.environment,
		Uptime:      now.Sub(s.startedAt),
		GeneratedAt: now,
	}
}

// Readiness probes dependencies and aggregates the worst observed status.
func (s *systemService) Readiness(ctx context.Context) (domain.SystemHealthReport, error) {
	report, err := s.health.Collect(ctx)
	if err != nil {
		return domain.SystemHealthReport{}, err
	}

	now := s.clock()
	report.Version = s.version
	report.Environment = s.environment
	report.Uptime = now.Sub(s.startedAt)
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = now
	}
	return report, nil
}
