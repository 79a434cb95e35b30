package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/osegonte/kiox/internal/domain"
	"github.com/osegonte/kiox/internal/repositories"
)

const (
	defaultAuditRole  = "system"
	defaultAuditActor = "system"
)

// AuditLogger defines the logging contract used by the audit writer service.
type AuditLogger interface {
	Warnf(format string, args ...any)
}

// AuditLogServiceDeps bundles constructor inputs for the audit writer service.
type AuditLogServiceDeps struct {
	Repository repositories.AuditLogRepository
	Clock      func() time.Time
	Logger     AuditLogger
}

type auditLogService struct {
	repo   repositories.AuditLogRepository
	clock  func() time.Time
	logger AuditLogger
}

// NewAuditLogService creates an audit log writer backed by the supplied repository.
func NewAuditLogService(deps AuditLogServiceDeps) (AuditLogService, error) {
	if deps.Repository == nil {
		return nil, fmt.Errorf("audit log service: repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := deps.Logger
	if logger == nil {
		logger = noopAuditLogger{}
	}

	return &auditLogService{
		repo:   deps.Repository,
		clock:  func() time.Time { return clock().UTC() },
		logger: logger,
	}, nil
}

// Record persists an audit log entry. Repository failures are logged but do
// not bubble up to callers, so the primary mutation is never rolled back or
// retried because of a failed audit write.
func (s *auditLogService) Record(ctx context.Context, record AuditLogRecord) {
	entry := s.buildEntry(record)
	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Warnf("audit log append failed for %s %s: %v", entry.Entity, entry.EntityID, err)
	}
}

func (s *auditLogService) buildEntry(record AuditLogRecord) domain.AuditLogEntry {
	occurred := record.OccurredAt
	if occurred.IsZero() {
		occurred = s.clock()
	} else {
		occurred = occurred.UTC()
	}

	actor := strings.TrimSpace(record.ActorID)
	if actor == "" {
		actor = defaultAuditActor
	}
	role := strings.ToLower(strings.TrimSpace(record.Role))
	if role == "" {
		role = defaultAuditRole
	}

	entry := domain.AuditLogEntry{
		ActorID:  actor,
		Role:     role,
		Entity:   strings.TrimSpace(record.Entity),
		EntityID: strings.TrimSpace(record.EntityID),
		Action:   strings.TrimSpace(record.Action),
		TS:       occurred,
	}
	if len(record.Metadata) > 0 {
		meta := make(map[string]any, len(record.Metadata))
		for key, value := range record.Metadata {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			meta[key] = value
		}
		entry.Metadata = meta
	}
	return entry
}

type noopAuditLogger struct{}

func (noopAuditLogger) Warnf(string, ...any) {}
