package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/osegonte/kiox/internal/domain"
	"github.com/osegonte/kiox/internal/platform/supabase"
	"github.com/osegonte/kiox/internal/repositories"
)

const auditLogTable = "audit_log"

type auditLogRow struct {
	ID       string         `json:"id,omitempty"`
	ActorID  string         `json:"actor_id"`
	Role     string         `json:"role"`
	Entity   string         `json:"entity"`
	EntityID string         `json:"entity_id"`
	Action   string         `json:"action"`
	Metadata map[string]any `json:"metadata"`
	TS       *time.Time     `json:"ts,omitempty"`
}

// AuditLogRepository implements repositories.AuditLogRepository on the
// store's audit_log table. The table is append-only.
type AuditLogRepository struct {
	client *supabase.Client
}

// NewAuditLogRepository constructs an audit log repository backed by the store client.
func NewAuditLogRepository(client *supabase.Client) (*AuditLogRepository, error) {
	if client == nil {
		return nil, fmt.Errorf("supabase audit log repository requires a client")
	}
	return &AuditLogRepository{client: client}, nil
}

var _ repositories.AuditLogRepository = (*AuditLogRepository)(nil)

// Append writes a single audit entry.
func (r *AuditLogRepository) Append(ctx context.Context, entry domain.AuditLogEntry) error {
	const op = "audit.Append"

	row := auditLogRow{
		ActorID:  entry.ActorID,
		Role:     entry.Role,
		Entity:   entry.Entity,
		EntityID: entry.EntityID,
		Action:   entry.Action,
		Metadata: entry.Metadata,
	}
	if !entry.TS.IsZero() {
		ts := entry.TS
		row.TS = &ts
	}

	err := r.client.Insert(ctx, auditLogTable, []auditLogRow{row}, nil)
	return supabase.WrapError(op, err)
}
