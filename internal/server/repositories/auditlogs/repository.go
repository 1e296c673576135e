// Package auditlogs persists the append-only audit trail. By design the
// repository exposes no update or delete operations.
package auditlogs

import (
	"context"

	"github.com/mini-page/Secura/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.AuditEntry, error)
	ListAll(ctx context.Context, limit int) ([]*models.AuditEntry, error)
}
