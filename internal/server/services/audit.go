package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mini-page/Secura/internal/logging"
	"github.com/mini-page/Secura/internal/server/models"
	"github.com/mini-page/Secura/internal/server/repositories/repomanager"
)

// DefaultAuditLimit caps audit queries that do not specify a limit.
const DefaultAuditLimit = 100

// AuditService records security-relevant actions and serves audit queries.
// Recording is synchronous and never silently drops an entry: a store
// failure is logged at error level and returned, and the caller decides
// whether it is fatal to the triggering operation.
type AuditService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewAuditService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *AuditService {
	return &AuditService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "audit"),
	}
}

// Record appends one entry attributed to actorUserID.
func (s *AuditService) Record(ctx context.Context, actorUserID, action, ipAddress string) error {
	repo := s.repomanager.AuditLogs(s.db)
	entry := &models.AuditEntry{UserID: actorUserID, Action: action, IPAddress: ipAddress}
	if err := repo.Create(ctx, entry); err != nil {
		s.logger.Error(ctx, "audit record failed", "action", action, "user_id", actorUserID, "error", err.Error())
		return fmt.Errorf("audit record: %w", err)
	}
	return nil
}

// List returns entries newest first, scoped to the requester's own entries
// unless the requester is an admin.
func (s *AuditService) List(ctx context.Context, requesterID, requesterRole string, limit int) ([]*models.AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	repo := s.repomanager.AuditLogs(s.db)
	if requesterRole == models.RoleAdmin {
		return repo.ListAll(ctx, limit)
	}
	return repo.ListByUser(ctx, requesterID, limit)
}
