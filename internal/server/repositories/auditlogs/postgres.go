package auditlogs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mini-page/Secura/internal/dbx"
	"github.com/mini-page/Secura/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends one entry. Exactly one row must be inserted; any storage
// failure is returned to the caller.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()

	query :=
		`INSERT INTO audit_logs (id, user_id, action, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	res, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Action, entry.IPAddress, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// ListByUser returns the user's entries, newest first. Ties on created_at
// are broken by insertion order (seq).
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.AuditEntry, error) {
	query :=
		`SELECT id, user_id, action, ip_address, created_at FROM audit_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC, seq DESC
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanEntries(rows)
}

// ListAll returns all entries, newest first. Admin-only; authorization is
// enforced by the caller, not this component.
func (r *PostgresRepository) ListAll(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	query :=
		`SELECT id, user_id, action, ip_address, created_at FROM audit_logs
		 ORDER BY created_at DESC, seq DESC
		 LIMIT $1
		 `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]*models.AuditEntry, error) {
	defer rows.Close()

	var result []*models.AuditEntry
	for rows.Next() {
		entry := &models.AuditEntry{}
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Action, &entry.IPAddress, &entry.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
