package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mini-page/Secura/internal/common"
	"github.com/mini-page/Secura/internal/dbx"
	"github.com/mini-page/Secura/internal/server/models"
)

const pgForeignKeyViolation = "23503"

// PostgresRepository implements the file catalog over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a file row. The id is kept when the caller already assigned
// one (the vault derives the storage key from it before the insert) and
// generated otherwise. An owner id that references no existing user yields
// common.ErrOwnerNotFound.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	file.CreatedAt = time.Now().UTC()

	query :=
		`INSERT INTO files (id, owner_id, original_name, mime_type, storage_key, size_bytes, nonce, auth_tag, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 `

	_, err := r.db.ExecContext(ctx, query,
		file.ID, file.OwnerID, file.OriginalName, file.MimeType,
		file.StorageKey, file.SizeBytes, file.Nonce, file.AuthTag, file.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, common.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query :=
		`SELECT id, owner_id, original_name, mime_type, storage_key, size_bytes, nonce, auth_tag, created_at
		 FROM files
		 WHERE id = $1
		 `

	file := &models.File{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&file.ID, &file.OwnerID, &file.OriginalName, &file.MimeType,
		&file.StorageKey, &file.SizeBytes, &file.Nonce, &file.AuthTag, &file.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}

// ListByOwner returns the owner's files, newest-created first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	query :=
		`SELECT id, owner_id, original_name, mime_type, storage_key, size_bytes, nonce, auth_tag, created_at
		 FROM files
		 WHERE owner_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanFiles(rows)
}

// ListAll returns every file, newest-created first. Admin-only; authorization
// is enforced by the caller.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.File, error) {
	query :=
		`SELECT id, owner_id, original_name, mime_type, storage_key, size_bytes, nonce, auth_tag, created_at
		 FROM files
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanFiles(rows)
}

func scanFiles(rows *sql.Rows) ([]*models.File, error) {
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		file := &models.File{}
		if err := rows.Scan(
			&file.ID, &file.OwnerID, &file.OriginalName, &file.MimeType,
			&file.StorageKey, &file.SizeBytes, &file.Nonce, &file.AuthTag, &file.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, file)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
