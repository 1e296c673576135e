// Package services contains the server-side business logic: the vault
// orchestration core, user authentication and the audit recorder.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mini-page/Secura/internal/common"
	"github.com/mini-page/Secura/internal/cryptox"
	"github.com/mini-page/Secura/internal/logging"
	"github.com/mini-page/Secura/internal/server/models"
	"github.com/mini-page/Secura/internal/server/repositories/repomanager"
	"github.com/mini-page/Secura/internal/server/storage"
)

// VaultService orchestrates encrypted upload and verified download. It is
// stateless between requests; all durable state lives in the file catalog,
// the audit log and the blob store.
type VaultService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	cipher         *cryptox.Cipher
	blobs          storage.BlobStore
	audit          *AuditService
	logger         logging.Logger
	maxUploadBytes int64
}

func NewVaultService(db *sql.DB, m repomanager.RepositoryManager, cipher *cryptox.Cipher,
	blobs storage.BlobStore, audit *AuditService, logger logging.Logger, maxUploadBytes int64) *VaultService {
	return &VaultService{
		db:             db,
		repomanager:    m,
		cipher:         cipher,
		blobs:          blobs,
		audit:          audit,
		logger:         logger.With("module", "vault"),
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload encrypts data and persists it: size gate, encrypt, write the
// ciphertext blob at a key derived from a fresh file id, insert the metadata
// row, record the audit entry. Each step is a hard precondition for the
// next. If the metadata insert fails after the blob write, the repository
// error is surfaced and the orphaned blob is left behind (tolerated leak,
// never referenced by any row).
func (s *VaultService) Upload(ctx context.Context, ownerID, originalName, mimeType string, data []byte, ipAddress string) (*models.File, error) {
	if int64(len(data)) > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", common.ErrPayloadTooLarge, len(data), s.maxUploadBytes)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	ciphertext, nonce, tag, err := s.cipher.Encrypt(data)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}

	fileID := uuid.NewString()
	storageKey := storage.BlobKey(fileID)

	if err := s.blobs.Put(ctx, storageKey, ciphertext); err != nil {
		return nil, fmt.Errorf("write ciphertext: %w", err)
	}

	repo := s.repomanager.Files(s.db)
	file, err := repo.Create(ctx, &models.File{
		ID:           fileID,
		OwnerID:      ownerID,
		OriginalName: originalName,
		MimeType:     mimeType,
		SizeBytes:    int64(len(data)),
		StorageKey:   storageKey,
		Nonce:        nonce,
		AuthTag:      tag,
	})
	if err != nil {
		// The blob at storageKey is now orphaned; no compensating cleanup.
		return nil, err
	}

	// Audit failure is surfaced by the recorder but does not fail the upload.
	_ = s.audit.Record(ctx, ownerID, models.ActionUploadFile, ipAddress)

	s.logger.Info(ctx, "file uploaded", "file_id", file.ID, "owner_id", ownerID, "size_bytes", file.SizeBytes)
	return file, nil
}

// Download authorizes the requester, loads and decrypts the ciphertext and
// returns the exact original bytes along with the file metadata. A tag
// verification failure propagates as common.ErrIntegrity: it signals
// corrupted or tampered storage and is never swallowed or retried.
func (s *VaultService) Download(ctx context.Context, requesterID, requesterRole, fileID, ipAddress string) ([]byte, *models.File, error) {
	repo := s.repomanager.Files(s.db)

	file, err := repo.GetByID(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	if !ownerOrAdmin(requesterID, requesterRole, file.OwnerID) {
		return nil, nil, common.ErrForbidden
	}

	ciphertext, err := s.blobs.Get(ctx, file.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("load ciphertext: %w", err)
	}

	plaintext, err := s.cipher.Decrypt(ciphertext, file.Nonce, file.AuthTag)
	if err != nil {
		return nil, nil, err
	}

	_ = s.audit.Record(ctx, requesterID, models.ActionDownloadFile, ipAddress)

	return plaintext, file, nil
}

// GetMetadata returns a single file's metadata, gated by the owner-or-admin
// rule. Unauthorized access yields common.ErrForbidden (the chosen leakage
// policy: a 403 reveals that the id exists, matching the not-found/forbidden
// split of the rest of the API).
func (s *VaultService) GetMetadata(ctx context.Context, requesterID, requesterRole, fileID string) (*models.File, error) {
	repo := s.repomanager.Files(s.db)

	file, err := repo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !ownerOrAdmin(requesterID, requesterRole, file.OwnerID) {
		return nil, common.ErrForbidden
	}
	return file, nil
}

// List returns metadata for the requester's files, or every file when the
// requester is an admin. A non-empty ownerFilter narrows the result to one
// owner and is itself gated by the owner-or-admin rule. No decryption
// happens here.
func (s *VaultService) List(ctx context.Context, requesterID, requesterRole, ownerFilter string) ([]*models.File, error) {
	repo := s.repomanager.Files(s.db)

	if ownerFilter != "" {
		if !ownerOrAdmin(requesterID, requesterRole, ownerFilter) {
			return nil, common.ErrForbidden
		}
		return repo.ListByOwner(ctx, ownerFilter)
	}
	if requesterRole == models.RoleAdmin {
		return repo.ListAll(ctx)
	}
	return repo.ListByOwner(ctx, requesterID)
}
