package models

import "time"

// File describes one uploaded object. The encrypted content itself lives in
// the blob store under StorageKey; the row carries everything needed to
// decrypt and verify it. Rows are immutable once created.
type File struct {
	ID      string
	OwnerID string
	// OriginalName is the display name declared by the uploader. It never
	// influences the storage key.
	OriginalName string
	MimeType     string
	// SizeBytes equals the plaintext length.
	SizeBytes int64
	// StorageKey is the opaque blob-store key of the ciphertext, derived
	// from the generated file id only.
	StorageKey string
	// Nonce is the AEAD nonce used to encrypt the contents; fresh per
	// upload, never reused under the same key.
	Nonce []byte
	// AuthTag is the AEAD authentication tag.
	AuthTag   []byte
	CreatedAt time.Time
}

// FileInfo is the caller-facing metadata view. It deliberately omits the
// nonce, tag and storage key.
type FileInfo struct {
	ID           string    `json:"fileId"`
	OwnerID      string    `json:"ownerId"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	SizeBytes    int64     `json:"sizeBytes"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Info projects a File onto its caller-facing view.
func (f *File) Info() FileInfo {
	return FileInfo{
		ID:           f.ID,
		OwnerID:      f.OwnerID,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		SizeBytes:    f.SizeBytes,
		CreatedAt:    f.CreatedAt,
	}
}
