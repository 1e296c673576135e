package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/mini-page/Secura/internal/common"
	"github.com/mini-page/Secura/internal/dbx"
	"github.com/mini-page/Secura/internal/logging"
	"github.com/mini-page/Secura/internal/server/models"
	"github.com/mini-page/Secura/internal/server/repositories/auditlogs"
	"github.com/mini-page/Secura/internal/server/repositories/files"
	"github.com/mini-page/Secura/internal/server/repositories/users"
)

func newTestLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// --- users ---

type fakeUsersRepo struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	byID    map[string]*models.User

	createErr error
	seq       int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		byEmail: make(map[string]*models.User),
		byID:    make(map[string]*models.User),
	}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, exists := f.byEmail[u.Email]; exists {
		return nil, common.ErrEmailTaken
	}
	f.seq++
	u.ID = uuid.NewString()
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) ListAll(ctx context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.User
	for _, u := range f.byID {
		result = append(result, u)
	}
	return result, nil
}

// --- files ---

type fakeFilesRepo struct {
	mu    sync.Mutex
	rows  []*models.File
	byID  map[string]*models.File
	users *fakeUsersRepo // when set, Create enforces the owner FK

	createErr error
}

func newFakeFilesRepo() *fakeFilesRepo {
	return &fakeFilesRepo{byID: make(map[string]*models.File)}
}

func (f *fakeFilesRepo) Create(ctx context.Context, file *models.File) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.users != nil {
		if _, ok := f.users.byID[file.OwnerID]; !ok {
			return nil, common.ErrOwnerNotFound
		}
	}
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	f.rows = append(f.rows, file)
	f.byID[file.ID] = file
	return file, nil
}

func (f *fakeFilesRepo) GetByID(ctx context.Context, id string) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return file, nil
}

func (f *fakeFilesRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.File
	for _, file := range f.rows {
		if file.OwnerID == ownerID {
			result = append(result, file)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (f *fakeFilesRepo) ListAll(ctx context.Context) ([]*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := append([]*models.File(nil), f.rows...)
	sortNewestFirst(result)
	return result, nil
}

func sortNewestFirst(rows []*models.File) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
}

// --- audit ---

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*models.AuditEntry

	createErr error
}

func (f *fakeAuditRepo) Create(ctx context.Context, entry *models.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	entry.ID = uuid.NewString()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*models.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.AuditEntry
	for i := len(f.entries) - 1; i >= 0 && len(result) < limit; i-- {
		if f.entries[i].UserID == userID {
			result = append(result, f.entries[i])
		}
	}
	return result, nil
}

func (f *fakeAuditRepo) ListAll(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.AuditEntry
	for i := len(f.entries) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, f.entries[i])
	}
	return result, nil
}

func (f *fakeAuditRepo) byAction(action string) []*models.AuditEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.AuditEntry
	for _, e := range f.entries {
		if e.Action == action {
			result = append(result, e)
		}
	}
	return result
}

// --- repomanager ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	f *fakeFilesRepo
	a *fakeAuditRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: newFakeUsersRepo(),
		f: newFakeFilesRepo(),
		a: &fakeAuditRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return m.u }
func (m *fakeRepoManager) Files(db dbx.DBTX) files.Repository           { return m.f }
func (m *fakeRepoManager) AuditLogs(db dbx.DBTX) auditlogs.Repository   { return m.a }

// --- blob store ---

type memBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	putErr error
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: make(map[string][]byte)}
}

func (s *memBlobStore) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (s *memBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *memBlobStore) corrupt(t *testing.T, key string) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		t.Fatalf("no blob at %s to corrupt", key)
	}
	if len(data) == 0 {
		t.Fatalf("blob at %s is empty", key)
	}
	data[len(data)/2] ^= 0x01
}
