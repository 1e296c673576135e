package auditlogs

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mini-page/Secura/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+audit_logs`).
		WithArgs(sqlmock.AnyArg(), "u-1", models.ActionUploadFile, "10.0.0.1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.AuditEntry{UserID: "u-1", Action: models.ActionUploadFile, IPAddress: "10.0.0.1"}
	if err := repo.Create(context.Background(), entry); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if entry.ID == "" || entry.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be assigned: %+v", entry)
	}
}

func TestCreate_ZeroRowsAffected(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+audit_logs`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Create(context.Background(), &models.AuditEntry{UserID: "u-1", Action: models.ActionLogin})
	if err == nil || !strings.Contains(err.Error(), "unexpected rows affected") {
		t.Fatalf("expected rows-affected error, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+audit_logs`).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.AuditEntry{UserID: "u-1", Action: models.ActionLogin})
	if err == nil || !strings.Contains(err.Error(), "db error") {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestListByUser_OrderAndLimit(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "action", "ip_address", "created_at"}).
		AddRow("a-2", "u-1", models.ActionDownloadFile, "10.0.0.1", created).
		AddRow("a-1", "u-1", models.ActionUploadFile, "10.0.0.1", created)
	mock.ExpectQuery(`(?s)FROM\s+audit_logs\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC,\s*seq\s+DESC\s+LIMIT\s+\$2`).
		WithArgs("u-1", 100).
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), "u-1", 100)
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a-2" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestListAll_OrderAndLimit(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "action", "ip_address", "created_at"}).
		AddRow("a-3", "u-2", models.ActionLogin, "", created)
	mock.ExpectQuery(`(?s)FROM\s+audit_logs\s+ORDER\s+BY\s+created_at\s+DESC,\s*seq\s+DESC\s+LIMIT\s+\$1`).
		WithArgs(50).
		WillReturnRows(rows)

	got, err := repo.ListAll(context.Background(), 50)
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if len(got) != 1 || got[0].UserID != "u-2" {
		t.Fatalf("unexpected result: %+v", got)
	}
}
