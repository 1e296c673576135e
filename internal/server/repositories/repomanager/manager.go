package repomanager

import (
	"context"
	"database/sql"

	"github.com/mini-page/Secura/internal/dbx"
	"github.com/mini-page/Secura/internal/server/repositories/auditlogs"
	"github.com/mini-page/Secura/internal/server/repositories/files"
	"github.com/mini-page/Secura/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
	AuditLogs(db dbx.DBTX) auditlogs.Repository
}
