// Package httpapi exposes the vault over HTTP: auth endpoints, the file
// upload/download surface, the activity feed and the admin read views.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mini-page/Secura/internal/logging"
	"github.com/mini-page/Secura/internal/server/models"
	"github.com/mini-page/Secura/internal/server/services"
)

// UserDirectory is the slice of the user service the transport needs.
type UserDirectory interface {
	Register(ctx context.Context, email, password, role, ipAddress string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password, ipAddress string) (*services.AuthResult, error)
	GuestLogin(ctx context.Context, ipAddress string) (*services.AuthResult, error)
	ListUsers(ctx context.Context, requesterRole string) ([]*models.User, error)
}

// Vault is the slice of the vault service the transport needs.
type Vault interface {
	Upload(ctx context.Context, ownerID, originalName, mimeType string, data []byte, ipAddress string) (*models.File, error)
	Download(ctx context.Context, requesterID, requesterRole, fileID, ipAddress string) ([]byte, *models.File, error)
	GetMetadata(ctx context.Context, requesterID, requesterRole, fileID string) (*models.File, error)
	List(ctx context.Context, requesterID, requesterRole, ownerFilter string) ([]*models.File, error)
}

// ActivityLog is the slice of the audit service the transport needs.
type ActivityLog interface {
	List(ctx context.Context, requesterID, requesterRole string, limit int) ([]*models.AuditEntry, error)
}

type Server struct {
	address        string
	users          UserDirectory
	vault          Vault
	activity       ActivityLog
	logger         logging.Logger
	jwtSecret      []byte
	maxUploadBytes int64
}

func NewServer(a string, l logging.Logger, us UserDirectory, vs Vault, as ActivityLog,
	secretKey string, maxUploadBytes int64) *Server {
	return &Server{
		address:        a,
		logger:         l.With("module", "http_server"),
		users:          us,
		vault:          vs,
		activity:       as,
		jwtSecret:      []byte(secretKey),
		maxUploadBytes: maxUploadBytes,
	}
}

// router wires all routes. Split out from Run so tests can drive the
// engine through httptest without binding a socket.
func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)

	auth := r.Group("/auth")
	{
		auth.POST("/register", s.handleRegister)
		auth.POST("/login", s.handleLogin)
		auth.POST("/guest", s.handleGuestLogin)
	}

	authed := r.Group("/")
	authed.Use(s.authRequired())
	{
		authed.GET("/files", s.handleListFiles)
		authed.POST("/files/upload", s.handleUpload)
		authed.GET("/files/:id", s.handleGetMetadata)
		authed.GET("/files/:id/download", s.handleDownload)
		authed.GET("/activity", s.handleActivity)
	}

	admin := r.Group("/admin")
	admin.Use(s.authRequired(), s.requireAdmin())
	{
		admin.GET("/users", s.handleListUsers)
		admin.GET("/audit", s.handleAdminAudit)
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
