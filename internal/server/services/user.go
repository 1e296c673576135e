package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mini-page/Secura/internal/common"
	"github.com/mini-page/Secura/internal/dbx"
	"github.com/mini-page/Secura/internal/logging"
	"github.com/mini-page/Secura/internal/server/auth"
	"github.com/mini-page/Secura/internal/server/config"
	"github.com/mini-page/Secura/internal/server/models"
	"github.com/mini-page/Secura/internal/server/repositories/repomanager"
)

// GuestEmail is the shared identity used by guest logins.
const GuestEmail = "guest@secura.local"

// AuthResult bundles a freshly minted identity token with the user it
// identifies.
type AuthResult struct {
	Token string
	User  *models.User
}

// UserService handles registration, login and guest login, and mints the
// opaque identity tokens consumed by the transport boundary.
type UserService struct {
	db                 *sql.DB
	repomanager        repomanager.RepositoryManager
	audit              *AuditService
	logger             logging.Logger
	jwtSecret          []byte
	tokenValidity      time.Duration
	guestTokenValidity time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, audit *AuditService,
	logger logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:                 db,
		repomanager:        m,
		audit:              audit,
		logger:             logger.With("module", "users"),
		jwtSecret:          []byte(cfg.JWTSecret),
		tokenValidity:      cfg.TokenValidityDuration,
		guestTokenValidity: cfg.GuestTokenValidityDuration,
	}
}

// Register creates a new user and returns a token for it. The email is
// normalized (lowercased, trimmed) and must be unique. Only the admin role
// passes through; anything else defaults to a regular user.
func (s *UserService) Register(ctx context.Context, email, password, role, ipAddress string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", common.ErrValidation)
	}
	if role != models.RoleAdmin {
		role = models.RoleUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return nil, err
	}

	_ = s.audit.Record(ctx, user.ID, models.ActionRegister, ipAddress)

	return s.issueToken(user, s.tokenValidity)
}

// Login verifies the credentials and returns a token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password, ipAddress string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", common.ErrValidation)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrUnauthorized
	}

	_ = s.audit.Record(ctx, user.ID, models.ActionLogin, ipAddress)

	return s.issueToken(user, s.tokenValidity)
}

// GuestLogin finds or creates the shared guest identity and returns a
// shorter-lived token for it. The find-or-create runs in a transaction so
// concurrent guest logins cannot race two guest rows into existence.
func (s *UserService) GuestLogin(ctx context.Context, ipAddress string) (*AuthResult, error) {
	var user *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		found, err := repo.GetByEmail(ctx, GuestEmail)
		if err == nil {
			user = found
			return nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}

		// Guests never authenticate with a password; store a hash of
		// random material so the column is still non-empty.
		random, err := common.MakeRandHexString(16)
		if err != nil {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(random), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user, err = repo.Create(ctx, &models.User{
			Email:        GuestEmail,
			PasswordHash: string(hash),
			Role:         models.RoleGuest,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("guest login: %w", err)
	}

	_ = s.audit.Record(ctx, user.ID, models.ActionGuestLogin, ipAddress)

	return s.issueToken(user, s.guestTokenValidity)
}

// ListUsers returns every user, admin only.
func (s *UserService) ListUsers(ctx context.Context, requesterRole string) ([]*models.User, error) {
	if requesterRole != models.RoleAdmin {
		return nil, common.ErrForbidden
	}
	return s.repomanager.Users(s.db).ListAll(ctx)
}

func (s *UserService) issueToken(user *models.User, validity time.Duration) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, user.Role, user.Email, s.jwtSecret, validity)
	if err != nil {
		return nil, common.ErrInternal
	}
	return &AuthResult{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
